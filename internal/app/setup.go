// Package app contains the application setup for the product service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abgdnv/productcrud/internal/config"
	"github.com/abgdnv/productcrud/internal/dispatch"
	"github.com/abgdnv/productcrud/internal/sequence"
	"github.com/abgdnv/productcrud/internal/service"
	"github.com/abgdnv/productcrud/internal/store"
	"github.com/abgdnv/productcrud/internal/transport/rest"
	"github.com/abgdnv/productcrud/pkg/bootstrap"
	pkgconfig "github.com/abgdnv/productcrud/pkg/config"
	"github.com/abgdnv/productcrud/pkg/messaging"
	natsclient "github.com/abgdnv/productcrud/pkg/nats"
	"github.com/abgdnv/productcrud/pkg/server"
	"github.com/abgdnv/productcrud/pkg/web"
)

// natsClientName identifies the service connection in NATS monitoring.
const natsClientName = "product-service"

type Dependencies struct {
	Store      store.ProductStore
	Dispatcher *dispatch.Dispatcher
	Logger     *slog.Logger

	closers []func(context.Context) error
}

// NewDependencies wires the service and dispatcher over repo. publisher may be nil.
func NewDependencies(repo store.ProductStore, publisher messaging.Publisher, logger *slog.Logger) *Dependencies {
	return &Dependencies{
		Store:      repo,
		Dispatcher: dispatch.NewDispatcher(service.NewService(repo, publisher, logger), logger),
		Logger:     logger,
	}
}

// SetupDependencies opens the configured store and, when enabled, the event publisher.
// Everything opened is released by Close, including on error paths.
func SetupDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	var closers []func(context.Context) error
	release := func() {
		_ = closeAll(context.Background(), closers)
	}

	repo, storeClosers, err := OpenStore(ctx, cfg.Storage, cfg.Sequence, logger)
	closers = append(closers, storeClosers...)
	if err != nil {
		release()
		return nil, err
	}

	var publisher messaging.Publisher
	if cfg.NATS.Enabled {
		p, closeNATS, err := openPublisher(ctx, cfg.NATS)
		if err != nil {
			release()
			return nil, err
		}
		closers = append(closers, closeNATS)
		publisher = p
		logger.Info("Publishing product events", "stream", cfg.NATS.Stream)
	}

	deps := NewDependencies(repo, publisher, logger)
	deps.closers = closers
	return deps, nil
}

// SetupToolDependencies opens only the store. Events are never published from tools.
func SetupToolDependencies(ctx context.Context, cfg *config.ToolConfig, logger *slog.Logger) (*Dependencies, error) {
	repo, closers, err := OpenStore(ctx, cfg.Storage, cfg.Sequence, logger)
	if err != nil {
		_ = closeAll(context.Background(), closers)
		return nil, err
	}
	deps := NewDependencies(repo, nil, logger)
	deps.closers = closers
	return deps, nil
}

// Close releases every connection in reverse order of opening.
func (d *Dependencies) Close(ctx context.Context) error {
	err := closeAll(ctx, d.closers)
	d.closers = nil
	return err
}

func closeAll(ctx context.Context, closers []func(context.Context) error) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OpenStore builds the store selected by storage.Driver. The returned closers
// must be run even when an error is returned.
func OpenStore(ctx context.Context, storage pkgconfig.StorageConfig, seqCfg pkgconfig.SequenceConfig, logger *slog.Logger) (store.ProductStore, []func(context.Context) error, error) {
	var closers []func(context.Context) error

	seq, closeSeq, err := openSequence(ctx, seqCfg)
	if err != nil {
		return nil, closers, err
	}
	if closeSeq != nil {
		closers = append(closers, closeSeq)
	}

	switch storage.Driver {
	case pkgconfig.DriverMemory:
		if seq != nil {
			logger.Warn("Sequence is ignored by the memory store", "sequence_driver", seqCfg.Driver)
		}
		logger.Info("Using in-memory product store")
		return store.NewInMemoryStore(), closers, nil

	case pkgconfig.DriverFile:
		logger.Info("Using file product store", "path", storage.File.Path)
		return store.NewFileStore(storage.File.Path, seq), closers, nil

	case pkgconfig.DriverSQL:
		if storage.SQL.AutoMigrate {
			if err := store.Migrate(ctx, storage.SQL.URL); err != nil {
				return nil, closers, err
			}
			logger.Info("Database migrations applied")
		}
		db, err := bootstrap.NewGormDB(ctx, storage.SQL)
		if err != nil {
			return nil, closers, err
		}
		closers = append(closers, func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		})
		logger.Info("Successfully connected to the database!")
		return store.NewGormStore(db), closers, nil

	case pkgconfig.DriverMongo:
		client, err := bootstrap.NewMongoClient(ctx, storage.Mongo)
		if err != nil {
			return nil, closers, err
		}
		closers = append(closers, client.Disconnect)
		database := client.Database(storage.Mongo.Database)
		if seq == nil {
			seq = sequence.NewMongoCounter(database.Collection(storage.Mongo.Counters), sequence.ProductIDName)
		}
		logger.Info("Successfully connected to MongoDB!", "database", storage.Mongo.Database)
		return store.NewMongoStore(database.Collection(storage.Mongo.Collection), seq), closers, nil

	default:
		return nil, closers, fmt.Errorf("unknown storage driver: %q", storage.Driver)
	}
}

// openSequence returns a nil Sequence when the store keeps its own identifiers.
func openSequence(ctx context.Context, cfg pkgconfig.SequenceConfig) (sequence.Sequence, func(context.Context) error, error) {
	if cfg.Driver != pkgconfig.SequenceDriverRedis {
		return nil, nil, nil
	}
	client, err := bootstrap.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	return sequence.NewRedisCounter(client, cfg.Redis.Key), func(context.Context) error {
		return client.Close()
	}, nil
}

func openPublisher(ctx context.Context, cfg pkgconfig.NATSConfig) (messaging.Publisher, func(context.Context) error, error) {
	nc, err := natsclient.NewClient(cfg.Url, natsClientName, cfg.Timeout)
	if err != nil {
		return nil, nil, err
	}
	js, err := natsclient.NewJetStream(ctx, nc, cfg.Stream, []string{messaging.ProductsSubjects})
	if err != nil {
		return nil, nil, err
	}
	return natsclient.NewPublisher(js), func(context.Context) error {
		return nc.Drain()
	}, nil
}

// SetupHttpHandler builds the router with every product route and, when enabled,
// the Prometheus middleware and scrape endpoint.
func SetupHttpHandler(deps *Dependencies, metrics pkgconfig.MetricsConfig) (http.Handler, error) {
	var mux *chi.Mux
	if metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m, err := web.NewMetrics(reg, metrics.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to register HTTP metrics: %w", err)
		}
		mux = server.NewChiRouter(deps.Logger, m.Handler)
		mux.Handle(metrics.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	} else {
		mux = server.NewChiRouter(deps.Logger)
	}
	wireRoutes(mux, deps)
	return mux, nil
}

// wireRoutes sets up the HTTP routes for the product service.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := rest.NewHandler(deps.Dispatcher, deps.Store, deps.Logger)
	productHandler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures an HTTP server for the product service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) (*http.Server, error) {
	mux, err := SetupHttpHandler(deps, cfg.Metrics)
	if err != nil {
		return nil, err
	}

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux), nil
}
