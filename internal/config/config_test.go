package config

import (
	"testing"
	"time"

	"github.com/abgdnv/productcrud/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	var cfg Config
	cfg.HTTPServer.Port = 8080
	cfg.HTTPServer.Timeout.Read = time.Second
	cfg.HTTPServer.Timeout.Write = time.Second
	cfg.HTTPServer.Timeout.Idle = time.Second
	cfg.HTTPServer.Timeout.ReadHeader = time.Second
	cfg.Shutdown.Timeout = time.Second
	cfg.Storage.Driver = config.DriverMemory
	return &cfg
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid memory config", mutate: func(*Config) {}},
		{
			name:    "missing driver",
			mutate:  func(c *Config) { c.Storage.Driver = "" },
			wantErr: "storage driver is not configured",
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Storage.Driver = "csv" },
			wantErr: `unknown storage driver: "csv"`,
		},
		{
			name:    "file driver without path",
			mutate:  func(c *Config) { c.Storage.Driver = config.DriverFile },
			wantErr: "storage file path is not configured",
		},
		{
			name: "sql driver with mysql url",
			mutate: func(c *Config) {
				c.Storage.Driver = config.DriverSQL
				c.Storage.SQL.URL = "mysql://root@localhost/products"
				c.Storage.SQL.Timeout = time.Second
			},
			wantErr: "database URL must start with 'postgres://': mysql://****@localhost/products",
		},
		{
			name: "redis sequence with sql storage",
			mutate: func(c *Config) {
				c.Storage.Driver = config.DriverSQL
				c.Storage.SQL.URL = "postgres://user:pw@localhost/products"
				c.Storage.SQL.Timeout = time.Second
				c.Sequence.Driver = config.SequenceDriverRedis
				c.Sequence.Redis = config.RedisConfig{Addr: "localhost:6379", Key: "product_id", Timeout: time.Second}
			},
			wantErr: `sequence driver "redis" cannot be combined with the sql storage driver`,
		},
		{
			name: "redis sequence with file storage",
			mutate: func(c *Config) {
				c.Storage.Driver = config.DriverFile
				c.Storage.File.Path = "products.json"
				c.Sequence.Driver = config.SequenceDriverRedis
				c.Sequence.Redis = config.RedisConfig{Addr: "localhost:6379", Key: "product_id", Timeout: time.Second}
			},
		},
		{
			name:    "enabled nats without url",
			mutate:  func(c *Config) { c.NATS.Enabled = true },
			wantErr: "NATS URL is not configured",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Log.Level = "trace" },
			wantErr: `unknown log level: "trace"`,
		},
		{
			name:    "missing shutdown timeout",
			mutate:  func(c *Config) { c.Shutdown.Timeout = 0 },
			wantErr: "shutdown timeout is not configured",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			cfg := validConfig()
			tc.mutate(cfg)
			// when
			err := cfg.Validate()
			// then
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tc.wantErr)
		})
	}
}

func TestConfig_ValidateFillsDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.PProf.Enabled = true

	require.NoError(t, cfg.Validate())

	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, "localhost:6060", cfg.PProf.Addr)
}

func TestConfig_StringMasksCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Driver = config.DriverSQL
	cfg.Storage.SQL.URL = "postgres://user:secret@db:5432/products"

	s := cfg.String()

	assert.NotContains(t, s, "secret")
	assert.Contains(t, s, "postgres://****@db:5432/products")
}

func TestToolConfig_Validate(t *testing.T) {
	cfg := &ToolConfig{}
	cfg.Storage.Driver = config.DriverFile
	cfg.Storage.File.Path = "products.json"

	assert.NoError(t, cfg.Validate(), "server sections are not required")

	cfg.Storage.Driver = config.DriverSQL
	cfg.Storage.SQL.URL = "postgres://localhost/products"
	cfg.Storage.SQL.Timeout = time.Second
	cfg.Sequence.Driver = config.SequenceDriverRedis
	cfg.Sequence.Redis = config.RedisConfig{Addr: "localhost:6379", Key: "product_id", Timeout: time.Second}
	assert.Error(t, cfg.Validate())
}
