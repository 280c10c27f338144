// Package rest exposes the product dispatcher over HTTP.
//
// Three surfaces share one set of semantics because each of them builds a
// dispatch.Request: the action envelope, the resource routes under
// /api/v1/products and the legacy form routes.
package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abgdnv/productcrud/internal/dispatch"
	perrors "github.com/abgdnv/productcrud/internal/errors"
	"github.com/abgdnv/productcrud/internal/service"
	"github.com/abgdnv/productcrud/pkg/web"
)

const maxBodyBytes = 1 << 20

const readinessTimeout = 2 * time.Second

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	dispatcher *dispatch.Dispatcher
	store      Pinger
	logger     *slog.Logger
}

// NewHandler creates a new instance of the product HTTP API.
// Request ids reach the log records through the context passed to the *Context logging calls.
func NewHandler(dispatcher *dispatch.Dispatcher, store Pinger, logger *slog.Logger) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		store:      store,
		logger:     logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the product service.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Post("/api/v1/actions", h.Action)

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Put("/", h.Update)
			r.Delete("/", h.DeleteByID)
		})
	})

	r.Post("/add-product", h.Create)
	r.Get("/list-product", h.FindAll)
	r.Put("/update-product/{id}", h.Update)
	r.Delete("/remove-product/{id}", h.DeleteByID)

	r.Get("/healthz", h.HealthCheck)
	r.Get("/readyz", h.ReadinessCheck)
}

// Action runs a raw {action, data} request.
func (h *Handler) Action(w http.ResponseWriter, r *http.Request) {
	req, err := dispatch.DecodeRequest(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.logger.WarnContext(r.Context(), "Error decoding action request", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}
	h.serve(w, r, req)
}

// FindAll lists products, filtered by the category query parameter when present.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Has("category") {
		h.serve(w, r, dispatch.Request{
			Action: dispatch.ActionListByCategory,
			Data:   service.Payload{"category": r.URL.Query().Get("category")},
		})
		return
	}
	h.serve(w, r, dispatch.Request{Action: dispatch.ActionList})
}

// Create adds the product in the request body.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	data, ok := h.decodeBody(w, r)
	if !ok {
		return
	}
	h.serve(w, r, dispatch.Request{Action: dispatch.ActionAdd, Data: data})
}

func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	h.serve(w, r, dispatch.Request{Action: dispatch.ActionGet, Data: service.Payload{"id": id}})
}

// Update merges the request body into the product named by the path.
// The path id takes precedence over an id in the body.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	data, ok := h.decodeBody(w, r)
	if !ok {
		return
	}
	if data == nil {
		data = service.Payload{}
	}
	data["id"] = id
	h.serve(w, r, dispatch.Request{Action: dispatch.ActionUpdate, Data: data})
}

func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	h.serve(w, r, dispatch.Request{Action: dispatch.ActionDelete, Data: service.Payload{"id": id}})
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// ReadinessCheck pings the store.
func (h *Handler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		h.logger.WarnContext(r.Context(), "Store is not ready", "error", err)
		web.RespondError(w, h.logger, http.StatusServiceUnavailable, "Product storage is not reachable")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, req dispatch.Request) {
	h.logger.DebugContext(r.Context(), "Dispatching request", "action", req.Action)
	resp := h.dispatcher.Dispatch(r.Context(), req)
	web.RespondJSON(w, h.logger, StatusCode(req.Action, resp), resp)
}

// StatusCode maps a dispatch result to an HTTP status.
func StatusCode(action string, resp dispatch.Response) int {
	if resp.Status == dispatch.StatusSuccess {
		if action == dispatch.ActionAdd {
			return http.StatusCreated
		}
		return http.StatusOK
	}
	switch {
	case errors.Is(resp.Err, perrors.ErrValidation), errors.Is(resp.Err, perrors.ErrInvalidAction):
		return http.StatusBadRequest
	case errors.Is(resp.Err, perrors.ErrProductNotFound), errors.Is(resp.Err, perrors.ErrNoProducts):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request) (service.Payload, bool) {
	data, err := dispatch.DecodePayload(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return data, true
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		web.RespondError(w, h.logger, http.StatusBadRequest, service.MsgIDNotInteger)
		return 0, false
	}
	return id, true
}
