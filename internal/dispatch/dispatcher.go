// Package dispatch routes {action, data} requests to the product service and
// renders every outcome, including failures, as a uniform Response.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	perrors "github.com/abgdnv/productcrud/internal/errors"
	"github.com/abgdnv/productcrud/internal/service"
)

const (
	ActionAdd            = "add"
	ActionUpdate         = "update"
	ActionDelete         = "delete"
	ActionGet            = "get"
	ActionList           = "list"
	ActionListByCategory = "list_by_category"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

const (
	MsgAddRequired    = "Product data is required to add a product"
	MsgDeleteRequired = "Product ID is required for delete"
	MsgGetRequired    = "Product ID is required to get a product"
	MsgStorageFailure = "An error occurred while accessing product storage"
	MsgMalformedInput = "Request body must be a JSON object"
)

// Request is one inbound operation.
type Request struct {
	Action string          `json:"action"`
	Data   service.Payload `json:"data"`
}

// Response is the uniform result of Dispatch. Err keeps the classified failure for transports.
type Response struct {
	Status   string               `json:"status"`
	Message  string               `json:"message,omitempty"`
	Product  *service.ProductDto  `json:"product,omitempty"`
	Products []service.ProductDto `json:"products,omitempty"`
	Deleted  bool                 `json:"deleted,omitempty"`
	Err      error                `json:"-"`
}

// DecodeRequest reads one JSON request. Numbers are kept as json.Number so
// integer identifiers survive without a float round trip.
func DecodeRequest(r io.Reader) (Request, error) {
	var req Request
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		return Request{}, &perrors.ValidationError{Field: "body", Message: MsgMalformedInput}
	}
	return req, nil
}

// DecodePayload reads a bare JSON object the same way DecodeRequest reads its data.
// An empty body yields a nil payload.
func DecodePayload(r io.Reader) (service.Payload, error) {
	var p service.Payload
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, &perrors.ValidationError{Field: "body", Message: MsgMalformedInput}
	}
	return p, nil
}

// Dispatcher maps actions to ProductService calls.
type Dispatcher struct {
	svc    service.ProductService
	logger *slog.Logger
}

func NewDispatcher(svc service.ProductService, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		svc:    svc,
		logger: logger.With("component", "dispatcher"),
	}
}

// Dispatch runs one request. It never returns a Go error: failures are encoded in the Response.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Response {
	resp, err := d.dispatch(ctx, req)
	if err != nil {
		return d.errorResponse(ctx, req.Action, err)
	}
	resp.Status = StatusSuccess
	return resp
}

func (d *Dispatcher) dispatch(ctx context.Context, req Request) (Response, error) {
	data := req.Data
	switch req.Action {
	case ActionAdd:
		if len(data) == 0 {
			return Response{}, required("data", MsgAddRequired)
		}
		p, err := d.svc.Add(ctx, data)
		if err != nil {
			return Response{}, err
		}
		return Response{Product: p}, nil

	case ActionUpdate:
		raw, ok := data["id"]
		if !ok {
			return Response{}, required("id", service.MsgUpdateRequired)
		}
		id, err := service.ParseID(raw)
		if err != nil {
			return Response{}, err
		}
		p, err := d.svc.Update(ctx, id, withoutID(data))
		if err != nil {
			return Response{}, err
		}
		return Response{Product: p}, nil

	case ActionDelete:
		raw, ok := data["id"]
		if !ok {
			return Response{}, required("id", MsgDeleteRequired)
		}
		id, err := service.ParseID(raw)
		if err != nil {
			return Response{}, err
		}
		if err := d.svc.DeleteByID(ctx, id); err != nil {
			return Response{}, err
		}
		return Response{Deleted: true}, nil

	case ActionGet:
		raw, ok := data["id"]
		if !ok {
			return Response{}, required("id", MsgGetRequired)
		}
		id, err := service.ParseID(raw)
		if err != nil {
			return Response{}, err
		}
		p, err := d.svc.FindByID(ctx, id)
		if err != nil {
			return Response{}, err
		}
		return Response{Product: p}, nil

	case ActionList:
		products, err := d.svc.FindAll(ctx)
		if err != nil {
			return Response{}, err
		}
		return Response{Products: products}, nil

	case ActionListByCategory:
		products, err := d.svc.FindByCategory(ctx, categoryFilter(data["category"]))
		if err != nil {
			return Response{}, err
		}
		return Response{Products: products}, nil

	default:
		return Response{}, &perrors.InvalidActionError{Action: req.Action}
	}
}

func (d *Dispatcher) errorResponse(ctx context.Context, action string, err error) Response {
	msg := err.Error()
	switch {
	case errors.Is(err, perrors.ErrValidation),
		errors.Is(err, perrors.ErrProductNotFound),
		errors.Is(err, perrors.ErrNoProducts),
		errors.Is(err, perrors.ErrInvalidAction):
		d.logger.DebugContext(ctx, "request rejected", "action", action, "reason", msg)
	default:
		d.logger.ErrorContext(ctx, "request failed", "action", action, "error", err)
		msg = MsgStorageFailure
		if !errors.Is(err, perrors.ErrStorage) {
			err = &perrors.StorageError{Op: action, Err: err}
		}
	}
	return Response{Status: StatusError, Message: msg, Err: err}
}

func required(field, msg string) error {
	return &perrors.ValidationError{Field: field, Message: msg}
}

// withoutID copies data minus the identifier so it is never treated as a product field.
func withoutID(data service.Payload) service.Payload {
	out := make(service.Payload, len(data))
	for k, v := range data {
		if k != "id" {
			out[k] = v
		}
	}
	return out
}

// categoryFilter turns the decoded category into a filter value. Numbers are
// matched by their text form, anything else that is not a string is no filter.
func categoryFilter(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case json.Number, float64, int, int64:
		return fmt.Sprint(c)
	default:
		return ""
	}
}
