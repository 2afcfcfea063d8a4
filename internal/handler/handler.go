// Package handler exposes the sale service as a JSON API under /api.
package handler

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/madangbooks/madang/internal/domain/apperr"
	"github.com/madangbooks/madang/internal/domain/book"
	"github.com/madangbooks/madang/internal/domain/ident"
	"github.com/madangbooks/madang/internal/domain/sale"
	"github.com/madangbooks/madang/internal/wire"
)

// DefaultMaxBodyBytes bounds request bodies when HandlerConfig leaves it unset.
const DefaultMaxBodyBytes = 64 << 10

// HandlerConfig holds non-dependency configuration for the Handler.
type HandlerConfig struct {
	MaxBodyBytes int64
}

// Handler serves the bookstore API over a sale.Service.
type Handler struct {
	sales   *sale.Service
	maxBody int64
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig, sales *sale.Service) *Handler {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Handler{sales: sales, maxBody: cfg.MaxBodyBytes}
}

// Register adds the API routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	routes := []struct {
		pattern string
		fn      http.HandlerFunc
	}{
		{"GET /api/books", h.ListBooks},
		{"GET /api/books/{id}", h.GetBook},
		{"GET /api/customers", h.ListCustomers},
		{"POST /api/customers/resolve", h.ResolveCustomer},
		{"GET /api/orders", h.ListOrders},
		{"POST /api/orders", h.SubmitSale},
		{"POST /api/orders/record", h.RecordOrder},
		{"GET /api/history", h.History},
		{"GET /api/ids/{table}/next", h.NextID},
	}
	for _, rt := range routes {
		mux.Handle(rt.pattern, labeled(rt.pattern, rt.fn))
	}
}

// labeled adds the route to the request metrics recorded by otelhttp.
func labeled(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l, ok := otelhttp.LabelerFromContext(r.Context()); ok {
			l.Add(attribute.String("http.route", route))
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperr.Validation("body", "request body too large")
		}
		return nil, apperr.Validation("body", "unreadable request body")
	}
	return data, nil
}

func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	encode(e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func statusOf(code string) int {
	switch code {
	case wire.CodeValidation:
		return http.StatusUnprocessableEntity
	case wire.CodeAmbiguous, wire.CodeIntegrity:
		return http.StatusConflict
	case wire.CodeUnavailable:
		return http.StatusServiceUnavailable
	case wire.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeProblem(ctx context.Context, w http.ResponseWriter, p wire.Problem) {
	status := statusOf(p.Code)
	if status >= http.StatusInternalServerError {
		zctx.From(ctx).Error("Request error", zap.String("code", p.Code), zap.String("error", p.Message))
		if p.Code == wire.CodeInternal {
			p.Message = "internal server error"
		}
	}
	writeJSON(w, status, p.Encode)
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	p := wire.ProblemOf(err)
	switch {
	case errors.Is(err, book.ErrNotFound):
		p.Code = wire.CodeNotFound
	case errors.Is(err, ident.ErrUnknownTable):
		p.Code = wire.CodeNotFound
	}
	writeProblem(ctx, w, p)
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation(name, "must be a positive integer")
	}
	return id, nil
}
