package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/madangbooks/madang/internal/domain/ident"
	"github.com/madangbooks/madang/internal/wire"
)

// SubmitSale runs the order entry workflow. A sale that does not commit is
// answered with the error body carrying the state it stopped at.
func (h *Handler) SubmitSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := h.readBody(w, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	req, err := wire.DecodeSaleRequest(body)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	res, err := h.sales.Submit(ctx, req)
	if err != nil {
		writeProblem(ctx, w, wire.SaleProblem(res))
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { wire.Result(e, res) })
}

// RecordOrder records an order for an existing customer.
func (h *Handler) RecordOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := h.readBody(w, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	req, err := wire.DecodeRecordRequest(body)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	id, err := h.sales.RecordOrder(ctx, req)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { wire.OrderID(e, id) })
}

// ResolveCustomer finds or creates a customer by name.
func (h *Handler) ResolveCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := h.readBody(w, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	req, err := wire.DecodeResolveRequest(body)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	res, err := h.sales.ResolveCustomer(ctx, req)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { wire.Resolution(e, res) })
}

// NextID previews the key the next insert into {table} would get.
func (h *Handler) NextID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	t, err := ident.Lookup(r.PathValue("table"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	next, err := h.sales.NextID(ctx, t)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { wire.NextID(e, t.Name, next) })
}
