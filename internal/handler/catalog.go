package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/madangbooks/madang/internal/wire"
)

// ListBooks returns the catalog.
func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.sales.Books(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { wire.Books(e, books) })
}

// GetBook returns one catalog entry.
func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	b, err := h.sales.Book(r.Context(), id)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { wire.Book(e, *b) })
}

// ListCustomers returns every customer, or those matching ?name=.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.sales.Customers(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { wire.Customers(e, customers) })
}

// ListOrders returns every order line.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.sales.Orders(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { wire.Orders(e, orders) })
}

// History returns the purchase history for ?name=. Repeating the parameter
// returns an object keyed by name instead of a list.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	names := r.URL.Query()["name"]
	if len(names) > 1 {
		byName, err := h.sales.Histories(r.Context(), names)
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		writeJSON(w, http.StatusOK, func(e *jx.Encoder) { wire.Histories(e, byName) })
		return
	}

	entries, err := h.sales.History(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { wire.History(e, entries) })
}
