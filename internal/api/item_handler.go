package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/strefethen/crud-example/internal/api/shared"
	"github.com/strefethen/crud-example/internal/domain"
	"github.com/strefethen/crud-example/internal/service"
)

// ItemHandler handles item-related HTTP requests
type ItemHandler struct {
	itemService service.ItemService
}

// NewItemHandler creates a new ItemHandler
func NewItemHandler(itemService service.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

// Routes registers the item endpoints on r.
func (h *ItemHandler) Routes(r chi.Router) {
	r.Get("/items", h.ListItems)
	r.Post("/items", h.CreateItem)
	r.Get("/items/count", h.CountItems)
	r.Get("/items/{id}", h.GetItem)
	r.Put("/items/{id}", h.UpdateItem)
	r.Delete("/items/{id}", h.DeleteItem)
}

// ListItems handles GET /items?offset=&limit=
func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, err := domain.ParsePage(query.Get("offset"), query.Get("limit"))
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	items, err := h.itemService.ListItems(r.Context(), page)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if items == nil {
		items = []domain.Item{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, items)
}

// CountItems handles GET /items/count
func (h *ItemHandler) CountItems(w http.ResponseWriter, r *http.Request) {
	count, err := h.itemService.CountItems(r.Context())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CountResponse{Count: count})
}

// CreateItem handles POST /items
func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var in domain.ItemInput
	if err := shared.DecodeJSON(w, r, &in); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	item, err := h.itemService.CreateItem(r.Context(), in)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, item)
}

// GetItem handles GET /items/{id}
func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.itemService.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, item)
}

// UpdateItem handles PUT /items/{id}. The body replaces every mutable field.
func (h *ItemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var in domain.ItemInput
	if err := shared.DecodeJSON(w, r, &in); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	item, err := h.itemService.UpdateItem(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, item)
}

// DeleteItem handles DELETE /items/{id}
func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.itemService.DeleteItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
