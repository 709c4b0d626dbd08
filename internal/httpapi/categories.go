package httpapi

import (
	"net/http"

	"github.com/vladislavdragonenkov/storefront/internal/projection"
	"github.com/vladislavdragonenkov/storefront/internal/service/catalog"
)

// CategoryHandler обслуживает /categories.
type CategoryHandler struct {
	responder
	service *catalog.Service
}

// List handles GET /categories. В списке только имена категорий.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, projection.CategoryNameViews(categories))
}

// Create handles POST /categories
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	draft, err := projection.DecodeCategory(body)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	created, err := h.service.CreateCategory(r.Context(), draft)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, projection.NewCategoryView(created))
}

// Get handles GET /categories/{id}
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	category, err := h.service.GetCategory(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, projection.NewCategoryView(category))
}

// Update handles PUT /categories/{id}
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	draft, err := projection.DecodeCategory(body)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	updated, err := h.service.UpdateCategory(r.Context(), id, draft)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, projection.NewCategoryView(updated))
}

// Delete handles DELETE /categories/{id}; like product deletion it answers
// 200 OK with the removed category.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	deleted, err := h.service.DeleteCategory(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, projection.NewCategoryView(deleted))
}
