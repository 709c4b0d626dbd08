package httpapi

import (
	"net/http"

	"github.com/vladislavdragonenkov/storefront/internal/access"
	"github.com/vladislavdragonenkov/storefront/internal/projection"
	"github.com/vladislavdragonenkov/storefront/internal/service/catalog"
)

// ProductHandler обслуживает /products.
type ProductHandler struct {
	responder
	service *catalog.Service
}

// List handles GET /products?category=&name=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := projection.ParseProductFilter(r.URL.Query())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	products, err := h.service.ListProducts(r.Context(), filter)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, projection.ProductViews(products))
}

// Create handles POST /products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	draft, err := projection.DecodeProduct(body)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	created, err := h.service.CreateProduct(r.Context(), draft)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, projection.NewProductView(created))
}

// Get handles GET /products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, projection.NewProductView(product))
}

// Update handles PUT /products/{id}.
// Порядок: 404 по id, затем 403 по правилам доступа, затем 400 по телу, затем 409.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	current, err := h.service.ProductForUpdate(r.Context(), access.CallerFrom(r.Context()), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	draft, err := projection.DecodeProduct(body)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	updated, err := h.service.ReplaceProduct(r.Context(), current, draft)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, projection.NewProductView(updated))
}

// Delete handles DELETE /products/{id}. The removed product is echoed with
// 200 OK: net/http drops the body of a 204 response.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	deleted, err := h.service.DeleteProduct(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, projection.NewProductView(deleted))
}
