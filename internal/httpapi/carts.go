package httpapi

import (
	"net/http"

	"github.com/vladislavdragonenkov/storefront/internal/projection"
	"github.com/vladislavdragonenkov/storefront/internal/service/catalog"
)

// CartHandler обслуживает /carts.
type CartHandler struct {
	responder
	service *catalog.Service
}

// Create handles POST /carts
func (h *CartHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	draft, err := projection.DecodeCart(body)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	cart, err := h.service.CreateCart(r.Context(), draft)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, projection.NewCartView(cart))
}

// Get handles GET /carts/{id}
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	cart, err := h.service.GetCart(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, projection.NewCartView(cart))
}
