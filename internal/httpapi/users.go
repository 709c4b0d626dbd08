package httpapi

import (
	"net/http"

	"github.com/vladislavdragonenkov/storefront/internal/projection"
	"github.com/vladislavdragonenkov/storefront/internal/service/catalog"
)

// UserHandler обслуживает /users.
type UserHandler struct {
	responder
	service *catalog.Service
}

// Create handles POST /users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	draft, err := projection.DecodeUser(body)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	user, err := h.service.CreateUser(r.Context(), draft)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, projection.NewUserView(user))
}

// Get handles GET /users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, projection.NewUserView(user))
}
