package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// maxBodyBytes ограничивает размер тела запроса.
const maxBodyBytes = 1 << 20

const (
	msgInvalidID      = "Invalid ID supplied."
	msgForbidden      = "You do not have permission to perform this action."
	msgConflict       = "The resource was modified concurrently, retry the request."
	msgCategoryInUse  = "Category is referenced by products and cannot be deleted."
	msgValidation     = "validation failed"
	msgBodyTooLarge   = "Request body is too large."
	msgTimeout        = "Request timed out."
	msgInternal       = "Internal server error"
	msgRouteNotFound  = "Not found."
	msgNotAllowed     = "Method not allowed."
	msgBadReference   = "Referenced object does not exist."
	msgUnreadableBody = "Request body could not be read."
)

type errorResponse struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// responder собирает общие для всех обработчиков методы записи ответа.
type responder struct {
	logger *log.Entry
}

func (h responder) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.WithError(err).Error("failed to encode JSON response")
	}
}

func (h responder) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, errorResponse{Error: message})
}

// respondError переводит ошибку прикладного слоя в HTTP-ответ.
func (h responder) respondError(w http.ResponseWriter, r *http.Request, err error) {
	if verr, ok := domain.AsValidation(err); ok {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgValidation, Fields: verr.Fields})
		return
	}

	switch {
	case domain.IsNotFound(err):
		h.writeError(w, http.StatusNotFound, notFoundMessage(err))
	case errors.Is(err, domain.ErrAccessDenied):
		h.writeError(w, http.StatusForbidden, msgForbidden)
	case errors.Is(err, domain.ErrVersionConflict):
		h.writeError(w, http.StatusConflict, msgConflict)
	case errors.Is(err, domain.ErrCategoryInUse):
		h.writeError(w, http.StatusConflict, msgCategoryInUse)
	case errors.Is(err, domain.ErrInvalidReference):
		h.writeError(w, http.StatusBadRequest, msgBadReference)
	case errors.Is(err, context.DeadlineExceeded):
		h.writeError(w, http.StatusGatewayTimeout, msgTimeout)
	default:
		h.logger.WithError(err).WithFields(log.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": middleware.GetReqID(r.Context()),
		}).Error("request failed")
		h.writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return "Product not found."
	case errors.Is(err, domain.ErrCategoryNotFound):
		return "Category not found."
	case errors.Is(err, domain.ErrCartNotFound):
		return "Cart not found."
	case errors.Is(err, domain.ErrUserNotFound):
		return "User not found."
	default:
		return msgRouteNotFound
	}
}

// pathID разбирает {id} из маршрута; при ошибке сам пишет 400.
func (h responder) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, http.StatusBadRequest, msgInvalidID)
		return 0, false
	}
	return id, true
}

// readBody читает тело не больше maxBodyBytes; при ошибке сам пишет ответ.
func (h responder) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
			return nil, false
		}
		h.writeError(w, http.StatusBadRequest, msgUnreadableBody)
		return nil, false
	}
	return body, true
}
