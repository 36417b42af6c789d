// internal/api/activities/handler.go
package activities

import (
	"context"
	"net/http"

	apperrors "mergington-activities/internal/common/errors"
	httpx "mergington-activities/internal/common/http"
	"mergington-activities/internal/enrollment"
	"mergington-activities/internal/models"

	"github.com/gorilla/mux"
)

// Service is the enrollment surface the handlers need.
type Service interface {
	List() models.Catalog
	Signup(ctx context.Context, activityName, email string) (*models.MessageResponse, error)
	Unregister(ctx context.Context, activityName, email string) (*models.MessageResponse, error)
}

type Handler struct {
	service Service
	errors  *apperrors.ErrorHandler
}

func NewHandler(service Service, errHandler *apperrors.ErrorHandler) *Handler {
	return &Handler{service: service, errors: errHandler}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/activities", h.List).Methods(http.MethodGet)
	r.HandleFunc("/activities/{activity_name}/signup", h.Signup).Methods(http.MethodPost)
	r.HandleFunc("/activities/{activity_name}/unregister", h.Unregister).Methods(http.MethodDelete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.service.List())
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	name, email, ok := h.params(w, r)
	if !ok {
		return
	}
	resp, err := h.service.Signup(r.Context(), name, email)
	if err != nil {
		h.errors.HandleHTTPError(w, r, enrollment.ToStandardError(err, name, email))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Unregister(w http.ResponseWriter, r *http.Request) {
	name, email, ok := h.params(w, r)
	if !ok {
		return
	}
	resp, err := h.service.Unregister(r.Context(), name, email)
	if err != nil {
		h.errors.HandleHTTPError(w, r, enrollment.ToStandardError(err, name, email))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// params extracts the activity name and the required email query parameter.
// An empty email is accepted; only its absence is rejected.
func (h *Handler) params(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	query := r.URL.Query()
	if !query.Has("email") {
		h.errors.HandleHTTPError(w, r, apperrors.NewInvalidRequestError("query parameter 'email' is required"))
		return "", "", false
	}
	return mux.Vars(r)["activity_name"], query.Get("email"), true
}
