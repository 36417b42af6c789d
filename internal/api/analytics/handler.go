// internal/api/analytics/handler.go
package analytics

import (
	"context"
	"net/http"

	apperrors "mergington-activities/internal/common/errors"
	httpx "mergington-activities/internal/common/http"
	"mergington-activities/internal/enrollment"
	"mergington-activities/internal/models"

	"github.com/gorilla/mux"
)

type Service interface {
	Student(ctx context.Context, email string) (*models.StudentAnalytics, error)
	Activity(ctx context.Context, name string) (*models.ActivityAnalytics, error)
	Overview(ctx context.Context) (*models.OverviewAnalytics, error)
}

type Handler struct {
	service Service
	errors  *apperrors.ErrorHandler
}

func NewHandler(service Service, errHandler *apperrors.ErrorHandler) *Handler {
	return &Handler{service: service, errors: errHandler}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/analytics/student/{email}", h.Student).Methods(http.MethodGet)
	r.HandleFunc("/analytics/activity/{activity_name}", h.Activity).Methods(http.MethodGet)
	r.HandleFunc("/analytics/overview", h.Overview).Methods(http.MethodGet)
}

func (h *Handler) Student(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	out, err := h.service.Student(r.Context(), email)
	if err != nil {
		h.errors.HandleHTTPError(w, r, enrollment.ToStandardError(err, "", email))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) Activity(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["activity_name"]
	out, err := h.service.Activity(r.Context(), name)
	if err != nil {
		h.errors.HandleHTTPError(w, r, enrollment.ToStandardError(err, name, ""))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.Overview(r.Context())
	if err != nil {
		h.errors.HandleHTTPError(w, r, enrollment.ToStandardError(err, "", ""))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
