package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"leasing_hub/internal/lib/logger/sl"
	"leasing_hub/internal/lib/rules"
	"leasing_hub/internal/services/lease"
	"leasing_hub/internal/services/scheduler"
	"leasing_hub/internal/services/site"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusFor сопоставляет ошибку сервисов с HTTP-статусом.
func statusFor(err error) int {
	switch {
	case errors.Is(err, lease.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, lease.ErrSiteNotFound),
		errors.Is(err, lease.ErrClientNotFound),
		errors.Is(err, lease.ErrLeaseRequestNotFound),
		errors.Is(err, site.ErrSiteNotFound):
		return http.StatusNotFound
	case errors.Is(err, lease.ErrSiteNotAvailable),
		errors.Is(err, scheduler.ErrRunInProgress):
		return http.StatusConflict
	case errors.Is(err, rules.ErrInvalidDocument):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", slog.String("path", r.URL.Path), sl.Err(err))
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func pathID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func queryPtr[T ~string](r *http.Request, key string) *T {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	t := T(v)
	return &t
}

func queryUUID(r *http.Request, key string) (*uuid.UUID, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func queryPage(r *http.Request) (page, size int32, err error) {
	p, err := queryInt(r, "page", 1)
	if err != nil {
		return 0, 0, err
	}
	s, err := queryInt(r, "page_size", 0)
	if err != nil {
		return 0, 0, err
	}
	return int32(p), int32(s), nil
}
