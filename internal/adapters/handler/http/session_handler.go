package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/teamweek/api/internal/core/domain"
	"github.com/teamweek/api/internal/core/ports"
)

type SessionHandler struct {
	service ports.SessionService
}

func NewSessionHandler(service ports.SessionService) *SessionHandler {
	return &SessionHandler{
		service: service,
	}
}

func (h *SessionHandler) GetCurrentSession(w http.ResponseWriter, r *http.Request) {
	includeVotes := r.URL.Query().Get("includeVotes") == "true"

	session, err := h.service.GetActiveSession(r.Context(), includeVotes)
	if err != nil {
		internalError(w, "GetCurrentSession", err)
		return
	}
	if session == nil {
		http.Error(w, "no open vote session", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (h *SessionHandler) CreateNextWeekSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.CreateNextWeekSession(r.Context())
	if err != nil {
		internalError(w, "CreateNextWeekSession", err)
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

func (h *SessionHandler) RunMaintenance(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ValidateAndFixSessionState(r.Context()); err != nil {
		internalError(w, "RunMaintenance", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type deactivateExpiredResponse struct {
	Deactivated int `json:"deactivated"`
}

func (h *SessionHandler) DeactivateExpired(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.DeactivateExpiredSessions(r.Context())
	if err != nil {
		internalError(w, "DeactivateExpired", err)
		return
	}

	writeJSON(w, http.StatusOK, deactivateExpiredResponse{Deactivated: count})
}

func (h *SessionHandler) EnsureSingleActive(w http.ResponseWriter, r *http.Request) {
	if err := h.service.EnsureSingleActiveSession(r.Context()); err != nil {
		internalError(w, "EnsureSingleActive", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// internalError hides persistence details from clients; the service
// layer has already logged the underlying cause with session context.
func internalError(w http.ResponseWriter, op string, err error) {
	slog.Error("request failed", "op", op, "error", err)
	http.Error(w, domain.ErrInternal.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
