package duel

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lexiduel/lexiduel/internal/identity"
	httperrors "github.com/lexiduel/lexiduel/pkg/http/errors"
)

// HTTPHandlers exposes the duel lifecycle over REST. Live play happens over
// the WebSocket; these endpoints cover creation, invitations and reads.
type HTTPHandlers struct {
	service  *Service
	resolver *identity.Resolver
	logger   zerolog.Logger
}

// NewHTTPHandlers creates duel HTTP handlers.
func NewHTTPHandlers(service *Service, resolver *identity.Resolver, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{service: service, resolver: resolver, logger: logger}
}

// CreateDuelRequest is the POST /v1/duels body.
type CreateDuelRequest struct {
	OpponentID string `json:"opponent_id"`
	ThemeID    string `json:"theme_id"`
	Mode       string `json:"mode,omitempty"`
}

// CreateDuel handles POST /v1/duels.
func (h *HTTPHandlers) CreateDuel(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	var req CreateDuelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid request body")
		return
	}

	opponentID, err := uuid.Parse(req.OpponentID)
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "Invalid opponent id", "opponent_id")
		return
	}
	themeID, err := uuid.Parse(req.ThemeID)
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "Invalid theme id", "theme_id")
		return
	}
	if opponentID == callerID {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "Cannot duel yourself", "opponent_id")
		return
	}

	d, err := h.service.Create(r.Context(), callerID, opponentID, themeID, req.Mode)
	if err != nil {
		h.logger.Error().Err(err).Msg("duel creation failed")
		httperrors.RespondError(w, http.StatusUnprocessableEntity, httperrors.ErrCodeDuelCreationFailed, err.Error())
		return
	}

	h.respondJSON(w, http.StatusCreated, d)
}

// GetDuel handles GET /v1/duels/{id}.
func (h *HTTPHandlers) GetDuel(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	duelID, ok := h.duelID(w, r)
	if !ok {
		return
	}

	d, err := h.service.Get(r.Context(), duelID)
	if err != nil {
		httperrors.RespondNotFound(w, httperrors.ErrCodeDuelNotFound, "Duel not found")
		return
	}
	if _, err := d.RoleOf(callerID); err != nil {
		httperrors.RespondForbidden(w, httperrors.ErrCodeNotAMember, "Not a member of this duel")
		return
	}

	h.respondJSON(w, http.StatusOK, d)
}

// ListDuels handles GET /v1/duels.
func (h *HTTPHandlers) ListDuels(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	ids, err := h.service.ListForPlayer(r.Context(), callerID, 20)
	if err != nil {
		h.logger.Error().Err(err).Msg("duel listing failed")
		httperrors.RespondInternalError(w, "Internal error")
		return
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{"duel_ids": ids})
}

// AcceptDuel handles POST /v1/duels/{id}/accept.
func (h *HTTPHandlers) AcceptDuel(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.Accept)
}

// RejectDuel handles POST /v1/duels/{id}/reject.
func (h *HTTPHandlers) RejectDuel(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.Reject)
}

// StopDuel handles POST /v1/duels/{id}/stop.
func (h *HTTPHandlers) StopDuel(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.Stop)
}

func (h *HTTPHandlers) lifecycle(w http.ResponseWriter, r *http.Request, cmd func(ctx context.Context, callerID, duelID uuid.UUID) (*Duel, error)) {
	callerID, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	duelID, ok := h.duelID(w, r)
	if !ok {
		return
	}

	d, err := cmd(r.Context(), callerID, duelID)
	if err != nil {
		h.respondCommandError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, d)
}

// authenticate resolves the bearer token to a player id.
func (h *HTTPHandlers) authenticate(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	header := r.Header.Get("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" || token == header {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Missing bearer token")
		return uuid.Nil, false
	}

	playerID, err := h.resolver.Resolve(token)
	if err != nil {
		if errors.Is(err, identity.ErrExpiredToken) {
			httperrors.RespondUnauthorized(w, httperrors.ErrCodeTokenExpired, "Token expired")
		} else {
			httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "Invalid token")
		}
		return uuid.Nil, false
	}
	return playerID, true
}

func (h *HTTPHandlers) duelID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	duelID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidDuelID, "Invalid duel ID")
		return uuid.Nil, false
	}
	return duelID, true
}

func (h *HTTPHandlers) respondCommandError(w http.ResponseWriter, err error) {
	kind, ok := KindOf(err)
	if !ok {
		h.logger.Error().Err(err).Msg("duel command failed")
		httperrors.RespondInternalError(w, "Internal error")
		return
	}

	code := errorCode(kind)
	switch kind {
	case RejectUnauthorized:
		httperrors.RespondUnauthorized(w, code, err.Error())
	case RejectNotAMember, RejectInvalidRole:
		httperrors.RespondForbidden(w, code, err.Error())
	case RejectInactiveMatch, RejectStaleQuestion, RejectAlreadyAnswered:
		httperrors.RespondConflict(w, code, err.Error())
	default:
		httperrors.RespondBadRequest(w, code, err.Error())
	}
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
