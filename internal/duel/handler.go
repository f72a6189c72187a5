package duel

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	httperrors "github.com/lexiduel/lexiduel/pkg/http/errors"
	ws "github.com/lexiduel/lexiduel/pkg/http/ws"
)

// Handler manages WebSocket connections and routes duel commands.
type Handler struct {
	service *Service
	hub     *ws.Hub
	logger  zerolog.Logger
}

// NewHandler creates a duel WebSocket handler.
func NewHandler(service *Service, hub *ws.Hub, logger zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		hub:     hub,
		logger:  logger,
	}
}

// HandleConnection processes a new WebSocket connection. The token must be
// validated before calling this; playerID comes from the claims.
func (h *Handler) HandleConnection(conn *websocket.Conn, playerID uuid.UUID) {
	wsConn := ws.NewConnection(conn, h.logger)
	h.hub.RegisterConnection(playerID, wsConn)

	go wsConn.WritePump()

	wsConn.ReadPump(func(msg ws.Message) error {
		return h.handleMessage(context.Background(), playerID, msg)
	})

	h.hub.UnregisterConnection(playerID)
}

// handleMessage routes incoming WebSocket messages.
func (h *Handler) handleMessage(ctx context.Context, playerID uuid.UUID, msg ws.Message) error {
	switch msg.Type {
	case ws.TypeJoinDuel:
		return h.handleJoinDuel(ctx, playerID, msg.Payload)
	case ws.TypeLeaveDuel:
		return h.handleLeaveDuel(playerID, msg.Payload)
	case ws.TypeSubmitAnswer:
		return h.handleSubmitAnswer(ctx, playerID, msg.Payload)
	case ws.TypeTimeoutAnswer:
		return h.handleTimeoutAnswer(ctx, playerID, msg.Payload)
	case ws.TypeRequestHint:
		return h.handleHint(ctx, playerID, msg.Payload, ws.TypeHintRequested, h.service.RequestHint)
	case ws.TypeAcceptHint:
		return h.handleHint(ctx, playerID, msg.Payload, ws.TypeHintAccepted, h.service.AcceptHint)
	case ws.TypeEliminateOption:
		return h.handleEliminateOption(ctx, playerID, msg.Payload)
	case ws.TypeSendSabotage:
		return h.handleSendSabotage(ctx, playerID, msg.Payload)
	case ws.TypePauseCountdown:
		return h.handleCountdown(ctx, playerID, msg.Payload, ws.TypeCountdownPaused, h.service.PauseCountdown)
	case ws.TypeRequestUnpauseCountdown:
		return h.handleCountdown(ctx, playerID, msg.Payload, ws.TypeUnpauseRequested, h.service.RequestUnpauseCountdown)
	case ws.TypeConfirmUnpauseCountdown:
		return h.handleCountdown(ctx, playerID, msg.Payload, ws.TypeCountdownResumed, h.service.ConfirmUnpauseCountdown)
	case ws.TypeSkipCountdown:
		return h.handleSkipCountdown(ctx, playerID, msg.Payload)
	case ws.TypeStopDuel:
		return h.handleStopDuel(ctx, playerID, msg.Payload)
	case ws.TypePing:
		return h.hub.SendToPlayer(playerID, ws.Message{Type: ws.TypePong})
	default:
		return h.sendError(playerID, httperrors.ErrCodeUnknownMessageType, fmt.Sprintf("Unknown message type: %s", msg.Type))
	}
}

func (h *Handler) handleJoinDuel(ctx context.Context, playerID uuid.UUID, payload json.RawMessage) error {
	var req ws.JoinDuelPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return h.sendError(playerID, httperrors.ErrCodeInvalidPayload, "Invalid join_duel payload")
	}

	duelID, err := uuid.Parse(req.DuelID)
	if err != nil {
		return h.sendError(playerID, httperrors.ErrCodeInvalidDuelID, "Invalid duel ID")
	}

	d, err := h.service.Get(ctx, duelID)
	if err != nil {
		return h.sendError(playerID, httperrors.ErrCodeDuelNotFound, "Duel not found")
	}
	if _, err := d.RoleOf(playerID); err != nil {
		return h.sendError(playerID, httperrors.ErrCodeNotAMember, "Not a member of this duel")
	}

	h.hub.JoinDuel(duelID, playerID)
	return h.sendState(playerID, d)
}

func (h *Handler) handleLeaveDuel(playerID uuid.UUID, payload json.RawMessage) error {
	var req ws.JoinDuelPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return h.sendError(playerID, httperrors.ErrCodeInvalidPayload, "Invalid leave_duel payload")
	}

	duelID, err := uuid.Parse(req.DuelID)
	if err != nil {
		return h.sendError(playerID, httperrors.ErrCodeInvalidDuelID, "Invalid duel ID")
	}

	h.hub.LeaveDuel(duelID, playerID)
	return nil
}

func (h *Handler) handleSubmitAnswer(ctx context.Context, playerID uuid.UUID, payload json.RawMessage) error {
	var req ws.SubmitAnswerPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return h.sendError(playerID, httperrors.ErrCodeInvalidPayload, "Invalid submit_answer payload")
	}

	duelID, err := uuid.Parse(req.DuelID)
	if err != nil {
		return h.sendError(playerID, httperrors.ErrCodeInvalidDuelID, "Invalid duel ID")
	}

	d, outcome, err := h.service.SubmitAnswer(ctx, playerID, duelID, req.Answer, req.QuestionIndex)
	if err != nil {
		return h.sendRejection(playerID, err)
	}

	ack := ws.AnswerAckPayload{
		DuelID:        req.DuelID,
		QuestionIndex: req.QuestionIndex,
		Correct:       outcome.Correct,
		PointsAwarded: outcome.PointsAwarded,
		Advanced:      outcome.Advanced,
	}
	msg := ws.Message{Type: ws.TypeAnswerAck}
	msg.Payload, _ = json.Marshal(ack)
	if err := h.hub.SendToPlayer(playerID, msg); err != nil {
		h.logger.Warn().Err(err).Str("player_id", playerID.String()).Msg("answer ack delivery failed")
	}

	return h.afterCommand(duelID, d)
}

func (h *Handler) handleTimeoutAnswer(ctx context.Context, playerID uuid.UUID, payload json.RawMessage) error {
	var req ws.TimeoutAnswerPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return h.sendError(playerID, httperrors.ErrCodeInvalidPayload, "Invalid timeout_answer payload")
	}

	duelID, err := uuid.Parse(req.DuelID)
	if err != nil {
		return h.sendError(playerID, httperrors.ErrCodeInvalidDuelID, "Invalid duel ID")
	}

	d, _, err := h.service.TimeoutAnswer(ctx, playerID, duelID)
	if err != nil {
		return h.sendRejection(playerID, err)
	}
	return h.afterCommand(duelID, d)
}

func (h *Handler) handleHint(ctx context.Context, playerID uuid.UUID, payload json.RawMessage, eventType string, cmd func(context.Context, uuid.UUID, uuid.UUID) (*Duel, error)) error {
	var req ws.HintPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return h.sendError(playerID, httperrors.ErrCodeInvalidPayload, "Invalid hint payload")
	}

	duelID, err := uuid.Parse(req.DuelID)
	if err != nil {
		return h.sendError(playerID, httperrors.ErrCodeInvalidDuelID, "Invalid duel ID")
	}

	d, err := cmd(ctx, playerID, duelID)
	if err != nil {
		return h.sendRejection(playerID, err)
	}

	role, _ := d.RoleOf(playerID)
	event := ws.HintEventPayload{DuelID: req.DuelID, Role: string(role)}
	msg := ws.Message{Type: eventType}
	msg.Payload, _ = json.Marshal(event)
	h.hub.BroadcastToDuel(duelID, msg)

	return h.afterCommand(duelID, d)
}

func (h *Handler) handleEliminateOption(ctx context.Context, playerID uuid.UUID, payload json.RawMessage) error {
	var req ws.EliminateOptionPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return h.sendError(playerID, httperrors.ErrCodeInvalidPayload, "Invalid eliminate_option payload")
	}

	duelID, err := uuid.Parse(req.DuelID)
	if err != nil {
		return h.sendError(playerID, httperrors.ErrCodeInvalidDuelID, "Invalid duel ID")
	}

	d, err := h.service.EliminateOption(ctx, playerID, duelID, req.Option)
	if err != nil {
		return h.sendRejection(playerID, err)
	}

	role, _ := d.RoleOf(playerID)
	event := ws.OptionEliminatedPayload{DuelID: req.DuelID, Option: req.Option, Role: string(role)}
	msg := ws.Message{Type: ws.TypeOptionEliminated}
	msg.Payload, _ = json.Marshal(event)
	h.hub.BroadcastToDuel(duelID, msg)

	return h.afterCommand(duelID, d)
}

func (h *Handler) handleSendSabotage(ctx context.Context, playerID uuid.UUID, payload json.RawMessage) error {
	var req ws.SendSabotagePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return h.sendError(playerID, httperrors.ErrCodeInvalidPayload, "Invalid send_sabotage payload")
	}

	duelID, err := uuid.Parse(req.DuelID)
	if err != nil {
		return h.sendError(playerID, httperrors.ErrCodeInvalidDuelID, "Invalid duel ID")
	}

	d, err := h.service.SendSabotage(ctx, playerID, duelID, req.Effect)
	if err != nil {
		return h.sendRejection(playerID, err)
	}

	// The target learns about the effect immediately; state broadcast follows.
	role, _ := d.RoleOf(playerID)
	target := d.PlayerID(role.Other())
	incoming := ws.SabotageIncomingPayload{DuelID: req.DuelID, Effect: req.Effect, From: string(role)}
	msg := ws.Message{Type: ws.TypeSabotageIncoming}
	msg.Payload, _ = json.Marshal(incoming)
	if err := h.hub.SendToPlayer(target, msg); err != nil {
		h.logger.Debug().Err(err).Str("player_id", target.String()).Msg("sabotage target offline")
	}

	return h.afterCommand(duelID, d)
}

func (h *Handler) handleCountdown(ctx context.Context, playerID uuid.UUID, payload json.RawMessage, eventType string, cmd func(context.Context, uuid.UUID, uuid.UUID) (*Duel, error)) error {
	var req ws.CountdownPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return h.sendError(playerID, httperrors.ErrCodeInvalidPayload, "Invalid countdown payload")
	}

	duelID, err := uuid.Parse(req.DuelID)
	if err != nil {
		return h.sendError(playerID, httperrors.ErrCodeInvalidDuelID, "Invalid duel ID")
	}

	d, err := cmd(ctx, playerID, duelID)
	if err != nil {
		return h.sendRejection(playerID, err)
	}

	role, _ := d.RoleOf(playerID)
	event := ws.CountdownEventPayload{DuelID: req.DuelID, Role: string(role)}
	msg := ws.Message{Type: eventType}
	msg.Payload, _ = json.Marshal(event)
	h.hub.BroadcastToDuel(duelID, msg)

	return h.afterCommand(duelID, d)
}

func (h *Handler) handleSkipCountdown(ctx context.Context, playerID uuid.UUID, payload json.RawMessage) error {
	var req ws.CountdownPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return h.sendError(playerID, httperrors.ErrCodeInvalidPayload, "Invalid skip_countdown payload")
	}

	duelID, err := uuid.Parse(req.DuelID)
	if err != nil {
		return h.sendError(playerID, httperrors.ErrCodeInvalidDuelID, "Invalid duel ID")
	}

	d, both, err := h.service.SkipCountdown(ctx, playerID, duelID)
	if err != nil {
		return h.sendRejection(playerID, err)
	}

	if both {
		role, _ := d.RoleOf(playerID)
		event := ws.CountdownEventPayload{DuelID: req.DuelID, Role: string(role)}
		msg := ws.Message{Type: ws.TypeCountdownSkipped}
		msg.Payload, _ = json.Marshal(event)
		h.hub.BroadcastToDuel(duelID, msg)
	}

	return h.afterCommand(duelID, d)
}

func (h *Handler) handleStopDuel(ctx context.Context, playerID uuid.UUID, payload json.RawMessage) error {
	var req ws.StopDuelPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return h.sendError(playerID, httperrors.ErrCodeInvalidPayload, "Invalid stop_duel payload")
	}

	duelID, err := uuid.Parse(req.DuelID)
	if err != nil {
		return h.sendError(playerID, httperrors.ErrCodeInvalidDuelID, "Invalid duel ID")
	}

	d, err := h.service.Stop(ctx, playerID, duelID)
	if err != nil {
		return h.sendRejection(playerID, err)
	}
	return h.afterCommand(duelID, d)
}

// afterCommand broadcasts the post-command state, plus the completion summary
// when the last question just resolved.
func (h *Handler) afterCommand(duelID uuid.UUID, d *Duel) error {
	if err := h.broadcastState(duelID, d); err != nil {
		h.logger.Warn().Err(err).Str("duel_id", duelID.String()).Msg("state broadcast failed")
	}

	if d.Status == StatusCompleted {
		done := ws.DuelCompletePayload{
			DuelID:          duelID.String(),
			ChallengerScore: d.Challenger.Score,
			OpponentScore:   d.Opponent.Score,
		}
		switch {
		case d.Challenger.Score > d.Opponent.Score:
			done.Winner = string(RoleChallenger)
		case d.Opponent.Score > d.Challenger.Score:
			done.Winner = string(RoleOpponent)
		}
		msg := ws.Message{Type: ws.TypeDuelComplete}
		msg.Payload, _ = json.Marshal(done)
		h.hub.BroadcastToDuel(duelID, msg)
	}
	return nil
}

func (h *Handler) broadcastState(duelID uuid.UUID, d *Duel) error {
	state, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal duel state: %w", err)
	}
	msg := ws.Message{Type: ws.TypeDuelState}
	msg.Payload, _ = json.Marshal(ws.DuelStatePayload{DuelID: duelID.String(), State: state})
	return h.hub.BroadcastToDuel(duelID, msg)
}

func (h *Handler) sendState(playerID uuid.UUID, d *Duel) error {
	state, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal duel state: %w", err)
	}
	msg := ws.Message{Type: ws.TypeDuelState}
	msg.Payload, _ = json.Marshal(ws.DuelStatePayload{DuelID: d.ID.String(), State: state})
	return h.hub.SendToPlayer(playerID, msg)
}

// sendRejection maps a command error to a WS error frame.
func (h *Handler) sendRejection(playerID uuid.UUID, err error) error {
	if kind, ok := KindOf(err); ok {
		return h.sendError(playerID, errorCode(kind), err.Error())
	}
	h.logger.Error().Err(err).Msg("duel command failed")
	return h.sendError(playerID, httperrors.ErrCodeInternalError, "Internal error")
}

func (h *Handler) sendError(playerID uuid.UUID, code, message string) error {
	errPayload := ws.ErrorPayload{
		Code:    code,
		Message: message,
	}
	msg := ws.Message{Type: ws.TypeError}
	msg.Payload, _ = json.Marshal(errPayload)
	return h.hub.SendToPlayer(playerID, msg)
}

// errorCode translates a rejection kind to its wire code.
func errorCode(kind RejectionKind) string {
	switch kind {
	case RejectUnauthorized:
		return httperrors.ErrCodeUnauthorized
	case RejectNotAMember:
		return httperrors.ErrCodeNotAMember
	case RejectInvalidRole:
		return httperrors.ErrCodeInvalidRole
	case RejectInactiveMatch:
		return httperrors.ErrCodeInactiveDuel
	case RejectStaleQuestion:
		return httperrors.ErrCodeStaleQuestion
	case RejectAlreadyAnswered:
		return httperrors.ErrCodeAlreadyAnswered
	case RejectHintProtocolViolation:
		return httperrors.ErrCodeProtocolViolation
	case RejectEliminationLimitExceeded:
		return httperrors.ErrCodeEliminationLimit
	case RejectSabotageLimitExceeded:
		return httperrors.ErrCodeSabotageLimit
	case RejectInvalidEliminationTarget:
		return httperrors.ErrCodeInvalidElimination
	default:
		return httperrors.ErrCodeInvalidRequest
	}
}
