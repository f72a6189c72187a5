package ws

import "encoding/json"

// MessageType constants for the duel WebSocket protocol.
const (
	// Client -> Server
	TypeJoinDuel                = "join_duel"
	TypeLeaveDuel               = "leave_duel"
	TypeSubmitAnswer            = "submit_answer"
	TypeTimeoutAnswer           = "timeout_answer"
	TypeRequestHint             = "request_hint"
	TypeAcceptHint              = "accept_hint"
	TypeEliminateOption         = "eliminate_option"
	TypeSendSabotage            = "send_sabotage"
	TypePauseCountdown          = "pause_countdown"
	TypeRequestUnpauseCountdown = "request_unpause_countdown"
	TypeConfirmUnpauseCountdown = "confirm_unpause_countdown"
	TypeSkipCountdown           = "skip_countdown"
	TypeStopDuel                = "stop_duel"

	// Server -> Client
	TypeDuelState        = "duel_state"
	TypeAnswerAck        = "answer_ack"
	TypeHintRequested    = "hint_requested"
	TypeHintAccepted     = "hint_accepted"
	TypeOptionEliminated = "option_eliminated"
	TypeSabotageIncoming = "sabotage_incoming"
	TypeCountdownPaused  = "countdown_paused"
	TypeUnpauseRequested = "unpause_requested"
	TypeCountdownResumed = "countdown_resumed"
	TypeCountdownSkipped = "countdown_skipped"
	TypeDuelComplete     = "duel_complete"
	TypeError            = "error"
	TypePing             = "ping"
	TypePong             = "pong"
)

// Message wraps all WebSocket payloads with type and optional request ID.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	RequestID string          `json:"request_id,omitempty"`
}

// Client Messages (incoming)

type JoinDuelPayload struct {
	DuelID string `json:"duel_id"`
}

type SubmitAnswerPayload struct {
	DuelID        string `json:"duel_id"`
	QuestionIndex int    `json:"question_index"`
	Answer        string `json:"answer"`
}

type TimeoutAnswerPayload struct {
	DuelID        string `json:"duel_id"`
	QuestionIndex int    `json:"question_index"`
}

type HintPayload struct {
	DuelID string `json:"duel_id"`
}

type EliminateOptionPayload struct {
	DuelID string `json:"duel_id"`
	Option string `json:"option"`
}

type SendSabotagePayload struct {
	DuelID string `json:"duel_id"`
	Effect string `json:"effect"`
}

type CountdownPayload struct {
	DuelID string `json:"duel_id"`
}

type StopDuelPayload struct {
	DuelID string `json:"duel_id"`
}

// Server Messages (outgoing)

// DuelStatePayload carries the full duel document after a state change. The
// raw state is the same JSON clients receive from the REST surface.
type DuelStatePayload struct {
	DuelID string          `json:"duel_id"`
	State  json.RawMessage `json:"state"`
}

type AnswerAckPayload struct {
	DuelID        string  `json:"duel_id"`
	QuestionIndex int     `json:"question_index"`
	Correct       bool    `json:"correct"`
	PointsAwarded float64 `json:"points_awarded"`
	Advanced      bool    `json:"advanced"`
}

type HintEventPayload struct {
	DuelID string `json:"duel_id"`
	Role   string `json:"role"`
}

type OptionEliminatedPayload struct {
	DuelID string `json:"duel_id"`
	Option string `json:"option"`
	Role   string `json:"role"`
}

type SabotageIncomingPayload struct {
	DuelID string `json:"duel_id"`
	Effect string `json:"effect"`
	From   string `json:"from"`
}

type CountdownEventPayload struct {
	DuelID string `json:"duel_id"`
	Role   string `json:"role"`
}

type DuelCompletePayload struct {
	DuelID          string  `json:"duel_id"`
	ChallengerScore float64 `json:"challenger_score"`
	OpponentScore   float64 `json:"opponent_score"`
	Winner          string  `json:"winner,omitempty"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
