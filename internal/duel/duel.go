package duel

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role identifies a player slot within a duel.
type Role string

const (
	RoleChallenger Role = "challenger"
	RoleOpponent   Role = "opponent"
)

// Other returns the opposite slot.
func (r Role) Other() Role {
	if r == RoleChallenger {
		return RoleOpponent
	}
	return RoleChallenger
}

// Status lifecycle states.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusStopped   Status = "stopped"
	StatusCompleted Status = "completed"
)

// Terminal reports whether no further command may mutate the duel.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusStopped || s == StatusCompleted
}

// AnswerTimedOut is stored as lastAnswer when the question timer expires
// before the player submits.
const AnswerTimedOut = "__TIMED_OUT__"

// Protocol limits.
const (
	MaxEliminations = 2
	MaxSabotages    = 5
	HintExtension   = 3 * time.Second
)

// Sabotage is a time-boxed disruption delivered to the other player.
type Sabotage struct {
	Effect string    `json:"effect"`
	SentAt time.Time `json:"sent_at"`
}

// Player is one slot's per-duel state.
type Player struct {
	ID               uuid.UUID `json:"id"`
	Answered         bool      `json:"answered"`
	Score            float64   `json:"score"`
	LastAnswer       *string   `json:"last_answer,omitempty"`
	SabotagesUsed    int       `json:"sabotages_used"`
	IncomingSabotage *Sabotage `json:"incoming_sabotage,omitempty"`
}

// Duel is the authoritative match record. It is mutated exclusively by the
// command handlers in controller.go, one command at a time per duel.
type Duel struct {
	ID        uuid.UUID `json:"id"`
	ThemeID   uuid.UUID `json:"theme_id"`
	Mode      string    `json:"mode"`
	WordOrder []int     `json:"word_order"`

	Challenger Player `json:"challenger"`
	Opponent   Player `json:"opponent"`

	Status           Status `json:"status"`
	CurrentWordIndex int    `json:"current_word_index"`

	QuestionStartTime     *time.Time `json:"question_start_time,omitempty"`
	QuestionTimerPausedAt *time.Time `json:"question_timer_paused_at,omitempty"`
	QuestionTimerPausedBy *Role      `json:"question_timer_paused_by,omitempty"`

	HintRequestedBy   *Role    `json:"hint_requested_by,omitempty"`
	HintAccepted      bool     `json:"hint_accepted"`
	EliminatedOptions []string `json:"eliminated_options,omitempty"`

	CountdownPausedBy           *Role         `json:"countdown_paused_by,omitempty"`
	CountdownPausedAt           *time.Time    `json:"countdown_paused_at,omitempty"`
	CountdownUnpauseRequestedBy *Role         `json:"countdown_unpause_requested_by,omitempty"`
	CountdownSkipRequestedBy    map[Role]bool `json:"countdown_skip_requested_by,omitempty"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates a pending duel. wordOrder is generated once at creation and is
// immutable for the duel's lifetime; no handler regenerates it.
func New(challengerID, opponentID, themeID uuid.UUID, mode string, wordOrder []int, now time.Time) *Duel {
	return &Duel{
		ID:         uuid.New(),
		ThemeID:    themeID,
		Mode:       mode,
		WordOrder:  wordOrder,
		Challenger: Player{ID: challengerID},
		Opponent:   Player{ID: opponentID},
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// RoleOf resolves a caller id to a slot.
func (d *Duel) RoleOf(playerID uuid.UUID) (Role, error) {
	switch playerID {
	case d.Challenger.ID:
		return RoleChallenger, nil
	case d.Opponent.ID:
		return RoleOpponent, nil
	default:
		return "", reject(RejectNotAMember, "player %s is not part of duel %s", playerID, d.ID)
	}
}

// player returns the mutable slot for a role.
func (d *Duel) player(role Role) *Player {
	if role == RoleChallenger {
		return &d.Challenger
	}
	return &d.Opponent
}

// PlayerID returns the id occupying a slot.
func (d *Duel) PlayerID(role Role) uuid.UUID {
	return d.player(role).ID
}

// bothAnswered reports whether the current question is resolved.
func (d *Duel) bothAnswered() bool {
	return d.Challenger.Answered && d.Opponent.Answered
}

// Finished reports whether the cursor has consumed the whole word order.
func (d *Duel) Finished() bool {
	return d.CurrentWordIndex >= len(d.WordOrder)
}

// Validate checks the record's structural invariants. It is asserted by tests
// after every command and by the service before persisting.
func (d *Duel) Validate() error {
	if d.CurrentWordIndex < 0 || d.CurrentWordIndex > len(d.WordOrder) {
		return fmt.Errorf("cursor %d out of range [0,%d]", d.CurrentWordIndex, len(d.WordOrder))
	}
	if d.CurrentWordIndex == len(d.WordOrder) && len(d.WordOrder) > 0 && d.Status != StatusCompleted && !d.Status.Terminal() {
		return fmt.Errorf("cursor exhausted but status is %s", d.Status)
	}
	if len(d.EliminatedOptions) > MaxEliminations {
		return fmt.Errorf("%d eliminations exceeds limit", len(d.EliminatedOptions))
	}
	if d.Challenger.SabotagesUsed > MaxSabotages || d.Opponent.SabotagesUsed > MaxSabotages {
		return fmt.Errorf("sabotage budget exceeded")
	}
	if d.Status == StatusAccepted && d.bothAnswered() && !d.Finished() {
		return fmt.Errorf("both answered without cursor advance")
	}

	seen := make(map[int]bool, len(d.WordOrder))
	for _, idx := range d.WordOrder {
		if idx < 0 || idx >= len(d.WordOrder) {
			return fmt.Errorf("word order entry %d out of range", idx)
		}
		if seen[idx] {
			return fmt.Errorf("word order entry %d duplicated", idx)
		}
		seen[idx] = true
	}
	return nil
}
