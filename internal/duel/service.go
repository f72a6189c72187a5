package duel

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lexiduel/lexiduel/pkg/duelcore"
)

// Repository persists duel rows with optimistic concurrency on the version
// column.
type Repository interface {
	Create(ctx context.Context, d *Duel) error
	Update(ctx context.Context, d *Duel, expectedVersion int64) error
	Get(ctx context.Context, duelID uuid.UUID) (*Duel, error)
	ListForPlayer(ctx context.Context, playerID uuid.UUID, limit int) ([]uuid.UUID, error)
}

// LiveStore holds the hot duel document and the per-duel command lock.
type LiveStore interface {
	Lock(ctx context.Context, duelID uuid.UUID) (func() error, error)
	Save(ctx context.Context, d *Duel) error
	Get(ctx context.Context, duelID uuid.UUID) (*Duel, error)
	Delete(ctx context.Context, duelID uuid.UUID) error
}

// WordSource resolves a theme to its ordered, immutable word list.
type WordSource interface {
	Words(ctx context.Context, themeID uuid.UUID) ([]duelcore.Question, error)
}

// Service runs duel commands: it serializes access per duel, resolves the
// caller to a slot, applies the state machine and persists the result.
type Service struct {
	repo    Repository
	live    LiveStore
	wordSrc WordSource
	clock   func() time.Time
	logger  zerolog.Logger
}

// NewService wires the duel service.
func NewService(repo Repository, live LiveStore, wordSrc WordSource, logger zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		live:    live,
		wordSrc: wordSrc,
		clock:   time.Now,
		logger:  logger,
	}
}

// Create builds a pending duel with a fresh word order permutation. The
// permutation is generated exactly once here; nothing regenerates it later.
func (s *Service) Create(ctx context.Context, challengerID, opponentID, themeID uuid.UUID, mode string) (*Duel, error) {
	words, err := s.wordSrc.Words(ctx, themeID)
	if err != nil {
		observeCommand("create", err)
		return nil, fmt.Errorf("resolve theme %s: %w", themeID, err)
	}
	if len(words) == 0 {
		err := fmt.Errorf("theme %s has no words", themeID)
		observeCommand("create", err)
		return nil, err
	}
	if mode == "" {
		mode = "standard"
	}

	d := New(challengerID, opponentID, themeID, mode, rand.Perm(len(words)), s.clock())
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("new duel invalid: %w", err)
	}

	if err := s.repo.Create(ctx, d); err != nil {
		observeCommand("create", err)
		return nil, fmt.Errorf("persist duel: %w", err)
	}
	if err := s.live.Save(ctx, d); err != nil {
		s.logger.Warn().Err(err).Str("duel_id", d.ID.String()).Msg("failed to cache new duel")
	}

	observeCommand("create", nil)
	s.logger.Info().
		Str("duel_id", d.ID.String()).
		Str("challenger", challengerID.String()).
		Str("opponent", opponentID.String()).
		Int("words", len(words)).
		Msg("duel created")
	return d, nil
}

// Accept transitions a pending duel to accepted; opponent only.
func (s *Service) Accept(ctx context.Context, callerID, duelID uuid.UUID) (*Duel, error) {
	return s.apply(ctx, callerID, duelID, "accept", func(d *Duel, role Role, now time.Time) error {
		return d.Accept(role, now)
	})
}

// Reject declines a pending duel; opponent only.
func (s *Service) Reject(ctx context.Context, callerID, duelID uuid.UUID) (*Duel, error) {
	return s.apply(ctx, callerID, duelID, "reject", func(d *Duel, role Role, now time.Time) error {
		return d.Reject(role, now)
	})
}

// Stop ends an active duel voluntarily; either member.
func (s *Service) Stop(ctx context.Context, callerID, duelID uuid.UUID) (*Duel, error) {
	return s.apply(ctx, callerID, duelID, "stop", func(d *Duel, role Role, now time.Time) error {
		return d.Stop(role, now)
	})
}

// SubmitAnswer validates, scores and possibly advances the cursor.
func (s *Service) SubmitAnswer(ctx context.Context, callerID, duelID uuid.UUID, answer string, questionIndex int) (*Duel, *AnswerOutcome, error) {
	var outcome *AnswerOutcome
	d, err := s.applyWithWords(ctx, callerID, duelID, "submit_answer", func(d *Duel, role Role, words []duelcore.Question, now time.Time) error {
		var cmdErr error
		outcome, cmdErr = d.SubmitAnswer(role, answer, questionIndex, words, now)
		return cmdErr
	})
	return d, outcome, err
}

// TimeoutAnswer records a timer expiry for the caller's slot.
func (s *Service) TimeoutAnswer(ctx context.Context, callerID, duelID uuid.UUID) (*Duel, *AnswerOutcome, error) {
	var outcome *AnswerOutcome
	d, err := s.apply(ctx, callerID, duelID, "timeout_answer", func(d *Duel, role Role, now time.Time) error {
		var cmdErr error
		outcome, cmdErr = d.TimeoutAnswer(role, now)
		return cmdErr
	})
	return d, outcome, err
}

// RequestHint starts the hint negotiation.
func (s *Service) RequestHint(ctx context.Context, callerID, duelID uuid.UUID) (*Duel, error) {
	return s.apply(ctx, callerID, duelID, "request_hint", func(d *Duel, role Role, now time.Time) error {
		return d.RequestHint(role, now)
	})
}

// AcceptHint lets the answered player take over elimination duty.
func (s *Service) AcceptHint(ctx context.Context, callerID, duelID uuid.UUID) (*Duel, error) {
	return s.apply(ctx, callerID, duelID, "accept_hint", func(d *Duel, role Role, now time.Time) error {
		return d.AcceptHint(role, now)
	})
}

// EliminateOption strikes a wrong candidate for the hint requester.
func (s *Service) EliminateOption(ctx context.Context, callerID, duelID uuid.UUID, option string) (*Duel, error) {
	return s.applyWithWords(ctx, callerID, duelID, "eliminate_option", func(d *Duel, role Role, words []duelcore.Question, now time.Time) error {
		return d.EliminateOption(role, option, words, now)
	})
}

// SendSabotage delivers an effect to the other player.
func (s *Service) SendSabotage(ctx context.Context, callerID, duelID uuid.UUID, effect string) (*Duel, error) {
	return s.apply(ctx, callerID, duelID, "send_sabotage", func(d *Duel, role Role, now time.Time) error {
		return d.SendSabotage(role, effect, now)
	})
}

// PauseCountdown freezes the inter-question countdown.
func (s *Service) PauseCountdown(ctx context.Context, callerID, duelID uuid.UUID) (*Duel, error) {
	return s.apply(ctx, callerID, duelID, "pause_countdown", func(d *Duel, role Role, now time.Time) error {
		return d.PauseCountdown(role, now)
	})
}

// RequestUnpauseCountdown asks the other party to resume.
func (s *Service) RequestUnpauseCountdown(ctx context.Context, callerID, duelID uuid.UUID) (*Duel, error) {
	return s.apply(ctx, callerID, duelID, "request_unpause_countdown", func(d *Duel, role Role, now time.Time) error {
		return d.RequestUnpauseCountdown(role, now)
	})
}

// ConfirmUnpauseCountdown completes the two-phase unpause.
func (s *Service) ConfirmUnpauseCountdown(ctx context.Context, callerID, duelID uuid.UUID) (*Duel, error) {
	return s.apply(ctx, callerID, duelID, "confirm_unpause_countdown", func(d *Duel, role Role, now time.Time) error {
		return d.ConfirmUnpauseCountdown(role, now)
	})
}

// SkipCountdown registers a skip vote; reports whether both sides voted.
func (s *Service) SkipCountdown(ctx context.Context, callerID, duelID uuid.UUID) (*Duel, bool, error) {
	var both bool
	d, err := s.apply(ctx, callerID, duelID, "skip_countdown", func(d *Duel, role Role, now time.Time) error {
		var cmdErr error
		both, cmdErr = d.SkipCountdown(role, now)
		return cmdErr
	})
	return d, both, err
}

// Get loads a duel for read-only use, preferring the live document.
func (s *Service) Get(ctx context.Context, duelID uuid.UUID) (*Duel, error) {
	return s.load(ctx, duelID)
}

// ListForPlayer returns ids of duels the player participates in.
func (s *Service) ListForPlayer(ctx context.Context, playerID uuid.UUID, limit int) ([]uuid.UUID, error) {
	return s.repo.ListForPlayer(ctx, playerID, limit)
}

// Words exposes the theme resolution for transport-layer snapshots.
func (s *Service) Words(ctx context.Context, themeID uuid.UUID) ([]duelcore.Question, error) {
	return s.wordSrc.Words(ctx, themeID)
}

func (s *Service) apply(ctx context.Context, callerID, duelID uuid.UUID, command string, fn func(d *Duel, role Role, now time.Time) error) (*Duel, error) {
	return s.run(ctx, callerID, duelID, command, func(d *Duel, role Role) error {
		return fn(d, role, s.clock())
	})
}

func (s *Service) applyWithWords(ctx context.Context, callerID, duelID uuid.UUID, command string, fn func(d *Duel, role Role, words []duelcore.Question, now time.Time) error) (*Duel, error) {
	return s.run(ctx, callerID, duelID, command, func(d *Duel, role Role) error {
		words, err := s.wordSrc.Words(ctx, d.ThemeID)
		if err != nil {
			return fmt.Errorf("resolve theme %s: %w", d.ThemeID, err)
		}
		return fn(d, role, words, s.clock())
	})
}

// run is the actor boundary: lock, load, resolve role, mutate, persist.
func (s *Service) run(ctx context.Context, callerID, duelID uuid.UUID, command string, fn func(d *Duel, role Role) error) (*Duel, error) {
	unlock, err := s.live.Lock(ctx, duelID)
	if err != nil {
		observeCommand(command, err)
		return nil, err
	}
	defer func() {
		if err := unlock(); err != nil {
			s.logger.Warn().Err(err).Str("duel_id", duelID.String()).Msg("failed to release duel lock")
		}
	}()

	d, err := s.load(ctx, duelID)
	if err != nil {
		observeCommand(command, err)
		return nil, err
	}

	role, err := d.RoleOf(callerID)
	if err != nil {
		observeCommand(command, err)
		return nil, err
	}

	wasCompleted := d.Status == StatusCompleted
	if err := fn(d, role); err != nil {
		observeCommand(command, err)
		return nil, err
	}

	if err := d.Validate(); err != nil {
		// A handler left the record inconsistent; refuse to persist.
		return nil, fmt.Errorf("duel %s invariant violated after %s: %w", duelID, command, err)
	}

	expected := d.Version
	d.Version++
	if err := s.repo.Update(ctx, d, expected); err != nil {
		observeCommand(command, err)
		return nil, fmt.Errorf("persist duel: %w", err)
	}
	if d.Status.Terminal() {
		// Terminal records live in the database only; evict the hot copy.
		if err := s.live.Delete(ctx, duelID); err != nil {
			s.logger.Warn().Err(err).Str("duel_id", duelID.String()).Msg("failed to evict live duel state")
		}
	} else if err := s.live.Save(ctx, d); err != nil {
		s.logger.Warn().Err(err).Str("duel_id", duelID.String()).Msg("failed to refresh live duel state")
	}

	if !wasCompleted && d.Status == StatusCompleted {
		duelsCompleted.Inc()
		s.logger.Info().
			Str("duel_id", duelID.String()).
			Float64("challenger_score", d.Challenger.Score).
			Float64("opponent_score", d.Opponent.Score).
			Msg("duel completed")
	}

	observeCommand(command, nil)
	return d, nil
}

func (s *Service) load(ctx context.Context, duelID uuid.UUID) (*Duel, error) {
	d, err := s.live.Get(ctx, duelID)
	if err != nil {
		s.logger.Warn().Err(err).Str("duel_id", duelID.String()).Msg("live state read failed, falling back to db")
	}
	if d != nil {
		return d, nil
	}

	d, err = s.repo.Get(ctx, duelID)
	if err != nil {
		return nil, fmt.Errorf("load duel %s: %w", duelID, err)
	}
	return d, nil
}
