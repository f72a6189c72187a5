package duel

import (
	"fmt"
	"time"

	"github.com/lexiduel/lexiduel/pkg/duelcore"
)

// Command handlers. Each handler validates every precondition before touching
// the record, so a rejection never leaves a partial mutation behind. Handlers
// for one duel are serialized by the service layer; the arrival order of the
// two players' commands is otherwise arbitrary.

// AnswerOutcome describes the effect of a submit or timeout command.
type AnswerOutcome struct {
	Role             Role
	Answer           string
	Correct          bool
	PointsAwarded    float64
	HintBonusAwarded bool
	Advanced         bool
	Completed        bool
}

// Accept transitions pending -> accepted and starts the first question timer.
// Only the opponent slot may accept.
func (d *Duel) Accept(role Role, now time.Time) error {
	if d.Status != StatusPending {
		return reject(RejectInactiveMatch, "duel is %s, not pending", d.Status)
	}
	if role != RoleOpponent {
		return reject(RejectInvalidRole, "only the opponent may accept")
	}
	d.Status = StatusAccepted
	start := now
	d.QuestionStartTime = &start
	d.touch(now)
	return nil
}

// Reject transitions pending -> rejected. Only the opponent slot may decline.
func (d *Duel) Reject(role Role, now time.Time) error {
	if d.Status != StatusPending {
		return reject(RejectInactiveMatch, "duel is %s, not pending", d.Status)
	}
	if role != RoleOpponent {
		return reject(RejectInvalidRole, "only the opponent may reject")
	}
	d.Status = StatusRejected
	d.touch(now)
	return nil
}

// Stop is the unconditional terminal transition for a voluntary exit. It is
// idempotent: stopping an already-terminal duel is a no-op.
func (d *Duel) Stop(role Role, now time.Time) error {
	_ = role // membership was checked by the caller; either party may stop
	if d.Status.Terminal() {
		return nil
	}
	d.Status = StatusStopped
	d.QuestionStartTime = nil
	d.resetQuestionState()
	d.touch(now)
	return nil
}

// SubmitAnswer validates and scores one player's answer for the question
// under the cursor. Correctness is always recomputed server-side from the
// deterministic draw stream; client-declared correctness is never trusted.
func (d *Duel) SubmitAnswer(role Role, answer string, questionIndex int, words []duelcore.Question, now time.Time) (*AnswerOutcome, error) {
	if d.Status != StatusAccepted {
		return nil, reject(RejectInactiveMatch, "duel is %s", d.Status)
	}
	if questionIndex != d.CurrentWordIndex {
		return nil, reject(RejectStaleQuestion, "submitted for question %d, current is %d", questionIndex, d.CurrentWordIndex)
	}
	p := d.player(role)
	if p.Answered {
		return nil, reject(RejectAlreadyAnswered, "%s already answered question %d", role, questionIndex)
	}

	q, set, err := d.answerSetAt(d.CurrentWordIndex, words)
	if err != nil {
		return nil, err
	}

	correct := answer == set.CorrectOption(q)

	outcome := &AnswerOutcome{Role: role, Answer: answer, Correct: correct}
	if correct {
		dist := duelcore.ComputeDistribution(len(d.WordOrder))
		outcome.PointsAwarded = dist.LevelFor(d.CurrentWordIndex).Points()
	}

	p.Answered = true
	ans := answer
	p.LastAnswer = &ans
	p.Score += outcome.PointsAwarded

	// A correct answer given after an accepted hint with at least one
	// elimination credits the provider.
	if correct && d.HintAccepted && d.HintRequestedBy != nil && *d.HintRequestedBy == role && len(d.EliminatedOptions) >= 1 {
		d.player(role.Other()).Score += duelcore.HintBonus
		outcome.HintBonusAwarded = true
	}

	d.maybeAdvance(now, outcome)
	d.touch(now)
	return outcome, nil
}

// TimeoutAnswer records a timer expiry as the player's answer. Zero points.
// Idempotent when the player already answered.
func (d *Duel) TimeoutAnswer(role Role, now time.Time) (*AnswerOutcome, error) {
	if d.Status != StatusAccepted {
		return nil, reject(RejectInactiveMatch, "duel is %s", d.Status)
	}
	p := d.player(role)
	if p.Answered {
		return &AnswerOutcome{Role: role, Answer: AnswerTimedOut}, nil
	}

	p.Answered = true
	ans := AnswerTimedOut
	p.LastAnswer = &ans

	outcome := &AnswerOutcome{Role: role, Answer: AnswerTimedOut}
	d.maybeAdvance(now, outcome)
	d.touch(now)
	return outcome, nil
}

// RequestHint asks the already-answered player for help. Allowed only while
// the requester still owes an answer, the other side has answered, and no
// request is pending.
func (d *Duel) RequestHint(role Role, now time.Time) error {
	if d.Status != StatusAccepted {
		return reject(RejectInactiveMatch, "duel is %s", d.Status)
	}
	if d.player(role).Answered {
		return reject(RejectHintProtocolViolation, "%s already answered, nothing to hint", role)
	}
	if !d.player(role.Other()).Answered {
		return reject(RejectHintProtocolViolation, "other player has not answered yet")
	}
	if d.HintRequestedBy != nil {
		return reject(RejectHintProtocolViolation, "hint already requested by %s", *d.HintRequestedBy)
	}
	r := role
	d.HintRequestedBy = &r
	d.touch(now)
	return nil
}

// AcceptHint lets the answered player take over elimination duty. Accepting
// pauses the requester's question timer and grants a 3s extension.
func (d *Duel) AcceptHint(role Role, now time.Time) error {
	if d.Status != StatusAccepted {
		return reject(RejectInactiveMatch, "duel is %s", d.Status)
	}
	if !d.player(role).Answered {
		return reject(RejectHintProtocolViolation, "%s must answer before providing a hint", role)
	}
	if d.HintRequestedBy == nil || *d.HintRequestedBy != role.Other() {
		return reject(RejectHintProtocolViolation, "no hint request from the other player")
	}
	if d.HintAccepted {
		return reject(RejectHintProtocolViolation, "hint already accepted")
	}

	d.HintAccepted = true
	d.EliminatedOptions = []string{}

	pausedAt := now
	r := role
	d.QuestionTimerPausedAt = &pausedAt
	d.QuestionTimerPausedBy = &r
	if d.QuestionStartTime != nil {
		shifted := d.QuestionStartTime.Add(HintExtension)
		d.QuestionStartTime = &shifted
	}
	d.touch(now)
	return nil
}

// EliminateOption strikes one wrong candidate for the hint requester. The true
// correct answer can never be eliminated, including the "none of the above"
// sentinel when the hidden-answer draw made it the correct choice. The second
// elimination resumes the paused question timer.
func (d *Duel) EliminateOption(role Role, option string, words []duelcore.Question, now time.Time) error {
	if d.Status != StatusAccepted {
		return reject(RejectInactiveMatch, "duel is %s", d.Status)
	}
	if !d.HintAccepted {
		return reject(RejectHintProtocolViolation, "hint not accepted")
	}
	if d.HintRequestedBy == nil || *d.HintRequestedBy != role.Other() {
		return reject(RejectHintProtocolViolation, "%s is not the hint provider", role)
	}
	if len(d.EliminatedOptions) >= MaxEliminations {
		return reject(RejectEliminationLimitExceeded, "already eliminated %d options", MaxEliminations)
	}

	q, set, err := d.answerSetAt(d.CurrentWordIndex, words)
	if err != nil {
		return err
	}
	if option == set.CorrectOption(q) {
		return reject(RejectInvalidEliminationTarget, "cannot eliminate the correct answer")
	}
	if !containsOption(set.Options, option) {
		return reject(RejectInvalidEliminationTarget, "option %q is not on the candidate list", option)
	}
	if containsOption(d.EliminatedOptions, option) {
		return reject(RejectHintProtocolViolation, "option %q already eliminated", option)
	}

	d.EliminatedOptions = append(d.EliminatedOptions, option)

	if len(d.EliminatedOptions) == MaxEliminations && d.QuestionTimerPausedAt != nil {
		if d.QuestionStartTime != nil {
			shifted := d.QuestionStartTime.Add(now.Sub(*d.QuestionTimerPausedAt))
			d.QuestionStartTime = &shifted
		}
		d.QuestionTimerPausedAt = nil
		d.QuestionTimerPausedBy = nil
	}
	d.touch(now)
	return nil
}

// SendSabotage delivers a disruption effect to the other player, capped per
// player per match.
func (d *Duel) SendSabotage(role Role, effect string, now time.Time) error {
	if d.Status != StatusAccepted {
		return reject(RejectInactiveMatch, "duel is %s", d.Status)
	}
	p := d.player(role)
	if p.SabotagesUsed >= MaxSabotages {
		return reject(RejectSabotageLimitExceeded, "%s used all %d sabotages", role, MaxSabotages)
	}
	p.SabotagesUsed++
	d.player(role.Other()).IncomingSabotage = &Sabotage{Effect: effect, SentAt: now}
	d.touch(now)
	return nil
}

// PauseCountdown freezes the inter-question countdown. Either player may
// pause; a second pause while frozen is refused.
func (d *Duel) PauseCountdown(role Role, now time.Time) error {
	if d.Status != StatusAccepted {
		return reject(RejectInactiveMatch, "duel is %s", d.Status)
	}
	if d.CountdownPausedBy != nil {
		return reject(RejectHintProtocolViolation, "countdown already paused by %s", *d.CountdownPausedBy)
	}
	r := role
	pausedAt := now
	d.CountdownPausedBy = &r
	d.CountdownPausedAt = &pausedAt
	d.touch(now)
	return nil
}

// RequestUnpauseCountdown records that a player wants the countdown resumed.
// The other party must confirm before the clock moves again.
func (d *Duel) RequestUnpauseCountdown(role Role, now time.Time) error {
	if d.Status != StatusAccepted {
		return reject(RejectInactiveMatch, "duel is %s", d.Status)
	}
	if d.CountdownPausedBy == nil {
		return reject(RejectHintProtocolViolation, "countdown is not paused")
	}
	if d.CountdownUnpauseRequestedBy != nil {
		return reject(RejectHintProtocolViolation, "unpause already requested by %s", *d.CountdownUnpauseRequestedBy)
	}
	r := role
	d.CountdownUnpauseRequestedBy = &r
	d.touch(now)
	return nil
}

// ConfirmUnpauseCountdown completes the two-phase unpause. Self-confirmation
// is refused; the measured pause duration shifts the question start time so no
// clock time is lost to the freeze.
func (d *Duel) ConfirmUnpauseCountdown(role Role, now time.Time) error {
	if d.Status != StatusAccepted {
		return reject(RejectInactiveMatch, "duel is %s", d.Status)
	}
	if d.CountdownPausedBy == nil || d.CountdownPausedAt == nil {
		return reject(RejectHintProtocolViolation, "countdown is not paused")
	}
	if d.CountdownUnpauseRequestedBy == nil {
		return reject(RejectHintProtocolViolation, "no unpause request to confirm")
	}
	if *d.CountdownUnpauseRequestedBy == role {
		return reject(RejectHintProtocolViolation, "requester cannot confirm their own unpause")
	}

	if d.QuestionStartTime != nil {
		shifted := d.QuestionStartTime.Add(now.Sub(*d.CountdownPausedAt))
		d.QuestionStartTime = &shifted
	}
	d.CountdownPausedBy = nil
	d.CountdownPausedAt = nil
	d.CountdownUnpauseRequestedBy = nil
	d.touch(now)
	return nil
}

// SkipCountdown registers a skip vote. When both roles have voted the
// countdown collapses: votes clear and the question timer restarts at now.
// Skipping is refused while the countdown is paused.
func (d *Duel) SkipCountdown(role Role, now time.Time) (bool, error) {
	if d.Status != StatusAccepted {
		return false, reject(RejectInactiveMatch, "duel is %s", d.Status)
	}
	if d.CountdownPausedBy != nil {
		return false, reject(RejectHintProtocolViolation, "cannot skip while countdown is paused")
	}

	if d.CountdownSkipRequestedBy == nil {
		d.CountdownSkipRequestedBy = make(map[Role]bool, 2)
	}
	d.CountdownSkipRequestedBy[role] = true

	both := d.CountdownSkipRequestedBy[RoleChallenger] && d.CountdownSkipRequestedBy[RoleOpponent]
	if both {
		d.CountdownSkipRequestedBy = nil
		start := now
		d.QuestionStartTime = &start
	}
	d.touch(now)
	return both, nil
}

// maybeAdvance moves the cursor once both answers are in. The transition is
// triggered by whichever command observes both flags set, so arrival order
// does not matter and the advance fires exactly once.
func (d *Duel) maybeAdvance(now time.Time, outcome *AnswerOutcome) {
	if !d.bothAnswered() {
		return
	}

	d.CurrentWordIndex++
	d.resetQuestionState()
	outcome.Advanced = true

	if d.Finished() {
		d.Status = StatusCompleted
		d.QuestionStartTime = nil
		outcome.Completed = true
		return
	}

	start := now
	d.QuestionStartTime = &start
}

// resetQuestionState clears everything scoped to a single question: answered
// flags, hint negotiation, timer pause, countdown consensus.
func (d *Duel) resetQuestionState() {
	d.Challenger.Answered = false
	d.Opponent.Answered = false
	d.HintRequestedBy = nil
	d.HintAccepted = false
	d.EliminatedOptions = nil
	d.QuestionTimerPausedAt = nil
	d.QuestionTimerPausedBy = nil
	d.CountdownPausedBy = nil
	d.CountdownPausedAt = nil
	d.CountdownUnpauseRequestedBy = nil
	d.CountdownSkipRequestedBy = nil
}

// answerSetAt replays the deterministic derivation for the question at the
// given cursor position. Submit and eliminate both go through here so the
// hidden-answer decision can never diverge between the two paths.
func (d *Duel) answerSetAt(index int, words []duelcore.Question) (duelcore.Question, duelcore.AnswerSet, error) {
	if index < 0 || index >= len(d.WordOrder) {
		return duelcore.Question{}, duelcore.AnswerSet{}, fmt.Errorf("no question at cursor %d", index)
	}
	wordIdx := d.WordOrder[index]
	if wordIdx < 0 || wordIdx >= len(words) {
		return duelcore.Question{}, duelcore.AnswerSet{}, fmt.Errorf("word order entry %d outside theme of %d words", wordIdx, len(words))
	}
	q := words[wordIdx]
	dist := duelcore.ComputeDistribution(len(d.WordOrder))
	set := duelcore.BuildAnswerSet(q, index, dist.LevelFor(index))
	return q, set, nil
}

func (d *Duel) touch(now time.Time) {
	d.UpdatedAt = now
}

func containsOption(options []string, option string) bool {
	for _, o := range options {
		if o == option {
			return true
		}
	}
	return false
}
