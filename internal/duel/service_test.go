package duel

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexiduel/lexiduel/pkg/duelcore"
)

type memRepo struct {
	mu    sync.Mutex
	duels map[uuid.UUID]*Duel
}

func newMemRepo() *memRepo {
	return &memRepo{duels: map[uuid.UUID]*Duel{}}
}

func (r *memRepo) Create(_ context.Context, d *Duel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.duels[d.ID]; exists {
		return fmt.Errorf("duplicate duel %s", d.ID)
	}
	cp := *d
	r.duels[d.ID] = &cp
	return nil
}

func (r *memRepo) Update(_ context.Context, d *Duel, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, exists := r.duels[d.ID]
	if !exists {
		return fmt.Errorf("duel %s not found", d.ID)
	}
	if stored.Version != expectedVersion {
		return fmt.Errorf("version conflict: have %d, expected %d", stored.Version, expectedVersion)
	}
	cp := *d
	r.duels[d.ID] = &cp
	return nil
}

func (r *memRepo) Get(_ context.Context, duelID uuid.UUID) (*Duel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, exists := r.duels[duelID]
	if !exists {
		return nil, fmt.Errorf("duel %s not found", duelID)
	}
	cp := *d
	return &cp, nil
}

func (r *memRepo) ListForPlayer(_ context.Context, playerID uuid.UUID, limit int) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uuid.UUID
	for id, d := range r.duels {
		if d.Challenger.ID == playerID || d.Opponent.ID == playerID {
			ids = append(ids, id)
		}
		if limit > 0 && len(ids) == limit {
			break
		}
	}
	return ids, nil
}

type memLive struct {
	mu     sync.Mutex
	duels  map[uuid.UUID]*Duel
	locked map[uuid.UUID]bool
}

func newMemLive() *memLive {
	return &memLive{duels: map[uuid.UUID]*Duel{}, locked: map[uuid.UUID]bool{}}
}

func (l *memLive) Lock(_ context.Context, duelID uuid.UUID) (func() error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locked[duelID] {
		return nil, fmt.Errorf("duel %s is busy", duelID)
	}
	l.locked[duelID] = true
	return func() error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.locked, duelID)
		return nil
	}, nil
}

func (l *memLive) Save(_ context.Context, d *Duel) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := *d
	l.duels[d.ID] = &cp
	return nil
}

func (l *memLive) Get(_ context.Context, duelID uuid.UUID) (*Duel, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	d, exists := l.duels[duelID]
	if !exists {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (l *memLive) Delete(_ context.Context, duelID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.duels, duelID)
	return nil
}

type stubWords struct {
	words []duelcore.Question
	err   error
}

func (s *stubWords) Words(_ context.Context, _ uuid.UUID) ([]duelcore.Question, error) {
	return s.words, s.err
}

func newTestService(n int) (*Service, *memRepo, *memLive) {
	repo := newMemRepo()
	live := newMemLive()
	svc := NewService(repo, live, &stubWords{words: testWords(n)}, zerolog.Nop())
	svc.clock = func() time.Time { return t0 }
	return svc, repo, live
}

func TestServiceCreateGeneratesPermutation(t *testing.T) {
	svc, repo, live := newTestService(12)

	d, err := svc.Create(context.Background(), challengerID, opponentID, themeID, "")
	require.NoError(t, err)

	assert.Equal(t, StatusPending, d.Status)
	assert.Equal(t, "standard", d.Mode)
	assert.Len(t, d.WordOrder, 12)
	require.NoError(t, d.Validate(), "word order must be a permutation")

	stored, err := repo.Get(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.WordOrder, stored.WordOrder)

	cached, err := live.Get(context.Background(), d.ID)
	require.NoError(t, err)
	require.NotNil(t, cached)
}

func TestServiceCreateEmptyTheme(t *testing.T) {
	svc := NewService(newMemRepo(), newMemLive(), &stubWords{}, zerolog.Nop())
	_, err := svc.Create(context.Background(), challengerID, opponentID, themeID, "standard")
	assert.Error(t, err)
}

func TestServiceFullDuelFlow(t *testing.T) {
	svc, repo, _ := newTestService(2)
	ctx := context.Background()

	d, err := svc.Create(ctx, challengerID, opponentID, themeID, "standard")
	require.NoError(t, err)
	words, err := svc.Words(ctx, d.ThemeID)
	require.NoError(t, err)

	// Only the opponent may accept.
	_, err = svc.Accept(ctx, challengerID, d.ID)
	assert.True(t, IsKind(err, RejectInvalidRole))

	d, err = svc.Accept(ctx, opponentID, d.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, d.Status)

	for i := 0; i < 2; i++ {
		correct := correctAnswerAt(d, words, i)

		d, _, err = svc.SubmitAnswer(ctx, challengerID, d.ID, correct, i)
		require.NoError(t, err)

		var out *AnswerOutcome
		d, out, err = svc.SubmitAnswer(ctx, opponentID, d.ID, correct, i)
		require.NoError(t, err)
		assert.True(t, out.Advanced)
	}

	assert.Equal(t, StatusCompleted, d.Status)

	stored, err := repo.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, stored.Status)
	assert.Equal(t, d.Version, stored.Version)
	assert.Greater(t, stored.Version, int64(0), "every applied command bumps the version")
}

func TestServiceRejectsNonMembers(t *testing.T) {
	svc, _, _ := newTestService(3)
	ctx := context.Background()

	d, err := svc.Create(ctx, challengerID, opponentID, themeID, "standard")
	require.NoError(t, err)

	_, err = svc.Accept(ctx, uuid.New(), d.ID)
	assert.True(t, IsKind(err, RejectNotAMember))

	_, _, err = svc.SubmitAnswer(ctx, uuid.New(), d.ID, "x", 0)
	assert.True(t, IsKind(err, RejectNotAMember))
}

func TestServiceRejectionLeavesStateUntouched(t *testing.T) {
	svc, repo, _ := newTestService(3)
	ctx := context.Background()

	d, err := svc.Create(ctx, challengerID, opponentID, themeID, "standard")
	require.NoError(t, err)
	_, err = svc.Accept(ctx, opponentID, d.ID)
	require.NoError(t, err)

	before, err := repo.Get(ctx, d.ID)
	require.NoError(t, err)

	_, _, err = svc.SubmitAnswer(ctx, challengerID, d.ID, "x", 99)
	assert.True(t, IsKind(err, RejectStaleQuestion))

	after, err := repo.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Version, after.Version, "rejected commands must not persist anything")
	assert.Equal(t, before.Challenger, after.Challenger)
}

func TestServiceLockContention(t *testing.T) {
	svc, _, live := newTestService(3)
	ctx := context.Background()

	d, err := svc.Create(ctx, challengerID, opponentID, themeID, "standard")
	require.NoError(t, err)

	unlock, err := live.Lock(ctx, d.ID)
	require.NoError(t, err)

	_, err = svc.Accept(ctx, opponentID, d.ID)
	assert.Error(t, err, "commands serialize per duel")

	require.NoError(t, unlock())
	_, err = svc.Accept(ctx, opponentID, d.ID)
	assert.NoError(t, err)
}

func TestServiceSkipCountdownConsensus(t *testing.T) {
	svc, _, _ := newTestService(3)
	ctx := context.Background()

	d, err := svc.Create(ctx, challengerID, opponentID, themeID, "standard")
	require.NoError(t, err)
	_, err = svc.Accept(ctx, opponentID, d.ID)
	require.NoError(t, err)

	_, both, err := svc.SkipCountdown(ctx, challengerID, d.ID)
	require.NoError(t, err)
	assert.False(t, both)

	_, both, err = svc.SkipCountdown(ctx, opponentID, d.ID)
	require.NoError(t, err)
	assert.True(t, both)
}
