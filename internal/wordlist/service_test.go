package wordlist

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lexiduel/lexiduel/pkg/duelcore"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetTheme(ctx context.Context, themeID uuid.UUID) (Theme, error) {
	args := m.Called(ctx, themeID)
	return args.Get(0).(Theme), args.Error(1)
}

func (m *mockStore) ListWords(ctx context.Context, themeID uuid.UUID) ([]duelcore.Question, error) {
	args := m.Called(ctx, themeID)
	if words := args.Get(0); words != nil {
		return words.([]duelcore.Question), args.Error(1)
	}
	return nil, args.Error(1)
}

type stubStore struct {
	theme     Theme
	words     []duelcore.Question
	err       error
	listCalls int
}

func (s *stubStore) GetTheme(_ context.Context, _ uuid.UUID) (Theme, error) {
	return s.theme, s.err
}

func (s *stubStore) ListWords(_ context.Context, _ uuid.UUID) ([]duelcore.Question, error) {
	s.listCalls++
	return s.words, s.err
}

type memoryCache struct {
	store map[uuid.UUID][]duelcore.Question
}

func newMemoryCache() *memoryCache {
	return &memoryCache{store: map[uuid.UUID][]duelcore.Question{}}
}

func (c *memoryCache) Get(_ context.Context, themeID uuid.UUID) ([]duelcore.Question, error) {
	return c.store[themeID], nil
}

func (c *memoryCache) Set(_ context.Context, themeID uuid.UUID, words []duelcore.Question) error {
	c.store[themeID] = words
	return nil
}

func TestWordsReadThrough(t *testing.T) {
	themeID := uuid.New()
	store := &stubStore{
		words: []duelcore.Question{
			{Prompt: "laconic", Answer: "terse", Distractors: []string{"wordy", "loud"}},
		},
	}
	cache := newMemoryCache()
	svc := NewService(store, cache, zerolog.Nop())

	words, err := svc.Words(context.Background(), themeID)
	require.NoError(t, err)
	assert.Len(t, words, 1)
	assert.Equal(t, 1, store.listCalls)

	// Second read comes from the cache.
	words, err = svc.Words(context.Background(), themeID)
	require.NoError(t, err)
	assert.Len(t, words, 1)
	assert.Equal(t, 1, store.listCalls)
}

func TestWordsStoreError(t *testing.T) {
	store := &stubStore{err: errors.New("db down")}
	svc := NewService(store, newMemoryCache(), zerolog.Nop())

	_, err := svc.Words(context.Background(), uuid.New())
	assert.Error(t, err)
}

func TestThemePassesThrough(t *testing.T) {
	themeID := uuid.New()
	want := Theme{ID: themeID, Name: "sat-vocab", WordCount: 40}

	store := new(mockStore)
	store.On("GetTheme", mock.Anything, themeID).Return(want, nil).Once()
	svc := NewService(store, nil, zerolog.Nop())

	got, err := svc.Theme(context.Background(), themeID)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	store.AssertExpectations(t)
}

func TestWordsNilCache(t *testing.T) {
	store := &stubStore{words: []duelcore.Question{{Prompt: "p", Answer: "a"}}}
	svc := NewService(store, nil, zerolog.Nop())

	words, err := svc.Words(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Len(t, words, 1)
}
