package wordlist

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lexiduel/lexiduel/pkg/duelcore"
)

// Theme is a named vocabulary list.
type Theme struct {
	ID        uuid.UUID
	Name      string
	WordCount int
}

// Store is the persistence surface for themes and their words.
type Store interface {
	GetTheme(ctx context.Context, themeID uuid.UUID) (Theme, error)
	ListWords(ctx context.Context, themeID uuid.UUID) ([]duelcore.Question, error)
}

// Cache is a read-through word list cache. Get returns (nil, nil) on miss.
type Cache interface {
	Get(ctx context.Context, themeID uuid.UUID) ([]duelcore.Question, error)
	Set(ctx context.Context, themeID uuid.UUID, words []duelcore.Question) error
}

// Service resolves themes to their ordered word lists. Word lists are
// immutable while a duel references them, so cached copies never go stale
// mid-match.
type Service struct {
	store  Store
	cache  Cache
	logger zerolog.Logger
}

// NewService creates a word list service.
func NewService(store Store, cache Cache, logger zerolog.Logger) *Service {
	return &Service{store: store, cache: cache, logger: logger}
}

// Theme fetches theme metadata.
func (s *Service) Theme(ctx context.Context, themeID uuid.UUID) (Theme, error) {
	return s.store.GetTheme(ctx, themeID)
}

// Words returns the theme's ordered {prompt, answer, distractors} list.
func (s *Service) Words(ctx context.Context, themeID uuid.UUID) ([]duelcore.Question, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, themeID)
		if err != nil {
			s.logger.Warn().Err(err).Str("theme_id", themeID.String()).Msg("word cache read failed")
		}
		if cached != nil {
			return cached, nil
		}
	}

	words, err := s.store.ListWords(ctx, themeID)
	if err != nil {
		return nil, fmt.Errorf("list words for theme %s: %w", themeID, err)
	}

	if s.cache != nil && len(words) > 0 {
		if err := s.cache.Set(ctx, themeID, words); err != nil {
			s.logger.Warn().Err(err).Str("theme_id", themeID.String()).Msg("word cache write failed")
		}
	}
	return words, nil
}
