package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/lexiduel/lexiduel/internal/wordlist"
	"github.com/lexiduel/lexiduel/pkg/duelcore"
)

// ErrThemeNotFound is returned when no theme matches the id.
var ErrThemeNotFound = errors.New("theme not found")

// ThemeRepository reads themes and their ordered word lists.
type ThemeRepository struct {
	db db
}

// NewThemeRepository constructs a theme repository.
func NewThemeRepository(db db) *ThemeRepository {
	return &ThemeRepository{db: db}
}

// GetTheme fetches theme metadata including its word count.
func (r *ThemeRepository) GetTheme(ctx context.Context, themeID uuid.UUID) (wordlist.Theme, error) {
	const q = `
		SELECT t.theme_id, t.name, count(w.word_id)
		FROM themes t
		LEFT JOIN words w ON w.theme_id = t.theme_id
		WHERE t.theme_id = $1
		GROUP BY t.theme_id, t.name`

	var theme wordlist.Theme
	err := r.db.QueryRow(ctx, q, themeID).Scan(&theme.ID, &theme.Name, &theme.WordCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return wordlist.Theme{}, ErrThemeNotFound
		}
		return wordlist.Theme{}, fmt.Errorf("select theme: %w", err)
	}
	return theme, nil
}

// ListWords returns the theme's words in list order.
func (r *ThemeRepository) ListWords(ctx context.Context, themeID uuid.UUID) ([]duelcore.Question, error) {
	const q = `
		SELECT prompt, answer, distractors
		FROM words
		WHERE theme_id = $1
		ORDER BY position`

	rows, err := r.db.Query(ctx, q, themeID)
	if err != nil {
		return nil, fmt.Errorf("list words: %w", err)
	}
	defer rows.Close()

	var words []duelcore.Question
	for rows.Next() {
		var w duelcore.Question
		if err := rows.Scan(&w.Prompt, &w.Answer, &w.Distractors); err != nil {
			return nil, fmt.Errorf("scan word: %w", err)
		}
		words = append(words, w)
	}
	return words, rows.Err()
}
