package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lexiduel/lexiduel/internal/duel"
)

var (
	// ErrDuelNotFound is returned when no row matches the duel id.
	ErrDuelNotFound = errors.New("duel not found")
	// ErrVersionConflict means a concurrent writer advanced the row first.
	ErrVersionConflict = errors.New("duel version conflict")
)

// db is the subset of pgxpool.Pool the repositories use.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// DuelRepository persists duel documents with optimistic concurrency. The
// live record is stored as a JSON document next to a few queryable summary
// columns; the version column is the compare-and-swap guard.
type DuelRepository struct {
	db db
}

// NewDuelRepository constructs a duel repository.
func NewDuelRepository(db db) *DuelRepository {
	return &DuelRepository{db: db}
}

// Create inserts a freshly created duel.
func (r *DuelRepository) Create(ctx context.Context, d *duel.Duel) error {
	state, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal duel: %w", err)
	}

	const q = `
		INSERT INTO duels (
			duel_id, theme_id, mode, status,
			challenger_id, opponent_id,
			challenger_score, opponent_score,
			state, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = r.db.Exec(ctx, q,
		d.ID, d.ThemeID, d.Mode, string(d.Status),
		d.Challenger.ID, d.Opponent.ID,
		d.Challenger.Score, d.Opponent.Score,
		state, d.Version, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert duel: %w", err)
	}
	return nil
}

// Update writes the duel iff the stored version still equals expectedVersion.
func (r *DuelRepository) Update(ctx context.Context, d *duel.Duel, expectedVersion int64) error {
	state, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal duel: %w", err)
	}

	const q = `
		UPDATE duels SET
			status = $2,
			challenger_score = $3,
			opponent_score = $4,
			state = $5,
			version = $6,
			updated_at = $7
		WHERE duel_id = $1 AND version = $8`

	tag, err := r.db.Exec(ctx, q,
		d.ID, string(d.Status),
		d.Challenger.Score, d.Opponent.Score,
		state, d.Version, d.UpdatedAt, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("update duel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	return nil
}

// Get loads the duel document.
func (r *DuelRepository) Get(ctx context.Context, duelID uuid.UUID) (*duel.Duel, error) {
	const q = `SELECT state FROM duels WHERE duel_id = $1`

	var state []byte
	if err := r.db.QueryRow(ctx, q, duelID).Scan(&state); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDuelNotFound
		}
		return nil, fmt.Errorf("select duel: %w", err)
	}

	var d duel.Duel
	if err := json.Unmarshal(state, &d); err != nil {
		return nil, fmt.Errorf("unmarshal duel: %w", err)
	}
	return &d, nil
}

// ListForPlayer returns ids of duels the player participates in, newest first.
func (r *DuelRepository) ListForPlayer(ctx context.Context, playerID uuid.UUID, limit int) ([]uuid.UUID, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
		SELECT duel_id FROM duels
		WHERE challenger_id = $1 OR opponent_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, q, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list duels: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan duel id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
