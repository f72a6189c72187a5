package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexiduel/lexiduel/internal/duel"
)

type fakeDB struct {
	execTag  pgconn.CommandTag
	execErr  error
	lastSQL  string
	lastArgs []any
	rowScan  func(dest ...any) error
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.lastSQL = sql
	f.lastArgs = args
	return f.execTag, f.execErr
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.lastSQL = sql
	f.lastArgs = args
	return fakeRow{scan: f.rowScan}
}

func (f *fakeDB) Query(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error {
	return r.scan(dest...)
}

func sampleDuel(t *testing.T) *duel.Duel {
	t.Helper()
	return duel.New(uuid.New(), uuid.New(), uuid.New(), "standard", []int{0, 1, 2}, time.Now().UTC())
}

func TestCreateInsertsRow(t *testing.T) {
	db := &fakeDB{execTag: pgconn.NewCommandTag("INSERT 0 1")}
	repo := NewDuelRepository(db)

	err := repo.Create(context.Background(), sampleDuel(t))
	require.NoError(t, err)
	assert.Contains(t, db.lastSQL, "INSERT INTO duels")
	assert.Len(t, db.lastArgs, 12)
}

func TestUpdateVersionConflict(t *testing.T) {
	db := &fakeDB{execTag: pgconn.NewCommandTag("UPDATE 0")}
	repo := NewDuelRepository(db)

	err := repo.Update(context.Background(), sampleDuel(t), 3)
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestUpdateMatchedRow(t *testing.T) {
	db := &fakeDB{execTag: pgconn.NewCommandTag("UPDATE 1")}
	repo := NewDuelRepository(db)

	d := sampleDuel(t)
	d.Version = 4
	err := repo.Update(context.Background(), d, 3)
	require.NoError(t, err)
	// Expected version is the last bind parameter.
	assert.Equal(t, int64(3), db.lastArgs[len(db.lastArgs)-1])
}

func TestGetUnmarshalsState(t *testing.T) {
	want := sampleDuel(t)
	blob, err := json.Marshal(want)
	require.NoError(t, err)

	db := &fakeDB{rowScan: func(dest ...any) error {
		*(dest[0].(*[]byte)) = blob
		return nil
	}}
	repo := NewDuelRepository(db)

	got, err := repo.Get(context.Background(), want.ID)
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.WordOrder, got.WordOrder)
}

func TestGetNotFound(t *testing.T) {
	db := &fakeDB{rowScan: func(_ ...any) error { return pgx.ErrNoRows }}
	repo := NewDuelRepository(db)

	_, err := repo.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrDuelNotFound)
}
