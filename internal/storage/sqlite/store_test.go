package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/sticker-gacha/internal/gacha"
	"github.com/xtding233/sticker-gacha/internal/storage"
	"github.com/xtding233/sticker-gacha/internal/storage/sqlite/migrations"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleRecord(id string) storage.SessionRecord {
	return storage.SessionRecord{
		ID:          id,
		GameVersion: "v1",
		State: gacha.SessionState{
			Pity: map[gacha.TierID]int{"common": 0, "rare": 4},
			Ledger: []gacha.PullResult{
				{Item: gacha.Item{ID: "r1", Name: "Shiny", Tier: "rare"}, Tier: "rare", IsNew: true, IsPity: true},
				{Item: gacha.Item{ID: "c1", Name: "c1", Tier: "common"}, Tier: "common"},
			},
		},
		Owned:     map[string]int{"r1": 1, "c1": 2},
		Balance:   420,
		UpdatedAt: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSaveAndLoadSession(t *testing.T) {
	ctx := context.Background()
	store := openTempStore(t)

	want := sampleRecord("s-1")
	require.NoError(t, store.SaveSession(ctx, want))

	got, err := store.LoadSession(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	want.Balance = 20
	want.State.Pity["rare"] = 0
	require.NoError(t, store.SaveSession(ctx, want))
	got, err = store.LoadSession(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, 20, got.Balance)
	assert.Equal(t, 0, got.State.Pity["rare"])
}

func TestLoadSessionNotFound(t *testing.T) {
	_, err := openTempStore(t).LoadSession(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSaveSessionValidates(t *testing.T) {
	store := openTempStore(t)
	assert.Error(t, store.SaveSession(context.Background(), storage.SessionRecord{ID: "  "}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, store.SaveSession(ctx, sampleRecord("s")), context.Canceled)
}

func TestDeleteExpired(t *testing.T) {
	ctx := context.Background()
	store := openTempStore(t)
	old := sampleRecord("old")
	fresh := sampleRecord("fresh")
	fresh.UpdatedAt = old.UpdatedAt.Add(48 * time.Hour)
	require.NoError(t, store.SaveSession(ctx, old))
	require.NoError(t, store.SaveSession(ctx, fresh))

	n, err := store.DeleteExpired(ctx, old.UpdatedAt.Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = store.LoadSession(ctx, "old")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.LoadSession(ctx, "fresh")
	assert.NoError(t, err)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sessions.db")
	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.SaveSession(context.Background(), sampleRecord("keep")))
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	defer second.Close()
	require.NoError(t, applyMigrations(context.Background(), second.sqlDB, migrations.FS))

	_, err = second.LoadSession(context.Background(), "keep")
	assert.NoError(t, err)
	assert.NoError(t, second.Ping(context.Background()))
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(" ")
	assert.Error(t, err)
}

func TestUpSection(t *testing.T) {
	assert.Equal(t, "\nA\n", upSection("-- +migrate Up\nA\n-- +migrate Down\nB"))
	assert.Equal(t, "plain", upSection("plain"))
}
