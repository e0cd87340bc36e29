package datastore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aleister1102/stockwatch/internal/common"
	"github.com/aleister1102/stockwatch/internal/config"
	"github.com/aleister1102/stockwatch/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)

func countSignal(t *testing.T, women, men int) models.Signal {
	t.Helper()
	s, err := models.NewCountSignal(at, models.Metrics{
		{Name: "women", Value: women},
		{Name: "men", Value: men},
	})
	require.NoError(t, err)
	return s
}

func itemSignal(t *testing.T) models.Signal {
	t.Helper()
	s, err := models.NewItemSignal(at, 12, []string{
		"Dress | Rs. 499 | https://shop.example.com/p/1",
		"Shoe | Rs. 899 | https://shop.example.com/p/2",
	})
	require.NoError(t, err)
	return s
}

func newStores(t *testing.T) map[string]StateStore {
	t.Helper()
	dir := t.TempDir()

	fileStore, err := NewStateStore(config.StorageConfig{
		Backend:   config.StorageBackendFile,
		StateFile: filepath.Join(dir, "nested", "state.json"),
	}, zerolog.Nop())
	require.NoError(t, err)

	sqliteStore, err := NewStateStore(config.StorageConfig{
		Backend:    config.StorageBackendSQLite,
		SQLitePath: filepath.Join(dir, "db", "state.db"),
	}, zerolog.Nop())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = fileStore.Close()
		_ = sqliteStore.Close()
	})
	return map[string]StateStore{"file": fileStore, "sqlite": sqliteStore}
}

func TestStateStore_LoadEmpty(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			signal, err := store.Load(context.Background())
			assert.NoError(t, err)
			assert.Nil(t, signal)
		})
	}
}

func TestStateStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			first := countSignal(t, 40, 10)
			require.NoError(t, store.Save(ctx, first))

			loaded, err := store.Load(ctx)
			require.NoError(t, err)
			require.NotNil(t, loaded)
			assert.True(t, first.Equal(*loaded))
			assert.Equal(t, []string{"women", "men"}, loaded.Metrics().Names())

			// Save is a full overwrite, including a change of kind.
			second := itemSignal(t)
			require.NoError(t, store.Save(ctx, second))

			loaded, err = store.Load(ctx)
			require.NoError(t, err)
			require.NotNil(t, loaded)
			assert.True(t, second.Equal(*loaded))
			assert.Equal(t, at, loaded.ObservedAt())
		})
	}
}

func TestFileStateStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 1, "signal": {"kind": "gar`), 0644))
	store := NewFileStateStore(path, zerolog.Nop())

	signal, err := store.Load(context.Background())

	assert.Nil(t, signal)
	require.Error(t, err)
	var storeErr *common.StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.True(t, storeErr.Corrupt)
	assert.Equal(t, common.StoreOpLoad, storeErr.Op)
}

func TestFileStateStore_InvalidRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	body := `{"version": 1, "saved_at": "2026-05-04T10:30:00Z", "signal": {"observed_at": "2026-05-04T10:30:00Z", "kind": "items", "item_count": 1, "items": ["a", "b"]}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	store := NewFileStateStore(path, zerolog.Nop())

	signal, err := store.Load(context.Background())

	assert.Nil(t, signal)
	assert.True(t, common.IsStoreError(err))
}

func TestFileStateStore_SaveWritesIndentedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewFileStateStore(path, zerolog.Nop())
	store.now = func() time.Time { return at }

	require.NoError(t, store.Save(context.Background(), countSignal(t, 42, 10)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version": 1`)
	assert.Contains(t, string(data), `"saved_at": "2026-05-04T10:30:00Z"`)
	assert.Contains(t, string(data), `"women": 42`)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStateStore_SaveFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	store := NewFileStateStore(filepath.Join(blocker, "state.json"), zerolog.Nop())

	err := store.Save(context.Background(), countSignal(t, 1, 1))

	var storeErr *common.StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, common.StoreOpSave, storeErr.Op)
	assert.False(t, storeErr.Corrupt)
}

func TestSQLiteStateStore_CorruptRow(t *testing.T) {
	store, err := NewSQLiteStateStore(filepath.Join(t.TempDir(), "state.db"), zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()

	_, err = store.db.Exec(`INSERT INTO watch_state (id, saved_at, kind, payload) VALUES (1, ?, 'items', 'not json')`, at)
	require.NoError(t, err)

	signal, err := store.Load(context.Background())
	assert.Nil(t, signal)
	var storeErr *common.StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.True(t, storeErr.Corrupt)
}

func TestSQLiteStateStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()

	store, err := NewSQLiteStateStore(path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, itemSignal(t)))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStateStore(path, zerolog.Nop())
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 12, loaded.ItemCount())
}

func TestNewStateStore_UnknownBackend(t *testing.T) {
	store, err := NewStateStore(config.StorageConfig{Backend: "redis"}, zerolog.Nop())
	assert.Nil(t, store)
	assert.Error(t, err)
}
