package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aleister1102/stockwatch/internal/common"
	"github.com/aleister1102/stockwatch/internal/models"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

const sqliteBackend = "sqlite"

// SQLiteStateStore keeps the state in a single row of the watch_state table.
type SQLiteStateStore struct {
	db     *sql.DB
	path   string
	logger zerolog.Logger
	now    func() time.Time
}

// NewSQLiteStateStore opens (and creates if needed) the database at path.
func NewSQLiteStateStore(path string, logger zerolog.Logger) (*SQLiteStateStore, error) {
	logger = logger.With().Str("component", "SQLiteStateStore").Str("db_path", path).Logger()

	dbDir := filepath.Dir(path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		logger.Error().Err(err).Str("directory", dbDir).Msg("Failed to create state database directory")
		return nil, fmt.Errorf("failed to create state database directory %s: %w", dbDir, err)
	}

	dbInstance, err := sql.Open("sqlite", path)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open state database")
		return nil, fmt.Errorf("sql.Open failed for %s: %w", path, err)
	}
	// One writer; avoids SQLITE_BUSY between concurrent connections.
	dbInstance.SetMaxOpenConns(1)

	store := &SQLiteStateStore{
		db:     dbInstance,
		path:   path,
		logger: logger,
		now:    time.Now,
	}

	if err := store.InitSchema(context.Background()); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	logger.Info().Msg("State database initialized")
	return store, nil
}

// InitSchema creates the watch_state table if it doesn't already exist.
func (s *SQLiteStateStore) InitSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS watch_state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		saved_at DATETIME NOT NULL,
		kind TEXT NOT NULL,
		payload TEXT NOT NULL
	);
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		s.logger.Error().Err(err).Msg("Failed to initialize schema")
		return err
	}
	return nil
}

// Load reads the last saved signal.
func (s *SQLiteStateStore) Load(ctx context.Context) (*models.Signal, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM watch_state WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to query state row")
		return nil, common.NewCorruptStoreError(sqliteBackend, err)
	}

	signal, err := models.DecodeState([]byte(payload))
	if err != nil {
		s.logger.Warn().Err(err).Msg("State row is corrupt, ignoring it")
		return nil, common.NewCorruptStoreError(sqliteBackend, err)
	}
	return &signal, nil
}

// Save overwrites the single state row in one statement.
func (s *SQLiteStateStore) Save(ctx context.Context, signal models.Signal) error {
	savedAt := s.now().UTC()
	payload, err := models.EncodeState(signal, savedAt)
	if err != nil {
		return common.NewStoreError(common.StoreOpSave, sqliteBackend, err)
	}

	query := `
	INSERT INTO watch_state (id, saved_at, kind, payload) VALUES (1, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET saved_at = excluded.saved_at, kind = excluded.kind, payload = excluded.payload
	`
	if _, err := s.db.ExecContext(ctx, query, savedAt, string(signal.Kind()), string(payload)); err != nil {
		s.logger.Error().Err(err).Msg("Failed to upsert state row")
		return common.NewStoreError(common.StoreOpSave, sqliteBackend, err)
	}

	s.logger.Debug().Str("signal", signal.Summary()).Msg("State saved")
	return nil
}

// Close closes the database connection.
func (s *SQLiteStateStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
