// Package datastore persists the most recent signal between watch cycles.
package datastore

import (
	"context"

	"github.com/aleister1102/stockwatch/internal/common"
	"github.com/aleister1102/stockwatch/internal/config"
	"github.com/aleister1102/stockwatch/internal/models"
	"github.com/rs/zerolog"
)

// StateStore keeps exactly one generation of state: the last saved signal.
//
// Load returns (nil, nil) when nothing has been saved. A record that exists
// but cannot be read or decoded yields (nil, *common.StoreError); callers
// treat that the same as absence.
type StateStore interface {
	Load(ctx context.Context) (*models.Signal, error)
	Save(ctx context.Context, signal models.Signal) error
	Close() error
}

// NewStateStore builds the backend selected by cfg.Backend.
func NewStateStore(cfg config.StorageConfig, logger zerolog.Logger) (StateStore, error) {
	switch cfg.Backend {
	case "", config.StorageBackendFile:
		path := cfg.StateFile
		if path == "" {
			path = config.DefaultStateFile
		}
		return NewFileStateStore(path, logger), nil
	case config.StorageBackendSQLite:
		path := cfg.SQLitePath
		if path == "" {
			path = config.DefaultSQLitePath
		}
		store, err := NewSQLiteStateStore(path, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, common.NewValidationError("storage_config.backend", cfg.Backend, "unknown state backend")
	}
}
