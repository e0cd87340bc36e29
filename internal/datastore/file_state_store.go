package datastore

import (
	"context"
	"errors"
	"io/fs"
	"sync"
	"time"

	"github.com/aleister1102/stockwatch/internal/common"
	"github.com/aleister1102/stockwatch/internal/models"
	"github.com/rs/zerolog"
)

const fileBackend = "file"

// FileStateStore keeps the state as an indented JSON document on disk.
type FileStateStore struct {
	path        string
	fileManager *common.FileManager
	logger      zerolog.Logger
	now         func() time.Time
	mu          sync.Mutex
}

// NewFileStateStore creates a store backed by the file at path.
func NewFileStateStore(path string, logger zerolog.Logger) *FileStateStore {
	return &FileStateStore{
		path:        path,
		fileManager: common.NewFileManager(logger),
		logger:      logger.With().Str("component", "FileStateStore").Str("path", path).Logger(),
		now:         time.Now,
	}
}

// Load reads the last saved signal.
func (s *FileStateStore) Load(_ context.Context) (*models.Signal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.fileManager.ReadFile(s.path, common.DefaultFileReadOptions())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		s.logger.Warn().Err(err).Msg("Failed to read state file")
		return nil, common.NewCorruptStoreError(fileBackend, err)
	}

	signal, err := models.DecodeState(data)
	if err != nil {
		s.logger.Warn().Err(err).Msg("State file is corrupt, ignoring it")
		return nil, common.NewCorruptStoreError(fileBackend, err)
	}
	return &signal, nil
}

// Save replaces the state file atomically.
func (s *FileStateStore) Save(_ context.Context, signal models.Signal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := models.EncodeState(signal, s.now())
	if err != nil {
		return common.NewStoreError(common.StoreOpSave, fileBackend, err)
	}

	if err := s.fileManager.WriteFileAtomic(s.path, data, common.DefaultFileWriteOptions()); err != nil {
		s.logger.Error().Err(err).Msg("Failed to write state file")
		return common.NewStoreError(common.StoreOpSave, fileBackend, err)
	}

	s.logger.Debug().Str("signal", signal.Summary()).Msg("State saved")
	return nil
}

// Close is a no-op for the file backend.
func (s *FileStateStore) Close() error {
	return nil
}
