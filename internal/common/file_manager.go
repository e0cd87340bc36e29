package common

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// FileReadOptions configures file reading behavior
type FileReadOptions struct {
	MaxSize int64 // Maximum file size to read (0 = no limit)
}

// FileWriteOptions configures file writing behavior
type FileWriteOptions struct {
	CreateDirs  bool        // Whether to create parent directories
	Permissions fs.FileMode // File permissions
	Sync        bool        // Whether to fsync before the rename
}

// DefaultFileReadOptions returns default file reading options
func DefaultFileReadOptions() FileReadOptions {
	return FileReadOptions{
		MaxSize: 10 * 1024 * 1024,
	}
}

// DefaultFileWriteOptions returns default file writing options
func DefaultFileWriteOptions() FileWriteOptions {
	return FileWriteOptions{
		CreateDirs:  true,
		Permissions: 0644,
		Sync:        true,
	}
}

// FileManager provides file operations with standardized error handling and logging
type FileManager struct {
	logger zerolog.Logger
}

// NewFileManager creates a new FileManager instance
func NewFileManager(logger zerolog.Logger) *FileManager {
	return &FileManager{
		logger: logger.With().Str("component", "FileManager").Logger(),
	}
}

// FileExists checks if a file or directory exists
func (fm *FileManager) FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// ReadFile reads a whole file, refusing files larger than opts.MaxSize.
func (fm *FileManager) ReadFile(path string, opts FileReadOptions) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if opts.MaxSize > 0 {
		r = io.LimitReader(f, opts.MaxSize+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, WrapError(err, "failed to read file: "+path)
	}
	if opts.MaxSize > 0 && int64(len(data)) > opts.MaxSize {
		return nil, NewValidationError("file_size", len(data), fmt.Sprintf("file %s exceeds %d bytes", path, opts.MaxSize))
	}
	return data, nil
}

// EnsureDirectory creates a directory and its parents if they don't exist
func (fm *FileManager) EnsureDirectory(path string, perm fs.FileMode) error {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return NewValidationError("path", path, "exists but is not a directory")
		}
		return nil
	}

	if err := os.MkdirAll(path, perm); err != nil {
		return WrapError(err, "failed to create directory: "+path)
	}

	fm.logger.Debug().Str("path", path).Msg("Created directory")
	return nil
}

// WriteFileAtomic replaces path with data. Readers see either the old
// content or the new content, never a partial write.
func (fm *FileManager) WriteFileAtomic(path string, data []byte, opts FileWriteOptions) error {
	dir := filepath.Dir(path)
	if opts.CreateDirs {
		if err := fm.EnsureDirectory(dir, 0755); err != nil {
			return WrapError(err, "failed to create parent directories for: "+path)
		}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return WrapError(err, "failed to create temp file for: "+path)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return WrapError(err, "failed to write temp file for: "+path)
	}
	if opts.Sync {
		if err := tmp.Sync(); err != nil {
			tmp.Close()
			return WrapError(err, "failed to sync temp file for: "+path)
		}
	}
	if err := tmp.Close(); err != nil {
		return WrapError(err, "failed to close temp file for: "+path)
	}

	perm := opts.Permissions
	if perm == 0 {
		perm = 0644
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return WrapError(err, "failed to set permissions on: "+tmpName)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return WrapError(err, "failed to replace: "+path)
	}
	committed = true

	fm.logger.Debug().Str("path", path).Int("bytes", len(data)).Msg("File written atomically")
	return nil
}
