package config

const (
	StorageBackendFile   = "file"
	StorageBackendSQLite = "sqlite"

	DefaultStateFile  = "state.json"
	DefaultSQLitePath = "data/stockwatch.db"
)

// StorageConfig selects where the last signal is persisted.
type StorageConfig struct {
	Backend    string `json:"backend,omitempty" yaml:"backend,omitempty" validate:"required,oneof=file sqlite"`
	StateFile  string `json:"state_file,omitempty" yaml:"state_file,omitempty"`
	SQLitePath string `json:"sqlite_path,omitempty" yaml:"sqlite_path,omitempty"`
}

func NewDefaultStorageConfig() StorageConfig {
	return StorageConfig{
		Backend:    StorageBackendFile,
		StateFile:  DefaultStateFile,
		SQLitePath: DefaultSQLitePath,
	}
}
