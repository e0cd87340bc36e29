package models

import (
	"encoding/json"
	"time"

	"github.com/aleister1102/stockwatch/internal/common"
)

// PersistedStateVersion is written into every record. Only one generation
// of data is ever stored, so there is no migration path between versions.
const PersistedStateVersion = 1

// PersistedState is the durable representation of the last Signal.
type PersistedState struct {
	Version int          `json:"version"`
	SavedAt time.Time    `json:"saved_at"`
	Signal  SignalRecord `json:"signal"`
}

// SignalRecord is the wire shape of a Signal.
type SignalRecord struct {
	ObservedAt time.Time  `json:"observed_at"`
	Kind       SignalKind `json:"kind"`
	Metrics    Metrics    `json:"metrics,omitempty"`
	ItemCount  int        `json:"item_count,omitempty"`
	Items      []string   `json:"items,omitempty"`
}

// NewPersistedState wraps a signal for storage.
func NewPersistedState(signal Signal, savedAt time.Time) PersistedState {
	return PersistedState{
		Version: PersistedStateVersion,
		SavedAt: savedAt.UTC(),
		Signal: SignalRecord{
			ObservedAt: signal.ObservedAt(),
			Kind:       signal.Kind(),
			Metrics:    signal.Metrics(),
			ItemCount:  signal.ItemCount(),
			Items:      signal.Items(),
		},
	}
}

// ToSignal rebuilds a validated Signal from the record.
func (p PersistedState) ToSignal() (Signal, error) {
	if p.Version != PersistedStateVersion {
		return Signal{}, common.NewValidationError("version", p.Version, "unsupported state version")
	}
	switch p.Signal.Kind {
	case SignalKindCounts:
		return NewCountSignal(p.Signal.ObservedAt, p.Signal.Metrics)
	case SignalKindItems:
		return NewItemSignal(p.Signal.ObservedAt, p.Signal.ItemCount, p.Signal.Items)
	default:
		return Signal{}, common.NewValidationError("signal.kind", p.Signal.Kind, "unknown signal kind")
	}
}

// EncodeState renders the record as indented JSON.
func EncodeState(signal Signal, savedAt time.Time) ([]byte, error) {
	return json.MarshalIndent(NewPersistedState(signal, savedAt), "", "  ")
}

// DecodeState parses and validates a stored record.
func DecodeState(data []byte) (Signal, error) {
	var state PersistedState
	if err := json.Unmarshal(data, &state); err != nil {
		return Signal{}, err
	}
	return state.ToSignal()
}
