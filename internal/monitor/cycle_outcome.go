package monitor

import (
	"time"

	"github.com/aleister1102/stockwatch/internal/models"
	"github.com/rs/zerolog"
)

// CycleStatus is the result class of one watch cycle.
type CycleStatus string

const (
	// StatusBaseline means no comparable prior signal existed; the fresh one was stored.
	StatusBaseline CycleStatus = "baseline"
	// StatusUnchanged means the signal did not warrant an alert.
	StatusUnchanged CycleStatus = "unchanged"
	// StatusChanged means an alert was warranted (see Alerted for delivery).
	StatusChanged CycleStatus = "changed"
	// StatusSoftFailure means the cycle was abandoned; the loop goes on.
	StatusSoftFailure CycleStatus = "soft_failure"
)

// CycleStage names the step a cycle was in.
type CycleStage string

const (
	StageFetch   CycleStage = "fetch"
	StageLoad    CycleStage = "load"
	StageCompare CycleStage = "compare"
	StageNotify  CycleStage = "notify"
	StagePersist CycleStage = "persist"
	StageDone    CycleStage = "done"
)

// CycleOutcome summarises one RunCycle call.
type CycleOutcome struct {
	CycleID   string
	StartedAt time.Time
	Duration  time.Duration
	Status    CycleStatus
	Stage     CycleStage
	Alerted   bool
	Signal    models.Signal
	Err       error
}

// Fetched reports whether the cycle obtained a fresh signal.
func (o CycleOutcome) Fetched() bool {
	return !o.Signal.IsZero()
}

func (o CycleOutcome) MarshalZerologObject(e *zerolog.Event) {
	e.Str("cycle_id", o.CycleID).
		Str("status", string(o.Status)).
		Str("stage", string(o.Stage)).
		Bool("alerted", o.Alerted).
		Dur("duration", o.Duration)
	if o.Fetched() {
		e.Str("signal", o.Signal.Summary())
	}
	if o.Err != nil {
		e.AnErr("cycle_error", o.Err)
	}
}
