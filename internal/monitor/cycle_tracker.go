package monitor

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// CycleTracker accumulates counters across watch cycles.
type CycleTracker struct {
	mutex               sync.RWMutex
	currentCycleID      string
	totalCycles         int
	statusCounts        map[CycleStatus]int
	consecutiveFailures int
	alertsSent          int
	lastSuccess         time.Time
	lastAlert           time.Time
}

// NewCycleTracker creates a new CycleTracker
func NewCycleTracker() *CycleTracker {
	return &CycleTracker{
		statusCounts: make(map[CycleStatus]int),
	}
}

// StartCycle marks cycleID as the cycle in progress.
func (ct *CycleTracker) StartCycle(cycleID string) {
	ct.mutex.Lock()
	defer ct.mutex.Unlock()

	ct.currentCycleID = cycleID
	ct.totalCycles++
}

// Record folds a finished cycle into the counters.
func (ct *CycleTracker) Record(outcome CycleOutcome) {
	ct.mutex.Lock()
	defer ct.mutex.Unlock()

	ct.statusCounts[outcome.Status]++
	end := outcome.StartedAt.Add(outcome.Duration)

	if outcome.Status == StatusSoftFailure {
		ct.consecutiveFailures++
	} else {
		ct.consecutiveFailures = 0
	}
	if outcome.Fetched() {
		ct.lastSuccess = end
	}
	if outcome.Alerted {
		ct.alertsSent++
		ct.lastAlert = end
	}
}

// GetCurrentCycleID returns the current cycle ID
func (ct *CycleTracker) GetCurrentCycleID() string {
	ct.mutex.RLock()
	defer ct.mutex.RUnlock()
	return ct.currentCycleID
}

// TrackerSnapshot is a point-in-time copy of the tracker counters.
type TrackerSnapshot struct {
	TotalCycles         int
	Baselines           int
	Unchanged           int
	Changed             int
	SoftFailures        int
	ConsecutiveFailures int
	AlertsSent          int
	LastSuccess         time.Time
	LastAlert           time.Time
}

// Snapshot copies the counters.
func (ct *CycleTracker) Snapshot() TrackerSnapshot {
	ct.mutex.RLock()
	defer ct.mutex.RUnlock()

	return TrackerSnapshot{
		TotalCycles:         ct.totalCycles,
		Baselines:           ct.statusCounts[StatusBaseline],
		Unchanged:           ct.statusCounts[StatusUnchanged],
		Changed:             ct.statusCounts[StatusChanged],
		SoftFailures:        ct.statusCounts[StatusSoftFailure],
		ConsecutiveFailures: ct.consecutiveFailures,
		AlertsSent:          ct.alertsSent,
		LastSuccess:         ct.lastSuccess,
		LastAlert:           ct.lastAlert,
	}
}

func (s TrackerSnapshot) MarshalZerologObject(e *zerolog.Event) {
	e.Int("total", s.TotalCycles).
		Int("changed", s.Changed).
		Int("soft_failures", s.SoftFailures).
		Int("consecutive_failures", s.ConsecutiveFailures).
		Int("alerts_sent", s.AlertsSent)
	if !s.LastSuccess.IsZero() {
		e.Time("last_success", s.LastSuccess)
	}
	if !s.LastAlert.IsZero() {
		e.Time("last_alert", s.LastAlert)
	}
}
