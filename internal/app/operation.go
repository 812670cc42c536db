package app

import (
	"time"

	"github.com/google/uuid"
)

// Operation tracks one CLI invocation. Its ID tags every log line the
// invocation writes.
type Operation struct {
	ID      string
	Name    string
	Started time.Time
	Status  string // "success" or "error"
}

// NewOperation starts a new operation with a fresh short ID.
func NewOperation(name string, now time.Time) *Operation {
	return &Operation{
		ID:      shortID(uuid.New()),
		Name:    name,
		Started: now,
		Status:  "success",
	}
}

// Fail marks the operation as failed.
func (op *Operation) Fail() {
	op.Status = "error"
}

// Elapsed returns the time since the operation started.
func (op *Operation) Elapsed(now time.Time) time.Duration {
	return now.Sub(op.Started)
}

// shortID keeps the first eight hex digits of id, enough to tell the lines
// of concurrent invocations apart in one log file.
func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
