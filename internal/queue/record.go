package queue

import (
	"time"

	"assistd/internal/backend"
)

// Status is the lifecycle state of one request. Transitions are monotonic:
// waiting -> processing -> completed | error.
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Phase is the coarse status bucket reported to pollers. It mirrors Status
// plus a sentinel for unknown ids.
type Phase string

const (
	PhaseWaiting    Phase = "waiting"
	PhaseProcessing Phase = "processing"
	PhaseCompleted  Phase = "completed"
	PhaseError      Phase = "error"
	PhaseNotFound   Phase = "not_found"
)

// Record is one unit of generation work. Identity fields are immutable after
// Enqueue; the mutable tail (status, result, error detail, timing) is written
// only by the worker and guarded by the manager lock.
type Record struct {
	ID          string
	SessionID   string
	SubmittedAt time.Time
	Payload     backend.Payload

	status     Status
	result     string
	errDetail  string
	startedAt  time.Time
	finishedAt time.Time
}
