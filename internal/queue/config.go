package queue

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"assistd/internal/backend"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultIdleTimeout  = 30 * time.Second
	defaultPollInterval = 1 * time.Second
	defaultExecTimeout  = 5 * time.Minute
	defaultRetention    = 1 * time.Hour
)

// Executor performs the actual generation work for one payload. The queue
// invokes it from the single worker, outside any lock.
type Executor interface {
	Execute(ctx context.Context, p backend.Payload) (string, error)
}

// Config encapsulates all tunables for Manager construction.
type Config struct {
	Executor Executor
	// IdleTimeout bounds how long the worker waits on an empty queue before
	// it exits; a later Enqueue restarts it.
	IdleTimeout time.Duration
	// PollInterval is the tick of the Wait facade's status poll.
	PollInterval time.Duration
	// ExecTimeout is the per-request deadline on the executor call. A stalled
	// backend marks the request failed instead of starving the queue.
	ExecTimeout time.Duration
	// Retention is how long terminal records stay readable before eviction.
	Retention time.Duration

	Clock     clockwork.Clock
	Publisher EventPublisher
	Logger    zerolog.Logger
}
