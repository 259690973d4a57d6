package queue

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"assistd/internal/backend"
)

// Manager owns the pending request list, the status table, and the single
// background worker that drains the list serially.
type Manager struct {
	mu      sync.Mutex
	records *ttlcache.Cache[string, *Record]
	pending []*Record

	workerRunning bool
	processing    string // request id currently executing, "" when idle
	wake          chan struct{}
	closed        chan struct{}
	closeOnce     sync.Once

	exec  Executor
	clock clockwork.Clock
	pub   EventPublisher
	log   zerolog.Logger

	idleTimeout  time.Duration
	pollInterval time.Duration
	execTimeout  time.Duration
	retention    time.Duration

	enqueuedTotal  uint64
	completedTotal uint64
	failedTotal    uint64
	startTime      time.Time
}

func New(exec Executor) *Manager {
	// Delegate to NewWithConfig to centralize defaults
	return NewWithConfig(Config{Executor: exec})
}

// NewWithConfig constructs a Manager from Config and starts the retention
// janitor. Callers own the Manager's lifecycle and must Close it.
func NewWithConfig(cfg Config) *Manager {
	m := &Manager{
		exec:         cfg.Executor,
		clock:        cfg.Clock,
		pub:          cfg.Publisher,
		log:          cfg.Logger,
		idleTimeout:  cfg.IdleTimeout,
		pollInterval: cfg.PollInterval,
		execTimeout:  cfg.ExecTimeout,
		retention:    cfg.Retention,
		wake:         make(chan struct{}, 1),
		closed:       make(chan struct{}),
	}
	if m.clock == nil {
		m.clock = clockwork.NewRealClock()
	}
	if m.pub == nil {
		m.pub = noopPublisher{}
	}
	if m.idleTimeout <= 0 {
		m.idleTimeout = defaultIdleTimeout
	}
	if m.pollInterval <= 0 {
		m.pollInterval = defaultPollInterval
	}
	if m.execTimeout <= 0 {
		m.execTimeout = defaultExecTimeout
	}
	if m.retention <= 0 {
		m.retention = defaultRetention
	}
	// Touch-on-hit is disabled so pollers reading a terminal record do not
	// extend its retention.
	m.records = ttlcache.New[string, *Record](
		ttlcache.WithDisableTouchOnHit[string, *Record](),
	)
	go m.records.Start()
	m.startTime = m.clock.Now()
	return m
}

// Close stops the retention janitor and asks an idle worker to exit. Requests
// already picked up still run to completion.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.closed)
		m.records.Stop()
	})
}

// Enqueue registers a new request and ensures the worker is running. It never
// blocks and never fails; admission control is deliberately absent.
func (m *Manager) Enqueue(sessionID string, p backend.Payload) string {
	id := newRequestID()
	rec := &Record{
		ID:          id,
		SessionID:   sessionID,
		SubmittedAt: m.clock.Now(),
		Payload:     p,
		status:      StatusWaiting,
	}
	m.mu.Lock()
	m.records.Set(id, rec, ttlcache.NoTTL)
	m.pending = append(m.pending, rec)
	m.enqueuedTotal++
	depth := len(m.pending)
	m.ensureWorkerLocked()
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
	metricEnqueued.Inc()
	metricQueueDepth.Set(float64(depth))
	m.pub.Publish(Event{Name: EventEnqueued, RequestID: id, SessionID: sessionID})
	m.log.Debug().Str("request_id", id).Str("session_id", sessionID).
		Str("operation", string(p.Operation())).Int("depth", depth).Msg("request enqueued")
	return id
}

// Result returns the stored output of a terminal request. It fails with a
// not-finished error when called early and re-raises the stored detail for
// failed requests.
func (m *Manager) Result(id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item := m.records.Get(id)
	if item == nil {
		return "", notFoundError{id: id}
	}
	rec := item.Value()
	switch rec.status {
	case StatusCompleted:
		return rec.result, nil
	case StatusError:
		return "", generationFailedError{id: id, detail: rec.errDetail}
	default:
		return "", notFinishedError{id: id}
	}
}

// Stats is a read-only projection of queue health.
type Stats struct {
	QueueDepth     int
	Processing     string
	Records        int
	WorkerRunning  bool
	EnqueuedTotal  uint64
	CompletedTotal uint64
	FailedTotal    uint64
	StartTime      time.Time
}

func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{
		QueueDepth:     len(m.pending),
		Processing:     m.processing,
		Records:        m.records.Len(),
		WorkerRunning:  m.workerRunning,
		EnqueuedTotal:  m.enqueuedTotal,
		CompletedTotal: m.completedTotal,
		FailedTotal:    m.failedTotal,
		StartTime:      m.startTime,
	}
}

// newRequestID returns a short opaque id. Eight hex chars are plenty for the
// retention window and keep log lines readable.
func newRequestID() string {
	return uuid.NewString()[:8]
}
