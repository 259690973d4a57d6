package queue

import (
	"context"
	"errors"
	"fmt"
)

// ensureWorkerLocked starts the drain goroutine if none is alive. Callers
// must hold m.mu. Starting while already running is a no-op, so exactly one
// worker ever exists.
func (m *Manager) ensureWorkerLocked() {
	if m.workerRunning {
		return
	}
	m.workerRunning = true
	go m.drain()
}

// drain pops and executes pending requests strictly FIFO. On an empty queue
// it waits up to the idle timeout for new work, then exits; a later Enqueue
// restarts it.
func (m *Manager) drain() {
	for {
		m.mu.Lock()
		if len(m.pending) == 0 {
			m.mu.Unlock()
			select {
			case <-m.wake:
				continue
			case <-m.closed:
				m.mu.Lock()
				m.workerRunning = false
				m.mu.Unlock()
				return
			case <-m.clock.After(m.idleTimeout):
				m.mu.Lock()
				if len(m.pending) > 0 {
					// an Enqueue raced the timeout; keep draining
					m.mu.Unlock()
					continue
				}
				m.workerRunning = false
				m.mu.Unlock()
				m.log.Debug().Msg("queue idle, worker exiting")
				return
			}
		}
		rec := m.pending[0]
		m.pending = m.pending[1:]
		rec.status = StatusProcessing
		rec.startedAt = m.clock.Now()
		m.processing = rec.ID
		depth := len(m.pending)
		m.mu.Unlock()

		metricQueueDepth.Set(float64(depth))
		m.pub.Publish(Event{Name: EventStarted, RequestID: rec.ID, SessionID: rec.SessionID})
		m.process(rec)
	}
}

// process executes one record outside the manager lock so enqueues and polls
// are never blocked by generation. The id is captured up front: whatever
// fails later, this record still reaches a terminal state and its waiters
// terminate.
func (m *Manager) process(rec *Record) {
	id := rec.ID
	start := m.clock.Now()
	defer func() {
		if r := recover(); r != nil {
			m.finish(id, "", fmt.Sprintf("panic during generation: %v", r), true)
		}
	}()

	ctx := context.Background()
	if m.execTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.execTimeout)
		defer cancel()
	}
	out, err := m.exec.Execute(ctx, rec.Payload)
	metricProcessingSeconds.Observe(m.clock.Since(start).Seconds())
	switch {
	case err == nil:
		m.finish(id, out, "", false)
	case errors.Is(err, context.DeadlineExceeded):
		m.finish(id, "", fmt.Sprintf("generation timed out after %s", m.execTimeout), true)
	default:
		m.finish(id, "", err.Error(), true)
	}
}

// finish records the terminal outcome of a request and starts its retention
// clock. Terminal states are immutable; a second call for the same id is a
// no-op.
func (m *Manager) finish(id, result, detail string, failed bool) {
	m.mu.Lock()
	item := m.records.Get(id)
	if item == nil {
		// evicted mid-flight; nothing left to record
		m.processing = ""
		m.mu.Unlock()
		return
	}
	rec := item.Value()
	if rec.status == StatusCompleted || rec.status == StatusError {
		m.mu.Unlock()
		return
	}
	rec.finishedAt = m.clock.Now()
	if failed {
		rec.status = StatusError
		rec.errDetail = detail
		m.failedTotal++
	} else {
		rec.status = StatusCompleted
		rec.result = result
		m.completedTotal++
	}
	m.records.Set(id, rec, m.retention)
	m.processing = ""
	sessionID := rec.SessionID
	m.mu.Unlock()

	if failed {
		metricCompletions.WithLabelValues("error").Inc()
		m.pub.Publish(Event{Name: EventFailed, RequestID: id, SessionID: sessionID, Fields: map[string]any{"detail": detail}})
		m.log.Warn().Str("request_id", id).Str("detail", detail).Msg("request failed")
	} else {
		metricCompletions.WithLabelValues("completed").Inc()
		m.pub.Publish(Event{Name: EventCompleted, RequestID: id, SessionID: sessionID})
		m.log.Debug().Str("request_id", id).Msg("request completed")
	}
}
