package queue

import (
	"context"
	"fmt"
	"time"

	"assistd/internal/backend"
)

// processingPercent is shown while the single worker is on this request.
const processingPercent = 75

// Progress is one observation delivered to a Wait progress sink.
type Progress struct {
	Phase   Phase
	Percent int
	Message string
	Elapsed time.Duration
	Place   int
}

// ProgressFunc receives progress observations at roughly the poll interval.
type ProgressFunc func(Progress)

// Wait submits a request and blocks until it reaches a terminal state,
// reporting progress to sink once per poll tick. It returns the stored result
// or the stored failure. Canceling ctx abandons the wait only: the request
// itself still runs to completion and remains readable until retention
// eviction.
func (m *Manager) Wait(ctx context.Context, sessionID string, p backend.Payload, sink ProgressFunc) (string, error) {
	id := m.Enqueue(sessionID, p)
	return m.WaitFor(ctx, id, sink)
}

// WaitFor blocks on an already-enqueued request. This is a cooperative poll,
// not a subscription: completion is observed up to one poll interval late.
func (m *Manager) WaitFor(ctx context.Context, id string, sink ProgressFunc) (string, error) {
	if sink == nil {
		sink = func(Progress) {}
	}
	start := m.clock.Now()
	ticker := m.clock.NewTicker(m.pollInterval)
	defer ticker.Stop()
	for {
		pos := m.Position(id)
		elapsed := m.clock.Since(start)
		switch pos.Phase {
		case PhaseCompleted:
			sink(Progress{Phase: pos.Phase, Percent: 100, Message: "processing complete", Elapsed: elapsed, Place: -1})
			return m.Result(id)
		case PhaseError:
			sink(Progress{Phase: pos.Phase, Percent: 100, Message: "processing failed", Elapsed: elapsed, Place: -1})
			if _, err := m.Result(id); err != nil {
				return "", err
			}
			return "", generationFailedError{id: id, detail: "unknown error"}
		case PhaseNotFound:
			return "", notFoundError{id: id}
		case PhaseProcessing:
			sink(Progress{
				Phase:   pos.Phase,
				Percent: processingPercent,
				Message: fmt.Sprintf("your request is being processed (%ds)", int(elapsed.Seconds())),
				Elapsed: elapsed,
			})
		default:
			sink(Progress{
				Phase:   pos.Phase,
				Percent: waitingPercent(pos.Place),
				Message: fmt.Sprintf("queue position: %d", pos.Place),
				Elapsed: elapsed,
				Place:   pos.Place,
			})
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.Chan():
		}
	}
}

// waitingPercent maps a queue place onto a clamped progress figure. The curve
// assumes a shallow queue; the phase, not the exact percentage, is the
// contract.
func waitingPercent(place int) int {
	p := (10 - place) * 10
	if p < 5 {
		p = 5
	}
	if p > 50 {
		p = 50
	}
	return p
}
