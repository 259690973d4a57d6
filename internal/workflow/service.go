package workflow

import (
	"context"
	"fmt"
	"time"

	"assistd/internal/backend"
	"assistd/internal/queue"
	"assistd/pkg/types"
)

// Enqueue submits one raw generation request and returns its id immediately.
// Unknown operation tags are accepted and resolve to a recorded error once
// the worker reaches them.
func (s *Service) Enqueue(sessionID, operation string, args map[string]any) string {
	return s.queue.Enqueue(sessionID, backend.Parse(operation, args))
}

// Position reports the coarse lifecycle phase of a request.
func (s *Service) Position(id string) types.PositionResponse {
	pos := s.queue.Position(id)
	return types.PositionResponse{
		RequestID: id,
		Phase:     string(pos.Phase),
		Position:  pos.Place,
		Message:   positionMessage(pos),
	}
}

func positionMessage(pos queue.Position) string {
	switch pos.Phase {
	case queue.PhaseWaiting:
		return fmt.Sprintf("queue position: %d", pos.Place)
	case queue.PhaseProcessing:
		return "your request is being processed"
	case queue.PhaseCompleted:
		return "processing complete"
	case queue.PhaseError:
		return "processing failed"
	default:
		return "unknown request"
	}
}

// Result returns the stored output of a terminal request. The queue's typed
// errors pass through for the transport layer to map.
func (s *Service) Result(id string) (string, error) {
	return s.queue.Result(id)
}

// WaitFor blocks on an already-enqueued request, forwarding progress to sink.
func (s *Service) WaitFor(ctx context.Context, id string, sink queue.ProgressFunc) (string, error) {
	return s.queue.WaitFor(ctx, id, sink)
}

// Status projects queue health for GET /status.
func (s *Service) Status() types.StatusResponse {
	st := s.queue.Stats()
	now := time.Now()
	return types.StatusResponse{
		State:          "ready",
		QueueDepth:     st.QueueDepth,
		Processing:     st.Processing,
		Records:        st.Records,
		WorkerRunning:  st.WorkerRunning,
		EnqueuedTotal:  st.EnqueuedTotal,
		CompletedTotal: st.CompletedTotal,
		FailedTotal:    st.FailedTotal,
		UptimeSeconds:  int64(now.Sub(st.StartTime).Seconds()),
		ServerTimeUnix: now.Unix(),
	}
}

// Ready verifies the search index is reachable. The generation backend is
// intentionally not probed here; its requests queue up regardless.
func (s *Service) Ready(ctx context.Context) error {
	if s.index == nil {
		return nil
	}
	return s.index.Ping(ctx)
}
