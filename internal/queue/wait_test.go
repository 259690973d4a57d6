package queue

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"assistd/internal/backend"
)

// progressLog is a concurrency-safe sink for Wait observations.
type progressLog struct {
	mu  sync.Mutex
	obs []Progress
}

func (l *progressLog) sink(p Progress) {
	l.mu.Lock()
	l.obs = append(l.obs, p)
	l.mu.Unlock()
}

func (l *progressLog) all() []Progress {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Progress, len(l.obs))
	copy(out, l.obs)
	return out
}

func TestWaitReturnsResultWithTerminalProgress(t *testing.T) {
	m := newTestManager(t, &stubExec{})
	var log progressLog
	out, err := m.Wait(context.Background(), "s1", backend.ClassifyIntent{Query: "q"}, log.sink)
	if err != nil || out != "ok" {
		t.Fatalf("wait: out=%q err=%v", out, err)
	}
	obs := log.all()
	if len(obs) == 0 {
		t.Fatal("expected at least one progress observation")
	}
	last := obs[len(obs)-1]
	if last.Phase != PhaseCompleted || last.Percent != 100 {
		t.Fatalf("expected terminal 100%% completed observation, got %+v", last)
	}
}

func TestWaitRaisesStoredErrorDetail(t *testing.T) {
	exec := &stubExec{fn: func(ctx context.Context, p backend.Payload) (string, error) {
		return "", errors.New("boom")
	}}
	m := newTestManager(t, exec)
	var log progressLog
	_, err := m.Wait(context.Background(), "s1", backend.ClassifyIntent{Query: "q"}, log.sink)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected stored detail to surface, got %v", err)
	}
	obs := log.all()
	if last := obs[len(obs)-1]; last.Phase != PhaseError {
		t.Fatalf("expected terminal error observation, got %+v", last)
	}
	if detail, ok := FailureDetail(err); !ok || detail != "boom" {
		t.Fatalf("FailureDetail = %q, %v", detail, ok)
	}
}

func TestWaitObservesQueuedThenProcessing(t *testing.T) {
	gate := make(chan struct{})
	exec := &stubExec{fn: func(ctx context.Context, p backend.Payload) (string, error) {
		<-gate
		return "done", nil
	}}
	m := newTestManager(t, exec)

	a := m.Enqueue("s1", backend.ClassifyIntent{Query: "a"})
	waitUntil(t, time.Second, func() bool { return m.Position(a).Phase == PhaseProcessing })

	var log progressLog
	done := make(chan error, 1)
	var bOut string
	go func() {
		out, err := m.Wait(context.Background(), "s2", backend.ClassifyIntent{Query: "b"}, log.sink)
		bOut = out
		done <- err
	}()

	// While a occupies the worker, b must report waiting at the queue head.
	waitUntil(t, time.Second, func() bool {
		for _, p := range log.all() {
			if p.Phase == PhaseWaiting && p.Place == 1 {
				return true
			}
		}
		return false
	})

	close(gate)
	if err := <-done; err != nil || bOut != "done" {
		t.Fatalf("wait b: out=%q err=%v", bOut, err)
	}
	// b must have been seen processing after a finished.
	var sawProcessing bool
	for _, p := range log.all() {
		if p.Phase == PhaseProcessing {
			sawProcessing = true
			if p.Percent != processingPercent {
				t.Fatalf("processing percent = %d, want %d", p.Percent, processingPercent)
			}
		}
	}
	if !sawProcessing {
		t.Fatal("expected a processing observation for b")
	}
}

func TestWaitContextCancelAbandonsButRequestCompletes(t *testing.T) {
	gate := make(chan struct{})
	exec := &stubExec{fn: func(ctx context.Context, p backend.Payload) (string, error) {
		<-gate
		return "late", nil
	}}
	m := newTestManager(t, exec)

	id := m.Enqueue("s1", backend.ClassifyIntent{Query: "q"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.WaitFor(ctx, id, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	// Abandoning the wait must not cancel the underlying request.
	close(gate)
	waitUntil(t, time.Second, func() bool { return m.Position(id).Phase == PhaseCompleted })
	if out, err := m.Result(id); err != nil || out != "late" {
		t.Fatalf("abandoned request result: out=%q err=%v", out, err)
	}
}

func TestWaitForUnknownID(t *testing.T) {
	m := newTestManager(t, &stubExec{})
	if _, err := m.WaitFor(context.Background(), "nonexistent", nil); !IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestWaitingPercentClamp(t *testing.T) {
	cases := []struct {
		place int
		want  int
	}{
		{1, 50},
		{5, 50},
		{6, 40},
		{9, 10},
		{10, 5},
		{25, 5},
	}
	for _, c := range cases {
		if got := waitingPercent(c.place); got != c.want {
			t.Fatalf("waitingPercent(%d) = %d, want %d", c.place, got, c.want)
		}
	}
}
