package queue

// Position is the coarse status descriptor returned to pollers.
type Position struct {
	Phase Phase
	// Place is the 1-based count of still-waiting requests ahead of and
	// including this one; 0 while processing, -1 otherwise.
	Place int
}

// Position reports where a request stands. Safe to call concurrently with
// worker mutation; it holds the lock only for the lookup and the pending-list
// scan.
func (m *Manager) Position(id string) Position {
	m.mu.Lock()
	defer m.mu.Unlock()
	item := m.records.Get(id)
	if item == nil {
		return Position{Phase: PhaseNotFound, Place: -1}
	}
	switch item.Value().status {
	case StatusProcessing:
		return Position{Phase: PhaseProcessing, Place: 0}
	case StatusCompleted:
		return Position{Phase: PhaseCompleted, Place: -1}
	case StatusError:
		return Position{Phase: PhaseError, Place: -1}
	}
	place := 1
	for i, rec := range m.pending {
		if rec.ID == id {
			place = i + 1
			break
		}
	}
	return Position{Phase: PhaseWaiting, Place: place}
}
