package snapshot

import "sync/atomic"

// Holder publishes snapshots to concurrent readers. A reader always sees either
// the previous or the new snapshot in full.
type Holder struct {
	current atomic.Pointer[Snapshot]
}

// Load returns the published snapshot, or nil before the first publish.
func (h *Holder) Load() *Snapshot {
	return h.current.Load()
}

// Publish swaps in s and returns the snapshot it replaced.
func (h *Holder) Publish(s *Snapshot) *Snapshot {
	return h.current.Swap(s)
}
