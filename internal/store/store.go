// Package store holds the canonical local copy of the device list and
// merges remote updates into it. The collection keeps the order records
// arrived in: a full replace installs the server's order, new records
// append. That order is what the view's stable sort preserves for
// equal keys.
package store

import (
	"sync"

	"github.com/kavia-common/netwatch/internal/model"
)

// Store is the only shared mutable state in the controller. All
// mutations go through its methods; the mutex serializes them so a poll
// merge and a user mutation can never interleave mid-update.
type Store struct {
	mu      sync.Mutex
	devices []model.Device
	index   map[string]int
}

func New() *Store {
	return &Store{index: make(map[string]int)}
}

// ReplaceAll discards the collection and installs records as the new
// canonical set, in the given order. A repeated id keeps the last
// occurrence so the collection stays one record per id.
func (s *Store) ReplaceAll(records []model.Device) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.devices = s.devices[:0]
	s.index = make(map[string]int, len(records))
	for _, r := range records {
		if i, ok := s.index[r.ID]; ok {
			s.devices[i] = r
			continue
		}
		s.devices = append(s.devices, r)
		s.index[r.ID] = len(s.devices) - 1
	}
}

// MergeStatuses applies status check results. Only the status and
// last_checked fields of matching records change; updates for ids not
// in the collection are skipped, the device may have been deleted since
// the results were produced.
func (s *Store) MergeStatuses(updates []model.StatusUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range updates {
		i, ok := s.index[u.ID]
		if !ok {
			continue
		}
		s.devices[i].Status = u.Status
		s.devices[i].LastChecked = u.LastChecked
	}
}

// Upsert inserts a new record at the end or fully replaces an existing
// one in place.
func (s *Store) Upsert(record model.Device) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[record.ID]; ok {
		s.devices[i] = record
		return
	}
	s.devices = append(s.devices, record)
	s.index[record.ID] = len(s.devices) - 1
}

// Remove deletes the record if present; removing an absent id is a
// no-op.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return
	}
	s.devices = append(s.devices[:i], s.devices[i+1:]...)
	s.reindex()
}

// Snapshot returns a copy of the collection in its current order.
// Callers never see the backing slice.
func (s *Store) Snapshot() []model.Device {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Device, len(s.devices))
	copy(out, s.devices)
	return out
}

// Get returns the record for id, if present.
func (s *Store) Get(id string) (model.Device, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return model.Device{}, false
	}
	return s.devices[i], true
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.devices)
}

// reindex rebuilds the id index; caller holds the lock. Duplicate ids
// in the input collapse to the last occurrence.
func (s *Store) reindex() {
	s.index = make(map[string]int, len(s.devices))
	for i := range s.devices {
		s.index[s.devices[i].ID] = i
	}
}
