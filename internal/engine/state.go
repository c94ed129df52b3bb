package engine

import "github.com/j-millet/scriptrunner/internal/ir"

// StateStore maps each known key to its last observed value.
//
// Entries are created on first observation and never removed. Only the
// change detector writes to it.
type StateStore struct {
	values ir.Snapshot
}

// NewStateStore creates an empty store.
func NewStateStore() *StateStore {
	return &StateStore{values: make(ir.Snapshot)}
}

// Get returns the stored value for key.
func (s *StateStore) Get(key string) (ir.SystemValue, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Update stores v under key and reports whether the stored value changed.
// A key seen for the first time counts as changed.
func (s *StateStore) Update(key string, v ir.SystemValue) bool {
	old, ok := s.values[key]
	if ok && ir.Equal(old, v) {
		return false
	}
	s.values[key] = v
	return true
}

// Len returns the number of stored keys.
func (s *StateStore) Len() int {
	return len(s.values)
}

// Snapshot returns a copy of the store contents.
func (s *StateStore) Snapshot() ir.Snapshot {
	return s.values.Clone()
}
