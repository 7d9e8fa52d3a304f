package query

import (
	"fmt"
	"time"
)

// StaleDataWarning marks a value that is being shown while it is known to be
// out of date. It is a status and deliberately does not implement error.
type StaleDataWarning struct {
	Key       string
	UpdatedAt time.Time
}

func (w StaleDataWarning) String() string {
	return fmt.Sprintf("stale data for %s (last updated %s)", w.Key, w.UpdatedAt.Format(time.RFC3339))
}

// Snapshot is the observable state of one cache entry.
type Snapshot struct {
	Key       Key
	Value     any
	HasValue  bool
	Err       error
	Fetching  bool
	Stale     bool
	UpdatedAt time.Time
}

// IsLoading is true while no value has ever been received and a fetch is
// outstanding.
func (s Snapshot) IsLoading() bool {
	return !s.HasValue && s.Fetching
}

// Warning returns a StaleDataWarning when a value is present but stale.
func (s Snapshot) Warning() *StaleDataWarning {
	if !s.HasValue || !s.Stale {
		return nil
	}
	return &StaleDataWarning{Key: s.Key.String(), UpdatedAt: s.UpdatedAt}
}

// Settled reports whether no fetch is outstanding and the entry holds either
// a value or the error of its last fetch.
func (s Snapshot) Settled() bool {
	return !s.Fetching && (s.HasValue || s.Err != nil)
}
