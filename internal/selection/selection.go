// Package selection holds the shared tag filter and search text that feed the
// note list queries.
package selection

import (
	"sort"
	"strings"
	"sync"

	"github.com/hkfi/insight-notes/internal/types"
)

// State is the process-wide filter. Each field has a single writer at a time;
// reads never block writers for long. Construct with New and pass it to the
// views that need it.
type State struct {
	mu       sync.RWMutex
	tags     map[string]struct{}
	matchAll bool
	search   string
	take     int
	version  uint64
	watchers map[uint64]chan struct{}
	nextID   uint64
}

func New(pageSize int) *State {
	if pageSize <= 0 {
		pageSize = types.DefaultTake
	}
	return &State{
		tags:     make(map[string]struct{}),
		take:     pageSize,
		watchers: make(map[uint64]chan struct{}),
	}
}

// SelectedTags returns the selected tags in sorted order.
func (s *State) SelectedTags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked()
}

func (s *State) sortedLocked() []string {
	out := make([]string, 0, len(s.tags))
	for t := range s.tags {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (s *State) IsSelected(tag string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tags[tag]
	return ok
}

// ToggleTag adds tag if absent and removes it otherwise. It returns whether
// the tag is selected afterwards.
func (s *State) ToggleTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tags[tag]
	if ok {
		delete(s.tags, tag)
	} else {
		s.tags[tag] = struct{}{}
	}
	s.changedLocked()
	return !ok
}

// FilterByTag replaces the selection with exactly tag.
func (s *State) FilterByTag(tag string) {
	s.SetTags(tag)
}

// SetTags replaces the selection; duplicates collapse.
func (s *State) SetTags(tags ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags = make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			s.tags[t] = struct{}{}
		}
	}
	s.changedLocked()
}

func (s *State) ClearTags() {
	s.SetTags()
}

// SetMatchAll selects whether listed notes must carry every selected tag
// rather than any of them.
func (s *State) SetMatchAll(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.matchAll == v {
		return
	}
	s.matchAll = v
	s.changedLocked()
}

func (s *State) SetSearch(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.search == text {
		return
	}
	s.search = text
	s.changedLocked()
}

func (s *State) Search() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.search
}

// Reset clears tags, match mode and search text.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags = make(map[string]struct{})
	s.matchAll = false
	s.search = ""
	s.changedLocked()
}

// NoteListParams builds the first-page list filter from the selection.
func (s *State) NoteListParams() types.NoteListParams {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return types.NoteListParams{
		TagIDs:   s.sortedLocked(),
		MatchAll: s.matchAll,
		Take:     s.take,
	}
}

// Version increases on every change.
func (s *State) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Watch returns a channel signalled after changes, coalesced, and a function
// that stops the watch.
func (s *State) Watch() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	ch := make(chan struct{}, 1)
	s.watchers[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.watchers[id]; ok {
			delete(s.watchers, id)
			close(ch)
		}
	}
}

func (s *State) changedLocked() {
	s.version++
	for _, ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
