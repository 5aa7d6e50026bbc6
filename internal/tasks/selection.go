package tasks

import (
	"sync"

	"github.com/sandeepkv93/taskboard/internal/model"
)

// Selection is the ordered set of task ids picked for a bulk action.
type Selection struct {
	mu    sync.Mutex
	order []string
	set   map[string]struct{}
}

func NewSelection() *Selection {
	return &Selection{set: make(map[string]struct{})}
}

// Toggle flips id and reports whether it is now selected.
func (s *Selection) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.set[id]; ok {
		s.removeLocked(id)
		return false
	}
	s.addLocked(id)
	return true
}

func (s *Selection) Add(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.addLocked(id)
	}
}

func (s *Selection) Remove(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.removeLocked(id)
	}
}

func (s *Selection) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.set[id]
	return ok
}

// IDs returns the selected ids in the order they were picked.
func (s *Selection) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

func (s *Selection) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.set = make(map[string]struct{})
}

// Retain drops every id that is not on the visible page.
func (s *Selection) Retain(visible []model.Task) {
	keep := make(map[string]struct{}, len(visible))
	for _, t := range visible {
		keep[t.ID] = struct{}{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range append([]string(nil), s.order...) {
		if _, ok := keep[id]; !ok {
			s.removeLocked(id)
		}
	}
}

func (s *Selection) addLocked(id string) {
	if id == "" {
		return
	}
	if _, ok := s.set[id]; ok {
		return
	}
	s.set[id] = struct{}{}
	s.order = append(s.order, id)
}

func (s *Selection) removeLocked(id string) {
	if _, ok := s.set[id]; !ok {
		return
	}
	delete(s.set, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
