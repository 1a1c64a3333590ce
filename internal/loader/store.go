package loader

import (
	"image"
	"sync"
)

type State int

const (
	Pending State = iota
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "pending"
	}
}

// Asset is the per-identifier load record.
type Asset struct {
	ID    int
	Image image.Image
	State State
}

// Store holds the frame assets. Only the loader writes; the resolver and
// renderer read through Image.
type Store struct {
	mu     sync.RWMutex
	assets map[int]*Asset
}

func NewStore() *Store {
	return &Store{assets: make(map[int]*Asset)}
}

func (s *Store) begin(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assets[id]; !ok {
		s.assets[id] = &Asset{ID: id, State: Pending}
	}
}

func (s *Store) settle(id int, img image.Image, err error) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.assets[id]
	if !ok {
		a = &Asset{ID: id}
		s.assets[id] = a
	}
	if err != nil || img == nil {
		a.State = Failed
		a.Image = nil
		return Failed
	}
	a.State = Loaded
	a.Image = img
	return Loaded
}

// Image returns the decoded frame only if it finished loading.
func (s *Store) Image(id int) (image.Image, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assets[id]
	if !ok || a.State != Loaded {
		return nil, false
	}
	return a.Image, true
}

func (s *Store) State(id int) State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.assets[id]; ok {
		return a.State
	}
	return Pending
}

// Release drops every image reference. Later lookups miss.
func (s *Store) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets = make(map[int]*Asset)
}
