package state

import (
	"sort"
	"sync"
)

// Listener receives the state before and after a dispatch.
type Listener func(prev, next State)

type subscription struct {
	slices Slice
	fn     Listener
}

// Store serialises dispatches for one session and notifies subscribers only
// for the slices they registered for. Listeners run in dispatch order and may
// read State, but must not Dispatch on the same store.
type Store struct {
	mu    sync.Mutex
	state State
	subs  map[int]subscription
	next  int

	notify sync.Mutex
}

func NewStore(initial State) *Store {
	if initial.View == nil {
		initial.View = Gallery{}
	}
	return &Store{state: initial, subs: map[int]subscription{}}
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch reduces a into the store and returns the new state and the
// changed slices.
func (s *Store) Dispatch(a Action) (State, Slice) {
	s.mu.Lock()
	prev := s.state
	next, changed := Reduce(prev, a)
	s.state = next
	var fire []Listener
	if changed != 0 {
		ids := make([]int, 0, len(s.subs))
		for id, sub := range s.subs {
			if sub.slices&changed != 0 {
				ids = append(ids, id)
			}
		}
		sort.Ints(ids)
		for _, id := range ids {
			fire = append(fire, s.subs[id].fn)
		}
	}
	// notify is taken before mu is released so concurrent dispatches deliver
	// in the order they were reduced.
	s.notify.Lock()
	s.mu.Unlock()
	defer s.notify.Unlock()

	for _, fn := range fire {
		fn(prev, next)
	}
	return next, changed
}

// Subscribe registers fn for the given slices and returns its cancel func.
func (s *Store) Subscribe(slices Slice, fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	s.subs[id] = subscription{slices: slices, fn: fn}
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}
