package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"ramdom/internal/cart"
	"ramdom/internal/config"
	"ramdom/internal/domain"
	applog "ramdom/internal/log"
	"ramdom/internal/state"
)

// AddRequest is one configured product headed for the cart.
type AddRequest struct {
	Product  domain.Product
	Quantity int
	ColorHex string
	Size     domain.Size
}

// SessionListener is a state listener that also learns which session changed.
type SessionListener func(sid string, prev, next state.State)

type watcher struct {
	slices state.Slice
	fn     SessionListener
}

type session struct {
	store    *state.Store
	lastSeen time.Time
}

// SessionService keeps one state store per browser session, in memory only.
type SessionService struct {
	profile config.Profile
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
	watchers []watcher
	onDrop   []func(sid string)
}

func NewSessionService(profile config.Profile) *SessionService {
	return &SessionService{profile: profile, now: time.Now, sessions: map[string]*session{}}
}

// Watch registers fn on every current and future session store for the given slices.
func (s *SessionService) Watch(slices state.Slice, fn SessionListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := watcher{slices: slices, fn: fn}
	s.watchers = append(s.watchers, w)
	for sid, sess := range s.sessions {
		subscribe(sid, sess.store, w)
	}
}

func subscribe(sid string, st *state.Store, w watcher) {
	st.Subscribe(w.slices, func(prev, next state.State) { w.fn(sid, prev, next) })
}

// OnDrop registers fn to run for every session Sweep drops.
func (s *SessionService) OnDrop(fn func(sid string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDrop = append(s.onDrop, fn)
}

// Store returns the session's store, creating a fresh one on first use.
func (s *SessionService) Store(sid string) *state.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sid]
	if !ok {
		sess = &session{store: state.NewStore(state.Initial(s.profile.MergesDuplicates()))}
		for _, w := range s.watchers {
			subscribe(sid, sess.store, w)
		}
		s.sessions[sid] = sess
	}
	sess.lastSeen = s.now()
	return sess.store
}

// Known reports whether sid names a live session issued by this process.
func (s *SessionService) Known(sid string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[sid]
	return ok
}

func (s *SessionService) State(sid string) state.State {
	return s.Store(sid).State()
}

// Add puts a configured product into the session cart and returns its line.
func (s *SessionService) Add(sid string, req AddRequest) (cart.LineItem, error) {
	c, err := domain.ResolveColor(req.ColorHex)
	if err != nil {
		return cart.LineItem{}, fmt.Errorf("add %s: %w", req.Product.ID, err)
	}
	size := req.Size
	if size == "" {
		size = domain.SizeM
	}
	next, _ := s.Store(sid).Dispatch(state.AddItem{
		Product:  req.Product,
		Quantity: req.Quantity,
		Color:    c,
		Size:     size,
	})
	it, _ := next.Cart.Get(next.LastAdded)
	return it, nil
}

func (s *SessionService) UpdateQuantity(sid, lineID string, qty int) state.State {
	next, _ := s.Store(sid).Dispatch(state.UpdateQuantity{ID: lineID, Quantity: qty})
	return next
}

func (s *SessionService) Remove(sid, lineID string) state.State {
	next, _ := s.Store(sid).Dispatch(state.RemoveItem{ID: lineID})
	return next
}

func (s *SessionService) Navigate(sid string, v state.View) state.State {
	next, _ := s.Store(sid).Dispatch(state.SetView{View: v})
	return next
}

func (s *SessionService) Select(sid string, p domain.Product) state.State {
	next, _ := s.Store(sid).Dispatch(state.SelectProduct{Product: p})
	return next
}

// Len is the number of live sessions.
func (s *SessionService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than maxIdle and returns their ids.
func (s *SessionService) Sweep(maxIdle time.Duration) []string {
	cutoff := s.now().Add(-maxIdle)
	s.mu.Lock()
	var dropped []string
	for sid, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, sid)
			dropped = append(dropped, sid)
		}
	}
	hooks := s.onDrop
	s.mu.Unlock()

	sort.Strings(dropped)
	for _, sid := range dropped {
		for _, fn := range hooks {
			fn(sid)
		}
	}
	return dropped
}

// Run sweeps idle sessions until ctx is done.
func (s *SessionService) Run(ctx context.Context, maxIdle time.Duration) {
	every := maxIdle / 4
	if every < time.Minute {
		every = time.Minute
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if dropped := s.Sweep(maxIdle); len(dropped) > 0 {
				applog.Event("session.sweep", map[string]any{"dropped": len(dropped), "live": s.Len()})
			}
		}
	}
}
