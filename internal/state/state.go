// Package state is the per-session application state: the current view, the
// cart and the selected product, changed only through Reduce.
package state

import (
	"ramdom/internal/cart"
	"ramdom/internal/domain"
)

type State struct {
	View      View
	Cart      cart.Cart
	Selected  *domain.Product
	LastAdded string // id of the line created or bumped by the latest AddItem
}

// Initial is the state of a fresh session.
func Initial(mergeDuplicates bool) State {
	return State{View: Gallery{}, Cart: cart.New(mergeDuplicates)}
}

// Slice names the parts of State a subscriber can watch.
type Slice uint8

const (
	SliceView Slice = 1 << iota
	SliceCart
	SliceSelection

	SliceAll = SliceView | SliceCart | SliceSelection
)

// Action is a state transition.
type Action interface {
	apply(State) (State, Slice)
}

// Reduce applies a to s and reports which slices changed. It never mutates s.
func Reduce(s State, a Action) (State, Slice) {
	return a.apply(s)
}

type AddItem struct {
	Product  domain.Product
	Quantity int
	Color    domain.Color
	Size     domain.Size
}

func (a AddItem) apply(s State) (State, Slice) {
	var it cart.LineItem
	s.Cart, it = s.Cart.Add(a.Product, a.Quantity, a.Color, a.Size)
	s.LastAdded = it.ID
	return s, SliceCart
}

type RemoveItem struct{ ID string }

func (a RemoveItem) apply(s State) (State, Slice) {
	before := s.Cart.Len()
	s.Cart = s.Cart.Remove(a.ID)
	if s.Cart.Len() == before {
		return s, 0
	}
	return s, SliceCart
}

type UpdateQuantity struct {
	ID       string
	Quantity int
}

func (a UpdateQuantity) apply(s State) (State, Slice) {
	old, ok := s.Cart.Get(a.ID)
	if !ok {
		return s, 0
	}
	s.Cart = s.Cart.UpdateQuantity(a.ID, a.Quantity)
	if cur, _ := s.Cart.Get(a.ID); cur.Quantity == old.Quantity {
		return s, 0
	}
	return s, SliceCart
}

type SetView struct{ View View }

func (a SetView) apply(s State) (State, Slice) {
	if a.View == nil || a.View == s.View {
		return s, 0
	}
	s.View = a.View
	return s, SliceView
}

// SelectProduct opens the details view for p.
type SelectProduct struct{ Product domain.Product }

func (a SelectProduct) apply(s State) (State, Slice) {
	p := a.Product
	s.Selected = &p
	changed := SliceSelection
	next := Details{ProductID: p.ID}
	if s.View != View(next) {
		s.View = next
		changed |= SliceView
	}
	return s, changed
}

type ClearCart struct{}

func (ClearCart) apply(s State) (State, Slice) {
	if s.Cart.Empty() {
		return s, 0
	}
	s.Cart = s.Cart.Clear()
	return s, SliceCart
}

// CompleteCheckout empties the cart and shows the success view.
type CompleteCheckout struct{}

func (CompleteCheckout) apply(s State) (State, Slice) {
	s, changed := ClearCart{}.apply(s)
	next, v := SetView{View: Success{}}.apply(s)
	return next, changed | v
}
