package services

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ramdom/internal/checkout"
	"ramdom/internal/state"
)

// Order is a submitted checkout: the frozen message and the link that hands it off.
type Order struct {
	ID      string
	Message string
	Link    string
	Total   decimal.Decimal
	Lines   int
}

type OrderService struct {
	Sessions *SessionService
	Opts     checkout.Options
	Extended bool
}

func NewOrderService(sessions *SessionService, opts checkout.Options, extended bool) *OrderService {
	return &OrderService{Sessions: sessions, Opts: opts, Extended: extended}
}

// Begin moves the session to the checkout form. An empty cart cannot check out.
func (s *OrderService) Begin(sid string) (state.State, error) {
	st := s.Sessions.State(sid)
	if st.Cart.Empty() {
		return st, checkout.ErrEmptyCart
	}
	return s.Sessions.Navigate(sid, state.Checkout{}), nil
}

// Place validates the draft against the session cart, formats the order
// message and clears the cart. On invalid input it returns the normalised
// draft and checkout.FieldErrors, and the cart is left untouched.
func (s *OrderService) Place(sid string, d checkout.Draft) (Order, checkout.Draft, error) {
	st := s.Sessions.State(sid)
	if st.Cart.Empty() {
		return Order{}, d, checkout.ErrEmptyCart
	}
	clean, errs := checkout.Validate(d, s.Extended)
	if errs != nil {
		return Order{}, clean, errs
	}

	snap := checkout.SnapshotOf(st.Cart)
	msg := checkout.Format(snap, clean, s.Opts)
	o := Order{
		ID:      uuid.NewString(),
		Message: msg,
		Link:    checkout.Link(s.Opts, msg),
		Total:   snap.Total,
		Lines:   len(snap.Items),
	}
	s.Sessions.Store(sid).Dispatch(state.CompleteCheckout{})
	return o, clean, nil
}
