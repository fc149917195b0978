package state

// View is the closed set of storefront screens. The unexported method keeps the
// set sealed to this package; callers handle every view through a Visitor.
type View interface {
	Accept(v Visitor) error
	Name() string
	view()
}

// Visitor has one method per view, so adding a view breaks every visitor
// until it handles the new case.
type Visitor interface {
	Gallery(Gallery) error
	Details(Details) error
	Cart(CartView) error
	Checkout(Checkout) error
	Success(Success) error
}

type Gallery struct{}

type Details struct{ ProductID string }

type CartView struct{}

type Checkout struct{}

type Success struct{}

func (Gallery) view()  {}
func (Details) view()  {}
func (CartView) view() {}
func (Checkout) view() {}
func (Success) view()  {}

func (g Gallery) Accept(v Visitor) error  { return v.Gallery(g) }
func (d Details) Accept(v Visitor) error  { return v.Details(d) }
func (c CartView) Accept(v Visitor) error { return v.Cart(c) }
func (c Checkout) Accept(v Visitor) error { return v.Checkout(c) }
func (s Success) Accept(v Visitor) error  { return v.Success(s) }

func (Gallery) Name() string  { return "gallery" }
func (Details) Name() string  { return "details" }
func (CartView) Name() string { return "cart" }
func (Checkout) Name() string { return "checkout" }
func (Success) Name() string  { return "success" }
