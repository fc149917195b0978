package state

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ramdom/internal/domain"
)

var (
	white = domain.Color{Hex: "#ffffff", Name: "Blanco"}
	tee   = domain.Product{ID: "3", Name: "Fatality Ramdom #3", Price: decimal.NewFromInt(17000)}
)

func TestReduceDoesNotMutateInput(t *testing.T) {
	s := Initial(false)
	next, changed := Reduce(s, AddItem{Product: tee, Quantity: 2, Color: white, Size: domain.SizeM})

	assert.Equal(t, SliceCart, changed)
	assert.True(t, s.Cart.Empty())
	require.Equal(t, 1, next.Cart.Len())
	it, ok := next.Cart.Get(next.LastAdded)
	require.True(t, ok)
	assert.Equal(t, 2, it.Quantity)
}

func TestReduceNoOps(t *testing.T) {
	s := Initial(false)

	_, changed := Reduce(s, RemoveItem{ID: "missing"})
	assert.Zero(t, changed)
	_, changed = Reduce(s, UpdateQuantity{ID: "missing", Quantity: 3})
	assert.Zero(t, changed)
	_, changed = Reduce(s, ClearCart{})
	assert.Zero(t, changed)
	_, changed = Reduce(s, SetView{View: Gallery{}})
	assert.Zero(t, changed)
}

func TestSelectProductOpensDetails(t *testing.T) {
	s, changed := Reduce(Initial(false), SelectProduct{Product: tee})
	assert.Equal(t, SliceSelection|SliceView, changed)
	assert.Equal(t, Details{ProductID: "3"}, s.View)
	require.NotNil(t, s.Selected)
	assert.Equal(t, "3", s.Selected.ID)
}

func TestCompleteCheckout(t *testing.T) {
	s, _ := Reduce(Initial(false), AddItem{Product: tee, Quantity: 1, Color: white, Size: domain.SizeL})
	s, changed := Reduce(s, CompleteCheckout{})
	assert.Equal(t, SliceCart|SliceView, changed)
	assert.True(t, s.Cart.Empty())
	assert.Equal(t, Success{}, s.View)
}

func TestStoreNotifiesOnlyWatchedSlices(t *testing.T) {
	st := NewStore(Initial(false))
	var cartHits, viewHits int
	st.Subscribe(SliceCart, func(prev, next State) { cartHits++ })
	cancel := st.Subscribe(SliceView, func(prev, next State) { viewHits++ })

	st.Dispatch(AddItem{Product: tee, Quantity: 1, Color: white, Size: domain.SizeS})
	st.Dispatch(SetView{View: CartView{}})
	st.Dispatch(SetView{View: CartView{}})
	assert.Equal(t, 1, cartHits)
	assert.Equal(t, 1, viewHits)

	cancel()
	cancel()
	st.Dispatch(SetView{View: Checkout{}})
	assert.Equal(t, 1, viewHits)
}

func TestStoreConcurrentDispatch(t *testing.T) {
	st := NewStore(Initial(false))
	var mu sync.Mutex
	seen := 0
	st.Subscribe(SliceCart, func(prev, next State) {
		mu.Lock()
		defer mu.Unlock()
		seen++
		assert.Equal(t, prev.Cart.Len()+1, next.Cart.Len())
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st.Dispatch(AddItem{Product: tee, Quantity: 1, Color: white, Size: domain.SizeM})
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, st.State().Cart.Len())
	assert.Equal(t, 20, seen)
	assert.True(t, st.State().Cart.Total().Equal(decimal.NewFromInt(20*17000)))
}

type nameVisitor struct{ got string }

func (n *nameVisitor) Gallery(Gallery) error    { n.got = "g"; return nil }
func (n *nameVisitor) Details(d Details) error  { n.got = "d:" + d.ProductID; return nil }
func (n *nameVisitor) Cart(CartView) error      { n.got = "c"; return nil }
func (n *nameVisitor) Checkout(Checkout) error  { n.got = "k"; return nil }
func (n *nameVisitor) Success(Success) error    { n.got = "s"; return nil }

func TestVisitorDispatch(t *testing.T) {
	cases := map[View]string{
		Gallery{}:              "g",
		Details{ProductID: "9"}: "d:9",
		CartView{}:             "c",
		Checkout{}:             "k",
		Success{}:              "s",
	}
	for v, want := range cases {
		var nv nameVisitor
		require.NoError(t, v.Accept(&nv))
		assert.Equal(t, want, nv.got, v.Name())
	}
}
