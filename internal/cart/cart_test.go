package cart

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ramdom/internal/domain"
)

var red = domain.Color{Hex: "#ff3e3e", Name: "Rojo"}

func product(id string, price int64) domain.Product {
	return domain.Product{ID: id, Name: "Remera " + id, Price: decimal.NewFromInt(price)}
}

func TestTotalScenario(t *testing.T) {
	c := New(false)
	c, _ = c.Add(product("1", 15000), 2, red, domain.SizeM)
	c, _ = c.Add(product("2", 18000), 1, red, domain.SizeL)

	assert.True(t, c.Total().Equal(decimal.NewFromInt(48000)), "total %s", c.Total())
	assert.Equal(t, 3, c.Count())
}

func TestAddNeverMerges(t *testing.T) {
	p := product("x", 15000)
	c := New(false)
	c, a := c.Add(p, 1, red, domain.SizeM)
	c, b := c.Add(p, 1, red, domain.SizeM)

	require.Equal(t, 2, c.Len())
	assert.NotEqual(t, a.ID, b.ID)
	_, okA := c.Get(a.ID)
	_, okB := c.Get(b.ID)
	assert.True(t, okA && okB)
}

func TestAddMergesUnderMergeProfile(t *testing.T) {
	p := product("x", 15000)
	c := New(true)
	c, a := c.Add(p, 1, red, domain.SizeM)
	c, b := c.Add(p, 2, red, domain.SizeM)
	c, _ = c.Add(p, 1, red, domain.SizeL)

	require.Equal(t, 2, c.Len())
	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, 3, b.Quantity)
}

func TestUpdateQuantityClamps(t *testing.T) {
	c := New(false)
	c, it := c.Add(product("1", 100), 3, red, domain.SizeS)

	for _, n := range []int{0, -1, -50} {
		c = c.UpdateQuantity(it.ID, n)
		got, ok := c.Get(it.ID)
		require.True(t, ok, "line must survive quantity %d", n)
		assert.Equal(t, 1, got.Quantity)
	}

	c = c.UpdateQuantity(it.ID, 4)
	got, _ := c.Get(it.ID)
	assert.Equal(t, 4, got.Quantity)
}

func TestAddClampsQuantity(t *testing.T) {
	_, it := New(false).Add(product("1", 100), 0, red, domain.SizeS)
	assert.Equal(t, 1, it.Quantity)
}

func TestRemove(t *testing.T) {
	c := New(false)
	c, a := c.Add(product("1", 15000), 2, red, domain.SizeM)
	c, _ = c.Add(product("2", 18000), 1, red, domain.SizeM)

	before := c
	c = c.Remove(a.ID)
	assert.True(t, c.Total().Equal(decimal.NewFromInt(18000)))
	assert.Equal(t, 2, before.Len(), "previous snapshot is untouched")

	same := c.Remove("does-not-exist")
	assert.Equal(t, c.Items(), same.Items())
	assert.True(t, same.Total().Equal(c.Total()))
}

func TestClear(t *testing.T) {
	c, _ := New(true).Add(product("1", 1), 1, red, domain.SizeM)
	c = c.Clear()
	assert.True(t, c.Empty())
	assert.True(t, c.Total().IsZero())
}

func TestTotalMatchesFoldForRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		c := New(round%2 == 0)
		for step := 0; step < 30; step++ {
			switch rng.Intn(3) {
			case 0:
				p := product(strconv.Itoa(rng.Intn(5)), int64(15000+rng.Intn(5)*1000))
				c, _ = c.Add(p, rng.Intn(4)-1, red, domain.Sizes[rng.Intn(len(domain.Sizes))])
			case 1:
				if c.Len() > 0 {
					items := c.Items()
					c = c.UpdateQuantity(items[rng.Intn(len(items))].ID, rng.Intn(6)-2)
				}
			case 2:
				if c.Len() > 0 {
					items := c.Items()
					c = c.Remove(items[rng.Intn(len(items))].ID)
				}
			}

			want := decimal.Zero
			ids := map[string]bool{}
			for _, it := range c.Items() {
				require.GreaterOrEqual(t, it.Quantity, 1)
				require.False(t, ids[it.ID], "duplicate id %s", it.ID)
				ids[it.ID] = true
				want = want.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
			}
			first, second := c.Total(), c.Total()
			require.True(t, first.Equal(want))
			require.True(t, first.Equal(second), "reads must not drift")
		}
	}
}
