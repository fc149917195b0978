package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID          string          `db:"id"`
	Position    int             `db:"position"`
	Name        string          `db:"name"`
	Author      string          `db:"author"`
	Price       decimal.Decimal `db:"price"`
	Description string          `db:"description"`
	BaseColor   string          `db:"base_color"` // hex for the 3D model
	Decal       string          `db:"decal"`      // printed graphic
	Image       string          `db:"image"`      // card background
	Tag         string          `db:"tag"`        // Cyberpunk | Neon | Minimalista
}

// Size is the garment size chosen on the configurator.
type Size string

const (
	SizeS   Size = "S"
	SizeM   Size = "M"
	SizeL   Size = "L"
	SizeXL  Size = "XL"
	Size2XL Size = "2XL"
)

// Sizes lists the sizes in display order.
var Sizes = []Size{SizeS, SizeM, SizeL, SizeXL, Size2XL}

func ParseSize(s string) (Size, bool) {
	for _, sz := range Sizes {
		if string(sz) == s {
			return sz, true
		}
	}
	return "", false
}

// Tags are the gallery filter labels; "Todos" means no filter.
var Tags = []string{"Todos", "Cyberpunk", "Neon", "Minimalista"}

// SortOption orders the gallery.
type SortOption string

const (
	SortPopular   SortOption = "popular"
	SortPriceAsc  SortOption = "price-asc"
	SortPriceDesc SortOption = "price-desc"
)

func ParseSort(s string) SortOption {
	switch SortOption(s) {
	case SortPriceAsc, SortPriceDesc:
		return SortOption(s)
	default:
		return SortPopular
	}
}
