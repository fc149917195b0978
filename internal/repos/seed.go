package repos

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"ramdom/internal/domain"
)

var stampImages = []string{
	"https://images.unsplash.com/photo-1554568218-0f1715e72254?auto=format&fit=crop&w=400&q=80",
	"https://images.unsplash.com/photo-1583743814966-8936f5b7be1a?auto=format&fit=crop&w=400&q=80",
	"https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?auto=format&fit=crop&w=400&q=80",
	"https://images.unsplash.com/photo-1620799140408-edc6dcb6d633?auto=format&fit=crop&w=400&q=80",
	"https://images.unsplash.com/photo-1576566588028-4147f3842f27?auto=format&fit=crop&w=400&q=80",
	"https://images.unsplash.com/photo-1503342217505-b0a15ec3261c?auto=format&fit=crop&w=400&q=80",
	"https://images.unsplash.com/photo-1503342452485-86b7f54547ee?auto=format&fit=crop&w=400&q=80",
	"https://images.unsplash.com/photo-1589156229687-496a31ad1d1f?auto=format&fit=crop&w=400&q=80",
	"https://images.unsplash.com/photo-1589156206699-bc21e38c8a7d?auto=format&fit=crop&w=400&q=80",
	"https://images.unsplash.com/photo-1618354691373-d851c5c3a990?auto=format&fit=crop&w=400&q=80",
}

const (
	catalogSize = 42
	author      = "Fatality Ramdom"
	description = "Prendas diseñadas para durar, inspiradas en el movimiento Ramdom. Streetwear minimal con actitud 100% algodón premium."
)

// Catalog builds the static product list. Prices step through 15000..19000
// deterministically so a restart shows the same catalog.
func Catalog() []domain.Product {
	tags := domain.Tags[1:]
	out := make([]domain.Product, 0, catalogSize)
	for i := 0; i < catalogSize; i++ {
		stamp := stampImages[i%len(stampImages)]
		out = append(out, domain.Product{
			ID:          strconv.Itoa(i + 1),
			Position:    i,
			Name:        fmt.Sprintf("Fatality Ramdom #%d", i+1),
			Author:      author,
			Price:       decimal.NewFromInt(int64(15000 + (i*7%5)*1000)),
			Description: description,
			BaseColor:   "#ffffff",
			Decal:       stamp,
			Image:       stamp,
			Tag:         tags[i%len(tags)],
		})
	}
	return out
}
