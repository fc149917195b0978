package services

import (
	"ramdom/internal/domain"
	"ramdom/internal/repos"
)

type CatalogService struct {
	Prods *repos.ProductRepo
}

func NewCatalogService(prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Prods: prods}
}

// Gallery lists products for a filter label and sort order. Unknown labels
// fall back to the whole catalog.
func (s *CatalogService) Gallery(tag string, sort domain.SortOption) ([]domain.Product, error) {
	if !knownTag(tag) {
		tag = ""
	}
	return s.Prods.List(tag, sort)
}

func (s *CatalogService) GetProduct(id string) (domain.Product, error) {
	return s.Prods.Get(id)
}

func (s *CatalogService) Search(q string) ([]domain.Product, error) {
	return s.Prods.Search(q, 0)
}

// QuickAdd is the one-click add from the gallery quick view: one unit in the
// product's base color, size M.
func (s *CatalogService) QuickAdd(id string) (AddRequest, error) {
	p, err := s.Prods.Get(id)
	if err != nil {
		return AddRequest{}, err
	}
	return AddRequest{Product: p, Quantity: 1, ColorHex: p.BaseColor, Size: domain.SizeM}, nil
}

func knownTag(tag string) bool {
	for _, t := range domain.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
