package services

import (
	"fmt"

	"ramdom/internal/domain"
	"ramdom/internal/repos"
)

type FavoriteService struct {
	Repo  *repos.FavoriteRepo
	Prods *repos.ProductRepo
}

func NewFavoriteService(r *repos.FavoriteRepo, prods *repos.ProductRepo) *FavoriteService {
	return &FavoriteService{Repo: r, Prods: prods}
}

// Save marks a catalog product; unknown products return repos.ErrNotFound.
func (s *FavoriteService) Save(sessionID, productID string) error {
	if _, err := s.Prods.Get(productID); err != nil {
		return err
	}
	if err := s.Repo.Add(sessionID, productID); err != nil {
		return fmt.Errorf("save favorite: %w", err)
	}
	return nil
}

func (s *FavoriteService) Unsave(sessionID, productID string) error {
	return s.Repo.Remove(sessionID, productID)
}

func (s *FavoriteService) List(sessionID string) ([]domain.Product, error) {
	return s.Repo.List(sessionID)
}

func (s *FavoriteService) Marked(sessionID string) (map[string]bool, error) {
	return s.Repo.IDs(sessionID)
}

func (s *FavoriteService) Forget(sessionID string) error {
	return s.Repo.Forget(sessionID)
}
