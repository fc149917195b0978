package repos

import (
	"time"

	"github.com/jmoiron/sqlx"

	"ramdom/internal/domain"
)

// FavoriteRepo stores the products a session marked from the gallery.
type FavoriteRepo struct{ db *sqlx.DB }

func NewFavoriteRepo(db *sqlx.DB) *FavoriteRepo { return &FavoriteRepo{db: db} }

func (r *FavoriteRepo) Add(sessionID, productID string) error {
	_, err := r.db.Exec(`
	  INSERT INTO favorites(session_id, product_id, created_at)
	  VALUES(?, ?, ?)
	  ON CONFLICT(session_id, product_id) DO NOTHING
	`, sessionID, productID, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

func (r *FavoriteRepo) Remove(sessionID, productID string) error {
	_, err := r.db.Exec(`DELETE FROM favorites WHERE session_id=? AND product_id=?`, sessionID, productID)
	return err
}

// Forget drops every favorite of a session.
func (r *FavoriteRepo) Forget(sessionID string) error {
	_, err := r.db.Exec(`DELETE FROM favorites WHERE session_id=?`, sessionID)
	return err
}

// List returns the session's favorites in catalog order.
func (r *FavoriteRepo) List(sessionID string) ([]domain.Product, error) {
	out := []domain.Product{}
	err := r.db.Select(&out, `
	  SELECT p.id, p.position, p.name, p.author, p.price, p.description, p.base_color, p.decal, p.image, p.tag
	  FROM favorites f
	  JOIN products p ON p.id = f.product_id
	  WHERE f.session_id = ?
	  ORDER BY p.position
	`, sessionID)
	return out, err
}

// IDs returns the favorite product ids as a set, for marking gallery cards.
func (r *FavoriteRepo) IDs(sessionID string) (map[string]bool, error) {
	var ids []string
	if err := r.db.Select(&ids, `SELECT product_id FROM favorites WHERE session_id=?`, sessionID); err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
