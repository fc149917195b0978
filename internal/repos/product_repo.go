package repos

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"ramdom/internal/domain"
)

var ErrNotFound = errors.New("not found")

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const catalogPage = 48

const productCols = `id, position, name, author, price, description, base_color, decal, image, tag`

// List returns the catalog filtered by tag ("" or "Todos" for all) in the given order.
func (r *ProductRepo) List(tag string, sort domain.SortOption) ([]domain.Product, error) {
	where := `1 = 1`
	args := []any{}
	if tag != "" && tag != "Todos" {
		where += ` AND tag = ?`
		args = append(args, tag)
	}

	order := `position ASC`
	switch sort {
	case domain.SortPriceAsc:
		order = `CAST(price AS REAL) ASC, position ASC`
	case domain.SortPriceDesc:
		order = `CAST(price AS REAL) DESC, position ASC`
	}

	out := []domain.Product{}
	err := r.db.Select(&out, `SELECT `+productCols+` FROM products WHERE `+where+` ORDER BY `+order, args...)
	return out, err
}

// Search matches q against names and tags, case-insensitively, in catalog order.
func (r *ProductRepo) Search(q string, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = catalogPage
	}
	like := "%" + strings.ToLower(q) + "%"
	out := []domain.Product{}
	err := r.db.Select(&out, `SELECT `+productCols+` FROM products
		WHERE LOWER(name) LIKE ? OR LOWER(tag) LIKE ?
		ORDER BY position ASC LIMIT ?`, like, like, limit)
	return out, err
}

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT `+productCols+` FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, ErrNotFound
	}
	return p, err
}

func (r *ProductRepo) Count() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM products`)
	return n, err
}
