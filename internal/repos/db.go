package repos

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"ramdom/internal/domain"
)

// OpenDB opens the in-memory catalog store and seeds it with the static catalog.
// Every :memory: connection is its own database, so the pool is pinned to one.
func OpenDB(dsn string, products []domain.Product) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	if err := seedIfEmpty(db, products); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  position INTEGER NOT NULL,
  name TEXT NOT NULL,
  author TEXT NOT NULL DEFAULT '',
  price TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  base_color TEXT NOT NULL,
  decal TEXT NOT NULL DEFAULT '',
  image TEXT NOT NULL DEFAULT '',
  tag TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_products_position ON products(position);
CREATE INDEX IF NOT EXISTS idx_products_tag      ON products(tag);

CREATE TABLE IF NOT EXISTS favorites(
  session_id TEXT NOT NULL,
  product_id TEXT NOT NULL REFERENCES products(id),
  created_at TEXT NOT NULL,
  PRIMARY KEY(session_id, product_id)
);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB, products []domain.Product) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Printf("[seed] inserting %d catalog products", len(products))

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for i, p := range products {
		p.Position = i
		if _, err := tx.NamedExec(`
			INSERT INTO products(id,position,name,author,price,description,base_color,decal,image,tag)
			VALUES(:id,:position,:name,:author,:price,:description,:base_color,:decal,:image,:tag)
		`, p); err != nil {
			return fmt.Errorf("seed product %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}
