package store

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/LavishGent/productcache/internal/types"
)

type productModel struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID         int64     `bun:"id,pk,autoincrement"`
	Name       string    `bun:"name,notnull"`
	PriceCents int64     `bun:"price_cents,notnull"`
	UpdatedAt  time.Time `bun:"updated_at,notnull"`
}

func (m *productModel) toProduct() types.Product {
	return types.Product{
		ID:         m.ID,
		Name:       m.Name,
		PriceCents: m.PriceCents,
		UpdatedAt:  m.UpdatedAt.UTC(),
	}
}

const postgresSchema = `CREATE TABLE IF NOT EXISTS products (
	id          BIGSERIAL PRIMARY KEY,
	name        TEXT NOT NULL,
	price_cents BIGINT NOT NULL CHECK (price_cents >= 0),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const sqliteSchema = `CREATE TABLE IF NOT EXISTS products (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL,
	price_cents INTEGER NOT NULL CHECK (price_cents >= 0),
	updated_at  TIMESTAMP NOT NULL DEFAULT (strftime('%Y-%m-%d %H:%M:%f', 'now'))
)`
