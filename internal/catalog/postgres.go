package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

const itemColumns = `id, title, price, image, featured, description,
	location, type, bedrooms, bathrooms, area,
	brand, kind, specs, rating`

// PostgresProvider reads the catalog from the catalog_items table.
type PostgresProvider struct {
	pool DBPool
}

func NewPostgresProvider(pool DBPool) *PostgresProvider {
	return &PostgresProvider{pool: pool}
}

func (p *PostgresProvider) List(ctx context.Context, cat Category) ([]Item, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+itemColumns+` FROM catalog_items WHERE category=$1 ORDER BY position, id`, string(cat))
	if err != nil {
		return nil, fmt.Errorf("query catalog %s: %w", cat, err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan catalog %s: %w", cat, err)
		}
		it.Category = cat
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog %s: %w", cat, err)
	}
	return items, nil
}

func (p *PostgresProvider) Get(ctx context.Context, cat Category, id int) (Item, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM catalog_items WHERE category=$1 AND id=$2`, string(cat), id)
	it, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, ErrNotFound
		}
		return Item{}, fmt.Errorf("get catalog item %s/%d: %w", cat, id, err)
	}
	it.Category = cat
	return it, nil
}

// Seed upserts the given catalogs in a single transaction. The position column keeps
// the source order so List returns items the way they were authored.
func (p *PostgresProvider) Seed(ctx context.Context, catalogs map[Category][]Item) error {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, cat := range Categories {
		for pos, it := range catalogs[cat] {
			if _, err := tx.Exec(ctx, `
				INSERT INTO catalog_items(category, id, position, title, price, image, featured, description,
					location, type, bedrooms, bathrooms, area, brand, kind, specs, rating)
				VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
				ON CONFLICT (category, id) DO UPDATE SET
					position=EXCLUDED.position, title=EXCLUDED.title, price=EXCLUDED.price,
					image=EXCLUDED.image, featured=EXCLUDED.featured, description=EXCLUDED.description,
					location=EXCLUDED.location, type=EXCLUDED.type, bedrooms=EXCLUDED.bedrooms,
					bathrooms=EXCLUDED.bathrooms, area=EXCLUDED.area, brand=EXCLUDED.brand,
					kind=EXCLUDED.kind, specs=EXCLUDED.specs, rating=EXCLUDED.rating, updated_at=now()
			`, string(cat), it.ID, pos, it.Title, it.Price, it.Image, it.Featured, it.Description,
				it.Location, it.Type, it.Bedrooms, it.Bathrooms, it.Area, it.Brand, it.Kind, specsOrEmpty(it.Specs), it.Rating,
			); err != nil {
				return fmt.Errorf("seed %s: %w", Key{Category: cat, ID: it.ID}, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}

func scanItem(row pgx.Row) (Item, error) {
	var it Item
	err := row.Scan(
		&it.ID, &it.Title, &it.Price, &it.Image, &it.Featured, &it.Description,
		&it.Location, &it.Type, &it.Bedrooms, &it.Bathrooms, &it.Area,
		&it.Brand, &it.Kind, &it.Specs, &it.Rating,
	)
	if len(it.Specs) == 0 {
		it.Specs = nil
	}
	return it, err
}

func specsOrEmpty(specs []string) []string {
	if specs == nil {
		return []string{}
	}
	return specs
}
