package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// catalogTables lists the tables reported by TableCounts, in schema order.
var catalogTables = []string{
	"products",
	"templates",
	"customization_zones",
	"option_sets",
	"options",
	"carts",
	"cart_items",
	"customization_sessions",
}

// TableCount is the row count of one table.
type TableCount struct {
	Table string
	Rows  int
}

// StatsRepository answers operational questions about the database.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository creates a new StatsRepository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Ping checks that the database answers.
func (r *StatsRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// TableCounts returns the row count of every catalog table.
func (r *StatsRepository) TableCounts(ctx context.Context) ([]TableCount, error) {
	out := make([]TableCount, 0, len(catalogTables))
	for _, table := range catalogTables {
		var n int
		if err := r.db.GetContext(ctx, &n, `SELECT COUNT(1) FROM `+table); err != nil {
			return nil, err
		}
		out = append(out, TableCount{Table: table, Rows: n})
	}
	return out, nil
}

// ProductsWithoutDefault counts products that have templates but no default.
// A healthy catalog always reports zero.
func (r *StatsRepository) ProductsWithoutDefault(ctx context.Context) (int, error) {
	const q = `
		SELECT COUNT(DISTINCT t.product_id) FROM templates t
		WHERE NOT EXISTS (
			SELECT 1 FROM templates d WHERE d.product_id = t.product_id AND d.is_default = TRUE
		)`
	var n int
	err := r.db.GetContext(ctx, &n, q)
	return n, err
}
