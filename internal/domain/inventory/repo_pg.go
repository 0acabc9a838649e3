package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type itemRepoPG struct{ pool *pgxpool.Pool }

func NewItemRepoPG(pool *pgxpool.Pool) Repository { return &itemRepoPG{pool: pool} }

func (r *itemRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const itemCols = `id, item_name, category, quantity, supplier, reorder_level, created_at`

func (r *itemRepoPG) scanItem(row pgx.Row) (*Item, error) {
	var i Item
	err := row.Scan(&i.ID, &i.ItemName, &i.Category, &i.Quantity, &i.Supplier, &i.ReorderLevel, &i.CreatedAt)
	return &i, err
}

func (r *itemRepoPG) Create(ctx context.Context, item *Item) error {
	item.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO inventory (id, item_name, category, quantity, supplier, reorder_level)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		item.ID, item.ItemName, item.Category, item.Quantity, item.Supplier, item.ReorderLevel)
	if db.IsUniqueViolation(err) {
		return ErrItemExists
	}
	return err
}

func (r *itemRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Item, error) {
	return r.scanItem(r.conn(ctx).QueryRow(ctx, `SELECT `+itemCols+` FROM inventory WHERE id = $1`, id))
}

func (r *itemRepoPG) Update(ctx context.Context, item *Item) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE inventory SET item_name=$2, category=$3, quantity=$4, supplier=$5, reorder_level=$6
		WHERE id = $1`,
		item.ID, item.ItemName, item.Category, item.Quantity, item.Supplier, item.ReorderLevel)
	if db.IsUniqueViolation(err) {
		return ErrItemExists
	}
	return err
}

func (r *itemRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM inventory WHERE id = $1`, id)
	return err
}

func (r *itemRepoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Item, int, error) {
	where := ""
	var args []interface{}
	if f.Category != nil {
		args = append(args, *f.Category)
		where = ` WHERE category = $1`
	}
	if f.LowStockOnly {
		if where == "" {
			where = ` WHERE quantity <= reorder_level`
		} else {
			where += ` AND quantity <= reorder_level`
		}
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM inventory`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s FROM inventory%s ORDER BY item_name LIMIT $%d OFFSET $%d`,
		itemCols, where, len(args)+1, len(args)+2)
	rows, err := r.conn(ctx).Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.collect(rows)
	return items, total, err
}

func (r *itemRepoPG) collect(rows pgx.Rows) ([]*Item, error) {
	defer rows.Close()
	var items []*Item
	for rows.Next() {
		i, err := r.scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

func (r *itemRepoPG) ListByCategory(ctx context.Context, category string) ([]*Item, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+itemCols+` FROM inventory
		WHERE category = $1
		ORDER BY item_name`, category)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *itemRepoPG) ListLowStock(ctx context.Context) ([]*Item, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+itemCols+` FROM inventory
		WHERE quantity <= reorder_level
		ORDER BY quantity ASC`)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

// AdjustQuantity applies the delta in one guarded statement so
// concurrent adjustments cannot drive the quantity negative. The CHECK
// constraint on the column backs the guard.
func (r *itemRepoPG) AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) (*Item, error) {
	return r.scanItem(r.conn(ctx).QueryRow(ctx, `
		UPDATE inventory SET quantity = quantity + $2
		WHERE id = $1 AND quantity + $2 >= 0
		RETURNING `+itemCols, id, delta))
}

func (r *itemRepoPG) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(quantity), 0),
			COUNT(*) FILTER (WHERE quantity <= reorder_level)
		FROM inventory`).Scan(&s.TotalItems, &s.TotalQuantity, &s.LowStockCount)
	if err != nil {
		return nil, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT COALESCE(category, 'Uncategorized'), COUNT(*), COALESCE(SUM(quantity), 0)
		FROM inventory
		GROUP BY category
		ORDER BY 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	s.Categories = []CategoryStats{}
	for rows.Next() {
		var cs CategoryStats
		if err := rows.Scan(&cs.Category, &cs.ItemCount, &cs.TotalQuantity); err != nil {
			return nil, err
		}
		s.Categories = append(s.Categories, cs)
	}
	return &s, rows.Err()
}
