package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/adityarahman/go-shop-api/internal/shop"
)

type orderRepository struct {
	*Repository[shop.Order]
	added   []*shop.Order
	updated []*shop.Order
}

func newOrderRepository(q querier) *orderRepository {
	return &orderRepository{Repository: newRepository(q, orderMeta())}
}

// Add/Update dicatat juga di sini supaya Persist tahu order mana yang perlu
// koleksi items-nya di-replace.
func (r *orderRepository) Add(o *shop.Order) {
	r.Repository.Add(o)
	r.added = append(r.added, o)
}

func (r *orderRepository) Update(o *shop.Order) {
	r.Repository.Update(o)
	r.updated = append(r.updated, o)
}

func (r *orderRepository) discard() {
	r.Repository.discard()
	r.added, r.updated = nil, nil
}

// Persist: baris orders lewat batch generik dulu (id ke-assign di sini),
// lalu items: order lama dibuang seluruhnya, semua item di-insert fresh
// tanpa reuse id. Delete order mengandalkan cascade di store.
func (r *orderRepository) Persist(ctx context.Context) error {
	if err := r.Repository.Persist(ctx); err != nil {
		return err
	}
	if err := r.persistItems(ctx); err != nil {
		return err
	}
	r.added, r.updated = nil, nil
	return nil
}

func (r *orderRepository) persistItems(ctx context.Context) error {
	b := &pgx.Batch{}
	for _, o := range r.updated {
		b.Queue(`DELETE FROM order_items WHERE order_id = $1`, o.ID)
	}

	var pendingItems []*shop.OrderItem
	owners := make([]*shop.Order, 0, len(r.added)+len(r.updated))
	owners = append(owners, r.added...)
	owners = append(owners, r.updated...)
	for _, o := range owners {
		for i := range o.Items {
			it := &o.Items[i]
			it.ID = 0
			it.OrderID = o.ID
			b.Queue(`
				INSERT INTO order_items (order_id, product_id, quantity, unit_price)
				VALUES ($1, $2, $3, $4) RETURNING id`,
				it.OrderID, it.ProductID, it.Quantity, it.UnitPrice,
			)
			pendingItems = append(pendingItems, it)
		}
	}
	if b.Len() == 0 {
		return nil
	}

	br := r.q.SendBatch(ctx, b)
	for range r.updated {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("clear order items: %w", err)
		}
	}
	for _, it := range pendingItems {
		if err := br.QueryRow().Scan(&it.ID); err != nil {
			_ = br.Close()
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("flush order items: %w", err)
	}
	return nil
}

func (r *orderRepository) AllDetail(ctx context.Context) ([]shop.OrderDetail, error) {
	return r.queryDetail(ctx, "", nil)
}

func (r *orderRepository) ByIDDetail(ctx context.Context, id int64) (*shop.OrderDetail, error) {
	out, err := r.queryDetail(ctx, "WHERE o.id = $1", []any{id})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

func (r *orderRepository) ByCustomer(ctx context.Context, customerID int64) ([]shop.OrderDetail, error) {
	return r.queryDetail(ctx, "WHERE o.customer_id = $1", []any{customerID})
}

func (r *orderRepository) ByDateRange(ctx context.Context, start, end time.Time) ([]shop.OrderDetail, error) {
	return r.queryDetail(ctx, "WHERE o.order_date >= $1 AND o.order_date <= $2", []any{start, end})
}

// queryDetail eager-load customer + items + nama product dalam dua query
// (orders join customers, lalu items join products utk seluruh id sekaligus)
// supaya tidak ada pola N+1.
func (r *orderRepository) queryDetail(ctx context.Context, where string, args []any) ([]shop.OrderDetail, error) {
	q := `
		SELECT o.id, o.customer_id, o.order_date, o.order_amount, c.full_name
		FROM orders o
		JOIN customers c ON c.id = o.customer_id ` + where + `
		ORDER BY o.id`
	rows, err := r.q.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	out := make([]shop.OrderDetail, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		var d shop.OrderDetail
		if err := rows.Scan(&d.ID, &d.CustomerID, &d.OrderDate, &d.OrderAmount, &d.CustomerName); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		d.Items = []shop.OrderItemDetail{}
		out = append(out, d)
		ids = append(ids, d.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if its, ok := items[out[i].ID]; ok {
			out[i].Items = its
		}
	}
	return out, nil
}

func (r *orderRepository) loadItems(ctx context.Context, orderIDs []int64) (map[int64][]shop.OrderItemDetail, error) {
	rows, err := r.q.Query(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.unit_price, p.name
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.order_id, oi.id`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	byOrder := make(map[int64][]shop.OrderItemDetail)
	for rows.Next() {
		var it shop.OrderItemDetail
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.ProductName); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return byOrder, nil
}

var _ shop.OrderRepository = (*orderRepository)(nil)
