package postgres

import (
	"context"
	"fmt"

	"github.com/adityarahman/go-shop-api/internal/shop"
)

type productRepository struct {
	*Repository[shop.Product]
}

func newProductRepository(q querier) *productRepository {
	return &productRepository{Repository: newRepository(q, productMeta())}
}

func (r *productRepository) ByCategory(ctx context.Context, categoryID int64) ([]shop.ProductDetail, error) {
	rows, err := r.q.Query(ctx, `
		SELECT p.id, p.name, p.price, p.category_id, c.name
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.category_id = $1
		ORDER BY p.id`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("select products by category: %w", err)
	}
	defer rows.Close()

	out := make([]shop.ProductDetail, 0)
	for rows.Next() {
		var d shop.ProductDetail
		if err := rows.Scan(&d.ID, &d.Name, &d.Price, &d.CategoryID, &d.CategoryName); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// TopSelling: urut desc total quantity di order_items, ambil count teratas.
// Produk tanpa penjualan dihitung 0. Urutan saat seri mengikuti store.
func (r *productRepository) TopSelling(ctx context.Context, count int) ([]shop.ProductDetail, error) {
	rows, err := r.q.Query(ctx, `
		SELECT p.id, p.name, p.price, p.category_id, c.name
		FROM products p
		JOIN categories c ON c.id = p.category_id
		LEFT JOIN order_items oi ON oi.product_id = p.id
		GROUP BY p.id, c.name
		ORDER BY COALESCE(SUM(oi.quantity), 0) DESC
		LIMIT $1`, count)
	if err != nil {
		return nil, fmt.Errorf("select top selling products: %w", err)
	}
	defer rows.Close()

	out := make([]shop.ProductDetail, 0)
	for rows.Next() {
		var d shop.ProductDetail
		if err := rows.Scan(&d.ID, &d.Name, &d.Price, &d.CategoryID, &d.CategoryName); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

var _ shop.ProductRepository = (*productRepository)(nil)
