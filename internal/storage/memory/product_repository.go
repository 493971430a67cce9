package memory

import (
	"context"
	"sort"

	"github.com/adityarahman/go-shop-api/internal/shop"
)

type productRepository struct {
	*repository[shop.Product]
}

func newProductRepository(st *Store) *productRepository {
	return &productRepository{repository: &repository[shop.Product]{
		st:    st,
		data:  func() map[int64]shop.Product { return st.products },
		seq:   &st.productSeq,
		id:    func(p *shop.Product) int64 { return p.ID },
		setID: func(p *shop.Product, id int64) { p.ID = id },
	}}
}

func (r *productRepository) ByCategory(ctx context.Context, categoryID int64) ([]shop.ProductDetail, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	out := make([]shop.ProductDetail, 0)
	for _, p := range r.st.products {
		if p.CategoryID != categoryID {
			continue
		}
		out = append(out, r.detailLocked(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *productRepository) TopSelling(ctx context.Context, count int) ([]shop.ProductDetail, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	sold := make(map[int64]int)
	for _, o := range r.st.orders {
		for _, it := range o.Items {
			sold[it.ProductID] += it.Quantity
		}
	}

	out := make([]shop.ProductDetail, 0, len(r.st.products))
	for _, p := range r.st.products {
		out = append(out, r.detailLocked(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if sold[out[i].ID] != sold[out[j].ID] {
			return sold[out[i].ID] > sold[out[j].ID]
		}
		return out[i].ID < out[j].ID
	})
	if count < len(out) {
		out = out[:count]
	}
	return out, nil
}

func (r *productRepository) detailLocked(p shop.Product) shop.ProductDetail {
	d := shop.ProductDetail{Product: p}
	if c, ok := r.st.categories[p.CategoryID]; ok {
		d.CategoryName = c.Name
	}
	return d
}

var _ shop.ProductRepository = (*productRepository)(nil)
