package memory

import (
	"context"
	"sort"
	"time"

	"github.com/adityarahman/go-shop-api/internal/shop"
)

type orderRepository struct {
	*repository[shop.Order]
}

func newOrderRepository(st *Store) *orderRepository {
	r := &repository[shop.Order]{
		st:    st,
		data:  func() map[int64]shop.Order { return st.orders },
		seq:   &st.orderSeq,
		id:    func(o *shop.Order) int64 { return o.ID },
		setID: func(o *shop.Order, id int64) { o.ID = id },
	}
	// replace wholesale: semua item dapat id baru, tidak ada reuse
	r.beforeStore = func(o *shop.Order) {
		for i := range o.Items {
			st.itemSeq++
			o.Items[i].ID = st.itemSeq
			o.Items[i].OrderID = o.ID
		}
	}
	return &orderRepository{repository: r}
}

func (r *orderRepository) AllDetail(ctx context.Context) ([]shop.OrderDetail, error) {
	return r.collect(func(o shop.Order) bool { return true })
}

func (r *orderRepository) ByIDDetail(ctx context.Context, id int64) (*shop.OrderDetail, error) {
	out, err := r.collect(func(o shop.Order) bool { return o.ID == id })
	if err != nil || len(out) == 0 {
		return nil, err
	}
	return &out[0], nil
}

func (r *orderRepository) ByCustomer(ctx context.Context, customerID int64) ([]shop.OrderDetail, error) {
	return r.collect(func(o shop.Order) bool { return o.CustomerID == customerID })
}

func (r *orderRepository) ByDateRange(ctx context.Context, start, end time.Time) ([]shop.OrderDetail, error) {
	return r.collect(func(o shop.Order) bool {
		return !o.OrderDate.Before(start) && !o.OrderDate.After(end)
	})
}

func (r *orderRepository) collect(match func(shop.Order) bool) ([]shop.OrderDetail, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	out := make([]shop.OrderDetail, 0)
	for _, o := range r.st.orders {
		if !match(o) {
			continue
		}
		d := shop.OrderDetail{Order: o, Items: make([]shop.OrderItemDetail, 0, len(o.Items))}
		if c, ok := r.st.customers[o.CustomerID]; ok {
			d.CustomerName = c.FullName
		}
		for _, it := range o.Items {
			itd := shop.OrderItemDetail{OrderItem: it}
			if p, ok := r.st.products[it.ProductID]; ok {
				itd.ProductName = p.Name
			}
			d.Items = append(d.Items, itd)
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

var _ shop.OrderRepository = (*orderRepository)(nil)
