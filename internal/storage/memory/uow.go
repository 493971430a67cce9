package memory

import (
	"context"

	"github.com/adityarahman/go-shop-api/internal/shop"
)

// UnitOfWork in-memory. Transaksi cuma penanda: Commit apply seluruh staging,
// Rollback buang. Cukup untuk test handler dan mode dev.
type UnitOfWork struct {
	st   *Store
	open bool

	categories *repository[shop.Category]
	customers  *repository[shop.Customer]
	products   *productRepository
	orders     *orderRepository
}

func NewUnitOfWork(st *Store) *UnitOfWork {
	return &UnitOfWork{
		st: st,
		categories: &repository[shop.Category]{
			st:    st,
			data:  func() map[int64]shop.Category { return st.categories },
			seq:   &st.categorySeq,
			id:    func(c *shop.Category) int64 { return c.ID },
			setID: func(c *shop.Category, id int64) { c.ID = id },
		},
		customers: &repository[shop.Customer]{
			st:    st,
			data:  func() map[int64]shop.Customer { return st.customers },
			seq:   &st.customerSeq,
			id:    func(c *shop.Customer) int64 { return c.ID },
			setID: func(c *shop.Customer, id int64) { c.ID = id },
		},
		products: newProductRepository(st),
		orders:   newOrderRepository(st),
	}
}

func (u *UnitOfWork) Categories() shop.Repository[shop.Category] { return u.categories }
func (u *UnitOfWork) Customers() shop.Repository[shop.Customer]  { return u.customers }
func (u *UnitOfWork) Products() shop.ProductRepository           { return u.products }
func (u *UnitOfWork) Orders() shop.OrderRepository               { return u.orders }

func (u *UnitOfWork) Begin(ctx context.Context) error {
	u.open = true
	return nil
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	if !u.open {
		return shop.ErrNoTransaction
	}
	if err := u.categories.Persist(ctx); err != nil {
		return err
	}
	if err := u.customers.Persist(ctx); err != nil {
		return err
	}
	if err := u.products.Persist(ctx); err != nil {
		return err
	}
	if err := u.orders.Persist(ctx); err != nil {
		return err
	}
	u.open = false
	return nil
}

func (u *UnitOfWork) Rollback(ctx context.Context) error {
	if !u.open {
		return shop.ErrNoTransaction
	}
	u.discardAll()
	u.open = false
	return nil
}

func (u *UnitOfWork) Close(ctx context.Context) {
	if !u.open {
		return
	}
	u.discardAll()
	u.open = false
}

func (u *UnitOfWork) discardAll() {
	u.categories.discard()
	u.customers.discard()
	u.products.discard()
	u.orders.discard()
}

var _ shop.UnitOfWork = (*UnitOfWork)(nil)
