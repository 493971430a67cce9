package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/adityarahman/go-shop-api/internal/shop"
)

// DB dipenuhi *pgxpool.Pool. Dipisah jadi interface supaya state machine
// unit of work bisa ditest tanpa koneksi beneran.
type DB interface {
	querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// UnitOfWork memegang satu repo per entity plus maksimal satu pgx.Tx.
// Begin mengarahkan semua repo ke tx; Commit/Rollback mengembalikannya ke
// pool. Satu instance per request, jangan dishare antar goroutine.
type UnitOfWork struct {
	db DB
	tx pgx.Tx

	categories *Repository[shop.Category]
	customers  *Repository[shop.Customer]
	products   *productRepository
	orders     *orderRepository
}

func NewUnitOfWork(db DB) *UnitOfWork {
	return &UnitOfWork{
		db:         db,
		categories: newRepository(db, categoryMeta()),
		customers:  newRepository(db, customerMeta()),
		products:   newProductRepository(db),
		orders:     newOrderRepository(db),
	}
}

func (u *UnitOfWork) Categories() shop.Repository[shop.Category] { return u.categories }
func (u *UnitOfWork) Customers() shop.Repository[shop.Customer]  { return u.customers }
func (u *UnitOfWork) Products() shop.ProductRepository           { return u.products }
func (u *UnitOfWork) Orders() shop.OrderRepository               { return u.orders }

// Begin idempotent: transaksi yang sudah terbuka dipakai lagi, bukan nested.
func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return nil
	}
	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	u.tx = tx
	u.bindAll(tx)
	return nil
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return shop.ErrNoTransaction
	}
	// flush staged changes dulu; kalau gagal, tx masih terbuka dan caller
	// wajib Rollback
	if err := u.persistAll(ctx); err != nil {
		return err
	}
	if err := u.tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	u.release()
	return nil
}

func (u *UnitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return shop.ErrNoTransaction
	}
	err := u.tx.Rollback(ctx)
	u.discardAll()
	u.release()
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("rollback tx: %w", err)
	}
	return nil
}

// Close melepas transaksi yang masih tergantung; no-op kalau sudah Idle.
func (u *UnitOfWork) Close(ctx context.Context) {
	if u.tx == nil {
		return
	}
	_ = u.tx.Rollback(ctx)
	u.discardAll()
	u.release()
}

func (u *UnitOfWork) persistAll(ctx context.Context) error {
	// urutan mengikuti arah foreign key
	if err := u.categories.Persist(ctx); err != nil {
		return err
	}
	if err := u.customers.Persist(ctx); err != nil {
		return err
	}
	if err := u.products.Persist(ctx); err != nil {
		return err
	}
	return u.orders.Persist(ctx)
}

func (u *UnitOfWork) bindAll(q querier) {
	u.categories.bind(q)
	u.customers.bind(q)
	u.products.bind(q)
	u.orders.bind(q)
}

func (u *UnitOfWork) discardAll() {
	u.categories.discard()
	u.customers.discard()
	u.products.discard()
	u.orders.discard()
}

func (u *UnitOfWork) release() {
	u.tx = nil
	u.bindAll(u.db)
}

var _ shop.UnitOfWork = (*UnitOfWork)(nil)
