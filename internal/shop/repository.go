package shop

import (
	"context"
	"time"
)

// Repository adalah kontrak CRUD generik untuk satu tipe entity.
// Add/Update/Delete hanya staging; perubahan baru masuk store saat Persist.
type Repository[T any] interface {
	// All mengembalikan snapshot read-only seluruh baris.
	All(ctx context.Context) ([]T, error)
	// ByID mengembalikan entity, atau nil (bukan error) kalau tidak ada.
	ByID(ctx context.Context, id int64) (*T, error)
	// Exists = ByID != nil. Double round-trip disengaja demi kontrak sederhana.
	Exists(ctx context.Context, id int64) (bool, error)
	Add(entity *T)
	Update(entity *T)
	Delete(entity *T)
	// Persist flush semua perubahan staged secara atomik dalam satu round trip.
	Persist(ctx context.Context) error
}

type ProductRepository interface {
	Repository[Product]
	// ByCategory: filter per kategori, nama kategori ikut di-load.
	ByCategory(ctx context.Context, categoryID int64) ([]ProductDetail, error)
	// TopSelling: urut desc berdasarkan total quantity di order_items.
	// Urutan saat seri mengikuti store (tidak dispesifikasikan).
	TopSelling(ctx context.Context, count int) ([]ProductDetail, error)
}

type OrderRepository interface {
	Repository[Order]
	AllDetail(ctx context.Context) ([]OrderDetail, error)
	ByIDDetail(ctx context.Context, id int64) (*OrderDetail, error)
	// ByCustomer & ByDateRange eager-load customer + items + product
	// supaya assembly response tidak perlu query susulan (hindari N+1).
	ByCustomer(ctx context.Context, customerID int64) ([]OrderDetail, error)
	ByDateRange(ctx context.Context, start, end time.Time) ([]OrderDetail, error)
}

// UnitOfWork memegang satu repo per entity di balik satu handle, plus satu
// boundary transaksi yang dipakai bersama semua repo tersebut.
//
// State: Idle -> TransactionOpen -> (Committed | RolledBack) -> Idle.
type UnitOfWork interface {
	Categories() Repository[Category]
	Products() ProductRepository
	Customers() Repository[Customer]
	Orders() OrderRepository

	// Begin idempotent: kalau transaksi sudah terbuka, pakai yang ada
	// (bukan nested transaction).
	Begin(ctx context.Context) error
	// Commit: ErrNoTransaction kalau belum Begin. Flush staged changes dulu,
	// baru commit, lalu handle kembali Idle.
	Commit(ctx context.Context) error
	// Rollback: ErrNoTransaction kalau belum Begin. Staged changes dibuang.
	Rollback(ctx context.Context) error
	// Close melepas transaksi yang masih terbuka (rollback) — aman dipanggil
	// lewat defer tanpa peduli commit/rollback sudah terjadi atau belum.
	Close(ctx context.Context)
}
