package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/adityarahman/go-shop-api/internal/config"
	"github.com/adityarahman/go-shop-api/internal/shop"
	"github.com/adityarahman/go-shop-api/internal/storage/postgres"
)

// Seed data contoh buat dev/demo: kategori, produk, customer.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logrus.WithField("service", "shop-seed")

	if cfg.PostgresDSN == "" {
		log.Fatal("POSTGRES_DSN wajib di-set untuk seed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.WithError(err).Fatal("db connect")
	}
	defer pool.Close()

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.WithError(err).Fatal("ensure schema")
	}

	uow := postgres.NewUnitOfWork(pool)
	defer uow.Close(ctx)

	if err := uow.Begin(ctx); err != nil {
		log.WithError(err).Fatal("begin")
	}

	categories := []*shop.Category{
		{Name: "Electronics", Description: "Gadgets and devices"},
		{Name: "Books", Description: "Printed and digital books"},
		{Name: "Groceries", Description: "Daily essentials"},
	}
	for _, c := range categories {
		uow.Categories().Add(c)
	}

	customers := []*shop.Customer{
		{FullName: "Budi Santoso", Email: "budi@example.com"},
		{FullName: "Siti Rahma", Email: "siti@example.com"},
		{FullName: "John Carter", Email: "john@example.com"},
	}
	for _, c := range customers {
		uow.Customers().Add(c)
	}

	if err := uow.Commit(ctx); err != nil {
		_ = uow.Rollback(ctx)
		log.WithError(err).Fatal("seed categories/customers")
	}

	// Produk butuh category id yang sudah ke-assign dari batch pertama.
	products := []*shop.Product{
		{Name: "Wireless Mouse", Price: decimal.NewFromFloat(19.99), CategoryID: categories[0].ID},
		{Name: "Mechanical Keyboard", Price: decimal.NewFromFloat(89.90), CategoryID: categories[0].ID},
		{Name: "The Go Programming Language", Price: decimal.NewFromFloat(39.95), CategoryID: categories[1].ID},
		{Name: "Arabica Coffee 500g", Price: decimal.NewFromFloat(12.50), CategoryID: categories[2].ID},
	}
	if err := uow.Begin(ctx); err != nil {
		log.WithError(err).Fatal("begin")
	}
	for _, p := range products {
		uow.Products().Add(p)
	}
	if err := uow.Commit(ctx); err != nil {
		_ = uow.Rollback(ctx)
		log.WithError(err).Fatal("seed products")
	}

	log.WithFields(logrus.Fields{
		"categories": len(categories),
		"customers":  len(customers),
		"products":   len(products),
	}).Info("seed done")
}
