package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/adityarahman/go-shop-api/internal/config"
	"github.com/adityarahman/go-shop-api/internal/httpx"
	kafkax "github.com/adityarahman/go-shop-api/internal/kafka"
	"github.com/adityarahman/go-shop-api/internal/metrics"
	"github.com/adityarahman/go-shop-api/internal/shop"
	"github.com/adityarahman/go-shop-api/internal/storage/memory"
	"github.com/adityarahman/go-shop-api/internal/storage/postgres"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(lvl)
	}
	log := logger.WithField("service", cfg.ServiceName)

	// harga & amount di-serialize sebagai angka JSON polos, bukan string
	decimal.MarshalJSONWithoutQuotes = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage: Postgres kalau DSN di-set, kalau tidak in-memory (dev)
	var newUoW func() shop.UnitOfWork
	if cfg.PostgresDSN != "" {
		pool, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			log.WithError(err).Fatal("db connect")
		}
		defer pool.Close()
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			log.WithError(err).Fatal("ensure schema")
		}
		newUoW = func() shop.UnitOfWork { return postgres.NewUnitOfWork(pool) }
		log.Info("storage: postgres")
	} else {
		st := memory.NewStore()
		newUoW = func() shop.UnitOfWork { return memory.NewUnitOfWork(st) }
		log.Warn("POSTGRES_DSN kosong, pakai storage in-memory")
	}

	// Kafka producer optional; tanpa broker order tetap jalan, event di-skip
	var prod *kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod = kafkax.NewProducer(cfg.KafkaBrokers, shop.TopicOrders, 1024, log)
		prod.Start(ctx)
	}

	m := metrics.NewHTTP()
	router := httpx.NewRouter(log, m)

	(&httpx.CategoriesHandler{NewUoW: newUoW, Log: log}).Register(router)
	(&httpx.ProductsHandler{NewUoW: newUoW, Log: log}).Register(router)
	(&httpx.CustomersHandler{NewUoW: newUoW, Log: log}).Register(router)
	(&httpx.OrdersHandler{NewUoW: newUoW, Producer: prod, Service: cfg.ServiceName, Log: log}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	if prod != nil {
		prod.Close()      // tutup inbox -> flush & close writer
		prod.WaitClosed() // drain
	}
}
