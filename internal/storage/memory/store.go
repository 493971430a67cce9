package memory

import (
	"sync"

	"github.com/adityarahman/go-shop-api/internal/shop"
)

// Store menyimpan semua entity di map, dipakai untuk mode dev tanpa DSN dan
// untuk test handler. Satu mutex untuk seluruh tabel.
type Store struct {
	mu sync.Mutex

	categories map[int64]shop.Category
	products   map[int64]shop.Product
	customers  map[int64]shop.Customer
	orders     map[int64]shop.Order

	categorySeq int64
	productSeq  int64
	customerSeq int64
	orderSeq    int64
	itemSeq     int64

	failPersist error
}

func NewStore() *Store {
	return &Store{
		categories: make(map[int64]shop.Category),
		products:   make(map[int64]shop.Product),
		customers:  make(map[int64]shop.Customer),
		orders:     make(map[int64]shop.Order),
	}
}

// FailNextPersist bikin Persist berikutnya gagal dengan err (sekali pakai).
// Untuk simulasi store failure di test.
func (s *Store) FailNextPersist(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failPersist = err
}

func (s *Store) takePersistErr() error {
	err := s.failPersist
	s.failPersist = nil
	return err
}
