package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/adityarahman/go-shop-api/internal/shop"
)

type opKind int

const (
	opInsert opKind = iota
	opUpdate
	opDelete
)

type pendingOp[T any] struct {
	kind   opKind
	entity *T
}

// repository adalah padanan in-memory dari implementasi postgres: staging di
// slice pending, apply saat Persist, di bawah lock Store.
type repository[T any] struct {
	st          *Store
	data        func() map[int64]T
	seq         *int64
	id          func(*T) int64
	setID       func(*T, int64)
	beforeStore func(*T) // opsional, dipanggil di bawah lock sebelum simpan
	pending     []pendingOp[T]
}

func (r *repository[T]) discard() { r.pending = nil }

func (r *repository[T]) All(ctx context.Context) ([]T, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	m := r.data()
	out := make([]T, 0, len(m))
	for _, e := range m {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return r.id(&out[i]) < r.id(&out[j]) })
	return out, nil
}

func (r *repository[T]) ByID(ctx context.Context, id int64) (*T, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	e, ok := r.data()[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (r *repository[T]) Exists(ctx context.Context, id int64) (bool, error) {
	e, err := r.ByID(ctx, id)
	if err != nil {
		return false, err
	}
	return e != nil, nil
}

func (r *repository[T]) Add(entity *T)    { r.pending = append(r.pending, pendingOp[T]{opInsert, entity}) }
func (r *repository[T]) Update(entity *T) { r.pending = append(r.pending, pendingOp[T]{opUpdate, entity}) }
func (r *repository[T]) Delete(entity *T) { r.pending = append(r.pending, pendingOp[T]{opDelete, entity}) }

func (r *repository[T]) Persist(ctx context.Context) error {
	if len(r.pending) == 0 {
		return nil
	}

	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if err := r.st.takePersistErr(); err != nil {
		return err
	}

	m := r.data()

	// validasi seluruh target update dulu: batch yang gagal tidak boleh
	// meninggalkan setengah perubahan di store
	staged := make(map[*T]bool)
	for _, op := range r.pending {
		switch op.kind {
		case opInsert:
			staged[op.entity] = true
		case opUpdate:
			if staged[op.entity] {
				continue
			}
			if _, ok := m[r.id(op.entity)]; !ok {
				return fmt.Errorf("update id %d: %w", r.id(op.entity), shop.ErrNotFound)
			}
		}
	}

	for _, op := range r.pending {
		switch op.kind {
		case opInsert:
			*r.seq++
			r.setID(op.entity, *r.seq)
			if r.beforeStore != nil {
				r.beforeStore(op.entity)
			}
			m[r.id(op.entity)] = *op.entity
		case opUpdate:
			id := r.id(op.entity)
			if _, ok := m[id]; !ok {
				return fmt.Errorf("update id %d: %w", id, shop.ErrNotFound)
			}
			if r.beforeStore != nil {
				r.beforeStore(op.entity)
			}
			m[id] = *op.entity
		case opDelete:
			delete(m, r.id(op.entity))
		}
	}

	r.pending = nil
	return nil
}
