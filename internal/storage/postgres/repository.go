package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/adityarahman/go-shop-api/internal/shop"
)

// querier dipenuhi *pgxpool.Pool maupun pgx.Tx; repo tidak perlu tahu
// sedang jalan di dalam transaksi atau tidak.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// meta memetakan satu tipe entity ke tabelnya: nama kolom, akses id,
// nilai untuk insert/update, dan destinasi scan.
type meta[T any] struct {
	table   string
	columns []string // kolom selain id
	id      func(*T) int64
	setID   func(*T, int64)
	values  func(*T) []any // nilai untuk columns, urutan sama
	scan    func(*T) []any // destinasi scan: id lalu columns
}

func (m meta[T]) selectSQL() string {
	return "SELECT id, " + strings.Join(m.columns, ", ") + " FROM " + m.table
}

func (m meta[T]) insertSQL() string {
	ph := make([]string, len(m.columns))
	for i := range m.columns {
		ph[i] = fmt.Sprintf("$%d", i+1)
	}
	return "INSERT INTO " + m.table + " (" + strings.Join(m.columns, ", ") +
		") VALUES (" + strings.Join(ph, ", ") + ") RETURNING id"
}

func (m meta[T]) updateSQL() string {
	sets := make([]string, len(m.columns))
	for i, c := range m.columns {
		sets[i] = fmt.Sprintf("%s = $%d", c, i+1)
	}
	return "UPDATE " + m.table + " SET " + strings.Join(sets, ", ") +
		fmt.Sprintf(" WHERE id = $%d", len(m.columns)+1)
}

func (m meta[T]) deleteSQL() string {
	return "DELETE FROM " + m.table + " WHERE id = $1"
}

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

// Repository adalah implementasi generik shop.Repository[T] di atas pgx.
// Add/Update/Delete cuma antre di memory; Persist kirim semuanya lewat satu
// pgx.Batch (satu round trip).
type Repository[T any] struct {
	q       querier
	m       meta[T]
	pending []pendingOp[T]
}

func newRepository[T any](q querier, m meta[T]) *Repository[T] {
	return &Repository[T]{q: q, m: m}
}

// bind mengarahkan repo ke querier lain (pool <-> tx), dipakai unit of work.
func (r *Repository[T]) bind(q querier) { r.q = q }

// discard membuang seluruh perubahan yang belum di-Persist.
func (r *Repository[T]) discard() { r.pending = nil }

func (r *Repository[T]) All(ctx context.Context) ([]T, error) {
	rows, err := r.q.Query(ctx, r.m.selectSQL()+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", r.m.table, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var e T
		if err := rows.Scan(r.m.scan(&e)...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.m.table, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repository[T]) ByID(ctx context.Context, id int64) (*T, error) {
	var e T
	err := r.q.QueryRow(ctx, r.m.selectSQL()+" WHERE id = $1", id).Scan(r.m.scan(&e)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select %s by id: %w", r.m.table, err)
	}
	return &e, nil
}

func (r *Repository[T]) Exists(ctx context.Context, id int64) (bool, error) {
	e, err := r.ByID(ctx, id)
	if err != nil {
		return false, err
	}
	return e != nil, nil
}

func (r *Repository[T]) Add(entity *T) {
	r.pending = append(r.pending, pendingOp[T]{kind: opInsert, entity: entity})
}

func (r *Repository[T]) Update(entity *T) {
	r.pending = append(r.pending, pendingOp[T]{kind: opUpdate, entity: entity})
}

func (r *Repository[T]) Delete(entity *T) {
	r.pending = append(r.pending, pendingOp[T]{kind: opDelete, entity: entity})
}

func (r *Repository[T]) Persist(ctx context.Context) error {
	if len(r.pending) == 0 {
		return nil
	}

	b := &pgx.Batch{}
	for _, op := range r.pending {
		switch op.kind {
		case opInsert:
			b.Queue(r.m.insertSQL(), r.m.values(op.entity)...)
		case opUpdate:
			args := append(r.m.values(op.entity), r.m.id(op.entity))
			b.Queue(r.m.updateSQL(), args...)
		case opDelete:
			b.Queue(r.m.deleteSQL(), r.m.id(op.entity))
		}
	}

	br := r.q.SendBatch(ctx, b)
	for _, op := range r.pending {
		switch op.kind {
		case opInsert:
			var id int64
			if err := br.QueryRow().Scan(&id); err != nil {
				_ = br.Close()
				return fmt.Errorf("insert %s: %w", r.m.table, err)
			}
			r.m.setID(op.entity, id)
		case opUpdate:
			ct, err := br.Exec()
			if err != nil {
				_ = br.Close()
				return fmt.Errorf("update %s: %w", r.m.table, err)
			}
			if ct.RowsAffected() == 0 {
				_ = br.Close()
				return fmt.Errorf("update %s id %d: %w", r.m.table, r.m.id(op.entity), shop.ErrNotFound)
			}
		case opDelete:
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("delete %s: %w", r.m.table, err)
			}
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("flush %s: %w", r.m.table, err)
	}

	r.pending = nil
	return nil
}
