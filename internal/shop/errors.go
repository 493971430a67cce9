package shop

import "errors"

var (
	// ErrNoTransaction dikembalikan Commit/Rollback tanpa Begin lebih dulu.
	ErrNoTransaction = errors.New("no active transaction")
	// ErrNotFound dipakai implementasi store untuk baris yang hilang saat
	// update/delete ter-stage menyasar id yang sudah tidak ada.
	ErrNotFound = errors.New("entity not found")
)
