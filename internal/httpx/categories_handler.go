package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/adityarahman/go-shop-api/internal/shop"
)

type CategoriesHandler struct {
	// satu unit of work per request
	NewUoW func() shop.UnitOfWork
	Log    *logrus.Entry
}

func (h *CategoriesHandler) Register(r *chi.Mux) {
	r.Get("/categories", h.list)
	r.Get("/categories/{id}", h.get)
	r.Post("/categories", h.create)
	r.Put("/categories/{id}", h.update)
	r.Delete("/categories/{id}", h.delete)
}

func (h *CategoriesHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	uow := h.NewUoW()
	defer uow.Close(ctx)

	categories, err := uow.Categories().All(ctx)
	if err != nil {
		h.Log.WithError(err).Error("list categories")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if categories == nil {
		categories = []shop.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *CategoriesHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	uow := h.NewUoW()
	defer uow.Close(ctx)

	c, err := uow.Categories().ByID(ctx, id)
	if err != nil {
		h.Log.WithError(err).Error("get category")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CategoriesHandler) create(w http.ResponseWriter, r *http.Request) {
	var c shop.Category
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	c.ID = 0 // id dari store

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	uow := h.NewUoW()
	defer uow.Close(ctx)

	repo := uow.Categories()
	repo.Add(&c)
	if err := repo.Persist(ctx); err != nil {
		h.Log.WithError(err).Error("create category")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CategoriesHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var c shop.Category
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if id != c.ID {
		writeError(w, http.StatusBadRequest, "Id mismatch")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	uow := h.NewUoW()
	defer uow.Close(ctx)

	repo := uow.Categories()
	existing, err := repo.ByID(ctx, id)
	if err != nil {
		h.Log.WithError(err).Error("update category")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	existing.Name = c.Name
	existing.Description = c.Description
	repo.Update(existing)
	if err := repo.Persist(ctx); err != nil {
		h.Log.WithError(err).Error("update category")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CategoriesHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	uow := h.NewUoW()
	defer uow.Close(ctx)

	repo := uow.Categories()
	existing, err := repo.ByID(ctx, id)
	if err != nil {
		h.Log.WithError(err).Error("delete category")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	repo.Delete(existing)
	if err := repo.Persist(ctx); err != nil {
		h.Log.WithError(err).Error("delete category")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
