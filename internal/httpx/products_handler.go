package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/adityarahman/go-shop-api/internal/shop"
)

const defaultTopSellingCount = 5

type ProductsHandler struct {
	NewUoW func() shop.UnitOfWork
	Log    *logrus.Entry
}

func (h *ProductsHandler) Register(r *chi.Mux) {
	r.Get("/products", h.list)
	r.Get("/products/bycategory/{categoryId}", h.byCategory)
	r.Get("/products/topselling", h.topSelling)
	r.Get("/products/{id}", h.get)
	r.Post("/products", h.create)
	r.Put("/products/{id}", h.update)
	r.Delete("/products/{id}", h.delete)
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	uow := h.NewUoW()
	defer uow.Close(ctx)

	products, err := uow.Products().All(ctx)
	if err != nil {
		h.Log.WithError(err).Error("list products")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if products == nil {
		products = []shop.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	uow := h.NewUoW()
	defer uow.Close(ctx)

	p, err := uow.Products().ByID(ctx, id)
	if err != nil {
		h.Log.WithError(err).Error("get product")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) byCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := parseID(r, "categoryId")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	uow := h.NewUoW()
	defer uow.Close(ctx)

	products, err := uow.Products().ByCategory(ctx, categoryID)
	if err != nil {
		h.Log.WithError(err).Error("products by category")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *ProductsHandler) topSelling(w http.ResponseWriter, r *http.Request) {
	count := defaultTopSellingCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid count")
			return
		}
		count = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	uow := h.NewUoW()
	defer uow.Close(ctx)

	products, err := uow.Products().TopSelling(ctx, count)
	if err != nil {
		h.Log.WithError(err).Error("top selling products")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	var p shop.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	p.ID = 0

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	uow := h.NewUoW()
	defer uow.Close(ctx)

	// cek kategori dan insert jalan dalam satu transaksi
	if err := uow.Begin(ctx); err != nil {
		h.Log.WithError(err).Error("create product")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	// categoryId wajib nunjuk kategori yang ada
	ok, err := uow.Categories().Exists(ctx, p.CategoryID)
	if err != nil {
		h.Log.WithError(err).Error("create product")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid CategoryId")
		return
	}

	uow.Products().Add(&p)
	if err := uow.Commit(ctx); err != nil {
		_ = uow.Rollback(ctx)
		h.Log.WithError(err).Error("create product")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var p shop.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if id != p.ID {
		writeError(w, http.StatusBadRequest, "Id mismatch")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	uow := h.NewUoW()
	defer uow.Close(ctx)

	if err := uow.Begin(ctx); err != nil {
		h.Log.WithError(err).Error("update product")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	existing, err := uow.Products().ByID(ctx, id)
	if err != nil {
		h.Log.WithError(err).Error("update product")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	ok, err = uow.Categories().Exists(ctx, p.CategoryID)
	if err != nil {
		h.Log.WithError(err).Error("update product")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid CategoryId")
		return
	}

	existing.Name = p.Name
	existing.Price = p.Price
	existing.CategoryID = p.CategoryID
	uow.Products().Update(existing)
	if err := uow.Commit(ctx); err != nil {
		_ = uow.Rollback(ctx)
		h.Log.WithError(err).Error("update product")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductsHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	uow := h.NewUoW()
	defer uow.Close(ctx)

	repo := uow.Products()
	existing, err := repo.ByID(ctx, id)
	if err != nil {
		h.Log.WithError(err).Error("delete product")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	repo.Delete(existing)
	if err := repo.Persist(ctx); err != nil {
		h.Log.WithError(err).Error("delete product")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
