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

type CustomersHandler struct {
	NewUoW func() shop.UnitOfWork
	Log    *logrus.Entry
}

func (h *CustomersHandler) Register(r *chi.Mux) {
	r.Get("/customers", h.list)
	r.Get("/customers/{id}", h.get)
	r.Post("/customers", h.create)
	r.Put("/customers/{id}", h.update)
	r.Delete("/customers/{id}", h.delete)
}

func (h *CustomersHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	uow := h.NewUoW()
	defer uow.Close(ctx)

	customers, err := uow.Customers().All(ctx)
	if err != nil {
		h.Log.WithError(err).Error("list customers")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if customers == nil {
		customers = []shop.Customer{}
	}
	writeJSON(w, http.StatusOK, customers)
}

func (h *CustomersHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	uow := h.NewUoW()
	defer uow.Close(ctx)

	c, err := uow.Customers().ByID(ctx, id)
	if err != nil {
		h.Log.WithError(err).Error("get customer")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CustomersHandler) create(w http.ResponseWriter, r *http.Request) {
	var c shop.Customer
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	c.ID = 0

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	uow := h.NewUoW()
	defer uow.Close(ctx)

	repo := uow.Customers()
	repo.Add(&c)
	if err := repo.Persist(ctx); err != nil {
		h.Log.WithError(err).Error("create customer")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CustomersHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var c shop.Customer
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

	repo := uow.Customers()
	existing, err := repo.ByID(ctx, id)
	if err != nil {
		h.Log.WithError(err).Error("update customer")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	existing.FullName = c.FullName
	existing.Email = c.Email
	repo.Update(existing)
	if err := repo.Persist(ctx); err != nil {
		h.Log.WithError(err).Error("update customer")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CustomersHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	uow := h.NewUoW()
	defer uow.Close(ctx)

	repo := uow.Customers()
	existing, err := repo.ByID(ctx, id)
	if err != nil {
		h.Log.WithError(err).Error("delete customer")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	repo.Delete(existing)
	if err := repo.Persist(ctx); err != nil {
		h.Log.WithError(err).Error("delete customer")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
