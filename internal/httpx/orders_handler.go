package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	kafkax "github.com/adityarahman/go-shop-api/internal/kafka"
	"github.com/adityarahman/go-shop-api/internal/shop"
)

type OrderItemReq struct {
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

type OrderReq struct {
	OrderID    int64          `json:"orderId"`
	CustomerID int64          `json:"customerId"`
	OrderDate  time.Time      `json:"orderDate"`
	OrderItems []OrderItemReq `json:"orderItems"`
}

type OrdersHandler struct {
	NewUoW   func() shop.UnitOfWork
	Producer *kafkax.Producer // boleh nil: publish di-skip
	Service  string
	Log      *logrus.Entry
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Get("/orders", h.list)
	r.Get("/orders/bycustomer/{customerId}", h.byCustomer)
	r.Get("/orders/bydaterange", h.byDateRange)
	r.Get("/orders/{id}", h.get)
	r.Post("/orders", h.create)
	r.Put("/orders/{id}", h.update)
	r.Delete("/orders/{id}", h.delete)
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	uow := h.NewUoW()
	defer uow.Close(ctx)

	orders, err := uow.Orders().AllDetail(ctx)
	if err != nil {
		h.Log.WithError(err).Error("list orders")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	uow := h.NewUoW()
	defer uow.Close(ctx)

	o, err := uow.Orders().ByIDDetail(ctx, id)
	if err != nil {
		h.Log.WithError(err).Error("get order")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if o == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) byCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, ok := parseID(r, "customerId")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	uow := h.NewUoW()
	defer uow.Close(ctx)

	orders, err := uow.Orders().ByCustomer(ctx, customerID)
	if err != nil {
		h.Log.WithError(err).Error("orders by customer")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *OrdersHandler) byDateRange(w http.ResponseWriter, r *http.Request) {
	start, ok := parseDate(r.URL.Query().Get("startDate"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid startDate")
		return
	}
	end, ok := parseDate(r.URL.Query().Get("endDate"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid endDate")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	uow := h.NewUoW()
	defer uow.Close(ctx)

	orders, err := uow.Orders().ByDateRange(ctx, start, end)
	if err != nil {
		h.Log.WithError(err).Error("orders by date range")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// create: validasi referensi dulu (sebelum buka transaksi), hitung amount di
// server, lalu order + seluruh items di-persist dalam satu transaksi.
// Gagal di tengah -> rollback, tidak ada order setengah jadi.
func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	var req OrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	uow := h.NewUoW()
	defer uow.Close(ctx)

	if !h.validateRefs(ctx, w, uow, &req) {
		return
	}

	order := &shop.Order{
		CustomerID: req.CustomerID,
		OrderDate:  time.Now().UTC(), // orderDate dari body diabaikan saat create
		Items:      itemsOf(req.OrderItems),
	}
	order.OrderAmount = shop.AmountOf(order.Items)

	if err := uow.Begin(ctx); err != nil {
		h.Log.WithError(err).Error("create order")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	uow.Orders().Add(order)
	if err := uow.Commit(ctx); err != nil {
		_ = uow.Rollback(ctx)
		h.Log.WithError(err).Error("create order")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.publish(r, shop.EventOrderCreated, order)
	h.Log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"amount":   order.OrderAmount,
	}).Info("order created")
	writeJSON(w, http.StatusOK, orderResponse(order))
}

// update: replace wholesale — items lama dibuang, yang baru dibangun dari
// body tanpa reuse id, amount dihitung ulang. Transaksi + rollback sama
// seperti create.
func (h *OrdersHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req OrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if id != req.OrderID {
		writeError(w, http.StatusBadRequest, "Id mismatch")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	uow := h.NewUoW()
	defer uow.Close(ctx)

	existing, err := uow.Orders().ByID(ctx, id)
	if err != nil {
		h.Log.WithError(err).Error("update order")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if !h.validateRefs(ctx, w, uow, &req) {
		return
	}

	existing.CustomerID = req.CustomerID
	existing.OrderDate = req.OrderDate
	existing.Items = itemsOf(req.OrderItems)
	existing.OrderAmount = shop.AmountOf(existing.Items)

	if err := uow.Begin(ctx); err != nil {
		h.Log.WithError(err).Error("update order")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	uow.Orders().Update(existing)
	if err := uow.Commit(ctx); err != nil {
		_ = uow.Rollback(ctx)
		h.Log.WithError(err).Error("update order")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.publish(r, shop.EventOrderUpdated, existing)
	w.WriteHeader(http.StatusNoContent)
}

func (h *OrdersHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	uow := h.NewUoW()
	defer uow.Close(ctx)

	existing, err := uow.Orders().ByID(ctx, id)
	if err != nil {
		h.Log.WithError(err).Error("delete order")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if err := uow.Begin(ctx); err != nil {
		h.Log.WithError(err).Error("delete order")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	uow.Orders().Delete(existing)
	if err := uow.Commit(ctx); err != nil {
		_ = uow.Rollback(ctx)
		h.Log.WithError(err).Error("delete order")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.publish(r, shop.EventOrderDeleted, existing)
	w.WriteHeader(http.StatusNoContent)
}

// validateRefs cek customerId + semua productId. Semua item divalidasi urut
// input; yang pertama gagal yang dilaporkan. Balikan false berarti response
// sudah ditulis.
func (h *OrdersHandler) validateRefs(ctx context.Context, w http.ResponseWriter, uow shop.UnitOfWork, req *OrderReq) bool {
	ok, err := uow.Customers().Exists(ctx, req.CustomerID)
	if err != nil {
		h.Log.WithError(err).Error("validate order")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return false
	}
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid CustomerId")
		return false
	}
	for _, it := range req.OrderItems {
		ok, err := uow.Products().Exists(ctx, it.ProductID)
		if err != nil {
			h.Log.WithError(err).Error("validate order")
			writeError(w, http.StatusInternalServerError, "internal server error")
			return false
		}
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid ProductId: %d", it.ProductID))
			return false
		}
	}
	return true
}

func (h *OrdersHandler) publish(r *http.Request, eventType string, o *shop.Order) {
	if h.Producer == nil {
		return
	}
	ev := shop.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       middleware.GetReqID(r.Context()),
		CorrelationID: strconv.FormatInt(o.ID, 10),
	}
	ev.Payload = kafkax.MustMarshal(shop.OrderEventPayload{
		OrderID:     o.ID,
		CustomerID:  o.CustomerID,
		OrderAmount: o.OrderAmount,
		Items:       shop.EventItemsOf(o.Items),
	})
	h.Producer.PublishEnvelope(shop.PartitionKey(o.ID), ev)
}

func itemsOf(reqs []OrderItemReq) []shop.OrderItem {
	items := make([]shop.OrderItem, 0, len(reqs))
	for _, it := range reqs {
		items = append(items, shop.OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return items
}

func orderResponse(o *shop.Order) shop.OrderDetail {
	d := shop.OrderDetail{Order: *o, Items: make([]shop.OrderItemDetail, 0, len(o.Items))}
	for _, it := range o.Items {
		d.Items = append(d.Items, shop.OrderItemDetail{OrderItem: it})
	}
	return d
}

func parseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}
