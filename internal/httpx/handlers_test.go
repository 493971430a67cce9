package httpx_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/adityarahman/go-shop-api/internal/httpx"
	"github.com/adityarahman/go-shop-api/internal/shop"
	"github.com/adityarahman/go-shop-api/internal/storage/memory"
)

func TestMain(m *testing.M) {
	// sama seperti di main: angka JSON polos untuk harga/amount
	decimal.MarshalJSONWithoutQuotes = true
	os.Exit(m.Run())
}

func newTestServer(t *testing.T) (*chi.Mux, *memory.Store) {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	log := logrus.NewEntry(logger)

	st := memory.NewStore()
	newUoW := func() shop.UnitOfWork { return memory.NewUnitOfWork(st) }

	r := httpx.NewRouter(log, nil)
	(&httpx.CategoriesHandler{NewUoW: newUoW, Log: log}).Register(r)
	(&httpx.ProductsHandler{NewUoW: newUoW, Log: log}).Register(r)
	(&httpx.CustomersHandler{NewUoW: newUoW, Log: log}).Register(r)
	(&httpx.OrdersHandler{NewUoW: newUoW, Service: "shop-api-test", Log: log}).Register(r)
	return r, st
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

func errBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, w)["error"]
}

// seed kategori + produk + customer langsung lewat store
func seed(t *testing.T, st *memory.Store) (cat shop.Category, mouse, pen shop.Product, cust shop.Customer) {
	t.Helper()
	ctx := context.Background()
	uow := memory.NewUnitOfWork(st)

	c := &shop.Category{Name: "Electronics", Description: "Gadgets"}
	uow.Categories().Add(c)
	require.NoError(t, uow.Categories().Persist(ctx))

	m := &shop.Product{Name: "Mouse", Price: decimal.RequireFromString("4.99"), CategoryID: c.ID}
	p := &shop.Product{Name: "Pen", Price: decimal.RequireFromString("10.00"), CategoryID: c.ID}
	uow.Products().Add(m)
	uow.Products().Add(p)
	require.NoError(t, uow.Products().Persist(ctx))

	cu := &shop.Customer{FullName: "Budi Santoso", Email: "budi@example.com"}
	uow.Customers().Add(cu)
	require.NoError(t, uow.Customers().Persist(ctx))

	return *c, *m, *p, *cu
}

func TestHealthz(t *testing.T) {
	r, _ := newTestServer(t)
	w := do(t, r, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", w.Body.String())
}

func TestCategoryCRUD(t *testing.T) {
	r, _ := newTestServer(t)

	w := do(t, r, http.MethodPost, "/categories", shop.Category{Name: "Books", Description: "Reading"})
	require.Equal(t, http.StatusOK, w.Code)
	created := decode[shop.Category](t, w)
	require.Equal(t, int64(1), created.ID)

	w = do(t, r, http.MethodGet, "/categories/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Books", decode[shop.Category](t, w).Name)

	created.Name = "Paper Books"
	w = do(t, r, http.MethodPut, "/categories/1", created)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodGet, "/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]shop.Category](t, w)
	require.Len(t, list, 1)
	require.Equal(t, "Paper Books", list[0].Name)

	w = do(t, r, http.MethodDelete, "/categories/1", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodGet, "/categories/1", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "not found", errBody(t, w))
}

func TestCategoryUpdateIdMismatch(t *testing.T) {
	r, _ := newTestServer(t)
	w := do(t, r, http.MethodPut, "/categories/3", shop.Category{ID: 4, Name: "x"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Id mismatch", errBody(t, w))
}

func TestProductCreateInvalidCategory(t *testing.T) {
	r, _ := newTestServer(t)
	w := do(t, r, http.MethodPost, "/products", shop.Product{Name: "Ghost", Price: decimal.RequireFromString("1.00"), CategoryID: 99})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Invalid CategoryId", errBody(t, w))
}

func TestProductCreateStoreFailure(t *testing.T) {
	r, st := newTestServer(t)
	cat, _, _, _ := seed(t, st)

	st.FailNextPersist(errors.New("disk on fire"))

	w := do(t, r, http.MethodPost, "/products", shop.Product{Name: "Ghost", Price: decimal.RequireFromString("1.00"), CategoryID: cat.ID})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, "internal server error", errBody(t, w))

	// gagal persist = tidak ada produk baru
	w = do(t, r, http.MethodGet, "/products", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode[[]shop.Product](t, w), 2)
}

func TestProductByCategoryAndTopSelling(t *testing.T) {
	r, st := newTestServer(t)
	cat, mouse, pen, cust := seed(t, st)

	w := do(t, r, http.MethodGet, "/products/bycategory/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]shop.ProductDetail](t, w)
	require.Len(t, list, 2)
	require.Equal(t, cat.Name, list[0].CategoryName)

	// order bikin pen jadi terlaris
	order := httpx.OrderReq{
		CustomerID: cust.ID,
		OrderItems: []httpx.OrderItemReq{
			{ProductID: pen.ID, Quantity: 8, UnitPrice: pen.Price},
			{ProductID: mouse.ID, Quantity: 1, UnitPrice: mouse.Price},
		},
	}
	w = do(t, r, http.MethodPost, "/orders", order)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/products/topselling?count=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	top := decode[[]shop.ProductDetail](t, w)
	require.Len(t, top, 1)
	require.Equal(t, pen.ID, top[0].ID)

	w = do(t, r, http.MethodGet, "/products/topselling?count=abc", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderCreate(t *testing.T) {
	r, st := newTestServer(t)
	_, mouse, pen, cust := seed(t, st)

	req := httpx.OrderReq{
		CustomerID: cust.ID,
		OrderItems: []httpx.OrderItemReq{
			{ProductID: mouse.ID, Quantity: 2, UnitPrice: decimal.RequireFromString("4.99")},
			{ProductID: pen.ID, Quantity: 1, UnitPrice: decimal.RequireFromString("10.00")},
		},
	}
	w := do(t, r, http.MethodPost, "/orders", req)
	require.Equal(t, http.StatusOK, w.Code)

	created := decode[shop.OrderDetail](t, w)
	require.Equal(t, int64(1), created.ID)
	require.True(t, created.OrderAmount.Equal(decimal.RequireFromString("19.98")))
	require.Len(t, created.Items, 2)
	require.NotZero(t, created.Items[0].ID)

	// GET balikin detail lengkap dengan nama customer & product
	w = do(t, r, http.MethodGet, "/orders/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[shop.OrderDetail](t, w)
	require.Equal(t, "Budi Santoso", got.CustomerName)
	require.Equal(t, "Mouse", got.Items[0].ProductName)
}

func TestOrderCreateInvalidCustomer(t *testing.T) {
	r, st := newTestServer(t)
	_, mouse, _, _ := seed(t, st)

	req := httpx.OrderReq{
		CustomerID: 999,
		OrderItems: []httpx.OrderItemReq{{ProductID: mouse.ID, Quantity: 1, UnitPrice: mouse.Price}},
	}
	w := do(t, r, http.MethodPost, "/orders", req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Invalid CustomerId", errBody(t, w))

	// tidak ada order setengah jadi
	w = do(t, r, http.MethodGet, "/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, decode[[]shop.OrderDetail](t, w))
}

func TestOrderCreateInvalidProduct(t *testing.T) {
	r, st := newTestServer(t)
	_, mouse, _, cust := seed(t, st)

	req := httpx.OrderReq{
		CustomerID: cust.ID,
		OrderItems: []httpx.OrderItemReq{
			{ProductID: mouse.ID, Quantity: 1, UnitPrice: mouse.Price},
			{ProductID: 42, Quantity: 1, UnitPrice: decimal.RequireFromString("1.00")},
		},
	}
	w := do(t, r, http.MethodPost, "/orders", req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Invalid ProductId: 42", errBody(t, w))
}

func TestOrderUpdateReplacesItems(t *testing.T) {
	r, st := newTestServer(t)
	_, mouse, pen, cust := seed(t, st)

	create := httpx.OrderReq{
		CustomerID: cust.ID,
		OrderItems: []httpx.OrderItemReq{{ProductID: mouse.ID, Quantity: 2, UnitPrice: mouse.Price}},
	}
	w := do(t, r, http.MethodPost, "/orders", create)
	require.Equal(t, http.StatusOK, w.Code)
	created := decode[shop.OrderDetail](t, w)
	oldItemID := created.Items[0].ID

	update := httpx.OrderReq{
		OrderID:    created.ID,
		CustomerID: cust.ID,
		OrderDate:  time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		OrderItems: []httpx.OrderItemReq{{ProductID: pen.ID, Quantity: 3, UnitPrice: pen.Price}},
	}
	w = do(t, r, http.MethodPut, "/orders/1", update)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodGet, "/orders/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[shop.OrderDetail](t, w)
	require.Len(t, got.Items, 1)
	require.Equal(t, pen.ID, got.Items[0].ProductID)
	require.NotEqual(t, oldItemID, got.Items[0].ID)
	require.True(t, got.OrderAmount.Equal(decimal.RequireFromString("30.00")))
	require.True(t, got.OrderDate.Equal(update.OrderDate))

	w = do(t, r, http.MethodPut, "/orders/2", httpx.OrderReq{OrderID: 1})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Id mismatch", errBody(t, w))
}

func TestOrderDelete(t *testing.T) {
	r, st := newTestServer(t)
	_, mouse, _, cust := seed(t, st)

	create := httpx.OrderReq{
		CustomerID: cust.ID,
		OrderItems: []httpx.OrderItemReq{{ProductID: mouse.ID, Quantity: 1, UnitPrice: mouse.Price}},
	}
	w := do(t, r, http.MethodPost, "/orders", create)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodDelete, "/orders/1", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodGet, "/orders/1", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodDelete, "/orders/1", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderByCustomerAndDateRange(t *testing.T) {
	r, st := newTestServer(t)
	_, mouse, _, cust := seed(t, st)

	create := httpx.OrderReq{
		CustomerID: cust.ID,
		OrderItems: []httpx.OrderItemReq{{ProductID: mouse.ID, Quantity: 1, UnitPrice: mouse.Price}},
	}
	w := do(t, r, http.MethodPost, "/orders", create)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/orders/bycustomer/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode[[]shop.OrderDetail](t, w), 1)

	w = do(t, r, http.MethodGet, "/orders/bycustomer/99", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, decode[[]shop.OrderDetail](t, w))

	today := time.Now().UTC().Format("2006-01-02")
	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")
	w = do(t, r, http.MethodGet, "/orders/bydaterange?startDate="+today+"&endDate="+tomorrow, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode[[]shop.OrderDetail](t, w), 1)

	w = do(t, r, http.MethodGet, "/orders/bydaterange?startDate="+today, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "invalid endDate", errBody(t, w))
}

func TestOrderCreateStoreFailure(t *testing.T) {
	r, st := newTestServer(t)
	_, mouse, _, cust := seed(t, st)

	st.FailNextPersist(errors.New("disk on fire"))

	create := httpx.OrderReq{
		CustomerID: cust.ID,
		OrderItems: []httpx.OrderItemReq{{ProductID: mouse.ID, Quantity: 1, UnitPrice: mouse.Price}},
	}
	w := do(t, r, http.MethodPost, "/orders", create)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, "internal server error", errBody(t, w))

	w = do(t, r, http.MethodGet, "/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, decode[[]shop.OrderDetail](t, w))
}

func TestCustomerCRUD(t *testing.T) {
	r, _ := newTestServer(t)

	w := do(t, r, http.MethodPost, "/customers", shop.Customer{FullName: "Siti Rahma", Email: "siti@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	created := decode[shop.Customer](t, w)
	require.Equal(t, int64(1), created.ID)

	created.Email = "siti.rahma@example.com"
	w = do(t, r, http.MethodPut, "/customers/1", created)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodGet, "/customers/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "siti.rahma@example.com", decode[shop.Customer](t, w).Email)
}
