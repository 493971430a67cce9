package shop

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          int64  `json:"categoryId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Product struct {
	ID         int64           `json:"productId"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	CategoryID int64           `json:"categoryId"`
}

type Customer struct {
	ID       int64  `json:"customerId"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type Order struct {
	ID          int64           `json:"orderId"`
	CustomerID  int64           `json:"customerId"`
	OrderDate   time.Time       `json:"orderDate"`
	OrderAmount decimal.Decimal `json:"orderAmount"`
	Items       []OrderItem     `json:"orderItems"`
}

type OrderItem struct {
	ID        int64           `json:"orderItemId"`
	OrderID   int64           `json:"orderId"`
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Varian eager-loaded: nama relasi ikut di-fetch dalam query yang sama,
// entity polos tidak pernah bawa pointer navigasi.

type ProductDetail struct {
	Product
	CategoryName string `json:"categoryName"`
}

type OrderItemDetail struct {
	OrderItem
	ProductName string `json:"productName"`
}

type OrderDetail struct {
	Order
	CustomerName string            `json:"customerName"`
	Items        []OrderItemDetail `json:"orderItems"`
}

// AmountOf menghitung total order: sum(quantity * unit_price).
func AmountOf(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}
