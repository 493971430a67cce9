package postgres

import "github.com/adityarahman/go-shop-api/internal/shop"

func categoryMeta() meta[shop.Category] {
	return meta[shop.Category]{
		table:   "categories",
		columns: []string{"name", "description"},
		id:      func(c *shop.Category) int64 { return c.ID },
		setID:   func(c *shop.Category, id int64) { c.ID = id },
		values:  func(c *shop.Category) []any { return []any{c.Name, c.Description} },
		scan:    func(c *shop.Category) []any { return []any{&c.ID, &c.Name, &c.Description} },
	}
}

func productMeta() meta[shop.Product] {
	return meta[shop.Product]{
		table:   "products",
		columns: []string{"name", "price", "category_id"},
		id:      func(p *shop.Product) int64 { return p.ID },
		setID:   func(p *shop.Product, id int64) { p.ID = id },
		values:  func(p *shop.Product) []any { return []any{p.Name, p.Price, p.CategoryID} },
		scan:    func(p *shop.Product) []any { return []any{&p.ID, &p.Name, &p.Price, &p.CategoryID} },
	}
}

func customerMeta() meta[shop.Customer] {
	return meta[shop.Customer]{
		table:   "customers",
		columns: []string{"full_name", "email"},
		id:      func(c *shop.Customer) int64 { return c.ID },
		setID:   func(c *shop.Customer, id int64) { c.ID = id },
		values:  func(c *shop.Customer) []any { return []any{c.FullName, c.Email} },
		scan:    func(c *shop.Customer) []any { return []any{&c.ID, &c.FullName, &c.Email} },
	}
}

// Kolom order tidak memuat items; koleksi items diurus orderRepository
// (replace wholesale saat persist).
func orderMeta() meta[shop.Order] {
	return meta[shop.Order]{
		table:   "orders",
		columns: []string{"customer_id", "order_date", "order_amount"},
		id:      func(o *shop.Order) int64 { return o.ID },
		setID:   func(o *shop.Order, id int64) { o.ID = id },
		values:  func(o *shop.Order) []any { return []any{o.CustomerID, o.OrderDate, o.OrderAmount} },
		scan: func(o *shop.Order) []any {
			return []any{&o.ID, &o.CustomerID, &o.OrderDate, &o.OrderAmount}
		},
	}
}
