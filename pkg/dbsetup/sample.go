// pkg/dbsetup/sample.go

package dbsetup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

type sampleProduct struct {
	name       string
	categoryID int
	price      float64
	cost       float64
	stock      int
}

var sampleCategories = []struct{ name, description string }{
	{"Electronics", "Electronic devices and accessories"},
	{"Clothing", "Apparel and fashion items"},
	{"Books", "Books and educational materials"},
	{"Home & Kitchen", "Home appliances and kitchen items"},
	{"Sports", "Sports equipment and accessories"},
}

var sampleProducts = []sampleProduct{
	{"Laptop Dell XPS 15", 1, 125000, 95000, 50},
	{"iPhone 15 Pro", 1, 134900, 110000, 30},
	{"Samsung Galaxy S24", 1, 89999, 70000, 40},
	{"Sony Headphones WH-1000XM5", 1, 29990, 22000, 100},
	{"Apple Watch Series 9", 1, 45900, 35000, 60},
	{"Men Formal Shirt", 2, 1499, 800, 200},
	{"Women Ethnic Dress", 2, 2999, 1500, 150},
	{"Jeans Levis 501", 2, 3999, 2200, 180},
	{"Running Shoes Nike", 2, 5999, 3500, 120},
	{"Winter Jacket", 2, 4999, 2800, 90},
	{"Python Programming Book", 3, 599, 350, 300},
	{"Data Science Handbook", 3, 899, 500, 250},
	{"Fiction Novel", 3, 399, 200, 400},
	{"Microwave Oven", 4, 8999, 6500, 40},
	{"Air Fryer", 4, 5999, 4200, 70},
	{"Pressure Cooker", 4, 2499, 1500, 100},
	{"Mixer Grinder", 4, 3999, 2500, 80},
	{"Cricket Bat", 5, 2999, 1800, 60},
	{"Football", 5, 1299, 700, 150},
	{"Yoga Mat", 5, 799, 400, 200},
}

var (
	sampleFirstNames = []string{"Mayurkumar", "Rahul", "Priya", "Amit", "Sneha", "Rohan", "Neha", "Vikram", "Anjali", "Karan"}
	sampleLastNames  = []string{"Surani", "Sharma", "Patel", "Kumar", "Desai", "Mehta", "Singh", "Gupta", "Reddy", "Joshi"}
	sampleCities     = []string{"Pune", "Mumbai", "Bangalore", "Delhi", "Hyderabad", "Chennai", "Kolkata", "Ahmedabad"}
	sampleStates     = []string{"Maharashtra", "Maharashtra", "Karnataka", "Delhi", "Telangana", "Tamil Nadu", "West Bengal", "Gujarat"}
	sampleSegments   = []string{"Premium", "Gold", "Silver", "Bronze"}
	paymentMethods   = []string{"Credit Card", "Debit Card", "UPI", "Cash on Delivery", "Net Banking"}
	orderStatuses    = []string{"Delivered", "Shipped", "Processing", "Cancelled"}
	discountOptions  = []float64{0, 5, 10, 15, 20}
)

const sampleCustomerCount = 100

// InsertSampleData loads the deterministic sample dataset: categories,
// products, customers and per-customer orders with line items.
func (s *Setup) InsertSampleData(ctx context.Context) error {
	if err := s.insertCategories(ctx); err != nil {
		return err
	}
	if err := s.insertProducts(ctx); err != nil {
		return err
	}

	cities, states, err := s.insertCustomers(ctx)
	if err != nil {
		return err
	}

	return s.insertOrders(ctx, cities, states)
}

func (s *Setup) insertCategories(ctx context.Context) error {
	stmt := fmt.Sprintf(
		"INSERT INTO categories (category_name, description) VALUES (%s)",
		placeholders(s.dialect, 2))

	for _, cat := range sampleCategories {
		if _, err := s.conn.ExecWithTimeout(ctx, stmt, execTimeout, cat.name, cat.description); err != nil {
			return fmt.Errorf("inserting category %s: %w", cat.name, err)
		}
	}

	s.logger.Info("inserted categories", zap.Int("count", len(sampleCategories)))
	return nil
}

func (s *Setup) insertProducts(ctx context.Context) error {
	stmt := fmt.Sprintf(
		"INSERT INTO products (product_name, category_id, price, cost, stock_quantity) VALUES (%s)",
		placeholders(s.dialect, 5))

	for _, p := range sampleProducts {
		if _, err := s.conn.ExecWithTimeout(ctx, stmt, execTimeout,
			p.name, p.categoryID, p.price, p.cost, p.stock); err != nil {
			return fmt.Errorf("inserting product %s: %w", p.name, err)
		}
	}

	s.logger.Info("inserted products", zap.Int("count", len(sampleProducts)))
	return nil
}

// insertCustomers returns each customer's city and state, indexed by
// customer position, so orders can reuse them as shipping addresses.
func (s *Setup) insertCustomers(ctx context.Context) (cities, states []string, err error) {
	stmt := fmt.Sprintf(
		`INSERT INTO customers
			(first_name, last_name, email, phone, city, state, registration_date, customer_segment)
		 VALUES (%s)`,
		placeholders(s.dialect, 8))

	today := time.Now().UTC().Truncate(24 * time.Hour)
	cities = make([]string, sampleCustomerCount)
	states = make([]string, sampleCustomerCount)

	for i := 0; i < sampleCustomerCount; i++ {
		firstName := sampleFirstNames[s.rng.Intn(len(sampleFirstNames))]
		lastName := sampleLastNames[s.rng.Intn(len(sampleLastNames))]
		email := fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(firstName), strings.ToLower(lastName), i)
		phone := fmt.Sprintf("98765%05d", 10000+s.rng.Intn(90000))
		cityIdx := s.rng.Intn(len(sampleCities))
		regDate := today.AddDate(0, 0, -(30 + s.rng.Intn(700)))
		segment := sampleSegments[s.rng.Intn(len(sampleSegments))]

		cities[i] = sampleCities[cityIdx]
		states[i] = sampleStates[cityIdx]

		if _, err := s.conn.ExecWithTimeout(ctx, stmt, execTimeout,
			firstName, lastName, email, phone, cities[i], states[i],
			regDate.Format("2006-01-02"), segment); err != nil {
			return nil, nil, fmt.Errorf("inserting customer %d: %w", i+1, err)
		}
	}

	s.logger.Info("inserted customers", zap.Int("count", sampleCustomerCount))
	return cities, states, nil
}

func (s *Setup) insertOrders(ctx context.Context, cities, states []string) error {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	orderCount := 0
	itemCount := 0

	for customerID := 1; customerID <= sampleCustomerCount; customerID++ {
		numOrders := 1 + s.rng.Intn(5)
		for o := 0; o < numOrders; o++ {
			orderDate := today.AddDate(0, 0, -(1 + s.rng.Intn(365)))
			orderID, err := s.insertOrder(ctx,
				customerID,
				orderDate.Format("2006-01-02"),
				orderStatuses[s.rng.Intn(len(orderStatuses))],
				paymentMethods[s.rng.Intn(len(paymentMethods))],
				cities[customerID-1],
				states[customerID-1])
			if err != nil {
				return err
			}
			orderCount++

			numItems := 1 + s.rng.Intn(4)
			orderTotal := 0.0
			for it := 0; it < numItems; it++ {
				product := s.rng.Intn(len(sampleProducts))
				quantity := 1 + s.rng.Intn(3)
				discount := discountOptions[s.rng.Intn(len(discountOptions))]
				lineTotal := sampleProducts[product].price * float64(quantity) * (1 - discount/100)
				orderTotal += lineTotal

				itemStmt := fmt.Sprintf(
					`INSERT INTO order_items
						(order_id, product_id, quantity, unit_price, discount_percent, line_total)
					 VALUES (%s)`,
					placeholders(s.dialect, 6))
				if _, err := s.conn.ExecWithTimeout(ctx, itemStmt, execTimeout,
					orderID, product+1, quantity, sampleProducts[product].price,
					discount, lineTotal); err != nil {
					return fmt.Errorf("inserting item for order %d: %w", orderID, err)
				}
				itemCount++
			}

			updateStmt := "UPDATE orders SET total_amount = $1 WHERE order_id = $2"
			if s.dialect == DialectSQLite {
				updateStmt = "UPDATE orders SET total_amount = ? WHERE order_id = ?"
			}
			if _, err := s.conn.ExecWithTimeout(ctx, updateStmt, execTimeout, orderTotal, orderID); err != nil {
				return fmt.Errorf("updating total for order %d: %w", orderID, err)
			}
		}
	}

	s.logger.Info("inserted orders",
		zap.Int("orders", orderCount),
		zap.Int("order_items", itemCount))
	return nil
}

// insertOrder returns the generated order_id. Postgres hands it back via
// RETURNING; SQLite via the statement result.
func (s *Setup) insertOrder(ctx context.Context, customerID int, orderDate, status, payment, city, state string) (int64, error) {
	columns := "(customer_id, order_date, order_status, payment_method, shipping_city, shipping_state)"
	args := []interface{}{customerID, orderDate, status, payment, city, state}

	if s.dialect == DialectPostgres {
		stmt := fmt.Sprintf("INSERT INTO orders %s VALUES (%s) RETURNING order_id",
			columns, placeholders(s.dialect, len(args)))
		rows, err := s.conn.QueryWithTimeout(ctx, stmt, execTimeout, args...)
		if err != nil {
			return 0, fmt.Errorf("inserting order: %w", err)
		}
		defer rows.Close()

		var orderID int64
		if !rows.Next() {
			return 0, fmt.Errorf("inserting order: no order_id returned")
		}
		if err := rows.Scan(&orderID); err != nil {
			return 0, fmt.Errorf("scanning order_id: %w", err)
		}
		return orderID, rows.Err()
	}

	stmt := fmt.Sprintf("INSERT INTO orders %s VALUES (%s)",
		columns, placeholders(s.dialect, len(args)))
	result, err := s.conn.ExecWithTimeout(ctx, stmt, execTimeout, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting order: %w", err)
	}
	orderID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading order_id: %w", err)
	}
	return orderID, nil
}
