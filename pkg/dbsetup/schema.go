// pkg/dbsetup/schema.go

package dbsetup

// tableDef pairs a table name with its CREATE statement.
type tableDef struct {
	name string
	sql  string
}

// tableDDL returns the sample schema in dependency order for the dialect.
// Postgres uses SERIAL keys; SQLite uses INTEGER PRIMARY KEY, which
// autoincrements implicitly.
func tableDDL(dialect string) []tableDef {
	serial := "INTEGER PRIMARY KEY"
	now := "CURRENT_TIMESTAMP"
	if dialect == DialectPostgres {
		serial = "SERIAL PRIMARY KEY"
	}

	return []tableDef{
		{"categories", `
			CREATE TABLE categories (
				category_id ` + serial + `,
				category_name VARCHAR(100) NOT NULL,
				description TEXT,
				created_at TIMESTAMP DEFAULT ` + now + `
			)`},
		{"customers", `
			CREATE TABLE customers (
				customer_id ` + serial + `,
				first_name VARCHAR(50) NOT NULL,
				last_name VARCHAR(50) NOT NULL,
				email VARCHAR(100) UNIQUE NOT NULL,
				phone VARCHAR(20),
				city VARCHAR(50),
				state VARCHAR(50),
				country VARCHAR(50) DEFAULT 'India',
				registration_date DATE,
				customer_segment VARCHAR(20),
				created_at TIMESTAMP DEFAULT ` + now + `
			)`},
		{"products", `
			CREATE TABLE products (
				product_id ` + serial + `,
				product_name VARCHAR(200) NOT NULL,
				category_id INTEGER REFERENCES categories(category_id),
				price DECIMAL(10, 2) NOT NULL,
				cost DECIMAL(10, 2) NOT NULL,
				stock_quantity INTEGER DEFAULT 0,
				is_active BOOLEAN DEFAULT TRUE,
				created_at TIMESTAMP DEFAULT ` + now + `
			)`},
		{"orders", `
			CREATE TABLE orders (
				order_id ` + serial + `,
				customer_id INTEGER REFERENCES customers(customer_id),
				order_date DATE NOT NULL,
				order_status VARCHAR(20) NOT NULL,
				payment_method VARCHAR(50),
				shipping_city VARCHAR(50),
				shipping_state VARCHAR(50),
				total_amount DECIMAL(10, 2),
				created_at TIMESTAMP DEFAULT ` + now + `
			)`},
		{"order_items", `
			CREATE TABLE order_items (
				order_item_id ` + serial + `,
				order_id INTEGER REFERENCES orders(order_id),
				product_id INTEGER REFERENCES products(product_id),
				quantity INTEGER NOT NULL,
				unit_price DECIMAL(10, 2) NOT NULL,
				discount_percent DECIMAL(5, 2) DEFAULT 0,
				line_total DECIMAL(10, 2),
				created_at TIMESTAMP DEFAULT ` + now + `
			)`},
	}
}
