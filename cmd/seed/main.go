package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/andriansp/gocommerce/config"
	"github.com/andriansp/gocommerce/pkg/helpers"
)

type seedProduct struct {
	name        string
	description string
	price       float64
	stock       int
	category    string
	image       string
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "demo@gocommerce.local"
	username := "demouser"
	password := "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var userID string
	err = db.QueryRow(`
		INSERT INTO users (email, username, first_name, last_name, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET username = EXCLUDED.username
		RETURNING id
	`, email, username, "Demo", "User", hash).Scan(&userID)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	if _, err := db.Exec(`
		INSERT INTO user_profiles (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`, userID); err != nil {
		log.Fatalf("failed to seed profile: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", userID, email, password)

	categories := map[string]string{
		"Electronics": "Gadgets, computers and accessories",
		"Books":       "Paperbacks, hardcovers and e-readers",
		"Home":        "Kitchen, furniture and decor",
	}
	categoryIDs := make(map[string]string, len(categories))
	for name, desc := range categories {
		var id string
		if err := db.QueryRow(`
			INSERT INTO categories (name, description)
			VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description
			RETURNING id
		`, name, desc).Scan(&id); err != nil {
			log.Fatalf("failed to upsert category %s: %v", name, err)
		}
		categoryIDs[name] = id
	}
	fmt.Printf("categories ensured: %d\n", len(categoryIDs))

	products := []seedProduct{
		{"Wireless Headphones", "Over-ear Bluetooth headphones with noise cancelling", 129.99, 42, "Electronics", ""},
		{"Mechanical Keyboard", "Tenkeyless board with hot-swappable switches", 89.50, 15, "Electronics", ""},
		{"USB-C Charger 65W", "GaN wall charger with two ports", 34.00, 3, "Electronics", ""},
		{"The Go Programming Language", "The definitive Go reference by Donovan and Kernighan", 39.95, 58, "Books", ""},
		{"Designing Data-Intensive Applications", "Ideas behind reliable, scalable systems", 44.99, 0, "Books", ""},
		{"Cast Iron Skillet", "Pre-seasoned 12 inch skillet", 29.99, 24, "Home", ""},
		{"French Press", "8-cup borosilicate glass coffee press", 24.50, 12, "Home", ""},
	}
	for _, p := range products {
		if _, err := db.Exec(`
			INSERT INTO products (name, description, price, stock_quantity, category_id, image_url)
			SELECT $1, $2, $3, $4, $5, $6
			WHERE NOT EXISTS (SELECT 1 FROM products WHERE name = $1)
		`, p.name, p.description, p.price, p.stock, categoryIDs[p.category], p.image); err != nil {
			log.Fatalf("failed to seed product %s: %v", p.name, err)
		}
	}
	fmt.Printf("products ensured: %d\n", len(products))
}
