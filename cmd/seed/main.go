// seed is a one-shot tool that loads demo data for local development:
// a handful of products with opening cost lots and two cards.
//
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"log"

	"pos-backend/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	log.Println("Seeding cards...")
	_, err = tx.Exec(ctx, `
		INSERT INTO cards (name, closing_day)
		SELECT v.name, v.closing_day
		FROM (VALUES
		    ('Visa Galicia',       10),
		    ('Mastercard Santander', 22)
		) AS v(name, closing_day)
		WHERE NOT EXISTS (SELECT 1 FROM cards c WHERE c.name = v.name);
	`)
	if err != nil {
		log.Fatalf("Failed to seed cards: %v", err)
	}

	log.Println("Seeding products...")
	_, err = tx.Exec(ctx, `
		INSERT INTO products (barcode, name, category, sale_price, min_stock)
		SELECT v.barcode, v.name, v.category, v.sale_price::numeric, v.min_stock
		FROM (VALUES
		    ('7790001000019', 'Yerba Mate 1kg',    'Almacen',  4500.00, 10),
		    ('7790001000026', 'Azucar 1kg',        'Almacen',  1200.00, 15),
		    ('7790001000033', 'Aceite Girasol 1L', 'Almacen',  3800.00,  8),
		    ('7790001000040', 'Vino Malbec 750ml', 'Bebidas',  6500.00,  6),
		    ('7790001000057', 'Gaseosa Cola 2L',   'Bebidas',  2900.00, 12)
		) AS v(barcode, name, category, sale_price, min_stock)
		WHERE NOT EXISTS (SELECT 1 FROM products p WHERE p.barcode = v.barcode);
	`)
	if err != nil {
		log.Fatalf("Failed to seed products: %v", err)
	}

	log.Println("Seeding opening cost lots...")
	_, err = tx.Exec(ctx, `
		INSERT INTO cost_lots (product_id, unit_cost, original_quantity, remaining_quantity)
		SELECT p.id, v.unit_cost::numeric, v.qty, v.qty
		FROM products p
		JOIN (VALUES
		    ('7790001000019', 2800.00, 24),
		    ('7790001000026',  750.00, 30),
		    ('7790001000033', 2400.00, 18),
		    ('7790001000040', 4100.00, 12),
		    ('7790001000057', 1800.00, 36)
		) AS v(barcode, unit_cost, qty) ON v.barcode = p.barcode
		WHERE NOT EXISTS (SELECT 1 FROM cost_lots cl WHERE cl.product_id = p.id);
	`)
	if err != nil {
		log.Fatalf("Failed to seed cost lots: %v", err)
	}

	log.Println("Syncing product stock...")
	_, err = tx.Exec(ctx, `
		UPDATE products p
		SET stock = COALESCE((SELECT SUM(cl.remaining_quantity) FROM cost_lots cl WHERE cl.product_id = p.id), 0);
	`)
	if err != nil {
		log.Fatalf("Failed to sync stock: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	log.Println("Seed data loaded successfully.")
}
