package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// InsufficientStockError is returned when an allocation request exceeds the
// product's summed remaining lot quantity. It is a validation failure for
// the caller, not a storage fault, and is never retried automatically.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// StockService manages cost lots and the denormalized per-product stock.
// All mutations run inside a single database transaction with the product
// row locked, so concurrent calls against the same product serialize
// instead of racing on lot reads.
type StockService interface {
	// Master data
	CreateProduct(ctx context.Context, barcode *string, name, category string, salePrice decimal.Decimal, minStock int) (*Product, error)
	GetProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (*Product, error)

	// AllocateStock consumes qty units from the product's open lots,
	// most-recent lot first (highest unit cost on created_at ties).
	// The whole consume loop commits atomically or not at all.
	AllocateStock(ctx context.Context, productID uuid.UUID, qty int) error
	// AllocateStockTx is the TX-scoped variant used by transaction
	// registration to keep the allocation atomic with the payment batch.
	AllocateStockTx(ctx context.Context, tx pgx.Tx, productID uuid.UUID, qty int, referenceID *uuid.UUID) error

	// ReplenishStock creates one new cost lot of qty units at unitCost and
	// returns the lot's ID. The cost-history append after commit is
	// best-effort: a failure is logged, never returned.
	ReplenishStock(ctx context.Context, productID uuid.UUID, qty int, unitCost decimal.Decimal) (uuid.UUID, error)
	ReplenishStockTx(ctx context.Context, tx pgx.Tx, productID uuid.UUID, qty int, unitCost decimal.Decimal, referenceID *uuid.UUID) (uuid.UUID, error)

	// Queries
	GetLots(ctx context.Context, productID uuid.UUID) ([]CostLot, error)
	GetStockLevels(ctx context.Context) ([]StockLevel, error)
}

type stockService struct {
	pool    *pgxpool.Pool
	ranking LotRanking
}

// NewStockService constructs a StockService with the given consumption
// ranking. Pass nil to use RankLIFOHighestCost.
func NewStockService(pool *pgxpool.Pool, ranking LotRanking) StockService {
	if ranking == nil {
		ranking = RankLIFOHighestCost
	}
	return &stockService{pool: pool, ranking: ranking}
}

// ── Master data ───────────────────────────────────────────────────────────────

func (s *stockService) CreateProduct(ctx context.Context, barcode *string, name, category string, salePrice decimal.Decimal, minStock int) (*Product, error) {
	if name == "" {
		return nil, fmt.Errorf("product name is required")
	}
	if minStock <= 0 {
		minStock = 5
	}

	var p Product
	err := s.pool.QueryRow(ctx, `
		INSERT INTO products (barcode, name, category, sale_price, min_stock)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, barcode, name, category, sale_price, stock, min_stock, is_active, created_at
	`, barcode, name, category, salePrice, minStock).Scan(
		&p.ID, &p.Barcode, &p.Name, &p.Category, &p.SalePrice, &p.Stock, &p.MinStock, &p.IsActive, &p.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &p, nil
}

func (s *stockService) GetProducts(ctx context.Context) ([]Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, barcode, name, category, sale_price, stock, min_stock, is_active, created_at
		FROM products
		WHERE is_active = true
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Barcode, &p.Name, &p.Category, &p.SalePrice,
			&p.Stock, &p.MinStock, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, nil
}

func (s *stockService) GetProduct(ctx context.Context, productID uuid.UUID) (*Product, error) {
	var p Product
	err := s.pool.QueryRow(ctx, `
		SELECT id, barcode, name, category, sale_price, stock, min_stock, is_active, created_at
		FROM products WHERE id = $1
	`, productID).Scan(
		&p.ID, &p.Barcode, &p.Name, &p.Category, &p.SalePrice, &p.Stock, &p.MinStock, &p.IsActive, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %s not found", productID)
		}
		return nil, fmt.Errorf("failed to fetch product %s: %w", productID, err)
	}
	return &p, nil
}

// ── Allocation ────────────────────────────────────────────────────────────────

func (s *stockService) AllocateStock(ctx context.Context, productID uuid.UUID, qty int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.AllocateStockTx(ctx, tx, productID, qty, nil); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit allocation: %w", err)
	}
	return nil
}

// AllocateStockTx drains open lots in ranking order until qty is satisfied,
// writing one SALE movement per consumed lot and resyncing the product's
// aggregate stock. On insufficient supply it returns InsufficientStockError
// and nothing is committed.
func (s *stockService) AllocateStockTx(ctx context.Context, tx pgx.Tx, productID uuid.UUID, qty int, referenceID *uuid.UUID) error {
	if qty <= 0 {
		return fmt.Errorf("allocation quantity must be positive, got %d", qty)
	}

	// Lock the product row first: concurrent allocations against the same
	// product serialize here instead of double-reading lot quantities.
	var stockBefore int
	err := tx.QueryRow(ctx,
		"SELECT stock FROM products WHERE id = $1 AND is_active = true FOR UPDATE",
		productID,
	).Scan(&stockBefore)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("product %s not found", productID)
		}
		return fmt.Errorf("failed to lock product %s: %w", productID, err)
	}

	lots, err := fetchOpenLots(ctx, tx, productID, true)
	if err != nil {
		return err
	}

	sort.SliceStable(lots, func(i, j int) bool { return s.ranking(lots[i], lots[j]) })

	available := 0
	for _, lot := range lots {
		available += lot.RemainingQuantity
	}

	remaining := qty
	running := stockBefore
	for _, lot := range lots {
		if remaining == 0 {
			break
		}
		consume := remaining
		if lot.RemainingQuantity < consume {
			consume = lot.RemainingQuantity
		}

		_, err = tx.Exec(ctx, `
			UPDATE cost_lots SET remaining_quantity = remaining_quantity - $1
			WHERE id = $2
		`, consume, lot.ID)
		if err != nil {
			return fmt.Errorf("failed to consume lot %s: %w", lot.ID, err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO stock_movements (product_id, lot_id, type, quantity, stock_before, stock_after, reference_id, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, productID, lot.ID, MovementSale, -consume, running, running-consume, referenceID,
			fmt.Sprintf("Consumed %d units from lot %s @ %s", consume, lot.ID, lot.UnitCost.StringFixed(2)),
		)
		if err != nil {
			return fmt.Errorf("failed to insert sale movement for lot %s: %w", lot.ID, err)
		}

		running -= consume
		remaining -= consume
	}

	if remaining > 0 {
		// Returned before commit: partial decrements above are rolled back.
		return &InsufficientStockError{ProductID: productID, Requested: qty, Available: available}
	}

	return resyncProductStock(ctx, tx, productID)
}

// ── Replenishment ─────────────────────────────────────────────────────────────

func (s *stockService) ReplenishStock(ctx context.Context, productID uuid.UUID, qty int, unitCost decimal.Decimal) (uuid.UUID, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	lotID, err := s.ReplenishStockTx(ctx, tx, productID, qty, unitCost, nil)
	if err != nil {
		return uuid.Nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit replenishment: %w", err)
	}
	return lotID, nil
}

func (s *stockService) ReplenishStockTx(ctx context.Context, tx pgx.Tx, productID uuid.UUID, qty int, unitCost decimal.Decimal, referenceID *uuid.UUID) (uuid.UUID, error) {
	if qty <= 0 {
		return uuid.Nil, fmt.Errorf("replenish quantity must be positive, got %d", qty)
	}
	if unitCost.IsNegative() {
		return uuid.Nil, fmt.Errorf("unit cost cannot be negative, got %s", unitCost)
	}

	var stockBefore int
	err := tx.QueryRow(ctx,
		"SELECT stock FROM products WHERE id = $1 AND is_active = true FOR UPDATE",
		productID,
	).Scan(&stockBefore)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("product %s not found", productID)
		}
		return uuid.Nil, fmt.Errorf("failed to lock product %s: %w", productID, err)
	}

	var lotID uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO cost_lots (product_id, unit_cost, original_quantity, remaining_quantity)
		VALUES ($1, $2, $3, $3)
		RETURNING id
	`, productID, unitCost, qty).Scan(&lotID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert cost lot: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO stock_movements (product_id, lot_id, type, quantity, stock_before, stock_after, reference_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, productID, lotID, MovementRestock, qty, stockBefore, stockBefore+qty, referenceID,
		fmt.Sprintf("Restocked %d units @ %s", qty, unitCost.StringFixed(2)),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert restock movement: %w", err)
	}

	if err := resyncProductStock(ctx, tx, productID); err != nil {
		return uuid.Nil, err
	}

	appendCostHistory(ctx, tx, productID, lotID, unitCost)

	return lotID, nil
}

// appendCostHistory writes one cost-trail entry inside a savepoint so a
// failed history write never poisons the surrounding replenishment
// transaction. Failures are logged as warnings and swallowed.
func appendCostHistory(ctx context.Context, tx pgx.Tx, productID, lotID uuid.UUID, unitCost decimal.Decimal) {
	sp, err := tx.Begin(ctx)
	if err != nil {
		log.Printf("warning: cost history savepoint failed for product %s: %v", productID, err)
		return
	}
	_, err = sp.Exec(ctx, `
		INSERT INTO cost_history (product_id, lot_id, type, price)
		VALUES ($1, $2, 'cost', $3)
	`, productID, lotID, unitCost)
	if err != nil {
		log.Printf("warning: cost history write failed for product %s lot %s: %v", productID, lotID, err)
		_ = sp.Rollback(ctx)
		return
	}
	if err := sp.Commit(ctx); err != nil {
		log.Printf("warning: cost history commit failed for product %s lot %s: %v", productID, lotID, err)
	}
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *stockService) GetLots(ctx context.Context, productID uuid.UUID) ([]CostLot, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, product_id, unit_cost, original_quantity, remaining_quantity, created_at
		FROM cost_lots
		WHERE product_id = $1
		ORDER BY created_at DESC, unit_cost DESC
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lots: %w", err)
	}
	defer rows.Close()

	var lots []CostLot
	for rows.Next() {
		var l CostLot
		if err := rows.Scan(&l.ID, &l.ProductID, &l.UnitCost, &l.OriginalQuantity, &l.RemainingQuantity, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lot: %w", err)
		}
		lots = append(lots, l)
	}
	return lots, nil
}

func (s *stockService) GetStockLevels(ctx context.Context) ([]StockLevel, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.name, p.stock, p.min_stock,
		       COUNT(cl.id) FILTER (WHERE cl.remaining_quantity > 0) AS open_lots
		FROM products p
		LEFT JOIN cost_lots cl ON cl.product_id = p.id
		WHERE p.is_active = true
		GROUP BY p.id, p.name, p.stock, p.min_stock
		ORDER BY p.name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock levels: %w", err)
	}
	defer rows.Close()

	var levels []StockLevel
	for rows.Next() {
		var sl StockLevel
		if err := rows.Scan(&sl.ProductID, &sl.Name, &sl.Stock, &sl.MinStock, &sl.OpenLots); err != nil {
			return nil, fmt.Errorf("failed to scan stock level: %w", err)
		}
		sl.LowStock = sl.Stock < sl.MinStock
		levels = append(levels, sl)
	}
	return levels, nil
}

// ── Shared helpers ────────────────────────────────────────────────────────────

// fetchOpenLots loads all lots with remaining quantity for a product.
// forUpdate locks the rows within the caller's transaction.
func fetchOpenLots(ctx context.Context, tx pgx.Tx, productID uuid.UUID, forUpdate bool) ([]CostLot, error) {
	query := `
		SELECT id, product_id, unit_cost, original_quantity, remaining_quantity, created_at
		FROM cost_lots
		WHERE product_id = $1 AND remaining_quantity > 0
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	rows, err := tx.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query open lots: %w", err)
	}
	defer rows.Close()

	var lots []CostLot
	for rows.Next() {
		var l CostLot
		if err := rows.Scan(&l.ID, &l.ProductID, &l.UnitCost, &l.OriginalQuantity, &l.RemainingQuantity, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lot: %w", err)
		}
		lots = append(lots, l)
	}
	return lots, rows.Err()
}

// resyncProductStock recomputes the denormalized aggregate from the lots so
// it can never drift from the sum of remaining quantities.
func resyncProductStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE products
		SET stock = COALESCE((SELECT SUM(remaining_quantity) FROM cost_lots WHERE product_id = $1), 0),
		    updated_at = NOW()
		WHERE id = $1
	`, productID)
	if err != nil {
		return fmt.Errorf("failed to resync stock for product %s: %w", productID, err)
	}
	return nil
}
