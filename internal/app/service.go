package app

import (
	"context"
	"time"

	"pos-backend/internal/core"

	"github.com/google/uuid"
)

// ApplicationService is the single interface all adapters (Web, CLI tooling)
// call. It decouples presentation from business logic. Implementations must
// contain no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// ListProducts returns all active products.
	ListProducts(ctx context.Context) (*ProductListResult, error)

	// GetProduct returns a single product by ID.
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductResult, error)

	// CreateProduct creates a new product with zero stock.
	CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResult, error)

	// GetStockLevels returns current stock for all active products, with a
	// low-stock flag against each product's minimum.
	GetStockLevels(ctx context.Context) (*StockResult, error)

	// GetStockValuation prices every product's open lots at their own unit
	// cost and returns per-product units and value.
	GetStockValuation(ctx context.Context) (*ValuationResult, error)

	// GetLots returns a product's cost lots, newest first.
	GetLots(ctx context.Context, productID uuid.UUID) (*LotListResult, error)

	// ReceiveStock records a goods receipt: creates a cost lot and raises the
	// product's stock, without a transaction header. Purchases that should
	// also produce a payment plan go through RegisterTransaction instead.
	ReceiveStock(ctx context.Context, req ReceiveStockRequest) (*ReceiveStockResult, error)

	// AllocateStock consumes units from a product's open lots without a
	// transaction header, for corrections and manual adjustments. Sales go
	// through RegisterTransaction.
	AllocateStock(ctx context.Context, productID uuid.UUID, qty int) (*ProductResult, error)

	// ListCards returns all active cards.
	ListCards(ctx context.Context) (*CardListResult, error)

	// CreateCard creates a new card with its statement closing day.
	CreateCard(ctx context.Context, req CreateCardRequest) (*CardResult, error)

	// RegisterTransaction registers one economic event atomically: the
	// header, the stock movement it implies, and its payment plan all land
	// in one database transaction or not at all.
	RegisterTransaction(ctx context.Context, req RegisterTransactionRequest) (*TransactionResult, error)

	// ListTransactions returns transaction headers, optionally filtered by
	// type (INCOME or EXPENSE).
	ListTransactions(ctx context.Context, txType *string) (*TransactionListResult, error)

	// GetTransaction returns one transaction header by ID.
	GetTransaction(ctx context.Context, id uuid.UUID) (*core.Transaction, error)

	// GetCardStatement returns one billing cycle's statement for a card.
	// A zero cycleDate resolves to the card's next closing date from today.
	GetCardStatement(ctx context.Context, cardID uuid.UUID, cycleDate time.Time) (*core.CardStatement, error)

	// GetPurchaseGroups reconstructs the card's purchases from its payment
	// records over a cycle-date range. Zero times mean unbounded.
	GetPurchaseGroups(ctx context.Context, cardID uuid.UUID, from, to time.Time) (*PurchaseGroupsResult, error)

	// GetMonthlySpend returns per-cycle totals for a card within one
	// calendar year.
	GetMonthlySpend(ctx context.Context, cardID uuid.UUID, year int) (*MonthlySpendResult, error)

	// ComputeBillingCycle answers "which statement does a purchase on this
	// date land on" for a card, plus the following cycle.
	ComputeBillingCycle(ctx context.Context, cardID uuid.UUID, txDate time.Time) (*BillingCycleResult, error)
}
