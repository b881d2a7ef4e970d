package app

import (
	"time"

	"pos-backend/internal/core"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductListResult is returned by ListProducts.
type ProductListResult struct {
	Products []core.Product
}

// ProductResult is returned by GetProduct and CreateProduct.
type ProductResult struct {
	Product *core.Product
}

// StockResult is returned by GetStockLevels.
type StockResult struct {
	Levels []core.StockLevel
}

// ValuationResult is returned by GetStockValuation.
type ValuationResult struct {
	Lines      []core.StockValuationLine
	TotalUnits int
	TotalValue decimal.Decimal
}

// LotListResult is returned by GetLots.
type LotListResult struct {
	ProductID uuid.UUID
	Lots      []core.CostLot
}

// ReceiveStockResult is returned by ReceiveStock.
type ReceiveStockResult struct {
	LotID   uuid.UUID
	Product *core.Product
}

// CardListResult is returned by ListCards.
type CardListResult struct {
	Cards []core.Card
}

// CardResult is returned by CreateCard.
type CardResult struct {
	Card *core.Card
}

// TransactionResult is returned by RegisterTransaction.
type TransactionResult struct {
	Transaction *core.Transaction
	Payments    []core.PaymentRecord
	LotID       *uuid.UUID
}

// TransactionListResult is returned by ListTransactions.
type TransactionListResult struct {
	Transactions []core.Transaction
}

// PurchaseGroupsResult is returned by GetPurchaseGroups.
type PurchaseGroupsResult struct {
	CardID uuid.UUID
	Groups []core.PurchaseGroup
}

// MonthlySpendResult is returned by GetMonthlySpend.
type MonthlySpendResult struct {
	CardID uuid.UUID
	Year   int
	Lines  []core.MonthlySpendLine
}

// BillingCycleResult is returned by ComputeBillingCycle.
type BillingCycleResult struct {
	CardID          uuid.UUID
	ClosingDay      int
	TransactionDate time.Time
	CycleDate       time.Time
	NextCycleDate   time.Time
}
