package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment methods. Installment plans require a card-based method because the
// billing cycle is derived from the card's closing day.
const (
	MethodCash   = "CASH"
	MethodDebit  = "DEBIT"
	MethodCredit = "CREDIT"
)

// IsCardMethod reports whether the payment method is tied to a card and
// therefore has a statement closing cycle.
func IsCardMethod(method string) bool {
	return method == MethodDebit || method == MethodCredit
}

// Transaction directions.
const (
	TxIncome  = "INCOME"
	TxExpense = "EXPENSE"
)

type Product struct {
	ID        uuid.UUID       `json:"id"`
	Barcode   *string         `json:"barcode,omitempty"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	SalePrice decimal.Decimal `json:"sale_price"`
	Stock     int             `json:"stock"` // denormalized: sum of remaining_quantity over open lots
	MinStock  int             `json:"min_stock"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
}

// Card is a payment instrument with a recurring statement closing day.
type Card struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	ClosingDay int       `json:"closing_day"` // 1..31, clamped to month length when applied
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// CostLot is a discrete batch of inventory received at one unit cost.
// OriginalQuantity is immutable after creation; RemainingQuantity starts
// equal to it and only ever decreases, never below zero.
type CostLot struct {
	ID                uuid.UUID       `json:"id"`
	ProductID         uuid.UUID       `json:"product_id"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	OriginalQuantity  int             `json:"original_quantity"`
	RemainingQuantity int             `json:"remaining_quantity"`
	CreatedAt         time.Time       `json:"created_at"`
}

// CostHistory is one immutable entry in a product's cost trail,
// appended on every restock and linked to the lot it priced.
type CostHistory struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	LotID     *uuid.UUID      `json:"lot_id,omitempty"`
	Type      string          `json:"type"` // always "cost" for restock entries
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
}

// Stock movement types.
const (
	MovementSale    = "SALE"
	MovementRestock = "RESTOCK"
)

// StockMovement records one stock change against one lot.
// Quantity is signed: positive = units in, negative = units out.
type StockMovement struct {
	ID          uuid.UUID  `json:"id"`
	ProductID   uuid.UUID  `json:"product_id"`
	LotID       *uuid.UUID `json:"lot_id,omitempty"`
	Type        string     `json:"type"`
	Quantity    int        `json:"quantity"`
	StockBefore int        `json:"stock_before"`
	StockAfter  int        `json:"stock_after"`
	ReferenceID *uuid.UUID `json:"reference_id,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Transaction is the header row for one registered economic event.
// Payments scheduled as part of a registration carry its ID as their
// parent link.
type Transaction struct {
	ID               uuid.UUID       `json:"id"`
	Type             string          `json:"type"` // INCOME | EXPENSE
	ProductID        *uuid.UUID      `json:"product_id,omitempty"`
	CardID           *uuid.UUID      `json:"card_id,omitempty"`
	Method           string          `json:"method"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	InstallmentCount int             `json:"installment_count"`
	TransactionDate  time.Time       `json:"transaction_date"`
	Description      string          `json:"description"`
	CreatedAt        time.Time       `json:"created_at"`
}

// PaymentRecord is one billed installment, or a single payment when
// InstallmentCount is 1. Amount is the already-divided share, not the
// plan total.
type PaymentRecord struct {
	ID               uuid.UUID       `json:"id"`
	TransactionID    *uuid.UUID      `json:"transaction_id,omitempty"` // parent link; may be null even for true installments
	ProductID        *uuid.UUID      `json:"product_id,omitempty"`
	CardID           *uuid.UUID      `json:"card_id,omitempty"`
	Method           string          `json:"method"`
	Amount           decimal.Decimal `json:"amount"`
	TransactionDate  time.Time       `json:"transaction_date"`
	BillingCycleDate time.Time       `json:"billing_cycle_date"`
	InstallmentCount int             `json:"installment_count"`
	InstallmentIndex int             `json:"installment_index"` // 1-based position within the plan
	IsInstallment    bool            `json:"is_installment"`
	Description      string          `json:"description"`
	IdempotencyKey   string          `json:"idempotency_key"`
	CreatedAt        time.Time       `json:"created_at"`
}

// PurchaseGroup is a reporting-time reconstruction joining scattered
// installment records back into one logical purchase. It is never persisted.
type PurchaseGroup struct {
	Key              string          `json:"key"`
	BaseDescription  string          `json:"base_description"`
	CardID           *uuid.UUID      `json:"card_id,omitempty"`
	InstallmentCount int             `json:"installment_count"`
	FirstPaymentDate time.Time       `json:"first_payment_date"`
	Total            decimal.Decimal `json:"total"`
	Members          []PaymentRecord `json:"members"`
}

// StockLevel is a read view of a product's aggregate position.
type StockLevel struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Stock     int       `json:"stock"`
	MinStock  int       `json:"min_stock"`
	LowStock  bool      `json:"low_stock"` // Stock < MinStock
	OpenLots  int       `json:"open_lots"`
}

// StockValuationLine is a product's inventory value at cost:
// the sum of remaining_quantity × unit_cost over its open lots.
type StockValuationLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Units     int             `json:"units"`
	Value     decimal.Decimal `json:"value"`
}
