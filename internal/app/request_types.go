package app

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest is the input for creating a new product.
type CreateProductRequest struct {
	Barcode   *string
	Name      string
	Category  string
	SalePrice decimal.Decimal
	MinStock  int // zero means "use the default minimum"
}

// CreateCardRequest is the input for creating a new card.
type CreateCardRequest struct {
	Name       string
	ClosingDay int // day of month the statement closes, 1–31
}

// ReceiveStockRequest is the input for recording a goods receipt.
type ReceiveStockRequest struct {
	ProductID uuid.UUID
	Qty       int
	UnitCost  decimal.Decimal
}

// RegisterTransactionRequest is the input for registering one economic event.
type RegisterTransactionRequest struct {
	Type             string // INCOME | EXPENSE
	ProductID        *uuid.UUID
	Quantity         int             // required when ProductID is set
	UnitCost         decimal.Decimal // required for EXPENSE with a product
	CardID           *uuid.UUID
	Method           string // CASH | DEBIT | CREDIT
	TotalAmount      decimal.Decimal
	InstallmentCount int
	TransactionDate  string // YYYY-MM-DD; empty means today
	Description      string
	IdempotencyKey   string // optional client-supplied base; generated when empty
}
