package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// RegisterInput is the input for registering one economic event.
type RegisterInput struct {
	Type             string // INCOME | EXPENSE
	ProductID        *uuid.UUID
	Quantity         int             // required when ProductID is set
	UnitCost         decimal.Decimal // required for EXPENSE with a product
	CardID           *uuid.UUID
	Method           string
	TotalAmount      decimal.Decimal
	InstallmentCount int
	TransactionDate  time.Time
	Description      string
	IdempotencyBase  string // optional; generated when empty
}

// RegisterResult is returned by RegisterTransaction.
type RegisterResult struct {
	Transaction *Transaction
	Payments    []PaymentRecord
	LotID       *uuid.UUID // set for EXPENSE registrations that created a lot
}

// TransactionService is the registration boundary: one call moves stock and
// produces the payment plan atomically. Any failure — insufficient stock, a
// rejected payment batch, a storage fault — rejects the whole registration
// with nothing persisted.
type TransactionService interface {
	RegisterTransaction(ctx context.Context, in RegisterInput) (*RegisterResult, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	GetTransactions(ctx context.Context, txType *string) ([]Transaction, error)
}

type transactionService struct {
	pool     *pgxpool.Pool
	stock    StockService
	payments PaymentService
}

func NewTransactionService(pool *pgxpool.Pool, stock StockService, payments PaymentService) TransactionService {
	return &transactionService{pool: pool, stock: stock, payments: payments}
}

func (s *transactionService) RegisterTransaction(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	if in.Type != TxIncome && in.Type != TxExpense {
		return nil, fmt.Errorf("transaction type must be %s or %s, got %q", TxIncome, TxExpense, in.Type)
	}
	if !in.TotalAmount.IsPositive() {
		return nil, fmt.Errorf("total amount must be positive, got %s", in.TotalAmount)
	}
	if in.InstallmentCount < 1 {
		in.InstallmentCount = 1
	}
	if in.ProductID != nil && in.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive when a product is involved, got %d", in.Quantity)
	}
	if in.TransactionDate.IsZero() {
		in.TransactionDate = time.Now()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Insert the header first: its ID is the parent link carried by every
	// payment in the plan.
	var header Transaction
	err = tx.QueryRow(ctx, `
		INSERT INTO transactions (type, product_id, card_id, method, total_amount, installment_count, transaction_date, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, type, product_id, card_id, method, total_amount, installment_count, transaction_date, description, created_at
	`, in.Type, in.ProductID, in.CardID, in.Method, in.TotalAmount, in.InstallmentCount,
		midnightUTC(in.TransactionDate), in.Description,
	).Scan(
		&header.ID, &header.Type, &header.ProductID, &header.CardID, &header.Method,
		&header.TotalAmount, &header.InstallmentCount, &header.TransactionDate,
		&header.Description, &header.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction header: %w", err)
	}

	// Move stock in the direction of the transaction.
	var lotID *uuid.UUID
	if in.ProductID != nil {
		switch in.Type {
		case TxIncome:
			if err := s.stock.AllocateStockTx(ctx, tx, *in.ProductID, in.Quantity, &header.ID); err != nil {
				return nil, err
			}
		case TxExpense:
			id, err := s.stock.ReplenishStockTx(ctx, tx, *in.ProductID, in.Quantity, in.UnitCost, &header.ID)
			if err != nil {
				return nil, err
			}
			lotID = &id
		}
	}

	// Schedule the payment plan with the explicit parent link populated.
	records, err := s.payments.ScheduleInstallmentsTx(ctx, tx, ScheduleInput{
		TotalAmount:      in.TotalAmount,
		Method:           in.Method,
		InstallmentCount: in.InstallmentCount,
		TransactionDate:  in.TransactionDate,
		CardID:           in.CardID,
		ProductID:        in.ProductID,
		TransactionID:    &header.ID,
		Description:      in.Description,
		IdempotencyBase:  in.IdempotencyBase,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit registration: %w", err)
	}

	return &RegisterResult{Transaction: &header, Payments: records, LotID: lotID}, nil
}

func (s *transactionService) GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	var t Transaction
	err := s.pool.QueryRow(ctx, `
		SELECT id, type, product_id, card_id, method, total_amount, installment_count, transaction_date, description, created_at
		FROM transactions WHERE id = $1
	`, id).Scan(
		&t.ID, &t.Type, &t.ProductID, &t.CardID, &t.Method,
		&t.TotalAmount, &t.InstallmentCount, &t.TransactionDate, &t.Description, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transaction %s not found", id)
		}
		return nil, fmt.Errorf("failed to fetch transaction %s: %w", id, err)
	}
	return &t, nil
}

func (s *transactionService) GetTransactions(ctx context.Context, txType *string) ([]Transaction, error) {
	query := `
		SELECT id, type, product_id, card_id, method, total_amount, installment_count, transaction_date, description, created_at
		FROM transactions
	`
	var args []any
	if txType != nil {
		query += " WHERE type = $1"
		args = append(args, *txType)
	}
	query += " ORDER BY transaction_date DESC, created_at DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var list []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(
			&t.ID, &t.Type, &t.ProductID, &t.CardID, &t.Method,
			&t.TotalAmount, &t.InstallmentCount, &t.TransactionDate, &t.Description, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		list = append(list, t)
	}
	return list, nil
}
