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

// ScheduleInput is the input for scheduling a payment plan.
type ScheduleInput struct {
	TotalAmount      decimal.Decimal
	Method           string // CASH | DEBIT | CREDIT
	InstallmentCount int
	TransactionDate  time.Time
	CardID           *uuid.UUID // required for card-based methods
	ProductID        *uuid.UUID
	TransactionID    *uuid.UUID // parent link, set by transaction registration
	Description      string
	IdempotencyBase  string // generated when empty
}

// PaymentService persists payment plans and reads them back for reporting.
type PaymentService interface {
	// ScheduleInstallments builds the plan for the input and inserts all
	// records in one transaction: either every installment lands or none
	// does. A duplicate idempotency key aborts the whole batch.
	ScheduleInstallments(ctx context.Context, in ScheduleInput) ([]PaymentRecord, error)
	// ScheduleInstallmentsTx is the TX-scoped variant used by transaction
	// registration.
	ScheduleInstallmentsTx(ctx context.Context, tx pgx.Tx, in ScheduleInput) ([]PaymentRecord, error)

	// ListPayments returns payment records for a card in [from, to] by
	// billing cycle date, oldest cycle first. Zero times mean unbounded.
	ListPayments(ctx context.Context, cardID uuid.UUID, from, to time.Time) ([]PaymentRecord, error)

	// Card master data
	CreateCard(ctx context.Context, name string, closingDay int) (*Card, error)
	GetCards(ctx context.Context) ([]Card, error)
	GetCard(ctx context.Context, cardID uuid.UUID) (*Card, error)
}

type paymentService struct {
	pool *pgxpool.Pool
}

func NewPaymentService(pool *pgxpool.Pool) PaymentService {
	return &paymentService{pool: pool}
}

// ── Cards ─────────────────────────────────────────────────────────────────────

func (s *paymentService) CreateCard(ctx context.Context, name string, closingDay int) (*Card, error) {
	if name == "" {
		return nil, fmt.Errorf("card name is required")
	}
	if closingDay < 1 || closingDay > 31 {
		return nil, fmt.Errorf("closing day must be between 1 and 31, got %d", closingDay)
	}

	var c Card
	err := s.pool.QueryRow(ctx, `
		INSERT INTO cards (name, closing_day)
		VALUES ($1, $2)
		RETURNING id, name, closing_day, is_active, created_at
	`, name, closingDay).Scan(&c.ID, &c.Name, &c.ClosingDay, &c.IsActive, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create card: %w", err)
	}
	return &c, nil
}

func (s *paymentService) GetCards(ctx context.Context) ([]Card, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, closing_day, is_active, created_at
		FROM cards
		WHERE is_active = true
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	var cards []Card
	for rows.Next() {
		var c Card
		if err := rows.Scan(&c.ID, &c.Name, &c.ClosingDay, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, nil
}

func (s *paymentService) GetCard(ctx context.Context, cardID uuid.UUID) (*Card, error) {
	var c Card
	err := s.pool.QueryRow(ctx,
		"SELECT id, name, closing_day, is_active, created_at FROM cards WHERE id = $1",
		cardID,
	).Scan(&c.ID, &c.Name, &c.ClosingDay, &c.IsActive, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("card %s not found", cardID)
		}
		return nil, fmt.Errorf("failed to fetch card %s: %w", cardID, err)
	}
	return &c, nil
}

// ── Scheduling ────────────────────────────────────────────────────────────────

func (s *paymentService) ScheduleInstallments(ctx context.Context, in ScheduleInput) ([]PaymentRecord, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	records, err := s.ScheduleInstallmentsTx(ctx, tx, in)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit payment plan: %w", err)
	}
	return records, nil
}

func (s *paymentService) ScheduleInstallmentsTx(ctx context.Context, tx pgx.Tx, in ScheduleInput) ([]PaymentRecord, error) {
	if in.InstallmentCount > 1 && in.Method != MethodCredit {
		return nil, fmt.Errorf("installment plans require method %s, got %s", MethodCredit, in.Method)
	}

	closingDay := 0
	if IsCardMethod(in.Method) {
		if in.CardID == nil {
			return nil, fmt.Errorf("card is required for method %s", in.Method)
		}
		err := tx.QueryRow(ctx,
			"SELECT closing_day FROM cards WHERE id = $1 AND is_active = true",
			*in.CardID,
		).Scan(&closingDay)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("card %s not found", *in.CardID)
			}
			return nil, fmt.Errorf("failed to resolve card %s: %w", *in.CardID, err)
		}
	}

	base := in.IdempotencyBase
	if base == "" {
		base = NewIdempotencyBase()
	}

	drafts, err := BuildInstallmentPlan(in.TotalAmount, in.InstallmentCount, in.TransactionDate, closingDay, in.Description, base)
	if err != nil {
		return nil, err
	}

	records := make([]PaymentRecord, 0, len(drafts))
	for _, d := range drafts {
		var rec PaymentRecord
		// The UNIQUE constraint on idempotency_key fails the insert on a
		// duplicate, aborting the transaction and with it the whole batch.
		err := tx.QueryRow(ctx, `
			INSERT INTO payments (transaction_id, product_id, card_id, method, amount,
			                      transaction_date, billing_cycle_date,
			                      installment_count, installment_index, is_installment,
			                      description, idempotency_key)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id, transaction_id, product_id, card_id, method, amount,
			          transaction_date, billing_cycle_date,
			          installment_count, installment_index, is_installment,
			          description, idempotency_key, created_at
		`, in.TransactionID, in.ProductID, in.CardID, in.Method, d.Amount,
			d.TransactionDate, d.BillingCycleDate,
			d.InstallmentCount, d.InstallmentIndex, d.IsInstallment,
			d.Description, d.IdempotencyKey,
		).Scan(
			&rec.ID, &rec.TransactionID, &rec.ProductID, &rec.CardID, &rec.Method, &rec.Amount,
			&rec.TransactionDate, &rec.BillingCycleDate,
			&rec.InstallmentCount, &rec.InstallmentIndex, &rec.IsInstallment,
			&rec.Description, &rec.IdempotencyKey, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert installment %d/%d: %w", d.InstallmentIndex, d.InstallmentCount, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *paymentService) ListPayments(ctx context.Context, cardID uuid.UUID, from, to time.Time) ([]PaymentRecord, error) {
	query := `
		SELECT id, transaction_id, product_id, card_id, method, amount,
		       transaction_date, billing_cycle_date,
		       installment_count, installment_index, is_installment,
		       description, idempotency_key, created_at
		FROM payments
		WHERE card_id = $1
	`
	args := []any{cardID}

	if !from.IsZero() {
		args = append(args, from)
		query += fmt.Sprintf(" AND billing_cycle_date >= $%d", len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		query += fmt.Sprintf(" AND billing_cycle_date <= $%d", len(args))
	}
	query += " ORDER BY billing_cycle_date, installment_index, created_at"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var records []PaymentRecord
	for rows.Next() {
		var rec PaymentRecord
		if err := rows.Scan(
			&rec.ID, &rec.TransactionID, &rec.ProductID, &rec.CardID, &rec.Method, &rec.Amount,
			&rec.TransactionDate, &rec.BillingCycleDate,
			&rec.InstallmentCount, &rec.InstallmentIndex, &rec.IsInstallment,
			&rec.Description, &rec.IdempotencyKey, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}
