package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ── Report types ──────────────────────────────────────────────────────────────

// CardStatement is one card's position for a single billing cycle: the raw
// payment records attributed to that cycle plus their reconstructed
// purchase groups.
type CardStatement struct {
	CardID    uuid.UUID       `json:"card_id"`
	CardName  string          `json:"card_name"`
	CycleDate time.Time       `json:"cycle_date"`
	Total     decimal.Decimal `json:"total"`
	Payments  []PaymentRecord `json:"payments"`
	Purchases []PurchaseGroup `json:"purchases"`
}

// MonthlySpendLine is one cycle month's total for a card.
type MonthlySpendLine struct {
	CycleDate time.Time       `json:"cycle_date"`
	Count     int             `json:"count"`
	Total     decimal.Decimal `json:"total"`
}

// ── Interface ─────────────────────────────────────────────────────────────────

// ReportingService provides read-only reporting over payments and lots.
// All methods are side-effect-free and safe for concurrent use.
type ReportingService interface {
	// GetCardStatement returns the statement for one billing cycle.
	// A zero cycleDate resolves to the card's next closing date from today.
	GetCardStatement(ctx context.Context, cardID uuid.UUID, cycleDate time.Time) (*CardStatement, error)

	// GetPurchaseGroups reconstructs purchase groups over a cycle-date
	// range. Zero times mean unbounded.
	GetPurchaseGroups(ctx context.Context, cardID uuid.UUID, from, to time.Time) ([]PurchaseGroup, error)

	// GetStockValuation prices each product's open lots at their own unit
	// cost: SUM(remaining_quantity × unit_cost) per product.
	GetStockValuation(ctx context.Context) ([]StockValuationLine, error)

	// GetMonthlySpend returns per-cycle totals for a card within one
	// calendar year.
	GetMonthlySpend(ctx context.Context, cardID uuid.UUID, year int) ([]MonthlySpendLine, error)
}

type reportingService struct {
	pool     *pgxpool.Pool
	payments PaymentService
}

func NewReportingService(pool *pgxpool.Pool, payments PaymentService) ReportingService {
	return &reportingService{pool: pool, payments: payments}
}

// ── GetCardStatement ──────────────────────────────────────────────────────────

func (s *reportingService) GetCardStatement(ctx context.Context, cardID uuid.UUID, cycleDate time.Time) (*CardStatement, error) {
	card, err := s.payments.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}

	if cycleDate.IsZero() {
		cycleDate = NextCycleFrom(card.ClosingDay, time.Now())
	} else {
		cycleDate = midnightUTC(cycleDate)
	}

	records, err := s.payments.ListPayments(ctx, cardID, cycleDate, cycleDate)
	if err != nil {
		return nil, err
	}

	var total decimal.Decimal
	for _, rec := range records {
		total = total.Add(rec.Amount)
	}

	return &CardStatement{
		CardID:    card.ID,
		CardName:  card.Name,
		CycleDate: cycleDate,
		Total:     total,
		Payments:  records,
		Purchases: AggregatePurchases(records),
	}, nil
}

// ── GetPurchaseGroups ─────────────────────────────────────────────────────────

func (s *reportingService) GetPurchaseGroups(ctx context.Context, cardID uuid.UUID, from, to time.Time) ([]PurchaseGroup, error) {
	records, err := s.payments.ListPayments(ctx, cardID, from, to)
	if err != nil {
		return nil, err
	}
	return AggregatePurchases(records), nil
}

// ── GetStockValuation ─────────────────────────────────────────────────────────

func (s *reportingService) GetStockValuation(ctx context.Context) ([]StockValuationLine, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.name,
		       COALESCE(SUM(cl.remaining_quantity), 0)::int AS units,
		       COALESCE(SUM(cl.remaining_quantity * cl.unit_cost), 0) AS value
		FROM products p
		LEFT JOIN cost_lots cl ON cl.product_id = p.id AND cl.remaining_quantity > 0
		WHERE p.is_active = true
		GROUP BY p.id, p.name
		ORDER BY p.name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock valuation: %w", err)
	}
	defer rows.Close()

	var lines []StockValuationLine
	for rows.Next() {
		var l StockValuationLine
		if err := rows.Scan(&l.ProductID, &l.Name, &l.Units, &l.Value); err != nil {
			return nil, fmt.Errorf("failed to scan valuation line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, nil
}

// ── GetMonthlySpend ───────────────────────────────────────────────────────────

func (s *reportingService) GetMonthlySpend(ctx context.Context, cardID uuid.UUID, year int) ([]MonthlySpendLine, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT billing_cycle_date, COUNT(*)::int, SUM(amount)
		FROM payments
		WHERE card_id = $1 AND EXTRACT(YEAR FROM billing_cycle_date) = $2
		GROUP BY billing_cycle_date
		ORDER BY billing_cycle_date
	`, cardID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly spend: %w", err)
	}
	defer rows.Close()

	var lines []MonthlySpendLine
	for rows.Next() {
		var l MonthlySpendLine
		if err := rows.Scan(&l.CycleDate, &l.Count, &l.Total); err != nil {
			return nil, fmt.Errorf("failed to scan monthly spend line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, nil
}
