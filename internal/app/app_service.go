package app

import (
	"context"
	"fmt"
	"time"

	"pos-backend/internal/core"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type appService struct {
	stock        core.StockService
	payments     core.PaymentService
	transactions core.TransactionService
	reports      core.ReportingService
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	stock core.StockService,
	payments core.PaymentService,
	transactions core.TransactionService,
	reports core.ReportingService,
) ApplicationService {
	return &appService{
		stock:        stock,
		payments:     payments,
		transactions: transactions,
		reports:      reports,
	}
}

// ── Products ──────────────────────────────────────────────────────────────────

func (s *appService) ListProducts(ctx context.Context) (*ProductListResult, error) {
	products, err := s.stock.GetProducts(ctx)
	if err != nil {
		return nil, err
	}
	return &ProductListResult{Products: products}, nil
}

func (s *appService) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductResult, error) {
	product, err := s.stock.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: product}, nil
}

func (s *appService) CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResult, error) {
	product, err := s.stock.CreateProduct(ctx, req.Barcode, req.Name, req.Category, req.SalePrice, req.MinStock)
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: product}, nil
}

// ── Stock ─────────────────────────────────────────────────────────────────────

func (s *appService) GetStockLevels(ctx context.Context) (*StockResult, error) {
	levels, err := s.stock.GetStockLevels(ctx)
	if err != nil {
		return nil, err
	}
	return &StockResult{Levels: levels}, nil
}

func (s *appService) GetStockValuation(ctx context.Context) (*ValuationResult, error) {
	lines, err := s.reports.GetStockValuation(ctx)
	if err != nil {
		return nil, err
	}

	result := &ValuationResult{Lines: lines, TotalValue: decimal.Zero}
	for _, l := range lines {
		result.TotalUnits += l.Units
		result.TotalValue = result.TotalValue.Add(l.Value)
	}
	return result, nil
}

func (s *appService) GetLots(ctx context.Context, productID uuid.UUID) (*LotListResult, error) {
	lots, err := s.stock.GetLots(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &LotListResult{ProductID: productID, Lots: lots}, nil
}

func (s *appService) ReceiveStock(ctx context.Context, req ReceiveStockRequest) (*ReceiveStockResult, error) {
	if req.Qty <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", req.Qty)
	}
	if req.UnitCost.IsNegative() {
		return nil, fmt.Errorf("unit cost must not be negative, got %s", req.UnitCost)
	}

	lotID, err := s.stock.ReplenishStock(ctx, req.ProductID, req.Qty, req.UnitCost)
	if err != nil {
		return nil, err
	}

	// Re-fetch to return the updated stock figure.
	product, err := s.stock.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	return &ReceiveStockResult{LotID: lotID, Product: product}, nil
}

func (s *appService) AllocateStock(ctx context.Context, productID uuid.UUID, qty int) (*ProductResult, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", qty)
	}
	if err := s.stock.AllocateStock(ctx, productID, qty); err != nil {
		return nil, err
	}

	product, err := s.stock.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: product}, nil
}

// ── Cards ─────────────────────────────────────────────────────────────────────

func (s *appService) ListCards(ctx context.Context) (*CardListResult, error) {
	cards, err := s.payments.GetCards(ctx)
	if err != nil {
		return nil, err
	}
	return &CardListResult{Cards: cards}, nil
}

func (s *appService) CreateCard(ctx context.Context, req CreateCardRequest) (*CardResult, error) {
	card, err := s.payments.CreateCard(ctx, req.Name, req.ClosingDay)
	if err != nil {
		return nil, err
	}
	return &CardResult{Card: card}, nil
}

// ── Transactions ──────────────────────────────────────────────────────────────

func (s *appService) RegisterTransaction(ctx context.Context, req RegisterTransactionRequest) (*TransactionResult, error) {
	txDate, err := parseDate(req.TransactionDate)
	if err != nil {
		return nil, err
	}

	result, err := s.transactions.RegisterTransaction(ctx, core.RegisterInput{
		Type:             req.Type,
		ProductID:        req.ProductID,
		Quantity:         req.Quantity,
		UnitCost:         req.UnitCost,
		CardID:           req.CardID,
		Method:           req.Method,
		TotalAmount:      req.TotalAmount,
		InstallmentCount: req.InstallmentCount,
		TransactionDate:  txDate,
		Description:      req.Description,
		IdempotencyBase:  req.IdempotencyKey,
	})
	if err != nil {
		return nil, err
	}
	return &TransactionResult{
		Transaction: result.Transaction,
		Payments:    result.Payments,
		LotID:       result.LotID,
	}, nil
}

func (s *appService) ListTransactions(ctx context.Context, txType *string) (*TransactionListResult, error) {
	list, err := s.transactions.GetTransactions(ctx, txType)
	if err != nil {
		return nil, err
	}
	return &TransactionListResult{Transactions: list}, nil
}

func (s *appService) GetTransaction(ctx context.Context, id uuid.UUID) (*core.Transaction, error) {
	return s.transactions.GetTransaction(ctx, id)
}

// ── Reporting ─────────────────────────────────────────────────────────────────

func (s *appService) GetCardStatement(ctx context.Context, cardID uuid.UUID, cycleDate time.Time) (*core.CardStatement, error) {
	return s.reports.GetCardStatement(ctx, cardID, cycleDate)
}

func (s *appService) GetPurchaseGroups(ctx context.Context, cardID uuid.UUID, from, to time.Time) (*PurchaseGroupsResult, error) {
	groups, err := s.reports.GetPurchaseGroups(ctx, cardID, from, to)
	if err != nil {
		return nil, err
	}
	return &PurchaseGroupsResult{CardID: cardID, Groups: groups}, nil
}

func (s *appService) GetMonthlySpend(ctx context.Context, cardID uuid.UUID, year int) (*MonthlySpendResult, error) {
	lines, err := s.reports.GetMonthlySpend(ctx, cardID, year)
	if err != nil {
		return nil, err
	}
	return &MonthlySpendResult{CardID: cardID, Year: year, Lines: lines}, nil
}

func (s *appService) ComputeBillingCycle(ctx context.Context, cardID uuid.UUID, txDate time.Time) (*BillingCycleResult, error) {
	card, err := s.payments.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if txDate.IsZero() {
		txDate = time.Now()
	}

	cycle := core.BillingCycleDate(card.ClosingDay, txDate)
	return &BillingCycleResult{
		CardID:          card.ID,
		ClosingDay:      card.ClosingDay,
		TransactionDate: txDate,
		CycleDate:       cycle,
		NextCycleDate:   core.AddMonthsClamped(cycle, 1),
	}, nil
}

// ── private helpers ───────────────────────────────────────────────────────────

// parseDate parses a YYYY-MM-DD string; empty means today.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return d, nil
}
