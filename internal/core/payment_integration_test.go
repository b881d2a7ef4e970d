package core_test

import (
	"context"
	"testing"
	"time"

	"pos-backend/internal/core"

	"github.com/shopspring/decimal"
)

func TestPayments_ScheduleThreeInstallments(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	paySvc := core.NewPaymentService(pool)
	cardID := createTestCard(t, ctx, pool, "Visa", 10)

	records, err := paySvc.ScheduleInstallments(ctx, core.ScheduleInput{
		TotalAmount:      decimal.RequireFromString("300.00"),
		Method:           core.MethodCredit,
		InstallmentCount: 3,
		TransactionDate:  time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC),
		CardID:           &cardID,
		Description:      "Zapatillas",
		IdempotencyBase:  "compra-zapatillas",
	})
	if err != nil {
		t.Fatalf("ScheduleInstallments failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 payment records, got %d", len(records))
	}

	wantCycles := []time.Time{
		time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.April, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.May, 10, 0, 0, 0, 0, time.UTC),
	}
	sum := decimal.Zero
	for i, rec := range records {
		if !rec.Amount.Equal(decimal.RequireFromString("100.00")) {
			t.Errorf("installment %d amount = %s, want 100.00", i+1, rec.Amount)
		}
		if !rec.BillingCycleDate.Equal(wantCycles[i]) {
			t.Errorf("installment %d cycle = %s, want %s",
				i+1, rec.BillingCycleDate.Format("2006-01-02"), wantCycles[i].Format("2006-01-02"))
		}
		if rec.InstallmentIndex != i+1 || rec.InstallmentCount != 3 {
			t.Errorf("installment %d carries %d/%d", i+1, rec.InstallmentIndex, rec.InstallmentCount)
		}
		if !rec.IsInstallment {
			t.Errorf("installment %d not flagged as installment", i+1)
		}
		if rec.TransactionID != nil {
			t.Errorf("direct scheduling must not set a parent link, got %s", rec.TransactionID)
		}
		sum = sum.Add(rec.Amount)
	}
	if !sum.Equal(decimal.RequireFromString("300.00")) {
		t.Errorf("plan sum = %s, want 300.00", sum)
	}

	if records[0].Description != "Zapatillas (Cuota 1/3)" {
		t.Errorf("first description = %q", records[0].Description)
	}
	if records[2].IdempotencyKey != "compra-zapatillas-cuota-3" {
		t.Errorf("third idempotency key = %q", records[2].IdempotencyKey)
	}
}

func TestPayments_DuplicateIdempotencyAbortsWholeBatch(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	paySvc := core.NewPaymentService(pool)
	cardID := createTestCard(t, ctx, pool, "Mastercard", 15)

	in := core.ScheduleInput{
		TotalAmount:      decimal.RequireFromString("150.00"),
		Method:           core.MethodCredit,
		InstallmentCount: 3,
		TransactionDate:  time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
		CardID:           &cardID,
		Description:      "Libros",
		IdempotencyBase:  "compra-libros",
	}

	if _, err := paySvc.ScheduleInstallments(ctx, in); err != nil {
		t.Fatalf("first scheduling failed: %v", err)
	}

	// Replaying the same base must not insert anything, not even the
	// installments whose keys would be new in a partially-deleted state.
	if _, err := paySvc.ScheduleInstallments(ctx, in); err == nil {
		t.Fatal("expected duplicate idempotency key to fail the batch")
	}

	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM payments").Scan(&count); err != nil {
		t.Fatalf("Failed to count payments: %v", err)
	}
	if count != 3 {
		t.Errorf("payments count = %d, want 3 (replay must add nothing)", count)
	}
}

func TestPayments_SingleCashPaymentUsesTransactionDate(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	paySvc := core.NewPaymentService(pool)
	txDate := time.Date(2026, time.July, 22, 0, 0, 0, 0, time.UTC)

	records, err := paySvc.ScheduleInstallments(ctx, core.ScheduleInput{
		TotalAmount:      decimal.RequireFromString("80.50"),
		Method:           core.MethodCash,
		InstallmentCount: 1,
		TransactionDate:  txDate,
		Description:      "Ferreteria",
		IdempotencyBase:  "gasto-ferreteria",
	})
	if err != nil {
		t.Fatalf("ScheduleInstallments failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if !rec.BillingCycleDate.Equal(txDate) {
		t.Errorf("cash payment cycle = %s, want the transaction date %s",
			rec.BillingCycleDate.Format("2006-01-02"), txDate.Format("2006-01-02"))
	}
	if rec.IsInstallment {
		t.Error("single payment flagged as installment")
	}
	if rec.Description != "Ferreteria" {
		t.Errorf("single payment description = %q, want no suffix", rec.Description)
	}
	if rec.IdempotencyKey != "gasto-ferreteria" {
		t.Errorf("single payment key = %q, want the bare base", rec.IdempotencyKey)
	}
}

func TestPayments_InstallmentsRequireCredit(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	paySvc := core.NewPaymentService(pool)
	cardID := createTestCard(t, ctx, pool, "Visa Debito", 5)

	_, err := paySvc.ScheduleInstallments(ctx, core.ScheduleInput{
		TotalAmount:      decimal.RequireFromString("200.00"),
		Method:           core.MethodDebit,
		InstallmentCount: 3,
		TransactionDate:  time.Date(2026, time.May, 2, 0, 0, 0, 0, time.UTC),
		CardID:           &cardID,
	})
	if err == nil {
		t.Fatal("expected debit installment plan to be rejected")
	}

	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM payments").Scan(&count); err != nil {
		t.Fatalf("Failed to count payments: %v", err)
	}
	if count != 0 {
		t.Errorf("payments count = %d, want 0", count)
	}
}

func TestPayments_CardMethodResolvesClosingDay(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	paySvc := core.NewPaymentService(pool)
	cardID := createTestCard(t, ctx, pool, "Amex", 28)

	// Purchase on the 29th lands after the cycle closed: next month's 28th.
	records, err := paySvc.ScheduleInstallments(ctx, core.ScheduleInput{
		TotalAmount:      decimal.RequireFromString("500.00"),
		Method:           core.MethodDebit,
		InstallmentCount: 1,
		TransactionDate:  time.Date(2026, time.January, 29, 0, 0, 0, 0, time.UTC),
		CardID:           &cardID,
		Description:      "Supermercado",
	})
	if err != nil {
		t.Fatalf("ScheduleInstallments failed: %v", err)
	}

	want := time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC)
	if !records[0].BillingCycleDate.Equal(want) {
		t.Errorf("cycle = %s, want %s",
			records[0].BillingCycleDate.Format("2006-01-02"), want.Format("2006-01-02"))
	}
}
