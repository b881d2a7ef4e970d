package core_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"pos-backend/internal/core"

	"github.com/shopspring/decimal"
)

func TestBuildInstallmentPlan_EvenSplit(t *testing.T) {
	// 300 / 3 with closing day 10: base cycle is March 10, then one and two
	// months later.
	drafts, err := core.BuildInstallmentPlan(
		decimal.NewFromInt(300), 3, date(2026, time.March, 5), 10, "Heladera", "tx-abc",
	)
	if err != nil {
		t.Fatalf("BuildInstallmentPlan failed: %v", err)
	}
	if len(drafts) != 3 {
		t.Fatalf("expected 3 drafts, got %d", len(drafts))
	}

	wantCycles := []time.Time{
		date(2026, time.March, 10),
		date(2026, time.April, 10),
		date(2026, time.May, 10),
	}
	for i, d := range drafts {
		if !d.Amount.Equal(decimal.RequireFromString("100.00")) {
			t.Errorf("draft %d: amount = %s, want 100.00", i+1, d.Amount)
		}
		if d.InstallmentIndex != i+1 {
			t.Errorf("draft %d: index = %d, want %d", i+1, d.InstallmentIndex, i+1)
		}
		if d.InstallmentCount != 3 {
			t.Errorf("draft %d: count = %d, want 3", i+1, d.InstallmentCount)
		}
		if !d.IsInstallment {
			t.Errorf("draft %d: IsInstallment = false, want true", i+1)
		}
		wantSuffix := fmt.Sprintf("(Cuota %d/3)", i+1)
		if !strings.HasSuffix(d.Description, wantSuffix) {
			t.Errorf("draft %d: description %q does not end with %q", i+1, d.Description, wantSuffix)
		}
		wantKey := fmt.Sprintf("tx-abc-cuota-%d", i+1)
		if d.IdempotencyKey != wantKey {
			t.Errorf("draft %d: idempotency key = %q, want %q", i+1, d.IdempotencyKey, wantKey)
		}
		if !d.BillingCycleDate.Equal(wantCycles[i]) {
			t.Errorf("draft %d: cycle = %s, want %s", i+1,
				d.BillingCycleDate.Format("2006-01-02"), wantCycles[i].Format("2006-01-02"))
		}
	}
}

func TestBuildInstallmentPlan_RoundingDriftIsNotRedistributed(t *testing.T) {
	// 100 / 3 rounds to 33.33 per installment. The one-cent remainder is NOT
	// pushed into the last installment: the plan sums to 99.99, not 100.00.
	// This drift is accepted behavior — do not "fix" it.
	drafts, err := core.BuildInstallmentPlan(
		decimal.NewFromInt(100), 3, date(2026, time.January, 2), 10, "Zapatillas", "tx-def",
	)
	if err != nil {
		t.Fatalf("BuildInstallmentPlan failed: %v", err)
	}

	var sum decimal.Decimal
	for i, d := range drafts {
		if !d.Amount.Equal(decimal.RequireFromString("33.33")) {
			t.Errorf("draft %d: amount = %s, want 33.33", i+1, d.Amount)
		}
		sum = sum.Add(d.Amount)
	}
	if !sum.Equal(decimal.RequireFromString("99.99")) {
		t.Errorf("plan sum = %s, want 99.99", sum)
	}
	if sum.Equal(decimal.NewFromInt(100)) {
		t.Error("plan sum equals the original total; the rounding drift was silently corrected")
	}
}

func TestBuildInstallmentPlan_SinglePayment(t *testing.T) {
	drafts, err := core.BuildInstallmentPlan(
		decimal.RequireFromString("59.90"), 1, date(2026, time.June, 20), 15, "Pan", "tx-ghi",
	)
	if err != nil {
		t.Fatalf("BuildInstallmentPlan failed: %v", err)
	}
	if len(drafts) != 1 {
		t.Fatalf("expected 1 draft, got %d", len(drafts))
	}

	d := drafts[0]
	if !d.Amount.Equal(decimal.RequireFromString("59.90")) {
		t.Errorf("amount = %s, want 59.90", d.Amount)
	}
	if d.IsInstallment {
		t.Error("single payment must not be flagged as installment")
	}
	if d.InstallmentCount != 1 || d.InstallmentIndex != 1 {
		t.Errorf("count/index = %d/%d, want 1/1", d.InstallmentCount, d.InstallmentIndex)
	}
	if d.Description != "Pan" {
		t.Errorf("description = %q, want unsuffixed %q", d.Description, "Pan")
	}
	if d.IdempotencyKey != "tx-ghi" {
		t.Errorf("idempotency key = %q, want bare base", d.IdempotencyKey)
	}
	// June 20 is after closing day 15, so the cycle rolls to July.
	if want := date(2026, time.July, 15); !d.BillingCycleDate.Equal(want) {
		t.Errorf("cycle = %s, want %s", d.BillingCycleDate.Format("2006-01-02"), want.Format("2006-01-02"))
	}
}

func TestBuildInstallmentPlan_NoClosingDayUsesTransactionDate(t *testing.T) {
	// Cash payments have no statement cycle; the cycle date is the
	// transaction date itself.
	drafts, err := core.BuildInstallmentPlan(
		decimal.NewFromInt(25), 1, date(2026, time.May, 3), 0, "Cafe", "tx-jkl",
	)
	if err != nil {
		t.Fatalf("BuildInstallmentPlan failed: %v", err)
	}
	if want := date(2026, time.May, 3); !drafts[0].BillingCycleDate.Equal(want) {
		t.Errorf("cycle = %s, want transaction date %s",
			drafts[0].BillingCycleDate.Format("2006-01-02"), want.Format("2006-01-02"))
	}
}

func TestBuildInstallmentPlan_CycleClampAcrossMonths(t *testing.T) {
	// Base cycle Jan 31: later installments clamp in short months but keep
	// the original day in long ones.
	drafts, err := core.BuildInstallmentPlan(
		decimal.NewFromInt(90), 3, date(2026, time.January, 20), 31, "TV", "tx-mno",
	)
	if err != nil {
		t.Fatalf("BuildInstallmentPlan failed: %v", err)
	}

	wantCycles := []time.Time{
		date(2026, time.January, 31),
		date(2026, time.February, 28),
		date(2026, time.March, 31),
	}
	for i, d := range drafts {
		if !d.BillingCycleDate.Equal(wantCycles[i]) {
			t.Errorf("draft %d: cycle = %s, want %s", i+1,
				d.BillingCycleDate.Format("2006-01-02"), wantCycles[i].Format("2006-01-02"))
		}
	}
}

func TestBuildInstallmentPlan_Validation(t *testing.T) {
	if _, err := core.BuildInstallmentPlan(decimal.Zero, 3, date(2026, time.March, 1), 10, "x", "k"); err == nil {
		t.Error("expected error for zero total")
	}
	if _, err := core.BuildInstallmentPlan(decimal.NewFromInt(-5), 1, date(2026, time.March, 1), 10, "x", "k"); err == nil {
		t.Error("expected error for negative total")
	}
	if _, err := core.BuildInstallmentPlan(decimal.NewFromInt(10), 0, date(2026, time.March, 1), 10, "x", "k"); err == nil {
		t.Error("expected error for zero installment count")
	}
}
