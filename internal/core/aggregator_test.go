package core_test

import (
	"testing"
	"time"

	"pos-backend/internal/core"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func payment(desc string, amount string, count, index int, cardID, parentID *uuid.UUID, cycle time.Time) core.PaymentRecord {
	return core.PaymentRecord{
		ID:               uuid.New(),
		TransactionID:    parentID,
		CardID:           cardID,
		Method:           core.MethodCredit,
		Amount:           decimal.RequireFromString(amount),
		TransactionDate:  cycle,
		BillingCycleDate: cycle,
		InstallmentCount: count,
		InstallmentIndex: index,
		IsInstallment:    count > 1,
		Description:      desc,
	}
}

func TestAggregatePurchases_ExplicitParentLink(t *testing.T) {
	cardID := uuid.New()
	parent := uuid.New()

	records := []core.PaymentRecord{
		payment("TV (Cuota 1/2)", "500.00", 2, 1, &cardID, &parent, date(2026, time.March, 10)),
		payment("TV (Cuota 2/2)", "500.00", 2, 2, &cardID, &parent, date(2026, time.April, 10)),
	}

	groups := core.AggregatePurchases(records)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}

	g := groups[0]
	if g.Key != parent.String() {
		t.Errorf("group key = %q, want parent id %q", g.Key, parent)
	}
	if g.BaseDescription != "TV" {
		t.Errorf("base description = %q, want TV", g.BaseDescription)
	}
	if g.InstallmentCount != 2 {
		t.Errorf("installment count = %d, want 2", g.InstallmentCount)
	}
	if !g.Total.Equal(decimal.RequireFromString("1000.00")) {
		t.Errorf("total = %s, want 1000.00", g.Total)
	}
	if !g.FirstPaymentDate.Equal(date(2026, time.March, 10)) {
		t.Errorf("first payment date = %s, want 2026-03-10", g.FirstPaymentDate.Format("2006-01-02"))
	}
	if len(g.Members) != 2 {
		t.Errorf("members = %d, want 2", len(g.Members))
	}
}

func TestAggregatePurchases_PatternFallbackWithoutLink(t *testing.T) {
	cardID := uuid.New()

	records := []core.PaymentRecord{
		payment("TV (Cuota 1/2)", "500.00", 2, 1, &cardID, nil, date(2026, time.March, 10)),
		payment("TV (Cuota 2/2)", "500.00", 2, 2, &cardID, nil, date(2026, time.April, 10)),
	}

	groups := core.AggregatePurchases(records)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group from pattern fallback, got %d", len(groups))
	}
	g := groups[0]
	if g.BaseDescription != "TV" {
		t.Errorf("base description = %q, want TV", g.BaseDescription)
	}
	if len(g.Members) != 2 {
		t.Errorf("members = %d, want 2", len(g.Members))
	}
	if !g.Total.Equal(decimal.RequireFromString("1000.00")) {
		t.Errorf("total = %s, want 1000.00", g.Total)
	}
}

func TestAggregatePurchases_SameBaseDifferentCardDoesNotMerge(t *testing.T) {
	cardA := uuid.New()
	cardB := uuid.New()

	records := []core.PaymentRecord{
		payment("TV (Cuota 1/2)", "500.00", 2, 1, &cardA, nil, date(2026, time.March, 10)),
		payment("TV (Cuota 1/2)", "300.00", 2, 1, &cardB, nil, date(2026, time.March, 15)),
	}

	groups := core.AggregatePurchases(records)
	if len(groups) != 2 {
		t.Fatalf("records on different cards must not merge, got %d group(s)", len(groups))
	}
}

func TestAggregatePurchases_PlainDescriptionIsSingleton(t *testing.T) {
	cardID := uuid.New()
	rec := payment("Supermercado", "84.50", 1, 1, &cardID, nil, date(2026, time.March, 12))

	groups := core.AggregatePurchases([]core.PaymentRecord{rec})
	if len(groups) != 1 {
		t.Fatalf("expected 1 singleton group, got %d", len(groups))
	}
	g := groups[0]
	if g.Key != rec.ID.String() {
		t.Errorf("singleton key = %q, want record id %q", g.Key, rec.ID)
	}
	if g.InstallmentCount != 1 {
		t.Errorf("singleton installment count = %d, want 1", g.InstallmentCount)
	}
	if !g.Total.Equal(rec.Amount) {
		t.Errorf("singleton total = %s, want %s", g.Total, rec.Amount)
	}
}

func TestAggregatePurchases_MalformedSuffixFallsThrough(t *testing.T) {
	cardID := uuid.New()
	records := []core.PaymentRecord{
		payment("Regalo (Cuota x/y)", "10.00", 1, 1, &cardID, nil, date(2026, time.March, 1)),
		payment("Nafta (Cuota 0/0)", "20.00", 1, 1, &cardID, nil, date(2026, time.March, 2)),
		payment("(Cuota", "30.00", 1, 1, &cardID, nil, date(2026, time.March, 3)),
	}

	groups := core.AggregatePurchases(records)
	if len(groups) != 3 {
		t.Fatalf("malformed descriptions must each form a singleton, got %d group(s)", len(groups))
	}
}

func TestAggregatePurchases_CaseInsensitiveAndWhitespace(t *testing.T) {
	cardID := uuid.New()
	records := []core.PaymentRecord{
		payment("  Notebook ( CUOTA 1 / 6 ) ", "150.00", 6, 1, &cardID, nil, date(2026, time.February, 5)),
		payment("Notebook (cuota 2/6)", "150.00", 6, 2, &cardID, nil, date(2026, time.March, 5)),
	}

	groups := core.AggregatePurchases(records)
	if len(groups) != 1 {
		t.Fatalf("case/whitespace variants must group together, got %d group(s)", len(groups))
	}
	if groups[0].BaseDescription != "Notebook" {
		t.Errorf("base description = %q, want Notebook", groups[0].BaseDescription)
	}
	if groups[0].InstallmentCount != 6 {
		t.Errorf("installment count = %d, want 6", groups[0].InstallmentCount)
	}
}

func TestAggregatePurchases_MembersSortedByIndex(t *testing.T) {
	cardID := uuid.New()
	parent := uuid.New()

	records := []core.PaymentRecord{
		payment("Silla (Cuota 3/3)", "40.00", 3, 3, &cardID, &parent, date(2026, time.May, 10)),
		payment("Silla (Cuota 1/3)", "40.00", 3, 1, &cardID, &parent, date(2026, time.March, 10)),
		payment("Silla (Cuota 2/3)", "40.00", 3, 2, &cardID, &parent, date(2026, time.April, 10)),
	}

	groups := core.AggregatePurchases(records)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	for i, m := range groups[0].Members {
		if m.InstallmentIndex != i+1 {
			t.Errorf("member %d has index %d, want %d", i, m.InstallmentIndex, i+1)
		}
	}
	if !groups[0].FirstPaymentDate.Equal(date(2026, time.March, 10)) {
		t.Errorf("first payment date = %s, want the earliest cycle", groups[0].FirstPaymentDate.Format("2006-01-02"))
	}
}

func TestAggregatePurchases_MixedCollection(t *testing.T) {
	cardID := uuid.New()
	parent := uuid.New()

	records := []core.PaymentRecord{
		// Linked pair.
		payment("Heladera (Cuota 1/2)", "250.00", 2, 1, &cardID, &parent, date(2026, time.March, 10)),
		payment("Heladera (Cuota 2/2)", "250.00", 2, 2, &cardID, &parent, date(2026, time.April, 10)),
		// Unlinked pair, pattern only.
		payment("Mesa (Cuota 1/2)", "100.00", 2, 1, &cardID, nil, date(2026, time.March, 10)),
		payment("Mesa (Cuota 2/2)", "100.00", 2, 2, &cardID, nil, date(2026, time.April, 10)),
		// Standalone.
		payment("Farmacia", "32.75", 1, 1, &cardID, nil, date(2026, time.March, 18)),
	}

	groups := core.AggregatePurchases(records)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}

	// Every record lands in exactly one group.
	total := 0
	for _, g := range groups {
		total += len(g.Members)
	}
	if total != len(records) {
		t.Errorf("group members cover %d records, want %d", total, len(records))
	}
}

func TestAggregatePurchases_EmptyInput(t *testing.T) {
	if groups := core.AggregatePurchases(nil); len(groups) != 0 {
		t.Errorf("expected no groups for empty input, got %d", len(groups))
	}
}
