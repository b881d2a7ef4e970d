package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentDraft is one not-yet-persisted payment produced by the plan
// builder. The payment service turns drafts into PaymentRecord rows.
type PaymentDraft struct {
	Amount           decimal.Decimal
	TransactionDate  time.Time
	BillingCycleDate time.Time
	InstallmentCount int
	InstallmentIndex int
	IsInstallment    bool
	Description      string
	IdempotencyKey   string
}

// BuildInstallmentPlan splits one economic event into n dated payment
// drafts aligned to the card's billing cycle.
//
// For n == 1 the single draft carries the full amount and the bare
// idempotency base. For n > 1 each draft carries total/n rounded to two
// decimals. The rounding remainder is NOT redistributed into the last
// installment: the sum of the drafts may differ from the total by up to
// half a cent per installment. The drift is accepted behavior and must not
// be corrected here.
//
// The base billing cycle is computed once from the transaction date; each
// subsequent installment advances it by whole months with day-of-month
// clamping. Descriptions get the " (Cuota i/N)" suffix that the aggregator
// later parses as its fallback correlation key.
func BuildInstallmentPlan(total decimal.Decimal, n int, txDate time.Time, closingDay int, description, idempotencyBase string) ([]PaymentDraft, error) {
	if !total.IsPositive() {
		return nil, fmt.Errorf("total amount must be positive, got %s", total)
	}
	if n < 1 {
		return nil, fmt.Errorf("installment count must be at least 1, got %d", n)
	}

	date := midnightUTC(txDate)
	baseCycle := date
	if closingDay > 0 {
		baseCycle = BillingCycleDate(closingDay, date)
	}

	if n == 1 {
		return []PaymentDraft{{
			Amount:           total,
			TransactionDate:  date,
			BillingCycleDate: baseCycle,
			InstallmentCount: 1,
			InstallmentIndex: 1,
			IsInstallment:    false,
			Description:      description,
			IdempotencyKey:   idempotencyBase,
		}}, nil
	}

	perInstallment := total.Div(decimal.NewFromInt(int64(n))).Round(2)

	drafts := make([]PaymentDraft, 0, n)
	for i := 1; i <= n; i++ {
		drafts = append(drafts, PaymentDraft{
			Amount:           perInstallment,
			TransactionDate:  date,
			BillingCycleDate: AddMonthsClamped(baseCycle, i-1),
			InstallmentCount: n,
			InstallmentIndex: i,
			IsInstallment:    true,
			Description:      fmt.Sprintf("%s (Cuota %d/%d)", description, i, n),
			IdempotencyKey:   fmt.Sprintf("%s-cuota-%d", idempotencyBase, i),
		})
	}
	return drafts, nil
}

// NewIdempotencyBase generates a fresh base key for a payment plan.
// Callers that need retry-safe submission should supply their own stable
// base instead.
func NewIdempotencyBase() string {
	return uuid.NewString()
}
