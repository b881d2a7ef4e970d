package core

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// cuotaPattern matches descriptions of the form "<base> (Cuota <i>/<N>)",
// case-insensitively, tolerating surrounding whitespace. It is the fallback
// correlation key for installment records whose explicit parent link was
// never persisted.
var cuotaPattern = regexp.MustCompile(`(?i)^\s*(.*?)\s*\(\s*cuota\s+(\d+)\s*/\s*(\d+)\s*\)\s*$`)

// parseCuotaSuffix extracts (base, index, total) from a description, or
// ok=false when the description does not carry the suffix.
func parseCuotaSuffix(description string) (base string, index, total int, ok bool) {
	m := cuotaPattern.FindStringSubmatch(description)
	if m == nil {
		return "", 0, 0, false
	}
	index, errI := strconv.Atoi(m[2])
	total, errT := strconv.Atoi(m[3])
	if errI != nil || errT != nil || index < 1 || total < 1 {
		return "", 0, 0, false
	}
	return strings.TrimSpace(m[1]), index, total, true
}

// AggregatePurchases reconstructs logical purchase groups from a flat
// collection of payment records.
//
// Per record: an explicit parent link keys the group directly; otherwise a
// parseable "(Cuota i/N)" suffix synthesizes a key from the base
// description, the plan size, and the card; anything else becomes a
// singleton group keyed by the record's own id.
//
// This is best-effort reconciliation over structurally ambiguous data. It is
// read-only and never fails: malformed descriptions fall through to the
// singleton case. The fallback key is a heuristic; two unrelated records
// that happen to share base text, plan size, and card will merge.
func AggregatePurchases(records []PaymentRecord) []PurchaseGroup {
	groups := make(map[string]*PurchaseGroup)
	var order []string

	for _, rec := range records {
		key, baseDesc, planSize := groupKeyFor(rec)

		g, seen := groups[key]
		if !seen {
			g = &PurchaseGroup{
				Key:              key,
				BaseDescription:  baseDesc,
				CardID:           rec.CardID,
				InstallmentCount: planSize,
				FirstPaymentDate: rec.BillingCycleDate,
			}
			groups[key] = g
			order = append(order, key)
		}

		if planSize > g.InstallmentCount {
			g.InstallmentCount = planSize
		}
		if rec.BillingCycleDate.Before(g.FirstPaymentDate) {
			g.FirstPaymentDate = rec.BillingCycleDate
		}
		g.Total = g.Total.Add(rec.Amount)
		g.Members = append(g.Members, rec)
	}

	out := make([]PurchaseGroup, 0, len(order))
	for _, key := range order {
		g := groups[key]
		sort.SliceStable(g.Members, func(i, j int) bool {
			a, b := g.Members[i], g.Members[j]
			if a.InstallmentIndex != b.InstallmentIndex {
				return a.InstallmentIndex < b.InstallmentIndex
			}
			return a.BillingCycleDate.Before(b.BillingCycleDate)
		})
		out = append(out, *g)
	}
	return out
}

// groupKeyFor resolves the grouping key, base description, and plan size
// for one record, in the priority order described on AggregatePurchases.
func groupKeyFor(rec PaymentRecord) (key, baseDesc string, planSize int) {
	base, _, total, parsed := parseCuotaSuffix(rec.Description)
	if parsed {
		baseDesc = base
		planSize = total
	} else {
		baseDesc = strings.TrimSpace(rec.Description)
		planSize = rec.InstallmentCount
	}
	if planSize < 1 {
		planSize = 1
	}

	if rec.TransactionID != nil {
		return rec.TransactionID.String(), baseDesc, planSize
	}

	if parsed {
		cardKey := ""
		if rec.CardID != nil {
			cardKey = rec.CardID.String()
		}
		return fmt.Sprintf("%s_%d_%s", baseDesc, total, cardKey), baseDesc, planSize
	}

	return rec.ID.String(), baseDesc, 1
}
