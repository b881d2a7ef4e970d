package core

// LotRanking decides which of two open lots is consumed first.
// It returns true when a should be drained before b.
//
// The ranking is injected into the stock service so the consumption policy
// is swappable and testable in isolation; it directly determines realized
// cost and therefore profit reporting.
type LotRanking func(a, b CostLot) bool

// RankLIFOHighestCost is the production policy: most recently created lot
// first, and among lots created at the same instant, the higher unit cost
// first. Deliberately LIFO, not FIFO.
func RankLIFOHighestCost(a, b CostLot) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.UnitCost.GreaterThan(b.UnitCost)
}

// RankFIFOLowestCost consumes oldest lots first, cheapest on ties.
// Not used in production flows; kept for reporting simulations and tests.
func RankFIFOLowestCost(a, b CostLot) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.UnitCost.LessThan(b.UnitCost)
}
