package credit

import (
	"github.com/shopspring/decimal"
)

// Capacities maps a job tier to its bank deposit ceiling.
type Capacities map[string]int64

var DefaultCapacities = Capacities{
	"unemployed": 5_000,
	"intern":     10_000,
	"cashier":    25_000,
	"engineer":   50_000,
	"manager":    100_000,
	"executive":  250_000,
}

const fallbackTier = "unemployed"

func (c Capacities) For(tier string) int64 {
	if v, ok := c[tier]; ok {
		return v
	}
	return c[fallbackTier]
}

var (
	capacityWeight = decimal.RequireFromString("0.3")
	worthWeight    = decimal.RequireFromString("0.1")
	scoreBase      = decimal.NewFromInt(DefaultScore)
)

// Limit is floor(((capacity × 0.3) + (netWorth × 0.1)) × (score / 500)),
// or 0 while the borrower has a dirty treasury loan.
func Limit(bankCapacity, netWorth int64, score int, dirty bool) int64 {
	if dirty {
		return 0
	}
	base := decimal.NewFromInt(bankCapacity).Mul(capacityWeight).
		Add(decimal.NewFromInt(netWorth).Mul(worthWeight))
	v := base.Mul(decimal.NewFromInt(int64(Clamp(score)))).Div(scoreBase).Floor().IntPart()
	return max(v, 0)
}
