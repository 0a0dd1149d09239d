// Package credit holds the credit score model and the treasury credit limit.
package credit

const (
	MinScore     = 0
	MaxScore     = 1000
	DefaultScore = 500

	// Minimum score needed to open a peer loan request.
	MinScoreForPeerLoan = 300

	SettlementBonus = 50
	ProgressBonus   = 5
	DefaultPenalty  = 100
)

func Clamp(score int) int {
	return max(MinScore, min(MaxScore, score))
}

// Adjust applies delta and clamps the result. Out-of-range input is
// clamped too, so callers always observe a score within bounds.
func Adjust(score, delta int) int {
	return Clamp(Clamp(score) + delta)
}

func EligibleForPeerLoan(score int) bool { return score >= MinScoreForPeerLoan }
