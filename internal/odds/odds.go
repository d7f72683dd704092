// Package odds converts a pair of team ratings into win probabilities
// and decimal odds.
package odds

import (
	"fmt"
	"math"
)

// Line is a derived two-way market: win probabilities and the matching
// decimal odds for teams A and B.
type Line struct {
	ProbA float64
	ProbB float64
	OddsA float64
	OddsB float64
}

// Derive computes the line implied by two ratings using the same
// logistic curve the rating engine uses for expected scores. It returns
// an error when either probability underflows to zero - a rating gap
// that extreme means the ratings have diverged and the line would be a
// division by zero, so the caller should skip the match and flag it.
func Derive(ratingA, ratingB float64) (Line, error) {
	probA := 1 / (1 + math.Pow(10, (ratingB-ratingA)/400))
	probB := 1 - probA

	if probA <= 0 || probB <= 0 || math.IsNaN(probA) {
		return Line{}, fmt.Errorf("degenerate probability for ratings %.1f vs %.1f", ratingA, ratingB)
	}

	return Line{
		ProbA: probA,
		ProbB: probB,
		OddsA: 1 / probA,
		OddsB: 1 / probB,
	}, nil
}

// Round trims a decimal odd to the two decimal places that get
// published.
func Round(odd float64) float64 {
	return math.Round(odd*100) / 100
}
