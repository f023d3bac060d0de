package searcher

import "math"

// uct scores children of a node visited N times with UCB1:
// q/n + sqrt(c^2*ln(N)/n).
type uct struct {
	numerator float64
}

func newUCT(cSquared float64, N int) *uct {
	if N == 0 {
		panic("N cannot be 0")
	}
	return &uct{numerator: cSquared * math.Log(float64(N))}
}

func (u uct) evaluate(q float64, n int) float64 {
	// Prioritize unexplored nodes
	if n == 0 {
		return math.Inf(1)
	}
	return q/float64(n) + math.Sqrt(u.numerator/float64(n))
}
