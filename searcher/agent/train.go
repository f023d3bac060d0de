package agent

import (
	"cmp"
	"fmt"
	"math"
	"math/rand/v2"
	"quarto/experiments/metrics"
	"quarto/game"
	"quarto/searcher"
	"slices"
	"sync"
)

type trainingAgent struct {
	mcts        *searcher.MCTS
	temperature float64
	mu          sync.Mutex
	rng         *rand.Rand
}

// NewTrainingAgent returns a new agent for self-play that samples moves in
// proportion to visits^(1/temperature).
func NewTrainingAgent(mcts *searcher.MCTS, temperature float64, seed uint64) Agent {
	if temperature <= 0 {
		panic(fmt.Sprintf("temperature must be positive, got %v", temperature))
	}
	return &trainingAgent{
		mcts:        mcts,
		temperature: temperature,
		rng:         rand.New(rand.NewPCG(seed, seed^0x5bd1e995)),
	}
}

func (a *trainingAgent) FindMove(state *game.GameState) (game.Move, metrics.SearchMetric, error) {
	visits, metric, err := a.mcts.Simulate(state)
	if err != nil {
		return game.Move{}, metric, err
	}
	policy := adjustTemperature(visits, a.temperature)

	a.mu.Lock()
	defer a.mu.Unlock()
	return sample(policy, a.rng.Float64()), metric, nil
}

type weightedMove struct {
	move game.Move
	prob float64
}

// adjustTemperature normalizes visit counts into move probabilities, ordered by move.
func adjustTemperature(visits map[game.Move]float64, temperature float64) []weightedMove {
	exponent := 1.0 / temperature
	sum := 0.0
	policy := make([]weightedMove, 0, len(visits))
	for move, visit := range visits {
		prob := math.Pow(visit, exponent)
		sum += prob
		policy = append(policy, weightedMove{move: move, prob: prob})
	}
	// Normalize
	for i := range policy {
		policy[i].prob /= sum
	}
	slices.SortFunc(policy, func(a, b weightedMove) int {
		return cmp.Or(
			cmp.Compare(a.move.Row, b.move.Row),
			cmp.Compare(a.move.Col, b.move.Col),
			cmp.Compare(a.move.Next, b.move.Next),
		)
	})
	return policy
}

func sample(policy []weightedMove, sampled float64) game.Move {
	cumulative := 0.0
	var lastMove game.Move
	for _, wm := range policy {
		lastMove = wm.move
		cumulative += wm.prob
		if sampled < cumulative {
			return wm.move
		}
	}
	return lastMove // Fallback in case of rounding errors
}
