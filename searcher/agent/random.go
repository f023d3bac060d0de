package agent

import (
	"fmt"
	"quarto/experiments/metrics"
	"quarto/game"
	"quarto/searcher"
	"sync"
	"time"

	"golang.org/x/exp/rand"
)

type randomAgent struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomAgent returns a baseline agent that plays uniformly random legal moves.
func NewRandomAgent(seed uint64) Agent {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &randomAgent{rng: rand.New(rand.NewSource(seed))}
}

func (a *randomAgent) FindMove(state *game.GameState) (game.Move, metrics.SearchMetric, error) {
	metric := metrics.SearchMetric{Algorithm: metrics.Random, Goroutines: 1}
	if state.IsTerminal() || state.PendingPiece() == game.NoPiece {
		return game.Move{}, metric, fmt.Errorf("%w: nothing to play in this position", searcher.ErrNoLegalMove)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return searcher.RandomMove(state, a.rng), metric, nil
}
