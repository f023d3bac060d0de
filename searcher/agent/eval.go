package agent

import (
	"quarto/experiments/metrics"
	"quarto/game"
	"quarto/searcher"
)

type evaluationAgent struct {
	searcher searcher.Searcher
}

// NewEvaluationAgent returns a new agent that always plays the searcher's best move.
func NewEvaluationAgent(searcher searcher.Searcher) Agent {
	return evaluationAgent{searcher: searcher}
}

func (a evaluationAgent) FindMove(state *game.GameState) (game.Move, metrics.SearchMetric, error) {
	return a.searcher.FindNextMove(state)
}
