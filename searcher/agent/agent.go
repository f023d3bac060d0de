package agent

import (
	"quarto/experiments/metrics"
	"quarto/game"
)

type Agent interface {
	// FindMove returns a move for the player to move and performance metrics (if collected) from the search
	FindMove(state *game.GameState) (game.Move, metrics.SearchMetric, error)
}
