package engine

import (
	"quarto/experiments/metrics"
	"quarto/game"
)

// MaxMoves bounds a game; every move fills a cell.
const MaxMoves = game.NumCells

type Engine interface {
	// Run plays a game till it is over, or stops at the first agent or move error
	Run() (winner game.Player, gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric, err error)
}
