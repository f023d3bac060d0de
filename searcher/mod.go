package searcher

import (
	"errors"
	"fmt"
	"quarto/experiments/metrics"
	"quarto/game"
	"sync/atomic"
	"time"

	"golang.org/x/exp/rand"
)

// Hyperparameters for MCTS

const CSquared = 2.0 // Exploration constant C = sqrt(2)

// Use rewards to estimate the chance of winning
const Win = 1.0
const Loss = 1 - Win

// Minimax values of decided games
const WinScore = 1000
const LossScore = -WinScore

// ErrNoLegalMove is returned when a search is asked to move in a finished game
// or its budget ran out before any move was explored.
var ErrNoLegalMove = errors.New("no legal move")

// Searcher finds a move for the player to move in state without modifying it.
type Searcher interface {
	FindNextMove(state *game.GameState) (game.Move, metrics.SearchMetric, error)
}

func rewarder(winner game.Player) func(player game.Player) float64 {
	return func(player game.Player) float64 {
		if player == winner {
			return Win
		}
		return Loss
	}
}

// play returns a copy of state after move. Moves come from the move generator,
// so a rejected move is a bug in the game package.
func play(state *game.GameState, move game.Move) *game.GameState {
	next := state.Clone()
	if err := next.MakeMove(move); err != nil {
		panic(fmt.Sprintf("move generator produced an illegal move: %v", err))
	}
	return next
}

// RandomMove picks a placement and a piece to hand over uniformly at random.
func RandomMove(state *game.GameState, rng *rand.Rand) game.Move {
	placements := state.LegalPlacements()
	pos := placements[rng.Intn(len(placements))]
	next := game.NoPiece
	if pieces := state.LegalNextPieces(); len(pieces) > 0 {
		next = pieces[rng.Intn(len(pieces))]
	}
	return game.NewMove(pos.Row, pos.Col, next)
}

// seeder hands out independent random sources, one per search call.
type seeder struct {
	seed  uint64
	calls atomic.Uint64
}

func newSeeder(seed uint64) *seeder {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &seeder{seed: seed}
}

func (s *seeder) next() *rand.Rand {
	n := s.calls.Add(1)
	return rand.New(rand.NewSource(s.seed + n*0x9e3779b97f4a7c15))
}

func newCollector(enabled bool) metrics.Collector {
	if enabled {
		return metrics.NewCollector()
	}
	return metrics.NewDummyCollector()
}
