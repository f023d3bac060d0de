package searcher

import (
	"fmt"
	"math"
	"quarto/experiments/metrics"
	"quarto/game"

	"github.com/rs/zerolog/log"
)

type MinimaxOption func(m *Minimax)

// Minimax is a depth-limited full-width search without pruning.
type Minimax struct {
	depth    int
	evaluate game.Evaluate
	collect  bool
	seeds    *seeder
}

func WithEvaluationFn(evaluate game.Evaluate) MinimaxOption {
	return func(m *Minimax) {
		if evaluate != nil {
			m.evaluate = evaluate
		}
	}
}

func WithMinimaxSeed(seed uint64) MinimaxOption {
	return func(m *Minimax) {
		m.seeds = newSeeder(seed)
	}
}

func WithMinimaxMetrics() MinimaxOption {
	return func(m *Minimax) {
		m.collect = true
	}
}

func NewMinimax(depth int, options ...MinimaxOption) *Minimax {
	mustDepth(depth)
	m := &Minimax{
		depth:    depth,
		evaluate: game.EvaluateAlignment,
		seeds:    newSeeder(0),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

func mustDepth(depth int) {
	if depth < 1 {
		panic(fmt.Sprintf("minimax depth must be at least 1, got %d", depth))
	}
}

// BestMove returns the move with the highest minimax value for the player to
// move. Root moves are shuffled and the first one reaching the maximum wins.
func (m *Minimax) BestMove(state *game.GameState, depth int) (game.Move, error) {
	move, _, err := m.search(state, depth)
	return move, err
}

func (m *Minimax) FindNextMove(state *game.GameState) (game.Move, metrics.SearchMetric, error) {
	return m.search(state, m.depth)
}

func (m *Minimax) search(state *game.GameState, depth int) (game.Move, metrics.SearchMetric, error) {
	mustDepth(depth)
	collector := newCollector(m.collect)
	collector.Start(metrics.Minimax, 1, depth)

	moves := state.LegalMoves()
	if len(moves) == 0 {
		return game.Move{}, collector.Complete(), fmt.Errorf("%w: nothing to play in this position", ErrNoLegalMove)
	}
	rng := m.seeds.next()
	rng.Shuffle(len(moves), func(i, j int) { moves[i], moves[j] = moves[j], moves[i] })

	player := state.CurrentPlayer()
	best, maxScore := moves[0], math.MinInt
	for _, move := range moves {
		collector.AddNode()
		score := m.minimax(play(state, move), depth-1, false, player, collector)
		if score > maxScore {
			best, maxScore = move, score
		}
	}

	metric := collector.Complete()
	log.Debug().Msgf("minimax chose %v with value %d at depth %d", best, maxScore, depth)
	return best, metric, nil
}

// minimax values state for player; maximizing is true when player is to move.
func (m *Minimax) minimax(state *game.GameState, depth int, maximizing bool, player game.Player, collector metrics.Collector) int {
	if depth == 0 || state.IsTerminal() {
		switch state.Winner() {
		case player:
			return WinScore
		case player.Opponent():
			return LossScore
		default:
			return m.evaluate(state, player)
		}
	}

	value := math.MaxInt
	if maximizing {
		value = math.MinInt
	}
	for move := range state.Moves() {
		collector.AddNode()
		score := m.minimax(play(state, move), depth-1, !maximizing, player, collector)
		if maximizing {
			value = max(value, score)
		} else {
			value = min(value, score)
		}
	}
	return value
}
