package searcher

import (
	"fmt"
	"quarto/experiments/metrics"
	"quarto/game"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

type Option func(mcts *MCTS)

type MCTS struct {
	goroutines   int
	iterations   int
	duration     time.Duration
	moverRewards bool
	collect      bool
	seeds        *seeder
}

func WithIterations(iterations int) Option {
	return func(m *MCTS) {
		if iterations > 0 {
			m.iterations = iterations
		}
	}
}

func WithDuration(duration time.Duration) Option {
	return func(m *MCTS) {
		if duration > 0 {
			m.duration = duration
		}
	}
}

// WithGoroutines grows that many independent trees and merges their root statistics.
func WithGoroutines(goroutines int) Option {
	return func(m *MCTS) {
		if goroutines > 0 {
			m.goroutines = goroutines
		}
	}
}

func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.seeds = newSeeder(seed)
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.collect = true
	}
}

// WithMoverRewards scores each node by the wins of the player who moved into it
// instead of the wins of the player the search runs for.
func WithMoverRewards() Option {
	return func(m *MCTS) {
		m.moverRewards = true
	}
}

func NewMCTS(options ...Option) *MCTS {
	m := &MCTS{ // Default values
		goroutines: 1,
		seeds:      newSeeder(0),
	}
	for _, option := range options {
		option(m)
	}
	if m.iterations <= 0 && m.duration <= 0 {
		panic("Must specify search iterations or duration")
	}
	return m
}

// BestMove searches state for at most iterations iterations and at most
// timeLimit, whichever is exhausted first. A non-positive value disables that budget.
func (m *MCTS) BestMove(state *game.GameState, iterations int, timeLimit time.Duration) (game.Move, error) {
	move, _, err := m.search(state, iterations, timeLimit)
	return move, err
}

func (m *MCTS) FindNextMove(state *game.GameState) (game.Move, metrics.SearchMetric, error) {
	return m.search(state, m.iterations, m.duration)
}

// Simulate returns the visit count of every explored root move.
func (m *MCTS) Simulate(state *game.GameState) (map[game.Move]float64, metrics.SearchMetric, error) {
	stats, metric, err := m.run(state, m.iterations, m.duration)
	if err != nil {
		return nil, metric, err
	}
	policy := make(map[game.Move]float64, len(stats))
	for _, stat := range stats {
		policy[stat.move] = float64(stat.visits)
	}
	return policy, metric, nil
}

func (m *MCTS) search(state *game.GameState, iterations int, timeLimit time.Duration) (game.Move, metrics.SearchMetric, error) {
	stats, metric, err := m.run(state, iterations, timeLimit)
	if err != nil {
		return game.Move{}, metric, err
	}

	best := stats[0]
	for _, stat := range stats[1:] {
		if stat.visits > best.visits {
			best = stat
		}
	}
	log.Debug().Msgf("mcts chose %v after %d episodes: %d visits, %.3f win rate",
		best.move, metric.Episodes, best.visits, best.rewards/float64(best.visits))
	return best.move, metric, nil
}

const unbounded = -1

func (m *MCTS) run(state *game.GameState, iterations int, timeLimit time.Duration) ([]childStat, metrics.SearchMetric, error) {
	collector := newCollector(m.collect)
	collector.Start(metrics.MCTS, m.goroutines, 0)

	if state.IsTerminal() {
		return nil, collector.Complete(), fmt.Errorf("%w: game is over", ErrNoLegalMove)
	}
	if state.PendingPiece() == game.NoPiece {
		return nil, collector.Complete(), fmt.Errorf("%w: no piece to place", ErrNoLegalMove)
	}

	perspective := state.CurrentPlayer()
	if m.moverRewards {
		perspective = game.NoPlayer
	}
	var deadline time.Time
	if timeLimit > 0 {
		deadline = time.Now().Add(timeLimit)
	}

	shares := split(iterations, timeLimit, m.goroutines)
	trees := make([][]childStat, len(shares))
	var g errgroup.Group
	for i, share := range shares {
		rng := m.seeds.next()
		g.Go(func() error {
			root := newNode(nil, game.Move{}, state.Clone())
			grow(root, share, deadline, perspective, rng, collector)
			trees[i] = root.stats()
			return nil
		})
	}
	_ = g.Wait()

	metric := collector.Complete()
	stats := merge(trees)
	if len(stats) == 0 {
		return nil, metric, fmt.Errorf("%w: budget exhausted before any move was explored", ErrNoLegalMove)
	}
	return stats, metric, nil
}

// split divides the iteration budget between goroutines. Without an
// iteration budget each goroutine runs until the deadline.
func split(iterations int, timeLimit time.Duration, goroutines int) []int {
	shares := make([]int, goroutines)
	for i := range shares {
		switch {
		case iterations > 0:
			shares[i] = iterations / goroutines
			if i < iterations%goroutines {
				shares[i]++
			}
		case timeLimit > 0:
			shares[i] = unbounded
		}
	}
	return shares
}

func grow(root *node, limit int, deadline time.Time, perspective game.Player, rng *rand.Rand, collector metrics.Collector) {
	for i := 0; limit == unbounded || i < limit; i++ {
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			return
		}
		simulate(root, perspective, rng, collector)
		collector.AddEpisode()
	}
}

func simulate(root *node, perspective game.Player, rng *rand.Rand, collector metrics.Collector) {
	leaf, expanded := selectThenExpand(root, rng)
	if expanded {
		collector.AddNode()
	}
	winner := rollout(leaf.state, rng, collector)
	backup(leaf, winner, perspective)
}

// rollout plays uniformly random moves on a copy of state until the game ends.
func rollout(state *game.GameState, rng *rand.Rand, collector metrics.Collector) game.Player {
	if state.IsTerminal() {
		return state.Winner()
	}
	state = state.Clone()
	for !state.IsTerminal() {
		if err := state.MakeMove(RandomMove(state, rng)); err != nil {
			panic(fmt.Sprintf("random rollout produced an illegal move: %v", err))
		}
	}
	collector.AddPlayout()
	return state.Winner()
}

// merge sums the root statistics of independent trees by move, keeping the
// order in which moves were first expanded.
func merge(trees [][]childStat) []childStat {
	index := make(map[game.Move]int)
	var merged []childStat
	for _, tree := range trees {
		for _, stat := range tree {
			if i, ok := index[stat.move]; ok {
				merged[i].visits += stat.visits
				merged[i].rewards += stat.rewards
				continue
			}
			index[stat.move] = len(merged)
			merged = append(merged, stat)
		}
	}
	return merged
}
