package searcher

import (
	"quarto/game"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewMCTS(t *testing.T) {
	t.Run("panics without a budget", func(t *testing.T) {
		require.Panics(t, func() { NewMCTS() })
	})

	t.Run("ignores non-positive options", func(t *testing.T) {
		m := NewMCTS(WithIterations(10), WithGoroutines(0), WithDuration(-time.Second))

		require.Equal(t, 1, m.goroutines)
		require.Zero(t, m.duration)
	})
}

func TestMCTSBestMove(t *testing.T) {
	t.Run("takes an immediate win", func(t *testing.T) {
		m := NewMCTS(WithIterations(3000), WithSeed(1))

		move, err := m.BestMove(nearRowWin(t), 3000, 0)

		require.NoError(t, err)
		require.Equal(t, game.Position{Row: 0, Col: 3}, move.Position())
	})

	t.Run("takes an immediate win with mover rewards", func(t *testing.T) {
		m := NewMCTS(WithIterations(3000), WithSeed(1), WithMoverRewards())

		move, _, err := m.FindNextMove(nearRowWin(t))

		require.NoError(t, err)
		require.Equal(t, game.Position{Row: 0, Col: 3}, move.Position())
	})

	t.Run("does not modify the state", func(t *testing.T) {
		gs := nearRowWin(t)
		before := gs.Encode()

		_, err := NewMCTS(WithIterations(200), WithSeed(1)).BestMove(gs, 200, 0)

		require.NoError(t, err)
		require.Equal(t, before, gs.Encode())
	})

	t.Run("same seed finds the same move", func(t *testing.T) {
		move1, err := NewMCTS(WithIterations(500), WithSeed(9)).BestMove(openRow(t), 500, 0)
		require.NoError(t, err)
		move2, err := NewMCTS(WithIterations(500), WithSeed(9)).BestMove(openRow(t), 500, 0)
		require.NoError(t, err)

		require.Equal(t, move1, move2)
	})

	t.Run("stops at the time limit", func(t *testing.T) {
		m := NewMCTS(WithDuration(50*time.Millisecond), WithSeed(1))

		start := time.Now()
		_, err := m.BestMove(game.NewGame(p0000), 0, 50*time.Millisecond)

		require.NoError(t, err)
		require.Less(t, time.Since(start), 2*time.Second)
	})

	t.Run("no legal move in a finished game", func(t *testing.T) {
		gs := nearRowWin(t)
		playMoves(t, gs, game.NewMove(0, 3, p0000))

		_, err := NewMCTS(WithIterations(10)).BestMove(gs, 10, 0)

		require.ErrorIs(t, err, ErrNoLegalMove)
	})

	t.Run("no legal move before the opening piece", func(t *testing.T) {
		gs := game.NewGameState(game.Player1)

		_, err := NewMCTS(WithIterations(10)).BestMove(gs, 10, 0)

		require.ErrorIs(t, err, ErrNoLegalMove)
	})

	t.Run("no legal move without any budget", func(t *testing.T) {
		_, err := NewMCTS(WithIterations(10)).BestMove(nearRowWin(t), 0, 0)

		require.ErrorIs(t, err, ErrNoLegalMove)
	})
}

func TestMCTSSimulate(t *testing.T) {
	t.Run("winning moves collect more visits than losing moves", func(t *testing.T) {
		m := NewMCTS(WithIterations(3000), WithSeed(2))

		policy, _, err := m.Simulate(nearRowWin(t))
		require.NoError(t, err)

		win := policy[game.NewMove(0, 3, p0000)]
		// Hands Player1 a piece that completes row 0
		loss := policy[game.NewMove(3, 3, p1000)]
		require.Greater(t, win, 2*loss)
	})

	t.Run("parallel trees merge every iteration", func(t *testing.T) {
		m := NewMCTS(WithIterations(1000), WithGoroutines(4), WithSeed(3), WithMetrics())

		policy, metric, err := m.Simulate(openRow(t))
		require.NoError(t, err)

		total := 0.0
		for _, visits := range policy {
			total += visits
		}
		require.Equal(t, 1000.0, total, "Every iteration visits exactly one root child")
		require.Equal(t, 1000, metric.Episodes)
		require.Equal(t, 4, metric.Goroutines)
		require.Positive(t, metric.Nodes)
	})

	t.Run("fewer iterations than goroutines", func(t *testing.T) {
		m := NewMCTS(WithIterations(2), WithGoroutines(4), WithSeed(3), WithMetrics())

		policy, metric, err := m.Simulate(openRow(t))
		require.NoError(t, err)
		require.NotEmpty(t, policy)
		require.LessOrEqual(t, len(policy), 2)
		require.Equal(t, 2, metric.Episodes)
	})
}

func TestSplit(t *testing.T) {
	t.Run("spreads the remainder", func(t *testing.T) {
		require.Equal(t, []int{4, 3, 3}, split(10, 0, 3))
	})

	t.Run("time budget only", func(t *testing.T) {
		require.Equal(t, []int{unbounded, unbounded}, split(0, time.Second, 2))
	})

	t.Run("no budget", func(t *testing.T) {
		require.Equal(t, []int{0}, split(0, 0, 1))
	})
}

func TestMerge(t *testing.T) {
	a, b := game.NewMove(0, 0, p0000), game.NewMove(1, 1, p0000)

	merged := merge([][]childStat{
		{{move: a, visits: 2, rewards: 1}},
		{{move: b, visits: 1}, {move: a, visits: 3, rewards: 2}},
	})

	require.Equal(t, []childStat{
		{move: a, visits: 5, rewards: 3},
		{move: b, visits: 1},
	}, merged)
}
