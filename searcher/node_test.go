package searcher

import (
	"quarto/game"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestNewNode(t *testing.T) {
	t.Run("root snapshots every legal move", func(t *testing.T) {
		gs := nearRowWin(t)
		root := newNode(nil, game.Move{}, gs)

		require.Len(t, root.untried, 13*12)
		require.Empty(t, root.children)
		require.Equal(t, game.NoPlayer, root.player, "Root has no mover")
	})

	t.Run("terminal node has nothing to try", func(t *testing.T) {
		gs := nearRowWin(t)
		playMoves(t, gs, game.NewMove(0, 3, p0000))

		require.Empty(t, newNode(nil, game.Move{}, gs).untried)
	})
}

func TestExpands(t *testing.T) {
	t.Run("each untried move is tried exactly once", func(t *testing.T) {
		gs := nearRowWin(t)
		root := newNode(nil, game.Move{}, gs)
		total := len(root.untried)
		rng := rand.New(rand.NewSource(1))

		seen := map[game.Move]bool{}
		for len(root.untried) > 0 {
			child := root.expands(rng)
			require.False(t, seen[child.move], "Move %v expanded twice", child.move)
			seen[child.move] = true
			require.Equal(t, game.Player2, child.player)
			require.Same(t, root, child.parent)
		}

		require.Len(t, seen, total)
		require.Len(t, root.children, total)
	})

	t.Run("child owns its own state", func(t *testing.T) {
		gs := nearRowWin(t)
		before := gs.Encode()
		root := newNode(nil, game.Move{}, gs)

		child := root.expands(rand.New(rand.NewSource(1)))

		require.Equal(t, before, gs.Encode(), "Parent state should be untouched")
		require.Equal(t, 4, child.state.Placed())
	})
}

func TestSelectThenExpand(t *testing.T) {
	t.Run("expands the root before descending", func(t *testing.T) {
		root := newNode(nil, game.Move{}, nearRowWin(t))

		leaf, expanded := selectThenExpand(root, rand.New(rand.NewSource(1)))

		require.True(t, expanded)
		require.Same(t, root, leaf.parent)
	})

	t.Run("terminal root is returned as is", func(t *testing.T) {
		gs := nearRowWin(t)
		playMoves(t, gs, game.NewMove(0, 3, p0000))
		root := newNode(nil, game.Move{}, gs)

		leaf, expanded := selectThenExpand(root, rand.New(rand.NewSource(1)))

		require.False(t, expanded)
		require.Same(t, root, leaf)
	})

	t.Run("selects the unvisited child of a fully expanded node", func(t *testing.T) {
		root := newNode(nil, game.Move{}, nearRowWin(t))
		rng := rand.New(rand.NewSource(1))
		for len(root.untried) > 0 {
			root.expands(rng)
		}
		for _, child := range root.children {
			child.visits, child.rewards = 10, 10
			root.visits += 10
		}
		fresh := root.children[7]
		fresh.visits, fresh.rewards = 0, 0

		require.Same(t, fresh, root.selects())
	})
}

func TestBackup(t *testing.T) {
	build := func(t *testing.T) (root, child, grandChild *node) {
		root = newNode(nil, game.Move{}, openRow(t))
		rng := rand.New(rand.NewSource(2))
		child = root.expands(rng)
		grandChild = child.expands(rng)
		return root, child, grandChild
	}

	t.Run("root perspective rewards every node for one player", func(t *testing.T) {
		root, child, grandChild := build(t)

		backup(grandChild, game.Player2, game.Player2)

		for _, n := range []*node{root, child, grandChild} {
			require.Equal(t, 1, n.visits)
			require.Equal(t, Win, n.rewards)
		}
	})

	t.Run("mover perspective alternates rewards", func(t *testing.T) {
		root, child, grandChild := build(t)

		backup(grandChild, game.Player2, game.NoPlayer)

		require.Equal(t, game.Player2, child.player)
		require.Equal(t, Win, child.rewards, "Player2 moved into child")
		require.Equal(t, game.Player1, grandChild.player)
		require.Equal(t, Loss, grandChild.rewards, "Player1 moved into grandchild")
		require.Equal(t, 1, root.visits)
	})

	t.Run("draw rewards nothing", func(t *testing.T) {
		root, _, grandChild := build(t)

		backup(grandChild, game.NoPlayer, game.Player2)

		require.Equal(t, 1, root.visits)
		require.Equal(t, Loss, root.rewards)
	})
}
