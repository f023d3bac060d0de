package searcher

import (
	"math"
	"quarto/game"

	"golang.org/x/exp/rand"
)

type node struct {
	parent   *node
	move     game.Move   // Move from the parent to this node
	player   game.Player // Player who made the move
	state    *game.GameState
	untried  []game.Move
	children []*node
	rewards  float64
	visits   int
}

func newNode(parent *node, move game.Move, state *game.GameState) *node {
	var player game.Player
	if parent != nil {
		player = parent.state.CurrentPlayer()
	}
	return &node{
		parent:  parent,
		move:    move,
		player:  player,
		state:   state,
		untried: state.LegalMoves(),
	}
}

// selectThenExpand descends through fully expanded nodes by UCB1 and expands
// the first node that still has untried moves. Terminal nodes are returned as is.
func selectThenExpand(root *node, rng *rand.Rand) (leaf *node, expanded bool) {
	node := root
	for len(node.untried) == 0 && len(node.children) > 0 {
		node = node.selects()
	}
	if len(node.untried) == 0 {
		return node, false
	}
	return node.expands(rng), true
}

func (n *node) selects() *node {
	policy := newUCT(CSquared, n.visits)

	var best *node
	maxScore := math.Inf(-1)
	for _, child := range n.children {
		score := policy.evaluate(child.rewards, child.visits)
		if best == nil || score > maxScore {
			maxScore = score
			best = child
		}
	}
	return best
}

// expands tries one untried move chosen at random; each move is tried once.
func (n *node) expands(rng *rand.Rand) *node {
	i := rng.Intn(len(n.untried))
	move := n.untried[i]
	last := len(n.untried) - 1
	n.untried[i] = n.untried[last]
	n.untried = n.untried[:last]

	child := newNode(n, move, play(n.state, move))
	n.children = append(n.children, child)
	return child
}

// backup records a rollout outcome from leaf to root. With perspective set,
// every node is rewarded for that player's wins; with NoPlayer each node is
// rewarded for the wins of the player who moved into it.
func backup(leaf *node, winner game.Player, perspective game.Player) {
	reward := rewarder(winner)
	for node := leaf; node != nil; node = node.parent {
		player := perspective
		if player == game.NoPlayer {
			player = node.player
		}
		node.rewards += reward(player)
		node.visits++
	}
}

type childStat struct {
	move    game.Move
	visits  int
	rewards float64
}

// stats lists the children in expansion order.
func (n *node) stats() []childStat {
	stats := make([]childStat, len(n.children))
	for i, child := range n.children {
		stats[i] = childStat{move: child.move, visits: child.visits, rewards: child.rewards}
	}
	return stats
}
