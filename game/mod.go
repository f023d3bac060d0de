package game

import "fmt"

// Size is the side length of the Quarto board.
const Size = 4

// NumCells is the number of cells on the board.
const NumCells = Size * Size

type StateHash uint64

// Player identifies one of the two sides of a game.
type Player int8

const (
	NoPlayer Player = iota
	Player1
	Player2
)

// Opponent returns the other player. NoPlayer has no opponent.
func (p Player) Opponent() Player {
	switch p {
	case Player1:
		return Player2
	case Player2:
		return Player1
	default:
		return NoPlayer
	}
}

func (p Player) String() string {
	if p == NoPlayer {
		return "none"
	}
	return fmt.Sprintf("Player%d", p)
}

// Evaluates a non-terminal state to a score for the given player; larger values
// are more favorable to that player.
type Evaluate func(state *GameState, player Player) int
