package game

// EvaluateAlignment scores every line holding at least two pieces: each
// attribute shared by all pieces on the line adds the squared piece count.
// The total counts in favor of the player to move, so it is returned as is
// for that player and negated for the opponent.
func EvaluateAlignment(gs *GameState, player Player) int {
	score := 0
	for _, line := range lines {
		var buf [Size]Piece
		pieces := buf[:0]
		for _, pos := range line {
			if cell := gs.At(pos); !cell.Empty() {
				pieces = append(pieces, cell.Piece)
			}
		}
		if len(pieces) < 2 {
			continue
		}
		score += countAttributes(sharedAttributes(pieces)) * len(pieces) * len(pieces)
	}

	if player != gs.CurrentPlayer() {
		return -score
	}
	return score
}
