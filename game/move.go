package game

import (
	"fmt"
	"iter"
)

// Move is one full turn: where the pending piece goes and which piece the
// opponent must place next. Next is NoPiece only on the final placement.
type Move struct {
	Row  int
	Col  int
	Next Piece
}

func NewMove(row, col int, next Piece) Move {
	return Move{Row: row, Col: col, Next: next}
}

func (m Move) Position() Position {
	return Position{Row: m.Row, Col: m.Col}
}

func (m Move) String() string {
	return fmt.Sprintf("(%d,%d)+%v", m.Row, m.Col, m.Next)
}

// Moves lazily yields every legal move: each empty cell in row-major order
// combined with each available piece in ascending order. When no pieces remain
// each empty cell is yielded once with NoPiece.
func (gs *GameState) Moves() iter.Seq[Move] {
	return func(yield func(Move) bool) {
		if gs.pending == NoPiece || gs.IsTerminal() {
			return
		}
		placements := gs.LegalPlacements()
		pieces := gs.LegalNextPieces()
		if len(pieces) == 0 {
			pieces = []Piece{NoPiece}
		}
		for _, pos := range placements {
			for _, next := range pieces {
				if !yield(Move{Row: pos.Row, Col: pos.Col, Next: next}) {
					return
				}
			}
		}
	}
}

// LegalMoves collects Moves into a slice.
func (gs *GameState) LegalMoves() []Move {
	moves := make([]Move, 0, (NumCells-gs.placed)*max(gs.available.Len(), 1))
	for move := range gs.Moves() {
		moves = append(moves, move)
	}
	return moves
}
