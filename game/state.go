package game

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// GameState is the full state of a Quarto game. The zero value is not usable;
// create states with NewGameState or NewGame. All fields are fixed-size values,
// so a shallow copy is a deep copy.
type GameState struct {
	board     [Size][Size]Cell
	available PieceSet // Pieces neither placed nor pending
	pending   Piece    // Piece the current player must place
	player    Player   // Player to move
	placed    int      // Completed placements
}

// NewGameState returns an empty board with every piece available and no pending
// piece. The caller selects the opening piece with SelectOpeningPiece.
func NewGameState(first Player) *GameState {
	if first != Player1 && first != Player2 {
		panic(fmt.Sprintf("invalid first player %v", first))
	}
	gs := &GameState{
		available: FullSet,
		pending:   NoPiece,
		player:    first,
	}
	for r := range gs.board {
		for c := range gs.board[r] {
			gs.board[r][c] = emptyCell
		}
	}
	return gs
}

// NewGame returns a fresh game where Player1 must place the opening piece.
func NewGame(opening Piece) *GameState {
	gs := NewGameState(Player1)
	if err := gs.SelectOpeningPiece(opening); err != nil {
		panic(err)
	}
	return gs
}

// SelectOpeningPiece sets the piece for the first placement.
func (gs *GameState) SelectOpeningPiece(p Piece) error {
	if gs.placed > 0 || gs.pending != NoPiece {
		return fmt.Errorf("opening piece already selected")
	}
	if !gs.available.Has(p) {
		return fmt.Errorf("invalid opening piece %v", p)
	}
	gs.available = gs.available.Without(p)
	gs.pending = p
	return nil
}

// Clone returns an independent copy of the state.
func (gs *GameState) Clone() *GameState {
	c := *gs
	return &c
}

func (gs *GameState) CurrentPlayer() Player {
	return gs.player
}

func (gs *GameState) PendingPiece() Piece {
	return gs.pending
}

// AvailablePieces returns the pieces that are neither placed nor pending.
func (gs *GameState) AvailablePieces() PieceSet {
	return gs.available
}

// Placed returns the number of pieces on the board.
func (gs *GameState) Placed() int {
	return gs.placed
}

func (gs *GameState) At(pos Position) Cell {
	return gs.board[pos.Row][pos.Col]
}

// LegalPlacements returns the empty cells in row-major order.
func (gs *GameState) LegalPlacements() []Position {
	positions := make([]Position, 0, NumCells-gs.placed)
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if gs.board[r][c].Empty() {
				positions = append(positions, Position{Row: r, Col: c})
			}
		}
	}
	return positions
}

// LegalNextPieces returns the pieces that may be handed to the opponent.
func (gs *GameState) LegalNextPieces() []Piece {
	return gs.available.Pieces()
}

// MakeMove places the pending piece and hands move.Next to the opponent.
// The state is unchanged when an error is returned.
func (gs *GameState) MakeMove(move Move) error {
	if err := gs.check(move); err != nil {
		return err
	}

	gs.board[move.Row][move.Col] = Cell{Piece: gs.pending, Owner: gs.player, Turn: int8(gs.placed)}
	gs.placed++
	gs.available = gs.available.Without(move.Next)
	gs.pending = move.Next
	gs.player = gs.player.Opponent()
	return nil
}

func (gs *GameState) check(move Move) error {
	illegal := func(format string, args ...any) error {
		return &IllegalMoveError{Move: move, Reason: fmt.Sprintf(format, args...)}
	}

	pos := move.Position()
	switch {
	case gs.IsTerminal():
		return illegal("game is over")
	case !pos.InBounds():
		return illegal("cell %v is out of bounds", pos)
	case !gs.At(pos).Empty():
		return illegal("cell %v is occupied", pos)
	case gs.pending == NoPiece:
		return illegal("no pending piece to place")
	case move.Next == NoPiece && gs.available.Len() > 0:
		return illegal("a piece must be handed to the opponent")
	case move.Next != NoPiece && !gs.available.Has(move.Next):
		return illegal("piece %v is not available", move.Next)
	}
	return nil
}

// IsTerminal reports whether the game has a winner or the board is full.
func (gs *GameState) IsTerminal() bool {
	return gs.placed == NumCells || gs.Winner() != NoPlayer
}

// Winner returns the player who placed the last piece of a complete line whose
// pieces share an attribute, or NoPlayer.
func (gs *GameState) Winner() Player {
	winner, _ := gs.winningLine()
	return winner
}

// winningLine returns the winner and the turn at which the first winning line
// was completed (NumCells when there is none).
func (gs *GameState) winningLine() (Player, int8) {
	winner, completed := NoPlayer, int8(NumCells)
	for _, line := range lines {
		var pieces [Size]Piece
		last := emptyCell
		full := true
		for i, pos := range line {
			cell := gs.board[pos.Row][pos.Col]
			if cell.Empty() {
				full = false
				break
			}
			pieces[i] = cell.Piece
			if cell.Turn > last.Turn {
				last = cell
			}
		}
		if !full || sharedAttributes(pieces[:]) == 0 {
			continue
		}
		if last.Turn < completed {
			winner, completed = last.Owner, last.Turn
		}
	}
	return winner, completed
}

// Hash returns a hash of the position, the pending piece and the player to move.
func (gs *GameState) Hash() StateHash {
	hasher := fnv.New64a()

	buf := make([]byte, 0, 2*NumCells+2)
	for r := range gs.board {
		for _, cell := range gs.board[r] {
			buf = append(buf, byte(cell.Piece), byte(cell.Owner))
		}
	}
	buf = append(buf, byte(gs.pending), byte(gs.player))
	hasher.Write(buf)

	return StateHash(hasher.Sum64())
}

// String renders the board as plain text for logs.
func (gs *GameState) String() string {
	var sb strings.Builder
	sb.WriteString("    0   1   2   3\n")
	for r := 0; r < Size; r++ {
		fmt.Fprintf(&sb, "%d ", r)
		for c := 0; c < Size; c++ {
			cell := gs.board[r][c]
			if cell.Empty() {
				sb.WriteString(" .. ")
				continue
			}
			fmt.Fprintf(&sb, " %v%d ", cell.Piece, cell.Owner)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "pending: %v, to move: %v, available: %d", gs.pending, gs.player, gs.available.Len())
	return sb.String()
}
