package game

import "fmt"

// Position addresses a board cell.
type Position struct {
	Row int
	Col int
}

func (p Position) InBounds() bool {
	return p.Row >= 0 && p.Row < Size && p.Col >= 0 && p.Col < Size
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Cell is a board square. An empty cell has Owner == NoPlayer.
type Cell struct {
	Piece Piece
	Owner Player // Player who placed the piece
	Turn  int8   // 0-based placement index of the piece
}

func (c Cell) Empty() bool {
	return c.Owner == NoPlayer
}

var emptyCell = Cell{Piece: NoPiece, Owner: NoPlayer, Turn: -1}

// Line is one of the 10 winning lines: 4 rows, 4 columns and 2 diagonals.
type Line [Size]Position

// NumLines is the number of winning lines on the board.
const NumLines = 2*Size + 2

var lines = func() [NumLines]Line {
	var ls [NumLines]Line
	for i := 0; i < Size; i++ {
		for j := 0; j < Size; j++ {
			ls[i][j] = Position{Row: i, Col: j}      // Row i
			ls[Size+i][j] = Position{Row: j, Col: i} // Column i
		}
	}
	for i := 0; i < Size; i++ {
		ls[2*Size][i] = Position{Row: i, Col: i}
		ls[2*Size+1][i] = Position{Row: i, Col: Size - 1 - i}
	}
	return ls
}()

// Lines returns every winning line.
func Lines() [NumLines]Line {
	return lines
}
