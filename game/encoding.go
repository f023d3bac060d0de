package game

import (
	"fmt"
	"strings"
)

// The text form is "<pending><player>:<row>/<row>/<row>/<row>", each row holding
// four 3-character cells: "..." when empty, otherwise piece, owner and turn as
// hex digits. It is opaque to callers; only ParseState reads it.

// MarshalText encodes the state in its opaque text form.
func (gs *GameState) MarshalText() ([]byte, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%v%d:", gs.pending, gs.player)
	for r := 0; r < Size; r++ {
		if r > 0 {
			sb.WriteByte('/')
		}
		for c := 0; c < Size; c++ {
			cell := gs.board[r][c]
			if cell.Empty() {
				sb.WriteString("...")
				continue
			}
			fmt.Fprintf(&sb, "%v%d%x", cell.Piece, cell.Owner, cell.Turn)
		}
	}
	return []byte(sb.String()), nil
}

// UnmarshalText decodes a state produced by MarshalText and validates it.
func (gs *GameState) UnmarshalText(text []byte) error {
	parsed, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*gs = *parsed
	return nil
}

// Encode returns the opaque text form as a string.
func (gs *GameState) Encode() string {
	text, _ := gs.MarshalText()
	return string(text)
}

// ParseState decodes the opaque text form.
func ParseState(s string) (*GameState, error) {
	header, body, ok := strings.Cut(s, ":")
	if !ok || len(header) != 2 {
		return nil, fmt.Errorf("invalid state %q: malformed header", s)
	}
	pending, err := ParsePiece(header[:1])
	if err != nil {
		return nil, fmt.Errorf("invalid state %q: %w", s, err)
	}
	player := Player(header[1] - '0')
	if player != Player1 && player != Player2 {
		return nil, fmt.Errorf("invalid state %q: invalid player %q", s, header[1])
	}

	rows := strings.Split(body, "/")
	if len(rows) != Size {
		return nil, fmt.Errorf("invalid state %q: expected %d rows", s, Size)
	}

	gs := NewGameState(player)
	gs.pending = pending
	for r, row := range rows {
		if len(row) != 3*Size {
			return nil, fmt.Errorf("invalid state %q: row %d has wrong length", s, r)
		}
		for c := 0; c < Size; c++ {
			token := row[3*c : 3*c+3]
			if token == "..." {
				continue
			}
			cell, err := parseCell(token)
			if err != nil {
				return nil, fmt.Errorf("invalid state %q: cell (%d,%d): %w", s, r, c, err)
			}
			gs.board[r][c] = cell
			gs.placed++
		}
	}

	if err := gs.restore(); err != nil {
		return nil, fmt.Errorf("invalid state %q: %w", s, err)
	}
	return gs, nil
}

func parseCell(token string) (Cell, error) {
	piece, err := ParsePiece(token[:1])
	if err != nil || piece == NoPiece {
		return Cell{}, fmt.Errorf("invalid piece %q", token[:1])
	}
	owner := Player(token[1] - '0')
	if owner != Player1 && owner != Player2 {
		return Cell{}, fmt.Errorf("invalid owner %q", token[1])
	}
	var turn int8
	if _, err := fmt.Sscanf(token[2:], "%x", &turn); err != nil {
		return Cell{}, fmt.Errorf("invalid turn %q", token[2:])
	}
	return Cell{Piece: piece, Owner: owner, Turn: turn}, nil
}

// restore rebuilds the available set from the board and the pending piece and
// checks every invariant a sequence of legal moves would maintain.
func (gs *GameState) restore() error {
	var turns [NumCells]*Cell
	available := FullSet
	for r := range gs.board {
		for c := range gs.board[r] {
			cell := &gs.board[r][c]
			if cell.Empty() {
				continue
			}
			if !available.Has(cell.Piece) {
				return fmt.Errorf("piece %v placed twice", cell.Piece)
			}
			available = available.Without(cell.Piece)
			if int(cell.Turn) < 0 || int(cell.Turn) >= gs.placed || turns[cell.Turn] != nil {
				return fmt.Errorf("invalid turn %d", cell.Turn)
			}
			turns[cell.Turn] = cell
		}
	}

	for t := 1; t < gs.placed; t++ {
		if turns[t].Owner != turns[t-1].Owner.Opponent() {
			return fmt.Errorf("players do not alternate at turn %d", t)
		}
	}
	if gs.placed > 0 && gs.player != turns[gs.placed-1].Owner.Opponent() {
		return fmt.Errorf("wrong player to move")
	}

	switch {
	case gs.pending != NoPiece && !available.Has(gs.pending):
		return fmt.Errorf("pending piece %v is already placed", gs.pending)
	case gs.pending == NoPiece && gs.placed > 0 && gs.placed < NumCells:
		return fmt.Errorf("missing pending piece")
	}
	gs.available = available.Without(gs.pending)

	if _, completed := gs.winningLine(); int(completed) < gs.placed-1 {
		return fmt.Errorf("play continued after a win")
	}
	return nil
}
