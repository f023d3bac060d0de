package game

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

// Pieces sharing shape and color only.
var (
	p1111 = NewPiece(true, true, true, true)
	p1110 = NewPiece(true, true, true, false)
	p1101 = NewPiece(true, true, false, true)
	p1100 = NewPiece(true, true, false, false)
	p0000 = NewPiece(false, false, false, false)
)

// drawBoard fills every cell without any line sharing an attribute.
var drawBoard = [Size][Size]Piece{
	{0, 1, 2, 12},
	{3, 4, 5, 8},
	{6, 9, 10, 15},
	{11, 14, 13, 7},
}

func play(t *testing.T, gs *GameState, moves ...Move) {
	t.Helper()
	for _, move := range moves {
		require.NoError(t, gs.MakeMove(move), "move %v should be legal", move)
	}
}

// nearRowWin returns a game where row 0 holds three pieces sharing shape and
// color and Player2 must place a fourth piece that also shares them.
func nearRowWin(t *testing.T) *GameState {
	gs := NewGame(p1111)
	play(t, gs,
		NewMove(0, 0, p1110),
		NewMove(0, 1, p1101),
		NewMove(0, 2, p1100),
	)
	return gs
}

func requireUniverse(t *testing.T, gs *GameState) {
	t.Helper()
	seen := map[Piece]int{}
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if cell := gs.At(Position{Row: r, Col: c}); !cell.Empty() {
				seen[cell.Piece]++
			}
		}
	}
	for _, p := range gs.AvailablePieces().Pieces() {
		seen[p]++
	}
	if gs.PendingPiece() != NoPiece {
		seen[gs.PendingPiece()]++
	}
	require.Len(t, seen, NumPieces, "Every piece should be tracked")
	for p, n := range seen {
		require.Equal(t, 1, n, "Piece %v should be tracked once", p)
	}
}

func TestNewGame(t *testing.T) {
	t.Run("opening piece selected by caller", func(t *testing.T) {
		gs := NewGameState(Player2)

		require.Equal(t, NoPiece, gs.PendingPiece())
		require.Empty(t, gs.LegalMoves(), "No move before the opening piece is selected")
		err := gs.MakeMove(NewMove(0, 0, p0000))
		require.ErrorIs(t, err, ErrIllegalMove)

		require.NoError(t, gs.SelectOpeningPiece(p1111))
		require.Equal(t, p1111, gs.PendingPiece())
		require.Equal(t, Player2, gs.CurrentPlayer())
		require.Equal(t, NumPieces-1, gs.AvailablePieces().Len())
		require.Error(t, gs.SelectOpeningPiece(p0000), "Opening piece can only be chosen once")
		requireUniverse(t, gs)
	})

	t.Run("fresh game is not terminal", func(t *testing.T) {
		gs := NewGame(p0000)

		require.False(t, gs.IsTerminal())
		require.Equal(t, NoPlayer, gs.Winner())
		require.Len(t, gs.LegalPlacements(), NumCells)
		require.Len(t, gs.LegalNextPieces(), NumPieces-1)
		require.NotContains(t, gs.LegalNextPieces(), p0000, "Pending piece cannot be handed over")
	})
}

func TestMakeMove(t *testing.T) {
	t.Run("placing the pending piece", func(t *testing.T) {
		gs := NewGame(p1111)

		require.NoError(t, gs.MakeMove(NewMove(1, 2, p0000)))

		cell := gs.At(Position{Row: 1, Col: 2})
		require.Equal(t, Cell{Piece: p1111, Owner: Player1, Turn: 0}, cell)
		require.Equal(t, p0000, gs.PendingPiece())
		require.False(t, gs.AvailablePieces().Has(p0000))
		require.Equal(t, Player2, gs.CurrentPlayer(), "Turn should pass to the opponent")
		require.Equal(t, 1, gs.Placed())
		requireUniverse(t, gs)
	})

	t.Run("rejecting illegal moves without changing the state", func(t *testing.T) {
		gs := NewGame(p1111)
		play(t, gs, NewMove(0, 0, p0000))
		before := *gs

		illegal := []Move{
			NewMove(0, 0, p1110),  // Occupied
			NewMove(4, 0, p1110),  // Out of bounds
			NewMove(0, -1, p1110), // Out of bounds
			NewMove(1, 1, p1111),  // Already placed
			NewMove(1, 1, p0000),  // Pending, cannot be handed back
			NewMove(1, 1, NoPiece),
		}
		for _, move := range illegal {
			err := gs.MakeMove(move)

			var illegalErr *IllegalMoveError
			require.ErrorAs(t, err, &illegalErr, "Move %v should be rejected", move)
			require.Equal(t, move, illegalErr.Move)
			require.Equal(t, before, *gs, "State should not change on failure")
		}
		require.Equal(t, Player2, gs.CurrentPlayer(), "Player should not toggle on failure")
	})

	t.Run("final move hands over no piece", func(t *testing.T) {
		gs := fillDrawBoard(t, NumCells-1)

		require.Empty(t, gs.LegalNextPieces())
		require.Equal(t, []Move{NewMove(3, 3, NoPiece)}, gs.LegalMoves())
		require.NoError(t, gs.MakeMove(NewMove(3, 3, NoPiece)))
		require.Equal(t, NoPiece, gs.PendingPiece())
		requireUniverse(t, gs)
	})

	t.Run("universe is preserved through random games", func(t *testing.T) {
		rng := rand.New(rand.NewPCG(7, 11))
		for i := 0; i < 50; i++ {
			gs := NewGame(Piece(rng.IntN(NumPieces)))
			for !gs.IsTerminal() {
				moves := gs.LegalMoves()
				require.NotEmpty(t, moves, "Non-terminal state should have moves")
				player := gs.CurrentPlayer()

				require.NoError(t, gs.MakeMove(moves[rng.IntN(len(moves))]))
				require.Equal(t, player.Opponent(), gs.CurrentPlayer())
				requireUniverse(t, gs)
			}
		}
	})
}

func TestWinner(t *testing.T) {
	t.Run("row completed by shared attributes", func(t *testing.T) {
		gs := nearRowWin(t)
		require.Equal(t, NoPlayer, gs.Winner(), "Incomplete line should not win")
		require.False(t, gs.IsTerminal())
		require.Equal(t, Player2, gs.CurrentPlayer())

		play(t, gs, NewMove(0, 3, p0000))

		require.Equal(t, Player2, gs.Winner(), "Win should go to the player who completed the line")
		require.True(t, gs.IsTerminal())
	})

	t.Run("winner never changes once declared", func(t *testing.T) {
		gs := nearRowWin(t)
		play(t, gs, NewMove(0, 3, p0000))

		err := gs.MakeMove(NewMove(1, 1, NewPiece(false, true, false, true)))

		require.ErrorIs(t, err, ErrIllegalMove, "No move after the game is over")
		require.Equal(t, Player2, gs.Winner())
		require.Equal(t, Player2, gs.Winner(), "Repeated calls should agree")
	})

	t.Run("full board without a shared line is a draw", func(t *testing.T) {
		gs := fillDrawBoard(t, NumCells)

		require.Equal(t, NoPlayer, gs.Winner())
		require.True(t, gs.IsTerminal())
		require.Empty(t, gs.LegalMoves())
	})

	t.Run("full line without a shared attribute", func(t *testing.T) {
		gs := NewGame(drawBoard[0][0])
		play(t, gs,
			NewMove(0, 0, drawBoard[0][1]),
			NewMove(0, 1, drawBoard[0][2]),
			NewMove(0, 2, drawBoard[0][3]),
			NewMove(0, 3, drawBoard[1][0]),
		)

		require.Equal(t, NoPlayer, gs.Winner())
		require.False(t, gs.IsTerminal())
	})
}

// fillDrawBoard plays the first n cells of drawBoard in row-major order.
func fillDrawBoard(t *testing.T, n int) *GameState {
	gs := NewGame(drawBoard[0][0])
	for i := 0; i < n; i++ {
		next := NoPiece
		if i+1 < NumCells {
			next = drawBoard[(i+1)/Size][(i+1)%Size]
		}
		play(t, gs, NewMove(i/Size, i%Size, next))
	}
	return gs
}

func TestClone(t *testing.T) {
	gs := nearRowWin(t)
	original := gs.Encode()

	clone := gs.Clone()
	play(t, clone, NewMove(0, 3, p0000))

	require.Equal(t, original, gs.Encode(), "Original board should not change")
	require.Equal(t, p1100, gs.PendingPiece())
	require.Equal(t, Player2, gs.CurrentPlayer())
	require.Equal(t, NoPlayer, gs.Winner())
	require.Equal(t, Player2, clone.Winner())
	require.NotEqual(t, gs.Hash(), clone.Hash())
}

func TestParseState(t *testing.T) {
	t.Run("decoding an encoded game", func(t *testing.T) {
		gs := nearRowWin(t)

		decoded, err := ParseState(gs.Encode())

		require.NoError(t, err)
		require.Equal(t, gs, decoded)
		require.Equal(t, gs.Hash(), decoded.Hash())
	})

	t.Run("unmarshalling into an existing state", func(t *testing.T) {
		gs := fillDrawBoard(t, 9)
		text, err := gs.MarshalText()
		require.NoError(t, err)

		var decoded GameState
		require.NoError(t, decoded.UnmarshalText(text))
		require.Equal(t, *gs, decoded)
		requireUniverse(t, &decoded)
	})

	t.Run("rejecting inconsistent states", func(t *testing.T) {
		invalid := map[string]string{
			"malformed":         "f1",
			"bad player":        "f3:............/............/............/............",
			"short row":         "f1:...../............/............/............",
			"duplicate piece":   "11:010021......../............/............/............",
			"pending on board":  "02:010.........../............/............/............",
			"wrong mover":       "f1:010.........../............/............/............",
			"turn gap":          "f1:010122......../............/............/............",
			"missing pending":   "-2:010.........../............/............/............",
			"same player twice": "f1:010111......../............/............/............",
		}
		for name, text := range invalid {
			_, err := ParseState(text)
			require.Error(t, err, "State %q (%s) should be rejected", text, name)
		}
	})
}
