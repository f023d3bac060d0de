package game

import (
	"fmt"
	"math/bits"
	"strings"
)

// Attribute is one of the four binary properties of a piece.
type Attribute uint8

const (
	Shape Attribute = iota
	Color
	Height
	Hollow
)

// NumAttributes is the number of binary attributes of a piece.
const NumAttributes = 4

// NumPieces is the number of distinct pieces in a game.
const NumPieces = 1 << NumAttributes

func (a Attribute) String() string {
	switch a {
	case Shape:
		return "shape"
	case Color:
		return "color"
	case Height:
		return "height"
	case Hollow:
		return "hollow"
	default:
		return fmt.Sprintf("attribute(%d)", a)
	}
}

// Piece encodes the four attributes as bits; bit i holds Attribute(i).
type Piece uint8

// NoPiece marks the absence of a piece.
const NoPiece Piece = NumPieces

const attributeMask = NumPieces - 1

var universe = func() [NumPieces]Piece {
	var pieces [NumPieces]Piece
	for i := range pieces {
		pieces[i] = Piece(i)
	}
	return pieces
}()

// Universe returns all 16 pieces in index order.
func Universe() [NumPieces]Piece {
	return universe
}

// NewPiece builds the piece with the given attribute values.
func NewPiece(shape, color, height, hollow bool) Piece {
	var p Piece
	for i, set := range []bool{shape, color, height, hollow} {
		if set {
			p |= 1 << i
		}
	}
	return p
}

func (p Piece) Valid() bool {
	return p < NumPieces
}

// Has reports whether the attribute is set on the piece.
func (p Piece) Has(a Attribute) bool {
	return p&(1<<a) != 0
}

// String returns the hex digit of the piece, or "-" for NoPiece.
func (p Piece) String() string {
	if !p.Valid() {
		return "-"
	}
	return fmt.Sprintf("%x", uint8(p))
}

// Describe returns a human readable description, e.g. "round light tall hollow".
func (p Piece) Describe() string {
	if !p.Valid() {
		return "none"
	}
	words := []string{"square", "dark", "short", "solid"}
	if p.Has(Shape) {
		words[0] = "round"
	}
	if p.Has(Color) {
		words[1] = "light"
	}
	if p.Has(Height) {
		words[2] = "tall"
	}
	if p.Has(Hollow) {
		words[3] = "hollow"
	}
	return strings.Join(words, " ")
}

// ParsePiece parses the hex form produced by String.
func ParsePiece(s string) (Piece, error) {
	if s == "-" {
		return NoPiece, nil
	}
	var v uint8
	if _, err := fmt.Sscanf(s, "%x", &v); err != nil || len(s) != 1 {
		return NoPiece, fmt.Errorf("invalid piece %q", s)
	}
	return Piece(v), nil
}

// sharedAttributes returns the mask of attributes on which every piece agrees,
// counting agreement on both the set and the unset value.
func sharedAttributes(pieces []Piece) uint8 {
	ones, zeros := uint8(attributeMask), uint8(attributeMask)
	for _, p := range pieces {
		ones &= uint8(p)
		zeros &= ^uint8(p) & attributeMask
	}
	return ones | zeros
}

func countAttributes(mask uint8) int {
	return bits.OnesCount8(mask)
}

// PieceSet is an immutable set of pieces.
type PieceSet uint16

// FullSet contains every piece.
const FullSet PieceSet = 1<<NumPieces - 1

func (s PieceSet) Has(p Piece) bool {
	return p.Valid() && s&(1<<p) != 0
}

func (s PieceSet) With(p Piece) PieceSet {
	if !p.Valid() {
		return s
	}
	return s | 1<<p
}

func (s PieceSet) Without(p Piece) PieceSet {
	if !p.Valid() {
		return s
	}
	return s &^ (1 << p)
}

func (s PieceSet) Len() int {
	return bits.OnesCount16(uint16(s))
}

// Pieces lists the members in ascending order.
func (s PieceSet) Pieces() []Piece {
	pieces := make([]Piece, 0, s.Len())
	for _, p := range universe {
		if s.Has(p) {
			pieces = append(pieces, p)
		}
	}
	return pieces
}
