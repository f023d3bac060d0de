package gamemaster

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"quarto/game"
	"quarto/searcher/agent"
	"sync"

	"github.com/rs/zerolog/log"
)

var ErrGameOver = errors.New("game is over - no moves allowed")

type Update struct {
	Move  game.Move
	State *game.GameState
	Hash  game.StateHash
}

// UpdateGetter returns the next played move without blocking; ok is false when
// no move is pending or the game is over and every update was consumed.
type UpdateGetter func() (update Update, ok bool)

// Engine is the boundary between a running game and outside callers such as a CLI.
type Engine interface {
	Init() (*game.GameState, UpdateGetter)
	Play(game.Move) error
	// PlayIndexed places the pending piece at (row, col) and hands over the
	// piece at pieceIndex in the universe, -1 for none.
	PlayIndexed(row, col, pieceIndex int) error
	// Request asks a for a move in the current state and plays it.
	Request(a agent.Agent) (game.Move, error)
}

type localEngine struct {
	mu       sync.Mutex
	state    *game.GameState
	updateCh chan Update
}

// NewLocalEngine returns an engine whose game starts with opening as Player1's piece.
func NewLocalEngine(opening game.Piece) Engine {
	return &localEngine{state: game.NewGame(opening)}
}

// RandomOpening picks the opening piece uniformly from the universe.
func RandomOpening(r *rand.Rand) game.Piece {
	return game.Piece(r.IntN(game.NumPieces))
}

func (e *localEngine) Init() (*game.GameState, UpdateGetter) {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Every move fills a cell, so updates never block
	e.updateCh = make(chan Update, game.NumCells)
	updateCh := e.updateCh
	return e.state.Clone(), func() (Update, bool) {
		select {
		case u, ok := <-updateCh:
			return u, ok
		default:
			return Update{}, false
		}
	}
}

func (e *localEngine) Play(move game.Move) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.play(move)
}

func (e *localEngine) PlayIndexed(row, col, pieceIndex int) error {
	next := game.NoPiece
	if pieceIndex != -1 {
		if pieceIndex < 0 || pieceIndex >= game.NumPieces {
			return fmt.Errorf("piece index %d out of range [-1, %d)", pieceIndex, game.NumPieces)
		}
		next = game.Piece(pieceIndex)
	}
	return e.Play(game.NewMove(row, col, next))
}

func (e *localEngine) Request(a agent.Agent) (game.Move, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.IsTerminal() {
		return game.Move{}, ErrGameOver
	}
	move, _, err := a.FindMove(e.state.Clone())
	if err != nil {
		return game.Move{}, fmt.Errorf("agent failed to find a move: %w", err)
	}
	if err := e.play(move); err != nil {
		return game.Move{}, err
	}
	return move, nil
}

func (e *localEngine) play(move game.Move) error {
	if e.updateCh == nil {
		panic("engine must be initialized before playing")
	}
	if e.state.IsTerminal() {
		return ErrGameOver
	}

	player := e.state.CurrentPlayer()
	if err := e.state.MakeMove(move); err != nil {
		return err
	}
	log.Debug().Str("move", move.String()).Msgf("%v played", player)

	e.updateCh <- Update{Move: move, State: e.state.Clone(), Hash: e.state.Hash()}
	if e.state.IsTerminal() {
		log.Info().Msgf("game over, winner: %v", e.state.Winner())
		close(e.updateCh)
	}
	return nil
}
