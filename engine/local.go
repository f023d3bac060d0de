package engine

import (
	"fmt"
	"quarto/experiments/metrics"
	"quarto/game"
	"quarto/searcher/agent"
	"time"

	"github.com/rs/zerolog/log"
)

type localEngine struct {
	id     string
	state  *game.GameState
	agents map[game.Player]agent.Agent
}

// LocalEngine plays agents[0] as Player1 against agents[1] as Player2,
// starting with Player1 placing the opening piece.
func LocalEngine(id string, agents []agent.Agent, opening game.Piece) Engine {
	if len(agents) != 2 {
		panic(fmt.Sprintf("need exactly two agents, got %d", len(agents)))
	}
	return &localEngine{
		id:    id,
		state: game.NewGame(opening),
		agents: map[game.Player]agent.Agent{
			game.Player1: agents[0],
			game.Player2: agents[1],
		},
	}
}

func (e *localEngine) Run() (game.Player, metrics.GameMetric, []metrics.MoveMetric, error) {
	gameMetric := metrics.GameMetric{
		ID:             e.id,
		StartingPlayer: int(e.state.CurrentPlayer()),
		StartTime:      time.Now(),
	}
	log.Debug().Str("game", e.id).Msgf("%v is starting with piece %v", e.state.CurrentPlayer(), e.state.PendingPiece())

	var moveMetrics []metrics.MoveMetric
	for step := 1; !e.state.IsTerminal() && step <= MaxMoves; step++ {
		player := e.state.CurrentPlayer()
		move, searchMetric, err := e.agents[player].FindMove(e.state.Clone())
		if err != nil {
			return game.NoPlayer, e.finish(gameMetric, step-1), moveMetrics,
				fmt.Errorf("game %s step %d: %v failed to find a move: %w", e.id, step, player, err)
		}
		if err := e.state.MakeMove(move); err != nil {
			return game.NoPlayer, e.finish(gameMetric, step-1), moveMetrics,
				fmt.Errorf("game %s step %d: %v played: %w", e.id, step, player, err)
		}

		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         step,
			Player:       int(player),
			Move:         move.String(),
			SearchMetric: searchMetric,
		})
		log.Debug().
			Str("game", e.id).
			Int("step", step).
			Str("move", move.String()).
			Dur("search", searchMetric.Duration).
			Msgf("%v moved", player)
	}

	winner := e.state.Winner()
	gameMetric = e.finish(gameMetric, len(moveMetrics))
	log.Info().Str("game", e.id).Msgf("game over after %d moves, winner: %v", gameMetric.TotalMoves, winner)
	return winner, gameMetric, moveMetrics, nil
}

func (e *localEngine) finish(gameMetric metrics.GameMetric, moves int) metrics.GameMetric {
	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalMoves = moves
	gameMetric.Winner = e.state.Winner().String()
	gameMetric.FinalState = e.state.Encode()
	return gameMetric
}
