package experiments

import (
	"context"
	"fmt"
	"math/rand/v2"
	"quarto/config"
	"quarto/engine"
	"quarto/experiments/metrics"
	"quarto/game"
	"quarto/gamemaster"
	"quarto/searcher"
	"quarto/searcher/agent"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Summary aggregates the outcome of an experiment.
type Summary struct {
	Games    int
	Draws    int
	Moves    int
	Wins     map[int]int // By AgentConfig.ID
	Duration time.Duration
	Records  []metrics.GameRecord
	Dir      string // CSV output directory, empty when not written
}

type task struct {
	index   int // Global game number
	matchup int // 1-based
	seats   [2]metrics.AgentConfig
	seed    uint64
}

type result struct {
	game  metrics.GameRecord
	moves []metrics.MoveRecord
	win   int // Winning AgentConfig.ID
	draw  bool
}

// Run plays every matchup of exp, Games times each, with at most
// exp.Concurrency games at once, and stores the results.
func Run(ctx context.Context, exp config.Experiment) (Summary, error) {
	if err := exp.Validate(); err != nil {
		return Summary{}, err
	}
	seed := exp.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	var store *metrics.Store
	if exp.Database != "" {
		var err error
		store, err = metrics.OpenStore(exp.Database, exp.Name)
		if err != nil {
			return Summary{}, err
		}
		defer store.Close()
	}

	tasks := schedule(exp, seed)
	results := make([]result, len(tasks))
	log.Info().Msgf("starting %s experiment: %d matchups, %d games, seed %d", exp.Name, len(exp.Matchups), len(tasks), seed)

	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(exp.Concurrency)
	for _, t := range tasks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := runGame(t)
			if err != nil {
				return fmt.Errorf("matchup %d game %d: %w", t.matchup, t.index+1, err)
			}
			if store != nil {
				if err := store.SaveGame(ctx, r.game, r.moves); err != nil {
					return err
				}
			}
			results[t.index] = r
			log.Info().Msgf("completed matchup %d game %d of %d with winner: %s", t.matchup, t.index+1, len(tasks), r.game.Winner)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	summary := summarize(results, time.Since(start))
	if exp.Output != "" {
		dir, err := write(exp, results)
		if err != nil {
			return summary, err
		}
		summary.Dir = dir
	}
	logSummary(exp, summary)
	return summary, nil
}

// schedule lists the games of every matchup. With AlternateStart the seats
// are swapped on every other game of a matchup.
func schedule(exp config.Experiment, seed uint64) []task {
	agents := make(map[int]metrics.AgentConfig, len(exp.Agents))
	for _, a := range exp.Agents {
		agents[a.ID] = a
	}

	var tasks []task
	for mi, matchup := range exp.Matchups {
		for i := 0; i < exp.Games; i++ {
			seats := [2]metrics.AgentConfig{agents[matchup[0]], agents[matchup[1]]}
			if exp.AlternateStart && i%2 == 1 {
				seats[0], seats[1] = seats[1], seats[0]
			}
			index := len(tasks)
			tasks = append(tasks, task{
				index:   index,
				matchup: mi + 1,
				seats:   seats,
				seed:    seed + uint64(index)*0x9e3779b97f4a7c15,
			})
		}
	}
	return tasks
}

// runGame executes a single game between two agents and returns its records
func runGame(t task) (result, error) {
	rng := rand.New(rand.NewPCG(t.seed, t.seed>>1))
	agents := make([]agent.Agent, len(t.seats))
	for i, seat := range t.seats {
		a, err := CreateAgent(seat, rng.Uint64())
		if err != nil {
			return result{}, err
		}
		agents[i] = a
	}

	e := engine.LocalEngine(uuid.NewString(), agents, gamemaster.RandomOpening(rng))
	winner, gameMetric, moveMetrics, err := e.Run()
	if err != nil {
		return result{}, err
	}

	r := result{
		game: metrics.GameRecord{
			Matchup:    t.matchup,
			Agent1:     t.seats[0].ID,
			Agent2:     t.seats[1].ID,
			GameMetric: gameMetric,
		},
		moves: make([]metrics.MoveRecord, len(moveMetrics)),
	}
	for i, mm := range moveMetrics {
		r.moves[i] = metrics.MoveRecord{Game: gameMetric.ID, MoveMetric: mm}
	}
	switch winner {
	case game.Player1:
		r.win = t.seats[0].ID
	case game.Player2:
		r.win = t.seats[1].ID
	default:
		r.draw = true
	}
	return r, nil
}

// CreateAgent builds the agent described by config with its own seed.
func CreateAgent(agentConfig metrics.AgentConfig, seed uint64) (agent.Agent, error) {
	if err := config.ValidateAgent(agentConfig); err != nil {
		return nil, err
	}

	switch agentConfig.Algorithm {
	case metrics.MCTS:
		mcts := searcher.NewMCTS(
			searcher.WithIterations(agentConfig.Iterations),
			searcher.WithDuration(agentConfig.Duration),
			searcher.WithGoroutines(agentConfig.Goroutines),
			searcher.WithSeed(seed),
			searcher.WithMetrics(),
		)
		if agentConfig.Temperature > 0 {
			return agent.NewTrainingAgent(mcts, agentConfig.Temperature, seed), nil
		}
		return agent.NewEvaluationAgent(mcts), nil
	case metrics.Minimax:
		minimax := searcher.NewMinimax(agentConfig.Depth,
			searcher.WithMinimaxSeed(seed),
			searcher.WithMinimaxMetrics(),
		)
		return agent.NewEvaluationAgent(minimax), nil
	default:
		return agent.NewRandomAgent(seed), nil
	}
}

func summarize(results []result, duration time.Duration) Summary {
	summary := Summary{
		Games:    len(results),
		Wins:     make(map[int]int),
		Duration: duration,
		Records:  make([]metrics.GameRecord, len(results)),
	}
	for i, r := range results {
		summary.Records[i] = r.game
		summary.Moves += r.game.TotalMoves
		if r.draw {
			summary.Draws++
		} else {
			summary.Wins[r.win]++
		}
	}
	return summary
}

func write(exp config.Experiment, results []result) (string, error) {
	writer, err := metrics.NewWriter(exp.Output, exp.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}

	games := make([]metrics.GameRecord, 0, len(results))
	var moves []metrics.MoveRecord
	for _, r := range results {
		games = append(games, r.game)
		moves = append(moves, r.moves...)
	}

	if err := writer.WriteAgentConfigs(exp.Agents); err != nil {
		return "", fmt.Errorf("failed to store agent configs: %w", err)
	}
	if err := writer.WriteGameRecords(games); err != nil {
		return "", fmt.Errorf("failed to write game records: %w", err)
	}
	if err := writer.WriteMoveRecords(moves); err != nil {
		return "", fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Msgf("stored experiment records in %s", writer.Dir())
	return writer.Dir(), nil
}

func logSummary(exp config.Experiment, summary Summary) {
	log.Info().Msgf("completed %s experiment: %s games, %s moves in %s",
		exp.Name, humanize.Comma(int64(summary.Games)), humanize.Comma(int64(summary.Moves)), summary.Duration.Round(time.Millisecond))
	for _, a := range exp.Agents {
		wins := summary.Wins[a.ID]
		log.Info().Msgf("agent %d (%s, %s): %s wins (%s%%)",
			a.ID, a.Algorithm, config.Budget(a), humanize.Comma(int64(wins)),
			humanize.FtoaWithDigits(100*float64(wins)/float64(summary.Games), 1))
	}
	log.Info().Msgf("draws: %s", humanize.Comma(int64(summary.Draws)))
}
