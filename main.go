package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"quarto/config"
	"quarto/experiments"
	"quarto/experiments/metrics"
	"quarto/gamemaster"
	"quarto/searcher/agent"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	p1 := flag.String("p1", string(metrics.MCTS), "Player1's algorithm: mcts, minimax or random")
	p2 := flag.String("p2", string(metrics.Minimax), "Player2's algorithm: mcts, minimax or random")
	numGoroutines := flag.Int("goroutines", config.DefaultGoroutines, "Number of goroutines for root-parallel MCTS")
	numIterations := flag.Int("iterations", config.DefaultIterations, "Number of MCTS iterations per move")
	duration := flag.Duration("duration", 0, "MCTS time budget per move, 0 for none")
	depth := flag.Int("depth", config.DefaultDepth, "Minimax search depth")
	games := flag.Int("games", config.DefaultGames, "Number of games to play")
	seed := flag.Uint64("seed", 0, "Random seed, 0 for a time-based seed")
	output := flag.String("output", config.DefaultOutput, "Directory for CSV results, empty to skip")
	database := flag.String("db", "", "SQLite file for results, empty to skip")
	configPath := flag.String("config", "", "YAML experiment file; overrides the match flags")
	watch := flag.Bool("watch", false, "Play a single game and print the board after every move")
	logLevel := flag.String("log-level", "info", "Log level, overridden by "+config.LogLevelEnv)
	flag.Parse()

	level, err := config.LogLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level: %v\n", err)
		os.Exit(2)
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	exp := config.Default()
	if *configPath != "" {
		exp, err = config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load experiment")
		}
	} else {
		exp.Games = *games
		exp.Seed = *seed
		exp.Output = *output
		exp.Database = *database
		exp.Agents = []metrics.AgentConfig{
			agentFlags(1, *p1, *numGoroutines, *numIterations, *duration, *depth),
			agentFlags(2, *p2, *numGoroutines, *numIterations, *duration, *depth),
		}
		exp.Matchups = [][]int{{1, 2}}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *watch {
		if err := watchGame(exp); err != nil {
			log.Fatal().Err(err).Msg("game failed")
		}
		return
	}

	if _, err := experiments.Run(ctx, exp); err != nil {
		log.Fatal().Err(err).Msg("experiment failed")
	}
}

func agentFlags(id int, algorithm string, goroutines, iterations int, duration time.Duration, depth int) metrics.AgentConfig {
	ac := metrics.AgentConfig{ID: id, Algorithm: metrics.Algorithm(algorithm)}
	switch ac.Algorithm {
	case metrics.MCTS:
		ac.Goroutines = goroutines
		ac.Iterations = iterations
		ac.Duration = duration
	case metrics.Minimax:
		ac.Depth = depth
	}
	return ac
}

// watchGame plays the first matchup once through the game master and prints every position.
func watchGame(exp config.Experiment) error {
	if err := exp.Validate(); err != nil {
		return err
	}
	seed := exp.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed>>1))

	byID := make(map[int]metrics.AgentConfig, len(exp.Agents))
	for _, a := range exp.Agents {
		byID[a.ID] = a
	}
	var players []agent.Agent
	for _, id := range exp.Matchups[0] {
		a, err := experiments.CreateAgent(byID[id], rng.Uint64())
		if err != nil {
			return err
		}
		players = append(players, a)
	}

	engine := gamemaster.NewLocalEngine(gamemaster.RandomOpening(rng))
	state, getUpdate := engine.Init()
	fmt.Printf("opening piece: %s\n%v\n", state.PendingPiece().Describe(), state)
	for turn := 0; !state.IsTerminal(); turn++ {
		if _, err := engine.Request(players[turn%2]); err != nil {
			return err
		}
		update, ok := getUpdate()
		if !ok {
			return fmt.Errorf("no update after turn %d", turn+1)
		}
		state = update.State
		fmt.Printf("%v plays %v, hands over %s\n%v\n",
			state.CurrentPlayer().Opponent(), update.Move, update.Move.Next.Describe(), state)
	}
	fmt.Printf("winner: %v\n", state.Winner())
	return nil
}
