package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"quarto/experiments/metrics"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Search defaults
const (
	DefaultGoroutines = 1
	DefaultIterations = 1000
	DefaultDepth      = 2
)

// Experiment defaults
const (
	DefaultName        = "match"
	DefaultGames       = 10 // Per matchup
	DefaultConcurrency = 4
	DefaultOutput      = "results"
)

const LogLevelEnv = "QUARTO_LOG_LEVEL"

var ErrInvalidConfig = errors.New("invalid experiment config")

// Experiment describes a set of matchups between configured agents.
type Experiment struct {
	Name           string                `yaml:"name"`
	Games          int                   `yaml:"games"` // Per matchup
	Concurrency    int                   `yaml:"concurrency"`
	Seed           uint64                `yaml:"seed"`            // 0 picks a time-based seed
	AlternateStart bool                  `yaml:"alternate_start"` // Swap seats every other game
	Output         string                `yaml:"output"`          // CSV directory, empty to skip
	Database       string                `yaml:"database"`        // SQLite file, empty to skip
	Agents         []metrics.AgentConfig `yaml:"agents"`
	Matchups       [][]int               `yaml:"matchups"` // Pairs of agent IDs, first plays Player1
}

// Default returns a single MCTS versus minimax matchup.
func Default() Experiment {
	return Experiment{
		Name:        DefaultName,
		Games:       DefaultGames,
		Concurrency: DefaultConcurrency,
		Output:      DefaultOutput,
		Agents: []metrics.AgentConfig{
			{ID: 1, Algorithm: metrics.MCTS, Goroutines: DefaultGoroutines, Iterations: DefaultIterations},
			{ID: 2, Algorithm: metrics.Minimax, Depth: DefaultDepth},
		},
		Matchups: [][]int{{1, 2}},
	}
}

// Load reads a YAML experiment file. Missing scalar fields keep their defaults.
func Load(path string) (Experiment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Experiment{}, fmt.Errorf("failed to read experiment config: %w", err)
	}

	exp := Default()
	exp.Agents, exp.Matchups = nil, nil
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&exp); err != nil {
		return Experiment{}, fmt.Errorf("failed to parse experiment config %s: %w", path, err)
	}
	if err := exp.Validate(); err != nil {
		return Experiment{}, err
	}
	return exp, nil
}

func (e Experiment) Validate() error {
	if e.Name == "" {
		return invalid("name is required")
	}
	if e.Games <= 0 {
		return invalid("games must be positive, got %d", e.Games)
	}
	if e.Concurrency <= 0 {
		return invalid("concurrency must be positive, got %d", e.Concurrency)
	}

	ids := make(map[int]bool, len(e.Agents))
	for _, agent := range e.Agents {
		if ids[agent.ID] {
			return invalid("duplicate agent id %d", agent.ID)
		}
		ids[agent.ID] = true
		if err := ValidateAgent(agent); err != nil {
			return err
		}
	}

	if len(e.Matchups) == 0 {
		return invalid("at least one matchup is required")
	}
	for i, matchup := range e.Matchups {
		if len(matchup) != 2 {
			return invalid("matchup %d must pair two agents, got %d", i+1, len(matchup))
		}
		for _, id := range matchup {
			if !ids[id] {
				return invalid("matchup %d refers to unknown agent %d", i+1, id)
			}
		}
	}
	return nil
}

// ValidateAgent checks that an agent has the budget its algorithm needs.
func ValidateAgent(agent metrics.AgentConfig) error {
	switch agent.Algorithm {
	case metrics.MCTS:
		if agent.Iterations <= 0 && agent.Duration <= 0 {
			return invalid("mcts agent %d needs iterations or duration", agent.ID)
		}
		if agent.Goroutines < 0 {
			return invalid("agent %d goroutines must not be negative", agent.ID)
		}
		if agent.Temperature < 0 {
			return invalid("agent %d temperature must not be negative", agent.ID)
		}
	case metrics.Minimax:
		if agent.Depth < 1 {
			return invalid("minimax agent %d depth must be at least 1, got %d", agent.ID, agent.Depth)
		}
	case metrics.Random:
	default:
		return invalid("agent %d has unknown algorithm %q", agent.ID, agent.Algorithm)
	}
	return nil
}

// Budget formats an agent's search budget for logs.
func Budget(agent metrics.AgentConfig) string {
	switch agent.Algorithm {
	case metrics.MCTS:
		if agent.Duration > 0 && agent.Iterations <= 0 {
			return agent.Duration.Round(time.Millisecond).String()
		}
		return fmt.Sprintf("%d iterations", agent.Iterations)
	case metrics.Minimax:
		return fmt.Sprintf("depth %d", agent.Depth)
	default:
		return "none"
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// LogLevel reads the log level from QUARTO_LOG_LEVEL, falling back to fallback.
func LogLevel(fallback string) (zerolog.Level, error) {
	return zerolog.ParseLevel(getEnv(LogLevelEnv, fallback))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
