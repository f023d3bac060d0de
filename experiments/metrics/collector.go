package metrics

import (
	"sync/atomic"
	"time"
)

type Algorithm string

const (
	MCTS    Algorithm = "mcts"
	Minimax Algorithm = "minimax"
	Random  Algorithm = "random"
)

// AgentConfig describes one agent taking part in an experiment.
type AgentConfig struct {
	ID          int           `yaml:"id"`
	Algorithm   Algorithm     `yaml:"algorithm"`
	Goroutines  int           `yaml:"goroutines"`
	Iterations  int           `yaml:"iterations"`
	Duration    time.Duration `yaml:"duration"`
	Depth       int           `yaml:"depth"`
	Temperature float64       `yaml:"temperature"` // Samples MCTS moves by visit counts when > 0
}

type SearchMetric struct {
	Algorithm  Algorithm
	Goroutines int
	Depth      int
	Duration   time.Duration
	Episodes   int // MCTS iterations
	Playouts   int // Random playouts that reached a terminal state
	Nodes      int // States created by the search
}

type MoveMetric struct {
	Step   int
	Player int // Player ID
	Move   string
	SearchMetric
}

type GameMetric struct {
	ID             string
	StartingPlayer int    // Player ID
	Winner         string // Player name, "none" for a draw
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
	FinalState     string // Opaque encoded board
}

type Collector interface {
	Start(algorithm Algorithm, goroutines, depth int)
	AddEpisode()
	AddPlayout()
	AddNode()
	Complete() SearchMetric
}

type collector struct {
	algorithm  Algorithm
	goroutines int
	depth      int
	startTime  time.Time
	episodes   atomic.Int32
	playouts   atomic.Int32
	nodes      atomic.Int32
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(algorithm Algorithm, goroutines, depth int) {
	m.startTime = time.Now()
	m.algorithm = algorithm
	m.goroutines = goroutines
	m.depth = depth
}

func (m *collector) AddEpisode() {
	m.episodes.Add(1)
}

func (m *collector) AddPlayout() {
	m.playouts.Add(1)
}

func (m *collector) AddNode() {
	m.nodes.Add(1)
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Algorithm:  m.algorithm,
		Goroutines: m.goroutines,
		Depth:      m.depth,
		Duration:   time.Since(m.startTime),
		Episodes:   int(m.episodes.Load()),
		Playouts:   int(m.playouts.Load()),
		Nodes:      int(m.nodes.Load()),
	}
}

// dummyCollector only records the search configuration.
type dummyCollector struct {
	algorithm  Algorithm
	goroutines int
	depth      int
}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(algorithm Algorithm, goroutines, depth int) {
	m.algorithm = algorithm
	m.goroutines = goroutines
	m.depth = depth
}

func (m *dummyCollector) AddEpisode() {}
func (m *dummyCollector) AddPlayout() {}
func (m *dummyCollector) AddNode()    {}

func (m *dummyCollector) Complete() SearchMetric {
	return SearchMetric{Algorithm: m.algorithm, Goroutines: m.goroutines, Depth: m.depth}
}
