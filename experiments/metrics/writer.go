package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type GameRecord struct {
	Matchup int // 1-based index into the experiment's matchups
	Agent1  int // AgentConfig.ID playing Player1
	Agent2  int // AgentConfig.ID playing Player2
	GameMetric
}

type MoveRecord struct {
	Game string // GameMetric.ID
	MoveMetric
}

type Writer struct {
	baseDir string
}

// NewWriter creates outputDir/name/<timestamp> for one experiment run.
func NewWriter(outputDir, name string) (*Writer, error) {
	// Create a subfolder named by current timestamp
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(outputDir, name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteAgentConfigs(configs []AgentConfig) error {
	header := []string{"id", "algorithm", "goroutines", "iterations", "duration", "depth", "temperature"}
	rows := make([][]string, len(configs))
	for i, config := range configs {
		rows[i] = []string{
			strconv.Itoa(config.ID),
			string(config.Algorithm),
			strconv.Itoa(config.Goroutines),
			strconv.Itoa(config.Iterations),
			config.Duration.String(),
			strconv.Itoa(config.Depth),
			strconv.FormatFloat(config.Temperature, 'f', -1, 64),
		}
	}
	return w.write("agent_configs.csv", header, rows)
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	header := []string{"id", "matchup", "agent1", "agent2", "starting_player", "winner", "start_time", "end_time", "duration", "total_moves", "final_state"}
	rows := make([][]string, len(records))
	for i, record := range records {
		rows[i] = []string{
			record.ID,
			strconv.Itoa(record.Matchup),
			strconv.Itoa(record.Agent1),
			strconv.Itoa(record.Agent2),
			strconv.Itoa(record.StartingPlayer),
			record.Winner,
			record.StartTime.Format(time.RFC3339Nano),
			record.EndTime.Format(time.RFC3339Nano),
			record.Duration.String(),
			strconv.Itoa(record.TotalMoves),
			record.FinalState,
		}
	}
	return w.write("game_records.csv", header, rows)
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	header := []string{"game", "step", "player", "move", "algorithm", "goroutines", "depth", "duration", "episodes", "playouts", "nodes"}
	rows := make([][]string, len(records))
	for i, record := range records {
		rows[i] = []string{
			record.Game,
			strconv.Itoa(record.Step),
			strconv.Itoa(record.Player),
			record.Move,
			string(record.Algorithm),
			strconv.Itoa(record.Goroutines),
			strconv.Itoa(record.Depth),
			record.Duration.String(),
			strconv.Itoa(record.Episodes),
			strconv.Itoa(record.Playouts),
			strconv.Itoa(record.Nodes),
		}
	}
	return w.write("move_records.csv", header, rows)
}

func (w *Writer) write(name string, header []string, rows [][]string) error {
	// Create a file
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	err = writer.WriteAll(rows)
	if err != nil {
		return fmt.Errorf("failed to write %s rows: %w", name, err)
	}
	return nil
}
