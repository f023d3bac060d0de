package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id TEXT PRIMARY KEY,
	experiment TEXT,
	matchup INTEGER,
	agent1 INTEGER,
	agent2 INTEGER,
	starting_player INTEGER,
	winner TEXT,
	started_at TEXT,
	ended_at TEXT,
	duration_ns INTEGER,
	total_moves INTEGER,
	final_state TEXT
);
CREATE TABLE IF NOT EXISTS moves (
	game TEXT REFERENCES games(id),
	step INTEGER,
	player INTEGER,
	move TEXT,
	algorithm TEXT,
	goroutines INTEGER,
	depth INTEGER,
	duration_ns INTEGER,
	episodes INTEGER,
	playouts INTEGER,
	nodes INTEGER,
	PRIMARY KEY (game, step)
);
`

// Store persists experiment results to SQLite.
type Store struct {
	db         *sql.DB
	experiment string
}

func OpenStore(path, experiment string) (*Store, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Games finish concurrently; SQLite takes one writer at a time
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Debug().Msgf("database initialized at %s", path)
	return &Store{db: db, experiment: experiment}, nil
}

// SaveGame stores a game and its moves in one transaction.
func (s *Store) SaveGame(ctx context.Context, game GameRecord, moves []MoveRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO games (id, experiment, matchup, agent1, agent2, starting_player, winner, started_at, ended_at, duration_ns, total_moves, final_state)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		game.ID,
		s.experiment,
		game.Matchup,
		game.Agent1,
		game.Agent2,
		game.StartingPlayer,
		game.Winner,
		game.StartTime.UTC().Format(time.RFC3339Nano),
		game.EndTime.UTC().Format(time.RFC3339Nano),
		int64(game.Duration),
		game.TotalMoves,
		game.FinalState,
	)
	if err != nil {
		return fmt.Errorf("failed to save game %s: %w", game.ID, err)
	}

	for _, move := range moves {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO moves (game, step, player, move, algorithm, goroutines, depth, duration_ns, episodes, playouts, nodes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			move.Game,
			move.Step,
			move.Player,
			move.Move,
			string(move.Algorithm),
			move.Goroutines,
			move.Depth,
			int64(move.Duration),
			move.Episodes,
			move.Playouts,
			move.Nodes,
		)
		if err != nil {
			return fmt.Errorf("failed to save move %d of game %s: %w", move.Step, move.Game, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit game %s: %w", game.ID, err)
	}
	return nil
}

// Games returns the stored games of this experiment in start order.
func (s *Store) Games(ctx context.Context) ([]GameRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, matchup, agent1, agent2, starting_player, winner, started_at, ended_at, duration_ns, total_moves, final_state
		FROM games WHERE experiment = ? ORDER BY started_at, id`, s.experiment)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	var games []GameRecord
	for rows.Next() {
		var (
			record             GameRecord
			startedAt, endedAt string
			duration           int64
		)
		err := rows.Scan(&record.ID, &record.Matchup, &record.Agent1, &record.Agent2, &record.StartingPlayer,
			&record.Winner, &startedAt, &endedAt, &duration, &record.TotalMoves, &record.FinalState)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		record.StartTime, _ = time.Parse(time.RFC3339Nano, startedAt)
		record.EndTime, _ = time.Parse(time.RFC3339Nano, endedAt)
		record.Duration = time.Duration(duration)
		games = append(games, record)
	}
	return games, rows.Err()
}

// CountMoves returns the number of stored moves of a game.
func (s *Store) CountMoves(ctx context.Context, game string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM moves WHERE game = ?`, game).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count moves of game %s: %w", game, err)
	}
	return count, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
