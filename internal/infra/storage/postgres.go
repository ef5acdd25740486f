package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
)

const postgresColumns = `id, game_id, timestamp, event_type, player_id, role, round, target, source, payload`

// InitPostgres connects to PostgreSQL and creates the ledger table.
func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres database: %w", err)
	}
	schema := `
		CREATE TABLE IF NOT EXISTS decision_log (
			id TEXT PRIMARY KEY,
			game_id TEXT NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL,
			event_type TEXT NOT NULL,
			player_id INTEGER NOT NULL,
			role TEXT NOT NULL,
			round INTEGER NOT NULL,
			target INTEGER NOT NULL DEFAULT 0,
			source TEXT NOT NULL,
			payload JSONB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_decision_log_game ON decision_log(game_id, round);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schemas: %w", err)
	}
	return db, nil
}

// PostgresDecisionRepository implements DecisionRepository using PostgreSQL.
type PostgresDecisionRepository struct {
	db *sql.DB
}

// NewPostgresDecisionRepository creates a new PostgreSQL decision repository.
func NewPostgresDecisionRepository(db *sql.DB) *PostgresDecisionRepository {
	return &PostgresDecisionRepository{db: db}
}

// Append inserts a record into the immutable ledger.
func (r *PostgresDecisionRepository) Append(ctx context.Context, rec DecisionRecord) error {
	query := `
		INSERT INTO decision_log (` + postgresColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.GameID,
		rec.Timestamp,
		rec.EventType,
		rec.PlayerID,
		rec.Role,
		rec.Round,
		rec.Target,
		rec.Source,
		[]byte(rec.Payload),
	)
	if err != nil {
		return fmt.Errorf("failed to append decision: %w", err)
	}
	return nil
}

// GetByGameID retrieves a game's full decision history.
func (r *PostgresDecisionRepository) GetByGameID(ctx context.Context, gameID string) ([]DecisionRecord, error) {
	query := `
		SELECT ` + postgresColumns + `
		FROM decision_log
		WHERE game_id = $1
		ORDER BY timestamp ASC
	`
	return r.queryRecords(ctx, query, gameID)
}

// GetByRound retrieves one round of a game.
func (r *PostgresDecisionRepository) GetByRound(ctx context.Context, gameID string, round int) ([]DecisionRecord, error) {
	query := `
		SELECT ` + postgresColumns + `
		FROM decision_log
		WHERE game_id = $1 AND round = $2
		ORDER BY timestamp ASC
	`
	return r.queryRecords(ctx, query, gameID, round)
}

// GetByEventType retrieves all records of a specific type.
func (r *PostgresDecisionRepository) GetByEventType(ctx context.Context, gameID, eventType string) ([]DecisionRecord, error) {
	query := `
		SELECT ` + postgresColumns + `
		FROM decision_log
		WHERE game_id = $1 AND event_type = $2
		ORDER BY timestamp ASC
	`
	return r.queryRecords(ctx, query, gameID, eventType)
}

// CountBySource tallies engine, LLM and fallback responses.
func (r *PostgresDecisionRepository) CountBySource(ctx context.Context, gameID string) (map[string]int, error) {
	return countBySource(ctx, r.db, `SELECT source, COUNT(*) FROM decision_log WHERE game_id = $1 GROUP BY source`, gameID)
}

// queryRecords is a helper to execute queries and scan results.
func (r *PostgresDecisionRepository) queryRecords(ctx context.Context, query string, args ...interface{}) ([]DecisionRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	var recs []DecisionRecord
	for rows.Next() {
		var rec DecisionRecord
		var payload []byte
		err := rows.Scan(
			&rec.ID,
			&rec.GameID,
			&rec.Timestamp,
			&rec.EventType,
			&rec.PlayerID,
			&rec.Role,
			&rec.Round,
			&rec.Target,
			&rec.Source,
			&payload,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		rec.Payload = payload
		recs = append(recs, rec)
	}

	return recs, rows.Err()
}

var _ DecisionRepository = (*PostgresDecisionRepository)(nil)
