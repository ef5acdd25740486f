package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Fixed width so ORDER BY timestamp sorts correctly.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const sqliteColumns = `id, game_id, timestamp, event_type, player_id, role, round, target, source, payload`

// SQLiteDecisionRepository implements DecisionRepository for SQLite.
type SQLiteDecisionRepository struct {
	db *sql.DB
}

func NewSQLiteDecisionRepository(db *sql.DB) *SQLiteDecisionRepository {
	return &SQLiteDecisionRepository{db: db}
}

func (r *SQLiteDecisionRepository) Append(ctx context.Context, rec DecisionRecord) error {
	query := `INSERT INTO decisions (` + sqliteColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.GameID, rec.Timestamp.UTC().Format(sqliteTimeLayout), rec.EventType, rec.PlayerID,
		rec.Role, rec.Round, rec.Target, rec.Source, string(rec.Payload),
	)
	if err != nil {
		return fmt.Errorf("failed to append decision: %w", err)
	}
	return nil
}

func (r *SQLiteDecisionRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]DecisionRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []DecisionRecord
	for rows.Next() {
		var rec DecisionRecord
		var ts, payload string
		err := rows.Scan(
			&rec.ID, &rec.GameID, &ts, &rec.EventType, &rec.PlayerID,
			&rec.Role, &rec.Round, &rec.Target, &rec.Source, &payload,
		)
		if err != nil {
			return nil, err
		}
		if rec.Timestamp, err = time.Parse(sqliteTimeLayout, ts); err != nil {
			return nil, fmt.Errorf("bad timestamp %q: %w", ts, err)
		}
		rec.Payload = []byte(payload)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (r *SQLiteDecisionRepository) GetByGameID(ctx context.Context, gameID string) ([]DecisionRecord, error) {
	query := `SELECT ` + sqliteColumns + ` FROM decisions WHERE game_id = ? ORDER BY timestamp ASC`
	return r.getMany(ctx, query, gameID)
}

func (r *SQLiteDecisionRepository) GetByRound(ctx context.Context, gameID string, round int) ([]DecisionRecord, error) {
	query := `SELECT ` + sqliteColumns + ` FROM decisions WHERE game_id = ? AND round = ? ORDER BY timestamp ASC`
	return r.getMany(ctx, query, gameID, round)
}

func (r *SQLiteDecisionRepository) GetByEventType(ctx context.Context, gameID, eventType string) ([]DecisionRecord, error) {
	query := `SELECT ` + sqliteColumns + ` FROM decisions WHERE game_id = ? AND event_type = ? ORDER BY timestamp ASC`
	return r.getMany(ctx, query, gameID, eventType)
}

func (r *SQLiteDecisionRepository) CountBySource(ctx context.Context, gameID string) (map[string]int, error) {
	return countBySource(ctx, r.db, `SELECT source, COUNT(*) FROM decisions WHERE game_id = ? GROUP BY source`, gameID)
}

func countBySource(ctx context.Context, db *sql.DB, query, gameID string) (map[string]int, error) {
	rows, err := db.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var source string
		var n int
		if err := rows.Scan(&source, &n); err != nil {
			return nil, err
		}
		counts[source] = n
	}
	return counts, rows.Err()
}

var _ DecisionRepository = (*SQLiteDecisionRepository)(nil)
