package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/muurk/gw1000/internal/logging"
	"github.com/muurk/gw1000/internal/protocol"
)

const schema = `
CREATE TABLE IF NOT EXISTS observations (
   ts    BIGINT NOT NULL,
   name  TEXT NOT NULL,
   value REAL
);
CREATE INDEX IF NOT EXISTS idx_observations_name_ts ON observations (name, ts);
`

// Store archives observations in a SQLite database
type Store struct {
	db *sql.DB
}

// Point is one archived value; Value is nil when the gateway reported none
type Point struct {
	Time  time.Time `json:"time" yaml:"time"`
	Value *float64  `json:"value" yaml:"value"`
}

// Open opens or creates the archive at path. ":memory:" gives a private
// in-memory archive.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	// One connection keeps ":memory:" databases shared and serialises writes
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialise archive schema: %w", err)
	}

	logging.Info("Archive opened", zap.String("path", path))
	return &Store{db: db}, nil
}

// Save stores every observation under the poll time at, in one transaction.
// nil values are stored as NULL; non-numeric values are rejected.
func (s *Store) Save(ctx context.Context, at time.Time, obs protocol.Observations) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin archive transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO observations (ts, name, value) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	ts := at.Unix()
	for _, name := range protocol.SortedKeys(obs) {
		var value sql.NullFloat64
		if v := obs[name]; v != nil {
			f, ok := protocol.ToFloat(v)
			if !ok {
				return fmt.Errorf("observation %q has non-numeric value %v", name, v)
			}
			value = sql.NullFloat64{Float64: f, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, ts, name, value); err != nil {
			return fmt.Errorf("failed to archive %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit archive transaction: %w", err)
	}

	logging.Debug("Observations archived", zap.Int64("ts", ts), zap.Int("count", len(obs)))
	return nil
}

// Latest returns the most recent value of every observation name and the
// time of the newest record. An empty archive returns an empty result and a
// zero time.
func (s *Store) Latest(ctx context.Context) (protocol.Observations, time.Time, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.name, o.value, o.ts
		FROM observations o
		JOIN (SELECT name, MAX(ts) AS ts FROM observations GROUP BY name) latest
		  ON o.name = latest.name AND o.ts = latest.ts`)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to query latest observations: %w", err)
	}
	defer rows.Close()

	obs := make(protocol.Observations)
	var newest int64
	for rows.Next() {
		var (
			name  string
			value sql.NullFloat64
			ts    int64
		)
		if err := rows.Scan(&name, &value, &ts); err != nil {
			return nil, time.Time{}, fmt.Errorf("failed to scan observation: %w", err)
		}
		if value.Valid {
			obs[name] = value.Float64
		} else {
			obs[name] = nil
		}
		if ts > newest {
			newest = ts
		}
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, err
	}

	if newest == 0 {
		return obs, time.Time{}, nil
	}
	return obs, time.Unix(newest, 0), nil
}

// History returns the values of one observation recorded at or after since,
// oldest first.
func (s *Store) History(ctx context.Context, name string, since time.Time) ([]Point, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ts, value FROM observations WHERE name = ? AND ts >= ? ORDER BY ts`,
		name, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to query history for %q: %w", name, err)
	}
	defer rows.Close()

	var points []Point
	for rows.Next() {
		var (
			ts    int64
			value sql.NullFloat64
		)
		if err := rows.Scan(&ts, &value); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		p := Point{Time: time.Unix(ts, 0)}
		if value.Valid {
			v := value.Float64
			p.Value = &v
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}
