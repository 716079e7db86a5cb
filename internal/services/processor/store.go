package processor

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/model/entities"
)

// Fixed width keeps lexical order equal to time order.
const timeLayout = "2006-01-02T15:04:05.000000Z"

// Store is the SQLite capture log. Safe for concurrent use.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the capture database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open capture database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate capture schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS captures (
		id             TEXT PRIMARY KEY,
		timestamp      TEXT NOT NULL,
		classification TEXT NOT NULL,
		confidence     REAL NOT NULL,
		video_path     TEXT NOT NULL,
		frame_path     TEXT NOT NULL DEFAULT '',
		temp           REAL,
		humidity       REAL,
		battery        INTEGER,
		light_state    INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_captures_timestamp ON captures(timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Insert stores c. An empty ID gets a UUIDv7 and a zero Timestamp gets now.
func (s *Store) Insert(ctx context.Context, c entities.Capture) (entities.Capture, error) {
	if c.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return c, fmt.Errorf("generate capture ID: %w", err)
		}
		c.ID = id.String()
	}
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO captures
			(id, timestamp, classification, confidence, video_path, frame_path,
			 temp, humidity, battery, light_state)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.Timestamp.UTC().Format(timeLayout),
		c.Classification,
		c.Confidence,
		c.VideoPath,
		c.FramePath,
		c.Temperature,
		c.Humidity,
		c.Battery,
		c.LightState,
	)
	if err != nil {
		return c, fmt.Errorf("insert capture: %w", err)
	}
	return c, nil
}

// Recent returns up to limit captures, newest first. animalsOnly drops
// false positives.
func (s *Store) Recent(ctx context.Context, limit int, animalsOnly bool) ([]entities.Capture, error) {
	q := `SELECT id, timestamp, classification, confidence, video_path, frame_path,
	             COALESCE(temp, 0), COALESCE(humidity, 0), COALESCE(battery, 0), COALESCE(light_state, 0)
	      FROM captures`
	args := []any{}
	if animalsOnly {
		q += ` WHERE classification != ?`
		args = append(args, entities.FalsePositive)
	}
	q += ` ORDER BY timestamp DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query captures: %w", err)
	}
	defer rows.Close()

	var out []entities.Capture
	for rows.Next() {
		var c entities.Capture
		var ts string
		if err := rows.Scan(&c.ID, &ts, &c.Classification, &c.Confidence, &c.VideoPath, &c.FramePath,
			&c.Temperature, &c.Humidity, &c.Battery, &c.LightState); err != nil {
			return nil, fmt.Errorf("scan capture: %w", err)
		}
		if c.Timestamp, err = time.Parse(timeLayout, ts); err != nil {
			return nil, fmt.Errorf("parse capture timestamp %q: %w", ts, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CountByClass returns the number of captures per classification.
func (s *Store) CountByClass(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT classification, COUNT(*) FROM captures GROUP BY classification`)
	if err != nil {
		return nil, fmt.Errorf("count captures: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var class string
		var n int
		if err := rows.Scan(&class, &n); err != nil {
			return nil, err
		}
		out[class] = n
	}
	return out, rows.Err()
}
