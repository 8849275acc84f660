// Package alertlog persists alerts in an append-only SQLite log. Rows are
// inserted once per evaluation run inside a transaction and never updated or
// deleted; reports are derived by reading windows of the log.
package alertlog

// #region imports
import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/alexdbatista/driftwatch/internal/monitor"
)

// #endregion

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS alert_log (
	id         TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL,
	seq        INTEGER NOT NULL,
	severity   INTEGER NOT NULL,
	label      TEXT NOT NULL,
	category   TEXT NOT NULL,
	metric     TEXT NOT NULL,
	value      REAL NOT NULL,
	threshold  REAL NOT NULL,
	message    TEXT NOT NULL,
	source     TEXT,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_alert_log_created_at ON alert_log(created_at);
`

// #endregion schema

// #region store-struct

// Store manages the append-only alert log in SQLite. Appends are serialized
// by a single-writer mutex so concurrent evaluation runs keep log order.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// #endregion store-struct

// #region constructor

// Open opens the SQLite database and runs migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion constructor

// #region append

// Append writes one run's alerts in a single transaction: all rows commit or
// none do.
func (s *Store) Append(alerts []monitor.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, a := range alerts {
		_, err := tx.Exec(
			`INSERT INTO alert_log (id, run_id, seq, severity, label, category, metric, value, threshold, message, source, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.RunID, a.Seq, int(a.Severity), a.Severity.String(), string(a.Category),
			a.Metric, a.Value, a.Threshold, a.Message, nullIfEmpty(a.Source),
			a.DetectedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert alert %s: %w", a.ID, err)
		}
	}
	return tx.Commit()
}

// #endregion append

// #region queries

// Window returns alerts detected in [from, to], in log order.
func (s *Store) Window(from, to time.Time) ([]monitor.Alert, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, seq, severity, category, metric, value, threshold, message, source, created_at
		 FROM alert_log
		 WHERE created_at >= ? AND created_at <= ?
		 ORDER BY created_at, run_id, seq`,
		from.UTC().Format(time.RFC3339Nano), to.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("window query: %w", err)
	}
	return scanAlerts(rows)
}

// Recent returns the most recent alerts, newest first.
func (s *Store) Recent(limit int) ([]monitor.Alert, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, seq, severity, category, metric, value, threshold, message, source, created_at
		 FROM alert_log
		 ORDER BY created_at DESC, run_id, seq DESC
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent query: %w", err)
	}
	return scanAlerts(rows)
}

// CountBySeverity returns alert counts per severity within [from, to].
func (s *Store) CountBySeverity(from, to time.Time) (map[monitor.Severity]int, error) {
	rows, err := s.db.Query(
		`SELECT severity, COUNT(*) FROM alert_log
		 WHERE created_at >= ? AND created_at <= ?
		 GROUP BY severity`,
		from.UTC().Format(time.RFC3339Nano), to.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("count query: %w", err)
	}
	defer rows.Close()

	counts := make(map[monitor.Severity]int)
	for rows.Next() {
		var sev, n int
		if err := rows.Scan(&sev, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[monitor.Severity(sev)] = n
	}
	return counts, rows.Err()
}

func scanAlerts(rows *sql.Rows) ([]monitor.Alert, error) {
	defer rows.Close()
	var alerts []monitor.Alert
	for rows.Next() {
		var a monitor.Alert
		var sev int
		var category, createdStr string
		var source sql.NullString
		if err := rows.Scan(&a.ID, &a.RunID, &a.Seq, &sev, &category, &a.Metric,
			&a.Value, &a.Threshold, &a.Message, &source, &createdStr); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		a.Severity = monitor.Severity(sev)
		a.Category = monitor.Category(category)
		if source.Valid {
			a.Source = source.String
		}
		a.DetectedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// #endregion queries

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
