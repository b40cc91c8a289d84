package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matt-fiveeighty/odyssey-sub006/internal/digest"
	"github.com/matt-fiveeighty/odyssey-sub006/internal/liquidity"
	"github.com/matt-fiveeighty/odyssey-sub006/internal/model"
)

// SQLiteRecorder persists history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cascades (
			id                 TEXT PRIMARY KEY,
			timestamp          INTEGER NOT NULL,
			milestone_id       TEXT,
			state_id           TEXT,
			species            TEXT,
			year               INTEGER,
			outcome            TEXT,
			waiting_years      INTEGER,
			permanent_ban      INTEGER,
			next_eligible_year INTEGER,
			payload            TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cascades_ts ON cascades(timestamp)`,

		`CREATE TABLE IF NOT EXISTS point_mutations (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			cascade_id  TEXT NOT NULL,
			state_id    TEXT,
			species     TEXT,
			delta       INTEGER,
			new_balance INTEGER,
			reason      TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS alerts (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			cascade_id TEXT NOT NULL,
			timestamp  INTEGER NOT NULL,
			kind       TEXT,
			severity   TEXT,
			state_id   TEXT,
			species    TEXT,
			year       INTEGER,
			title      TEXT,
			message    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_ts ON alerts(timestamp)`,

		`CREATE TABLE IF NOT EXISTS liquidity_checks (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			year          INTEGER,
			ceiling       TEXT,
			peak          TEXT,
			peak_start    INTEGER,
			peak_end      INTEGER,
			deficit       TEXT,
			severity      TEXT,
			active_events TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_liquidity_ts ON liquidity_checks(timestamp)`,

		`CREATE TABLE IF NOT EXISTS odds_snapshots (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			year           INTEGER,
			state_id       TEXT,
			species        TEXT,
			unit_id        TEXT,
			points         REAL,
			odds           REAL,
			years_to_draw  INTEGER,
			algorithm      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_odds_ts ON odds_snapshots(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordCascade stores the bundle with its mutations and alerts in one
// transaction. Recording the same bundle twice is a no-op.
func (r *SQLiteRecorder) RecordCascade(c *model.CascadeResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cascade: %w", err)
	}
	var next sql.NullInt64
	if c.NextEligibleYear != nil {
		next = sql.NullInt64{Int64: int64(*c.NextEligibleYear), Valid: true}
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	res, err := tx.Exec(`INSERT OR IGNORE INTO cascades
		(id, timestamp, milestone_id, state_id, species, year, outcome, waiting_years, permanent_ban, next_eligible_year, payload)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		c.ID, now, c.MilestoneID, c.StateID, c.Species, c.Year, string(c.Outcome),
		c.WaitingPeriodYears, c.PermanentBan, next, string(payload),
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}

	for _, pm := range c.PointMutations {
		if _, err := tx.Exec(`INSERT INTO point_mutations
			(cascade_id, state_id, species, delta, new_balance, reason)
			VALUES (?,?,?,?,?,?)`,
			c.ID, pm.StateID, pm.Species, pm.Delta, pm.NewBalance, pm.Reason,
		); err != nil {
			return err
		}
	}
	for _, a := range c.Alerts {
		if _, err := tx.Exec(`INSERT INTO alerts
			(cascade_id, timestamp, kind, severity, state_id, species, year, title, message)
			VALUES (?,?,?,?,?,?,?,?,?)`,
			c.ID, now, string(a.Kind), string(a.Severity), a.StateID, a.Species, a.Year, a.Title, a.Message,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordLiquidity(year int, rep *liquidity.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, len(rep.Active))
	for i, e := range rep.Active {
		ids[i] = e.ID
	}
	var start, end int64
	if !rep.PeakStart.IsZero() {
		start, end = rep.PeakStart.Unix(), rep.PeakEnd.Unix()
	}

	_, err := r.db.Exec(`INSERT INTO liquidity_checks
		(timestamp, year, ceiling, peak, peak_start, peak_end, deficit, severity, active_events)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), year, rep.Ceiling.String(), rep.Peak.String(), start, end,
		rep.Deficit.String(), string(rep.Severity), strings.Join(ids, ","),
	)
	return err
}

func (r *SQLiteRecorder) RecordDigest(d *digest.Digest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, e := range d.Entries {
		o := e.Odds
		if _, err := tx.Exec(`INSERT INTO odds_snapshots
			(timestamp, year, state_id, species, unit_id, points, odds, years_to_draw, algorithm)
			VALUES (?,?,?,?,?,?,?,?,?)`,
			now, d.Year, o.StateID, o.Species, o.UnitID, o.Points, o.Odds, o.YearsToDraw, o.Algorithm,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// RecentAlerts returns the newest cascade alerts first.
func (r *SQLiteRecorder) RecentAlerts(limit int) ([]model.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT kind, severity, state_id, species, year, title, message
		FROM alerts ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Alert
	for rows.Next() {
		var a model.Alert
		var kind, severity string
		if err := rows.Scan(&kind, &severity, &a.StateID, &a.Species, &a.Year, &a.Title, &a.Message); err != nil {
			return nil, err
		}
		a.Kind, a.Severity = model.AlertKind(kind), model.Severity(severity)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
