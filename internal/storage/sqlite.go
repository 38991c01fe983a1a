// Package storage keeps per-client query statistics in SQLite.
package storage

import (
	"database/sql"
	"time"

	"github.com/woozymasta/a2sim/internal/models"
	_ "modernc.org/sqlite" // Driver sqlite
)

// Repository manages the SQLite database connection.
type Repository struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
func New(dbPath string) (*Repository, error) {
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// a single writer avoids SQLITE_BUSY from the stats worker
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repository{db: db}, nil
}

// Close closes the underlying database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Record adds an answered query to the per client counters.
func (r *Repository) Record(ev models.QueryEvent) error {
	challenged := 0
	if ev.Challenged {
		challenged = 1
	}

	_, err := r.db.Exec(`
	INSERT INTO query_stats (ip, kind, country, requests, challenges, bytes_sent, first_seen, last_seen)
	VALUES (?, ?, ?, 1, ?, ?, ?, ?)
	ON CONFLICT(ip, kind) DO UPDATE SET
		requests   = requests + 1,
		challenges = challenges + excluded.challenges,
		bytes_sent = bytes_sent + excluded.bytes_sent,
		last_seen  = excluded.last_seen,

		-- keep a known country when the lookup failed this time
		country = CASE WHEN excluded.country != '' THEN excluded.country ELSE query_stats.country END;
	`,
		ev.IP, ev.Kind, ev.Country, challenged, ev.Bytes, ev.Time.UTC(), ev.Time.UTC(),
	)

	return err
}

// Stats returns all counters, most recently seen first.
func (r *Repository) Stats() ([]models.ClientStat, error) {
	rows, err := r.db.Query(`
		SELECT ip, kind, country, requests, challenges, bytes_sent, first_seen, last_seen
		FROM query_stats
		ORDER BY last_seen DESC, ip, kind
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var stats []models.ClientStat
	for rows.Next() {
		var s models.ClientStat
		if err := rows.Scan(
			&s.IP, &s.Kind, &s.Country, &s.Requests, &s.Challenges, &s.BytesSent,
			&s.FirstSeen, &s.LastSeen,
		); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

// Prune deletes counters last seen before cutoff.
func (r *Repository) Prune(cutoff time.Time) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM query_stats WHERE last_seen < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
