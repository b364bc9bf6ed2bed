package archive

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const timeLayout = "2006-01-02 15:04:05"

// DB records conversion outcomes in a local sqlite database so repeated
// runs over the same directory can be audited and skipped work inspected.
type DB struct {
	db *sql.DB
}

// Open opens (creating if needed) the archive database at path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	a := &DB{db: db}
	if err := a.createTables(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

func (a *DB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT UNIQUE NOT NULL,
		sha256 TEXT,
		status TEXT NOT NULL,
		error TEXT,
		start_time DATETIME,
		total_distance_m REAL,
		avg_speed_kmh REAL,
		avg_heart_rate_bpm REAL,
		lap_count INTEGER DEFAULT 0,
		record_count INTEGER DEFAULT 0,
		json_path TEXT,
		markdown_path TEXT,
		converted_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_conversions_status ON conversions(status);
	CREATE INDEX IF NOT EXISTS idx_conversions_start_time ON conversions(start_time);
	`
	_, err := a.db.Exec(schema)
	return err
}

// RecordConversion upserts the outcome for one file; reconverting a file
// replaces its previous row.
func (a *DB) RecordConversion(c *Conversion) error {
	query := `
	INSERT INTO conversions (
		filename, sha256, status, error, start_time, total_distance_m,
		avg_speed_kmh, avg_heart_rate_bpm, lap_count, record_count,
		json_path, markdown_path, converted_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(filename) DO UPDATE SET
		sha256 = excluded.sha256,
		status = excluded.status,
		error = excluded.error,
		start_time = excluded.start_time,
		total_distance_m = excluded.total_distance_m,
		avg_speed_kmh = excluded.avg_speed_kmh,
		avg_heart_rate_bpm = excluded.avg_heart_rate_bpm,
		lap_count = excluded.lap_count,
		record_count = excluded.record_count,
		json_path = excluded.json_path,
		markdown_path = excluded.markdown_path,
		converted_at = excluded.converted_at`

	var startTime interface{}
	if c.StartTime != nil {
		startTime = c.StartTime.UTC().Format(timeLayout)
	}
	convertedAt := c.ConvertedAt
	if convertedAt.IsZero() {
		convertedAt = time.Now()
	}
	_, err := a.db.Exec(query,
		c.Filename, c.SHA256, c.Status, c.Error, startTime,
		c.TotalDistanceM, c.AvgSpeedKmh, c.AvgHeartRate,
		c.LapCount, c.RecordCount, c.JSONPath, c.MarkdownPath,
		convertedAt.UTC().Format(timeLayout),
	)
	return err
}

// GetConversion returns the recorded outcome for one filename.
func (a *DB) GetConversion(filename string) (*Conversion, error) {
	row := a.db.QueryRow(`
	SELECT id, filename, sha256, status, error, start_time, total_distance_m,
	       avg_speed_kmh, avg_heart_rate_bpm, lap_count, record_count,
	       json_path, markdown_path, converted_at
	FROM conversions WHERE filename = ?`, filename)

	c, err := scanConversion(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("conversion not found: %s", filename)
	}
	return c, err
}

// Recent returns the most recently converted files, newest first.
func (a *DB) Recent(limit int) ([]Conversion, error) {
	rows, err := a.db.Query(`
	SELECT id, filename, sha256, status, error, start_time, total_distance_m,
	       avg_speed_kmh, avg_heart_rate_bpm, lap_count, record_count,
	       json_path, markdown_path, converted_at
	FROM conversions ORDER BY converted_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Conversion
	for rows.Next() {
		c, err := scanConversion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// GetStats counts archived conversions by status.
func (a *DB) GetStats() (*Stats, error) {
	stats := &Stats{}
	if err := a.db.QueryRow("SELECT COUNT(*) FROM conversions").Scan(&stats.Total); err != nil {
		return nil, err
	}
	if err := a.db.QueryRow("SELECT COUNT(*) FROM conversions WHERE status = 'success'").Scan(&stats.Succeeded); err != nil {
		return nil, err
	}
	stats.Failed = stats.Total - stats.Succeeded
	return stats, nil
}

func (a *DB) Close() error {
	return a.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanConversion(row rowScanner) (*Conversion, error) {
	var c Conversion
	var sha, errText, startTime, jsonPath, mdPath sql.NullString
	var convertedAt string

	err := row.Scan(
		&c.ID, &c.Filename, &sha, &c.Status, &errText, &startTime,
		&c.TotalDistanceM, &c.AvgSpeedKmh, &c.AvgHeartRate,
		&c.LapCount, &c.RecordCount, &jsonPath, &mdPath, &convertedAt,
	)
	if err != nil {
		return nil, err
	}
	c.SHA256 = sha.String
	c.Error = errText.String
	c.JSONPath = jsonPath.String
	c.MarkdownPath = mdPath.String
	if startTime.Valid {
		t, err := time.Parse(timeLayout, startTime.String)
		if err != nil {
			return nil, err
		}
		c.StartTime = &t
	}
	if c.ConvertedAt, err = time.Parse(timeLayout, convertedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
