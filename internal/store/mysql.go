package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"weatherdesk/internal/metrics"
	"weatherdesk/internal/records"
	"weatherdesk/internal/weather"
)

// MySQLStore persists records in a single relational table. Daily temps are
// serialized as a JSON text column rather than a child table: they are always
// read and written whole.
type MySQLStore struct {
	conn *sql.DB
}

// NewMySQLStore opens a connection pool and initializes the schema.
// dsn format: "username:password@tcp(host:port)/dbname?parseTime=true"
func NewMySQLStore(dsn string) (*MySQLStore, error) {
	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	s := &MySQLStore{conn: conn}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *MySQLStore) initSchema() error {
	stmt := `CREATE TABLE IF NOT EXISTS weather_queries (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		location_input VARCHAR(255) NOT NULL,
		resolved_name VARCHAR(255) NOT NULL,
		country VARCHAR(32) NOT NULL DEFAULT '',
		state VARCHAR(64) NOT NULL DEFAULT '',
		lat DOUBLE NOT NULL,
		lon DOUBLE NOT NULL,
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		daily_temps_json TEXT NOT NULL,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		INDEX idx_weather_queries_location (location_input),
		INDEX idx_weather_queries_created (created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

	if _, err := s.conn.Exec(stmt); err != nil {
		return fmt.Errorf("failed to execute schema statement: %w", err)
	}
	return nil
}

func (s *MySQLStore) Close() error {
	return s.conn.Close()
}

func (s *MySQLStore) Insert(ctx context.Context, rec *records.Record) error {
	temps, err := json.Marshal(rec.DailyTemps)
	if err != nil {
		return fmt.Errorf("failed to encode daily temps: %w", err)
	}

	query := `INSERT INTO weather_queries
		(location_input, resolved_name, country, state, lat, lon, start_date, end_date, daily_temps_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryStart := time.Now()
	result, err := s.conn.ExecContext(ctx, query,
		rec.LocationInput, rec.ResolvedName, rec.Country, rec.State,
		rec.Lat, rec.Lon, rec.StartDate, rec.EndDate, string(temps),
		rec.CreatedAt, rec.UpdatedAt)
	metrics.RecordDBQuery("INSERT", "weather_queries", time.Since(queryStart), err)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted id: %w", err)
	}
	rec.ID = id
	return nil
}

const recordColumns = `id, location_input, resolved_name, country, state, lat, lon,
	start_date, end_date, daily_temps_json, created_at, updated_at`

func (s *MySQLStore) Get(ctx context.Context, id int64) (records.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM weather_queries WHERE id = ?`

	queryStart := time.Now()
	row := s.conn.QueryRowContext(ctx, query, id)
	rec, err := scanRecord(row)
	metrics.RecordDBQuery("SELECT", "weather_queries", time.Since(queryStart), err)
	if err == sql.ErrNoRows {
		return records.Record{}, ErrNotFound
	}
	if err != nil {
		return records.Record{}, fmt.Errorf("failed to get record %d: %w", id, err)
	}
	return rec, nil
}

func (s *MySQLStore) List(ctx context.Context, limit, offset int) ([]records.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM weather_queries ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`

	queryStart := time.Now()
	rows, err := s.conn.QueryContext(ctx, query, limit, offset)
	metrics.RecordDBQuery("SELECT", "weather_queries", time.Since(queryStart), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var out []records.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}
	return out, nil
}

func (s *MySQLStore) Update(ctx context.Context, rec records.Record) error {
	temps, err := json.Marshal(rec.DailyTemps)
	if err != nil {
		return fmt.Errorf("failed to encode daily temps: %w", err)
	}

	query := `UPDATE weather_queries SET
		location_input = ?, resolved_name = ?, country = ?, state = ?, lat = ?, lon = ?,
		start_date = ?, end_date = ?, daily_temps_json = ?, updated_at = ?
		WHERE id = ?`

	queryStart := time.Now()
	result, err := s.conn.ExecContext(ctx, query,
		rec.LocationInput, rec.ResolvedName, rec.Country, rec.State, rec.Lat, rec.Lon,
		rec.StartDate, rec.EndDate, string(temps), rec.UpdatedAt, rec.ID)
	metrics.RecordDBQuery("UPDATE", "weather_queries", time.Since(queryStart), err)
	if err != nil {
		return fmt.Errorf("failed to update record %d: %w", rec.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		// Either the row is gone or the update was a no-op; confirm existence.
		if _, getErr := s.Get(ctx, rec.ID); getErr != nil {
			return getErr
		}
	}
	return nil
}

func (s *MySQLStore) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM weather_queries WHERE id = ?`

	queryStart := time.Now()
	result, err := s.conn.ExecContext(ctx, query, id)
	metrics.RecordDBQuery("DELETE", "weather_queries", time.Since(queryStart), err)
	if err != nil {
		return fmt.Errorf("failed to delete record %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (records.Record, error) {
	var rec records.Record
	var tempsJSON string

	err := row.Scan(
		&rec.ID, &rec.LocationInput, &rec.ResolvedName, &rec.Country, &rec.State,
		&rec.Lat, &rec.Lon, &rec.StartDate, &rec.EndDate, &tempsJSON,
		&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return records.Record{}, err
	}

	var temps []weather.DailyTemperature
	if tempsJSON != "" {
		if err := json.Unmarshal([]byte(tempsJSON), &temps); err != nil {
			return records.Record{}, fmt.Errorf("failed to decode daily temps: %w", err)
		}
	}
	rec.DailyTemps = temps
	return rec, nil
}
