// Copyright 2026 The Rumbo Authors
// SPDX-License-Identifier: Apache-2.0

package track

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jcodagnone/rumbo/spatial"
	"github.com/uber/h3-go/v4"
)

// ErrNoLocations is returned by Latest when the history is empty.
var ErrNoLocations = errors.New("no locations recorded")

// Resolutions the repository indexes for the area summary. Res 7 is roughly
// a neighbourhood, res 9 a city block.
const (
	minAreaResolution = 7
	maxAreaResolution = 9

	// DefaultAreaResolution is used when the caller doesn't pick one.
	DefaultAreaResolution = 8
)

// Area groups the session's records that fall into the same H3 cell.
type Area struct {
	Cell       string        `json:"cell"` // H3 cell index, hex encoded
	Resolution int           `json:"resolution"`
	Center     spatial.Point `json:"center"`
	Visits     int           `json:"visits"`
	FirstSeen  string        `json:"first_seen"`
	LastSeen   string        `json:"last_seen"`
	Label      string        `json:"label"` // address of the latest record in the cell
}

// HistoryRepository owns the session's append-only location history.
// Insertion order is chronological order and the only order ever used.
type HistoryRepository interface {
	// CreateSchema creates the locations table
	CreateSchema() error

	// Append adds a record to the end of the history. No deduplication,
	// no validation.
	Append(record *Record) error

	// Clear empties the history
	Clear() error

	// Latest returns the last appended record, or ErrNoLocations
	Latest() (*Record, error)

	// All returns the full history in insertion order
	All() ([]*Record, error)

	// Count returns the number of records in the history
	Count() (int, error)

	// AreaSummary groups the history by H3 cell at the given resolution
	AreaSummary(resolution int) ([]*Area, error)

	// DB returns the underlying database connection
	DB() *sql.DB
}

type sqlHistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a history repository over the given database.
// Opened against an in-memory DuckDB the history lives exactly as long as
// the process, which is the intended session scope.
func NewHistoryRepository(db *sql.DB) HistoryRepository {
	return &sqlHistoryRepository{db: db}
}

// DB returns the underlying database connection for advanced queries.
func (r *sqlHistoryRepository) DB() *sql.DB {
	return r.db
}

func (r *sqlHistoryRepository) CreateSchema() error {
	_, err := r.db.Exec(`
		CREATE SEQUENCE IF NOT EXISTS locations_seq START 1;

		CREATE TABLE IF NOT EXISTS locations (
			id INTEGER PRIMARY KEY DEFAULT nextval('locations_seq'),
			latitude DOUBLE NOT NULL,
			longitude DOUBLE NOT NULL,
			accuracy DOUBLE,
			address VARCHAR NOT NULL,
			recorded_at VARCHAR NOT NULL,
			h3_res7 BIGINT NOT NULL,
			h3_res8 BIGINT NOT NULL,
			h3_res9 BIGINT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating locations table: %w", err)
	}

	return nil
}

func (r *sqlHistoryRepository) Append(record *Record) error {
	var accuracy sql.NullFloat64
	if record.Accuracy != nil {
		accuracy = sql.NullFloat64{Float64: *record.Accuracy, Valid: true}
	}

	_, err := r.db.Exec(`
		INSERT INTO locations (
			latitude, longitude, accuracy, address, recorded_at,
			h3_res7, h3_res8, h3_res9
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.Latitude,
		record.Longitude,
		accuracy,
		record.Address,
		record.Timestamp,
		record.H3Res7,
		record.H3Res8,
		record.H3Res9,
	)
	if err != nil {
		return fmt.Errorf("appending location: %w", err)
	}

	return nil
}

func (r *sqlHistoryRepository) Clear() error {
	if _, err := r.db.Exec(`DELETE FROM locations`); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}

	return nil
}

const recordColumns = `latitude, longitude, accuracy, address, recorded_at, h3_res7, h3_res8, h3_res9`

func scanRecord(row interface{ Scan(...any) error }) (*Record, error) {
	var (
		record   Record
		accuracy sql.NullFloat64
	)

	err := row.Scan(
		&record.Latitude,
		&record.Longitude,
		&accuracy,
		&record.Address,
		&record.Timestamp,
		&record.H3Res7,
		&record.H3Res8,
		&record.H3Res9,
	)
	if err != nil {
		return nil, err
	}

	if accuracy.Valid {
		record.Accuracy = &accuracy.Float64
	}

	return &record, nil
}

func (r *sqlHistoryRepository) Latest() (*Record, error) {
	row := r.db.QueryRow(`
		SELECT ` + recordColumns + `
		FROM locations
		ORDER BY id DESC
		LIMIT 1
	`)

	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoLocations
	}

	if err != nil {
		return nil, fmt.Errorf("getting latest location: %w", err)
	}

	return record, nil
}

func (r *sqlHistoryRepository) All() ([]*Record, error) {
	rows, err := r.db.Query(`
		SELECT ` + recordColumns + `
		FROM locations
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	var records []*Record

	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning location: %w", err)
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}

	return records, nil
}

func (r *sqlHistoryRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM locations`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting locations: %w", err)
	}

	return count, nil
}

func (r *sqlHistoryRepository) AreaSummary(resolution int) ([]*Area, error) {
	if resolution < minAreaResolution || resolution > maxAreaResolution {
		return nil, fmt.Errorf("resolution must be between %d and %d (got %d)",
			minAreaResolution, maxAreaResolution, resolution)
	}

	column := fmt.Sprintf("h3_res%d", resolution)

	rows, err := r.db.Query(`
		SELECT
			` + column + ` AS cell,
			COUNT(*) AS visits,
			MIN(recorded_at) AS first_seen,
			MAX(recorded_at) AS last_seen,
			arg_max(address, id) AS label
		FROM locations
		WHERE ` + column + ` != 0
		GROUP BY cell
		ORDER BY visits DESC, cell
	`)
	if err != nil {
		return nil, fmt.Errorf("summarizing areas: %w", err)
	}
	defer rows.Close()

	var areas []*Area

	for rows.Next() {
		var (
			cell int64
			area Area
		)

		if err := rows.Scan(&cell, &area.Visits, &area.FirstSeen, &area.LastSeen, &area.Label); err != nil {
			return nil, fmt.Errorf("scanning area: %w", err)
		}

		latLng, err := h3.CellToLatLng(h3.Cell(cell))
		if err != nil {
			return nil, fmt.Errorf("computing cell center: %w", err)
		}

		area.Cell = h3.Cell(cell).String()
		area.Resolution = resolution
		area.Center = spatial.Point{Lat: latLng.Lat, Lng: latLng.Lng}

		areas = append(areas, &area)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("summarizing areas: %w", err)
	}

	return areas, nil
}
