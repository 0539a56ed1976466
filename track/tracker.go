// Copyright 2026 The Rumbo Authors
// SPDX-License-Identifier: Apache-2.0

package track

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Tracker turns candidate coordinates into history records: it resolves the
// address best-effort, stamps the timestamp, and appends. It is the only
// writer to the history.
type Tracker struct {
	repo     HistoryRepository
	geocoder ReverseGeocoder
	now      func() time.Time
}

// NewTracker creates a tracker over the given history and geocoder.
func NewTracker(repo HistoryRepository, geocoder ReverseGeocoder) *Tracker {
	return &Tracker{
		repo:     repo,
		geocoder: geocoder,
		now:      time.Now,
	}
}

// RecordPosition records a device-reported position (the browser
// geolocation path). Accuracy is in meters; nil when the device reported
// none.
func (t *Tracker) RecordPosition(ctx context.Context, lat, lng float64, accuracy *float64) (*Record, error) {
	return t.record(ctx, lat, lng, accuracy)
}

// RecordManual records a user-typed position. Accuracy is stored as 0.
func (t *Tracker) RecordManual(ctx context.Context, lat, lng float64) (*Record, error) {
	accuracy := 0.0

	return t.record(ctx, lat, lng, &accuracy)
}

func (t *Tracker) record(ctx context.Context, lat, lng float64, accuracy *float64) (*Record, error) {
	// Out-of-range coordinates are accepted (nothing rejects them today);
	// they are only worth a warning.
	if err := validateCoordinates(lat, lng); err != nil {
		log.Printf("⚠️  Recording out-of-range coordinates - %s", err)
	}

	// Best effort: a geocoding failure never blocks recording.
	address := UnknownLocation

	result, err := t.geocoder.Reverse(ctx, lat, lng)

	switch {
	case err == nil:
		address = result.DisplayName
	case IsNotFoundError(err):
		log.Printf("No address for %f, %f - recording as %q", lat, lng, UnknownLocation)
	default:
		log.Printf("Reverse geocoding %f, %f failed - %s - recording as %q", lat, lng, err, UnknownLocation)
	}

	record := &Record{
		Latitude:  lat,
		Longitude: lng,
		Accuracy:  accuracy,
		Address:   address,
		Timestamp: t.now().Format(TimestampFormat),
	}

	if err := record.computeH3(); err != nil {
		// Leave the cells at zero; the record is still appended, it just
		// won't show up in the area summary.
		log.Printf("Indexing %f, %f failed - %s", lat, lng, err)
	}

	if err := t.repo.Append(record); err != nil {
		return nil, fmt.Errorf("appending record: %w", err)
	}

	return record, nil
}
