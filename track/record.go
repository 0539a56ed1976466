// Copyright 2026 The Rumbo Authors
// SPDX-License-Identifier: Apache-2.0

package track

import (
	"fmt"

	"github.com/jcodagnone/rumbo/spatial"
	"github.com/uber/h3-go/v4"
)

// TimestampFormat is the layout used for record timestamps, captured in
// local time at record creation.
const TimestampFormat = "2006-01-02 15:04:05"

// UnknownLocation is the address stored when reverse geocoding fails.
// Geocoding failures never block recording a location.
const UnknownLocation = "Unknown location"

// Record is one captured position. Records are immutable once appended to
// the history.
type Record struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"` // meters; nil when the source reported none, 0 for manual entries
	Address   string   `json:"address"`
	Timestamp string   `json:"timestamp"`
	H3Res7    int64    `json:"-"`
	H3Res8    int64    `json:"-"`
	H3Res9    int64    `json:"-"`
}

// Location returns the record coordinates as a spatial.Point.
func (r *Record) Location() spatial.Point {
	return spatial.Point{Lat: r.Latitude, Lng: r.Longitude}
}

func (r *Record) computeH3() error {
	latLng := h3.NewLatLng(r.Latitude, r.Longitude)

	for res := minAreaResolution; res <= maxAreaResolution; res++ {
		cell, err := h3.LatLngToCell(latLng, res)
		if err != nil {
			return fmt.Errorf("converting to h3 cell at res %d: %w", res, err)
		}

		switch res {
		case 7:
			r.H3Res7 = int64(cell)
		case 8:
			r.H3Res8 = int64(cell)
		case 9:
			r.H3Res9 = int64(cell)
		}
	}

	return nil
}
