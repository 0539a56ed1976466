// Copyright 2026 The Rumbo Authors
// SPDX-License-Identifier: Apache-2.0

package track

import (
	"fmt"

	"github.com/jcodagnone/rumbo/spatial"
)

// Marker styles. The chronologically last record is visually distinct from
// every earlier one.
const (
	StyleLatest  = "latest"
	StyleEarlier = "earlier"
)

// MapZoom is the fixed zoom level of the map, centered on the latest record.
const MapZoom = 15

// Marker is one point on the map with its popup text.
type Marker struct {
	Point spatial.Point `json:"point"`
	Popup string        `json:"popup"`
	Style string        `json:"style"`
	Color string        `json:"color"`
	Icon  string        `json:"icon"`
}

// MapView is everything the map widget needs to draw the current history:
// a center, a marker per record, and the chronological path.
type MapView struct {
	Center  spatial.Point   `json:"center"`
	Zoom    int             `json:"zoom"`
	Markers []Marker        `json:"markers"`
	Path    []spatial.Point `json:"path,omitempty"`
}

// BuildMapView renders the history into a MapView. It is a pure function of
// its input: same records, same view. Returns nil for an empty history (no
// map, the caller shows a placeholder instead).
func BuildMapView(records []*Record) *MapView {
	if len(records) == 0 {
		return nil
	}

	last := len(records) - 1
	view := &MapView{
		Center:  records[last].Location(),
		Zoom:    MapZoom,
		Markers: make([]Marker, 0, len(records)),
	}

	for i, record := range records {
		marker := Marker{
			Point: record.Location(),
			Popup: fmt.Sprintf("Time: %s\nCoordinates: %f, %f\nAddress: %s",
				record.Timestamp, record.Latitude, record.Longitude, record.Address),
			Style: StyleEarlier,
			Color: "blue",
			Icon:  "info-sign",
		}

		if i == last {
			marker.Style = StyleLatest
			marker.Color = "red"
			marker.Icon = "location-arrow"
		}

		view.Markers = append(view.Markers, marker)
	}

	if len(records) > 1 {
		view.Path = make([]spatial.Point, 0, len(records))
		for _, record := range records {
			view.Path = append(view.Path, record.Location())
		}
	}

	return view
}
