// Copyright 2026 The Rumbo Authors
// SPDX-License-Identifier: Apache-2.0

package track

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jcodagnone/rumbo/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMapViewEmptyHistory(t *testing.T) {
	assert.Nil(t, BuildMapView(nil))
	assert.Nil(t, BuildMapView([]*Record{}))
}

func TestBuildMapViewSingleRecord(t *testing.T) {
	record := &Record{
		Latitude:  -34.90667,
		Longitude: -56.20075,
		Address:   "Plaza Independencia",
		Timestamp: "2024-01-01 00:00:00",
	}

	view := BuildMapView([]*Record{record})
	require.NotNil(t, view)

	assert.Equal(t, record.Location(), view.Center)
	assert.Equal(t, MapZoom, view.Zoom)
	assert.Nil(t, view.Path) // a single point has no path

	require.Len(t, view.Markers, 1)
	marker := view.Markers[0]
	assert.Equal(t, StyleLatest, marker.Style)
	assert.Equal(t, "red", marker.Color)
	assert.Contains(t, marker.Popup, "2024-01-01 00:00:00")
	assert.Contains(t, marker.Popup, "Plaza Independencia")
	assert.Contains(t, marker.Popup, "-34.906670")
}

func TestBuildMapViewPathAndStyles(t *testing.T) {
	var records []*Record
	for i := 0; i < 4; i++ {
		records = append(records, &Record{
			Latitude:  -34.90 + float64(i)/100,
			Longitude: -56.16,
			Address:   fmt.Sprintf("addr %d", i),
			Timestamp: fmt.Sprintf("2024-01-01 00:0%d:00", i),
		})
	}

	view := BuildMapView(records)
	require.NotNil(t, view)

	// Centered on the latest record
	assert.Equal(t, records[3].Location(), view.Center)

	// One marker per record; only the last uses the latest style
	require.Len(t, view.Markers, 4)

	for i, marker := range view.Markers {
		assert.Equal(t, records[i].Location(), marker.Point)

		if i == 3 {
			assert.Equal(t, StyleLatest, marker.Style)
			assert.Equal(t, "red", marker.Color)
		} else {
			assert.Equal(t, StyleEarlier, marker.Style)
			assert.Equal(t, "blue", marker.Color)
		}
	}

	// A single polyline through all points in insertion order
	expected := []spatial.Point{
		records[0].Location(),
		records[1].Location(),
		records[2].Location(),
		records[3].Location(),
	}
	if diff := cmp.Diff(expected, view.Path); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildMapViewIsIdempotent(t *testing.T) {
	records := []*Record{
		{Latitude: 37.0, Longitude: -122.0, Address: "X", Timestamp: "2024-01-01 00:00:00"},
		{Latitude: 37.1, Longitude: -122.1, Address: "Y", Timestamp: "2024-01-01 00:05:00"},
	}

	first := BuildMapView(records)
	second := BuildMapView(records)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("view is not a pure function of the records (-first +second):\n%s", diff)
	}
}
