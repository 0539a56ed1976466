// Copyright 2026 The Rumbo Authors
// SPDX-License-Identifier: Apache-2.0

package track

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T, geocoder ReverseGeocoder) (*gin.Engine, HistoryRepository) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	repo := setupRepo(t)
	tracker := NewTracker(repo, geocoder)
	server := NewServer(tracker, repo)

	router := gin.New()
	server.registerRoutes(router)

	return router, repo
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func TestAPIAddManualLocation(t *testing.T) {
	router, repo := setupRouter(t, &stubGeocoder{result: &ReverseResult{DisplayName: "Plaza Independencia"}})

	w := doRequest(router, http.MethodPost, "/api/locations", `{"latitude": -34.9, "longitude": -56.2}`)
	require.Equal(t, http.StatusOK, w.Code)

	var record Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.Equal(t, -34.9, record.Latitude)
	assert.Equal(t, -56.2, record.Longitude)
	assert.Equal(t, "Plaza Independencia", record.Address)
	require.NotNil(t, record.Accuracy)
	assert.Zero(t, *record.Accuracy)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAPIAddManualLocationDefaultsMissingFields(t *testing.T) {
	router, _ := setupRouter(t, &stubGeocoder{result: &ReverseResult{DisplayName: "Null Island"}})

	// Manual entry treats absent fields as 0.0 rather than rejecting them
	w := doRequest(router, http.MethodPost, "/api/locations", `{}`)
	require.Equal(t, http.StatusOK, w.Code)

	var record Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.Zero(t, record.Latitude)
	assert.Zero(t, record.Longitude)
}

func TestAPICaptureLocation(t *testing.T) {
	router, _ := setupRouter(t, &stubGeocoder{result: &ReverseResult{DisplayName: "somewhere"}})

	w := doRequest(router, http.MethodPost, "/api/locations/capture",
		`{"latitude": 37.0, "longitude": -122.0, "accuracy": 12.5}`)
	require.Equal(t, http.StatusOK, w.Code)

	var record Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	require.NotNil(t, record.Accuracy)
	assert.Equal(t, 12.5, *record.Accuracy)
}

func TestAPICaptureLocationRequiresCoordinates(t *testing.T) {
	router, repo := setupRouter(t, &stubGeocoder{result: &ReverseResult{DisplayName: "somewhere"}})

	tests := []string{
		`{}`,
		`{"latitude": 37.0}`,
		`{"longitude": -122.0, "accuracy": 5}`,
	}

	for _, body := range tests {
		w := doRequest(router, http.MethodPost, "/api/locations/capture", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
	}

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestAPILatestLocation(t *testing.T) {
	router, _ := setupRouter(t, &stubGeocoder{result: &ReverseResult{DisplayName: "A"}})

	w := doRequest(router, http.MethodGet, "/api/history/latest", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, http.MethodPost, "/api/locations", `{"latitude": 1, "longitude": 2}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/history/latest", "")
	require.Equal(t, http.StatusOK, w.Code)

	var record Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.Equal(t, "A", record.Address)
}

func TestAPIHistoryAndClear(t *testing.T) {
	router, _ := setupRouter(t, &stubGeocoder{result: &ReverseResult{DisplayName: "A"}})

	w := doRequest(router, http.MethodGet, "/api/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	for i := 0; i < 3; i++ {
		w = doRequest(router, http.MethodPost, "/api/locations", `{"latitude": 1, "longitude": 2}`)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w = doRequest(router, http.MethodGet, "/api/history", "")
	require.Equal(t, http.StatusOK, w.Code)

	var records []*Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	assert.Len(t, records, 3)

	w = doRequest(router, http.MethodDelete, "/api/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success": true}`, w.Body.String())

	w = doRequest(router, http.MethodGet, "/api/history/latest", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPIExportHistory(t *testing.T) {
	router, _ := setupRouter(t, &stubGeocoder{result: &ReverseResult{DisplayName: "X"}})

	w := doRequest(router, http.MethodPost, "/api/locations/capture",
		`{"latitude": 37.0, "longitude": -122.0, "accuracy": 5}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/history/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="location_history.csv"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")

	rows, err := csv.NewReader(bytes.NewReader(w.Body.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"latitude", "longitude", "accuracy", "address", "timestamp"}, rows[0])
	assert.Equal(t, "37", rows[1][0])
	assert.Equal(t, "-122", rows[1][1])
	assert.Equal(t, "5", rows[1][2])
	assert.Equal(t, "X", rows[1][3])
}

func TestAPIMapView(t *testing.T) {
	router, _ := setupRouter(t, &stubGeocoder{result: &ReverseResult{DisplayName: "X"}})

	w := doRequest(router, http.MethodGet, "/api/map", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"empty": true}`, w.Body.String())

	w = doRequest(router, http.MethodPost, "/api/locations", `{"latitude": 37.0, "longitude": -122.0}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = doRequest(router, http.MethodPost, "/api/locations", `{"latitude": 37.1, "longitude": -122.1}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/map", "")
	require.Equal(t, http.StatusOK, w.Code)

	var view MapView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, 37.1, view.Center.Lat)
	assert.Equal(t, MapZoom, view.Zoom)
	require.Len(t, view.Markers, 2)
	assert.Equal(t, StyleLatest, view.Markers[1].Style)
	assert.Len(t, view.Path, 2)
}

func TestAPIAreaSummary(t *testing.T) {
	router, _ := setupRouter(t, &stubGeocoder{result: &ReverseResult{DisplayName: "X"}})

	w := doRequest(router, http.MethodPost, "/api/locations", `{"latitude": 37.0, "longitude": -122.0}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = doRequest(router, http.MethodPost, "/api/locations", `{"latitude": 37.1, "longitude": -122.1}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/history/summary", "")
	require.Equal(t, http.StatusOK, w.Code)

	var summary AreaSummaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.Records)
	assert.Len(t, summary.Areas, 2)
	assert.Greater(t, summary.TotalDistanceM, 10_000.0) // ~14 km apart

	w = doRequest(router, http.MethodGet, "/api/history/summary?res=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodGet, "/api/history/summary?res=15", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
