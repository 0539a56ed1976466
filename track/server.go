// Copyright 2026 The Rumbo Authors
// SPDX-License-Identifier: Apache-2.0

package track

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/rumbo/spatial"
)

// Server exposes the tracking page and its JSON API. Every view is
// recomputed from the current history on each request; there is no
// incremental state on this side.
type Server struct {
	tracker *Tracker
	repo    HistoryRepository
}

// NewServer creates the web server over a tracker and its history.
func NewServer(tracker *Tracker, repo HistoryRepository) *Server {
	return &Server{
		tracker: tracker,
		repo:    repo,
	}
}

// Run registers the routes and serves until the process exits.
func (s *Server) Run(addr string) error {
	r := gin.Default()
	r.SetHTMLTemplate(template.Must(template.New("").ParseGlob("templates/*.html")))

	s.registerRoutes(r)

	return r.Run(addr)
}

func (s *Server) registerRoutes(r *gin.Engine) {
	r.GET("/", s.trackerView)
	r.GET("/api/history", s.listHistory)
	r.GET("/api/history/latest", s.latestLocation)
	r.GET("/api/history/summary", s.areaSummary)
	r.GET("/api/history/export", s.exportHistory)
	r.DELETE("/api/history", s.clearHistory)
	r.POST("/api/locations", s.addManualLocation)
	r.POST("/api/locations/capture", s.captureLocation)
	r.GET("/api/map", s.mapView)
}

func (s *Server) trackerView(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "tracker.html", nil)
}

func (s *Server) listHistory(ctx *gin.Context) {
	records, err := s.repo.All()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	if records == nil {
		records = []*Record{}
	}

	ctx.JSON(http.StatusOK, records)
}

func (s *Server) latestLocation(ctx *gin.Context) {
	record, err := s.repo.Latest()
	if errors.Is(err, ErrNoLocations) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": ErrNoLocations.Error()})

		return
	}

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, record)
}

// ManualLocationRequest is a user-typed coordinate pair. Missing fields
// default to 0.0, mirroring the manual-entry form.
type ManualLocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (s *Server) addManualLocation(ctx *gin.Context) {
	var req ManualLocationRequest
	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	record, err := s.tracker.RecordManual(ctx.Request.Context(), req.Latitude, req.Longitude)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, record)
}

// CaptureLocationRequest carries a device-reported position. Latitude and
// longitude are pointers so an absent field is a 400 rather than a silent 0.
type CaptureLocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Accuracy  *float64 `json:"accuracy"`
}

func (s *Server) captureLocation(ctx *gin.Context) {
	var req CaptureLocationRequest
	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if req.Latitude == nil || req.Longitude == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "latitude and longitude are required"})

		return
	}

	record, err := s.tracker.RecordPosition(ctx.Request.Context(), *req.Latitude, *req.Longitude, req.Accuracy)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, record)
}

func (s *Server) clearHistory(ctx *gin.Context) {
	if err := s.repo.Clear(); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) exportHistory(ctx *gin.Context) {
	records, err := s.repo.All()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.Header("Content-Type", "text/csv; charset=utf-8")
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ExportFilename))
	ctx.Status(http.StatusOK)

	if err := WriteCSV(ctx.Writer, records); err != nil {
		// Headers are already out; the best we can do is log through gin.
		_ = ctx.Error(err)
	}
}

func (s *Server) mapView(ctx *gin.Context) {
	records, err := s.repo.All()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	view := BuildMapView(records)
	if view == nil {
		ctx.JSON(http.StatusOK, gin.H{"empty": true})

		return
	}

	ctx.JSON(http.StatusOK, view)
}

// AreaSummaryResponse is the visited-area summary plus the length of the
// full chronological path.
type AreaSummaryResponse struct {
	Areas          []*Area `json:"areas"`
	TotalDistanceM float64 `json:"total_distance_m"`
	Records        int     `json:"records"`
}

func (s *Server) areaSummary(ctx *gin.Context) {
	resolution := DefaultAreaResolution

	if p := ctx.Query("res"); p != "" {
		if _, err := fmt.Sscanf(p, "%d", &resolution); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid res parameter"})

			return
		}
	}

	areas, err := s.repo.AreaSummary(resolution)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if areas == nil {
		areas = []*Area{}
	}

	records, err := s.repo.All()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	points := make([]spatial.Point, 0, len(records))
	for _, record := range records {
		points = append(points, record.Location())
	}

	ctx.JSON(http.StatusOK, AreaSummaryResponse{
		Areas:          areas,
		TotalDistanceM: spatial.PathDistance(points),
		Records:        len(records),
	})
}
