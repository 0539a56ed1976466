// Copyright 2026 The Rumbo Authors
// SPDX-License-Identifier: Apache-2.0

package track

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/jcodagnone/rumbo/utils/httputils"
	"github.com/jcodagnone/rumbo/utils/textutils"
)

// DefaultNominatimURL is the public OSM Nominatim instance.
const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

// NominatimOptions configuration for the Nominatim geocoder.
type NominatimOptions struct {
	// BaseURL of the Nominatim instance. Defaults to DefaultNominatimURL.
	BaseURL string

	// UserAgent identifies this application. Nominatim's usage policy
	// requires one.
	UserAgent string

	// EnableHTTPTrace logs requests and responses to stderr
	EnableHTTPTrace bool
}

// NominatimGeocoder resolves coordinates against a Nominatim instance.
type NominatimGeocoder struct {
	baseURL    string
	httpClient *http.Client
}

// NewNominatimGeocoder creates a new Nominatim reverse geocoder.
func NewNominatimGeocoder(options *NominatimOptions) *NominatimGeocoder {
	if options == nil {
		options = &NominatimOptions{}
	}

	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}

	userAgent := options.UserAgent
	if userAgent == "" {
		userAgent = "rumbo/unknown"
	}

	var httpLogWriter io.Writer
	if options.EnableHTTPTrace {
		httpLogWriter = os.Stderr
	}

	transport := &httputils.AppendRequestHeadersRoundTripper{
		Headers: map[string]string{
			"User-Agent": userAgent,
			"Accept":     "application/json",
		},
		Transport: &httputils.LoggingRoundTripper{
			Writer:    httpLogWriter,
			Transport: http.DefaultTransport,
		},
	}

	return &NominatimGeocoder{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
	}
}

type nominatimResponse struct {
	DisplayName string `json:"display_name"`
	PlaceRank   int    `json:"place_rank"`
	Error       string `json:"error"`
}

// Reverse resolves (lat, lng) to a display address.
func (g *NominatimGeocoder) Reverse(ctx context.Context, lat, lng float64) (*ReverseResult, error) {
	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("lat", fmt.Sprintf("%f", lat))
	params.Set("lon", fmt.Sprintf("%f", lng))

	reqURL := g.baseURL + "/reverse?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building reverse geocoding request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reverse geocoding request failed: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ClassifyHTTPError(resp.StatusCode, "")
	}

	var nmResp nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&nmResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	// Nominatim reports "Unable to geocode" as a 200 with an error field
	if nmResp.Error != "" {
		return nil, &GeocodingError{
			Type:    ErrorTypeNotFound,
			Message: nmResp.Error,
		}
	}

	address := textutils.CleanAddress(nmResp.DisplayName)
	if address == "" {
		return nil, &GeocodingError{
			Type:    ErrorTypeNotFound,
			Message: fmt.Sprintf("no address for %f, %f", lat, lng),
		}
	}

	// place_rank 26+ is street level or better, 17+ roughly a locality
	confidence := "low"

	switch {
	case nmResp.PlaceRank >= 26:
		confidence = "high"
	case nmResp.PlaceRank >= 17:
		confidence = "medium"
	}

	return &ReverseResult{
		DisplayName: address,
		Confidence:  confidence,
		Provider:    "nominatim",
	}, nil
}
