// Copyright 2026 The Rumbo Authors
// SPDX-License-Identifier: Apache-2.0

package track

import "context"

// ReverseResult represents a reverse geocoding result from any provider.
type ReverseResult struct {
	DisplayName string
	Confidence  string // high, medium, low
	Provider    string
}

// ReverseGeocoder interface for different reverse geocoding providers.
//
// Implementations return an error on any failure; they never fall back
// silently. The fallback-to-"Unknown location" policy lives at the call
// site (the Tracker), so geocoding failure never blocks recording.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, lat, lng float64) (*ReverseResult, error)
}
