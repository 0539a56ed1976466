// Copyright 2026 The Rumbo Authors
// SPDX-License-Identifier: Apache-2.0

// Package textutils normalizes the text that comes back from geocoding
// services before it is stored or displayed.
package textutils

import (
	"strings"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CleanAddress trims an address, collapses runs of whitespace into a single
// space, and normalizes it to NFC so equal-looking addresses compare equal.
func CleanAddress(s string) string {
	s, _, _ = transform.String(norm.NFC, strings.TrimSpace(s))

	return strings.Join(strings.Fields(s), " ")
}
