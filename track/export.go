// Copyright 2026 The Rumbo Authors
// SPDX-License-Identifier: Apache-2.0

package track

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// ExportFilename is the name of the downloadable history file.
const ExportFilename = "location_history.csv"

// exportHeader lists every record attribute, in the order they are written.
var exportHeader = []string{"latitude", "longitude", "accuracy", "address", "timestamp"}

// WriteCSV serializes the full history as UTF-8 comma-delimited text: a
// header row and one row per record in insertion order. Every record is
// written regardless of validity; accuracy is blank when absent.
func WriteCSV(w io.Writer, records []*Record) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(exportHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, record := range records {
		accuracy := ""
		if record.Accuracy != nil {
			accuracy = strconv.FormatFloat(*record.Accuracy, 'f', -1, 64)
		}

		row := []string{
			strconv.FormatFloat(record.Latitude, 'f', -1, 64),
			strconv.FormatFloat(record.Longitude, 'f', -1, 64),
			accuracy,
			record.Address,
			record.Timestamp,
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
	}

	writer.Flush()

	return writer.Error()
}
