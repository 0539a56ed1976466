// Copyright 2026 The Rumbo Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var geocodeInputFile string

var geocodeCmd = &cobra.Command{
	Use:   "geocode [lat,lng ...]",
	Short: "Reverse geocode coordinate pairs in batch",
	Long: `Resolves each "lat,lng" pair to a human-readable address and prints one
tab-separated line per pair to stdout. Pairs are taken from the arguments,
from --input, or from stdin (one per line).

$ echo -34.9011,-56.1645 | rumbo geocode
-34.901100	-56.164500	Plaza Independencia, Montevideo, Uruguay
`,
	RunE: func(_ *cobra.Command, args []string) error {
		pairs, err := collectPairs(args)
		if err != nil {
			return err
		}

		geocoder, err := buildGeocoder()
		if err != nil {
			return err
		}

		var bar *progressbar.ProgressBar
		if isatty.IsTerminal(os.Stderr.Fd()) && len(pairs) > 1 {
			bar = progressbar.NewOptions(len(pairs),
				progressbar.OptionSetDescription("Geocoding"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}

		ctx := context.Background()

		for _, p := range pairs {
			result, err := geocoder.Reverse(ctx, p.lat, p.lng)
			if err != nil {
				fmt.Printf("%f\t%f\t%q\n", p.lat, p.lng, err)
			} else {
				fmt.Printf("%f\t%f\t%s\n", p.lat, p.lng, result.DisplayName)
			}

			if bar == nil {
				log.Printf("Geocoded %f,%f", p.lat, p.lng)
			} else if err := bar.Add(1); err != nil {
				log.Printf("Updating progress bar: %s", err)
			}
		}

		return nil
	},
}

type coordPair struct {
	lat float64
	lng float64
}

func parsePair(s string) (coordPair, error) {
	var p coordPair
	if _, err := fmt.Sscanf(s, "%f,%f", &p.lat, &p.lng); err != nil {
		return p, fmt.Errorf("parsing coordinate pair %q: %w", s, err)
	}

	return p, nil
}

func collectPairs(args []string) ([]coordPair, error) {
	var pairs []coordPair

	for _, arg := range args {
		p, err := parsePair(arg)
		if err != nil {
			return nil, err
		}

		pairs = append(pairs, p)
	}

	if len(pairs) > 0 {
		return pairs, nil
	}

	var input io.Reader

	if geocodeInputFile != "" {
		f, err := os.Open(geocodeInputFile)
		if err != nil {
			return nil, fmt.Errorf("opening input file: %w", err)
		}
		defer f.Close()

		input = f
	} else {
		if isatty.IsTerminal(os.Stdin.Fd()) {
			fmt.Fprintln(os.Stderr, "Ingrese coordenadas a resolver, un par lat,lng por línea…")
		}

		input = os.Stdin
	}

	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		p, err := parsePair(line)
		if err != nil {
			return nil, err
		}

		pairs = append(pairs, p)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	return pairs, nil
}

func init() {
	geocodeCmd.Flags().StringVar(&geocodeInputFile, "input", "", "file with one lat,lng pair per line")
	rootCmd.AddCommand(geocodeCmd)
}
