// Copyright (C) 2026 Spimidex Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package cli implements the spimidex command-line interface using the
// Cobra CLI framework: a build command that turns a lyrics corpus into an
// on-disk index, and a query command that ranks documents against it.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagVerbose bool
	logger      *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "spimidex",
	Short: "External-memory inverted index over a lyrics corpus",
	Long: `spimidex builds a disk-resident inverted index over a corpus of lyrics
using SPIMI-style block construction, and answers free-text queries against
it by TF-IDF cosine similarity.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = newLogger(flagVerbose)
		slog.SetDefault(logger)
	},
}

// Execute runs the root command and returns its error, if any.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose (debug-level) logging")
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(queryCmd)
}

// newLogger builds the process-wide slog.Logger: human-readable text when
// stderr is a terminal, structured JSON otherwise. verbose lowers the level
// to debug and does not change the handler.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	if isTerminal(os.Stderr) {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

func homeDir() (string, error) {
	return os.UserHomeDir()
}
