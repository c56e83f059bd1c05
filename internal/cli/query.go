// Copyright (C) 2026 Spimidex Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/spimidex/spimidex/internal/index"
	"github.com/spimidex/spimidex/internal/query"
)

var (
	flagQueryIndexDir  string
	flagTopK           int
	flagQueryStopwords string
)

var queryCmd = &cobra.Command{
	Use:   "query <text...>",
	Short: "Rank documents against a built index by TF-IDF cosine similarity",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&flagQueryIndexDir, "index-dir", "./spimidex-index", "directory a previous build wrote the index to")
	queryCmd.Flags().IntVarP(&flagTopK, "top-k", "k", 10, "maximum number of results to return")
	queryCmd.Flags().StringVar(&flagQueryStopwords, "stopwords", "", "path to the same stopword file used at build time (default: the built-in English stoplist)")
}

func runQuery(cmd *cobra.Command, args []string) error {
	runID := uuid.NewString()
	runLogger := logger.With(slog.String("run_id", runID))

	idx, err := index.Open(flagQueryIndexDir, runLogger)
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}

	normalizer, err := buildNormalizer(flagQueryStopwords, idx.Meta().Stem)
	if err != nil {
		return err
	}

	engine := query.New(idx, normalizer)
	text := strings.Join(args, " ")
	runLogger.Info("query: run start", slog.String("text", text), slog.Int("top_k", flagTopK))
	results, err := engine.Query(text, flagTopK)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	runLogger.Info("query: run complete", slog.Int("results", len(results)))

	if len(results) == 0 {
		fmt.Println("No matching documents.")
		return nil
	}
	for i, r := range results {
		fmt.Printf("%2d. %-20s score=%.4f\n", i+1, r.DocID, r.Score)
	}
	return nil
}
