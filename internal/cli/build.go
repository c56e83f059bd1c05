// Copyright (C) 2026 Spimidex Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/spimidex/spimidex/internal/buildcache"
	"github.com/spimidex/spimidex/internal/corpus"
	"github.com/spimidex/spimidex/internal/index"
	"github.com/spimidex/spimidex/internal/normalize"
	badgerstore "github.com/spimidex/spimidex/internal/storage/badger"
)

var (
	flagIndexDir   string
	flagBlockLimit int
	flagStem       bool
	flagStopwords  string
	flagCacheDir   string
	flagNoCache    bool
)

var buildCmd = &cobra.Command{
	Use:   "build <corpus.csv>",
	Short: "Build an on-disk inverted index from a lyrics corpus",
	Long: `build reads a tabular corpus (columns song_id, lyrics), normalizes every
document, and writes a SPIMI-merged on-disk block family plus an IDF table
to --index-dir.`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&flagIndexDir, "index-dir", "./spimidex-index", "directory to write the built index to")
	buildCmd.Flags().IntVar(&flagBlockLimit, "block-limit", index.DefaultBlockLimit, "documents accumulated per temp block before a flush")
	buildCmd.Flags().BoolVar(&flagStem, "stem", false, "apply Snowball English stemming during normalization")
	buildCmd.Flags().StringVar(&flagStopwords, "stopwords", "", "path to a newline-delimited stopword file (default: the built-in English stoplist)")
	buildCmd.Flags().StringVar(&flagCacheDir, "cache-dir", "", "BadgerDB directory for the corpus-hash build cache (default: $HOME/.spimidex/cache)")
	buildCmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "skip the build cache entirely, always rebuilding")
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	corpusPath := args[0]

	runID := uuid.NewString()
	runLogger := logger.With(slog.String("run_id", runID))

	store, closeStore, err := openBuildCache(flagCacheDir, flagNoCache)
	if err != nil {
		runLogger.Warn("build cache unavailable, continuing without it", slog.String("error", err.Error()))
	}
	if closeStore != nil {
		defer closeStore()
	}

	var corpusHash string
	if store != nil {
		corpusHash, err = buildcache.CorpusHash(corpusPath, flagBlockLimit, flagStem)
		if err != nil {
			return fmt.Errorf("hash corpus: %w", err)
		}
		if entry, ok, err := store.Load(ctx, corpusHash); err == nil && ok {
			runLogger.Info("build: cache hit, reusing existing index",
				slog.String("dir", entry.IndexDir),
				slog.Int("documents", entry.Documents),
				slog.Int("final_blocks", entry.FinalBlocks),
			)
			fmt.Printf("Index already built at %s (documents=%d, blocks=%d, vocabulary=%d)\n",
				entry.IndexDir, entry.Documents, entry.FinalBlocks, entry.Vocabulary)
			return nil
		}
	}

	normalizer, err := buildNormalizer(flagStopwords, flagStem)
	if err != nil {
		return err
	}

	idx, err := index.New(flagIndexDir, runLogger)
	if err != nil {
		return err
	}

	docsFactory := func() (index.DocumentSource, error) {
		src, err := corpus.OpenCSV(corpusPath)
		if err != nil {
			return nil, err
		}
		return corpus.NewNormalizingSource(src, normalizer), nil
	}

	start := time.Now()
	result, err := idx.Build(ctx, docsFactory, index.Meta{Stem: flagStem}, index.WithBlockLimit(flagBlockLimit))
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	elapsed := time.Since(start)

	fmt.Printf("Built index at %s in %s (run %s)\n", flagIndexDir, elapsed.Round(time.Millisecond), runID)
	fmt.Printf("  documents:   %d\n", result.Documents)
	fmt.Printf("  temp blocks: %d\n", result.TempBlocks)
	fmt.Printf("  final blocks: %d\n", result.FinalBlocks)
	fmt.Printf("  vocabulary:  %d\n", result.Vocabulary)

	if store != nil {
		abs, err := filepath.Abs(flagIndexDir)
		if err != nil {
			abs = flagIndexDir
		}
		entry := buildcache.Entry{
			IndexDir:    abs,
			Documents:   result.Documents,
			TempBlocks:  result.TempBlocks,
			FinalBlocks: result.FinalBlocks,
			Vocabulary:  result.Vocabulary,
		}
		if err := store.Save(ctx, corpusHash, entry); err != nil {
			runLogger.Warn("build cache save failed", slog.String("error", err.Error()))
		}
	}

	return nil
}

func buildNormalizer(stopwordsPath string, stem bool) (*normalize.Normalizer, error) {
	var stopwords normalize.StopwordSet
	if stopwordsPath != "" {
		loaded, err := normalize.LoadStopwordSet(stopwordsPath)
		if err != nil {
			return nil, fmt.Errorf("load stopwords: %w", err)
		}
		stopwords = loaded
	} else {
		stopwords = normalize.DefaultStopwordSet()
	}
	return normalize.New(stopwords, stem), nil
}

// openBuildCache opens the badger-backed build cache, unless disabled.
// Returns a nil store and a non-nil error if the cache directory cannot be
// determined or opened; runBuild logs that error and proceeds without
// caching.
func openBuildCache(dir string, disabled bool) (*buildcache.BadgerStore, func(), error) {
	if disabled {
		return nil, nil, nil
	}
	if dir == "" {
		home, err := homeDir()
		if err != nil {
			return nil, nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".spimidex", "cache")
	}

	cfg := badgerstore.DefaultConfig()
	cfg.Path = dir
	db, err := badgerstore.OpenDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open build cache at %s: %w", dir, err)
	}

	store := buildcache.NewBadgerStore(db, 0, logger)
	closeFn := func() {
		if err := db.Close(); err != nil {
			logger.Warn("build cache close failed", slog.String("error", err.Error()))
		}
	}
	return store, closeFn, nil
}
