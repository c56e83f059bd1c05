// Copyright (C) 2026 Spimidex Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command spimidex builds and queries a disk-resident inverted index over a
// lyrics corpus.
//
// Usage:
//
//	spimidex build songs.csv --index-dir ./index --block-limit 500 --stem
//	spimidex query "hello world" --index-dir ./index --top-k 10
package main

import (
	"fmt"
	"os"

	"github.com/spimidex/spimidex/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
