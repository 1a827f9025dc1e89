/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// withLogger attaches a tint logger writing to w to ctx. Colors are only used
// when w is a terminal and NO_COLOR is unset.
func withLogger(ctx context.Context, w io.Writer, verbose bool) context.Context {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	noColor := os.Getenv("NO_COLOR") != ""
	if f, ok := w.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		noColor = true
	}

	handler := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    noColor,
	})
	return clog.WithLogger(ctx, clog.New(handler))
}
