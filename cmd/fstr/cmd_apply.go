package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"gofstring/internal/diff"
	"gofstring/internal/document"
	wsp "gofstring/internal/workspace"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	applyWrite bool
	applyDiff  bool
	applyCheck bool
)

var (
	addedColor   = color.New(color.FgGreen)
	removedColor = color.New(color.FgRed)
	headerColor  = color.New(color.FgCyan, color.Bold)
	warnColor    = color.New(color.FgYellow)
)

func runApply(cmd *cobra.Command, args []string) error {
	ws, cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	roots := args
	if len(roots) == 0 {
		roots = []string{ws}
	}
	files, err := wsp.Discover(roots, wsp.Scope{
		Extensions: cfg.Watch.Extensions,
		Ignore:     cfg.Apply.Ignore,
	})
	if err != nil {
		return err
	}
	logger.Debug("discovered files", zap.Int("count", len(files)), zap.Strings("roots", roots))

	proc := document.NewProcessor(processorOptions(cfg))
	runner := wsp.NewRunner(proc, cfg.Apply.Concurrency, applyWrite && !applyCheck)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	results, summary, err := runner.Run(ctx, files)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var stale []string
	for _, res := range results {
		if res.Err != nil {
			warnColor.Fprintf(out, "error: %v\n", res.Err)
			continue
		}
		if !res.Changed() {
			continue
		}
		rel := relPath(ws, res.Path)
		stale = append(stale, rel)

		d := diff.Compute(rel, res.Original, res.Outcome.Text)
		if applyDiff {
			printDiff(out, d)
		}
		verb := "would update"
		if res.Written {
			verb = "updated"
		}
		added, removed := d.Stats()
		fmt.Fprintf(out, "%s %s (%d edits, +%d -%d)\n", verb, rel, len(res.Outcome.Edits), added, removed)
	}

	fmt.Fprintf(out, "%d files, %d comments, %d changed, %d errors (%s)\n",
		summary.Files, summary.Comments, summary.Changed, summary.Errors, summary.Elapsed.Round(time.Millisecond))

	if applyCheck && len(stale) > 0 {
		return fmt.Errorf("%d files are out of date: %s", len(stale), strings.Join(stale, ", "))
	}
	if summary.Errors > 0 {
		return fmt.Errorf("%d files failed", summary.Errors)
	}
	return nil
}

func printDiff(w io.Writer, d *diff.FileDiff) {
	if d.Empty() {
		return
	}
	headerColor.Fprintf(w, "--- a/%s\n+++ b/%s\n", d.Path, d.Path)
	for _, h := range d.Hunks {
		headerColor.Fprintln(w, h.Header())
		for _, l := range h.Lines {
			text := l.Type.Marker() + l.Content
			switch l.Type {
			case diff.LineAdded:
				addedColor.Fprintln(w, text)
			case diff.LineRemoved:
				removedColor.Fprintln(w, text)
			default:
				fmt.Fprintln(w, text)
			}
		}
	}
}

func relPath(ws, p string) string {
	if rel, err := filepath.Rel(ws, p); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return p
}
