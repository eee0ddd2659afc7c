package workspace

import (
	"context"
	"fmt"
	"os"
	"time"

	"gofstring/internal/document"
	"gofstring/internal/logging"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// FileResult is the outcome for one file.
type FileResult struct {
	Path     string
	Original string
	Outcome  *document.Outcome
	Written  bool
	Err      error
}

// Changed reports whether the file's text would change (or did).
func (r FileResult) Changed() bool {
	return r.Err == nil && r.Outcome != nil && r.Outcome.Changed()
}

// Summary aggregates a run.
type Summary struct {
	RunID    string
	Files    int
	Changed  int
	Comments int
	Edits    int
	Errors   int
	Elapsed  time.Duration
}

// Runner applies a document processor to files.
type Runner struct {
	proc        *document.Processor
	concurrency int
	write       bool
}

// NewRunner creates a runner. When write is false files are only read.
func NewRunner(proc *document.Processor, concurrency int, write bool) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Runner{proc: proc, concurrency: concurrency, write: write}
}

// ProcessFile processes one file and writes it back when it changed and the
// runner is in write mode.
func (r *Runner) ProcessFile(ctx context.Context, path string) FileResult {
	res := FileResult{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = fmt.Errorf("failed to read %s: %w", path, err)
		return res
	}
	res.Original = string(data)

	outcome, err := r.proc.Process(ctx, res.Original)
	if err != nil {
		res.Err = fmt.Errorf("failed to process %s: %w", path, err)
		return res
	}
	res.Outcome = outcome
	logging.ApplyDebug("%s: %d comments, %d edits", path, outcome.Comments, len(outcome.Edits))

	if r.write && outcome.Changed() {
		info, err := os.Stat(path)
		if err != nil {
			res.Err = fmt.Errorf("failed to stat %s: %w", path, err)
			return res
		}
		if err := os.WriteFile(path, []byte(outcome.Text), info.Mode().Perm()); err != nil {
			res.Err = fmt.Errorf("failed to write %s: %w", path, err)
			return res
		}
		res.Written = true
	}
	return res
}

// Run processes paths concurrently. Per-file failures are reported in the
// results; the returned error is only set when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, paths []string) ([]FileResult, Summary, error) {
	start := time.Now()
	summary := Summary{RunID: uuid.NewString(), Files: len(paths)}
	log := logging.Get(logging.CategoryApply).With("run", summary.RunID)
	log.Info("applying to %d files (concurrency %d, write %v)", len(paths), r.concurrency, r.write)

	results := make([]FileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.ProcessFile(gctx, p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, summary, err
	}

	for _, res := range results {
		switch {
		case res.Err != nil:
			summary.Errors++
			log.Error("%v", res.Err)
		case res.Outcome != nil:
			summary.Comments += res.Outcome.Comments
			summary.Edits += len(res.Outcome.Edits)
			if res.Outcome.Changed() {
				summary.Changed++
				log.Debug("%s: %d edits, import added=%v", res.Path, len(res.Outcome.Edits), res.Outcome.ImportAdded)
			}
		}
	}
	summary.Elapsed = time.Since(start)

	log.StructuredLog("info", "apply finished", map[string]interface{}{
		"files":    summary.Files,
		"changed":  summary.Changed,
		"comments": summary.Comments,
		"errors":   summary.Errors,
		"elapsed":  summary.Elapsed.String(),
	})
	return results, summary, nil
}
