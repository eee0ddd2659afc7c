package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"gofstring/internal/document"
	"gofstring/internal/watch"
	wsp "gofstring/internal/workspace"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runWatch(cmd *cobra.Command, args []string) error {
	ws, cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	root := ws
	if len(args) > 0 {
		if root, err = filepath.Abs(args[0]); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	proc := document.NewProcessor(processorOptions(cfg))
	scope := wsp.Scope{Extensions: cfg.Watch.Extensions, Ignore: cfg.Apply.Ignore}
	w, err := watch.New(root, proc, scope, cfg.GetDebounce())
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	logger.Info("watching", zap.String("root", root), zap.Int("dirs", len(w.WatchedDirs())))
	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", root)

	select {
	case <-ctx.Done():
	case <-w.Done():
	}

	stats := w.GetStats()
	fmt.Fprintf(cmd.OutOrStdout(), "\nStopped: %d reprocessed, %d rewritten, %d errors\n",
		stats.Reprocessed, stats.Rewritten, stats.Errors)
	return nil
}
