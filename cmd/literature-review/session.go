// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/literature-review/internal/engine"
	"github.com/pdiddy/literature-review/internal/ingest"
	"github.com/pdiddy/literature-review/internal/logging"
	"github.com/pdiddy/literature-review/internal/session"
	"github.com/pdiddy/literature-review/internal/tui"
)

var sessionCmd = &cobra.Command{
	Use:   "session [files|urls|dois...]",
	Short: "Open the interactive review screen",
	Long: `Session opens a terminal screen for building a batch of materials and
reviewing the analysis. Arguments and --manifest preload the batch.

Keys: u adds a URL, x removes the selected material, s analyzes, tab
switches between materials, prose, structured, and table views, c copies
the current view, e exports, R resets, esc dismisses an error, q quits.`,
	RunE: runSession,
}

func init() {
	sessionCmd.Flags().String("manifest", "", "YAML manifest listing materials to preload")
	sessionCmd.Flags().String("log-file", "", "write logs to this file (the screen owns the terminal)")

	rootCmd.AddCommand(sessionCmd)
}

func runSession(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logFile, _ := cmd.Flags().GetString("log-file")
	fileLogger, closeLog, err := openLogFile(logFile, viper.GetBool("verbose"))
	if err != nil {
		return err
	}
	logger = fileLogger
	defer func() {
		_ = closeLog()
		// The root's post-run sync must not touch the closed file.
		logger = zap.NewNop()
	}()

	manifest, _ := cmd.Flags().GetString("manifest")
	sources, err := gatherSources(cmd.Context(), args, manifest, cfg.Ingest.MaxFileBytes)
	if err != nil {
		return err
	}
	ctrl := session.New(cfg.Engine.Model, logger)
	if _, err := ingest.Apply(ctrl, sources); err != nil {
		return err
	}

	// A missing engine leaves the screen usable for collecting materials;
	// submitting then reports that no engine is configured.
	eng, err := engine.New(cfg.Engine, logger)
	if err != nil {
		logger.Warn("analysis engine unavailable", zap.Error(err))
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		eng = nil
	}

	return tui.Run(ctrl, tui.Options{
		Engine:        eng,
		ExportDir:     cfg.Export.Dir,
		Timeout:       cfg.Engine.Timeout,
		Logger:        logger,
		FeedbackDelay: cfg.Feedback.Delay,
	})
}

// openLogFile returns a logger appending to path, or a no-op logger when
// path is empty. The returned close function flushes the logger before
// closing the file.
func openLogFile(path string, verbose bool) (*zap.Logger, func() error, error) {
	if path == "" {
		return zap.NewNop(), func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	l := logging.NewWriter(f, verbose)
	closeFn := func() error {
		syncErr := l.Sync()
		return errors.Join(syncErr, f.Close())
	}
	return l, closeFn, nil
}
