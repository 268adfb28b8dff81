// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/literature-review/internal/engine"
	"github.com/pdiddy/literature-review/internal/ingest"
	"github.com/pdiddy/literature-review/internal/session"
	"github.com/pdiddy/literature-review/pkg/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [files|urls|dois...]",
	Short: "Analyze a batch of materials and print the review",
	Long: `Analyze gathers materials from arguments and an optional YAML manifest,
sends them to the analysis engine as one batch, and prints the validated
result. An argument naming an existing file is read from disk, one with a
URL scheme is a URL, and anything else (a DOI, an inline BibTeX entry) is
taken as pasted text.

Use --export to also write the prose (.md) and structured (.json) artifacts
to the export directory.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("manifest", "", "YAML manifest listing materials")
	analyzeCmd.Flags().StringP("format", "f", formatProse, "output format: prose, json, table, or summary")
	analyzeCmd.Flags().Bool("export", false, "write export artifacts to the export directory")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if !validFormat(format) {
		return fmt.Errorf("unknown format %q (want prose, json, table, or summary)", format)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	manifest, _ := cmd.Flags().GetString("manifest")
	sources, err := gatherSources(ctx, args, manifest, cfg.Ingest.MaxFileBytes)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return fmt.Errorf("provide one or more materials (files, URLs, DOIs) or --manifest")
	}

	ctrl := session.New(cfg.Engine.Model, logger)
	n, err := ingest.Apply(ctrl, sources)
	if err != nil {
		return err
	}
	logger.Info("materials collected", zap.Int("count", n), zap.Int("sources", len(sources)))

	eng, err := engine.New(cfg.Engine, logger)
	if err != nil {
		return err
	}

	if err := runEngine(ctx, ctrl, eng, cfg.Engine.Timeout); err != nil {
		return err
	}

	result := ctrl.Result()
	if err := writeResult(cmd.OutOrStdout(), result, format); err != nil {
		return err
	}

	if export, _ := cmd.Flags().GetBool("export"); export {
		paths, err := exportResult(cfg.Export.Dir, result, time.Now())
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintf(os.Stderr, "Exported %s\n", p)
		}
	}
	return nil
}

// gatherSources reads argument sources followed by manifest sources.
func gatherSources(ctx context.Context, args []string, manifest string, maxBytes int64) ([]ingest.Source, error) {
	sources, err := ingest.FromArgs(ctx, args, maxBytes)
	if err != nil {
		return nil, err
	}
	if manifest == "" {
		return sources, nil
	}
	m, err := ingest.ReadManifest(manifest)
	if err != nil {
		return nil, err
	}
	more, err := m.Sources(ctx, filepath.Dir(manifest), maxBytes)
	if err != nil {
		return nil, err
	}
	return append(sources, more...), nil
}

// runEngine performs one analysis, bounded by timeout when it is positive.
func runEngine(ctx context.Context, ctrl *session.Controller, eng engine.Engine, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	fmt.Fprintf(os.Stderr, "Analyzing %d material(s)...\n", len(ctrl.State().Records))
	if err := ctrl.Analyze(ctx, eng); err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	return nil
}

// resultOrEmpty keeps rendering total when the controller holds no result.
func resultOrEmpty(r *types.CanonicalResult) *types.CanonicalResult {
	if r == nil {
		return &types.CanonicalResult{}
	}
	return r
}
