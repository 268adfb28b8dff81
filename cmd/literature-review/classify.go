// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/literature-review/internal/ingest"
	"github.com/pdiddy/literature-review/internal/session"
)

// droppedLabel marks an argument the session would not admit.
const droppedLabel = "DROPPED"

var classifyCmd = &cobra.Command{
	Use:   "classify [files|urls|dois...]",
	Short: "Show the category each material would be filed under",
	Long: `Classify adds each argument to a scratch session exactly as the session
command would and prints one line per argument: the category label and the
material. URLs that fail validation are reported as DROPPED. Nothing is sent
to the analysis engine.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		sources, err := ingest.FromArgs(cmd.Context(), args, cfg.Ingest.MaxFileBytes)
		if err != nil {
			return err
		}
		return writeClassification(cmd.OutOrStdout(), args, sources)
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

// writeClassification feeds sources one at a time through a session
// controller and prints the category each one was filed under.
func writeClassification(w io.Writer, args []string, sources []ingest.Source) error {
	ctrl := session.New("", logger)
	for i, src := range sources {
		label := droppedLabel
		added, err := ingest.Apply(ctrl, []ingest.Source{src})
		if err != nil {
			return err
		}
		if added == 1 {
			records := ctrl.State().Records
			label = records[len(records)-1].Category.Label()
		}
		if _, err := fmt.Fprintf(w, "%-8s %s\n", label, args[i]); err != nil {
			return err
		}
	}
	return nil
}
