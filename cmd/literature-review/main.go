// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the literature-review CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/literature-review/internal/logging"
	"github.com/pdiddy/literature-review/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// envPrefix namespaces environment overrides for config keys and secrets.
const envPrefix = "LITERATURE_REVIEW"

var (
	// loadedSecrets holds API keys loaded from .secrets/ at startup.
	loadedSecrets secrets.Secrets

	// logger is built in PersistentPreRunE; commands that own the terminal
	// replace it.
	logger = zap.NewNop()
)

// rootCmd is the base command for the literature-review CLI.
var rootCmd = &cobra.Command{
	Use:   "literature-review",
	Short: "Turn a batch of papers into a structured literature review",
	Long: `literature-review collects research materials (PDFs, BibTeX entries, DOIs,
and URLs), sends them to an analysis engine in one batch, and presents the
validated review as prose, structured JSON, and a comparative table.

Run "literature-review session" for the interactive screen, or
"literature-review analyze" for a one-shot run from files and arguments.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose := viper.GetBool("verbose")
		l, err := logging.New(verbose)
		if err != nil {
			return err
		}
		logger = l

		dir := viper.GetString("secrets_dir")
		s, err := secrets.Load(dir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s.WithEnv(envPrefix, os.LookupEnv)
		if len(loadedSecrets) > 0 {
			logger.Debug("loaded secrets", zap.String("dir", dir), zap.Strings("keys", loadedSecrets.Keys()))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./literature-review.yaml or ~/.config/literature-review/literature-review.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory of API key files")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("secrets_dir", rootCmd.PersistentFlags().Lookup("secrets-dir"))

	bindEngineFlags(rootCmd)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("literature-review")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "literature-review"))
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
