// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the reading-lab CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/reading-lab/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the reading-lab CLI.
var rootCmd = &cobra.Command{
	Use:   "reading-lab",
	Short: "Research paper summarization and digest pipeline",
	Long: `reading-lab turns research papers into structured JSON summaries and
weekly Markdown digests.

Each pipeline stage is a subcommand: crawl downloads papers, ingest
extracts text (with OCR fallback for scanned PDFs), summarize produces
JSON summaries through an AI model, digest renders the weekly Markdown
digest, index maintains a searchable archive, and notify delivers the
digest over Slack or email.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./reading-lab.yaml or ~/.config/reading-lab/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("reading-lab")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "reading-lab"))
		}
	}

	viper.SetEnvPrefix("READING_LAB")
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
