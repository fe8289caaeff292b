// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the script-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/script-engine/internal/secrets"
	"github.com/pdiddy/script-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the script-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "script-engine",
	Short: "Turn source material into long-form narrated podcast scripts",
	Long: `script-engine analyzes a text, file, or article URL, identifies the
intellectual framework it expresses, and generates a long-form narrated
podcast script exploring that framework.

The pipeline stages are exposed as subcommands: run executes the whole
pipeline, analyze stops after the analysis artifact, script resumes
generation from a saved analysis, and history queries the run archive.`,
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

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./script-engine.yaml or ~/.config/script-engine/config.yaml)")
	rootCmd.PersistentFlags().String("output-dir", "", "base directory for artifacts (default: outputs)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("script-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "script-engine"))
		}
	}

	viper.SetEnvPrefix("SCRIPT_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// pipelineConfig assembles the stage configuration: defaults, overlaid
// with config-file/env values, overlaid with flags and secrets.
func pipelineConfig(cmd *cobra.Command) types.PipelineConfig {
	cfg := types.Defaults()

	if v := viper.GetString("analyst.model"); v != "" {
		cfg.Analyst.Model = v
	}
	if v := viper.GetString("analyst.api_key"); v != "" {
		cfg.Analyst.APIKey = v
	}
	if v := viper.GetString("analyst.base_url"); v != "" {
		cfg.Analyst.BaseURL = v
	}
	if v := viper.GetString("writer.model"); v != "" {
		cfg.Writer.Model = v
	}
	if v := viper.GetString("writer.api_key"); v != "" {
		cfg.Writer.APIKey = v
	}
	if v := viper.GetString("writer.base_url"); v != "" {
		cfg.Writer.BaseURL = v
	}
	if v := viper.GetDuration("timeout"); v > 0 {
		cfg.Analyst.Timeout = v
		cfg.Writer.Timeout = v
	}
	if v := viper.GetInt("max_retries"); v > 0 {
		cfg.Analyst.MaxAttempts = v
		cfg.Writer.MaxAttempts = v
	}
	if v := viper.GetInt("analysis.max_passages"); v > 0 {
		cfg.Analysis.MaxPassages = v
	}
	if v := viper.GetInt("analysis.max_examples"); v > 0 {
		cfg.Analysis.MaxExamples = v
	}
	if v := viper.GetInt("generation.section_word_target"); v > 0 {
		cfg.Generation.SectionWordTarget = v
	}
	if v := viper.GetString("output.dir"); v != "" {
		cfg.Output.Dir = v
	}
	if viper.IsSet("output.save_analysis") {
		cfg.Output.SaveAnalysis = viper.GetBool("output.save_analysis")
	}

	if dir, _ := cmd.Flags().GetString("output-dir"); dir != "" {
		cfg.Output.Dir = dir
	}

	secrets.Apply(&cfg, loadedSecrets)
	return cfg
}

// runTimeout bounds one full pipeline run. Generous: a run makes a
// dozen or more long model calls.
const runTimeout = 60 * time.Minute

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
