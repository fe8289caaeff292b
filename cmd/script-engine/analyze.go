// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/script-engine/internal/analyze"
	"github.com/pdiddy/script-engine/internal/pipeline"
	"github.com/pdiddy/script-engine/internal/source"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [source]",
	Short: "Analyze a source and save the analysis artifact",
	Long: `Analyze runs the extraction half of the pipeline: it loads the
source, identifies the framework, extracts passages and examples, and
plans the episode outline. The analysis is saved as JSON under the
output directory; use the script command to generate from it later.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig(cmd)
	maxEvidence, _ := cmd.Flags().GetInt("max-evidence")

	ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
	defer cancel()

	loader := source.NewLoader(cfg.Loader)
	doc, err := loader.Load(ctx, args[0])
	if err != nil {
		return fmt.Errorf("loading content: %w", err)
	}
	fmt.Fprintf(os.Stderr, "loaded %d chars (%s)\n", len(doc.Text), doc.Origin)

	analysisCfg := cfg.Analysis
	if maxEvidence > 0 {
		analysisCfg.MaxPassages = maxEvidence
	}

	analyst, writer := gateways(cfg)
	analyzer := analyze.NewAnalyzer(analyst, writer, analysisCfg, os.Stderr)

	analysis, err := analyzer.Analyze(ctx, args[0], doc)
	if err != nil {
		return fmt.Errorf("content analysis: %w", err)
	}

	path, err := pipeline.NewArtifacts(cfg.Output.Dir).SaveAnalysis(analysis)
	if err != nil {
		return fmt.Errorf("saving analysis: %w", err)
	}

	fmt.Printf("Framework: %s (%s)\n", analysis.Framework.Name, analysis.Framework.Tradition)
	fmt.Printf("Passages:  %d\n", len(analysis.KeyPassages))
	fmt.Printf("Examples:  %d\n", len(analysis.SupportingExamples))
	fmt.Printf("Sections:  %d\n", len(analysis.Outline))
	fmt.Printf("Analysis:  %s\n", path)
	return nil
}

func init() {
	analyzeCmd.Flags().Int("max-evidence", 0, "cap the extracted passage pool (0 = configured default)")

	rootCmd.AddCommand(analyzeCmd)
}
