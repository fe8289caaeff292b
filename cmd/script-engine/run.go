// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/script-engine/internal/llm"
	"github.com/pdiddy/script-engine/internal/pipeline"
	"github.com/pdiddy/script-engine/internal/store"
	"github.com/pdiddy/script-engine/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run [source]",
	Short: "Run the full pipeline: analyze a source and generate a script",
	Long: `Run loads the source (raw text, a file path, or an article URL),
extracts its intellectual framework and supporting evidence, plans an
episode outline, expands each section into narrated prose, and revises
the assembled draft. The script and its analysis artifact are written
under the output directory and the run is archived.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig(cmd)
	req, err := requestFromFlags(cmd, args[0])
	if err != nil {
		return err
	}

	analyst, writer := gateways(cfg)
	arts := pipeline.NewArtifacts(cfg.Output.Dir)

	p := pipeline.New(analyst, writer, cfg, os.Stderr)
	if cfg.Output.SaveAnalysis {
		p.WithPersistence(arts.SaveScript, arts.SaveAnalysis)
	} else {
		p.WithPersistence(arts.SaveScript, nil)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
	defer cancel()

	res := p.Run(ctx, req)
	archive(ctx, cfg.Output.Dir, &res)
	return emitResult(cmd, &res)
}

// gateways builds the two retrying backend gateways: Gemini for the
// structured analysis stages, DeepSeek for prose.
func gateways(cfg types.PipelineConfig) (llm.Generator, llm.Generator) {
	analyst := llm.NewGateway(llm.NewGemini(cfg.Analyst), retryPolicy(cfg.Analyst))
	writer := llm.NewGateway(llm.NewDeepSeek(cfg.Writer), retryPolicy(cfg.Writer))
	return analyst, writer
}

func retryPolicy(cfg types.AIConfig) llm.RetryPolicy {
	policy := llm.DefaultRetryPolicy()
	if cfg.MaxAttempts > 0 {
		policy.MaxAttempts = cfg.MaxAttempts
	}
	return policy
}

func requestFromFlags(cmd *cobra.Command, source string) (pipeline.Request, error) {
	podcast, _ := cmd.Flags().GetString("podcast")
	host, _ := cmd.Flags().GetString("host")
	maxEvidence, _ := cmd.Flags().GetInt("max-evidence")
	skipRevision, _ := cmd.Flags().GetBool("skip-revision")

	if strings.TrimSpace(source) == "" {
		return pipeline.Request{}, fmt.Errorf("source must not be empty")
	}

	return pipeline.Request{
		Source:           source,
		PodcastName:      podcast,
		HostName:         host,
		MaxEvidenceItems: maxEvidence,
		SkipRevision:     skipRevision,
	}, nil
}

// archive records a successful run in the SQLite archive. Archive
// failures are warnings; the script already exists on disk.
func archive(ctx context.Context, outputDir string, res *types.Result) {
	if !res.Success {
		return
	}
	s, err := store.Open(outputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: opening run archive: %v\n", err)
		return
	}
	defer s.Close()
	if _, err := s.Record(ctx, res); err != nil {
		fmt.Fprintf(os.Stderr, "warning: archiving run: %v\n", err)
	}
}

// emitResult prints the run outcome and maps failure to a non-zero
// exit status.
func emitResult(cmd *cobra.Command, res *types.Result) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
		if !res.Success {
			return fmt.Errorf("pipeline failed at %s", res.FailureStage)
		}
		return nil
	}

	if !res.Success {
		return fmt.Errorf("pipeline failed at %s: %s", res.FailureStage, res.Error)
	}

	m := res.Metadata
	fmt.Printf("Framework: %s\n", m.FrameworkName)
	fmt.Printf("Sections:  %d/%d\n", m.SectionsGenerated, m.SectionsPlanned)
	fmt.Printf("Words:     %d\n", m.WordCount)
	if res.ScriptPath != "" {
		fmt.Printf("Script:    %s\n", res.ScriptPath)
	}
	if res.AnalysisPath != "" {
		fmt.Printf("Analysis:  %s\n", res.AnalysisPath)
	}
	return nil
}

func init() {
	runCmd.Flags().String("podcast", "Deep Dive", "podcast name used in the script")
	runCmd.Flags().String("host", "Alex", "host name the script is narrated by")
	runCmd.Flags().Int("max-evidence", 0, "cap the extracted passage pool (0 = configured default)")
	runCmd.Flags().Bool("skip-revision", false, "skip the holistic revision pass")
	runCmd.Flags().Bool("json", false, "output the structured result as JSON")

	rootCmd.AddCommand(runCmd)
}
