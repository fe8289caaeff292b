// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/script-engine/internal/pipeline"
)

var scriptCmd = &cobra.Command{
	Use:   "script [analysis.json]",
	Short: "Generate a script from a saved analysis artifact",
	Long: `Script resumes the pipeline from a previously saved analysis: it
expands the planned sections, revises the assembled draft, and writes
the script. Source loading and extraction are skipped, so the analyst
backend is never called.`,
	Args: cobra.ExactArgs(1),
	RunE: runScript,
}

func runScript(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig(cmd)

	analysis, err := pipeline.LoadAnalysis(args[0])
	if err != nil {
		return err
	}

	podcast, _ := cmd.Flags().GetString("podcast")
	host, _ := cmd.Flags().GetString("host")
	skipRevision, _ := cmd.Flags().GetBool("skip-revision")
	req := pipeline.Request{
		Source:       analysis.Source,
		PodcastName:  podcast,
		HostName:     host,
		SkipRevision: skipRevision,
	}

	analyst, writer := gateways(cfg)
	arts := pipeline.NewArtifacts(cfg.Output.Dir)
	p := pipeline.New(analyst, writer, cfg, os.Stderr).
		WithPersistence(arts.SaveScript, nil)

	ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
	defer cancel()

	res := p.Resume(ctx, req, analysis)
	archive(ctx, cfg.Output.Dir, &res)
	return emitResult(cmd, &res)
}

func init() {
	scriptCmd.Flags().String("podcast", "Deep Dive", "podcast name used in the script")
	scriptCmd.Flags().String("host", "Alex", "host name the script is narrated by")
	scriptCmd.Flags().Bool("skip-revision", false, "skip the holistic revision pass")
	scriptCmd.Flags().Bool("json", false, "output the structured result as JSON")

	rootCmd.AddCommand(scriptCmd)
}
