// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates the full run: load source, extract the
// analysis, expand sections, revise, clean. All stages execute
// strictly sequentially on one logical thread; each consumes the
// previous stage's structured output.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pdiddy/script-engine/internal/analyze"
	"github.com/pdiddy/script-engine/internal/llm"
	"github.com/pdiddy/script-engine/internal/script"
	"github.com/pdiddy/script-engine/internal/source"
	"github.com/pdiddy/script-engine/pkg/types"
)

// Stage names reported on terminal failures.
const (
	StageLoad      = "load"
	StageFramework = "framework"
	StageOutline   = "outline"
	StageSections  = "sections"
)

// Request carries the caller-facing parameters of one run.
type Request struct {
	// Source is the content reference: raw text, file path, or URL.
	Source string

	// PodcastName and HostName personalize the generated script.
	PodcastName string
	HostName    string

	// MaxEvidenceItems caps the passage pool; 0 uses the configured
	// default.
	MaxEvidenceItems int

	// SkipRevision bypasses the holistic revision call. The
	// deterministic cleanup still runs.
	SkipRevision bool
}

// Pipeline holds the explicit dependencies of a run: the two backend
// gateways and the stage configuration, constructed once and injected.
// No ambient singletons. The analyst gateway serves the structured
// stages, the writer gateway the prose stages.
type Pipeline struct {
	analyst    llm.Generator
	writer     llm.Generator
	cfg        types.PipelineConfig
	log        io.Writer
	saveScript func(script string, meta *types.RunMetadata) (string, error)
	saveJSON   func(analysis *types.Analysis) (string, error)
}

// New builds a Pipeline around the two gateways. Progress and warnings
// go to log.
func New(analyst, writer llm.Generator, cfg types.PipelineConfig, log io.Writer) *Pipeline {
	return &Pipeline{analyst: analyst, writer: writer, cfg: cfg, log: log}
}

// WithPersistence installs artifact writers for the script and the
// intermediate analysis JSON. Persistence is a collaborator, not a
// correctness requirement: a nil writer disables that artifact.
func (p *Pipeline) WithPersistence(saveScript func(string, *types.RunMetadata) (string, error), saveJSON func(*types.Analysis) (string, error)) *Pipeline {
	p.saveScript = saveScript
	p.saveJSON = saveJSON
	return p
}

// failure builds a terminal failure Result. Any partially built
// analysis is discarded.
func failure(stage, msg string) types.Result {
	return types.Result{Success: false, Error: msg, FailureStage: stage}
}

// Run executes the whole pipeline for one request and returns a
// structured result; errors never escape as panics or raw error
// returns. Terminal failures are load, framework, outline, and
// zero-sections; every other shortfall degrades.
func (p *Pipeline) Run(ctx context.Context, req Request) types.Result {
	start := time.Now()
	fmt.Fprintf(p.log, "pipeline start: %s\n", truncate(req.Source, 100))

	loader := source.NewLoader(p.cfg.Loader)
	doc, err := loader.Load(ctx, req.Source)
	if err != nil {
		return failure(StageLoad, fmt.Sprintf("loading content: %v", err))
	}
	fmt.Fprintf(p.log, "loaded %d chars (%s)\n", len(doc.Text), doc.Origin)

	analysisCfg := p.cfg.Analysis
	if req.MaxEvidenceItems > 0 {
		analysisCfg.MaxPassages = req.MaxEvidenceItems
	}
	analyzer := analyze.NewAnalyzer(p.analyst, p.writer, analysisCfg, p.log)

	analysis, err := analyzer.Analyze(ctx, req.Source, doc)
	if err != nil {
		if errors.Is(err, analyze.ErrNoOutline) {
			return failure(StageOutline, fmt.Sprintf("outline construction: %v", err))
		}
		return failure(StageFramework, fmt.Sprintf("content analysis: %v", err))
	}

	var analysisPath string
	if p.saveJSON != nil {
		if analysisPath, err = p.saveJSON(analysis); err != nil {
			fmt.Fprintf(p.log, "warning: saving analysis: %v\n", err)
		}
	}

	return p.finish(ctx, req, analysis, analysisPath, start)
}

// Resume runs the generation half of the pipeline over a previously
// saved Analysis, skipping load and extraction.
func (p *Pipeline) Resume(ctx context.Context, req Request, analysis *types.Analysis) types.Result {
	return p.finish(ctx, req, analysis, "", time.Now())
}

func (p *Pipeline) finish(ctx context.Context, req Request, analysis *types.Analysis, analysisPath string, start time.Time) types.Result {
	writer := script.NewScriptwriter(p.writer, p.cfg.Generation, p.log)

	draft, generated, err := writer.Build(ctx, analysis, req.PodcastName, req.HostName)
	if err != nil {
		return failure(StageSections, "script generation failed: no sections were generated successfully")
	}

	final := draft
	if req.SkipRevision {
		fmt.Fprintf(p.log, "revision skipped\n")
	} else {
		revised, err := writer.Polish(ctx, draft)
		if err != nil {
			// Best-effort stage: fall back to the unrevised draft.
			fmt.Fprintf(p.log, "warning: revision failed, using unrevised draft: %v\n", err)
		} else {
			final = revised
		}
	}
	final = script.Cleanup(final)

	meta := &types.RunMetadata{
		Source:            truncate(analysis.Source, 200),
		PodcastName:       req.PodcastName,
		HostName:          req.HostName,
		FrameworkName:     analysis.Framework.Name,
		ScriptChars:       len(final),
		WordCount:         len(strings.Fields(final)),
		NumPassages:       len(analysis.KeyPassages),
		NumExamples:       len(analysis.SupportingExamples),
		SectionsPlanned:   len(analysis.Outline),
		SectionsGenerated: generated,
		ElapsedSeconds:    time.Since(start).Seconds(),
		Timestamp:         start.UTC().Format(time.RFC3339),
	}

	var scriptPath string
	if p.saveScript != nil {
		var err error
		if scriptPath, err = p.saveScript(final, meta); err != nil {
			fmt.Fprintf(p.log, "warning: saving script: %v\n", err)
		}
	}

	fmt.Fprintf(p.log, "pipeline complete in %.1fs: %d/%d sections, %d words\n",
		meta.ElapsedSeconds, generated, meta.SectionsPlanned, meta.WordCount)

	return types.Result{
		Success:      true,
		Script:       final,
		ScriptPath:   scriptPath,
		AnalysisPath: analysisPath,
		Metadata:     meta,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
