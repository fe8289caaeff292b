// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analyze turns loaded source text into a structured Analysis:
// framework, passage pool, supporting examples, and outline. Four
// sequential model calls, each followed by a tolerant parse of the
// reply. Only the framework and outline stages are fatal; the evidence
// stages degrade to empty pools with a logged warning.
package analyze

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/script-engine/internal/llm"
	"github.com/pdiddy/script-engine/pkg/types"
)

// Leading-slice sizes per stage. The framework call sees a smaller
// slice than passage extraction; later stages work from reduced data
// instead of the full source to bound prompt size.
const (
	frameworkSliceChars = 5000
	passageSliceChars   = 8000
	exampleSliceChars   = 6000
	digestContentChars  = 120
)

// ErrNoFramework means the framework stage produced nothing usable.
// Without a framework no sections can be written, so this aborts a run.
var ErrNoFramework = errors.New("no framework identified")

// ErrNoOutline means the outline stage produced nothing usable.
var ErrNoOutline = errors.New("no outline constructed")

// Analyzer runs the extraction stages. The two gateways are injected
// at construction: the analyst backend handles the structured stages
// (framework, passages, outline) and the writer backend handles the
// looser example collection.
type Analyzer struct {
	analyst llm.Generator
	writer  llm.Generator
	cfg     types.AnalysisConfig
	log     io.Writer
}

// NewAnalyzer builds an Analyzer. Warnings from degraded stages go to
// log.
func NewAnalyzer(analyst, writer llm.Generator, cfg types.AnalysisConfig, log io.Writer) *Analyzer {
	if cfg.MaxPassages <= 0 {
		cfg.MaxPassages = 12
	}
	if cfg.MaxExamples <= 0 {
		cfg.MaxExamples = 8
	}
	return &Analyzer{analyst: analyst, writer: writer, cfg: cfg, log: log}
}

// Analyze runs all four stages over doc and assembles the Analysis
// artifact. source is the original reference, recorded verbatim.
func (a *Analyzer) Analyze(ctx context.Context, source string, doc *types.SourceDocument) (*types.Analysis, error) {
	fw, err := a.IdentifyFramework(ctx, doc.Text)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.log, "framework: %s\n", fw.Name)

	passages := a.ExtractPassages(ctx, fw, doc.Text)
	fmt.Fprintf(a.log, "passages: %d\n", len(passages))

	examples := a.ExtractExamples(ctx, fw, passages, doc.Text)
	fmt.Fprintf(a.log, "examples: %d\n", len(examples))

	outline, err := a.BuildOutline(ctx, fw, passages, examples)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.log, "outline: %d sections\n", len(outline))

	return &types.Analysis{
		Source:             source,
		Framework:          *fw,
		KeyPassages:        passages,
		SupportingExamples: examples,
		Outline:            outline,
		Metadata: types.AnalysisMetadata{
			SourceChars: len(doc.Text),
			NumPassages: len(passages),
			NumExamples: len(examples),
			NumSections: len(outline),
		},
	}, nil
}

// IdentifyFramework runs the first stage over a leading slice of the
// source. Failure here is fatal to the whole run.
func (a *Analyzer) IdentifyFramework(ctx context.Context, text string) (*types.Framework, error) {
	prompt := render(frameworkPromptTmpl, struct{ Text string }{leadingSlice(text, frameworkSliceChars)})

	reply, err := a.analyst.Generate(ctx, prompt, llm.Params{Temperature: 0.6, MaxTokens: 8192})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoFramework, err)
	}

	var fw types.Framework
	if !tolerantUnmarshal(reply, '{', &fw) || fw.Name == "" {
		return nil, fmt.Errorf("%w: reply had no parseable framework object", ErrNoFramework)
	}
	return &fw, nil
}

// ExtractPassages runs the second stage. A failed call or unparseable
// reply yields an empty pool, never an error.
func (a *Analyzer) ExtractPassages(ctx context.Context, fw *types.Framework, text string) []types.Passage {
	prompt := render(passagesPromptTmpl, struct {
		Framework *types.Framework
		Max       int
		Text      string
	}{fw, a.cfg.MaxPassages, leadingSlice(text, passageSliceChars)})

	reply, err := a.analyst.Generate(ctx, prompt, llm.Params{Temperature: 0.7, MaxTokens: 8192})
	if err != nil {
		fmt.Fprintf(a.log, "warning: passage extraction failed: %v\n", err)
		return nil
	}

	var passages []types.Passage
	if !tolerantUnmarshal(reply, '[', &passages) {
		fmt.Fprintf(a.log, "warning: passage reply had no parseable array\n")
		return nil
	}
	if len(passages) > a.cfg.MaxPassages {
		passages = passages[:a.cfg.MaxPassages]
	}
	return passages
}

// ExtractExamples runs the third stage using a short digest of the
// passage pool to steer the model away from duplicates. Failures yield
// an empty pool.
func (a *Analyzer) ExtractExamples(ctx context.Context, fw *types.Framework, passages []types.Passage, text string) []types.SupportingExample {
	prompt := render(examplesPromptTmpl, struct {
		Framework     *types.Framework
		PassageDigest string
		Max           int
		Text          string
	}{fw, passageDigest(passages), a.cfg.MaxExamples, leadingSlice(text, exampleSliceChars)})

	reply, err := a.writer.Generate(ctx, prompt, llm.Params{Temperature: 0.7, MaxTokens: 8192})
	if err != nil {
		fmt.Fprintf(a.log, "warning: example extraction failed: %v\n", err)
		return nil
	}

	var examples []types.SupportingExample
	if !tolerantUnmarshal(reply, '[', &examples) {
		fmt.Fprintf(a.log, "warning: example reply had no parseable array\n")
		return nil
	}
	if len(examples) > a.cfg.MaxExamples {
		examples = examples[:a.cfg.MaxExamples]
	}
	return examples
}

// BuildOutline runs the fourth stage over the serialized evidence
// pools. Failure here is fatal: no outline means nothing to expand.
func (a *Analyzer) BuildOutline(ctx context.Context, fw *types.Framework, passages []types.Passage, examples []types.SupportingExample) ([]types.OutlineSection, error) {
	prompt := render(outlinePromptTmpl, struct {
		Framework *types.Framework
		Concepts  string
		Passages  string
		Examples  string
	}{fw, strings.Join(fw.KeyConcepts, ", "), marshalPool(passages), marshalPool(examples)})

	reply, err := a.analyst.Generate(ctx, prompt, llm.Params{Temperature: 0.7, MaxTokens: 8192})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoOutline, err)
	}

	var outline []types.OutlineSection
	if !tolerantUnmarshal(reply, '[', &outline) || len(outline) == 0 {
		return nil, fmt.Errorf("%w: reply had no parseable section array", ErrNoOutline)
	}
	return outline, nil
}

// leadingSlice returns the first n characters of text without
// splitting a rune.
func leadingSlice(text string, n int) string {
	if len(text) <= n {
		return text
	}
	cut := n
	for cut > 0 && !isRuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// passageDigest reduces the passage pool to one line per entry for the
// example prompt.
func passageDigest(passages []types.Passage) string {
	if len(passages) == 0 {
		return "(none)"
	}
	var sb strings.Builder
	for _, p := range passages {
		content := p.Content
		if len(content) > digestContentChars {
			content = leadingSlice(content, digestContentChars) + "..."
		}
		fmt.Fprintf(&sb, "- [%s] %s (illustrates: %s)\n", p.Kind, content, p.Illustrates)
	}
	return sb.String()
}

// marshalPool serializes an evidence pool for the outline prompt.
func marshalPool(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(data)
}
