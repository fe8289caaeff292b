// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package script expands an Analysis into narrated prose section by
// section, then revises and cleans the assembled draft. Section
// failures are skipped, never fatal; only a run where every section
// fails aborts.
package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pdiddy/script-engine/internal/llm"
	"github.com/pdiddy/script-engine/pkg/types"
)

// sectionSeparator joins assembled section texts. Cleanup collapses
// longer blank runs down to this same spacer, so the break stays
// canonical through revision.
const sectionSeparator = "\n\n"

// ErrNoSections means every outline section failed to expand.
var ErrNoSections = errors.New("no sections were generated")

// Scriptwriter expands outline sections through the writer backend.
type Scriptwriter struct {
	writer llm.Generator
	cfg    types.GenerationConfig
	log    io.Writer
}

// NewScriptwriter builds a Scriptwriter. Zero config fields fall back
// to the generation defaults.
func NewScriptwriter(writer llm.Generator, cfg types.GenerationConfig, log io.Writer) *Scriptwriter {
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.85
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 8192
	}
	if cfg.SectionWordTarget == 0 {
		cfg.SectionWordTarget = 4000
	}
	return &Scriptwriter{writer: writer, cfg: cfg, log: log}
}

// Build expands every outline section in ascending number order and
// assembles the successes into a title-prefixed script. Sections whose
// generation call fails are skipped; results for already-completed
// sections are retained. Returns the script and the count of sections
// that succeeded.
func (s *Scriptwriter) Build(ctx context.Context, analysis *types.Analysis, podcastName, hostName string) (string, int, error) {
	// Stable sort keeps duplicate numbers in emission order; gaps in
	// the numbering are tolerated.
	sections := make([]types.OutlineSection, len(analysis.Outline))
	copy(sections, analysis.Outline)
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].Number < sections[j].Number
	})

	var texts []string
	for _, sec := range sections {
		text, err := s.ExpandSection(ctx, analysis, sec, podcastName, hostName)
		if err != nil {
			fmt.Fprintf(s.log, "warning: section %d (%s) failed, skipping: %v\n", sec.Number, sec.Title, err)
			continue
		}
		fmt.Fprintf(s.log, "section %d complete (%d chars)\n", sec.Number, len(text))
		texts = append(texts, strings.TrimSpace(text))
	}

	if len(texts) == 0 {
		return "", 0, ErrNoSections
	}

	title := fmt.Sprintf("Episode: %s", analysis.Framework.Name)
	return title + sectionSeparator + strings.Join(texts, sectionSeparator), len(texts), nil
}

// ExpandSection generates prose for one outline section. The prompt
// embeds only the section's matched evidence and the framework summary;
// the full source text is deliberately never resent here.
func (s *Scriptwriter) ExpandSection(ctx context.Context, analysis *types.Analysis, sec types.OutlineSection, podcastName, hostName string) (string, error) {
	passages, examples := ResolveEvidence(sec, analysis.KeyPassages, analysis.SupportingExamples)

	prompt := render(sectionPromptTmpl, sectionPromptData{
		PodcastName: podcastName,
		HostName:    hostName,
		Framework:   analysis.Framework,
		Section:     sec,
		Passages:    passages,
		Examples:    examples,
		WordTarget:  s.cfg.SectionWordTarget,
	})

	return s.writer.Generate(ctx, prompt, llm.Params{
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	})
}

// ResolveEvidence resolves a section's passage and example references
// against the pools. Matching is case-insensitive substring in either
// direction — the refs are model-emitted free text, not stable keys, so
// this is inherently fuzzy and best-effort. Unmatched refs are silently
// dropped.
func ResolveEvidence(sec types.OutlineSection, passages []types.Passage, examples []types.SupportingExample) ([]types.Passage, []types.SupportingExample) {
	var matchedPassages []types.Passage
	usedP := make(map[int]bool)
	for _, ref := range sec.PassageRefs {
		for i, p := range passages {
			if usedP[i] {
				continue
			}
			if fuzzyMatch(ref, p.Content) || fuzzyMatch(ref, p.Illustrates) || fuzzyMatch(ref, string(p.Kind)) {
				matchedPassages = append(matchedPassages, p)
				usedP[i] = true
			}
		}
	}

	var matchedExamples []types.SupportingExample
	usedE := make(map[int]bool)
	for _, ref := range sec.ExampleRefs {
		for i, e := range examples {
			if usedE[i] {
				continue
			}
			if fuzzyMatch(ref, e.Name) {
				matchedExamples = append(matchedExamples, e)
				usedE[i] = true
			}
		}
	}

	return matchedPassages, matchedExamples
}

// fuzzyMatch reports whether one non-empty string contains the other,
// ignoring case.
func fuzzyMatch(ref, candidate string) bool {
	ref = strings.ToLower(strings.TrimSpace(ref))
	candidate = strings.ToLower(strings.TrimSpace(candidate))
	if ref == "" || candidate == "" {
		return false
	}
	return strings.Contains(candidate, ref) || strings.Contains(ref, candidate)
}
