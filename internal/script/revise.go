// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package script

import (
	"context"
	"regexp"
	"strings"

	"github.com/pdiddy/script-engine/internal/llm"
)

// Polish runs the holistic revision pass over an assembled draft. It is
// best-effort: the caller falls back to the pre-revision draft when the
// call fails.
func (s *Scriptwriter) Polish(ctx context.Context, draft string) (string, error) {
	prompt := render(revisionPromptTmpl, struct{ Script string }{draft})
	return s.writer.Generate(ctx, prompt, llm.Params{
		Temperature: 0.6,
		MaxTokens:   s.cfg.MaxTokens,
	})
}

var (
	// preambleRe matches a leading meta-commentary block: everything up
	// to and including a "Here is ... script/transcript/version" line,
	// provided that line sits within the first few lines of the text.
	preambleRe = regexp.MustCompile(`(?is)^(?:[^\n]*\n){0,4}?[^\n]*\bhere is\b[^\n]*\b(?:script|transcript|version)\b[^\n]*\n+`)

	// stageDirRe matches asterisk-wrapped parenthetical stage directions.
	stageDirRe = regexp.MustCompile(`\*+\([^)]*\)\*+`)

	// soundCueRe matches bare parenthetical production cues.
	soundCueRe = regexp.MustCompile(`(?i)\((?:sound|music|sfx|pause|applause)[^)]*\)`)

	// speakerRe matches speaker-label markup at line start.
	speakerRe = regexp.MustCompile(`(?im)^\**(?:host|narrator)\s*:\**[ \t]*`)

	// headingRe matches markdown heading markers at line start.
	headingRe = regexp.MustCompile(`(?m)^[ \t]*#{1,6}[ \t]*`)

	// emphasisRe matches runs of markdown emphasis asterisks.
	emphasisRe = regexp.MustCompile(`\*{2,}`)

	// blankRunRe matches runs of 3+ newlines, collapsed to the
	// canonical section-break spacer.
	blankRunRe = regexp.MustCompile(`\n{3,}`)
)

// Cleanup deterministically strips residual formatting artifacts from a
// revised (or unrevised) draft: meta-commentary preambles, stage
// directions, speaker labels, and markdown markers. No model call is
// involved. The rule set is applied to a fixed point, so Cleanup is
// idempotent: applying it twice yields the same text as applying it
// once.
func Cleanup(text string) string {
	for i := 0; i < 8; i++ {
		next := cleanupOnce(text)
		if next == text {
			break
		}
		text = next
	}
	return text
}

func cleanupOnce(text string) string {
	text = preambleRe.ReplaceAllString(text, "")
	text = stageDirRe.ReplaceAllString(text, "")
	text = soundCueRe.ReplaceAllString(text, "")
	text = speakerRe.ReplaceAllString(text, "")
	text = headingRe.ReplaceAllString(text, "")
	text = emphasisRe.ReplaceAllString(text, "")
	text = blankRunRe.ReplaceAllString(text, sectionSeparator)
	return strings.TrimSpace(text)
}
