// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package script

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/script-engine/internal/llm"
	"github.com/pdiddy/script-engine/pkg/types"
)

// sectionBackend generates per-section text, failing for configured
// section numbers. Prompts embed "SECTION N:" so the backend can tell
// sections apart.
type sectionBackend struct {
	failSections map[int]bool
	calls        int
	prompts      []string
}

func (b *sectionBackend) Generate(_ context.Context, prompt string, _ llm.Params) (string, error) {
	b.calls++
	b.prompts = append(b.prompts, prompt)
	for n := range b.failSections {
		if strings.Contains(prompt, fmt.Sprintf("SECTION %d:", n)) {
			return "", fmt.Errorf("backend failure for section %d", n)
		}
	}
	// Echo the section marker so assembly order is observable.
	for _, line := range strings.Split(prompt, "\n") {
		if strings.HasPrefix(line, "SECTION ") {
			return "Prose for " + strings.TrimSuffix(line, ":"), nil
		}
	}
	return "Generic prose", nil
}

func testAnalysis(sectionNumbers ...int) *types.Analysis {
	a := &types.Analysis{
		Source: "essay.txt",
		Framework: types.Framework{
			Name:        "Absurdism",
			Tradition:   "Existentialism",
			CoreThesis:  "Meaning must be made.",
			KeyConcepts: []string{"the absurd", "revolt"},
		},
		KeyPassages: []types.Passage{
			{Kind: types.PassageQuote, Content: "One must imagine Sisyphus happy.", Illustrates: "revolt"},
			{Kind: types.PassageArgument, Content: "The workman of today works every day.", Illustrates: "the absurd"},
		},
		SupportingExamples: []types.SupportingExample{
			{Name: "The boulder", Description: "Endless pushing.", Connection: "revolt embodied"},
		},
	}
	for _, n := range sectionNumbers {
		a.Outline = append(a.Outline, types.OutlineSection{
			Number:      n,
			Title:       fmt.Sprintf("Part %d", n),
			Focus:       "A focus.",
			PassageRefs: []string{"Sisyphus happy"},
			ExampleRefs: []string{"boulder"},
		})
	}
	return a
}

func TestBuildAssemblesInOrder(t *testing.T) {
	backend := &sectionBackend{}
	sw := NewScriptwriter(backend, types.GenerationConfig{}, &bytes.Buffer{})

	// Outline arrives out of order; assembly must be ascending.
	analysis := testAnalysis(3, 1, 2)
	script, generated, err := sw.Build(context.Background(), analysis, "My Podcast", "Host")
	require.NoError(t, err)
	assert.Equal(t, 3, generated)

	i1 := strings.Index(script, "Prose for SECTION 1")
	i2 := strings.Index(script, "Prose for SECTION 2")
	i3 := strings.Index(script, "Prose for SECTION 3")
	require.True(t, i1 >= 0 && i2 >= 0 && i3 >= 0)
	assert.True(t, i1 < i2 && i2 < i3)
	assert.True(t, strings.HasPrefix(script, "Episode: Absurdism"))
}

func TestBuildSkipsFailedSections(t *testing.T) {
	backend := &sectionBackend{failSections: map[int]bool{2: true, 5: true}}
	var log bytes.Buffer
	sw := NewScriptwriter(backend, types.GenerationConfig{}, &log)

	analysis := testAnalysis(1, 2, 3, 4, 5, 6)
	script, generated, err := sw.Build(context.Background(), analysis, "P", "H")
	require.NoError(t, err)

	// Exactly the four successes, in ascending order.
	assert.Equal(t, 4, generated)
	assert.NotContains(t, script, "Prose for SECTION 2")
	assert.NotContains(t, script, "Prose for SECTION 5")
	for _, n := range []int{1, 3, 4, 6} {
		assert.Contains(t, script, fmt.Sprintf("Prose for SECTION %d", n))
	}
	assert.Contains(t, log.String(), "section 2")
	assert.Contains(t, log.String(), "skipping")
	// All six sections were attempted; failures do not block siblings.
	assert.Equal(t, 6, backend.calls)
}

func TestBuildAllSectionsFail(t *testing.T) {
	backend := &sectionBackend{failSections: map[int]bool{1: true, 2: true}}
	sw := NewScriptwriter(backend, types.GenerationConfig{}, &bytes.Buffer{})

	_, _, err := sw.Build(context.Background(), testAnalysis(1, 2), "P", "H")
	require.ErrorIs(t, err, ErrNoSections)
}

func TestExpandSectionPromptOmitsSourceText(t *testing.T) {
	backend := &sectionBackend{}
	sw := NewScriptwriter(backend, types.GenerationConfig{SectionWordTarget: 3500}, &bytes.Buffer{})

	analysis := testAnalysis(1)
	_, err := sw.ExpandSection(context.Background(), analysis, analysis.Outline[0], "My Podcast", "Jane")
	require.NoError(t, err)

	prompt := backend.prompts[0]
	assert.Contains(t, prompt, "My Podcast")
	assert.Contains(t, prompt, "Jane")
	assert.Contains(t, prompt, "Sisyphus happy")
	assert.Contains(t, prompt, "The boulder")
	assert.Contains(t, prompt, "3500")
	// Only matched evidence is embedded, not the unreferenced passage.
	assert.NotContains(t, prompt, "workman of today")
}

func TestResolveEvidenceFuzzyMatching(t *testing.T) {
	analysis := testAnalysis(1)
	sec := types.OutlineSection{
		PassageRefs: []string{"SISYPHUS HAPPY", "the absurd", "no such passage"},
		ExampleRefs: []string{"The Boulder", "missing example"},
	}

	passages, examples := ResolveEvidence(sec, analysis.KeyPassages, analysis.SupportingExamples)
	// "SISYPHUS HAPPY" matches by content, "the absurd" by illustrates;
	// unmatched refs are dropped without error.
	require.Len(t, passages, 2)
	assert.Equal(t, "One must imagine Sisyphus happy.", passages[0].Content)
	require.Len(t, examples, 1)
	assert.Equal(t, "The boulder", examples[0].Name)
}

func TestResolveEvidenceNoDuplicates(t *testing.T) {
	analysis := testAnalysis(1)
	sec := types.OutlineSection{
		// Both refs match the same passage.
		PassageRefs: []string{"Sisyphus", "imagine Sisyphus happy"},
	}
	passages, _ := ResolveEvidence(sec, analysis.KeyPassages, nil)
	assert.Len(t, passages, 1)
}

func TestResolveEvidenceEmptyRefs(t *testing.T) {
	analysis := testAnalysis(1)
	passages, examples := ResolveEvidence(types.OutlineSection{}, analysis.KeyPassages, analysis.SupportingExamples)
	assert.Empty(t, passages)
	assert.Empty(t, examples)
}
