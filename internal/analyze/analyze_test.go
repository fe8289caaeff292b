// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

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

// scriptedGenerator returns canned replies in call order.
type scriptedGenerator struct {
	replies []string
	errs    []error
	calls   int
	prompts []string
}

func (s *scriptedGenerator) Generate(_ context.Context, prompt string, _ llm.Params) (string, error) {
	i := s.calls
	s.calls++
	s.prompts = append(s.prompts, prompt)
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.replies) {
		return s.replies[i], nil
	}
	return "", fmt.Errorf("unexpected call %d", i)
}

const frameworkReply = `{"name": "Absurdism", "tradition": "Existentialism",
"core_thesis": "Meaning must be made in a meaningless world.",
"exploration_method": "narrative", "key_concepts": ["the absurd", "revolt", "freedom"]}`

const passagesReply = `[
	{"kind": "quote", "content": "One must imagine Sisyphus happy.", "location": "closing", "rationale": "thesis in one line", "illustrates": "revolt"},
	{"kind": "argument", "content": "Suicide is the only serious philosophical problem.", "location": "opening", "rationale": "framing", "illustrates": "the absurd"}
]`

const examplesReply = `[
	{"name": "The boulder", "description": "Sisyphus pushes the rock forever.", "connection": "embodies revolt", "detail": "eternal repetition"}
]`

const outlineReply = `[
	{"number": 1, "title": "The Problem", "focus": "Why meaning matters.", "approach": "analytical", "passage_refs": ["serious philosophical problem"], "example_refs": [], "goals": "frame the question", "transition_hint": "from question to answer"},
	{"number": 2, "title": "The Answer", "focus": "Revolt as response.", "approach": "narrative", "passage_refs": ["Sisyphus happy"], "example_refs": ["The boulder"], "goals": "land the thesis", "transition_hint": ""}
]`

func testDoc() *types.SourceDocument {
	return &types.SourceDocument{
		Origin: types.OriginRawText,
		Text:   strings.Repeat("An essay about the absurd condition. ", 100),
	}
}

func TestAnalyzeHappyPath(t *testing.T) {
	analyst := &scriptedGenerator{replies: []string{frameworkReply, passagesReply, outlineReply}}
	writer := &scriptedGenerator{replies: []string{examplesReply}}

	var log bytes.Buffer
	a := NewAnalyzer(analyst, writer, types.AnalysisConfig{MaxPassages: 12, MaxExamples: 8}, &log)

	analysis, err := a.Analyze(context.Background(), "essay.txt", testDoc())
	require.NoError(t, err)

	assert.Equal(t, "essay.txt", analysis.Source)
	assert.Equal(t, "Absurdism", analysis.Framework.Name)
	assert.Len(t, analysis.KeyPassages, 2)
	assert.Len(t, analysis.SupportingExamples, 1)
	assert.Len(t, analysis.Outline, 2)
	assert.Equal(t, 2, analysis.Metadata.NumPassages)
	assert.Equal(t, 2, analysis.Metadata.NumSections)
	assert.Equal(t, 3, analyst.calls)
	assert.Equal(t, 1, writer.calls)
}

func TestAnalyzeFrameworkFailureIsFatal(t *testing.T) {
	analyst := &scriptedGenerator{errs: []error{fmt.Errorf("backend down")}}
	a := NewAnalyzer(analyst, &scriptedGenerator{}, types.AnalysisConfig{}, &bytes.Buffer{})

	_, err := a.Analyze(context.Background(), "s", testDoc())
	require.ErrorIs(t, err, ErrNoFramework)
}

func TestAnalyzeUnparseableFrameworkIsFatal(t *testing.T) {
	analyst := &scriptedGenerator{replies: []string{"I could not determine a framework, sorry."}}
	a := NewAnalyzer(analyst, &scriptedGenerator{}, types.AnalysisConfig{}, &bytes.Buffer{})

	_, err := a.Analyze(context.Background(), "s", testDoc())
	require.ErrorIs(t, err, ErrNoFramework)
}

func TestAnalyzeEvidenceFailuresDegrade(t *testing.T) {
	// Passages and examples both fail; the run proceeds to the outline
	// with empty pools.
	analyst := &scriptedGenerator{
		replies: []string{frameworkReply, "no brackets here", outlineReply},
	}
	writer := &scriptedGenerator{errs: []error{fmt.Errorf("backend down")}}

	var log bytes.Buffer
	a := NewAnalyzer(analyst, writer, types.AnalysisConfig{}, &log)

	analysis, err := a.Analyze(context.Background(), "s", testDoc())
	require.NoError(t, err)
	assert.Empty(t, analysis.KeyPassages)
	assert.Empty(t, analysis.SupportingExamples)
	assert.Len(t, analysis.Outline, 2)
	assert.Contains(t, log.String(), "warning: passage")
	assert.Contains(t, log.String(), "warning: example")
}

func TestAnalyzeOutlineFailureIsFatal(t *testing.T) {
	analyst := &scriptedGenerator{
		replies: []string{frameworkReply, passagesReply, "not an outline"},
	}
	writer := &scriptedGenerator{replies: []string{examplesReply}}
	a := NewAnalyzer(analyst, writer, types.AnalysisConfig{}, &bytes.Buffer{})

	_, err := a.Analyze(context.Background(), "s", testDoc())
	require.ErrorIs(t, err, ErrNoOutline)
}

func TestExtractPassagesCapped(t *testing.T) {
	var items []string
	for i := 0; i < 20; i++ {
		items = append(items, fmt.Sprintf(`{"kind": "quote", "content": "p%d"}`, i))
	}
	reply := "[" + strings.Join(items, ",") + "]"

	analyst := &scriptedGenerator{replies: []string{reply}}
	a := NewAnalyzer(analyst, &scriptedGenerator{}, types.AnalysisConfig{MaxPassages: 5}, &bytes.Buffer{})

	passages := a.ExtractPassages(context.Background(), &types.Framework{Name: "F"}, "text")
	assert.Len(t, passages, 5)
	assert.Equal(t, "p0", passages[0].Content)
}

func TestExamplePromptCarriesPassageDigest(t *testing.T) {
	writer := &scriptedGenerator{replies: []string{examplesReply}}
	a := NewAnalyzer(&scriptedGenerator{}, writer, types.AnalysisConfig{}, &bytes.Buffer{})

	passages := []types.Passage{{Kind: types.PassageQuote, Content: "One must imagine Sisyphus happy.", Illustrates: "revolt"}}
	a.ExtractExamples(context.Background(), &types.Framework{Name: "F"}, passages, "text")

	require.Len(t, writer.prompts, 1)
	assert.Contains(t, writer.prompts[0], "Sisyphus happy")
	assert.Contains(t, writer.prompts[0], "do not duplicate")
}

func TestFrameworkSliceBound(t *testing.T) {
	long := strings.Repeat("x", frameworkSliceChars*2)
	analyst := &scriptedGenerator{replies: []string{frameworkReply}}
	a := NewAnalyzer(analyst, &scriptedGenerator{}, types.AnalysisConfig{}, &bytes.Buffer{})

	_, err := a.IdentifyFramework(context.Background(), long)
	require.NoError(t, err)
	// The prompt embeds only the leading slice, not the whole source.
	assert.Less(t, len(analyst.prompts[0]), frameworkSliceChars+2000)
}

func TestLeadingSliceRespectsRuneBoundaries(t *testing.T) {
	text := strings.Repeat("é", 100) // 2 bytes per rune
	got := leadingSlice(text, 101)
	assert.Equal(t, 100, len(got))
	assert.True(t, strings.HasPrefix(text, got))
}
