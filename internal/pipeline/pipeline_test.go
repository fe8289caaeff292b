// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/script-engine/internal/llm"
	"github.com/pdiddy/script-engine/pkg/types"
)

const frameworkReply = `{"name": "Absurdism", "tradition": "Existentialism",
"core_thesis": "Meaning must be made.", "exploration_method": "narrative",
"key_concepts": ["the absurd", "revolt"]}`

const passagesReply = `[{"kind": "quote", "content": "One must imagine Sisyphus happy.",
"location": "closing", "rationale": "thesis", "illustrates": "revolt"}]`

const examplesReply = `[{"name": "The boulder", "description": "Endless pushing.",
"connection": "revolt", "detail": ""}]`

// outlineReply emits six sections so section-skip semantics are
// observable.
func outlineReply(n int) string {
	var secs []string
	for i := 1; i <= n; i++ {
		secs = append(secs, fmt.Sprintf(`{"number": %d, "title": "Part %d", "focus": "f",
"approach": "analytical", "passage_refs": ["Sisyphus"], "example_refs": ["boulder"],
"goals": "g", "transition_hint": ""}`, i, i))
	}
	return "[" + strings.Join(secs, ",") + "]"
}

// analystMock answers the structured stages by prompt shape.
type analystMock struct {
	frameworkReply string
	outlineReply   string
	calls          []string
}

func (m *analystMock) Generate(_ context.Context, prompt string, _ llm.Params) (string, error) {
	switch {
	case strings.Contains(prompt, "single intellectual framework"):
		m.calls = append(m.calls, "framework")
		if m.frameworkReply == "" {
			return "", fmt.Errorf("framework backend down")
		}
		return m.frameworkReply, nil
	case strings.Contains(prompt, "crystallize its framework"):
		m.calls = append(m.calls, "passages")
		return passagesReply, nil
	case strings.Contains(prompt, "planning a long-form narrated episode"):
		m.calls = append(m.calls, "outline")
		if m.outlineReply == "" {
			return "", fmt.Errorf("outline backend down")
		}
		return m.outlineReply, nil
	}
	return "", fmt.Errorf("unexpected analyst prompt")
}

// writerMock answers examples, section expansion, and revision.
type writerMock struct {
	failSections map[int]bool
	failRevision bool
	revisionText string
	sectionCalls int
	polishCalls  int
}

func (m *writerMock) Generate(_ context.Context, prompt string, _ llm.Params) (string, error) {
	switch {
	case strings.Contains(prompt, "supporting examples from a text"):
		return examplesReply, nil
	case strings.Contains(prompt, "Revise this podcast transcript"):
		m.polishCalls++
		if m.failRevision {
			return "", fmt.Errorf("revision backend down")
		}
		if m.revisionText != "" {
			return m.revisionText, nil
		}
		return "Here is the revised transcript:\n\nRevised prose body.", nil
	case strings.Contains(prompt, "SECTION "):
		m.sectionCalls++
		for n := range m.failSections {
			if strings.Contains(prompt, fmt.Sprintf("SECTION %d:", n)) {
				return "", fmt.Errorf("section %d down", n)
			}
		}
		for _, line := range strings.Split(prompt, "\n") {
			if strings.HasPrefix(line, "SECTION ") {
				return "Prose for " + strings.TrimSuffix(line, ":"), nil
			}
		}
	}
	return "", fmt.Errorf("unexpected writer prompt")
}

func testPipeline(analyst, writer llm.Generator) *Pipeline {
	cfg := types.Defaults()
	return New(analyst, writer, cfg, &bytes.Buffer{})
}

func longSource() string {
	return strings.Repeat("An essay about the absurd condition and what follows from it. ", 50)
}

func TestRunHappyPathSkipRevision(t *testing.T) {
	analyst := &analystMock{frameworkReply: frameworkReply, outlineReply: outlineReply(6)}
	writer := &writerMock{}

	res := testPipeline(analyst, writer).Run(context.Background(), Request{
		Source:       longSource(),
		PodcastName:  "My Podcast",
		HostName:     "Jane",
		SkipRevision: true,
	})

	require.True(t, res.Success, "error: %s", res.Error)
	assert.NotEmpty(t, res.Script)
	assert.Empty(t, res.Error)
	assert.Zero(t, writer.polishCalls)

	require.NotNil(t, res.Metadata)
	assert.Equal(t, "Absurdism", res.Metadata.FrameworkName)
	assert.Equal(t, 6, res.Metadata.SectionsPlanned)
	assert.Equal(t, 6, res.Metadata.SectionsGenerated)
	assert.Equal(t, 1, res.Metadata.NumPassages)
	assert.Equal(t, 1, res.Metadata.NumExamples)
	assert.Positive(t, res.Metadata.WordCount)
	assert.Equal(t, []string{"framework", "passages", "outline"}, analyst.calls)
}

func TestRunSkipsFailedSections(t *testing.T) {
	analyst := &analystMock{frameworkReply: frameworkReply, outlineReply: outlineReply(6)}
	writer := &writerMock{failSections: map[int]bool{2: true, 5: true}}

	res := testPipeline(analyst, writer).Run(context.Background(), Request{
		Source:       longSource(),
		SkipRevision: true,
	})

	require.True(t, res.Success)
	// Metadata reflects the 4 successes, not the 6 planned.
	assert.Equal(t, 6, res.Metadata.SectionsPlanned)
	assert.Equal(t, 4, res.Metadata.SectionsGenerated)
	for _, n := range []int{1, 3, 4, 6} {
		assert.Contains(t, res.Script, fmt.Sprintf("Prose for SECTION %d", n))
	}
	assert.NotContains(t, res.Script, "Prose for SECTION 2")
	assert.NotContains(t, res.Script, "Prose for SECTION 5")
}

func TestRunRevisionReplacesDraft(t *testing.T) {
	analyst := &analystMock{frameworkReply: frameworkReply, outlineReply: outlineReply(5)}
	writer := &writerMock{revisionText: "Here is the revised transcript:\n\nRevised prose body."}

	res := testPipeline(analyst, writer).Run(context.Background(), Request{Source: longSource()})
	require.True(t, res.Success)
	assert.Equal(t, 1, writer.polishCalls)
	// Cleanup stripped the revision preamble.
	assert.Equal(t, "Revised prose body.", res.Script)
}

func TestRunRevisionFailureFallsBack(t *testing.T) {
	analyst := &analystMock{frameworkReply: frameworkReply, outlineReply: outlineReply(5)}
	writer := &writerMock{failRevision: true}

	res := testPipeline(analyst, writer).Run(context.Background(), Request{Source: longSource()})
	// Never fatal: the unrevised draft survives.
	require.True(t, res.Success)
	assert.Contains(t, res.Script, "Prose for SECTION 1")
}

func TestRunLoadFailure(t *testing.T) {
	res := testPipeline(&analystMock{}, &writerMock{}).Run(context.Background(), Request{Source: "   "})
	assert.False(t, res.Success)
	assert.Equal(t, StageLoad, res.FailureStage)
	assert.NotEmpty(t, res.Error)
	assert.Empty(t, res.Script)
}

func TestRunFrameworkFailure(t *testing.T) {
	analyst := &analystMock{} // framework reply unset → backend error
	res := testPipeline(analyst, &writerMock{}).Run(context.Background(), Request{Source: longSource()})
	assert.False(t, res.Success)
	assert.Equal(t, StageFramework, res.FailureStage)
	assert.NotEmpty(t, res.Error)
}

func TestRunOutlineFailure(t *testing.T) {
	analyst := &analystMock{frameworkReply: frameworkReply}
	res := testPipeline(analyst, &writerMock{}).Run(context.Background(), Request{Source: longSource()})
	assert.False(t, res.Success)
	assert.Equal(t, StageOutline, res.FailureStage)
}

func TestRunNoSectionsSucceeded(t *testing.T) {
	analyst := &analystMock{frameworkReply: frameworkReply, outlineReply: outlineReply(3)}
	writer := &writerMock{failSections: map[int]bool{1: true, 2: true, 3: true}}

	res := testPipeline(analyst, writer).Run(context.Background(), Request{Source: longSource()})
	assert.False(t, res.Success)
	assert.Equal(t, StageSections, res.FailureStage)
	assert.NotEmpty(t, res.Error)
}

func TestRunNeverAmbiguous(t *testing.T) {
	// Success implies non-empty script; failure implies non-empty error.
	cases := []struct {
		name    string
		analyst *analystMock
		writer  *writerMock
		source  string
	}{
		{"success", &analystMock{frameworkReply: frameworkReply, outlineReply: outlineReply(5)}, &writerMock{}, longSource()},
		{"no framework", &analystMock{}, &writerMock{}, longSource()},
		{"empty source", &analystMock{}, &writerMock{}, " "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := testPipeline(tc.analyst, tc.writer).Run(context.Background(), Request{Source: tc.source, SkipRevision: true})
			if res.Success {
				assert.NotEmpty(t, res.Script)
			} else {
				assert.NotEmpty(t, res.Error)
			}
		})
	}
}

func TestRunMaxEvidenceItemsOverride(t *testing.T) {
	many := make([]string, 20)
	for i := range many {
		many[i] = fmt.Sprintf(`{"kind": "quote", "content": "p%d", "illustrates": ""}`, i)
	}
	analyst := &analystMock{frameworkReply: frameworkReply, outlineReply: outlineReply(5)}
	// Swap the passages reply in via a wrapper.
	wrapped := generatorFunc(func(ctx context.Context, prompt string, p llm.Params) (string, error) {
		if strings.Contains(prompt, "crystallize its framework") {
			return "[" + strings.Join(many, ",") + "]", nil
		}
		return analyst.Generate(ctx, prompt, p)
	})

	res := testPipeline(wrapped, &writerMock{}).Run(context.Background(), Request{
		Source:           longSource(),
		MaxEvidenceItems: 7,
		SkipRevision:     true,
	})
	require.True(t, res.Success)
	assert.Equal(t, 7, res.Metadata.NumPassages)
}

type generatorFunc func(ctx context.Context, prompt string, p llm.Params) (string, error)

func (f generatorFunc) Generate(ctx context.Context, prompt string, p llm.Params) (string, error) {
	return f(ctx, prompt, p)
}

// --- artifacts ---

func TestArtifactsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	a := NewArtifacts(dir)

	analysis := &types.Analysis{
		Source:    "essay.txt",
		Framework: types.Framework{Name: "Absurdism"},
		KeyPassages: []types.Passage{
			{Kind: types.PassageQuote, Content: "c"},
		},
		Outline: []types.OutlineSection{{Number: 1, Title: "t"}},
	}

	path, err := a.SaveAnalysis(analysis)
	require.NoError(t, err)

	// Stable top-level key names, pretty-printed.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	for _, key := range []string{"source", "framework", "key_passages", "supporting_examples", "outline", "metadata"} {
		assert.Contains(t, doc, key)
	}
	assert.Contains(t, string(raw), "\n  ")

	loaded, err := LoadAnalysis(path)
	require.NoError(t, err)
	assert.Equal(t, analysis.Framework.Name, loaded.Framework.Name)
	assert.Len(t, loaded.KeyPassages, 1)
}

func TestArtifactsSaveScriptWithSidecar(t *testing.T) {
	dir := t.TempDir()
	a := NewArtifacts(dir)

	meta := &types.RunMetadata{FrameworkName: "Absurdism", WordCount: 42}
	path, err := a.SaveScript("the script body", meta)
	require.NoError(t, err)

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "the script body", string(body))

	sidecar := strings.TrimSuffix(path, ".txt") + ".yaml"
	raw, err := os.ReadFile(sidecar)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "framework_name: Absurdism")

	entries, err := os.ReadDir(filepath.Join(dir, scriptsDir))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
