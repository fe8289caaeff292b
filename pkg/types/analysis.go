// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data records exchanged between
// pipeline stages: source documents, analysis findings, and scripts.
package types

// SourceOrigin classifies how a source reference was resolved.
type SourceOrigin string

const (
	OriginRawText  SourceOrigin = "raw_text"
	OriginFilePath SourceOrigin = "file_path"
	OriginURL      SourceOrigin = "url"
)

// SourceDocument is the plain-text input to the analysis stages.
// It is immutable once loaded.
type SourceDocument struct {
	// Origin records which loader branch produced the text.
	Origin SourceOrigin `json:"origin" yaml:"origin"`

	// Text is the full plain-text content of the source.
	Text string `json:"text" yaml:"text"`
}

// Framework is the single controlling thesis a source document expresses.
// It is produced once by the framework stage and never mutated; every
// later stage receives it as read-only context.
type Framework struct {
	// Name is a short label for the framework (e.g. "Absurdism").
	Name string `json:"name" yaml:"name"`

	// Tradition situates the framework in a school of thought.
	Tradition string `json:"tradition" yaml:"tradition"`

	// CoreThesis is the framework's central claim in one or two sentences.
	CoreThesis string `json:"core_thesis" yaml:"core_thesis"`

	// ExplorationMethod describes how the source develops its thesis.
	ExplorationMethod string `json:"exploration_method" yaml:"exploration_method"`

	// KeyConcepts lists the framework's most important ideas, in the
	// order the model surfaced them.
	KeyConcepts []string `json:"key_concepts" yaml:"key_concepts"`
}

// PassageKind classifies an extracted passage.
type PassageKind string

const (
	PassageQuote    PassageKind = "quote"
	PassageAnalogy  PassageKind = "analogy"
	PassageExample  PassageKind = "example"
	PassageArgument PassageKind = "argument"
)

// Passage is a piece of source text judged to crystallize the framework.
// Passages form a read-only evidence pool once extraction finishes.
type Passage struct {
	// Kind classifies the passage: quote, analogy, example, or argument.
	Kind PassageKind `json:"kind" yaml:"kind"`

	// Content is the passage text, quoted or closely paraphrased.
	Content string `json:"content" yaml:"content"`

	// Location describes roughly where the passage appears in the source.
	Location string `json:"location" yaml:"location"`

	// Rationale explains why the passage was selected.
	Rationale string `json:"rationale" yaml:"rationale"`

	// Illustrates names the concept or idea the passage demonstrates.
	Illustrates string `json:"illustrates" yaml:"illustrates"`
}

// SupportingExample is a loosely-typed second evidence pool entry:
// a scene, anecdote, or case the script can draw on.
type SupportingExample struct {
	// Name is a short handle for the example.
	Name string `json:"name" yaml:"name"`

	// Description summarizes the example.
	Description string `json:"description" yaml:"description"`

	// Connection explains how the example relates to the framework.
	Connection string `json:"connection" yaml:"connection"`

	// Detail carries any additional material worth keeping.
	Detail string `json:"detail" yaml:"detail"`
}

// OutlineSection is one planned unit of generated prose. Each section is
// expanded independently against its own evidence subset.
type OutlineSection struct {
	// Number is the 1-based section position. It defines generation and
	// assembly order; gaps are tolerated and duplicates are kept as
	// emitted.
	Number int `json:"number" yaml:"number"`

	// Title is the section heading.
	Title string `json:"title" yaml:"title"`

	// Focus describes what the section covers.
	Focus string `json:"focus" yaml:"focus"`

	// Approach suggests the angle: analytical, narrative, comparative.
	Approach string `json:"approach" yaml:"approach"`

	// PassageRefs names passages relevant to this section. Resolution
	// against the passage pool is fuzzy substring matching, since the
	// model emits free text rather than stable keys.
	PassageRefs []string `json:"passage_refs" yaml:"passage_refs"`

	// ExampleRefs names supporting examples relevant to this section.
	ExampleRefs []string `json:"example_refs" yaml:"example_refs"`

	// Goals states what the listener should take away.
	Goals string `json:"goals" yaml:"goals"`

	// TransitionHint suggests how to hand off to the next section.
	TransitionHint string `json:"transition_hint" yaml:"transition_hint"`
}

// AnalysisMetadata summarizes an analysis run for the saved artifact.
type AnalysisMetadata struct {
	// SourceChars is the character count of the loaded source text.
	SourceChars int `json:"source_chars" yaml:"source_chars"`

	// NumPassages is the size of the passage pool.
	NumPassages int `json:"num_passages" yaml:"num_passages"`

	// NumExamples is the size of the supporting-example pool.
	NumExamples int `json:"num_examples" yaml:"num_examples"`

	// NumSections is the outline length.
	NumSections int `json:"num_sections" yaml:"num_sections"`
}

// Analysis is the complete intermediate artifact produced by the
// extraction stages and consumed by script generation. It is owned by
// the pipeline for the duration of one run and persisted as a side
// artifact.
type Analysis struct {
	// Source is the original source reference (not the loaded text).
	Source string `json:"source" yaml:"source"`

	// Framework is the document's single controlling thesis.
	Framework Framework `json:"framework" yaml:"framework"`

	// KeyPassages is the extracted passage pool, in extraction order.
	KeyPassages []Passage `json:"key_passages" yaml:"key_passages"`

	// SupportingExamples is the second evidence pool.
	SupportingExamples []SupportingExample `json:"supporting_examples" yaml:"supporting_examples"`

	// Outline lists the planned sections.
	Outline []OutlineSection `json:"outline" yaml:"outline"`

	// Metadata summarizes the run.
	Metadata AnalysisMetadata `json:"metadata" yaml:"metadata"`
}
