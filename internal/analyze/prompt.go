// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"bytes"
	"text/template"
)

// frameworkPromptTmpl asks for the single controlling thesis of the
// source. The design premise is that one document expresses exactly
// one worldview; the prompt enforces that by requesting one object.
var frameworkPromptTmpl = template.Must(template.New("framework").Parse(`You are analyzing a text to identify the single intellectual framework it expresses.

Identify:
- name: a short label for the framework (e.g. "Absurdism", "Stoic ethics")
- tradition: the school of thought it belongs to
- core_thesis: the central claim in one or two sentences
- exploration_method: how the text develops its thesis (narrative, argument, example, dialogue)
- key_concepts: the 5-10 most important ideas, most central first

TEXT:
{{.Text}}

Respond with a single JSON object containing exactly the fields above. Do not include any text outside the JSON object.`))

// passagesPromptTmpl asks for the evidence pool: concrete passages
// that crystallize the framework.
var passagesPromptTmpl = template.Must(template.New("passages").Parse(`You are selecting the passages from a text that best crystallize its framework.

FRAMEWORK: {{.Framework.Name}} — {{.Framework.CoreThesis}}

Select up to {{.Max}} passages. For each provide:
- kind: one of "quote", "analogy", "example", "argument"
- content: the passage text, quoted or closely paraphrased
- location: roughly where it appears (e.g. "opening pages", "the trial scene")
- rationale: why this passage was selected
- illustrates: which key concept it demonstrates

TEXT:
{{.Text}}

Respond with a JSON array of passage objects. Do not include any text outside the JSON array.`))

// examplesPromptTmpl asks for a second, looser evidence pool. The
// digest of already-selected passages steers the model away from
// duplicating them.
var examplesPromptTmpl = template.Must(template.New("examples").Parse(`You are collecting supporting examples from a text: scenes, anecdotes, or cases a narrator could draw on.

FRAMEWORK: {{.Framework.Name}} — {{.Framework.CoreThesis}}

ALREADY SELECTED (do not duplicate these):
{{.PassageDigest}}

Collect up to {{.Max}} examples. For each provide:
- name: a short handle
- description: what happens, in 2-3 sentences
- connection: how it relates to the framework
- detail: any specifics worth preserving

TEXT:
{{.Text}}

Respond with a JSON array of example objects. Do not include any text outside the JSON array.`))

// outlinePromptTmpl asks for the episode plan. The full evidence pools
// are serialized into the prompt so sections can reference them; the
// source text itself is not resent.
var outlinePromptTmpl = template.Must(template.New("outline").Parse(`You are planning a long-form narrated episode exploring a framework.

FRAMEWORK: {{.Framework.Name}} ({{.Framework.Tradition}})
CORE THESIS: {{.Framework.CoreThesis}}
KEY CONCEPTS: {{.Concepts}}

KEY PASSAGES:
{{.Passages}}

SUPPORTING EXAMPLES:
{{.Examples}}

Create an outline with 5 to 8 sections that flows from introduction to conclusion. For each section provide:
- number: 1-based position
- title: short section title
- focus: what the section covers (2-3 sentences)
- approach: the angle (analytical, narrative, comparative)
- passage_refs: which key passages to use, by their content or what they illustrate
- example_refs: which supporting examples to use, by name
- goals: what the listener should take away
- transition_hint: how to hand off to the next section

Respond with a JSON array of section objects. Do not include any text outside the JSON array.`))

// render executes a prompt template, panicking only on programmer
// error (a template that cannot execute against its own data type).
func render(tmpl *template.Template, data interface{}) string {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		panic(err)
	}
	return buf.String()
}
