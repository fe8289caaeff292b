// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package script

import (
	"bytes"
	"text/template"

	"github.com/pdiddy/script-engine/pkg/types"
)

// sectionPromptData feeds sectionPromptTmpl.
type sectionPromptData struct {
	PodcastName string
	HostName    string
	Framework   types.Framework
	Section     types.OutlineSection
	Passages    []types.Passage
	Examples    []types.SupportingExample
	WordTarget  int
}

// sectionPromptTmpl expands one outline section into prose. The goal
// stated to the model is exploring the idea, not retelling the source:
// evidence is embedded as illustration material only.
var sectionPromptTmpl = template.Must(template.New("section").Parse(`Write one section of the podcast "{{.PodcastName}}", narrated by {{.HostName}}, exploring an idea in depth.

SECTION {{.Section.Number}}: {{.Section.Title}}
FOCUS: {{.Section.Focus}}
APPROACH: {{.Section.Approach}}
GOALS: {{.Section.Goals}}
{{if .Section.TransitionHint}}TRANSITION: {{.Section.TransitionHint}}{{end}}

THE FRAMEWORK BEING EXPLORED:
{{.Framework.Name}} ({{.Framework.Tradition}}): {{.Framework.CoreThesis}}

KEY PASSAGES (use as illustrations, not as a summary checklist):
{{range .Passages}}- [{{.Kind}}] {{.Content}} — illustrates {{.Illustrates}}
{{else}}(none matched; work from the framework alone)
{{end}}
SUPPORTING EXAMPLES:
{{range .Examples}}- {{.Name}}: {{.Description}} ({{.Connection}})
{{else}}(none)
{{end}}
INSTRUCTIONS:
- Explore the IDEA; use the passages and examples to illustrate it, never to retell the source
- Conversational and enthusiastic: rhetorical questions, everyday analogies, varied sentence rhythm
- First person, direct address, genuine curiosity about the idea
- Around {{.WordTarget}} words of flowing prose
- No headings, no stage directions, no speaker labels — spoken-word text only

Write the section now:`))

// revisionPromptTmpl runs one holistic pass over the assembled draft.
// It asks for flow and tone normalization while preserving length and
// structure; the deterministic cleanup afterwards removes whatever
// formatting the model injects anyway.
var revisionPromptTmpl = template.Must(template.New("revision").Parse(`Revise this podcast transcript for spoken delivery:

1. Fix grammatical errors and awkward phrasing
2. Smooth the flow between sentences and sections
3. Remove redundant or repetitive explanations
4. Keep the tone consistent: engaging but respectful of the source material
5. Strengthen the opening hook and the closing reflection

STRICT OUTPUT RULES:
- Output ONLY the revised transcript text
- No meta-commentary (never "Here is the revised version")
- No stage directions, sound cues, or text in parentheses or asterisks
- No speaker labels such as "HOST:" or "NARRATOR:"
- No markdown formatting (#, **, etc.)
- Keep the same overall length and structure

TRANSCRIPT:
{{.Script}}

Return only the revised transcript:`))

func render(tmpl *template.Template, data interface{}) string {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		panic(err)
	}
	return buf.String()
}
