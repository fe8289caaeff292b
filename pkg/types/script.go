// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RunMetadata summarizes a completed pipeline run.
type RunMetadata struct {
	// Source is a truncated copy of the source reference.
	Source string `json:"source" yaml:"source"`

	// PodcastName is the show name the script was written for.
	PodcastName string `json:"podcast_name" yaml:"podcast_name"`

	// HostName is the host persona the script addresses.
	HostName string `json:"host_name" yaml:"host_name"`

	// FrameworkName is the identified framework's short label.
	FrameworkName string `json:"framework_name" yaml:"framework_name"`

	// ScriptChars is the character count of the final script.
	ScriptChars int `json:"script_chars" yaml:"script_chars"`

	// WordCount is the whitespace-delimited word count of the script.
	WordCount int `json:"word_count" yaml:"word_count"`

	// NumPassages is the size of the extracted passage pool.
	NumPassages int `json:"num_passages" yaml:"num_passages"`

	// NumExamples is the size of the supporting-example pool.
	NumExamples int `json:"num_examples" yaml:"num_examples"`

	// SectionsPlanned is the outline length.
	SectionsPlanned int `json:"sections_planned" yaml:"sections_planned"`

	// SectionsGenerated counts sections that expanded successfully.
	// Failed sections are skipped, so this can be below SectionsPlanned.
	SectionsGenerated int `json:"sections_generated" yaml:"sections_generated"`

	// ElapsedSeconds is total wall time for the run.
	ElapsedSeconds float64 `json:"elapsed_seconds" yaml:"elapsed_seconds"`

	// Timestamp is the run start time in RFC 3339 format.
	Timestamp string `json:"timestamp" yaml:"timestamp"`
}

// Result is the structured outcome of a pipeline run. Exactly one of
// Script or Error carries content: a successful run always has a
// non-empty script, a failed run always has a non-empty error string.
type Result struct {
	// Success reports whether the run produced a script.
	Success bool `json:"success" yaml:"success"`

	// Script is the final narrated script. Empty on failure.
	Script string `json:"script,omitempty" yaml:"script,omitempty"`

	// Error is a user-facing description of the terminal failure.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// FailureStage names the stage that aborted the run, when Success
	// is false: load, framework, outline, or sections.
	FailureStage string `json:"failure_stage,omitempty" yaml:"failure_stage,omitempty"`

	// ScriptPath is where the script was written, if persistence ran.
	ScriptPath string `json:"script_path,omitempty" yaml:"script_path,omitempty"`

	// AnalysisPath is where the analysis artifact was written, if saved.
	AnalysisPath string `json:"analysis_path,omitempty" yaml:"analysis_path,omitempty"`

	// Metadata summarizes the run. Present on success.
	Metadata *RunMetadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}
