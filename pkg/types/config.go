// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// AIConfig holds shared settings for a generative-model backend.
type AIConfig struct {
	// Model is the model identifier (e.g. "gemini-2.5-flash",
	// "deepseek-reasoner").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the backend.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the backend's default API endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// Timeout is the per-request HTTP timeout (default 120s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// MaxAttempts is the number of generation attempts before the
	// gateway reports a terminal failure (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`
}

// LoaderConfig holds settings for resolving a source reference into text.
type LoaderConfig struct {
	// Timeout is the HTTP timeout for URL fetches.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with URL fetches.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AnalysisConfig holds settings for the extraction stages.
type AnalysisConfig struct {
	// MaxPassages caps the passage pool (default 12).
	MaxPassages int `json:"max_passages" yaml:"max_passages"`

	// MaxExamples caps the supporting-example pool (default 8).
	MaxExamples int `json:"max_examples" yaml:"max_examples"`
}

// GenerationConfig holds settings for section expansion and revision.
type GenerationConfig struct {
	// Temperature is the sampling temperature for section expansion.
	// Kept high (default 0.85) for creative variance.
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// MaxTokens is the maximum output length per generation call
	// (default 8192).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// SectionWordTarget is the target word count per section
	// (default 4000, within the 3000-5000 range).
	SectionWordTarget int `json:"section_word_target" yaml:"section_word_target"`
}

// OutputConfig holds settings for artifact persistence.
type OutputConfig struct {
	// Dir is the base output directory (contains json/, scripts/, index/).
	Dir string `json:"dir" yaml:"dir"`

	// SaveAnalysis controls whether the intermediate analysis JSON is
	// persisted alongside the script.
	SaveAnalysis bool `json:"save_analysis" yaml:"save_analysis"`
}

// PipelineConfig groups all stage configurations for one pipeline.
type PipelineConfig struct {
	Analyst    AIConfig         `json:"analyst" yaml:"analyst"`
	Writer     AIConfig         `json:"writer" yaml:"writer"`
	Loader     LoaderConfig     `json:"loader" yaml:"loader"`
	Analysis   AnalysisConfig   `json:"analysis" yaml:"analysis"`
	Generation GenerationConfig `json:"generation" yaml:"generation"`
	Output     OutputConfig     `json:"output" yaml:"output"`
}

// Defaults returns a PipelineConfig populated with the defaults every
// stage assumes when a field is zero.
func Defaults() PipelineConfig {
	return PipelineConfig{
		Analyst: AIConfig{
			Model:       "gemini-2.5-flash",
			Timeout:     120 * time.Second,
			MaxAttempts: 3,
		},
		Writer: AIConfig{
			Model:       "deepseek-reasoner",
			BaseURL:     "https://api.deepseek.com",
			Timeout:     120 * time.Second,
			MaxAttempts: 3,
		},
		Loader: LoaderConfig{
			Timeout:   30 * time.Second,
			UserAgent: "script-engine/0.1",
		},
		Analysis: AnalysisConfig{
			MaxPassages: 12,
			MaxExamples: 8,
		},
		Generation: GenerationConfig{
			Temperature:       0.85,
			MaxTokens:         8192,
			SectionWordTarget: 4000,
		},
		Output: OutputConfig{
			Dir:          "outputs",
			SaveAnalysis: true,
		},
	}
}
