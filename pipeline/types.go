package pipeline

import "fitdigest/digest"

// Options controls a single-file conversion.
type Options struct {
	// FitPath is the activity file to convert.
	FitPath string

	// OutDir receives the artifacts. Created if missing.
	OutDir string

	// SampleFormat selects the per-sample table artifact: "parquet",
	// "csv", or "none".
	SampleFormat string

	// Overwrite allows replacing existing artifacts.
	Overwrite bool
}

// FileResult reports the artifacts written for one converted file.
type FileResult struct {
	JSONPath     string         `json:"json_path"`
	MarkdownPath string         `json:"markdown_path"`
	SamplesPath  string         `json:"samples_path,omitempty"`
	SourceSHA256 string         `json:"source_sha256"`
	Digest       *digest.Result `json:"-"`
}

// BatchOptions controls a directory-wide conversion run.
type BatchOptions struct {
	InputDir     string
	OutDir       string
	SampleFormat string

	// Workers caps concurrent conversions. Zero means one per CPU.
	Workers int
}

// Outcome is the per-file record a batch run produces. Failures are
// captured here instead of aborting the run.
type Outcome struct {
	File         string         `json:"file"`
	Status       string         `json:"status"` // "success" or "error"
	Error        string         `json:"error,omitempty"`
	JSONPath     string         `json:"json_path,omitempty"`
	MarkdownPath string         `json:"markdown_path,omitempty"`
	SamplesPath  string         `json:"samples_path,omitempty"`
	SourceSHA256 string         `json:"source_sha256,omitempty"`
	Digest       *digest.Result `json:"-"`
}
