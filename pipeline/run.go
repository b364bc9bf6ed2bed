package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fitdigest/digest"
	"fitdigest/report"
	"fitdigest/stream"
)

// Run converts one FIT file into its artifacts: a JSON digest, a
// Markdown report, and optionally a per-sample table. The digest itself
// is a pure computation; only the artifact writes touch the filesystem.
func Run(opts Options) (*FileResult, error) {
	if opts.FitPath == "" {
		return nil, fmt.Errorf("no input file given")
	}
	data, err := os.ReadFile(opts.FitPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", opts.FitPath, err)
	}
	src, err := stream.DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", opts.FitPath, err)
	}
	res := digest.Build(src)
	sum := sha256.Sum256(data)

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(opts.FitPath), filepath.Ext(opts.FitPath))
	out := &FileResult{Digest: res, SourceSHA256: hex.EncodeToString(sum[:])}

	out.JSONPath = filepath.Join(opts.OutDir, base+".json")
	if err := writeJSON(out.JSONPath, res, opts.Overwrite); err != nil {
		return nil, err
	}

	out.MarkdownPath = filepath.Join(opts.OutDir, base+".md")
	if err := writeFileChecked(out.MarkdownPath, []byte(report.RenderMarkdown(res)+"\n"), opts.Overwrite); err != nil {
		return nil, err
	}

	switch opts.SampleFormat {
	case "", "none":
	case "parquet":
		out.SamplesPath = filepath.Join(opts.OutDir, base+"_samples.parquet")
		if err := writeSamplesParquet(out.SamplesPath, src.Samples()); err != nil {
			return nil, err
		}
	case "csv":
		out.SamplesPath = filepath.Join(opts.OutDir, base+"_samples.csv")
		if err := writeSamplesCSV(out.SamplesPath, src.Samples()); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown sample format %q", opts.SampleFormat)
	}

	return out, nil
}

func writeJSON(path string, v any, overwrite bool) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	return writeFileChecked(path, append(data, '\n'), overwrite)
}

func writeFileChecked(path string, data []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("refusing to overwrite %s", path)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
