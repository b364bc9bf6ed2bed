package pipeline

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
)

// RunBatch converts every .fit file in opts.InputDir. Files are fully
// independent, so conversions run on a small worker pool; one file's
// failure never affects another's result. Outcomes come back in
// filename order regardless of completion order.
func RunBatch(opts BatchOptions) ([]Outcome, error) {
	matches, err := filepath.Glob(filepath.Join(opts.InputDir, "*.fit"))
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", opts.InputDir, err)
	}
	upper, err := filepath.Glob(filepath.Join(opts.InputDir, "*.FIT"))
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", opts.InputDir, err)
	}
	files := append(matches, upper...)
	sort.Strings(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("no .fit files in %s", opts.InputDir)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(files) {
		workers = len(files)
	}

	outcomes := make([]Outcome, len(files))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = convertOne(files[i], opts)
			}
		}()
	}
	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return outcomes, nil
}

func convertOne(path string, opts BatchOptions) Outcome {
	out := Outcome{File: filepath.Base(path)}
	res, err := Run(Options{
		FitPath:      path,
		OutDir:       opts.OutDir,
		SampleFormat: opts.SampleFormat,
		Overwrite:    true,
	})
	if err != nil {
		out.Status = "error"
		out.Error = err.Error()
		return out
	}
	out.Status = "success"
	out.JSONPath = res.JSONPath
	out.MarkdownPath = res.MarkdownPath
	out.SamplesPath = res.SamplesPath
	out.SourceSHA256 = res.SourceSHA256
	out.Digest = res.Digest
	return out
}
