package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"fitdigest/archive"
	"fitdigest/pipeline"
)

func main() {
	// .env is optional; flags still win over environment values.
	_ = godotenv.Load()

	var (
		inputDir = flag.String("input", envOr("FITDIGEST_INPUT_DIR", ""), "Directory of .fit files to batch-convert")
		outDir   = flag.String("output", envOr("FITDIGEST_OUTPUT_DIR", "out"), "Output directory for artifacts")
		file     = flag.String("file", "", "Convert a single .fit file instead of a directory")
		format   = flag.String("format", "parquet", "Per-sample table format: parquet|csv|none")
		dbPath   = flag.String("db", envOr("FITDIGEST_DB_PATH", ""), "Optional sqlite archive of conversion outcomes")
		watch    = flag.String("watch", "", "Cron spec; re-run the batch on this schedule until interrupted")
		workers  = flag.Int("workers", 0, "Concurrent conversions in batch mode (0 = one per CPU)")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s --input dir --output dir [--format parquet|csv|none] [--db archive.db] [--watch '@hourly']\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(flag.CommandLine.Output(), "       %s --file run.fit --output dir\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if strings.TrimSpace(*file) == "" && strings.TrimSpace(*inputDir) == "" {
		flag.Usage()
		os.Exit(2)
	}

	var db *archive.DB
	if *dbPath != "" {
		var err error
		db, err = archive.Open(*dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "fitdigest: open archive: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	if *file != "" {
		if err := runSingle(*file, *outDir, *format, db); err != nil {
			fmt.Fprintf(os.Stderr, "fitdigest failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	batch := pipeline.BatchOptions{
		InputDir:     *inputDir,
		OutDir:       *outDir,
		SampleFormat: *format,
		Workers:      *workers,
	}

	if *watch != "" {
		runWatch(*watch, batch, db)
		return
	}

	failed, err := runBatch(batch, db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fitdigest failed: %v\n", err)
		os.Exit(1)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func runSingle(fitPath, outDir, format string, db *archive.DB) error {
	res, err := pipeline.Run(pipeline.Options{
		FitPath:      fitPath,
		OutDir:       outDir,
		SampleFormat: format,
		Overwrite:    true,
	})
	record(db, filepath.Base(fitPath), res, err)
	if err != nil {
		return err
	}
	fmt.Printf("fitdigest complete\n")
	fmt.Printf("digest:   %s\n", res.JSONPath)
	fmt.Printf("report:   %s\n", res.MarkdownPath)
	if res.SamplesPath != "" {
		fmt.Printf("samples:  %s\n", res.SamplesPath)
	}
	for _, w := range res.Digest.Warnings {
		fmt.Printf("warning:  %s\n", w)
	}
	return nil
}

func runBatch(opts pipeline.BatchOptions, db *archive.DB) (failed int, err error) {
	outcomes, err := pipeline.RunBatch(opts)
	if err != nil {
		return 0, err
	}
	for _, o := range outcomes {
		if o.Status == "success" {
			record(db, o.File, &pipeline.FileResult{
				JSONPath:     o.JSONPath,
				MarkdownPath: o.MarkdownPath,
				SamplesPath:  o.SamplesPath,
				SourceSHA256: o.SourceSHA256,
				Digest:       o.Digest,
			}, nil)
			fmt.Printf("ok    %s\n", o.File)
			continue
		}
		failed++
		record(db, o.File, nil, fmt.Errorf("%s", o.Error))
		fmt.Fprintf(os.Stderr, "fail  %s: %s\n", o.File, o.Error)
	}
	fmt.Printf("%d converted, %d failed\n", len(outcomes)-failed, failed)
	return failed, nil
}

func runWatch(spec string, opts pipeline.BatchOptions, db *archive.DB) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if _, err := runBatch(opts, db); err != nil {
			fmt.Fprintf(os.Stderr, "fitdigest: scheduled run: %v\n", err)
		}
	}); err != nil {
		fmt.Fprintf(os.Stderr, "fitdigest: bad --watch spec %q: %v\n", spec, err)
		os.Exit(2)
	}

	// Run once up front so the first results do not wait a full interval.
	if _, err := runBatch(opts, db); err != nil {
		fmt.Fprintf(os.Stderr, "fitdigest: initial run: %v\n", err)
	}

	c.Start()
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	<-shutdown
	<-c.Stop().Done()
}

// record archives one outcome when an archive is configured.
func record(db *archive.DB, filename string, res *pipeline.FileResult, runErr error) {
	if db == nil {
		return
	}
	conv := &archive.Conversion{Filename: filename}
	if runErr != nil {
		conv.Status = "error"
		conv.Error = runErr.Error()
	} else {
		conv.Status = "success"
		conv.SHA256 = res.SourceSHA256
		conv.JSONPath = res.JSONPath
		conv.MarkdownPath = res.MarkdownPath
		d := res.Digest
		conv.StartTime = d.SessionSummary.StartTime
		conv.TotalDistanceM = d.SessionSummary.TotalDistanceM
		conv.AvgSpeedKmh = d.SessionSummary.AvgSpeedKmh
		conv.AvgHeartRate = d.SessionSummary.AvgHeartRate
		conv.LapCount = d.LapSummary.Count
		conv.RecordCount = d.RecordCount
	}
	if err := db.RecordConversion(conv); err != nil {
		fmt.Fprintf(os.Stderr, "fitdigest: archive %s: %v\n", filename, err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
