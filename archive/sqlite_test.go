package archive

import (
	"path/filepath"
	"testing"
	"time"
)

func fptr(v float64) *float64 { return &v }

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordAndFetchConversion(t *testing.T) {
	db := openTestDB(t)

	start := time.Date(2026, 7, 4, 6, 0, 0, 0, time.UTC)
	in := &Conversion{
		Filename:       "morning_run.fit",
		SHA256:         "9a271f2a916b0b6ee6cecb2426f0b3206ef074578be55d9bc94f6f3fe3ab86aa",
		Status:         "success",
		StartTime:      &start,
		TotalDistanceM: fptr(10500),
		AvgSpeedKmh:    fptr(11.2),
		AvgHeartRate:   fptr(149),
		LapCount:       11,
		RecordCount:    3400,
		JSONPath:       "out/morning_run.json",
		MarkdownPath:   "out/morning_run.md",
	}
	if err := db.RecordConversion(in); err != nil {
		t.Fatalf("record: %v", err)
	}

	got, err := db.GetConversion("morning_run.fit")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != "success" || got.LapCount != 11 || got.RecordCount != 3400 {
		t.Fatalf("fetched conversion mismatch: %+v", got)
	}
	if got.SHA256 != in.SHA256 {
		t.Fatalf("sha256 = %q, want %q", got.SHA256, in.SHA256)
	}
	if got.StartTime == nil || !got.StartTime.Equal(start) {
		t.Fatalf("start time = %v, want %v", got.StartTime, start)
	}
	if got.TotalDistanceM == nil || *got.TotalDistanceM != 10500 {
		t.Fatalf("distance = %v, want 10500", got.TotalDistanceM)
	}
	if got.ConvertedAt.IsZero() {
		t.Fatal("converted_at not set")
	}
}

func TestRecordConversionUpserts(t *testing.T) {
	db := openTestDB(t)

	if err := db.RecordConversion(&Conversion{Filename: "run.fit", Status: "error", Error: "decode failed"}); err != nil {
		t.Fatalf("record error outcome: %v", err)
	}
	if err := db.RecordConversion(&Conversion{Filename: "run.fit", Status: "success", RecordCount: 100}); err != nil {
		t.Fatalf("record success outcome: %v", err)
	}

	got, err := db.GetConversion("run.fit")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != "success" || got.Error != "" || got.RecordCount != 100 {
		t.Fatalf("reconversion did not replace the row: %+v", got)
	}

	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 1 {
		t.Fatalf("total = %d, want 1 after upsert", stats.Total)
	}
}

func TestGetConversionMissing(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.GetConversion("nope.fit"); err == nil {
		t.Fatal("expected error for unknown filename")
	}
}

func TestRecentAndStats(t *testing.T) {
	db := openTestDB(t)

	base := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	files := []struct {
		name   string
		status string
	}{
		{"a.fit", "success"},
		{"b.fit", "error"},
		{"c.fit", "success"},
	}
	for i, f := range files {
		err := db.RecordConversion(&Conversion{
			Filename:    f.name,
			Status:      f.status,
			ConvertedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("record %s: %v", f.name, err)
		}
	}

	recent, err := db.Recent(2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("recent count = %d, want 2", len(recent))
	}
	if recent[0].Filename != "c.fit" || recent[1].Filename != "b.fit" {
		t.Fatalf("recent order wrong: %s, %s", recent[0].Filename, recent[1].Filename)
	}

	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 3 || stats.Succeeded != 2 || stats.Failed != 1 {
		t.Fatalf("stats = %+v, want 3/2/1", stats)
	}
}
