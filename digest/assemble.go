package digest

import "fitdigest/stream"

// Build runs the full digest computation for one decoded activity:
// segmentation, per-lap aggregation, session summarization, and result
// assembly. It is a pure function of the source's samples, lap markers,
// and metadata; converting the same input twice yields identical results.
//
// An empty session (zero records or zero laps) assembles into a result
// with null aggregate statistics rather than an error.
func Build(src stream.Source) *Result {
	samples := src.Samples()
	markers := src.LapMarkers()
	meta := src.Meta()

	laps, warnings := SegmentLaps(samples, markers)
	for i := range laps {
		AggregateLap(&laps[i], markers[i])
	}

	// Counts and session totals always cover the full lap sequence;
	// only the detail list below is truncated.
	recordCount := 0
	for i := range laps {
		recordCount += laps[i].RecordCount
	}
	if len(laps) == 0 {
		recordCount = len(samples)
	}

	detail := laps
	if len(detail) > MaxDetailedLaps {
		detail = detail[:MaxDetailedLaps]
	}

	return &Result{
		Metadata: Metadata{
			FileType:     meta.FileType,
			Manufacturer: meta.Manufacturer,
			Product:      meta.Product,
			SerialNumber: meta.SerialNumber,
			TimeCreated:  meta.TimeCreated,
		},
		SessionSummary: SummarizeSession(laps, meta),
		LapSummary: LapSummaryBlock{
			Count:     len(laps),
			Laps:      detail,
			Aggregate: AggregateLaps(laps),
		},
		RecordCount: recordCount,
		EventsCount: src.EventsCount(),
		Warnings:    warnings,
	}
}
