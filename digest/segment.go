package digest

import (
	"fmt"
	"sort"
	"time"

	"fitdigest/stream"
)

// SegmentLaps partitions samples into laps by timestamp containment
// against the device-reported markers. The number of laps always equals
// the number of markers; lap boundaries are the marker times, not the
// first/last record timestamps, so a lap may own zero records.
//
// Samples before the first marker or at/after the last marker's end are
// clipped to the first/last lap and counted as boundary mismatches in the
// returned warnings.
func SegmentLaps(samples []stream.Sample, markers []stream.LapMarker) ([]Lap, []string) {
	laps := make([]Lap, len(markers))
	for i, m := range markers {
		laps[i] = Lap{
			Index:     i,
			StartTime: m.StartTime,
			EndTime:   m.EndTime,
		}
	}

	var warnings []string
	if len(laps) == 0 {
		if len(samples) > 0 {
			warnings = append(warnings, fmt.Sprintf("no lap boundaries reported; %d records left unassigned", len(samples)))
		}
		return laps, warnings
	}

	mismatches := 0
	for _, s := range samples {
		idx, clipped := lapIndexFor(markers, s.Timestamp)
		if clipped {
			mismatches++
		}
		laps[idx].Records = append(laps[idx].Records, s)
	}
	for i := range laps {
		laps[i].RecordCount = len(laps[i].Records)
	}

	if mismatches > 0 {
		warnings = append(warnings, fmt.Sprintf("lap boundary mismatch: %d records outside reported lap boundaries were clipped to the nearest lap", mismatches))
	}
	return laps, warnings
}

// lapIndexFor finds the lap containing ts, or the nearest lap when ts
// falls outside every [start, end) window.
func lapIndexFor(markers []stream.LapMarker, ts time.Time) (int, bool) {
	if ts.Before(markers[0].StartTime) {
		return 0, true
	}
	last := len(markers) - 1
	if !ts.Before(markers[last].EndTime) {
		return last, true
	}

	// First lap whose end is after ts; containment then only needs the
	// start check, since markers are time-ordered.
	i := sort.Search(len(markers), func(i int) bool {
		return markers[i].EndTime.After(ts)
	})
	if i > last {
		return last, true
	}
	if ts.Before(markers[i].StartTime) {
		// Gap between laps: clip forward to the next lap.
		return i, true
	}
	return i, false
}
