package report

import (
	"fmt"
	"math"
	"strings"

	"fitdigest/digest"
)

// RenderMarkdown turns an assembled result into a compact, factual
// training summary. It only formats what the digest computed; missing
// values are omitted rather than rendered as zeros.
func RenderMarkdown(res *digest.Result) string {
	if res == nil {
		return ""
	}

	var b strings.Builder
	session := res.SessionSummary

	if session.StartTime != nil {
		start := *session.StartTime
		fmt.Fprintf(&b, "# Training from %s\n", start.Format("02.01.2006"))
		fmt.Fprintf(&b, "**Start time:** %s\n", start.Format("15:04:05"))
		fmt.Fprintf(&b, "**Weekday:** %s\n", start.Format("Monday"))
	} else {
		b.WriteString("# Training session\n")
	}

	if session.TotalTimerS != nil {
		fmt.Fprintf(&b, "**Total time:** %s (%.1f minutes)\n", FormatDuration(*session.TotalTimerS), *session.TotalTimerS/60.0)
	}
	if session.TotalElapsedS != nil && (session.TotalTimerS == nil || *session.TotalElapsedS != *session.TotalTimerS) {
		fmt.Fprintf(&b, "**Elapsed time:** %s\n", FormatDuration(*session.TotalElapsedS))
	}
	if session.TotalDurationS != nil && session.TotalTimerS == nil && session.TotalElapsedS == nil {
		fmt.Fprintf(&b, "**Total time:** %s\n", FormatDuration(*session.TotalDurationS))
	}
	if session.TotalDistanceM != nil {
		fmt.Fprintf(&b, "**Distance:** %.2f km\n", *session.TotalDistanceM/1000.0)
		if session.DistanceIncomplete {
			b.WriteString("**Distance note:** one or more intervals had no distance data; total undercounts\n")
		}
	}
	if session.AvgSpeedKmh != nil {
		fmt.Fprintf(&b, "**Average speed:** %.2f km/h\n", *session.AvgSpeedKmh)
	}
	if session.PaceMinPerKm != nil {
		fmt.Fprintf(&b, "**Average pace:** %s min/km\n", FormatPace(*session.PaceMinPerKm))
	}
	if session.MaxSpeedKmh != nil {
		fmt.Fprintf(&b, "**Maximum speed:** %.2f km/h\n", *session.MaxSpeedKmh)
	}
	if session.AvgHeartRate != nil {
		fmt.Fprintf(&b, "**Average heart rate:** %.0f bpm\n", *session.AvgHeartRate)
	}
	if session.MaxHeartRate != nil {
		fmt.Fprintf(&b, "**Maximum heart rate:** %.0f bpm\n", *session.MaxHeartRate)
	}
	if session.ElevationGainM != nil {
		fmt.Fprintf(&b, "**Total ascent:** %.0f m\n", *session.ElevationGainM)
	}
	if session.ElevationLossM != nil {
		fmt.Fprintf(&b, "**Total descent:** %.0f m\n", *session.ElevationLossM)
	}
	if session.TotalCaloriesKcal != nil {
		fmt.Fprintf(&b, "**Calories:** %.0f kcal\n", *session.TotalCaloriesKcal)
	}

	writeIntervals(&b, res)
	writeDevice(&b, res)

	if res.RecordCount > 0 {
		fmt.Fprintf(&b, "\n**Data points:** %d\n", res.RecordCount)
		if session.TotalDurationS != nil && res.RecordCount > 1 {
			fmt.Fprintf(&b, "**Recording interval:** approx. %.1f seconds\n", *session.TotalDurationS/float64(res.RecordCount))
		}
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(&b, "\n**Warning:** %s\n", w)
	}

	return strings.TrimSpace(b.String())
}

func writeIntervals(b *strings.Builder, res *digest.Result) {
	if res.LapSummary.Count == 0 {
		return
	}
	fmt.Fprintf(b, "\n## Intervals (%d intervals)\n", res.LapSummary.Count)

	agg := res.LapSummary.Aggregate
	if agg.AvgDurationS != nil {
		fmt.Fprintf(b, "**Average interval time:** %s\n", FormatDuration(*agg.AvgDurationS))
		fmt.Fprintf(b, "**Shortest interval:** %s\n", FormatDuration(*agg.MinDurationS))
		fmt.Fprintf(b, "**Longest interval:** %s\n", FormatDuration(*agg.MaxDurationS))
	}
	if agg.AvgDistanceM != nil {
		fmt.Fprintf(b, "**Average interval distance:** %.3f km\n", *agg.AvgDistanceM/1000.0)
	}
	if agg.AvgSpeedKmh != nil {
		fmt.Fprintf(b, "**Average interval speed:** %.2f km/h\n", *agg.AvgSpeedKmh)
		fmt.Fprintf(b, "**Slowest interval speed:** %.2f km/h\n", *agg.MinSpeedKmh)
		fmt.Fprintf(b, "**Fastest interval speed:** %.2f km/h\n", *agg.MaxSpeedKmh)
	}
	if agg.AvgPaceMinPerKm != nil {
		fmt.Fprintf(b, "**Average interval pace:** %s min/km\n", FormatPace(*agg.AvgPaceMinPerKm))
	}
	if agg.FastestPaceMinPerKm != nil {
		fmt.Fprintf(b, "**Fastest interval pace:** %s min/km\n", FormatPace(*agg.FastestPaceMinPerKm))
	}
	if agg.SlowestPaceMinPerKm != nil {
		fmt.Fprintf(b, "**Slowest interval pace:** %s min/km\n", FormatPace(*agg.SlowestPaceMinPerKm))
	}
	if agg.AvgHeartRate != nil {
		fmt.Fprintf(b, "**Average heart rate in intervals:** %.0f bpm\n", *agg.AvgHeartRate)
		fmt.Fprintf(b, "**Lowest interval heart rate:** %.0f bpm\n", *agg.MinHeartRate)
		fmt.Fprintf(b, "**Highest interval heart rate:** %.0f bpm\n", *agg.MaxHeartRate)
	}

	fmt.Fprintf(b, "\n### Individual intervals:\n")
	for _, lap := range res.LapSummary.Laps {
		line := fmt.Sprintf("**Interval %d:** %s", lap.Index+1, FormatDuration(lap.Stats.DurationS))
		if lap.Stats.DistanceM != nil {
			line += fmt.Sprintf(", %.2fkm", *lap.Stats.DistanceM/1000.0)
		}
		if lap.Stats.AvgSpeedKmh != nil {
			line += fmt.Sprintf(", %.1fkm/h", *lap.Stats.AvgSpeedKmh)
		}
		if lap.Stats.PaceMinPerKm != nil {
			line += fmt.Sprintf(" (%smin/km)", FormatPace(*lap.Stats.PaceMinPerKm))
		}
		if lap.Stats.AvgHeartRate != nil {
			line += fmt.Sprintf(", %.0fbpm", *lap.Stats.AvgHeartRate)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if res.LapSummary.Count > len(res.LapSummary.Laps) {
		fmt.Fprintf(b, "... and %d more intervals\n", res.LapSummary.Count-len(res.LapSummary.Laps))
	}
}

func writeDevice(b *strings.Builder, res *digest.Result) {
	meta := res.Metadata
	if meta.Manufacturer == "" {
		return
	}
	b.WriteString("\n## Device information\n")
	fmt.Fprintf(b, "**Manufacturer:** %s\n", meta.Manufacturer)
	if meta.Product != "" {
		fmt.Fprintf(b, "**Product:** %s\n", meta.Product)
	}
	if meta.SerialNumber != 0 {
		fmt.Fprintf(b, "**Serial number:** %d\n", meta.SerialNumber)
	}
}

// FormatPace renders decimal minutes per km as M:SS.
func FormatPace(minPerKm float64) string {
	totalSeconds := int(math.Round(minPerKm * 60.0))
	return fmt.Sprintf("%d:%02d", totalSeconds/60, totalSeconds%60)
}

// FormatDuration renders seconds as H:MM:SS, or M:SS under an hour.
func FormatDuration(seconds float64) string {
	s := int(math.Round(seconds))
	if s < 0 {
		s = 0
	}
	h := s / 3600
	m := (s % 3600) / 60
	sec := s % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}
