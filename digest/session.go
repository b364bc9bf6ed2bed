package digest

import "fitdigest/stream"

// SummarizeSession computes session-wide statistics from lap totals.
// Totals come from the full lap sequence, never from averaging per-lap
// averages: the overall average speed is total distance over total
// duration, and the overall average heart rate weights each lap's mean by
// its qualifying sample count so sample-rich laps dominate.
func SummarizeSession(laps []Lap, meta stream.Metadata) SessionSummary {
	summary := SessionSummary{
		Sport:         meta.Sport,
		SubSport:      meta.SubSport,
		StartTime:     meta.StartTime,
		TotalElapsedS: meta.TotalElapsedS,
		TotalTimerS:   meta.TotalTimerS,
	}
	if len(laps) == 0 {
		return summary
	}

	duration := laps[len(laps)-1].EndTime.Sub(laps[0].StartTime).Seconds()
	summary.TotalDurationS = floatPtr(duration)

	distance := 0.0
	haveDistance := false
	hrWeighted := 0.0
	hrSamples := 0
	calories := 0.0
	haveCalories := false
	gain := 0.0
	loss := 0.0
	haveElevation := false

	for _, lap := range laps {
		if lap.Stats.DistanceM != nil {
			distance += *lap.Stats.DistanceM
			haveDistance = true
		} else {
			// A lap without distance contributes zero; flag the sum so
			// callers know it undercounts.
			summary.DistanceIncomplete = true
		}
		if lap.Stats.AvgHeartRate != nil && lap.Stats.hrSamples > 0 {
			hrWeighted += *lap.Stats.AvgHeartRate * float64(lap.Stats.hrSamples)
			hrSamples += lap.Stats.hrSamples
		}
		if lap.Stats.MaxHeartRate != nil {
			summary.MaxHeartRate = maxPtr(summary.MaxHeartRate, *lap.Stats.MaxHeartRate)
		}
		if lap.Stats.MaxSpeedKmh != nil {
			summary.MaxSpeedKmh = maxPtr(summary.MaxSpeedKmh, *lap.Stats.MaxSpeedKmh)
		}
		if lap.Stats.CaloriesKcal != nil {
			calories += *lap.Stats.CaloriesKcal
			haveCalories = true
		}
		if lap.Stats.ElevationGainM != nil {
			gain += *lap.Stats.ElevationGainM
			haveElevation = true
		}
		if lap.Stats.ElevationLossM != nil {
			loss += *lap.Stats.ElevationLossM
			haveElevation = true
		}
	}

	if haveDistance {
		summary.TotalDistanceM = floatPtr(distance)
		if duration > 0 {
			speed := distance / 1000.0 / (duration / 3600.0)
			summary.AvgSpeedKmh = floatPtr(speed)
			summary.PaceMinPerKm = paceFromSpeed(summary.AvgSpeedKmh)
		}
	} else if len(laps) > 0 {
		summary.DistanceIncomplete = true
	}
	if hrSamples > 0 {
		summary.AvgHeartRate = floatPtr(hrWeighted / float64(hrSamples))
	}
	if haveCalories {
		summary.TotalCaloriesKcal = floatPtr(calories)
	}
	if haveElevation {
		summary.ElevationGainM = floatPtr(gain)
		summary.ElevationLossM = floatPtr(loss)
	}
	return summary
}

func maxPtr(current *float64, candidate float64) *float64 {
	if current == nil || candidate > *current {
		return floatPtr(candidate)
	}
	return current
}
