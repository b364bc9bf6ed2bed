package digest

import (
	"math"

	"fitdigest/stream"
)

const mpsToKmh = 3.6

// AggregateLap computes the statistics for one segmented lap. A record
// missing a sensor value is excluded from that metric's statistics, never
// treated as zero; a metric is nil exactly when no qualifying sample
// exists.
func AggregateLap(lap *Lap, marker stream.LapMarker) {
	stats := LapStats{
		DurationS: lap.EndTime.Sub(lap.StartTime).Seconds(),
	}

	speeds := make([]float64, 0, len(lap.Records))
	heartRates := make([]float64, 0, len(lap.Records))
	altitudes := make([]float64, 0, len(lap.Records))
	distances := make([]float64, 0, len(lap.Records))
	for _, rec := range lap.Records {
		if rec.SpeedMPS != nil {
			speeds = append(speeds, *rec.SpeedMPS*mpsToKmh)
		}
		if rec.HeartRate != nil {
			heartRates = append(heartRates, *rec.HeartRate)
		}
		if rec.AltitudeM != nil {
			altitudes = append(altitudes, *rec.AltitudeM)
		}
		if rec.DistanceM != nil {
			distances = append(distances, *rec.DistanceM)
		}
	}

	stats.AvgSpeedKmh, stats.MinSpeedKmh, stats.MaxSpeedKmh = avgMinMax(speeds)
	stats.PaceMinPerKm = paceFromSpeed(stats.AvgSpeedKmh)
	stats.AvgHeartRate, stats.MinHeartRate, stats.MaxHeartRate = avgMinMax(heartRates)
	stats.hrSamples = len(heartRates)

	// Cumulative distance: the lap covered last minus first. A single
	// sample gives no span, so it stays null.
	if len(distances) >= 2 {
		span := distances[len(distances)-1] - distances[0]
		if span >= 0 {
			stats.DistanceM = floatPtr(span)
		}
	}
	if stats.DistanceM == nil && marker.DeviceDistanceM != nil {
		stats.DistanceM = floatPtr(*marker.DeviceDistanceM)
	}

	stats.ElevationGainM, stats.ElevationLossM = elevationDeltas(altitudes)

	if marker.CaloriesKcal != nil {
		stats.CaloriesKcal = floatPtr(*marker.CaloriesKcal)
	}

	lap.Stats = stats
}

// AggregateLaps rolls per-lap statistics up across the whole lap
// sequence: duration spread, mean lap distance, and min/avg/max over the
// per-lap average speeds and heart rates, with the paces matching those
// speeds. Laps without a qualifying value are excluded per metric.
func AggregateLaps(laps []Lap) LapAggregate {
	var agg LapAggregate

	durations := make([]float64, 0, len(laps))
	distances := make([]float64, 0, len(laps))
	speeds := make([]float64, 0, len(laps))
	heartRates := make([]float64, 0, len(laps))
	for _, lap := range laps {
		if lap.Stats.DurationS > 0 {
			durations = append(durations, lap.Stats.DurationS)
		}
		if lap.Stats.DistanceM != nil {
			distances = append(distances, *lap.Stats.DistanceM)
		}
		if lap.Stats.AvgSpeedKmh != nil {
			speeds = append(speeds, *lap.Stats.AvgSpeedKmh)
		}
		if lap.Stats.AvgHeartRate != nil {
			heartRates = append(heartRates, *lap.Stats.AvgHeartRate)
		}
	}

	agg.AvgDurationS, agg.MinDurationS, agg.MaxDurationS = avgMinMax(durations)
	if avg, _, _ := avgMinMax(distances); avg != nil {
		agg.AvgDistanceM = avg
	}
	agg.AvgSpeedKmh, agg.MinSpeedKmh, agg.MaxSpeedKmh = avgMinMax(speeds)
	agg.AvgPaceMinPerKm = paceFromSpeed(agg.AvgSpeedKmh)
	agg.FastestPaceMinPerKm = paceFromSpeed(agg.MaxSpeedKmh)
	agg.SlowestPaceMinPerKm = paceFromSpeed(agg.MinSpeedKmh)
	agg.AvgHeartRate, agg.MinHeartRate, agg.MaxHeartRate = avgMinMax(heartRates)

	return agg
}

// paceFromSpeed converts km/h into decimal minutes per km. Pace is
// undefined for zero or missing speed; this never divides by zero.
func paceFromSpeed(speedKmh *float64) *float64 {
	if speedKmh == nil || *speedKmh <= 0 {
		return nil
	}
	return floatPtr(60.0 / *speedKmh)
}

func avgMinMax(values []float64) (avg, min, max *float64) {
	if len(values) == 0 {
		return nil, nil, nil
	}
	sum := 0.0
	lo := values[0]
	hi := values[0]
	for _, v := range values {
		sum += v
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return floatPtr(sum / float64(len(values))), floatPtr(lo), floatPtr(hi)
}

// elevationDeltas sums positive and negative altitude changes between
// consecutive valid samples. Fewer than two samples give no deltas.
func elevationDeltas(altitudes []float64) (gain, loss *float64) {
	if len(altitudes) < 2 {
		return nil, nil
	}
	up := 0.0
	down := 0.0
	for i := 1; i < len(altitudes); i++ {
		delta := altitudes[i] - altitudes[i-1]
		if delta > 0 {
			up += delta
		} else {
			down += math.Abs(delta)
		}
	}
	return floatPtr(up), floatPtr(down)
}

func floatPtr(v float64) *float64 {
	out := v
	return &out
}
