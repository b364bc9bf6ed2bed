package digest

import (
	"math"
	"testing"
	"time"

	"fitdigest/stream"
)

func fptr(v float64) *float64 { return &v }

func lapWithRecords(records []stream.Sample, durationSeconds int) Lap {
	return Lap{
		StartTime:   segBase,
		EndTime:     segBase.Add(time.Duration(durationSeconds) * time.Second),
		Records:     records,
		RecordCount: len(records),
	}
}

func TestAggregateLapHeartRateExcludesMissingSamples(t *testing.T) {
	lap := lapWithRecords([]stream.Sample{
		{Timestamp: segBase, HeartRate: fptr(140)},
		{Timestamp: segBase.Add(time.Second)}, // no HR sample
		{Timestamp: segBase.Add(2 * time.Second), HeartRate: fptr(160)},
	}, 60)

	AggregateLap(&lap, stream.LapMarker{})

	if lap.Stats.AvgHeartRate == nil || *lap.Stats.AvgHeartRate != 150 {
		t.Fatalf("avg HR = %v, want 150", lap.Stats.AvgHeartRate)
	}
	if *lap.Stats.MinHeartRate != 140 || *lap.Stats.MaxHeartRate != 160 {
		t.Fatalf("min/max HR = %v/%v, want 140/160", *lap.Stats.MinHeartRate, *lap.Stats.MaxHeartRate)
	}
}

func TestAggregateLapSpeedAndPace(t *testing.T) {
	// 10 km/h constant: 2.7778 m/s.
	mps := 10.0 / 3.6
	lap := lapWithRecords([]stream.Sample{
		{Timestamp: segBase, SpeedMPS: fptr(mps)},
		{Timestamp: segBase.Add(time.Second), SpeedMPS: fptr(mps)},
	}, 60)

	AggregateLap(&lap, stream.LapMarker{})

	for name, v := range map[string]*float64{
		"avg": lap.Stats.AvgSpeedKmh,
		"min": lap.Stats.MinSpeedKmh,
		"max": lap.Stats.MaxSpeedKmh,
	} {
		if v == nil || math.Abs(*v-10.0) > 1e-9 {
			t.Fatalf("%s speed = %v, want 10", name, v)
		}
	}
	if lap.Stats.PaceMinPerKm == nil {
		t.Fatal("pace missing")
	}
	if product := *lap.Stats.PaceMinPerKm * *lap.Stats.AvgSpeedKmh; math.Abs(product-60.0) > 1e-9 {
		t.Fatalf("pace*speed = %v, want 60", product)
	}
}

func TestAggregateLapMinAvgMaxOrdering(t *testing.T) {
	lap := lapWithRecords([]stream.Sample{
		{Timestamp: segBase, SpeedMPS: fptr(2.0), HeartRate: fptr(120)},
		{Timestamp: segBase.Add(time.Second), SpeedMPS: fptr(3.5), HeartRate: fptr(155)},
		{Timestamp: segBase.Add(2 * time.Second), SpeedMPS: fptr(2.8), HeartRate: fptr(148)},
	}, 30)

	AggregateLap(&lap, stream.LapMarker{})

	s := lap.Stats
	if !(*s.MinSpeedKmh <= *s.AvgSpeedKmh && *s.AvgSpeedKmh <= *s.MaxSpeedKmh) {
		t.Fatalf("speed min/avg/max out of order: %v/%v/%v", *s.MinSpeedKmh, *s.AvgSpeedKmh, *s.MaxSpeedKmh)
	}
	if !(*s.MinHeartRate <= *s.AvgHeartRate && *s.AvgHeartRate <= *s.MaxHeartRate) {
		t.Fatalf("HR min/avg/max out of order: %v/%v/%v", *s.MinHeartRate, *s.AvgHeartRate, *s.MaxHeartRate)
	}
}

func TestAggregateLapPaceUndefinedForZeroSpeed(t *testing.T) {
	lap := lapWithRecords([]stream.Sample{
		{Timestamp: segBase, SpeedMPS: fptr(0)},
	}, 60)

	AggregateLap(&lap, stream.LapMarker{})

	if lap.Stats.PaceMinPerKm != nil {
		t.Fatalf("pace = %v, want nil for zero speed", *lap.Stats.PaceMinPerKm)
	}
}

func TestAggregateLapNullMetricsWithoutSamples(t *testing.T) {
	lap := lapWithRecords(nil, 60)

	AggregateLap(&lap, stream.LapMarker{})

	s := lap.Stats
	if s.DurationS != 60 {
		t.Fatalf("duration = %v, want 60", s.DurationS)
	}
	for name, v := range map[string]*float64{
		"distance": s.DistanceM, "avg speed": s.AvgSpeedKmh, "pace": s.PaceMinPerKm,
		"avg hr": s.AvgHeartRate, "gain": s.ElevationGainM, "loss": s.ElevationLossM,
		"calories": s.CaloriesKcal,
	} {
		if v != nil {
			t.Errorf("%s = %v, want nil for empty lap", name, *v)
		}
	}
}

func TestAggregateLapDistanceFromCumulativeSamples(t *testing.T) {
	lap := lapWithRecords([]stream.Sample{
		{Timestamp: segBase, DistanceM: fptr(1000)},
		{Timestamp: segBase.Add(time.Second)},
		{Timestamp: segBase.Add(2 * time.Second), DistanceM: fptr(1450)},
	}, 60)

	AggregateLap(&lap, stream.LapMarker{})

	if lap.Stats.DistanceM == nil || *lap.Stats.DistanceM != 450 {
		t.Fatalf("distance = %v, want 450", lap.Stats.DistanceM)
	}
}

func TestAggregateLapDistanceFallsBackToMarker(t *testing.T) {
	// One cumulative sample gives no span; the device total fills in.
	lap := lapWithRecords([]stream.Sample{
		{Timestamp: segBase, DistanceM: fptr(1000)},
	}, 60)

	AggregateLap(&lap, stream.LapMarker{DeviceDistanceM: fptr(500)})

	if lap.Stats.DistanceM == nil || *lap.Stats.DistanceM != 500 {
		t.Fatalf("distance = %v, want marker fallback 500", lap.Stats.DistanceM)
	}
}

func TestAggregateLapElevation(t *testing.T) {
	lap := lapWithRecords([]stream.Sample{
		{Timestamp: segBase, AltitudeM: fptr(100)},
		{Timestamp: segBase.Add(time.Second), AltitudeM: fptr(112)},
		{Timestamp: segBase.Add(2 * time.Second), AltitudeM: fptr(105)},
		{Timestamp: segBase.Add(3 * time.Second), AltitudeM: fptr(110)},
	}, 60)

	AggregateLap(&lap, stream.LapMarker{})

	if lap.Stats.ElevationGainM == nil || *lap.Stats.ElevationGainM != 17 {
		t.Fatalf("gain = %v, want 17", lap.Stats.ElevationGainM)
	}
	if lap.Stats.ElevationLossM == nil || *lap.Stats.ElevationLossM != 7 {
		t.Fatalf("loss = %v, want 7", lap.Stats.ElevationLossM)
	}
}

func TestAggregateLapsRollsUpLapStats(t *testing.T) {
	laps := []Lap{
		{Stats: LapStats{DurationS: 100, DistanceM: fptr(1000), AvgSpeedKmh: fptr(8), AvgHeartRate: fptr(140)}},
		{Stats: LapStats{DurationS: 200, AvgSpeedKmh: fptr(12)}},
		{Stats: LapStats{DurationS: 300, DistanceM: fptr(2000), AvgHeartRate: fptr(160)}},
	}

	agg := AggregateLaps(laps)

	if *agg.AvgDurationS != 200 || *agg.MinDurationS != 100 || *agg.MaxDurationS != 300 {
		t.Fatalf("duration spread = %v/%v/%v, want 200/100/300", *agg.AvgDurationS, *agg.MinDurationS, *agg.MaxDurationS)
	}
	if agg.AvgDistanceM == nil || *agg.AvgDistanceM != 1500 {
		t.Fatalf("avg distance = %v, want 1500 over laps with distance", agg.AvgDistanceM)
	}
	if *agg.AvgSpeedKmh != 10 || *agg.MinSpeedKmh != 8 || *agg.MaxSpeedKmh != 12 {
		t.Fatalf("speed spread = %v/%v/%v, want 10/8/12", *agg.AvgSpeedKmh, *agg.MinSpeedKmh, *agg.MaxSpeedKmh)
	}
	if math.Abs(*agg.AvgPaceMinPerKm-6.0) > 1e-9 {
		t.Fatalf("avg pace = %v, want 6.0", *agg.AvgPaceMinPerKm)
	}
	if math.Abs(*agg.FastestPaceMinPerKm-5.0) > 1e-9 || math.Abs(*agg.SlowestPaceMinPerKm-7.5) > 1e-9 {
		t.Fatalf("pace spread = %v/%v, want 5.0/7.5", *agg.FastestPaceMinPerKm, *agg.SlowestPaceMinPerKm)
	}
	if *agg.AvgHeartRate != 150 || *agg.MinHeartRate != 140 || *agg.MaxHeartRate != 160 {
		t.Fatalf("HR spread = %v/%v/%v, want 150/140/160", *agg.AvgHeartRate, *agg.MinHeartRate, *agg.MaxHeartRate)
	}
}

func TestAggregateLapsEmpty(t *testing.T) {
	agg := AggregateLaps(nil)
	if agg.AvgDurationS != nil || agg.AvgDistanceM != nil || agg.AvgSpeedKmh != nil || agg.AvgHeartRate != nil {
		t.Fatalf("aggregate over no laps must be all nil: %+v", agg)
	}
}

func TestAggregateLapCaloriesPassThrough(t *testing.T) {
	lap := lapWithRecords(nil, 60)
	AggregateLap(&lap, stream.LapMarker{CaloriesKcal: fptr(42)})
	if lap.Stats.CaloriesKcal == nil || *lap.Stats.CaloriesKcal != 42 {
		t.Fatalf("calories = %v, want 42", lap.Stats.CaloriesKcal)
	}
}
