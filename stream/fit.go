package stream

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"github.com/tormoder/fit"
)

// FITSource adapts a decoded FIT activity file to the Source interface.
type FITSource struct {
	samples []Sample
	markers []LapMarker
	meta    Metadata
	events  int
}

var _ Source = (*FITSource)(nil)

// DecodeFile reads and decodes a FIT activity file.
func DecodeFile(path string) (*FITSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fit file: %w", err)
	}
	return DecodeBytes(data)
}

// DecodeBytes decodes raw FIT bytes. Decode failures wrap ErrMalformedInput.
func DecodeBytes(data []byte) (*FITSource, error) {
	decoded, err := fit.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	src := &FITSource{
		samples: buildSamples(activity.Records),
		markers: buildMarkers(activity.Laps),
		meta:    buildMetadata(decoded, activity),
		events:  len(activity.Events),
	}
	return src, nil
}

func (s *FITSource) Samples() []Sample       { return s.samples }
func (s *FITSource) LapMarkers() []LapMarker { return s.markers }
func (s *FITSource) Meta() Metadata          { return s.meta }
func (s *FITSource) EventsCount() int        { return s.events }

func buildSamples(records []*fit.RecordMsg) []Sample {
	samples := make([]Sample, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		ts := validTimeOrZero(rec.Timestamp)
		if ts.IsZero() {
			continue
		}
		s := Sample{Timestamp: ts}
		if lat := rec.PositionLat.Degrees(); isFinite(lat) {
			s.Lat = floatPtr(lat)
		}
		if lon := rec.PositionLong.Degrees(); isFinite(lon) {
			s.Lon = floatPtr(lon)
		}
		if alt := rec.GetAltitudeScaled(); isFinite(alt) {
			s.AltitudeM = floatPtr(alt)
		}
		if rec.HeartRate != math.MaxUint8 {
			s.HeartRate = floatPtr(float64(rec.HeartRate))
		}
		if rec.Cadence != math.MaxUint8 {
			s.CadenceRPM = floatPtr(float64(rec.Cadence))
		}
		if speed, ok := extractSpeed(rec); ok {
			s.SpeedMPS = floatPtr(speed)
		}
		if dist := rec.GetDistanceScaled(); isFinite(dist) && dist >= 0 {
			s.DistanceM = floatPtr(dist)
		}
		samples = append(samples, s)
	}

	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Timestamp.Before(samples[j].Timestamp)
	})
	return samples
}

func buildMarkers(laps []*fit.LapMsg) []LapMarker {
	markers := make([]LapMarker, 0, len(laps))
	for _, lap := range laps {
		if lap == nil {
			continue
		}
		start := validTimeOrZero(lap.StartTime)
		end := validTimeOrZero(lap.Timestamp)

		duration := lap.GetTotalTimerTimeScaled()
		if !isFinite(duration) || duration <= 0 {
			duration = lap.GetTotalElapsedTimeScaled()
		}

		// Devices occasionally omit one of the two boundary times;
		// reconstruct it from the reported duration when possible.
		if end.IsZero() && !start.IsZero() && isFinite(duration) && duration > 0 {
			end = start.Add(time.Duration(duration * float64(time.Second)))
		}
		if start.IsZero() && !end.IsZero() && isFinite(duration) && duration > 0 {
			start = end.Add(-time.Duration(duration * float64(time.Second)))
		}
		if start.IsZero() || end.IsZero() {
			continue
		}
		if end.Before(start) {
			end = start
		}

		m := LapMarker{StartTime: start, EndTime: end}
		if isFinite(duration) && duration > 0 {
			m.DeviceDurationS = floatPtr(duration)
		}
		if dist := lap.GetTotalDistanceScaled(); isFinite(dist) && dist > 0 {
			m.DeviceDistanceM = floatPtr(dist)
		}
		if lap.TotalCalories != math.MaxUint16 {
			m.CaloriesKcal = floatPtr(float64(lap.TotalCalories))
		}
		markers = append(markers, m)
	}

	sort.SliceStable(markers, func(i, j int) bool {
		return markers[i].StartTime.Before(markers[j].StartTime)
	})
	return markers
}

func buildMetadata(decoded *fit.File, activity *fit.ActivityFile) Metadata {
	id := decoded.FileId
	meta := Metadata{
		FileType:     fmt.Sprint(id.Type),
		Manufacturer: fmt.Sprint(id.Manufacturer),
		Product:      fmt.Sprint(id.GetProduct()),
		SerialNumber: id.SerialNumber,
	}
	if created := validTimeOrZero(id.TimeCreated); !created.IsZero() {
		meta.TimeCreated = &created
	}

	if len(activity.Sessions) == 0 {
		return meta
	}
	session := activity.Sessions[0]
	meta.Sport = fmt.Sprint(session.Sport)
	meta.SubSport = fmt.Sprint(session.SubSport)
	if start := validTimeOrZero(session.StartTime); !start.IsZero() {
		meta.StartTime = &start
	}
	if elapsed := session.GetTotalElapsedTimeScaled(); isFinite(elapsed) && elapsed > 0 {
		meta.TotalElapsedS = floatPtr(elapsed)
	}
	if timer := session.GetTotalTimerTimeScaled(); isFinite(timer) && timer > 0 {
		meta.TotalTimerS = floatPtr(timer)
	}
	return meta
}

func extractSpeed(rec *fit.RecordMsg) (float64, bool) {
	speed := rec.GetEnhancedSpeedScaled()
	if isFinite(speed) && speed >= 0 {
		return speed, true
	}
	speed = rec.GetSpeedScaled()
	if isFinite(speed) && speed >= 0 {
		return speed, true
	}
	return 0, false
}

func validTimeOrZero(t time.Time) time.Time {
	if t.IsZero() || fit.IsBaseTime(t) {
		return time.Time{}
	}
	return t
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func floatPtr(v float64) *float64 {
	out := v
	return &out
}
