package digest

import (
	"time"

	"fitdigest/stream"
)

// MaxDetailedLaps bounds the number of laps carried with full statistics
// in the assembled result. The total lap count is never truncated.
const MaxDetailedLaps = 10

// Metadata mirrors the device metadata pass-through in the result.
type Metadata struct {
	FileType     string     `json:"file_type"`
	Manufacturer string     `json:"manufacturer"`
	Product      string     `json:"product"`
	SerialNumber uint32     `json:"serial_number"`
	TimeCreated  *time.Time `json:"time_created"`
}

// LapStats holds the per-lap aggregate statistics. A nil field means the
// lap had zero qualifying samples for that metric.
type LapStats struct {
	DurationS      float64  `json:"duration_s"`
	DistanceM      *float64 `json:"distance_m"`
	AvgSpeedKmh    *float64 `json:"avg_speed_kmh"`
	MinSpeedKmh    *float64 `json:"min_speed_kmh"`
	MaxSpeedKmh    *float64 `json:"max_speed_kmh"`
	PaceMinPerKm   *float64 `json:"pace_min_per_km"`
	AvgHeartRate   *float64 `json:"avg_heart_rate_bpm"`
	MinHeartRate   *float64 `json:"min_heart_rate_bpm"`
	MaxHeartRate   *float64 `json:"max_heart_rate_bpm"`
	ElevationGainM *float64 `json:"elevation_gain_m"`
	ElevationLossM *float64 `json:"elevation_loss_m"`
	CaloriesKcal   *float64 `json:"calories_kcal"`

	hrSamples int
}

// Lap is one device-marked interval together with the records it owns and
// its computed statistics. Records are partitioned across laps, never
// shared; the slice is not serialized.
type Lap struct {
	Index       int             `json:"index"`
	StartTime   time.Time       `json:"start_time"`
	EndTime     time.Time       `json:"end_time"`
	RecordCount int             `json:"record_count"`
	Stats       LapStats        `json:"stats"`
	Records     []stream.Sample `json:"-"`
}

// SessionSummary holds session-wide statistics computed from lap totals.
type SessionSummary struct {
	Sport              string     `json:"sport,omitempty"`
	SubSport           string     `json:"sub_sport,omitempty"`
	StartTime          *time.Time `json:"start_time"`
	TotalElapsedS      *float64   `json:"total_elapsed_time_s"`
	TotalTimerS        *float64   `json:"total_timer_time_s"`
	TotalDurationS     *float64   `json:"total_duration_s"`
	TotalDistanceM     *float64   `json:"total_distance_m"`
	DistanceIncomplete bool       `json:"distance_incomplete,omitempty"`
	AvgSpeedKmh        *float64   `json:"avg_speed_kmh"`
	MaxSpeedKmh        *float64   `json:"max_speed_kmh"`
	AvgHeartRate       *float64   `json:"avg_heart_rate_bpm"`
	MaxHeartRate       *float64   `json:"max_heart_rate_bpm"`
	ElevationGainM     *float64   `json:"elevation_gain_m"`
	ElevationLossM     *float64   `json:"elevation_loss_m"`
	TotalCaloriesKcal  *float64   `json:"total_calories_kcal"`
	PaceMinPerKm       *float64   `json:"pace_min_per_km"`
}

// LapAggregate holds statistics across laps: duration spread, mean lap
// distance, and the spread of per-lap average speeds and heart rates.
// Unlike the session summary these are lap-level means, so a short fast
// interval weighs the same as a long slow one.
type LapAggregate struct {
	AvgDurationS        *float64
	MinDurationS        *float64
	MaxDurationS        *float64
	AvgDistanceM        *float64
	AvgSpeedKmh         *float64
	MinSpeedKmh         *float64
	MaxSpeedKmh         *float64
	AvgPaceMinPerKm     *float64
	FastestPaceMinPerKm *float64
	SlowestPaceMinPerKm *float64
	AvgHeartRate        *float64
	MinHeartRate        *float64
	MaxHeartRate        *float64
}

// LapSummaryBlock carries the true lap count plus detailed statistics for
// the first MaxDetailedLaps laps only. Aggregate always covers the full
// lap sequence; it feeds the rendered report, not the JSON artifact.
type LapSummaryBlock struct {
	Count     int          `json:"count"`
	Laps      []Lap        `json:"laps"`
	Aggregate LapAggregate `json:"-"`
}

// Result is the assembled output consumed by the rendering layer. Its
// shape is stable; unavailable data appears as explicit nulls.
type Result struct {
	Metadata       Metadata        `json:"metadata"`
	SessionSummary SessionSummary  `json:"session_summary"`
	LapSummary     LapSummaryBlock `json:"lap_summary"`
	RecordCount    int             `json:"record_count"`
	EventsCount    int             `json:"events_count"`
	Warnings       []string        `json:"warnings,omitempty"`
}
