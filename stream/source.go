package stream

import (
	"errors"
	"time"
)

// ErrMalformedInput marks files the decoder could not turn into a valid
// record stream. Conversions wrap it so batch drivers can classify failures.
var ErrMalformedInput = errors.New("malformed fit input")

// Sample is one timestamped multi-sensor record. Nil pointers mean the
// device did not report that sensor for this sample; they are never zero.
type Sample struct {
	Timestamp  time.Time
	Lat        *float64 // degrees
	Lon        *float64 // degrees
	AltitudeM  *float64
	HeartRate  *float64 // bpm
	SpeedMPS   *float64
	CadenceRPM *float64
	DistanceM  *float64 // cumulative from session start
}

// LapMarker is one device-reported lap boundary. Start and end are the
// times the device recorded for the lap, independent of which samples
// actually fall inside it.
type LapMarker struct {
	StartTime       time.Time
	EndTime         time.Time
	DeviceDistanceM *float64
	DeviceDurationS *float64
	CaloriesKcal    *float64
}

// Metadata is device and session information passed through unchanged
// to the assembled result.
type Metadata struct {
	FileType      string
	Manufacturer  string
	Product       string
	SerialNumber  uint32
	TimeCreated   *time.Time
	Sport         string
	SubSport      string
	StartTime     *time.Time
	TotalElapsedS *float64
	TotalTimerS   *float64
}

// Source is the capability interface the digest core consumes. Any
// decoder that can provide ordered samples, ordered lap markers, session
// metadata, and an event count can be substituted for the FIT-backed one.
type Source interface {
	// Samples returns the finite record sequence ordered by
	// non-decreasing timestamp.
	Samples() []Sample

	// LapMarkers returns the device-reported lap boundaries ordered by
	// start time.
	LapMarkers() []LapMarker

	// Meta returns device and session metadata.
	Meta() Metadata

	// EventsCount returns the number of discrete device events
	// (lap/pause markers and similar).
	EventsCount() int
}
