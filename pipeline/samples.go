package pipeline

import (
	"encoding/csv"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"fitdigest/stream"
)

// sampleRow is the flat per-record row written to the samples table.
// Missing sensor values become NaN in parquet (with a paired valid flag)
// and empty cells in CSV.
type sampleRow struct {
	TSUTCISO   string  `parquet:"name=ts_utc_iso, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	ElapsedS   float64 `parquet:"name=elapsed_s, type=DOUBLE"`
	Lat        float64 `parquet:"name=lat, type=DOUBLE"`
	Lon        float64 `parquet:"name=lon, type=DOUBLE"`
	AltitudeM  float64 `parquet:"name=altitude_m, type=DOUBLE"`
	HRBPM      float64 `parquet:"name=hr_bpm, type=DOUBLE"`
	SpeedMPS   float64 `parquet:"name=speed_mps, type=DOUBLE"`
	CadenceRPM float64 `parquet:"name=cadence_rpm, type=DOUBLE"`
	DistanceM  float64 `parquet:"name=distance_m, type=DOUBLE"`
	ValidPos   bool    `parquet:"name=valid_position, type=BOOLEAN"`
	ValidHR    bool    `parquet:"name=valid_hr, type=BOOLEAN"`
	ValidSpeed bool    `parquet:"name=valid_speed, type=BOOLEAN"`
}

func writeSamplesParquet(path string, samples []stream.Sample) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	pw, err := writer.NewParquetWriter(fw, new(sampleRow), 4)
	if err != nil {
		_ = fw.Close()
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	start := startTime(samples)
	for _, s := range samples {
		row := sampleRow{
			TSUTCISO:   s.Timestamp.UTC().Format(time.RFC3339),
			ElapsedS:   s.Timestamp.Sub(start).Seconds(),
			Lat:        valueOrNaN(s.Lat),
			Lon:        valueOrNaN(s.Lon),
			AltitudeM:  valueOrNaN(s.AltitudeM),
			HRBPM:      valueOrNaN(s.HeartRate),
			SpeedMPS:   valueOrNaN(s.SpeedMPS),
			CadenceRPM: valueOrNaN(s.CadenceRPM),
			DistanceM:  valueOrNaN(s.DistanceM),
			ValidPos:   s.Lat != nil && s.Lon != nil,
			ValidHR:    s.HeartRate != nil,
			ValidSpeed: s.SpeedMPS != nil,
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return err
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}

func writeSamplesCSV(path string, samples []stream.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"ts_utc_iso", "elapsed_s", "lat", "lon", "altitude_m", "hr_bpm",
		"speed_mps", "cadence_rpm", "distance_m",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	start := startTime(samples)
	for _, s := range samples {
		row := []string{
			s.Timestamp.UTC().Format(time.RFC3339),
			formatFloat(s.Timestamp.Sub(start).Seconds()),
			formatFloatPtr(s.Lat),
			formatFloatPtr(s.Lon),
			formatFloatPtr(s.AltitudeM),
			formatFloatPtr(s.HeartRate),
			formatFloatPtr(s.SpeedMPS),
			formatFloatPtr(s.CadenceRPM),
			formatFloatPtr(s.DistanceM),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func startTime(samples []stream.Sample) time.Time {
	if len(samples) == 0 {
		return time.Time{}
	}
	return samples[0].Timestamp
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
