package archive

import "time"

// Conversion is one recorded conversion attempt. Metric columns are
// nullable pointers so a failed or data-poor file stores NULL, not zero.
type Conversion struct {
	ID             int64      `json:"id"`
	Filename       string     `json:"filename"`
	SHA256         string     `json:"sha256,omitempty"`
	Status         string     `json:"status"` // "success" or "error"
	Error          string     `json:"error,omitempty"`
	StartTime      *time.Time `json:"start_time,omitempty"`
	TotalDistanceM *float64   `json:"total_distance_m,omitempty"`
	AvgSpeedKmh    *float64   `json:"avg_speed_kmh,omitempty"`
	AvgHeartRate   *float64   `json:"avg_heart_rate_bpm,omitempty"`
	LapCount       int        `json:"lap_count"`
	RecordCount    int        `json:"record_count"`
	JSONPath       string     `json:"json_path,omitempty"`
	MarkdownPath   string     `json:"markdown_path,omitempty"`
	ConvertedAt    time.Time  `json:"converted_at"`
}

// Stats summarizes the archive contents.
type Stats struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}
