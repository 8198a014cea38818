package domain

// DailyPoint is one bucket of a per-day series.
type DailyPoint struct {
	Timestamp string
	Value     int
}
