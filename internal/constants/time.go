package constants

const (
	// DateFormat is the calendar-date format every streak comparison is made in (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"
)
