package models

import "time"

// AttendanceEntry is one gym check-in. Entries are never edited.
type AttendanceEntry struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"` // ms since epoch
	GymID     string `json:"gymId"`
}

// Time converts the entry timestamp to a time.Time in loc.
func (e AttendanceEntry) Time(loc *time.Location) time.Time {
	return time.UnixMilli(e.Timestamp).In(loc)
}
