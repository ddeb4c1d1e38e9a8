package attendance

import (
	"time"

	"github.com/claude/gymflow/internal/models"
)

// NoVisit is shown as the last visit when there are no check-ins.
const NoVisit = "—"

// Summary is the attendance card shown on the home and attendance screens.
type Summary struct {
	CheckInsThisMonth int    `json:"checkInsThisMonth"`
	LastVisit         string `json:"lastVisit"`
	StreakDays        int    `json:"streakDays"`
}

// Calendar describes one month grid with the visited days marked.
type Calendar struct {
	Month              string `json:"month"`
	Year               int    `json:"year"`
	DaysInMonth        int    `json:"daysInMonth"`
	FirstWeekdayOffset int    `json:"firstWeekdayOffset"` // Monday = 0
	VisitedDays        []int  `json:"visitedDays"`
}

type date struct {
	y int
	m time.Month
	d int
}

func dateOf(t time.Time) date {
	y, m, d := t.Date()
	return date{y, m, d}
}

func visitDates(entries []models.AttendanceEntry, loc *time.Location) map[date]bool {
	out := make(map[date]bool, len(entries))
	for _, e := range entries {
		out[dateOf(e.Time(loc))] = true
	}
	return out
}

// Streak counts consecutive local calendar days with a check-in, ending today.
// A day without a check-in ends the walk, so no visit today means 0.
func Streak(entries []models.AttendanceEntry, now time.Time) int {
	visited := visitDates(entries, now.Location())
	streak := 0
	for day := now; visited[dateOf(day)]; day = day.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

// CheckInsThisMonth counts check-ins in now's local year and month.
func CheckInsThisMonth(entries []models.AttendanceEntry, now time.Time) int {
	y, m, _ := now.Date()
	n := 0
	for _, e := range entries {
		ey, em, _ := e.Time(now.Location()).Date()
		if ey == y && em == m {
			n++
		}
	}
	return n
}

// LastVisit returns the entry with the latest timestamp.
func LastVisit(entries []models.AttendanceEntry) (models.AttendanceEntry, bool) {
	if len(entries) == 0 {
		return models.AttendanceEntry{}, false
	}
	last := entries[0]
	for _, e := range entries[1:] {
		if e.Timestamp > last.Timestamp {
			last = e
		}
	}
	return last, true
}

// FormatShortDate renders a visit date as "Jan 02".
func FormatShortDate(t time.Time) string {
	return t.Format("Jan 02")
}

// Summarize computes the attendance card in now's location.
func Summarize(entries []models.AttendanceEntry, now time.Time) Summary {
	s := Summary{
		CheckInsThisMonth: CheckInsThisMonth(entries, now),
		LastVisit:         NoVisit,
		StreakDays:        Streak(entries, now),
	}
	if last, ok := LastVisit(entries); ok {
		s.LastVisit = FormatShortDate(last.Time(now.Location()))
	}
	return s
}

// MonthCalendar builds the grid for now's month.
func MonthCalendar(entries []models.AttendanceEntry, now time.Time) Calendar {
	y, m, _ := now.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	days := first.AddDate(0, 1, -1).Day()

	visited := visitDates(entries, now.Location())
	c := Calendar{
		Month:              m.String(),
		Year:               y,
		DaysInMonth:        days,
		FirstWeekdayOffset: (int(first.Weekday()) + 6) % 7,
		VisitedDays:        []int{},
	}
	for d := 1; d <= days; d++ {
		if visited[date{y, m, d}] {
			c.VisitedDays = append(c.VisitedDays, d)
		}
	}
	return c
}
