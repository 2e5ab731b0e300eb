package availability

import "time"

// Default closing hours, local business time.
const (
	DefaultSundayClose = 18
	DefaultClose       = 20
)

// Window is one bookable start time offered by the scheduling system.
type Window struct {
	StartAt            time.Time `json:"start_at"`
	LocationID         string    `json:"location_id,omitempty"`
	TeamMemberID       string    `json:"team_member_id,omitempty"`
	ServiceVariationID string    `json:"service_variation_id,omitempty"`
	DurationMinutes    int       `json:"duration_minutes,omitempty"`
}

// ClosingRules holds the hour the business closes, per weekday class.
// Overrides, when set, win over Sunday and Default for that weekday.
// Opening bounds the earliest start per weekday; a missing day has no bound.
type ClosingRules struct {
	Sunday    int
	Default   int
	Overrides map[time.Weekday]int
	Opening   map[time.Weekday]int
}

// DefaultRules closes at 18:00 on Sundays and 20:00 otherwise.
func DefaultRules() ClosingRules {
	return ClosingRules{Sunday: DefaultSundayClose, Default: DefaultClose}
}

// ClosingHour returns the closing hour for the weekday.
func (r ClosingRules) ClosingHour(day time.Weekday) int {
	if hour, ok := r.Overrides[day]; ok {
		return hour
	}
	if day == time.Sunday {
		return r.Sunday
	}
	return r.Default
}

// OpeningHour returns the earliest start hour for the weekday, 0 when unbounded.
func (r ClosingRules) OpeningHour(day time.Weekday) int {
	return r.Opening[day]
}

// Filter keeps windows whose treatment of durationMinutes finishes by closing
// time on the same local day: end before the closing hour, or exactly on it.
// Windows starting before the opening hour are dropped too. Order is preserved and an empty result is valid.
func Filter(windows []Window, durationMinutes int, rules ClosingRules, loc *time.Location) []Window {
	if loc == nil {
		loc = time.UTC
	}
	if durationMinutes < 0 {
		durationMinutes = 0
	}
	length := time.Duration(durationMinutes) * time.Minute

	out := make([]Window, 0, len(windows))
	for _, w := range windows {
		if fits(w.StartAt.In(loc), length, rules) {
			out = append(out, w)
		}
	}
	return out
}

func fits(start time.Time, length time.Duration, rules ClosingRules) bool {
	if start.Hour() < rules.OpeningHour(start.Weekday()) {
		return false
	}
	end := start.Add(length)
	if !sameDay(start, end) {
		return false
	}
	closing := rules.ClosingHour(start.Weekday())
	hour, minute := end.Hour(), end.Minute()
	return hour < closing || (hour == closing && minute == 0)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DayBounds returns local midnight of day and of the following day.
func DayBounds(day time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := day.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// ParseDay parses a YYYY-MM-DD date in loc.
func ParseDay(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(time.DateOnly, value, loc)
}
