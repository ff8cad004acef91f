// Package visit counts how many distinct days a client has come back to the site.
//
// The count is kept per session in a small key/value store under two string
// keys, visits and last_visit. HandleVisit decides the new state; Tracker
// loads and saves it around that decision.
package visit

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Session keys written by the tracker.
const (
	KeyVisits    = "visits"
	KeyLastVisit = "last_visit"
)

// TimeLayout is the textual form of last_visit in the session store.
const TimeLayout = "2006-01-02 15:04:05"

const day = 24 * time.Hour

// ErrMalformedSessionState is returned when a stored value cannot be parsed.
var ErrMalformedSessionState = errors.New("visit: malformed session state")

// SessionState is the visit count and last counted visit for one client.
type SessionState struct {
	Count     int
	LastVisit time.Time
}

// HandleVisit returns the visit count to display and the state to persist.
// A nil prior means the client has no stored state yet.
//
// The count goes up by one when at least one whole day (24h) has passed since
// LastVisit, no matter how many. Otherwise the prior state is returned as is,
// LastVisit included.
func HandleVisit(prior *SessionState, now time.Time) (int, SessionState) {
	now = now.Truncate(time.Second)
	if prior == nil {
		return 1, SessionState{Count: 1, LastVisit: now}
	}
	if DaysBetween(prior.LastVisit, now) > 0 {
		next := SessionState{Count: prior.Count + 1, LastVisit: now}
		return next.Count, next
	}
	return prior.Count, *prior
}

// DaysBetween returns the number of whole days from last to now, rounded
// toward zero. A last in the future yields zero or less.
func DaysBetween(last, now time.Time) int {
	return int(now.Sub(last) / day)
}

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// ParseTime parses a stored last_visit value in loc. Anything past the
// seconds field (fractions, zone offsets) is dropped before parsing.
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	if len(s) > len(TimeLayout) {
		s = s[:len(TimeLayout)]
	}
	t, err := time.ParseInLocation(TimeLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: last_visit %q", ErrMalformedSessionState, s)
	}
	return t, nil
}

// FormatState returns the stored string forms of s.
func FormatState(s SessionState) (visits, lastVisit string) {
	return strconv.Itoa(s.Count), FormatTime(s.LastVisit)
}

// ParseState rebuilds a SessionState from its stored string forms.
func ParseState(visits, lastVisit string, loc *time.Location) (SessionState, error) {
	n, err := strconv.Atoi(visits)
	if err != nil || n < 1 {
		return SessionState{}, fmt.Errorf("%w: visits %q", ErrMalformedSessionState, visits)
	}
	t, err := ParseTime(lastVisit, loc)
	if err != nil {
		return SessionState{}, err
	}
	return SessionState{Count: n, LastVisit: t}, nil
}
