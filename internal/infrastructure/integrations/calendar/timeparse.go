package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/doeshing/quack-go/internal/domain"
)

// dateOnly marks a value without a time of day, which becomes an all-day
// event.
const dateOnly = "2006-01-02"

var layouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02 3:04pm",
	"2006-01-02 3pm",
	"Jan 2 2006 15:04",
	"Jan 2, 2006 3:04pm",
}

// TimeParser turns user-typed times such as "2024-05-01 14:00" or
// "tomorrow at 3pm" into absolute times.
type TimeParser struct {
	loc *time.Location
	nl  *when.Parser
}

// NewTimeParser parses in loc; nil means the local zone.
func NewTimeParser(loc *time.Location) *TimeParser {
	if loc == nil {
		loc = time.Local
	}
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &TimeParser{loc: loc, nl: w}
}

// Parse resolves text relative to now. allDay is true for bare dates.
func (p *TimeParser) Parse(text string, now time.Time) (t time.Time, allDay bool, err error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false, fmt.Errorf("%w: time is empty", domain.ErrInvalidInput)
	}
	if t, err := time.ParseInLocation(dateOnly, text, p.loc); err == nil {
		return t, true, nil
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, text, p.loc); err == nil {
			return t, false, nil
		}
		// Lowercase so "3PM" matches the "pm" layouts.
		if t, err := time.ParseInLocation(layout, strings.ToLower(text), p.loc); err == nil {
			return t, false, nil
		}
	}
	r, err := p.nl.Parse(text, now.In(p.loc))
	if err != nil || r == nil {
		return time.Time{}, false, fmt.Errorf("%w: could not understand the time %q", domain.ErrInvalidInput, text)
	}
	return r.Time, false, nil
}
