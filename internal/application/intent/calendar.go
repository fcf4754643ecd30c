package intent

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/doeshing/quack-go/internal/domain"
)

// CalendarUsage is shown when /calendar arguments cannot be parsed.
const CalendarUsage = `Format: /calendar add "Event Title" "Start Time" ["End Time"] ["Description"] ["Location"]` +
	"\n        /calendar list [count]\n        /calendar setup"

var quotedArg = regexp.MustCompile(`"([^"]*)"`)

// eventFields names the quoted /calendar add arguments in order.
var eventFields = []string{"summary", "start", "end", "description", "location"}

// ParseCalendarCommand parses the arguments of /calendar. Quoted strings after
// "add" fill summary, start, end, description and location in that order; at
// least summary and start are required.
func ParseCalendarCommand(args string) (*domain.Intent, error) {
	args = strings.TrimSpace(args)
	sub, rest, _ := strings.Cut(args, " ")
	switch strings.ToLower(sub) {
	case "", "list", "upcoming":
		params := domain.Params{}
		if n, ok := (domain.Params{"n": rest}).Int("n"); ok && n > 0 {
			params["max_results"] = n
		}
		return domain.NewIntent(domain.DomainCalendar, domain.OpCalendarList, params), nil
	case "setup":
		return domain.NewIntent(domain.DomainCalendar, domain.OpCalendarSetup, nil), nil
	case "add":
		matches := quotedArg.FindAllStringSubmatch(rest, -1)
		if len(matches) < 2 {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, CalendarUsage)
		}
		params := domain.Params{}
		for i, m := range matches {
			if i >= len(eventFields) {
				break
			}
			params[eventFields[i]] = m[1]
		}
		in := domain.NewIntent(domain.DomainCalendar, domain.OpCalendarAdd, params)
		if !in.Parameters.Has("summary") || !in.Parameters.Has("start") {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, CalendarUsage)
		}
		return in, nil
	default:
		return nil, fmt.Errorf("%w: unknown calendar action %q\n%s", domain.ErrInvalidInput, sub, CalendarUsage)
	}
}
