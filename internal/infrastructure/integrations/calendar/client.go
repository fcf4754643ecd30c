// Package calendar implements ports.CalendarService over the Google Calendar
// v3 REST API with an OAuth access token.
package calendar

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/infrastructure/integrations/rest"
	"github.com/doeshing/quack-go/internal/ports"
)

// defaultDuration applies when an event has no end time.
const defaultDuration = time.Hour

// Client lists and creates events on one calendar.
type Client struct {
	api        *rest.Client
	calendarID string
	loc        *time.Location
	parser     *TimeParser
	now        func() time.Time
}

// New validates the settings and returns a client.
func New(settings domain.CalendarSettings, timeout time.Duration) (*Client, error) {
	if settings.AccessToken == "" {
		return nil, fmt.Errorf("%w: calendar access token is not configured", domain.ErrAuthMissing)
	}
	loc := time.Local
	if settings.TimeZone != "" {
		l, err := time.LoadLocation(settings.TimeZone)
		if err != nil {
			return nil, fmt.Errorf("%w: time zone %q: %v", domain.ErrInvalidInput, settings.TimeZone, err)
		}
		loc = l
	}
	apiURL := settings.APIURL
	if apiURL == "" {
		apiURL = domain.DefaultCalendarAPIURL
	}
	calendarID := settings.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}
	token := settings.AccessToken
	return &Client{
		api: rest.New("Google Calendar", apiURL, timeout, func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+token)
		}),
		calendarID: calendarID,
		loc:        loc,
		parser:     NewTimeParser(loc),
		now:        time.Now,
	}, nil
}

type eventTime struct {
	Date     string `json:"date,omitempty"`
	DateTime string `json:"dateTime,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

type eventPayload struct {
	ID          string    `json:"id,omitempty"`
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Start       eventTime `json:"start"`
	End         eventTime `json:"end"`
	HTMLLink    string    `json:"htmlLink,omitempty"`
}

func (p eventPayload) toDomain(loc *time.Location) domain.CalendarEvent {
	event := domain.CalendarEvent{
		ID:          p.ID,
		Summary:     p.Summary,
		Description: p.Description,
		Location:    p.Location,
		Link:        p.HTMLLink,
	}
	if p.Start.Date != "" {
		event.AllDay = true
		event.Start, _ = time.ParseInLocation(dateOnly, p.Start.Date, loc)
		event.End, _ = time.ParseInLocation(dateOnly, p.End.Date, loc)
		return event
	}
	if t, err := time.Parse(time.RFC3339, p.Start.DateTime); err == nil {
		event.Start = t.In(loc)
	}
	if t, err := time.Parse(time.RFC3339, p.End.DateTime); err == nil {
		event.End = t.In(loc)
	}
	return event
}

func (c *Client) eventsPath() string {
	return "/calendars/" + url.PathEscape(c.calendarID) + "/events"
}

// ListUpcoming returns up to limit events starting from now, soonest first.
func (c *Client) ListUpcoming(ctx context.Context, limit int) ([]domain.CalendarEvent, error) {
	if limit <= 0 {
		limit = domain.DefaultCalendarResults
	}
	query := url.Values{
		"timeMin":      {c.now().Format(time.RFC3339)},
		"maxResults":   {strconv.Itoa(limit)},
		"singleEvents": {"true"},
		"orderBy":      {"startTime"},
	}
	var resp struct {
		Items []eventPayload `json:"items"`
	}
	if err := c.api.JSON(ctx, http.MethodGet, c.eventsPath()+"?"+query.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	events := make([]domain.CalendarEvent, 0, len(resp.Items))
	for _, item := range resp.Items {
		events = append(events, item.toDomain(c.loc))
	}
	return events, nil
}

// AddEvent parses the draft's times and creates the event.
func (c *Client) AddEvent(ctx context.Context, draft domain.EventDraft) (domain.CalendarEvent, error) {
	payload, err := c.buildEvent(draft)
	if err != nil {
		return domain.CalendarEvent{}, err
	}
	var created eventPayload
	if err := c.api.JSON(ctx, http.MethodPost, c.eventsPath(), payload, &created); err != nil {
		return domain.CalendarEvent{}, err
	}
	return created.toDomain(c.loc), nil
}

func (c *Client) buildEvent(draft domain.EventDraft) (eventPayload, error) {
	if draft.Summary == "" {
		return eventPayload{}, fmt.Errorf("%w: event title is empty", domain.ErrInvalidInput)
	}
	now := c.now()
	start, allDay, err := c.parser.Parse(draft.Start, now)
	if err != nil {
		return eventPayload{}, err
	}
	payload := eventPayload{Summary: draft.Summary, Description: draft.Description, Location: draft.Location}

	if allDay {
		end := start.AddDate(0, 0, 1)
		if draft.End != "" {
			e, _, err := c.parser.Parse(draft.End, start)
			if err != nil {
				return eventPayload{}, err
			}
			// The API's all-day end date is exclusive.
			end = e.AddDate(0, 0, 1)
		}
		payload.Start = eventTime{Date: start.Format(dateOnly)}
		payload.End = eventTime{Date: end.Format(dateOnly)}
		return payload, nil
	}

	end := start.Add(defaultDuration)
	if draft.End != "" {
		end, _, err = c.parser.Parse(draft.End, start)
		if err != nil {
			return eventPayload{}, err
		}
	}
	if !end.After(start) {
		return eventPayload{}, fmt.Errorf("%w: the event ends before it starts", domain.ErrInvalidInput)
	}
	// RFC 3339 carries the offset; only a named zone is worth sending.
	zone := ""
	if c.loc != time.Local {
		zone = c.loc.String()
	}
	payload.Start = eventTime{DateTime: start.Format(time.RFC3339), TimeZone: zone}
	payload.End = eventTime{DateTime: end.Format(time.RFC3339), TimeZone: zone}
	return payload, nil
}

var _ ports.CalendarService = (*Client)(nil)
