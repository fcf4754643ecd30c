package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/ports"
)

const calendarSetupHint = "/calendar setup"

// CalendarHandler lists and creates calendar events.
type CalendarHandler struct {
	Connect  func() (ports.CalendarService, error)
	Settings ConfigUpdater
	Prompter ports.Prompter
	Renderer ports.Renderer
	Timeout  time.Duration
}

func (h *CalendarHandler) Handle(ctx context.Context, in *domain.Intent) (string, error) {
	if in.Operation == domain.OpCalendarSetup {
		return h.setup(ctx)
	}
	cal, err := h.Connect()
	if err != nil {
		return "", describe("Google Calendar", "connect", err, calendarSetupHint)
	}

	switch in.Operation {
	case domain.OpCalendarList:
		limit, ok := in.Parameters.Int("max_results")
		if !ok || limit <= 0 {
			limit = domain.DefaultCalendarResults
		}
		events, err := timed(ctx, h.Timeout, h.Renderer, "Fetching events...", func(ctx context.Context) ([]domain.CalendarEvent, error) {
			return cal.ListUpcoming(ctx, limit)
		})
		if err != nil {
			return "", describe("Google Calendar", "list events", err, calendarSetupHint)
		}
		return formatEvents(events), nil

	case domain.OpCalendarAdd:
		draft := domain.EventDraft{}
		draft.Summary, _ = in.Param("summary")
		draft.Start, _ = in.Param("start")
		draft.End, _ = in.Param("end")
		draft.Description, _ = in.Param("description")
		draft.Location, _ = in.Param("location")
		event, err := timed(ctx, h.Timeout, h.Renderer, "Creating event...", func(ctx context.Context) (domain.CalendarEvent, error) {
			return cal.AddEvent(ctx, draft)
		})
		if err != nil {
			return "", describe("Google Calendar", "add "+draft.Summary, err, calendarSetupHint)
		}
		msg := fmt.Sprintf("Added %q on %s", event.Summary, formatEventTime(event))
		if event.Link != "" {
			msg += "\n" + event.Link
		}
		return msg, nil
	}
	return "", unsupported(in)
}

func (h *CalendarHandler) setup(ctx context.Context) (string, error) {
	token, err := h.Prompter.AskSecret("Google Calendar OAuth access token")
	if err != nil {
		return "", err
	}
	calendarID, err := h.Prompter.Ask("Calendar ID (leave empty for primary)")
	if err != nil {
		return "", err
	}
	if token == "" {
		return "Calendar settings unchanged.", nil
	}
	if err := h.Settings.Update(ctx, func(c *domain.Config) error {
		c.Calendar.AccessToken = token
		c.Calendar.CalendarID = calendarID
		return nil
	}); err != nil {
		return "", fmt.Errorf("save calendar settings: %w", err)
	}
	return "Google Calendar configured.", nil
}

func formatEvents(events []domain.CalendarEvent) string {
	if len(events) == 0 {
		return "No upcoming events found."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Upcoming events (%d):\n", len(events))
	for _, e := range events {
		fmt.Fprintf(&b, "  %s  %s", formatEventTime(e), e.Summary)
		if e.Location != "" {
			fmt.Fprintf(&b, " @ %s", e.Location)
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func formatEventTime(e domain.CalendarEvent) string {
	if e.AllDay {
		return e.Start.Format("Mon Jan 2") + " (all day)"
	}
	return e.Start.Format("Mon Jan 2 15:04")
}
