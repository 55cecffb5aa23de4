// Package gcal creates events on a Google Calendar. Insert-only: no conflict
// detection, recurrence or cancellation.
package gcal

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const DefaultDurationMinutes = 60

type Client struct {
	svc        *calendar.Service
	calendarID string
	loc        *time.Location
}

type EventResult struct {
	Status  string
	Message string
	Link    string
}

func New(ctx context.Context, httpClient *http.Client, calendarID string, loc *time.Location) (*Client, error) {
	calendarID = strings.TrimSpace(calendarID)
	if calendarID == "" {
		return nil, fmt.Errorf("missing calendar.id")
	}
	if loc == nil {
		loc = time.Local
	}
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return &Client{svc: svc, calendarID: calendarID, loc: loc}, nil
}

// ScheduleEvent inserts one event. Date is dd/mm/yyyy or yyyy-mm-dd, time is
// HH:MM; duration defaults to 60 minutes when zero or negative.
func (c *Client) ScheduleEvent(ctx context.Context, title, description, date, timeOfDay string, durationMinutes int) (EventResult, error) {
	start, end, err := EventWindow(date, timeOfDay, durationMinutes, c.loc)
	if err != nil {
		return EventResult{Status: "erro", Message: err.Error()}, err
	}

	ev := &calendar.Event{
		Summary:     strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Start:       &calendar.EventDateTime{DateTime: start.Format(time.RFC3339), TimeZone: c.loc.String()},
		End:         &calendar.EventDateTime{DateTime: end.Format(time.RFC3339), TimeZone: c.loc.String()},
	}
	created, err := c.svc.Events.Insert(c.calendarID, ev).Context(ctx).Do()
	if err != nil {
		return EventResult{Status: "erro", Message: err.Error()}, fmt.Errorf("insert event: %w", err)
	}
	return EventResult{
		Status:  "ok",
		Message: fmt.Sprintf("Evento %q agendado para %s", ev.Summary, start.Format("02/01/2006 15:04")),
		Link:    created.HtmlLink,
	}, nil
}

var dateLayouts = []string{"02/01/2006", "2006-01-02", "02-01-2006"}

// EventWindow parses date+time into a start instant in loc and computes the
// end instant from the duration.
func EventWindow(date, timeOfDay string, durationMinutes int, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	date = strings.TrimSpace(date)
	timeOfDay = strings.TrimSpace(timeOfDay)
	if date == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("data is required")
	}
	if timeOfDay == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("hora is required")
	}
	if durationMinutes <= 0 {
		durationMinutes = DefaultDurationMinutes
	}

	var day time.Time
	var err error
	for _, layout := range dateLayouts {
		day, err = time.ParseInLocation(layout, date, loc)
		if err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("data %q inválida (use dd/mm/aaaa)", date)
	}

	clock, err := time.Parse("15:04", timeOfDay)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("hora %q inválida (use HH:MM)", timeOfDay)
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, loc)
	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	return start, end, nil
}
