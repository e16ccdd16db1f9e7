package calendar

import (
	"context"
	"fmt"
	"time"

	"chairtime/models"
	"chairtime/utils"

	"go.uber.org/zap"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleCalendarService implements Service against the Google Calendar API
// using service-account credentials.
type GoogleCalendarService struct {
	svc        *gcal.Service
	calendarID string
	timezone   string
}

// NewGoogleCalendarService builds the Calendar API client from a
// service-account credentials file.
func NewGoogleCalendarService(ctx context.Context, credentialsPath, calendarID, timezone string) (*GoogleCalendarService, error) {
	svc, err := gcal.NewService(ctx,
		option.WithCredentialsFile(credentialsPath),
		option.WithScopes(gcal.CalendarScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize calendar client: %w", err)
	}
	return &GoogleCalendarService{
		svc:        svc,
		calendarID: calendarID,
		timezone:   timezone,
	}, nil
}

// BusyIntervals queries free/busy information for the configured calendar.
func (g *GoogleCalendarService) BusyIntervals(ctx context.Context, from, to time.Time) ([]models.TimeRange, error) {
	req := &gcal.FreeBusyRequest{
		TimeMin:  from.Format(time.RFC3339),
		TimeMax:  to.Format(time.RFC3339),
		TimeZone: g.timezone,
		Items:    []*gcal.FreeBusyRequestItem{{Id: g.calendarID}},
	}

	resp, err := g.svc.Freebusy.Query(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("freebusy query failed: %w", err)
	}

	cal, ok := resp.Calendars[g.calendarID]
	if !ok {
		return nil, fmt.Errorf("calendar %s missing from freebusy response", g.calendarID)
	}

	busy := make([]models.TimeRange, 0, len(cal.Busy))
	for _, period := range cal.Busy {
		start, err := time.Parse(time.RFC3339, period.Start)
		if err != nil {
			return nil, fmt.Errorf("invalid busy interval start %q: %w", period.Start, err)
		}
		end, err := time.Parse(time.RFC3339, period.End)
		if err != nil {
			return nil, fmt.Errorf("invalid busy interval end %q: %w", period.End, err)
		}
		busy = append(busy, models.TimeRange{Start: start, End: end})
	}
	return busy, nil
}

// CreateEvent inserts an appointment event with popup reminders.
func (g *GoogleCalendarService) CreateEvent(ctx context.Context, req models.AppointmentRequest) (string, error) {
	event := &gcal.Event{
		Summary:     fmt.Sprintf("%s - %s", req.ServiceType, req.CustomerName),
		Description: fmt.Sprintf("Customer: %s\nContact: @%s\nService: %s", req.CustomerName, req.UserID, req.ServiceType),
		Start: &gcal.EventDateTime{
			DateTime: req.Start.Format(time.RFC3339),
			TimeZone: g.timezone,
		},
		End: &gcal.EventDateTime{
			DateTime: req.End().Format(time.RFC3339),
			TimeZone: g.timezone,
		},
		Reminders: &gcal.EventReminders{
			UseDefault: false,
			Overrides: []*gcal.EventReminder{
				{Method: "popup", Minutes: 60},
				{Method: "popup", Minutes: 30},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}

	created, err := g.svc.Events.Insert(g.calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create calendar event: %w", err)
	}

	utils.GetLogger().Info("Calendar event created",
		zap.String("eventId", created.Id),
		zap.String("link", created.HtmlLink),
	)
	return created.Id, nil
}

// DeleteEvent removes an event from the calendar.
func (g *GoogleCalendarService) DeleteEvent(ctx context.Context, eventID string) error {
	if err := g.svc.Events.Delete(g.calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete calendar event %s: %w", eventID, err)
	}
	return nil
}
