package gcal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"leadrunner/internal/domain"
	"leadrunner/platform/apperr"
	"leadrunner/platform/config"
	"leadrunner/platform/logger"
)

// Client is the Google Calendar implementation of Gateway. Authenticate must
// succeed before any other method is called.
type Client struct {
	cfg        config.CalendarConfig
	calendarID string
	timezone   string
	service    *calendar.Service
	log        *logger.Logger
}

// NewClient creates a Google Calendar gateway. The API service is built
// during Authenticate, not here.
func NewClient(cfg config.CalendarConfig, log *logger.Logger) *Client {
	calendarID := cfg.GetGoogleCalendarID()
	if calendarID == "" {
		calendarID = "primary"
	}
	return &Client{
		cfg:        cfg,
		calendarID: calendarID,
		timezone:   cfg.GetTimezone(),
		log:        log,
	}
}

// Authenticate builds the Calendar API service from the stored OAuth
// credentials and token files. There is no interactive flow here: the token
// must have been obtained out of band (the refresh token keeps it alive).
func (c *Client) Authenticate(ctx context.Context) error {
	credentials, err := os.ReadFile(c.cfg.GetGoogleCredentialsFile())
	if err != nil {
		return apperr.Wrap(apperr.KindAuth, "read google credentials file", err)
	}

	oauthConfig, err := google.ConfigFromJSON(credentials, calendar.CalendarScope)
	if err != nil {
		return apperr.Wrap(apperr.KindAuth, "parse google credentials", err)
	}

	token, err := loadToken(c.cfg.GetGoogleTokenFile())
	if err != nil {
		return apperr.Wrap(apperr.KindAuth, "load google token (run the oauth setup first)", err)
	}

	service, err := calendar.NewService(ctx, option.WithHTTPClient(oauthConfig.Client(ctx, token)))
	if err != nil {
		return apperr.Wrap(apperr.KindAuth, "create calendar service", err)
	}

	c.service = service
	c.log.Info("google calendar authenticated", "calendar_id", c.calendarID)
	return nil
}

// CheckAvailability lists events in [start, end) and reports whether any
// overlaps the window.
func (c *Client) CheckAvailability(ctx context.Context, start, end time.Time) (bool, error) {
	if c.service == nil {
		return false, apperr.New(apperr.KindGateway, "calendar service not initialized")
	}

	events, err := c.service.Events.List(c.calendarID).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return false, apperr.Gateway("list calendar events", err)
	}

	for _, item := range events.Items {
		eventStart, eventEnd, ok := eventInterval(item)
		if !ok {
			continue
		}
		if eventStart.Before(end) && start.Before(eventEnd) {
			c.log.Debug("time conflict", "event", item.Summary, "start", eventStart, "end", eventEnd)
			return false, nil
		}
	}
	return true, nil
}

// CreateEvent inserts the event with the standard reminder set (email a day
// before, popup an hour before) and returns the assigned ID.
func (c *Client) CreateEvent(ctx context.Context, event *domain.CalendarEvent) (string, error) {
	if c.service == nil {
		return "", apperr.New(apperr.KindGateway, "calendar service not initialized")
	}
	if err := event.Validate(); err != nil {
		return "", apperr.Wrap(apperr.KindValidation, "invalid calendar event", err)
	}

	body := c.eventBody(event)
	body.Reminders = &calendar.EventReminders{
		UseDefault: false,
		Overrides: []*calendar.EventReminder{
			{Method: "email", Minutes: 24 * 60},
			{Method: "popup", Minutes: 60},
		},
		ForceSendFields: []string{"UseDefault"},
	}

	created, err := c.service.Events.Insert(c.calendarID, body).Context(ctx).Do()
	if err != nil {
		return "", apperr.Gateway("insert calendar event", err)
	}

	c.log.Info("calendar event created", "event_id", created.Id, "title", event.Title)
	return created.Id, nil
}

// UpdateEvent replaces the stored event.
func (c *Client) UpdateEvent(ctx context.Context, eventID string, event *domain.CalendarEvent) error {
	if c.service == nil {
		return apperr.New(apperr.KindGateway, "calendar service not initialized")
	}
	if err := event.Validate(); err != nil {
		return apperr.Wrap(apperr.KindValidation, "invalid calendar event", err)
	}

	if _, err := c.service.Events.Update(c.calendarID, eventID, c.eventBody(event)).Context(ctx).Do(); err != nil {
		return apperr.Gateway(fmt.Sprintf("update calendar event %s", eventID), err)
	}
	return nil
}

// DeleteEvent removes the event.
func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	if c.service == nil {
		return apperr.New(apperr.KindGateway, "calendar service not initialized")
	}

	if err := c.service.Events.Delete(c.calendarID, eventID).Context(ctx).Do(); err != nil {
		return apperr.Gateway(fmt.Sprintf("delete calendar event %s", eventID), err)
	}
	return nil
}

func (c *Client) eventBody(event *domain.CalendarEvent) *calendar.Event {
	attendees := make([]*calendar.EventAttendee, 0, len(event.Attendees))
	for _, email := range event.Attendees {
		attendees = append(attendees, &calendar.EventAttendee{Email: email})
	}

	return &calendar.Event{
		Summary:     event.Title,
		Description: event.Description,
		Location:    event.Location,
		Start: &calendar.EventDateTime{
			DateTime: event.Start.Format(time.RFC3339),
			TimeZone: c.timezone,
		},
		End: &calendar.EventDateTime{
			DateTime: event.End.Format(time.RFC3339),
			TimeZone: c.timezone,
		},
		Attendees: attendees,
	}
}

// eventInterval extracts the [start, end) window of an API event. All-day
// events carry Date instead of DateTime.
func eventInterval(item *calendar.Event) (time.Time, time.Time, bool) {
	parse := func(edt *calendar.EventDateTime) (time.Time, bool) {
		if edt == nil {
			return time.Time{}, false
		}
		if edt.DateTime != "" {
			t, err := time.Parse(time.RFC3339, edt.DateTime)
			return t, err == nil
		}
		if edt.Date != "" {
			t, err := time.Parse("2006-01-02", edt.Date)
			return t, err == nil
		}
		return time.Time{}, false
	}

	start, okStart := parse(item.Start)
	end, okEnd := parse(item.End)
	return start, end, okStart && okEnd
}

func loadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	var token oauth2.Token
	if err := json.NewDecoder(f).Decode(&token); err != nil {
		return nil, err
	}
	return &token, nil
}

var _ Gateway = (*Client)(nil)
