package gcal

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/pitstop/pitstop-backend/internal/logger"
)

// CalendarInfo is the minimal view of a remote calendar the reconciler needs.
type CalendarInfo struct {
	ID      string
	Summary string
}

// Event is a logical calendar event. All-day events carry date-only
// start/end; timed events carry full timestamps in the store's timezone.
type Event struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	AllDay      bool
}

// Key identifies an event for dedup purposes: same title on the same start
// date means the same logical item.
func (e Event) Key() string {
	return e.Title + "|" + e.Start.Format("2006-01-02")
}

// Store is the narrow calendar interface the core depends on. The Google
// implementation lives below; tests use an in-memory fake.
type Store interface {
	ListCalendars(ctx context.Context) ([]CalendarInfo, error)
	CreateCalendar(ctx context.Context, summary, description, timezone string) (string, error)
	ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]Event, error)
	InsertEvent(ctx context.Context, calendarID string, ev Event) (string, error)
}

type googleStore struct {
	log *logger.Logger
	svc *calendar.Service
	tz  string
}

// NewStore builds a Store over the Google Calendar API using the learner's
// OAuth token. The token source refreshes expired tokens transparently.
func NewStore(ctx context.Context, log *logger.Logger, conf *oauth2.Config, token *oauth2.Token, timezone string) (Store, error) {
	svc, err := calendar.NewService(ctx, option.WithTokenSource(conf.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("calendar service: %w", err)
	}
	return &googleStore{
		log: log.With("client", "GoogleCalendarStore"),
		svc: svc,
		tz:  timezone,
	}, nil
}

func (s *googleStore) ListCalendars(ctx context.Context) ([]CalendarInfo, error) {
	var out []CalendarInfo
	err := s.svc.CalendarList.List().Pages(ctx, func(page *calendar.CalendarList) error {
		for _, item := range page.Items {
			out = append(out, CalendarInfo{ID: item.Id, Summary: item.Summary})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list calendars: %w", err)
	}
	return out, nil
}

func (s *googleStore) CreateCalendar(ctx context.Context, summary, description, timezone string) (string, error) {
	created, err := s.svc.Calendars.Insert(&calendar.Calendar{
		Summary:     summary,
		Description: description,
		TimeZone:    timezone,
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create calendar %q: %w", summary, err)
	}
	return created.Id, nil
}

func (s *googleStore) ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]Event, error) {
	var out []Event
	call := s.svc.Events.List(calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		MaxResults(2500)
	err := call.Pages(ctx, func(page *calendar.Events) error {
		for _, item := range page.Items {
			ev, convErr := fromGoogleEvent(item)
			if convErr != nil {
				s.log.Warn("Skipping remote event with unreadable time", "event", item.Summary, "error", convErr)
				continue
			}
			out = append(out, ev)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return out, nil
}

func (s *googleStore) InsertEvent(ctx context.Context, calendarID string, ev Event) (string, error) {
	body := &calendar.Event{
		Summary:     ev.Title,
		Description: ev.Description,
	}
	if ev.AllDay {
		body.Start = &calendar.EventDateTime{Date: ev.Start.Format("2006-01-02")}
		body.End = &calendar.EventDateTime{Date: ev.End.Format("2006-01-02")}
	} else {
		body.Start = &calendar.EventDateTime{DateTime: ev.Start.Format(time.RFC3339), TimeZone: s.tz}
		body.End = &calendar.EventDateTime{DateTime: ev.End.Format(time.RFC3339), TimeZone: s.tz}
	}
	inserted, err := s.svc.Events.Insert(calendarID, body).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("insert event %q: %w", ev.Title, err)
	}
	return inserted.Id, nil
}

func fromGoogleEvent(item *calendar.Event) (Event, error) {
	ev := Event{Title: item.Summary, Description: item.Description}
	if item.Start == nil || item.End == nil {
		return ev, fmt.Errorf("event %q missing start/end", item.Summary)
	}
	if item.Start.Date != "" {
		start, err := time.Parse("2006-01-02", item.Start.Date)
		if err != nil {
			return ev, err
		}
		end, err := time.Parse("2006-01-02", item.End.Date)
		if err != nil {
			return ev, err
		}
		ev.Start, ev.End, ev.AllDay = start, end, true
		return ev, nil
	}
	start, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		return ev, err
	}
	end, err := time.Parse(time.RFC3339, item.End.DateTime)
	if err != nil {
		return ev, err
	}
	ev.Start, ev.End = start, end
	return ev, nil
}
