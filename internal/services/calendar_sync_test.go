package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pitstop/pitstop-backend/internal/clients/gcal"
	"github.com/pitstop/pitstop-backend/internal/logger"
)

// fakeCalendarStore keeps calendars and events in memory and can be told to
// fail inserts for specific titles.
type fakeCalendarStore struct {
	calendars   []gcal.CalendarInfo
	events      map[string][]gcal.Event
	failTitles  map[string]bool
	listCalErr  error
	createErr   error
	insertCalls int
}

func newFakeCalendarStore() *fakeCalendarStore {
	return &fakeCalendarStore{
		events:     map[string][]gcal.Event{},
		failTitles: map[string]bool{},
	}
}

func (f *fakeCalendarStore) ListCalendars(ctx context.Context) ([]gcal.CalendarInfo, error) {
	if f.listCalErr != nil {
		return nil, f.listCalErr
	}
	return f.calendars, nil
}

func (f *fakeCalendarStore) CreateCalendar(ctx context.Context, summary, description, timezone string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	id := "cal-" + summary
	f.calendars = append(f.calendars, gcal.CalendarInfo{ID: id, Summary: summary})
	return id, nil
}

func (f *fakeCalendarStore) ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]gcal.Event, error) {
	var out []gcal.Event
	for _, ev := range f.events[calendarID] {
		if ev.Start.Before(from) || ev.Start.After(to) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

func (f *fakeCalendarStore) InsertEvent(ctx context.Context, calendarID string, ev gcal.Event) (string, error) {
	f.insertCalls++
	if f.failTitles[ev.Title] {
		return "", errors.New("insert rejected")
	}
	f.events[calendarID] = append(f.events[calendarID], ev)
	return ev.Title, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func testEvents() []gcal.Event {
	day := func(d int) time.Time {
		return time.Date(2025, time.October, d, 0, 0, 0, 0, time.UTC)
	}
	return []gcal.Event{
		{Title: "Homework 1", Start: day(6), End: day(6), AllDay: true},
		{Title: "Study: Recursion", Start: day(2).Add(9 * time.Hour), End: day(2).Add(11 * time.Hour)},
		{Title: "Study: Pointers", Start: day(3).Add(9 * time.Hour), End: day(3).Add(10 * time.Hour)},
	}
}

func TestReconcileCreatesCalendarAndEvents(t *testing.T) {
	store := newFakeCalendarStore()
	r := NewReconciler(testLogger(t), nil)

	result, err := r.Reconcile(context.Background(), store, "user", "CS 101 - PitStop", testEvents())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if result.Created != 3 || result.Skipped != 0 || result.Failed != 0 {
		t.Fatalf("got created=%d skipped=%d failed=%d, want 3/0/0",
			result.Created, result.Skipped, result.Failed)
	}
	if len(store.calendars) != 1 || store.calendars[0].Summary != "CS 101 - PitStop" {
		t.Fatalf("unexpected calendars: %+v", store.calendars)
	}
	if got := len(store.events[result.CalendarID]); got != 3 {
		t.Fatalf("remote holds %d events, want 3", got)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	store := newFakeCalendarStore()
	r := NewReconciler(testLogger(t), nil)
	events := testEvents()

	first, err := r.Reconcile(context.Background(), store, "user", "CS 101 - PitStop", events)
	if err != nil {
		t.Fatalf("first Reconcile: %v", err)
	}
	second, err := r.Reconcile(context.Background(), store, "user", "CS 101 - PitStop", events)
	if err != nil {
		t.Fatalf("second Reconcile: %v", err)
	}

	if second.Created != 0 {
		t.Fatalf("second run created %d events, want 0", second.Created)
	}
	if second.Skipped != len(events) {
		t.Fatalf("second run skipped %d, want %d", second.Skipped, len(events))
	}
	if second.CalendarID != first.CalendarID {
		t.Fatalf("calendar id changed between runs: %q then %q", first.CalendarID, second.CalendarID)
	}
	if got := len(store.events[first.CalendarID]); got != len(events) {
		t.Fatalf("remote holds %d events after two runs, want %d", got, len(events))
	}
}

func TestReconcileReusesExistingCalendar(t *testing.T) {
	store := newFakeCalendarStore()
	store.calendars = []gcal.CalendarInfo{
		{ID: "other", Summary: "MATH 200 - PitStop"},
		{ID: "mine", Summary: "CS 101 - PitStop"},
	}
	r := NewReconciler(testLogger(t), nil)

	result, err := r.Reconcile(context.Background(), store, "user", "CS 101 - PitStop", nil)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if result.CalendarID != "mine" {
		t.Fatalf("got calendar %q, want %q", result.CalendarID, "mine")
	}
	if len(store.calendars) != 2 {
		t.Fatalf("a new calendar was created for an existing name")
	}
}

func TestReconcileTalliesInsertFailures(t *testing.T) {
	store := newFakeCalendarStore()
	store.failTitles["Study: Recursion"] = true
	r := NewReconciler(testLogger(t), nil)

	result, err := r.Reconcile(context.Background(), store, "user", "CS 101 - PitStop", testEvents())
	if err != nil {
		t.Fatalf("Reconcile should not abort on a single insert failure: %v", err)
	}
	if result.Created != 2 || result.Failed != 1 {
		t.Fatalf("got created=%d failed=%d, want 2/1", result.Created, result.Failed)
	}
}

func TestReconcileAbortsWhenCalendarCannotBeCreated(t *testing.T) {
	store := newFakeCalendarStore()
	store.createErr = errors.New("quota exceeded")
	r := NewReconciler(testLogger(t), nil)

	_, err := r.Reconcile(context.Background(), store, "user", "CS 101 - PitStop", testEvents())
	if err == nil {
		t.Fatal("expected an error")
	}
	var calErr *CalendarServiceError
	if !errors.As(err, &calErr) {
		t.Fatalf("expected CalendarServiceError, got %T", err)
	}
	if !calErr.Fatal {
		t.Fatal("calendar creation failure should be fatal")
	}
	if store.insertCalls != 0 {
		t.Fatalf("inserts attempted after fatal setup failure: %d", store.insertCalls)
	}
}

func TestReconcileSkipsDuplicatesWithinOneBatch(t *testing.T) {
	store := newFakeCalendarStore()
	r := NewReconciler(testLogger(t), nil)

	day := time.Date(2025, time.October, 6, 0, 0, 0, 0, time.UTC)
	events := []gcal.Event{
		{Title: "Homework 1", Start: day, End: day, AllDay: true},
		{Title: "Homework 1", Start: day, End: day, AllDay: true},
	}
	result, err := r.Reconcile(context.Background(), store, "user", "CS 101 - PitStop", events)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if result.Created != 1 || result.Skipped != 1 {
		t.Fatalf("got created=%d skipped=%d, want 1/1", result.Created, result.Skipped)
	}
}
