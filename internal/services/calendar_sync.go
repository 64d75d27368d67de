package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/pitstop/pitstop-backend/internal/clients/gcal"
	redisclient "github.com/pitstop/pitstop-backend/internal/clients/redis"
	"github.com/pitstop/pitstop-backend/internal/logger"
	"github.com/pitstop/pitstop-backend/internal/repos"
	"github.com/pitstop/pitstop-backend/internal/types"
)

const (
	calendarSuffix      = " - PitStop"
	calendarDescription = "Study schedule and assignments from PitStop"
	syncLockTTL         = 2 * time.Minute
)

// SyncResult is the reconciliation tally: every logical event ends up
// created, skipped (already present) or failed.
type SyncResult struct {
	CalendarID string `json:"calendar_id"`
	Requested  int    `json:"requested"`
	Created    int    `json:"created"`
	Skipped    int    `json:"skipped"`
	Failed     int    `json:"failed"`
}

// Reconciler makes a remote calendar contain exactly one event per logical
// item, no matter how many times it runs. The remote store is the single
// source of truth for dedup; nothing is cached between runs.
type Reconciler struct {
	log    *logger.Logger
	locker redisclient.Locker
}

func NewReconciler(log *logger.Logger, locker redisclient.Locker) *Reconciler {
	return &Reconciler{log: log.With("service", "CalendarReconciler"), locker: locker}
}

// Reconcile finds or creates the named calendar, then inserts every logical
// event that is not already present, keyed by (title, start date). Calendar
// lookup/creation failures abort; per-event failures are tallied and skipped.
func (r *Reconciler) Reconcile(ctx context.Context, store gcal.Store, owner, displayName string, events []gcal.Event) (*SyncResult, error) {
	if r.locker != nil {
		release, err := r.locker.Acquire(ctx, owner+":"+displayName, syncLockTTL)
		if err != nil {
			return nil, &CalendarServiceError{Op: "lock", Fatal: true, Err: err}
		}
		defer release()
	}

	calendarID, err := r.findOrCreateCalendar(ctx, store, displayName)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{CalendarID: calendarID, Requested: len(events)}
	if len(events) == 0 {
		return result, nil
	}

	existing, err := r.existingKeys(ctx, store, calendarID, events)
	if err != nil {
		// Without the remote view we would duplicate on every run, which is
		// exactly what this component exists to prevent.
		return nil, err
	}

	for _, ev := range events {
		key := ev.Key()
		if existing[key] {
			result.Skipped++
			continue
		}
		if _, insErr := store.InsertEvent(ctx, calendarID, ev); insErr != nil {
			result.Failed++
			r.log.Warn("Event insert failed, continuing with remaining events",
				"calendar_id", calendarID, "event", ev.Title, "error", insErr)
			continue
		}
		existing[key] = true
		result.Created++
	}

	r.log.Info("Calendar reconciled",
		"calendar", displayName,
		"requested", result.Requested,
		"created", result.Created,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return result, nil
}

func (r *Reconciler) findOrCreateCalendar(ctx context.Context, store gcal.Store, displayName string) (string, error) {
	calendars, err := store.ListCalendars(ctx)
	if err != nil {
		return "", &CalendarServiceError{Op: "list calendars", Fatal: true, Err: err}
	}
	for _, cal := range calendars {
		if cal.Summary == displayName {
			return cal.ID, nil
		}
	}
	id, err := store.CreateCalendar(ctx, displayName, calendarDescription, calendarTimezone())
	if err != nil {
		return "", &CalendarServiceError{Op: "create calendar", Fatal: true, Err: err}
	}
	r.log.Info("Created calendar", "calendar", displayName, "calendar_id", id)
	return id, nil
}

func (r *Reconciler) existingKeys(ctx context.Context, store gcal.Store, calendarID string, events []gcal.Event) (map[string]bool, error) {
	from, to := events[0].Start, events[0].End
	for _, ev := range events[1:] {
		if ev.Start.Before(from) {
			from = ev.Start
		}
		if ev.End.After(to) {
			to = ev.End
		}
	}
	// Pad a day each way so all-day events near the edges are not missed.
	remote, err := store.ListEvents(ctx, calendarID, from.AddDate(0, 0, -1), to.AddDate(0, 0, 1))
	if err != nil {
		return nil, &CalendarServiceError{Op: "list events", Fatal: true, Err: err}
	}
	keys := make(map[string]bool, len(remote))
	for _, ev := range remote {
		keys[ev.Key()] = true
	}
	return keys, nil
}

func calendarTimezone() string {
	return "America/Los_Angeles"
}

// CalendarSyncService turns a course's stored rows into logical events and
// reconciles them against the learner's Google calendar.
type CalendarSyncService interface {
	SyncCourse(ctx context.Context, userID, courseID uuid.UUID) (*SyncResult, error)
	ListRuns(ctx context.Context, userID, courseID uuid.UUID) ([]*types.SyncRun, error)
}

type calendarSyncService struct {
	db          *gorm.DB
	log         *logger.Logger
	reconciler  *Reconciler
	googleAuth  GoogleAuthService
	courseRepo  repos.CourseRepo
	sessionRepo repos.StudySessionRepo
	syncRunRepo repos.SyncRunRepo
	location    *time.Location
}

func NewCalendarSyncService(
	db *gorm.DB,
	log *logger.Logger,
	reconciler *Reconciler,
	googleAuth GoogleAuthService,
	courseRepo repos.CourseRepo,
	sessionRepo repos.StudySessionRepo,
	syncRunRepo repos.SyncRunRepo,
) (CalendarSyncService, error) {
	location, err := time.LoadLocation(calendarTimezone())
	if err != nil {
		return nil, fmt.Errorf("load calendar timezone: %w", err)
	}
	return &calendarSyncService{
		db:          db,
		log:         log.With("service", "CalendarSyncService"),
		reconciler:  reconciler,
		googleAuth:  googleAuth,
		courseRepo:  courseRepo,
		sessionRepo: sessionRepo,
		syncRunRepo: syncRunRepo,
		location:    location,
	}, nil
}

func (s *calendarSyncService) SyncCourse(ctx context.Context, userID, courseID uuid.UUID) (*SyncResult, error) {
	ctx, span := otel.Tracer("pitstop/calendar-sync").Start(ctx, "SyncCourse")
	defer span.End()

	course, err := s.courseRepo.GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}
	if course == nil || course.UserID != userID {
		return nil, fmt.Errorf("course %s not found", courseID)
	}

	store, err := s.googleAuth.StoreForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	events, err := s.logicalEvents(ctx, courseID)
	if err != nil {
		return nil, err
	}

	displayName := course.Code + calendarSuffix
	result, err := s.reconciler.Reconcile(ctx, store, userID.String(), displayName, events)
	if err != nil {
		return nil, err
	}
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.Int("sync.requested", result.Requested),
			attribute.Int("sync.created", result.Created),
			attribute.Int("sync.skipped", result.Skipped),
			attribute.Int("sync.failed", result.Failed),
		)
	}

	if course.CalendarID != result.CalendarID {
		if setErr := s.courseRepo.SetCalendarID(ctx, nil, courseID, result.CalendarID); setErr != nil {
			s.log.Warn("Failed to remember calendar id on course", "course_id", courseID, "error", setErr)
		}
	}

	run := &types.SyncRun{
		ID:         uuid.New(),
		CourseID:   courseID,
		CalendarID: result.CalendarID,
		Requested:  result.Requested,
		Created:    result.Created,
		Skipped:    result.Skipped,
		Failed:     result.Failed,
	}
	if runErr := s.syncRunRepo.Create(ctx, nil, run); runErr != nil {
		s.log.Warn("Failed to record sync run", "course_id", courseID, "error", runErr)
	}

	return result, nil
}

// logicalEvents builds the full event set for a course: one all-day event
// per dated assignment, one timed event per stored study session.
func (s *calendarSyncService) logicalEvents(ctx context.Context, courseID uuid.UUID) ([]gcal.Event, error) {
	assignments, err := s.courseRepo.ListAssignments(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessionRepo.ListByCourse(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}

	var events []gcal.Event
	for _, a := range assignments {
		if a.DueDate == nil {
			continue
		}
		events = append(events, gcal.Event{
			Title:  a.Name,
			Start:  *a.DueDate,
			End:    *a.DueDate,
			AllDay: true,
		})
	}
	for _, sess := range sessions {
		topics := strings.Join(strings.Split(sess.Topics, ";"), ", ")
		y, m, d := sess.Date.Date()
		start := time.Date(y, m, d, sess.StartMinute/60, sess.StartMinute%60, 0, 0, s.location)
		end := time.Date(y, m, d, sess.EndMinute/60, sess.EndMinute%60, 0, 0, s.location)
		events = append(events, gcal.Event{
			Title:       "Study: " + topics,
			Description: "PitStop study session for: " + topics,
			Start:       start,
			End:         end,
		})
	}
	return events, nil
}

func (s *calendarSyncService) ListRuns(ctx context.Context, userID, courseID uuid.UUID) ([]*types.SyncRun, error) {
	course, err := s.courseRepo.GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}
	if course == nil || course.UserID != userID {
		return nil, fmt.Errorf("course %s not found", courseID)
	}
	return s.syncRunRepo.ListByCourse(ctx, nil, courseID)
}
