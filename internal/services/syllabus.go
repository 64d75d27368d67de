package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pitstop/pitstop-backend/internal/clients/gcp"
	"github.com/pitstop/pitstop-backend/internal/logger"
	"github.com/pitstop/pitstop-backend/internal/repos"
	"github.com/pitstop/pitstop-backend/internal/schedule"
	"github.com/pitstop/pitstop-backend/internal/types"
)

const extractionSystemPrompt = "You are an assistant that extracts course details."

const extractionInstructions = "Extract the course name, course code, all assignment names with due dates, " +
	"and weekly topics clearly as JSON with fields: course_name, course_code, assignments, weekly_topics.\n\n" +
	"for assignments, you MUST only have 2 things per entry, name and due_date. Ensure that the due_date field is in form of Sep 29 or Nov 25 where month is the first 3 letters of the month.\n\n" +
	"for weekly topics, you MUST have 2 things per entry. range (with dates in the form of Jun 15 or Feb 11) and topics, which will be 1 string with SEMICOLONs ; to deliminate. if multiple dates exist in the range, seperate via dash like Oct 20 - Oct 25.\n\n" +
	"you do NOT need to include the final exam or the midterm if there is no date listed.\n\n"

// courseSchema pins the extraction output shape server-side, instead of
// trusting the model to follow prose instructions.
var courseSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"course_name", "course_code", "assignments", "weekly_topics"},
	"properties": map[string]any{
		"course_name": map[string]any{"type": "string"},
		"course_code": map[string]any{"type": "string"},
		"assignments": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []string{"name", "due_date"},
				"properties": map[string]any{
					"name":     map[string]any{"type": "string"},
					"due_date": map[string]any{"type": "string"},
				},
			},
		},
		"weekly_topics": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []string{"range", "topics"},
				"properties": map[string]any{
					"range":  map[string]any{"type": "string"},
					"topics": map[string]any{"type": "string"},
				},
			},
		},
	},
}

type extractedAssignment struct {
	Name    string `json:"name"`
	DueDate string `json:"due_date"`
}

type extractedWeek struct {
	Range  string `json:"range"`
	Topics string `json:"topics"`
}

type extractedCourse struct {
	CourseName   string                `json:"course_name"`
	CourseCode   string                `json:"course_code"`
	Assignments  []extractedAssignment `json:"assignments"`
	WeeklyTopics []extractedWeek       `json:"weekly_topics"`
}

// SyllabusService runs the extraction stage of the pipeline: document text
// out of the upload, structured course JSON out of the text, normalized rows
// into the store.
type SyllabusService interface {
	ExtractCourse(ctx context.Context, userID uuid.UUID, filename, mimeType string, data []byte) (*types.Course, error)
	GetCourse(ctx context.Context, userID, courseID uuid.UUID) (*types.Course, error)
	ListCourses(ctx context.Context, userID uuid.UUID) ([]*types.Course, error)
	Topics(ctx context.Context, userID, courseID uuid.UUID) ([]string, error)
}

type syllabusService struct {
	db         *gorm.DB
	log        *logger.Logger
	document   gcp.Document
	bucket     BucketService
	openai     OpenAIClient
	courseRepo repos.CourseRepo
	// Year assumed for every syllabus date; terms spanning a year boundary
	// are not handled.
	referenceYear func() int
}

func NewSyllabusService(
	db *gorm.DB,
	log *logger.Logger,
	document gcp.Document,
	bucket BucketService,
	openai OpenAIClient,
	courseRepo repos.CourseRepo,
) SyllabusService {
	return &syllabusService{
		db:            db,
		log:           log.With("service", "SyllabusService"),
		document:      document,
		bucket:        bucket,
		openai:        openai,
		courseRepo:    courseRepo,
		referenceYear: func() int { return time.Now().UTC().Year() },
	}
}

func (s *syllabusService) ExtractCourse(ctx context.Context, userID uuid.UUID, filename, mimeType string, data []byte) (*types.Course, error) {
	text, err := s.document.ExtractText(ctx, mimeType, data)
	if err != nil {
		return nil, fmt.Errorf("extract syllabus text: %w", err)
	}

	payload, err := s.openai.GenerateJSON(ctx, extractionSystemPrompt, extractionInstructions+text, "course_extraction", courseSchema)
	if err != nil {
		return nil, fmt.Errorf("extract course fields: %w", err)
	}

	extracted, err := validateCourse(payload)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal extracted payload: %w", err)
	}

	course := &types.Course{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      extracted.CourseName,
		Code:      extracted.CourseCode,
		Extracted: raw,
	}

	// Keep the raw upload so the course can be re-extracted later. Upload
	// failure is not worth failing the whole pipeline over.
	if s.bucket != nil {
		key := fmt.Sprintf("syllabi/%s/%s-%s", userID, course.ID, filename)
		if upErr := s.bucket.UploadFile(ctx, key, bytes.NewReader(data)); upErr != nil {
			s.log.Warn("Syllabus upload to bucket failed, continuing without archive", "error", upErr)
		} else {
			course.BucketKey = key
		}
	}

	year := s.referenceYear()
	assignments, weeks := s.normalize(course.ID, extracted, year)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if cErr := s.courseRepo.Create(ctx, tx, course); cErr != nil {
			return cErr
		}
		if aErr := s.courseRepo.CreateAssignments(ctx, tx, assignments); aErr != nil {
			return aErr
		}
		return s.courseRepo.CreateTopicWeeks(ctx, tx, weeks)
	})
	if err != nil {
		return nil, fmt.Errorf("persist course: %w", err)
	}
	return course, nil
}

// normalize turns extracted strings into dated rows. Unparsable dates drop
// the date, not the record, and never abort the pipeline.
func (s *syllabusService) normalize(courseID uuid.UUID, extracted *extractedCourse, year int) ([]*types.CourseAssignment, []*types.TopicWeek) {
	var assignments []*types.CourseAssignment
	for _, a := range extracted.Assignments {
		row := &types.CourseAssignment{
			ID:       uuid.New(),
			CourseID: courseID,
			Name:     a.Name,
			DueText:  a.DueDate,
		}
		due, err := schedule.ParseDate(a.DueDate, year)
		if err != nil {
			s.log.Warn("Dropping unresolvable assignment due date", "assignment", a.Name, "due_text", a.DueDate, "error", err)
		} else {
			row.DueDate = &due
		}
		assignments = append(assignments, row)
	}

	var weeks []*types.TopicWeek
	for _, w := range extracted.WeeklyTopics {
		r, err := schedule.ParseRange(w.Range, year)
		if err != nil {
			s.log.Warn("Skipping weekly topics with unresolvable range", "range_text", w.Range, "error", err)
			continue
		}
		weeks = append(weeks, &types.TopicWeek{
			ID:        uuid.New(),
			CourseID:  courseID,
			Topics:    w.Topics,
			RangeText: w.Range,
			StartDate: r.Start,
			EndDate:   r.End,
		})
	}
	return assignments, weeks
}

func (s *syllabusService) GetCourse(ctx context.Context, userID, courseID uuid.UUID) (*types.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}
	if course == nil || course.UserID != userID {
		return nil, nil
	}
	return course, nil
}

func (s *syllabusService) ListCourses(ctx context.Context, userID uuid.UUID) ([]*types.Course, error) {
	return s.courseRepo.ListByUser(ctx, nil, userID)
}

// Topics returns the distinct topic strings across a course's weeks, in
// first-seen order, ready for the swipe screen.
func (s *syllabusService) Topics(ctx context.Context, userID, courseID uuid.UUID) ([]string, error) {
	course, err := s.GetCourse(ctx, userID, courseID)
	if err != nil || course == nil {
		return nil, err
	}
	weeks, err := s.courseRepo.ListTopicWeeks(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}
	return SplitTopics(weeks), nil
}

// SplitTopics expands semicolon-delimited week topics into a deduplicated,
// first-seen ordered list.
func SplitTopics(weeks []*types.TopicWeek) []string {
	seen := map[string]bool{}
	var out []string
	for _, w := range weeks {
		for _, part := range strings.Split(w.Topics, ";") {
			topic := strings.TrimSpace(part)
			if topic == "" || seen[topic] {
				continue
			}
			seen[topic] = true
			out = append(out, topic)
		}
	}
	return out
}

// validateCourse rejects silently-malformed extraction payloads before they
// reach the scheduler.
func validateCourse(payload map[string]any) (*extractedCourse, error) {
	for _, key := range []string{"course_name", "course_code", "assignments", "weekly_topics"} {
		if _, ok := payload[key]; !ok {
			return nil, &SchemaMismatchError{Field: key, Reason: "missing"}
		}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, &SchemaMismatchError{Field: "payload", Reason: err.Error()}
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var extracted extractedCourse
	if err := dec.Decode(&extracted); err != nil {
		return nil, &SchemaMismatchError{Field: "payload", Reason: err.Error()}
	}
	if strings.TrimSpace(extracted.CourseName) == "" {
		return nil, &SchemaMismatchError{Field: "course_name", Reason: "empty"}
	}
	if strings.TrimSpace(extracted.CourseCode) == "" {
		return nil, &SchemaMismatchError{Field: "course_code", Reason: "empty"}
	}
	return &extracted, nil
}
