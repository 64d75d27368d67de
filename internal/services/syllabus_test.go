package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pitstop/pitstop-backend/internal/types"
)

func validPayload() map[string]any {
	return map[string]any{
		"course_name": "Intro to Systems",
		"course_code": "CS 101",
		"assignments": []any{
			map[string]any{"name": "Homework 1", "due_date": "Oct 6"},
		},
		"weekly_topics": []any{
			map[string]any{"range": "Sep 29 - Oct 3", "topics": "Recursion;Pointers"},
		},
	}
}

func TestValidateCourseAcceptsWellFormedPayload(t *testing.T) {
	extracted, err := validateCourse(validPayload())
	if err != nil {
		t.Fatalf("validateCourse: %v", err)
	}
	if extracted.CourseCode != "CS 101" {
		t.Fatalf("got code %q", extracted.CourseCode)
	}
	if len(extracted.Assignments) != 1 || extracted.Assignments[0].DueDate != "Oct 6" {
		t.Fatalf("assignments not decoded: %+v", extracted.Assignments)
	}
}

func TestValidateCourseRejectsBadPayloads(t *testing.T) {
	missingKey := validPayload()
	delete(missingKey, "course_code")

	emptyName := validPayload()
	emptyName["course_name"] = "   "

	extraField := validPayload()
	extraField["surprise"] = true

	wrongShape := validPayload()
	wrongShape["assignments"] = "not a list"

	cases := []struct {
		name    string
		payload map[string]any
	}{
		{"missing required key", missingKey},
		{"blank course name", emptyName},
		{"unknown field", extraField},
		{"wrong field type", wrongShape},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := validateCourse(tc.payload)
			if err == nil {
				t.Fatal("expected an error")
			}
			var schemaErr *SchemaMismatchError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("expected SchemaMismatchError, got %T", err)
			}
		})
	}
}

func TestNormalizeKeepsRowsWithUnparsableDueDates(t *testing.T) {
	svc := &syllabusService{log: testLogger(t)}
	courseID := uuid.New()
	extracted := &extractedCourse{
		Assignments: []extractedAssignment{
			{Name: "Homework 1", DueDate: "Oct 6"},
			{Name: "Final Project", DueDate: "TBD"},
		},
		WeeklyTopics: []extractedWeek{
			{Range: "Sep 29 - Oct 3", Topics: "Recursion;Pointers"},
			{Range: "sometime later", Topics: "Macros"},
		},
	}

	assignments, weeks := svc.normalize(courseID, extracted, 2025)

	if len(assignments) != 2 {
		t.Fatalf("got %d assignments, want 2", len(assignments))
	}
	if assignments[0].DueDate == nil {
		t.Fatal("parsable due date was dropped")
	}
	want := time.Date(2025, time.October, 6, 0, 0, 0, 0, time.UTC)
	if !assignments[0].DueDate.Equal(want) {
		t.Fatalf("got due %v, want %v", assignments[0].DueDate, want)
	}
	if assignments[1].DueDate != nil {
		t.Fatalf("unparsable due date should stay nil, got %v", assignments[1].DueDate)
	}
	if assignments[1].DueText != "TBD" {
		t.Fatalf("original due text not preserved: %q", assignments[1].DueText)
	}

	// The week with an unreadable range is skipped entirely.
	if len(weeks) != 1 {
		t.Fatalf("got %d weeks, want 1", len(weeks))
	}
	if weeks[0].RangeText != "Sep 29 - Oct 3" {
		t.Fatalf("kept the wrong week: %q", weeks[0].RangeText)
	}
}

func TestSplitTopicsDeduplicatesAcrossWeeks(t *testing.T) {
	weeks := []*types.TopicWeek{
		{Topics: "Recursion; Pointers"},
		{Topics: "Pointers;Macros; "},
		{Topics: ""},
	}
	got := SplitTopics(weeks)
	want := []string{"Recursion", "Pointers", "Macros"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
