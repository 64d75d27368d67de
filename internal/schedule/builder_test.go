package schedule

import (
	"reflect"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// checkInvariants asserts the properties every builder output must hold:
// sessions within [09:00, 21:00), no same-day overlap, daily caps respected.
func checkInvariants(t *testing.T, sessions []Session) {
	t.Helper()
	perDay := map[string]int{}
	var prev *Session
	for i := range sessions {
		s := sessions[i]
		if s.StartMinute >= s.EndMinute {
			t.Fatalf("session %d: start %d >= end %d", i, s.StartMinute, s.EndMinute)
		}
		if s.StartMinute < 9*60 || s.EndMinute > 21*60 {
			t.Fatalf("session %d outside [09:00, 21:00): %s-%s", i, s.StartClock(), s.EndClock())
		}
		key := s.Date.Format("2006-01-02")
		perDay[key] += s.Duration()
		if prev != nil && prev.Date.Equal(s.Date) && s.StartMinute < prev.EndMinute {
			t.Fatalf("sessions overlap on %s: %s starts before %s", key, s.StartClock(), prev.EndClock())
		}
		prev = &sessions[i]
	}
	for key, minutes := range perDay {
		day, _ := time.Parse("2006-01-02", key)
		if minutes > dayCap(day) {
			t.Fatalf("day %s has %d min allocated, cap %d", key, minutes, dayCap(day))
		}
	}
}

func TestBuildEmptyInputs(t *testing.T) {
	b := NewBuilder(date(2024, time.October, 1))
	sessions, shortfalls := b.Build(nil, nil, NewRatingIndex(nil))
	if len(sessions) != 0 || len(shortfalls) != 0 {
		t.Fatalf("empty input should yield nothing, got %d sessions %d shortfalls", len(sessions), len(shortfalls))
	}
}

func TestBuildWeakVsFamiliar(t *testing.T) {
	// "Recursion" rated weak, "Loops" rated familiar, window Oct 1 - Oct 10.
	b := NewBuilder(date(2024, time.October, 1))
	weeks := []TopicWeek{{
		Range:  DateRange{Start: date(2024, time.October, 1), End: date(2024, time.October, 10)},
		Topics: []string{"Recursion", "Loops"},
	}}
	ratings := NewRatingIndex([]TopicRating{
		{Topic: "Recursion", Weakness: 0},
		{Topic: "Loops", Weakness: 1},
	})

	sessions, _ := b.Build(nil, weeks, ratings)
	checkInvariants(t, sessions)

	totals := map[string]int{}
	for _, s := range sessions {
		if !s.Date.Before(date(2024, time.October, 10)) {
			t.Fatalf("session on/after window end: %v", s.Date)
		}
		share := s.Duration() / len(s.Topics)
		for _, topic := range s.Topics {
			totals[topic] += share
		}
	}
	if totals["Recursion"] < 150 {
		t.Fatalf("Recursion got %d min, want >= 150", totals["Recursion"])
	}
	if totals["Loops"] != 0 {
		t.Fatalf("Loops rated familiar should get 0 min, got %d", totals["Loops"])
	}
}

func TestBuildNoSessionOnOrAfterDueDate(t *testing.T) {
	// Two windows ending the same day two assignments are due; nothing may
	// land on or after that date.
	due := date(2024, time.November, 8)
	b := NewBuilder(date(2024, time.November, 1))
	weeks := []TopicWeek{
		{Range: DateRange{Start: date(2024, time.November, 4), End: due}, Topics: []string{"Graphs"}},
		{Range: DateRange{Start: date(2024, time.November, 4), End: due}, Topics: []string{"Heaps"}},
	}
	assignments := []Assignment{
		{Name: "PA3", Due: due},
		{Name: "Quiz 2", Due: due},
	}

	sessions, _ := b.Build(assignments, weeks, NewRatingIndex(nil))
	checkInvariants(t, sessions)
	if len(sessions) == 0 {
		t.Fatal("expected sessions before the deadline")
	}
	for _, s := range sessions {
		if !s.Date.Before(due) {
			t.Fatalf("session placed on/after due date: %v", s.Date)
		}
	}
}

func TestBuildUnratedTopicsGetFullBudget(t *testing.T) {
	// Zero ratings provided: every topic defaults to weakness 0.
	b := NewBuilder(date(2024, time.September, 30))
	weeks := []TopicWeek{{
		Range:  DateRange{Start: date(2024, time.September, 30), End: date(2024, time.October, 14)},
		Topics: []string{"Stacks", "Queues"},
	}}

	sessions, _ := b.Build(nil, weeks, NewRatingIndex(nil))
	checkInvariants(t, sessions)

	totals := map[string]int{}
	for _, s := range sessions {
		share := s.Duration() / len(s.Topics)
		for _, topic := range s.Topics {
			totals[topic] += share
		}
	}
	// Two full weeks before the deadline: each topic should land its whole
	// 180 min/week budget in at least the first week.
	for _, topic := range []string{"Stacks", "Queues"} {
		if totals[topic] < 180 {
			t.Fatalf("topic %s got %d min, want >= 180", topic, totals[topic])
		}
	}
}

func TestBuildSpreadsAcrossDays(t *testing.T) {
	b := NewBuilder(date(2024, time.October, 7)) // a Monday
	weeks := []TopicWeek{{
		Range:  DateRange{Start: date(2024, time.October, 7), End: date(2024, time.October, 14)},
		Topics: []string{"Recursion"},
	}}

	sessions, _ := b.Build(nil, weeks, NewRatingIndex(nil))
	checkInvariants(t, sessions)

	days := map[string]bool{}
	for _, s := range sessions {
		days[s.Date.Format("2006-01-02")] = true
		if s.Duration() > sessionCapMinutes {
			t.Fatalf("session exceeds single-session cap: %d", s.Duration())
		}
	}
	if len(days) < 2 {
		t.Fatalf("weekly budget should spread over >= 2 days, got %d", len(days))
	}
}

func TestBuildDeterministic(t *testing.T) {
	weeks := []TopicWeek{
		{Range: DateRange{Start: date(2024, time.October, 1), End: date(2024, time.October, 11)}, Topics: []string{"B-Trees", "Hashing", "Sorting"}},
		{Range: DateRange{Start: date(2024, time.October, 14), End: date(2024, time.October, 18)}, Topics: []string{"Graphs", "Tries"}},
	}
	ratings := NewRatingIndex([]TopicRating{
		{Topic: "Hashing", Weakness: 0.5},
		{Topic: "Sorting", Weakness: 1},
	})
	assignments := []Assignment{{Name: "PA1", Due: date(2024, time.October, 18)}}

	b := NewBuilder(date(2024, time.October, 1))
	first, firstShort := b.Build(assignments, weeks, ratings)
	second, secondShort := NewBuilder(date(2024, time.October, 1)).Build(assignments, weeks, ratings)

	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical inputs produced different sessions")
	}
	if !reflect.DeepEqual(firstShort, secondShort) {
		t.Fatal("identical inputs produced different shortfalls")
	}
	checkInvariants(t, first)
}

func TestBuildPrioritizesWeakerTopics(t *testing.T) {
	// One weekday before the deadline: 180 min of capacity, two topics
	// wanting 180 + 120. The weak one must win the day.
	b := NewBuilder(date(2024, time.October, 8)) // Tuesday
	weeks := []TopicWeek{{
		Range:  DateRange{Start: date(2024, time.October, 7), End: date(2024, time.October, 9)},
		Topics: []string{"Pointers", "Macros"},
	}}
	ratings := NewRatingIndex([]TopicRating{
		{Topic: "Pointers", Weakness: 0},
		{Topic: "Macros", Weakness: 0.5},
	})

	sessions, shortfalls := b.Build(nil, weeks, ratings)
	checkInvariants(t, sessions)

	totals := map[string]int{}
	for _, s := range sessions {
		share := s.Duration() / len(s.Topics)
		for _, topic := range s.Topics {
			totals[topic] += share
		}
	}
	if totals["Pointers"] != 180 {
		t.Fatalf("weak topic got %d min, want the full 180", totals["Pointers"])
	}
	if totals["Macros"] != 0 {
		t.Fatalf("soso topic got %d min, want 0 once the day is full", totals["Macros"])
	}

	// The crowded-out topic must surface as a shortfall, not vanish.
	var found bool
	for _, sf := range shortfalls {
		if sf.Topic == "Macros" && sf.Placed == 0 && sf.Requested == 120 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a shortfall for Macros, got %+v", shortfalls)
	}
}

func TestBuildHorizonAlreadyPassed(t *testing.T) {
	b := NewBuilder(date(2024, time.December, 1))
	weeks := []TopicWeek{{
		Range:  DateRange{Start: date(2024, time.October, 1), End: date(2024, time.October, 10)},
		Topics: []string{"Recursion"},
	}}

	sessions, shortfalls := b.Build(nil, weeks, NewRatingIndex(nil))
	if len(sessions) != 0 {
		t.Fatalf("no sessions should fit after the deadline, got %d", len(sessions))
	}
	if len(shortfalls) != 1 || shortfalls[0].Topic != "Recursion" || shortfalls[0].Placed != 0 {
		t.Fatalf("expected full under-allocation for Recursion, got %+v", shortfalls)
	}
}

func TestBuildWeekendCap(t *testing.T) {
	// Saturday start, deadline Monday: weekend caps apply.
	b := NewBuilder(date(2024, time.October, 12)) // Saturday
	weeks := []TopicWeek{{
		Range:  DateRange{Start: date(2024, time.October, 7), End: date(2024, time.October, 14)},
		Topics: []string{"DP", "Greedy", "Flows", "NP"},
	}}

	sessions, _ := b.Build(nil, weeks, NewRatingIndex(nil))
	checkInvariants(t, sessions)

	perDay := map[string]int{}
	for _, s := range sessions {
		perDay[s.Date.Format("2006-01-02")] += s.Duration()
	}
	if perDay["2024-10-12"] > 300 || perDay["2024-10-13"] > 300 {
		t.Fatalf("weekend cap exceeded: %+v", perDay)
	}
}
