package schedule

import (
	"reflect"
	"testing"
)

func TestRatingIndexDefaults(t *testing.T) {
	ix := NewRatingIndex([]TopicRating{
		{Topic: "Recursion", Weakness: 0},
		{Topic: "Loops", Weakness: 1},
		{Topic: "Loops", Weakness: 0.5}, // last write wins
	})

	if got := ix.WeaknessOf("Recursion"); got != 0 {
		t.Fatalf("WeaknessOf(Recursion) = %v, want 0", got)
	}
	if got := ix.WeaknessOf("Loops"); got != 0.5 {
		t.Fatalf("WeaknessOf(Loops) = %v, want 0.5 (last write wins)", got)
	}
	if got := ix.WeaknessOf("Pointers"); got != 0 {
		t.Fatalf("WeaknessOf(unseen) = %v, want default 0", got)
	}
	if ix.Rated("Pointers") {
		t.Fatal("Rated(unseen) = true")
	}

	unrated := ix.Unrated([]string{"Loops", "Pointers", "Arrays"})
	if !reflect.DeepEqual(unrated, []string{"Arrays", "Pointers"}) {
		t.Fatalf("Unrated = %v", unrated)
	}
}

func TestWeaknessFromLabel(t *testing.T) {
	cases := []struct {
		label string
		want  float64
	}{
		{"weak", 0},
		{"soso", 0.5},
		{"familiar", 1},
		{"whatever", 0},
		{"", 0},
	}
	for _, tc := range cases {
		if got := WeaknessFromLabel(tc.label); got != tc.want {
			t.Fatalf("WeaknessFromLabel(%q) = %v, want %v", tc.label, got, tc.want)
		}
	}
}

func TestWeeklyBudget(t *testing.T) {
	if WeeklyBudget(0) != 180 {
		t.Fatal("weak topics should earn 180 min/week")
	}
	if WeeklyBudget(0.5) != 120 {
		t.Fatal("soso topics should earn 120 min/week")
	}
	if WeeklyBudget(1) != 0 {
		t.Fatal("familiar topics should earn no budget")
	}
}
