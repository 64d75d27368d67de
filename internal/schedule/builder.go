package schedule

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	dayStartMinute    = 9 * 60  // sessions never start before 09:00
	dayEndMinute      = 21 * 60 // sessions never run past 21:00
	weekdayCapMinutes = 180
	weekendCapMinutes = 300
	sessionCapMinutes = 120
	blockGranularity  = 30
)

// Assignment is a due-dated deliverable extracted from the syllabus.
type Assignment struct {
	Name string
	Due  time.Time
}

// TopicWeek is the period during which a set of topics is taught. Study for
// those topics must finish strictly before the range end.
type TopicWeek struct {
	Range  DateRange
	Topics []string
}

// Session is one contiguous study block. Times are minutes from midnight on
// Date; sessions returned by the builder never overlap on the same date.
type Session struct {
	Date        time.Time
	StartMinute int
	EndMinute   int
	Topics      []string
}

func (s Session) Duration() int { return s.EndMinute - s.StartMinute }

func (s Session) StartClock() string { return Clock(s.StartMinute) }
func (s Session) EndClock() string   { return Clock(s.EndMinute) }

// Clock renders minutes-from-midnight as "HH:MM".
func Clock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// Shortfall reports a week in which a topic's budget could not be fully
// placed before its deadline. Non-fatal metadata alongside the session list.
type Shortfall struct {
	Topic     string
	WeekStart time.Time
	Requested int
	Placed    int
}

// Builder allocates study sessions over the horizon with a greedy,
// deterministic, single-pass walk. Identical inputs always produce identical
// output.
type Builder struct {
	today time.Time
}

func NewBuilder(today time.Time) *Builder {
	y, m, d := today.Date()
	return &Builder{today: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

type weekAlloc struct {
	weekStart time.Time
	requested int
	placed    int
}

type planItem struct {
	topic    string
	deadline time.Time // exclusive: no session on or after this date
	weakness float64
	budget   int // minutes per week
	weeks    []*weekAlloc
	byWeek   map[string]*weekAlloc
}

func (it *planItem) weekFor(day time.Time) *weekAlloc {
	monday := mondayOf(day)
	key := monday.Format("2006-01-02")
	if wa, ok := it.byWeek[key]; ok {
		return wa
	}
	wa := &weekAlloc{weekStart: monday, requested: it.budget}
	it.byWeek[key] = wa
	it.weeks = append(it.weeks, wa)
	return wa
}

// Build turns assignments, topic windows and ratings into an ordered session
// list. Empty input yields an empty list; topics whose budget cannot fit
// before their deadline come back as shortfalls, never as an error.
func (b *Builder) Build(assignments []Assignment, weeks []TopicWeek, ratings *RatingIndex) ([]Session, []Shortfall) {
	items := b.collectItems(weeks, ratings)
	if len(items) == 0 {
		return nil, nil
	}

	horizonEnd := b.today
	for _, it := range items {
		if it.deadline.After(horizonEnd) {
			horizonEnd = it.deadline
		}
	}
	for _, a := range assignments {
		if a.Due.After(horizonEnd) {
			horizonEnd = a.Due
		}
	}

	var sessions []Session
	for day := b.today; day.Before(horizonEnd); day = day.AddDate(0, 0, 1) {
		capacity := dayCap(day)
		used := 0
		cursor := dayStartMinute

		for _, it := range items {
			if !day.Before(it.deadline) {
				continue
			}
			wa := it.weekFor(day)
			rem := wa.requested - wa.placed
			if rem <= 0 || used >= capacity {
				continue
			}

			// Last calendar day before the deadline: the spreading cap no
			// longer applies and multiple blocks for the topic are allowed.
			last := !day.AddDate(0, 0, 1).Before(it.deadline)

			perDay := it.budget / 2
			if perDay < blockGranularity {
				perDay = blockGranularity
			}

			for {
				limit := perDay
				if last {
					limit = sessionCapMinutes
				}
				block := clampBlock(rem, limit, capacity-used, dayEndMinute-cursor)
				if block < blockGranularity {
					break
				}
				sessions = append(sessions, Session{
					Date:        day,
					StartMinute: cursor,
					EndMinute:   cursor + block,
					Topics:      []string{it.topic},
				})
				cursor += block
				used += block
				wa.placed += block
				rem = wa.requested - wa.placed
				if !last || rem <= 0 {
					break
				}
			}
		}
	}

	sessions = mergeAdjacent(sessions)
	sort.SliceStable(sessions, func(i, j int) bool {
		if !sessions[i].Date.Equal(sessions[j].Date) {
			return sessions[i].Date.Before(sessions[j].Date)
		}
		return sessions[i].StartMinute < sessions[j].StartMinute
	})
	return sessions, b.shortfalls(items)
}

func (b *Builder) collectItems(weeks []TopicWeek, ratings *RatingIndex) []*planItem {
	byTopic := map[string]*planItem{}
	var items []*planItem
	for _, w := range weeks {
		for _, raw := range w.Topics {
			topic := strings.TrimSpace(raw)
			if topic == "" {
				continue
			}
			if existing, ok := byTopic[topic]; ok {
				// A topic taught in several windows keeps its earliest
				// deadline.
				if w.Range.End.Before(existing.deadline) {
					existing.deadline = w.Range.End
				}
				continue
			}
			weakness := ratings.WeaknessOf(topic)
			budget := WeeklyBudget(weakness)
			if budget == 0 {
				continue
			}
			it := &planItem{
				topic:    topic,
				deadline: w.Range.End,
				weakness: weakness,
				budget:   budget,
				byWeek:   map[string]*weekAlloc{},
			}
			byTopic[topic] = it
			items = append(items, it)
		}
	}

	// Weakest first, then earliest deadline, then name. The name tiebreak is
	// what keeps output reproducible across runs.
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].weakness != items[j].weakness {
			return items[i].weakness < items[j].weakness
		}
		if !items[i].deadline.Equal(items[j].deadline) {
			return items[i].deadline.Before(items[j].deadline)
		}
		return items[i].topic < items[j].topic
	})
	return items
}

func (b *Builder) shortfalls(items []*planItem) []Shortfall {
	var out []Shortfall
	for _, it := range items {
		if len(it.weeks) == 0 {
			// No walkable day existed at all for this topic.
			out = append(out, Shortfall{
				Topic:     it.topic,
				WeekStart: mondayOf(b.today),
				Requested: it.budget,
				Placed:    0,
			})
			continue
		}
		for _, wa := range it.weeks {
			if wa.placed < wa.requested {
				out = append(out, Shortfall{
					Topic:     it.topic,
					WeekStart: wa.weekStart,
					Requested: wa.requested,
					Placed:    wa.placed,
				})
			}
		}
	}
	return out
}

// mergeAdjacent folds back-to-back blocks on the same date into one
// multi-topic session while the combined block stays within the single
// session cap.
func mergeAdjacent(sessions []Session) []Session {
	if len(sessions) < 2 {
		return sessions
	}
	out := sessions[:1]
	for _, s := range sessions[1:] {
		prev := &out[len(out)-1]
		if prev.Date.Equal(s.Date) &&
			prev.EndMinute == s.StartMinute &&
			prev.Duration()+s.Duration() <= sessionCapMinutes {
			prev.EndMinute = s.EndMinute
			prev.Topics = append(prev.Topics, s.Topics...)
			continue
		}
		out = append(out, s)
	}
	return out
}

func clampBlock(rem, limit, dayLeft, clockLeft int) int {
	block := rem
	if block > limit {
		block = limit
	}
	if block > dayLeft {
		block = dayLeft
	}
	if block > sessionCapMinutes {
		block = sessionCapMinutes
	}
	if block > clockLeft {
		block = clockLeft
	}
	block -= block % blockGranularity
	return block
}

func dayCap(day time.Time) int {
	switch day.Weekday() {
	case time.Saturday, time.Sunday:
		return weekendCapMinutes
	default:
		return weekdayCapMinutes
	}
}

func mondayOf(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
