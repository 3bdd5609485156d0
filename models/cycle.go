package models

import (
	"sort"
	"time"
)

// StartOfDay truncates t to midnight in t's own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DateKey is t's calendar date pinned to UTC midnight, used to key
// day-scoped rows independently of the server's zone.
func DateKey(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsSameDay compares calendar days, viewing b in a's location.
func IsSameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}

// WholeDaysBetween counts calendar-day boundaries crossed from from to to,
// evaluated in to's location. It is negative when to precedes from.
func WholeDaysBetween(from, to time.Time) int {
	fy, fm, fd := from.In(to.Location()).Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// ISOWeekday maps a time to Mon=1 .. Sun=7.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func (p *Plan) daysSinceStart(now time.Time) int {
	days := WholeDaysBetween(p.CreationDate, now)
	if days < 0 {
		return 0
	}
	return days
}

func (p *Plan) cycleDivisor() int {
	if n := p.CycleDays(); n > 0 {
		return n
	}
	return 1
}

// TodayCyclePosition is the zero-based index of today within the cycle.
// A plan without days always reports 0.
func (p *Plan) TodayCyclePosition(now time.Time) int {
	return p.daysSinceStart(now) % p.cycleDivisor()
}

// CurrentCycleWeek is the 1-based count of cycle repetitions so far. It is
// not a calendar week; a 4-day split reaches "week" 2 on its fifth day.
func (p *Plan) CurrentCycleWeek(now time.Time) int {
	return p.daysSinceStart(now)/p.cycleDivisor() + 1
}

// DateForDay is the calendar date the given day number falls on within the
// cycle repetition that contains now.
func (p *Plan) DateForDay(dayNumber int, now time.Time) time.Time {
	currentCycle := p.daysSinceStart(now) / p.cycleDivisor()
	daysToAdd := currentCycle*p.CycleDays() + (dayNumber - 1)
	return p.CreationDate.In(now.Location()).AddDate(0, 0, daysToAdd)
}

// TodayDay returns the day at today's cycle position, or nil for an empty plan.
func (p *Plan) TodayDay(now time.Time) *Day {
	days := p.SortedDays()
	pos := p.TodayCyclePosition(now)
	if pos >= len(days) {
		return nil
	}
	return days[pos]
}

// StartNewCycle re-anchors the plan at now and clears all completion state.
func (p *Plan) StartNewCycle(now time.Time) {
	p.CreationDate = now
	for i := range p.Days {
		for j := range p.Days[i].Exercises {
			p.Days[i].Exercises[j].IsCompleted = false
			p.Days[i].Exercises[j].LastCompletedDate = nil
		}
	}
}

// RenumberDays assigns contiguous day numbers 1..N preserving current order.
// It returns the days whose number changed.
func RenumberDays(days []Day) []*Day {
	order := make([]int, len(days))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return days[order[a]].DayNumber < days[order[b]].DayNumber })

	var changed []*Day
	for n, idx := range order {
		if days[idx].DayNumber != n+1 {
			days[idx].DayNumber = n + 1
			changed = append(changed, &days[idx])
		}
	}
	return changed
}

// UpdateStreakDays advances or resets the profile's streak based on whether
// the weekday-keyed day (Mon=1 .. Sun=7) is fully completed. Calling it more
// than once on the same day leaves the profile unchanged after the first call.
func UpdateStreakDays(profile *Profile, plan *Plan, now time.Time) {
	if profile == nil || plan == nil {
		return
	}
	today := StartOfDay(now)
	day := plan.DayByNumber(ISOWeekday(now))
	if day == nil {
		return
	}

	completedToday := profile.LastCompletedDate != nil && IsSameDay(today, *profile.LastCompletedDate)
	if day.AllCompleted() {
		if !completedToday {
			profile.StreakDays++
			profile.LastCompletedDate = &today
		}
	} else if profile.LastCheckDate != nil {
		if WholeDaysBetween(*profile.LastCheckDate, today) >= 2 && !completedToday {
			profile.StreakDays = 0
		}
	}
	profile.LastCheckDate = &today
}

// ResetIfNeeded clears a completion recorded on an earlier calendar day.
// It reports whether the exercise changed.
func (e *Exercise) ResetIfNeeded(now time.Time) bool {
	if e.LastCompletedDate == nil || IsSameDay(now, *e.LastCompletedDate) {
		return false
	}
	if !e.IsCompleted {
		return false
	}
	e.IsCompleted = false
	return true
}

// ToggleCompletion flips the completion flag. Marking done stamps the date
// and returns the log snapshot to append; un-marking returns nil.
func (e *Exercise) ToggleCompletion(now time.Time) *ExerciseLog {
	e.IsCompleted = !e.IsCompleted
	if !e.IsCompleted {
		return nil
	}
	e.LastCompletedDate = &now
	return &ExerciseLog{
		ExerciseID:   e.ID,
		Date:         now,
		ActualWeight: e.Weight,
		ActualSets:   e.Sets,
		ActualReps:   e.Reps,
	}
}
