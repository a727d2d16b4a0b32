package stats

import (
	"sort"
	"time"

	"github.com/sadopc/taskgenius/internal/model"
)

// Compute derives productivity statistics from a task snapshot. Days are
// calendar days in now's location.
func Compute(tasks []model.Task, now time.Time) model.ProductivityStats {
	st := model.ProductivityStats{
		TotalTasksCreated:    len(tasks),
		CompletionByCategory: map[string]int{},
		CompletionByPriority: map[string]int{},
	}

	var total time.Duration
	var timed int
	for _, t := range tasks {
		if !t.IsCompleted {
			continue
		}
		st.TotalTasksCompleted++
		st.CompletionByCategory[string(t.Category)]++
		st.CompletionByPriority[string(t.Priority)]++
		if t.CompletedAt != nil {
			total += t.CompletedAt.Sub(t.CreatedAt)
			timed++
		}
	}
	if timed > 0 {
		st.AverageCompletionTime = total / time.Duration(timed)
	}

	days := completionDays(tasks, now.Location())
	st.CurrentStreak = currentStreak(days, model.StartOfDay(now))
	st.LongestStreak = longestStreak(days)
	return st
}

// completionDays returns the distinct completion days, ascending.
func completionDays(tasks []model.Task, loc *time.Location) []time.Time {
	seen := map[time.Time]bool{}
	var days []time.Time
	for _, t := range tasks {
		if !t.IsCompleted || t.CompletedAt == nil {
			continue
		}
		d := model.StartOfDay(t.CompletedAt.In(loc))
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// currentStreak walks back from today. Each completion day must be the
// cursor or the day before it; the first gap ends the walk.
func currentStreak(days []time.Time, today time.Time) int {
	streak := 0
	cursor := today
	for i := len(days) - 1; i >= 0; i-- {
		d := days[i]
		if d.After(today) {
			continue
		}
		if !d.Equal(cursor) && !d.Equal(cursor.AddDate(0, 0, -1)) {
			break
		}
		streak++
		cursor = d
	}
	return streak
}

func longestStreak(days []time.Time) int {
	if len(days) == 0 {
		return 0
	}
	best, run := 0, 1
	for i := 1; i < len(days); i++ {
		if days[i].Equal(days[i-1].AddDate(0, 0, 1)) {
			run++
			continue
		}
		best = max(best, run)
		run = 1
	}
	return max(best, run)
}

// DayCount is the number of tasks completed on one day.
type DayCount struct {
	Date  time.Time
	Count int
}

// DailyCompletions buckets completions into days consecutive days
// starting at from's day. Days without completions are included with a
// zero count.
func DailyCompletions(tasks []model.Task, from time.Time, days int) []DayCount {
	start := model.StartOfDay(from)
	out := make([]DayCount, days)
	index := map[time.Time]int{}
	for i := range out {
		d := start.AddDate(0, 0, i)
		out[i].Date = d
		index[d] = i
	}
	for _, t := range tasks {
		if !t.IsCompleted || t.CompletedAt == nil {
			continue
		}
		if i, ok := index[model.StartOfDay(t.CompletedAt.In(from.Location()))]; ok {
			out[i].Count++
		}
	}
	return out
}
