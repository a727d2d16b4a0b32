package tasks

import (
	"sort"
	"strings"
	"time"

	"github.com/sadopc/taskgenius/internal/model"
)

// Filter selects tasks. A nil Category matches all categories; an empty
// Search matches everything.
type Filter struct {
	Category      *model.Category
	ShowCompleted bool
	Search        string
}

// Apply returns the tasks matching f in their original order.
func Apply(tasks []model.Task, f Filter) []model.Task {
	query := strings.ToLower(strings.TrimSpace(f.Search))
	var out []model.Task
	for _, t := range tasks {
		if f.Category != nil && t.Category != *f.Category {
			continue
		}
		if !f.ShowCompleted && t.IsCompleted {
			continue
		}
		if query != "" && !matches(t, query) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matches(t model.Task, query string) bool {
	if strings.Contains(strings.ToLower(t.Title), query) ||
		strings.Contains(strings.ToLower(t.Description), query) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

// Sort returns a stably sorted copy of tasks.
func Sort(tasks []model.Task, order model.SortOrder) []model.Task {
	out := append([]model.Task(nil), tasks...)

	var less func(a, b model.Task) bool
	switch order {
	case model.SortPriority:
		less = func(a, b model.Task) bool { return a.Priority.Rank() > b.Priority.Rank() }
	case model.SortCategory:
		less = func(a, b model.Task) bool { return a.Category < b.Category }
	case model.SortCreatedDate:
		less = func(a, b model.Task) bool { return a.CreatedAt.After(b.CreatedAt) }
	case model.SortAlphabetical:
		less = func(a, b model.Task) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	default:
		// Due date ascending, undated last.
		less = func(a, b model.Task) bool {
			switch {
			case a.DueDate == nil:
				return false
			case b.DueDate == nil:
				return true
			}
			return a.DueDate.Before(*b.DueDate)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func where(tasks []model.Task, keep func(model.Task) bool) []model.Task {
	var out []model.Task
	for _, t := range tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func Active(tasks []model.Task) []model.Task {
	return where(tasks, func(t model.Task) bool { return !t.IsCompleted })
}

func Completed(tasks []model.Task) []model.Task {
	return where(tasks, func(t model.Task) bool { return t.IsCompleted })
}

func Overdue(tasks []model.Task, now time.Time) []model.Task {
	return where(tasks, func(t model.Task) bool { return t.Overdue(now) })
}

func DueToday(tasks []model.Task, now time.Time) []model.Task {
	return where(tasks, func(t model.Task) bool { return t.DueToday(now) })
}

func Upcoming(tasks []model.Task, now time.Time) []model.Task {
	return where(tasks, func(t model.Task) bool { return t.Upcoming(now) })
}

// ByCategory returns the incomplete tasks in c.
func ByCategory(tasks []model.Task, c model.Category) []model.Task {
	return where(tasks, func(t model.Task) bool { return t.Category == c && !t.IsCompleted })
}
