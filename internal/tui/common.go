package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/taskgenius/internal/model"
)

// viewState represents the currently active view.
type viewState int

const (
	viewToday viewState = iota
	viewTasks
	viewTemplates
	viewAutomation
	viewReports
	viewSettings
)

var viewNames = []string{"Today", "Tasks", "Templates", "Automation", "Reports", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

// evalTickMsg drives the time-based automation check.
type evalTickMsg time.Time

type exportDoneMsg struct {
	path string
}

type onboardingDoneMsg struct{}

// prefsChangedMsg carries preferences saved from the settings view.
type prefsChangedMsg struct {
	prefs model.Preferences
}

type resetDoneMsg struct{}

func errStatus(prefix string, err error) statusMsg {
	return statusMsg{text: fmt.Sprintf("%s: %v", prefix, err), isError: true}
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// formatDue renders a due date relative to now.
func formatDue(due *time.Time, now time.Time) string {
	if due == nil {
		return ""
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	d := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, now.Location())
	switch days := int(d.Sub(today).Hours() / 24); {
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	case days == -1:
		return "yesterday"
	case days < 0:
		return fmt.Sprintf("%dd ago", -days)
	case days < 7:
		return due.Format("Mon")
	}
	return due.Format("Jan 02")
}

const dateLayout = "2006-01-02"

// parseDue accepts an empty string or YYYY-MM-DD in loc.
func parseDue(s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return nil, fmt.Errorf("due date must be YYYY-MM-DD")
	}
	return &t, nil
}

func splitTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
