package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/taskgenius/internal/model"
	"github.com/sadopc/taskgenius/internal/stats"
)

type reportMode int

const (
	reportWeek reportMode = iota
	reportMonth
)

func (m reportMode) days() int {
	if m == reportMonth {
		return 30
	}
	return 7
}

type reportsModel struct {
	deps   Deps
	width  int
	height int

	mode   reportMode
	offset int // periods back from today (0 = current)

	stats model.ProductivityStats
	days  []stats.DayCount
	err   error

	chart barchart.Model
}

func newReportsModel(d Deps) reportsModel {
	return reportsModel{
		deps:  d,
		chart: barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
	r.buildChart()
}

// refresh recomputes and caches the profile statistics and reloads the
// chart window.
func (r *reportsModel) refresh() {
	all := r.deps.Tasks.Tasks()
	r.stats, r.err = r.deps.Profile.UpdateStatistics(all)
	n := r.mode.days()
	from := r.deps.Now().AddDate(0, 0, 1-n*(r.offset+1))
	r.days = stats.DailyCompletions(all, from, n)
	r.buildChart()
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return r, nil
	}
	switch {
	case key.Matches(km, keys.Left):
		r.offset++
		r.refresh()
	case key.Matches(km, keys.Right):
		if r.offset > 0 {
			r.offset--
			r.refresh()
		}
	case key.Matches(km, keys.Tab):
		if r.mode == reportWeek {
			r.mode = reportMonth
		} else {
			r.mode = reportWeek
		}
		r.offset = 0
		r.refresh()
	}
	return r, nil
}

func (r *reportsModel) buildChart() {
	chartWidth := max(20, r.width-8)
	chartHeight := 10
	if r.height > 34 {
		chartHeight = 14
	}

	r.chart = barchart.New(chartWidth, chartHeight)
	if len(r.days) == 0 {
		return
	}

	barStyle := lipgloss.NewStyle().Foreground(colorPrimary)
	var bars []barchart.BarData
	for _, d := range r.days {
		label := d.Date.Format("Mon")
		if r.mode == reportMonth {
			label = d.Date.Format("02")
		}
		bars = append(bars, barchart.BarData{
			Label:  label,
			Values: []barchart.BarValue{{Name: "done", Value: float64(d.Count), Style: barStyle}},
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4

	weekTab := inactiveTabStyle.Render("7 days")
	monthTab := inactiveTabStyle.Render("30 days")
	if r.mode == reportWeek {
		weekTab = activeTabStyle.Render("7 days")
	} else {
		monthTab = activeTabStyle.Render("30 days")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, weekTab, monthTab)

	dateLabel := ""
	if len(r.days) > 0 {
		first, last := r.days[0].Date, r.days[len(r.days)-1].Date
		dateLabel = mutedStyle.Render(fmt.Sprintf("%s - %s", first.Format("Jan 02"), last.Format("Jan 02, 2006")))
	}

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ", modeTabs, "  ", dateLabel,
	)

	if r.err != nil {
		header += "\n" + errorStyle.Render("  could not save statistics: "+r.err.Error())
	}

	nav := mutedStyle.Render("  ←/→: navigate  tab: 7/30 days")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.renderSummary(), "", r.chart.View(), "", r.renderBreakdown(w), "", nav,
		),
	)
}

func (r reportsModel) renderSummary() string {
	s := r.stats
	cell := func(label, value string) string {
		return lipgloss.JoinVertical(lipgloss.Left, mutedStyle.Render(label), bigNumberStyle.Render(value))
	}
	avg := "-"
	if s.AverageCompletionTime > 0 {
		avg = formatDuration(s.AverageCompletionTime)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		cell("Created", fmt.Sprint(s.TotalTasksCreated)), "    ",
		cell("Completed", fmt.Sprint(s.TotalTasksCompleted)), "    ",
		cell("Rate", fmt.Sprintf("%.0f%%", s.CompletionRate()*100)), "    ",
		cell("Streak", fmt.Sprintf("%dd", s.CurrentStreak)), "    ",
		cell("Best", fmt.Sprintf("%dd", s.LongestStreak)), "    ",
		cell("Avg time", avg),
	)
}

// renderBreakdown lists completions per category and priority, largest
// first.
func (r reportsModel) renderBreakdown(w int) string {
	if r.stats.TotalTasksCompleted == 0 {
		return mutedStyle.Render("  No completed tasks yet")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-22s %6s", "Category", "Done")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 30))))
	for _, k := range byCount(r.stats.CompletionByCategory) {
		rows = append(rows, fmt.Sprintf("  %s %-20s %6d", categoryDot(model.Category(k)), k, r.stats.CompletionByCategory[k]))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-22s %6s", "Priority", "Done")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 30))))
	for _, k := range byCount(r.stats.CompletionByPriority) {
		rows = append(rows, fmt.Sprintf("  %s %6d", priorityStyle(model.Priority(k)).Render(fmt.Sprintf("%-22s", k)), r.stats.CompletionByPriority[k]))
	}
	return strings.Join(rows, "\n")
}

func byCount(m map[string]int) []string {
	ks := make([]string, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	sort.Slice(ks, func(i, j int) bool {
		if m[ks[i]] != m[ks[j]] {
			return m[ks[i]] > m[ks[j]]
		}
		return ks[i] < ks[j]
	})
	return ks
}
