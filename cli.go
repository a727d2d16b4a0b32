package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/sadopc/taskgenius/internal/automation"
	"github.com/sadopc/taskgenius/internal/config"
	"github.com/sadopc/taskgenius/internal/export"
	"github.com/sadopc/taskgenius/internal/model"
	"github.com/sadopc/taskgenius/internal/tasks"
	"github.com/sadopc/taskgenius/internal/tui"
)

type rootFlags struct {
	config string
	db     string
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	cmd := &cobra.Command{
		Use:           "taskgenius",
		Short:         "Task manager with automation rules and productivity stats",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(f)
		},
	}
	cmd.PersistentFlags().StringVar(&f.config, "config", config.DefaultPath(), "config file")
	cmd.PersistentFlags().StringVar(&f.db, "db", "", "database file (overrides config)")

	cmd.AddCommand(
		addCmd(f),
		listCmd(f),
		doneCmd(f),
		statsCmd(f),
		exportCmd(f),
		rulesCmd(f),
		runCmd(f),
		configCmd(f),
	)
	return cmd
}

// open loads config and stores for a headless command. Rule
// notifications are printed to stderr.
func (f *rootFlags) open() (*env, error) {
	cfg, err := loadConfig(f.config, f.db)
	if err != nil {
		return nil, err
	}
	logger := log.New(os.Stderr, "taskgenius: ", 0)
	return openEnv(cfg, stderrNotifier(cfg.Notifications), logger)
}

func runTUI(f *rootFlags) error {
	cfg, err := loadConfig(f.config, f.db)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	logFile, err := tea.LogToFile(cfg.LogFile, "taskgenius")
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logFile.Close()

	inbox := &automation.Recorder{}
	sink := &automation.LogNotifier{Logger: log.Default()}
	e, err := openEnv(cfg, automation.Multi{inbox, sink}, log.Default())
	if err != nil {
		return err
	}
	defer e.Close()
	sink.Enabled = e.profile.Profile().Preferences.NotificationsEnabled
	e.evaluator.Attach()

	exportDir, err := os.Getwd()
	if err != nil {
		exportDir = config.Dir()
	}

	app := tui.NewApp(tui.Deps{
		Tasks:     e.tasks,
		Rules:     e.rules,
		Profile:   e.profile,
		Evaluator: e.evaluator,
		Inbox:     inbox,
		Notifier:  sink,
		ExportDir: exportDir,
	})
	log.Printf("started, db=%s", cfg.DBPath)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func addCmd(f *rootFlags) *cobra.Command {
	var priority, category, due, tags, desc string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := f.open()
			if err != nil {
				return err
			}
			defer e.Close()
			e.evaluator.Attach()

			prefs := e.profile.Profile().Preferences
			t := model.NewTask(strings.Join(args, " "), desc, time.Now())
			t.Priority = prefs.DefaultTaskPriority
			t.Category = prefs.DefaultTaskCategory
			if priority != "" {
				p, ok := oneOf(model.Priorities, priority)
				if !ok {
					return fmt.Errorf("unknown priority %q", priority)
				}
				t.Priority = p
			}
			if category != "" {
				c, ok := oneOf(model.Categories, category)
				if !ok {
					return fmt.Errorf("unknown category %q", category)
				}
				t.Category = c
			}
			if due != "" {
				d, err := time.ParseInLocation("2006-01-02", due, time.Local)
				if err != nil {
					return fmt.Errorf("due date must be YYYY-MM-DD")
				}
				t.DueDate = &d
			}
			for _, tag := range strings.Split(tags, ",") {
				if tag = strings.TrimSpace(tag); tag != "" {
					t.Tags = append(t.Tags, tag)
				}
			}

			if err := e.tasks.Add(t); err != nil {
				return err
			}
			fmt.Printf("Added %s  %s\n", shortID(t.ID), t.Title)
			return nil
		},
	}
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Low, Medium, High or Urgent")
	cmd.Flags().StringVarP(&category, "category", "c", "", "task category")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&tags, "tags", "t", "", "comma-separated tags")
	cmd.Flags().StringVarP(&desc, "description", "d", "", "task description")
	return cmd
}

// oneOf matches s against names case-insensitively.
func oneOf[T ~string](names []T, s string) (T, bool) {
	for _, n := range names {
		if strings.EqualFold(string(n), s) {
			return n, true
		}
	}
	return "", false
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func listCmd(f *rootFlags) *cobra.Command {
	var all bool
	var category, search, sortBy string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := f.open()
			if err != nil {
				return err
			}
			defer e.Close()

			filter := tasks.Filter{ShowCompleted: all, Search: search}
			if category != "" {
				c, ok := oneOf(model.Categories, category)
				if !ok {
					return fmt.Errorf("unknown category %q", category)
				}
				filter.Category = &c
			}
			order := e.profile.Profile().Preferences.SortOrder
			if sortBy != "" {
				order = model.SortOrder(sortBy)
			}
			list := tasks.Sort(tasks.Apply(e.tasks.Tasks(), filter), order)
			if len(list) == 0 {
				fmt.Println("No tasks.")
				return nil
			}

			now := time.Now()
			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("ID", "", "Title", "Priority", "Category", "Due")
			for _, task := range list {
				check := " "
				if task.IsCompleted {
					check = "✓"
				}
				due := ""
				if task.DueDate != nil {
					due = task.DueDate.Format("2006-01-02")
					if task.Overdue(now) {
						due += " !"
					}
				}
				t.Row(shortID(task.ID), check, task.Title, string(task.Priority), string(task.Category), due)
			}
			fmt.Println(t.String())
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include completed tasks")
	cmd.Flags().StringVarP(&category, "category", "c", "", "only this category")
	cmd.Flags().StringVarP(&search, "search", "s", "", "match title, description or tags")
	cmd.Flags().StringVar(&sortBy, "sort", "", `sort order ("Due Date", "Priority", "Category", "Created Date", "Alphabetical")`)
	return cmd
}

var errAmbiguous = errors.New("ambiguous id")

// findByPrefix returns the single ID in ids starting with prefix.
func findByPrefix(ids []string, prefix string) (string, error) {
	var match string
	for _, id := range ids {
		if strings.HasPrefix(id, prefix) {
			if match != "" {
				return "", fmt.Errorf("%w: %q", errAmbiguous, prefix)
			}
			match = id
		}
	}
	if match == "" {
		return "", fmt.Errorf("nothing matches %q", prefix)
	}
	return match, nil
}

func doneCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task's completion (id prefix is enough)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := f.open()
			if err != nil {
				return err
			}
			defer e.Close()
			e.evaluator.Attach()

			var ids []string
			for _, t := range e.tasks.Tasks() {
				ids = append(ids, t.ID)
			}
			id, err := findByPrefix(ids, args[0])
			if err != nil {
				return err
			}
			if err := e.tasks.ToggleCompletion(id); err != nil {
				return err
			}
			t, _ := e.tasks.Task(id)
			state := "Reopened"
			if t.IsCompleted {
				state = "Completed"
			}
			fmt.Printf("%s %s\n", state, t.Title)
			return nil
		},
	}
}

func statsCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show productivity statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := f.open()
			if err != nil {
				return err
			}
			defer e.Close()

			s, err := e.profile.UpdateStatistics(e.tasks.Tasks())
			if err != nil {
				return err
			}
			fmt.Println("Productivity")
			fmt.Println(strings.Repeat("=", 40))
			fmt.Printf("  Created:         %d\n", s.TotalTasksCreated)
			fmt.Printf("  Completed:       %d\n", s.TotalTasksCompleted)
			fmt.Printf("  Completion rate: %.0f%%\n", s.CompletionRate()*100)
			fmt.Printf("  Current streak:  %d days\n", s.CurrentStreak)
			fmt.Printf("  Longest streak:  %d days\n", s.LongestStreak)
			if s.AverageCompletionTime > 0 {
				fmt.Printf("  Avg. time:       %s\n", s.AverageCompletionTime.Round(time.Minute))
			}
			if len(s.CompletionByCategory) > 0 {
				fmt.Println("\nBy category:")
				for _, c := range model.Categories {
					if n := s.CompletionByCategory[string(c)]; n > 0 {
						fmt.Printf("  %-14s %d\n", c, n)
					}
				}
			}
			if len(s.CompletionByPriority) > 0 {
				fmt.Println("\nBy priority:")
				for _, p := range model.Priorities {
					if n := s.CompletionByPriority[string(p)]; n > 0 {
						fmt.Printf("  %-14s %d\n", p, n)
					}
				}
			}
			return nil
		},
	}
}

func exportCmd(f *rootFlags) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export data as JSON (everything) or CSV (tasks)",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := f.open()
			if err != nil {
				return err
			}
			defer e.Close()

			now := time.Now()
			date := now.Format("2006-01-02")
			switch format {
			case "json":
				if out == "" {
					out = fmt.Sprintf("taskgenius-export-%s.json", date)
				}
				b := export.NewBundle(e.profile.Profile(), e.tasks.Tasks(), e.tasks.Templates(), e.rules.Rules(), now)
				err = export.ToJSON(b, out)
			case "csv":
				if out == "" {
					out = fmt.Sprintf("taskgenius-tasks-%s.csv", date)
				}
				err = export.TasksToCSV(e.tasks.Tasks(), out)
			default:
				return fmt.Errorf("unknown format %q (want json or csv)", format)
			}
			if err != nil {
				return err
			}
			fmt.Printf("Exported to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "json or csv")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	return cmd
}

func rulesCmd(f *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List automation rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := f.open()
			if err != nil {
				return err
			}
			defer e.Close()

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("ID", "On", "Name", "When", "Then")
			for _, r := range e.rules.Rules() {
				on := "no"
				if r.IsActive {
					on = "yes"
				}
				t.Row(shortID(r.ID), on, r.Name, string(r.TriggerType), string(r.ActionType))
			}
			fmt.Println(t.String())
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "toggle <id>",
		Short: "Pause or resume a rule (id prefix is enough)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := f.open()
			if err != nil {
				return err
			}
			defer e.Close()

			var ids []string
			for _, r := range e.rules.Rules() {
				ids = append(ids, r.ID)
			}
			id, err := findByPrefix(ids, args[0])
			if err != nil {
				return err
			}
			if err := e.rules.ToggleActive(id); err != nil {
				return err
			}
			r, _ := e.rules.Rule(id)
			state := "Paused"
			if r.IsActive {
				state = "Resumed"
			}
			fmt.Printf("%s %s\n", state, r.Name)
			return nil
		},
	})
	return cmd
}

func runCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run automation rules headless until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := f.open()
			if err != nil {
				return err
			}
			defer e.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			e.evaluator.Attach()
			log.Printf("checking %d active rules every %s", len(e.rules.Active()), e.evaluator.Interval())
			return e.evaluator.Run(ctx)
		},
	}
}

func configCmd(f *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(f.config, f.db)
			if err != nil {
				return err
			}
			fmt.Printf("config:            %s\n", f.config)
			fmt.Printf("db_path:           %s\n", cfg.DBPath)
			fmt.Printf("log_file:          %s\n", cfg.LogFile)
			fmt.Printf("tick_interval:     %s\n", cfg.TickInterval)
			fmt.Printf("completion_window: %s\n", cfg.CompletionWindow)
			fmt.Printf("notifications:     %t\n", cfg.Notifications)
			return nil
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(f.config); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", f.config)
			}
			if err := config.WriteDefault(f.config); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", f.config)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)
	return cmd
}
