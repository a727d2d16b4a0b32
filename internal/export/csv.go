package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sadopc/taskgenius/internal/model"
)

func TasksToCSV(tasks []model.Task, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Title", "Category", "Priority", "Status", "Due", "Created", "Completed", "Time to complete", "Tags"}); err != nil {
		return err
	}

	for _, t := range tasks {
		status := "Open"
		completed, took := "", ""
		if t.IsCompleted {
			status = "Done"
		}
		if t.CompletedAt != nil {
			completed = t.CompletedAt.Local().Format(time.RFC3339)
			took = formatDuration(t.CompletedAt.Sub(t.CreatedAt))
		}
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.Local().Format(time.RFC3339)
		}

		row := []string{
			t.ID,
			t.Title,
			string(t.Category),
			string(t.Priority),
			status,
			due,
			t.CreatedAt.Local().Format(time.RFC3339),
			completed,
			took,
			strings.Join(t.Tags, "; "),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatDuration(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
