package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/taskgenius/internal/model"
)

// Bundle is the full data export.
type Bundle struct {
	Profile    model.UserProfile      `json:"profile"`
	Tasks      []model.Task           `json:"tasks"`
	Templates  []model.TaskTemplate   `json:"templates"`
	Rules      []model.AutomationRule `json:"rules"`
	ExportDate string                 `json:"exportDate"`
}

func NewBundle(p model.UserProfile, tasks []model.Task, templates []model.TaskTemplate, rules []model.AutomationRule, now time.Time) Bundle {
	if tasks == nil {
		tasks = []model.Task{}
	}
	if templates == nil {
		templates = []model.TaskTemplate{}
	}
	if rules == nil {
		rules = []model.AutomationRule{}
	}
	return Bundle{
		Profile:    p,
		Tasks:      tasks,
		Templates:  templates,
		Rules:      rules,
		ExportDate: now.UTC().Format(time.RFC3339),
	}
}

// JSON renders the bundle indented with two spaces.
func (b Bundle) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return data, nil
}

func ToJSON(b Bundle, path string) error {
	data, err := b.JSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
