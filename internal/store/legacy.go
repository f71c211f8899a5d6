package store

import (
	"encoding/json"
	"fmt"
	"os"
)

// LegacyTask is one entry of the old single-level todo file, a flat
// `{id: task}` JSON object with no projects, subtasks or labels.
type LegacyTask struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    int     `json:"priority"`
	Completed   bool    `json:"completed"`
	CreatedAt   string  `json:"created_at"`
	DueDate     *string `json:"due_date"`
}

// LoadLegacy reads a legacy flat todo file. Unlike Load this is an
// explicit, user-requested import, so failures are returned instead of
// swallowed.
func LoadLegacy(path string) (map[string]LegacyTask, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read legacy file: %w", err)
	}

	var tasks map[string]LegacyTask
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("parse legacy file: %w", err)
	}
	return tasks, nil
}
