// Package manager is the façade that owns all in-memory entity
// mappings and the only writer of the backing JSON document. Every
// mutating operation ends with a full persist; cross-entity rules
// (cascading deletes, label reference cleanup, completion
// reconciliation) live here and nowhere else.
package manager

import (
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"taskdesk/internal/models"
	"taskdesk/internal/store"
)

// Manager holds the four entity mappings loaded from one document.
type Manager struct {
	store *store.Store
	log   *log.Logger

	// Now supplies timestamps; override in tests for a fixed clock.
	Now func() time.Time

	labels   map[string]*models.Label
	projects map[string]*models.Project
	tasks    map[string]*models.Task
	subtasks map[string]*models.SubTask
}

// New loads the document from the store and builds a manager over it.
func New(st *store.Store, logger *log.Logger) *Manager {
	doc := st.Load()
	return &Manager{
		store:    st,
		log:      logger,
		Now:      time.Now,
		labels:   doc.Labels,
		projects: doc.Projects,
		tasks:    doc.Tasks,
		subtasks: doc.Subtasks,
	}
}

func (m *Manager) timestamp() string {
	return models.Timestamp(m.Now())
}

// persist writes the full four-mapping document back to disk.
func (m *Manager) persist() error {
	return m.store.Save(&store.Document{
		Labels:   m.labels,
		Projects: m.projects,
		Tasks:    m.tasks,
		Subtasks: m.subtasks,
	})
}

// validLabels filters ids down to those present in the label mapping.
// Unknown ids are dropped silently.
func (m *Manager) validLabels(ids []string) []string {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := m.labels[id]; ok {
			valid = append(valid, id)
		}
	}
	return valid
}

// Statistics are aggregate counts and completion rates across the
// whole document.
type Statistics struct {
	Projects              int
	Tasks                 int
	Subtasks              int
	Labels                int
	CompletedTasks        int
	CompletedSubtasks     int
	TaskCompletionRate    float64
	SubtaskCompletionRate float64
}

// GetStatistics computes aggregate counts over all mappings.
func (m *Manager) GetStatistics() Statistics {
	s := Statistics{
		Projects: len(m.projects),
		Tasks:    len(m.tasks),
		Subtasks: len(m.subtasks),
		Labels:   len(m.labels),
	}
	for _, t := range m.tasks {
		if t.Completed {
			s.CompletedTasks++
		}
	}
	for _, st := range m.subtasks {
		if st.Completed {
			s.CompletedSubtasks++
		}
	}
	s.TaskCompletionRate = models.CalculateProgress(s.Tasks, s.CompletedTasks)
	s.SubtaskCompletionRate = models.CalculateProgress(s.Subtasks, s.CompletedSubtasks)
	return s
}

// ImportLegacyTasks reads an old flat `{id: task}` todo file and
// re-creates each entry as a task of the given project, preserving
// titles, priorities, completion state, creation times and due dates.
// Returns the number of tasks imported.
func (m *Manager) ImportLegacyTasks(path, projectID string) (int, error) {
	project, ok := m.projects[projectID]
	if !ok {
		return 0, &NotFoundError{Kind: "project", ID: projectID}
	}

	legacy, err := store.LoadLegacy(path)
	if err != nil {
		return 0, err
	}

	now := m.timestamp()
	ids := make([]string, 0, len(legacy))
	for id := range legacy {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		lt := legacy[id]
		created := lt.CreatedAt
		if created == "" {
			created = now
		}
		priority := lt.Priority
		if !models.ValidPriority(priority) {
			priority = models.PriorityLow
		}

		task := models.NewTask(lt.Title, projectID, priority, lt.Description, lt.DueDate, created)
		task.UpdatedAt = now
		if lt.Completed {
			// The flat format had no completion stamp; the creation
			// time is the best available one.
			task.Completed = true
			task.CompletedAt = &created
		}
		m.tasks[task.ID] = task
		project.AddTask(task.ID, now)
	}

	m.log.Info("imported legacy tasks", "path", path, "project", projectID, "count", len(ids))
	if err := m.persist(); err != nil {
		return 0, err
	}
	return len(ids), nil
}
