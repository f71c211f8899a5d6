package manager

import (
	"sort"
	"strings"

	"taskdesk/internal/models"
)

// TaskCreateOptions are parameters for creating a task.
type TaskCreateOptions struct {
	Title       string
	ProjectID   string
	Priority    int // defaults to low when zero
	Description string
	DueDate     *string
	Labels      []string
}

// CreateTask creates a task under an existing project and persists.
// An unknown project id is rejected rather than producing an orphan
// task.
func (m *Manager) CreateTask(opts TaskCreateOptions) (*models.Task, error) {
	if strings.TrimSpace(opts.Title) == "" {
		return nil, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if opts.Priority == 0 {
		opts.Priority = models.PriorityLow
	}
	if !models.ValidPriority(opts.Priority) {
		return nil, &ValidationError{Field: "priority", Reason: "must be 1 (high), 2 (medium) or 3 (low)"}
	}
	project, ok := m.projects[opts.ProjectID]
	if !ok {
		return nil, &NotFoundError{Kind: "project", ID: opts.ProjectID}
	}

	now := m.timestamp()
	task := models.NewTask(opts.Title, opts.ProjectID, opts.Priority, opts.Description, opts.DueDate, now)
	task.Labels = m.validLabels(opts.Labels)

	m.tasks[task.ID] = task
	project.AddTask(task.ID, now)

	m.log.Debug("task created", "id", task.ID, "project", opts.ProjectID, "title", task.Title)
	if err := m.persist(); err != nil {
		return nil, err
	}
	return task, nil
}

// GetTask looks up a task by id.
func (m *Manager) GetTask(id string) (*models.Task, bool) {
	t, ok := m.tasks[id]
	return t, ok
}

// GetTasksByProject returns the project's tasks ordered by priority
// (high first), then oldest first.
func (m *Manager) GetTasksByProject(projectID string) []*models.Task {
	var tasks []*models.Task
	for _, t := range m.tasks {
		if t.ProjectID == projectID {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Priority != tasks[j].Priority {
			return tasks[i].Priority < tasks[j].Priority
		}
		if tasks[i].CreatedAt != tasks[j].CreatedAt {
			return tasks[i].CreatedAt < tasks[j].CreatedAt
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks
}

// TaskUpdate lists the fields an update may change. Nil fields are
// left untouched; a non-nil Labels replaces the whole label list.
// ClearDueDate removes the due date regardless of DueDate.
type TaskUpdate struct {
	Title        *string
	Description  *string
	Priority     *int
	Completed    *bool
	DueDate      *string
	ClearDueDate bool
	Labels       []string
}

// UpdateTask applies the update, refreshes updated_at, and keeps
// completed_at in step with any completed change. Every field is
// validated before any is applied, so a rejected update leaves the
// task untouched.
func (m *Manager) UpdateTask(id string, upd TaskUpdate) error {
	task, ok := m.tasks[id]
	if !ok {
		return &NotFoundError{Kind: "task", ID: id}
	}
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if upd.Priority != nil && !models.ValidPriority(*upd.Priority) {
		return &ValidationError{Field: "priority", Reason: "must be 1 (high), 2 (medium) or 3 (low)"}
	}

	now := m.timestamp()
	if upd.Title != nil {
		task.Title = *upd.Title
	}
	if upd.Description != nil {
		task.Description = *upd.Description
	}
	if upd.Priority != nil {
		task.Priority = *upd.Priority
	}
	if upd.Completed != nil && *upd.Completed != task.Completed {
		task.Toggle(now)
	}
	if upd.ClearDueDate {
		task.DueDate = nil
	} else if upd.DueDate != nil {
		task.DueDate = upd.DueDate
	}
	if upd.Labels != nil {
		task.Labels = m.validLabels(upd.Labels)
	}
	task.UpdatedAt = now

	m.log.Debug("task updated", "id", id)
	return m.persist()
}

// ToggleTask flips the completed flag of a task. Meaningful for tasks
// without subtasks; a task with subtasks will be re-reconciled on the
// next subtask mutation.
func (m *Manager) ToggleTask(id string) error {
	task, ok := m.tasks[id]
	if !ok {
		return &NotFoundError{Kind: "task", ID: id}
	}
	task.Toggle(m.timestamp())
	m.log.Debug("task toggled", "id", id, "completed", task.Completed)
	return m.persist()
}

// DeleteTask removes the task, all its subtasks, and its registration
// on the parent project, then persists once.
func (m *Manager) DeleteTask(id string) error {
	if _, ok := m.tasks[id]; !ok {
		return &NotFoundError{Kind: "task", ID: id}
	}
	m.removeTask(id, m.timestamp())
	m.log.Debug("task deleted", "id", id)
	return m.persist()
}

// removeTask is the in-memory cascade primitive shared by DeleteTask
// and DeleteProject. It does not persist.
func (m *Manager) removeTask(id, now string) {
	task, ok := m.tasks[id]
	if !ok {
		return
	}
	for _, subtaskID := range task.SubtaskIDs {
		delete(m.subtasks, subtaskID)
	}
	if project, ok := m.projects[task.ProjectID]; ok {
		project.RemoveTask(id, now)
	}
	delete(m.tasks, id)
}

// GetTaskProgress returns the completed percentage of the task's
// subtasks (or 100/0 from its own flag when it has none), or zero for
// an unknown task.
func (m *Manager) GetTaskProgress(id string) float64 {
	if task, ok := m.tasks[id]; ok {
		return task.Progress(m.subtasks)
	}
	return 0.0
}

// AddLabelToTask attaches an existing label to a task.
func (m *Manager) AddLabelToTask(taskID, labelID string) error {
	task, ok := m.tasks[taskID]
	if !ok {
		return &NotFoundError{Kind: "task", ID: taskID}
	}
	if _, ok := m.labels[labelID]; !ok {
		return &NotFoundError{Kind: "label", ID: labelID}
	}
	task.AddLabel(labelID, m.timestamp())
	return m.persist()
}

// RemoveLabelFromTask detaches a label from a task.
func (m *Manager) RemoveLabelFromTask(taskID, labelID string) error {
	task, ok := m.tasks[taskID]
	if !ok {
		return &NotFoundError{Kind: "task", ID: taskID}
	}
	task.RemoveLabel(labelID, m.timestamp())
	return m.persist()
}
