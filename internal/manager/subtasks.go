package manager

import (
	"sort"
	"strings"

	"taskdesk/internal/models"
)

// SubTaskCreateOptions are parameters for creating a subtask. The
// project id is copied from the parent task, not supplied.
type SubTaskCreateOptions struct {
	Title       string
	TaskID      string
	Priority    int // defaults to low when zero
	Description string
	DueDate     *string
	Labels      []string
}

// CreateSubTask creates a subtask under an existing task, registers it
// there, reconciles the parent's completion and persists.
func (m *Manager) CreateSubTask(opts SubTaskCreateOptions) (*models.SubTask, error) {
	if strings.TrimSpace(opts.Title) == "" {
		return nil, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if opts.Priority == 0 {
		opts.Priority = models.PriorityLow
	}
	if !models.ValidPriority(opts.Priority) {
		return nil, &ValidationError{Field: "priority", Reason: "must be 1 (high), 2 (medium) or 3 (low)"}
	}
	task, ok := m.tasks[opts.TaskID]
	if !ok {
		return nil, &NotFoundError{Kind: "task", ID: opts.TaskID}
	}

	now := m.timestamp()
	subtask := models.NewSubTask(opts.Title, task.ID, task.ProjectID, opts.Priority, opts.Description, opts.DueDate, now)
	subtask.Labels = m.validLabels(opts.Labels)

	m.subtasks[subtask.ID] = subtask
	task.AddSubtask(subtask.ID, now)
	task.UpdateCompletion(m.subtasks, now)

	m.log.Debug("subtask created", "id", subtask.ID, "task", task.ID, "title", subtask.Title)
	if err := m.persist(); err != nil {
		return nil, err
	}
	return subtask, nil
}

// GetSubTask looks up a subtask by id.
func (m *Manager) GetSubTask(id string) (*models.SubTask, bool) {
	st, ok := m.subtasks[id]
	return st, ok
}

// GetSubtasksByTask returns the task's subtasks, oldest first.
func (m *Manager) GetSubtasksByTask(taskID string) []*models.SubTask {
	var subtasks []*models.SubTask
	for _, st := range m.subtasks {
		if st.TaskID == taskID {
			subtasks = append(subtasks, st)
		}
	}
	sort.Slice(subtasks, func(i, j int) bool {
		if subtasks[i].CreatedAt != subtasks[j].CreatedAt {
			return subtasks[i].CreatedAt < subtasks[j].CreatedAt
		}
		return subtasks[i].ID < subtasks[j].ID
	})
	return subtasks
}

// SubTaskUpdate lists the fields an update may change, mirroring
// TaskUpdate.
type SubTaskUpdate struct {
	Title        *string
	Description  *string
	Priority     *int
	Completed    *bool
	DueDate      *string
	ClearDueDate bool
	Labels       []string
}

// UpdateSubTask applies the update and always re-reconciles the parent
// task's completion afterwards, so a completed change can never leave
// the parent out of step.
func (m *Manager) UpdateSubTask(id string, upd SubTaskUpdate) error {
	subtask, ok := m.subtasks[id]
	if !ok {
		return &NotFoundError{Kind: "subtask", ID: id}
	}
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if upd.Priority != nil && !models.ValidPriority(*upd.Priority) {
		return &ValidationError{Field: "priority", Reason: "must be 1 (high), 2 (medium) or 3 (low)"}
	}

	now := m.timestamp()
	if upd.Title != nil {
		subtask.Title = *upd.Title
	}
	if upd.Description != nil {
		subtask.Description = *upd.Description
	}
	if upd.Priority != nil {
		subtask.Priority = *upd.Priority
	}
	if upd.Completed != nil && *upd.Completed != subtask.Completed {
		subtask.Toggle(now)
	}
	if upd.ClearDueDate {
		subtask.DueDate = nil
	} else if upd.DueDate != nil {
		subtask.DueDate = upd.DueDate
	}
	if upd.Labels != nil {
		subtask.Labels = m.validLabels(upd.Labels)
	}
	subtask.UpdatedAt = now

	m.reconcileParent(subtask.TaskID, now)
	m.log.Debug("subtask updated", "id", id)
	return m.persist()
}

// ToggleSubTask flips the subtask's completed flag and reconciles the
// parent task.
func (m *Manager) ToggleSubTask(id string) error {
	subtask, ok := m.subtasks[id]
	if !ok {
		return &NotFoundError{Kind: "subtask", ID: id}
	}
	now := m.timestamp()
	subtask.Toggle(now)
	m.reconcileParent(subtask.TaskID, now)
	m.log.Debug("subtask toggled", "id", id, "completed", subtask.Completed)
	return m.persist()
}

// DeleteSubTask detaches the subtask from its parent, removes it, and
// reconciles the parent's completion.
func (m *Manager) DeleteSubTask(id string) error {
	subtask, ok := m.subtasks[id]
	if !ok {
		return &NotFoundError{Kind: "subtask", ID: id}
	}

	now := m.timestamp()
	if task, ok := m.tasks[subtask.TaskID]; ok {
		task.RemoveSubtask(id, now)
	}
	delete(m.subtasks, id)
	m.reconcileParent(subtask.TaskID, now)

	m.log.Debug("subtask deleted", "id", id)
	return m.persist()
}

// reconcileParent recomputes the parent task's completed flag from its
// remaining subtasks. In-memory only; callers persist.
func (m *Manager) reconcileParent(taskID, now string) {
	task, ok := m.tasks[taskID]
	if !ok {
		return
	}
	if task.UpdateCompletion(m.subtasks, now) {
		m.log.Debug("task completion reconciled", "id", taskID, "completed", task.Completed)
	}
}

// AddLabelToSubtask attaches an existing label to a subtask.
func (m *Manager) AddLabelToSubtask(subtaskID, labelID string) error {
	subtask, ok := m.subtasks[subtaskID]
	if !ok {
		return &NotFoundError{Kind: "subtask", ID: subtaskID}
	}
	if _, ok := m.labels[labelID]; !ok {
		return &NotFoundError{Kind: "label", ID: labelID}
	}
	subtask.AddLabel(labelID, m.timestamp())
	return m.persist()
}

// RemoveLabelFromSubtask detaches a label from a subtask.
func (m *Manager) RemoveLabelFromSubtask(subtaskID, labelID string) error {
	subtask, ok := m.subtasks[subtaskID]
	if !ok {
		return &NotFoundError{Kind: "subtask", ID: subtaskID}
	}
	subtask.RemoveLabel(labelID, m.timestamp())
	return m.persist()
}
