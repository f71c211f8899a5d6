package models

// SubTask belongs to exactly one task. The project id is a
// denormalized copy of the parent task's project, kept so a subtask
// can be resolved to its project without loading the task.
type SubTask struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Priority    int      `json:"priority"`
	Completed   bool     `json:"completed"`
	TaskID      string   `json:"task_id"`
	ProjectID   string   `json:"project_id"`
	Labels      []string `json:"labels"`
	DueDate     *string  `json:"due_date,omitempty"`
	CompletedAt *string  `json:"completed_at,omitempty"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// NewSubTask creates a pending subtask with a fresh id.
func NewSubTask(title, taskID, projectID string, priority int, description string, dueDate *string, now string) *SubTask {
	return &SubTask{
		ID:          NewID(),
		Title:       title,
		Description: description,
		Priority:    priority,
		Completed:   false,
		TaskID:      taskID,
		ProjectID:   projectID,
		Labels:      []string{},
		DueDate:     dueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Toggle flips the completed flag and stamps or clears completed_at in
// the same mutation.
func (s *SubTask) Toggle(now string) {
	s.Completed = !s.Completed
	if s.Completed {
		s.CompletedAt = &now
	} else {
		s.CompletedAt = nil
	}
	s.UpdatedAt = now
}

// HasLabel reports whether the label id is attached to the subtask.
func (s *SubTask) HasLabel(labelID string) bool {
	return contains(s.Labels, labelID)
}

// AddLabel attaches a label id to the subtask.
func (s *SubTask) AddLabel(labelID, now string) {
	if contains(s.Labels, labelID) {
		return
	}
	s.Labels = append(s.Labels, labelID)
	s.UpdatedAt = now
}

// RemoveLabel detaches a label id from the subtask.
func (s *SubTask) RemoveLabel(labelID, now string) {
	if !contains(s.Labels, labelID) {
		return
	}
	s.Labels = remove(s.Labels, labelID)
	s.UpdatedAt = now
}
