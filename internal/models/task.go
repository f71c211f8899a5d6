package models

// Task belongs to exactly one project and owns the insertion-ordered
// list of its subtask ids. A task with subtasks derives its completed
// flag from them via UpdateCompletion; a task without subtasks is
// completed only by an explicit toggle or update.
type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Priority    int      `json:"priority"`
	Completed   bool     `json:"completed"`
	ProjectID   string   `json:"project_id"`
	Labels      []string `json:"labels"`
	SubtaskIDs  []string `json:"subtasks"`
	DueDate     *string  `json:"due_date,omitempty"`
	CompletedAt *string  `json:"completed_at,omitempty"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// NewTask creates a pending task with a fresh id.
func NewTask(title, projectID string, priority int, description string, dueDate *string, now string) *Task {
	return &Task{
		ID:          NewID(),
		Title:       title,
		Description: description,
		Priority:    priority,
		Completed:   false,
		ProjectID:   projectID,
		Labels:      []string{},
		SubtaskIDs:  []string{},
		DueDate:     dueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Toggle flips the completed flag and stamps or clears completed_at in
// the same mutation.
func (t *Task) Toggle(now string) {
	t.setCompleted(!t.Completed, now)
}

func (t *Task) setCompleted(completed bool, now string) {
	t.Completed = completed
	if completed {
		t.CompletedAt = &now
	} else {
		t.CompletedAt = nil
	}
	t.UpdatedAt = now
}

// AddSubtask registers a subtask id on the task. Duplicates are
// rejected.
func (t *Task) AddSubtask(subtaskID, now string) {
	if contains(t.SubtaskIDs, subtaskID) {
		return
	}
	t.SubtaskIDs = append(t.SubtaskIDs, subtaskID)
	t.UpdatedAt = now
}

// RemoveSubtask detaches a subtask id from the task.
func (t *Task) RemoveSubtask(subtaskID, now string) {
	if !contains(t.SubtaskIDs, subtaskID) {
		return
	}
	t.SubtaskIDs = remove(t.SubtaskIDs, subtaskID)
	t.UpdatedAt = now
}

// HasLabel reports whether the label id is attached to the task.
func (t *Task) HasLabel(labelID string) bool {
	return contains(t.Labels, labelID)
}

// AddLabel attaches a label id to the task.
func (t *Task) AddLabel(labelID, now string) {
	if contains(t.Labels, labelID) {
		return
	}
	t.Labels = append(t.Labels, labelID)
	t.UpdatedAt = now
}

// RemoveLabel detaches a label id from the task.
func (t *Task) RemoveLabel(labelID, now string) {
	if !contains(t.Labels, labelID) {
		return
	}
	t.Labels = remove(t.Labels, labelID)
	t.UpdatedAt = now
}

// UpdateCompletion reconciles the task's completed flag against its
// subtasks: with one or more subtasks, completed must equal "all
// subtasks completed". A task with no subtasks is left untouched.
// Returns true when the flag flipped.
func (t *Task) UpdateCompletion(subtasks map[string]*SubTask, now string) bool {
	if len(t.SubtaskIDs) == 0 {
		return false
	}
	all := true
	for _, id := range t.SubtaskIDs {
		st, ok := subtasks[id]
		if !ok || !st.Completed {
			all = false
			break
		}
	}
	if all == t.Completed {
		return false
	}
	t.setCompleted(all, now)
	return true
}

// Progress returns the percentage of the task's subtasks that are
// completed. A task with no subtasks reports 100 when completed and 0
// otherwise.
func (t *Task) Progress(subtasks map[string]*SubTask) float64 {
	if len(t.SubtaskIDs) == 0 {
		if t.Completed {
			return 100.0
		}
		return 0.0
	}
	completed := 0
	for _, id := range t.SubtaskIDs {
		if st, ok := subtasks[id]; ok && st.Completed {
			completed++
		}
	}
	return CalculateProgress(len(t.SubtaskIDs), completed)
}
