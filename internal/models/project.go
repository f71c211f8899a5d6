package models

// Project groups tasks under a name and free-form version string. It
// owns the insertion-ordered list of its task ids; the tasks themselves
// live in the manager's task map.
type Project struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description,omitempty"`
	TaskIDs     []string `json:"tasks"`
	Labels      []string `json:"labels"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// NewProject creates a project with a fresh id and both timestamps set
// to now.
func NewProject(name, version, description, now string) *Project {
	if version == "" {
		version = "1.0.0"
	}
	return &Project{
		ID:          NewID(),
		Name:        name,
		Version:     version,
		Description: description,
		TaskIDs:     []string{},
		Labels:      []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// AddTask registers a task id on the project. Duplicates are rejected.
func (p *Project) AddTask(taskID, now string) {
	if contains(p.TaskIDs, taskID) {
		return
	}
	p.TaskIDs = append(p.TaskIDs, taskID)
	p.UpdatedAt = now
}

// RemoveTask detaches a task id from the project.
func (p *Project) RemoveTask(taskID, now string) {
	if !contains(p.TaskIDs, taskID) {
		return
	}
	p.TaskIDs = remove(p.TaskIDs, taskID)
	p.UpdatedAt = now
}

// HasLabel reports whether the label id is attached to the project.
func (p *Project) HasLabel(labelID string) bool {
	return contains(p.Labels, labelID)
}

// AddLabel attaches a label id to the project.
func (p *Project) AddLabel(labelID, now string) {
	if contains(p.Labels, labelID) {
		return
	}
	p.Labels = append(p.Labels, labelID)
	p.UpdatedAt = now
}

// RemoveLabel detaches a label id from the project.
func (p *Project) RemoveLabel(labelID, now string) {
	if !contains(p.Labels, labelID) {
		return
	}
	p.Labels = remove(p.Labels, labelID)
	p.UpdatedAt = now
}

// Progress returns the percentage of the project's tasks that are
// completed, resolved against the given task map. A project with no
// tasks reports zero.
func (p *Project) Progress(tasks map[string]*Task) float64 {
	if len(p.TaskIDs) == 0 {
		return 0.0
	}
	completed := 0
	for _, id := range p.TaskIDs {
		if t, ok := tasks[id]; ok && t.Completed {
			completed++
		}
	}
	return CalculateProgress(len(p.TaskIDs), completed)
}
