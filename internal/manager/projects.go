package manager

import (
	"sort"
	"strings"

	"taskdesk/internal/models"
)

// ProjectCreateOptions are parameters for creating a project.
type ProjectCreateOptions struct {
	Name        string
	Version     string
	Description string
	Labels      []string
}

// CreateProject creates and persists a new project. Label ids that do
// not resolve are dropped silently.
func (m *Manager) CreateProject(opts ProjectCreateOptions) (*models.Project, error) {
	if strings.TrimSpace(opts.Name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	now := m.timestamp()
	project := models.NewProject(opts.Name, opts.Version, opts.Description, now)
	project.Labels = m.validLabels(opts.Labels)

	m.projects[project.ID] = project
	m.log.Debug("project created", "id", project.ID, "name", project.Name)
	if err := m.persist(); err != nil {
		return nil, err
	}
	return project, nil
}

// GetProject looks up a project by id.
func (m *Manager) GetProject(id string) (*models.Project, bool) {
	p, ok := m.projects[id]
	return p, ok
}

// GetAllProjects returns every project, oldest first.
func (m *Manager) GetAllProjects() []*models.Project {
	projects := make([]*models.Project, 0, len(m.projects))
	for _, p := range m.projects {
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool {
		if projects[i].CreatedAt != projects[j].CreatedAt {
			return projects[i].CreatedAt < projects[j].CreatedAt
		}
		return projects[i].ID < projects[j].ID
	})
	return projects
}

// ProjectUpdate lists the fields an update may change. Nil fields are
// left untouched; a non-nil Labels replaces the whole label list after
// validating each id.
type ProjectUpdate struct {
	Name        *string
	Version     *string
	Description *string
	Labels      []string
}

// UpdateProject applies the update and refreshes updated_at.
func (m *Manager) UpdateProject(id string, upd ProjectUpdate) error {
	project, ok := m.projects[id]
	if !ok {
		return &NotFoundError{Kind: "project", ID: id}
	}

	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	if upd.Name != nil {
		project.Name = *upd.Name
	}
	if upd.Version != nil {
		project.Version = *upd.Version
	}
	if upd.Description != nil {
		project.Description = *upd.Description
	}
	if upd.Labels != nil {
		project.Labels = m.validLabels(upd.Labels)
	}
	project.UpdatedAt = m.timestamp()

	m.log.Debug("project updated", "id", id)
	return m.persist()
}

// DeleteProject removes the project and cascades to every task it
// references (and transitively their subtasks), then persists once.
func (m *Manager) DeleteProject(id string) error {
	project, ok := m.projects[id]
	if !ok {
		return &NotFoundError{Kind: "project", ID: id}
	}

	now := m.timestamp()
	for _, taskID := range append([]string(nil), project.TaskIDs...) {
		m.removeTask(taskID, now)
	}
	delete(m.projects, id)

	m.log.Debug("project deleted", "id", id, "name", project.Name)
	return m.persist()
}

// GetProjectProgress returns the completed percentage of the project's
// tasks, or zero for an unknown project.
func (m *Manager) GetProjectProgress(id string) float64 {
	if project, ok := m.projects[id]; ok {
		return project.Progress(m.tasks)
	}
	return 0.0
}

// AddLabelToProject attaches an existing label to a project.
func (m *Manager) AddLabelToProject(projectID, labelID string) error {
	project, ok := m.projects[projectID]
	if !ok {
		return &NotFoundError{Kind: "project", ID: projectID}
	}
	if _, ok := m.labels[labelID]; !ok {
		return &NotFoundError{Kind: "label", ID: labelID}
	}
	project.AddLabel(labelID, m.timestamp())
	return m.persist()
}

// RemoveLabelFromProject detaches a label from a project.
func (m *Manager) RemoveLabelFromProject(projectID, labelID string) error {
	project, ok := m.projects[projectID]
	if !ok {
		return &NotFoundError{Kind: "project", ID: projectID}
	}
	project.RemoveLabel(labelID, m.timestamp())
	return m.persist()
}
