package manager

import (
	"regexp"
	"sort"
	"strings"

	"taskdesk/internal/models"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// LabelCreateOptions are parameters for creating a label.
type LabelCreateOptions struct {
	Name        string
	Color       string // "#rrggbb"; a default is used when empty
	Description string
}

// CreateLabel creates and persists a new label.
func (m *Manager) CreateLabel(opts LabelCreateOptions) (*models.Label, error) {
	if strings.TrimSpace(opts.Name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if opts.Color != "" && !hexColor.MatchString(opts.Color) {
		return nil, &ValidationError{Field: "color", Reason: "must be a #rrggbb hex string"}
	}

	label := models.NewLabel(opts.Name, opts.Color, opts.Description, m.timestamp())
	m.labels[label.ID] = label

	m.log.Debug("label created", "id", label.ID, "name", label.Name)
	if err := m.persist(); err != nil {
		return nil, err
	}
	return label, nil
}

// GetLabel looks up a label by id.
func (m *Manager) GetLabel(id string) (*models.Label, bool) {
	l, ok := m.labels[id]
	return l, ok
}

// GetAllLabels returns every label sorted by name.
func (m *Manager) GetAllLabels() []*models.Label {
	labels := make([]*models.Label, 0, len(m.labels))
	for _, l := range m.labels {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool {
		if labels[i].Name != labels[j].Name {
			return labels[i].Name < labels[j].Name
		}
		return labels[i].ID < labels[j].ID
	})
	return labels
}

// LabelUpdate lists the fields an update may change.
type LabelUpdate struct {
	Name        *string
	Color       *string
	Description *string
}

// UpdateLabel applies the update. Every field is validated before any
// is applied, so a rejected update leaves the label untouched.
func (m *Manager) UpdateLabel(id string, upd LabelUpdate) error {
	label, ok := m.labels[id]
	if !ok {
		return &NotFoundError{Kind: "label", ID: id}
	}
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if upd.Color != nil && !hexColor.MatchString(*upd.Color) {
		return &ValidationError{Field: "color", Reason: "must be a #rrggbb hex string"}
	}

	if upd.Name != nil {
		label.Name = *upd.Name
	}
	if upd.Color != nil {
		label.Color = *upd.Color
	}
	if upd.Description != nil {
		label.Description = *upd.Description
	}

	m.log.Debug("label updated", "id", id)
	return m.persist()
}

// DeleteLabel scrubs the label id from every project, task and subtask
// that references it, drops the label, and persists once.
func (m *Manager) DeleteLabel(id string) error {
	if _, ok := m.labels[id]; !ok {
		return &NotFoundError{Kind: "label", ID: id}
	}

	now := m.timestamp()
	for _, project := range m.projects {
		project.RemoveLabel(id, now)
	}
	for _, task := range m.tasks {
		task.RemoveLabel(id, now)
	}
	for _, subtask := range m.subtasks {
		subtask.RemoveLabel(id, now)
	}
	delete(m.labels, id)

	m.log.Debug("label deleted", "id", id)
	return m.persist()
}
