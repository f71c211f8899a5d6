package models

// DefaultLabelColor is used when a label is created without an
// explicit color.
const DefaultLabelColor = "#3498db"

// Label is a named color that can be attached to projects, tasks and
// subtasks by id. Labels are independent entities with no ownership;
// removing one requires scrubbing its id from every referrer.
type Label struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// NewLabel creates a label with a fresh id. The now argument is the
// caller's clock reading, preformatted with Timestamp.
func NewLabel(name, color, description, now string) *Label {
	if color == "" {
		color = DefaultLabelColor
	}
	return &Label{
		ID:          NewID(),
		Name:        name,
		Color:       color,
		Description: description,
		CreatedAt:   now,
	}
}
