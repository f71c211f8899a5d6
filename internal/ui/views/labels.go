package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskdesk/internal/manager"
	"taskdesk/internal/models"
	"taskdesk/internal/ui/keys"
	"taskdesk/internal/ui/styles"
)

// LabelListView manages the label catalog
type LabelListView struct {
	mgr    *manager.Manager
	labels []*models.Label
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	cursor  int
	scrollY int

	// Create/edit form
	editing      bool
	editingNew   bool
	editName     textinput.Model
	editColor    textinput.Model
	editDesc     textinput.Model
	editFocusIdx int // 0=name, 1=color, 2=desc, 3=save
	editErr      string

	// Delete confirmation
	confirmingDelete bool
	deleteTargetID   string
	deleteTargetName string

	// Last failed façade call, shown until the next keypress
	statusErr string
}

// NewLabelListView creates the label view
func NewLabelListView(mgr *manager.Manager) *LabelListView {
	s := styles.NewStyles()

	name := textinput.New()
	name.Placeholder = "Label name"
	name.CharLimit = 50

	color := textinput.New()
	color.Placeholder = models.DefaultLabelColor
	color.CharLimit = 7

	desc := textinput.New()
	desc.Placeholder = "Description (optional)"
	desc.CharLimit = 200

	return &LabelListView{
		mgr:       mgr,
		styles:    s,
		keys:      keys.DefaultKeyMap(),
		editName:  name,
		editColor: color,
		editDesc:  desc,
	}
}

// Init initializes the view
func (v *LabelListView) Init() tea.Cmd {
	return v.load
}

type labelCatalogMsg struct {
	labels []*models.Label
}

func (v *LabelListView) load() tea.Msg {
	return labelCatalogMsg{labels: v.mgr.GetAllLabels()}
}

// Update handles messages
func (v *LabelListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case labelCatalogMsg:
		v.labels = msg.labels
		if v.cursor >= len(v.labels) {
			v.cursor = max(0, len(v.labels)-1)
		}
		return v, nil

	case tea.KeyMsg:
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.editing {
			return v.updateEditing(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *LabelListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v.statusErr = ""

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return CloseLabels{} }

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.labels)-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		v.editing = true
		v.editingNew = true
		v.editFocusIdx = 0
		v.editErr = ""
		v.editName.Reset()
		v.editColor.Reset()
		v.editDesc.Reset()
		v.updateEditFocus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Edit), key.Matches(msg, v.keys.Enter):
		if len(v.labels) > 0 {
			label := v.labels[v.cursor]
			v.editing = true
			v.editingNew = false
			v.editFocusIdx = 0
			v.editErr = ""
			v.editName.SetValue(label.Name)
			v.editColor.SetValue(label.Color)
			v.editDesc.SetValue(label.Description)
			v.updateEditFocus()
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if len(v.labels) > 0 {
			v.confirmingDelete = true
			v.deleteTargetID = v.labels[v.cursor].ID
			v.deleteTargetName = v.labels[v.cursor].Name
		}
		return v, nil
	}

	return v, nil
}

func (v *LabelListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if err := v.mgr.DeleteLabel(v.deleteTargetID); err != nil {
			v.statusErr = err.Error()
		}
		v.confirmingDelete = false
		return v, v.load
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *LabelListView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		return v, nil

	case msg.String() == "ctrl+s":
		return v, v.save()

	case key.Matches(msg, v.keys.Tab):
		v.editFocusIdx = (v.editFocusIdx + 1) % 4
		v.updateEditFocus()
		return v, nil

	case msg.String() == "shift+tab":
		v.editFocusIdx = (v.editFocusIdx + 3) % 4
		v.updateEditFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.editFocusIdx == 3 {
			return v, v.save()
		}
		v.editFocusIdx++
		v.updateEditFocus()
		return v, nil
	}

	var cmd tea.Cmd
	switch v.editFocusIdx {
	case 0:
		v.editName, cmd = v.editName.Update(msg)
	case 1:
		v.editColor, cmd = v.editColor.Update(msg)
	case 2:
		v.editDesc, cmd = v.editDesc.Update(msg)
	}
	return v, cmd
}

func (v *LabelListView) updateEditFocus() {
	v.editName.Blur()
	v.editColor.Blur()
	v.editDesc.Blur()

	switch v.editFocusIdx {
	case 0:
		v.editName.Focus()
	case 1:
		v.editColor.Focus()
	case 2:
		v.editDesc.Focus()
	}
}

func (v *LabelListView) save() tea.Cmd {
	name := strings.TrimSpace(v.editName.Value())
	color := strings.TrimSpace(v.editColor.Value())
	desc := strings.TrimSpace(v.editDesc.Value())

	var err error
	if v.editingNew {
		_, err = v.mgr.CreateLabel(manager.LabelCreateOptions{
			Name:        name,
			Color:       color,
			Description: desc,
		})
	} else if len(v.labels) > 0 {
		err = v.mgr.UpdateLabel(v.labels[v.cursor].ID, manager.LabelUpdate{
			Name:        &name,
			Color:       &color,
			Description: &desc,
		})
	}
	if err != nil {
		v.editErr = err.Error()
		return nil
	}

	v.editing = false
	return v.load
}

func (v *LabelListView) ensureVisible() {
	availableHeight := v.height - 8
	if availableHeight < 2 {
		availableHeight = 2
	}
	visibleItems := availableHeight / 2
	if visibleItems < 1 {
		visibleItems = 1
	}

	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visibleItems {
		v.scrollY = v.cursor - visibleItems + 1
	}
}

// View renders the view
func (v *LabelListView) View() string {
	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}
	if v.editing {
		return v.renderEditForm()
	}

	s := v.styles
	var b strings.Builder

	b.WriteString(s.Title.Render("Labels"))
	b.WriteString("\n\n")

	if len(v.labels) == 0 {
		b.WriteString(s.TitleMuted.Render("No labels. Press 'n' to create one."))
	} else {
		availableHeight := v.height - 8
		if availableHeight < 2 {
			availableHeight = 2
		}
		visibleItems := availableHeight / 2
		if visibleItems < 1 {
			visibleItems = 1
		}
		endIdx := min(v.scrollY+visibleItems, len(v.labels))

		contentWidth := styles.ContentWidth(v.width)
		width := max(contentWidth-4, 20)

		for i := v.scrollY; i < endIdx; i++ {
			label := v.labels[i]
			swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(label.Color))
			line := swatch.Render("●") + " " + label.Name
			if label.Description != "" {
				line += s.TitleMuted.Render(" · " + label.Description)
			}

			itemStyle := s.ListItem
			if i == v.cursor {
				itemStyle = s.ListSelected
			}
			b.WriteString(itemStyle.Width(width).Render(line))
			b.WriteString("\n")
		}
	}

	if v.statusErr != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(styles.Current.Error).Render(v.statusErr))
	}

	b.WriteString("\n")
	b.WriteString(s.Help.Render(
		fmt.Sprintf("%s edit • %s new • %s del • %s back • %s quit",
			s.HelpKey.Render("↵"),
			s.HelpKey.Render("n"),
			s.HelpKey.Render("d"),
			s.HelpKey.Render("esc"),
			s.HelpKey.Render("q"),
		),
	))

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *LabelListView) renderEditForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	formTitle := "New Label"
	if !v.editingNew {
		formTitle = "Edit Label"
	}

	nameStyle := s.Input
	colorStyle := s.Input
	descStyle := s.Input
	btnStyle := s.Button

	switch v.editFocusIdx {
	case 0:
		nameStyle = s.InputFocused
	case 1:
		colorStyle = s.InputFocused
	case 2:
		descStyle = s.InputFocused
	case 3:
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 40)

	rows := []string{
		s.Title.Render(formTitle),
		"",
		"Name:",
		nameStyle.Width(inputWidth).Render(v.editName.View()),
		"",
		"Color (#rrggbb):",
		colorStyle.Width(12).Render(v.editColor.View()),
		"",
		"Description:",
		descStyle.Width(inputWidth).Render(v.editDesc.View()),
		"",
		btnStyle.Render(" Save "),
	}

	if v.editErr != "" {
		rows = append(rows, "", lipgloss.NewStyle().Foreground(styles.Current.Error).Render(v.editErr))
	}

	rows = append(rows, "",
		s.TitleMuted.Render("Tab: next field • Ctrl+S: save • Esc: cancel"))

	form := lipgloss.JoinVertical(lipgloss.Left, rows...)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *LabelListView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Label?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("\"%s\" will be removed from every project, task and subtask.", v.deleteTargetName)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}
