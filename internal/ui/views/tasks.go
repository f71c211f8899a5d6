package views

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskdesk/internal/manager"
	"taskdesk/internal/models"
	"taskdesk/internal/ui/keys"
	"taskdesk/internal/ui/styles"
)

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// FocusArea represents which part of the UI has focus
type FocusArea int

const (
	FocusBackButton FocusArea = iota
	FocusSearchInput
	FocusLabelDropdown
	FocusTaskList
)

// TaskListView shows tasks for a project
type TaskListView struct {
	mgr     *manager.Manager
	project *models.Project
	tasks   []*models.Task
	labels  []*models.Label
	styles  *styles.Styles
	keys    keys.KeyMap

	width  int
	height int

	// UI state
	focus         FocusArea
	cursor        int
	scrollY       int
	searchInput   textinput.Model
	selectedLabel *string // nil = no filter

	// Label dropdown state
	labelDropdownOpen bool
	labelCursor       int

	// Task creation/editing
	editing         bool
	editingNew      bool
	editTitle       textinput.Model
	editDesc        textarea.Model
	editPriority    textinput.Model
	editDue         textinput.Model
	editFocusIdx    int      // 0=title, 1=desc, 2=priority, 3=due, 4=labels, 5=save
	editLabels      []string // label ids selected for this task
	editLabelCursor int

	// Label assignment mode
	assigningLabels   bool
	assignLabelCursor int
	assigningTaskID   string

	// Task detail view with inline subtask management
	viewingTask         bool
	viewSubtasks        []*models.SubTask
	subtaskCursor       int
	subtaskInput        textinput.Model
	subtaskInputFocused bool

	// Delete confirmation
	confirmingDelete bool
	deleteTargetID   string
	deleteTargetName string
	deleteIsSubtask  bool

	// Completed tasks stay hidden until toggled
	showingCompleted bool

	// Last failed façade call, shown until the next keypress
	statusErr string

	showHelpPopup bool
}

// NewTaskListView creates a new task list view
func NewTaskListView(mgr *manager.Manager, project *models.Project) *TaskListView {
	s := styles.NewStyles()

	search := textinput.New()
	search.Placeholder = "Search tasks..."
	search.CharLimit = 100

	editTitle := textinput.New()
	editTitle.Placeholder = "Task title"
	editTitle.CharLimit = 200

	editDesc := textarea.New()
	editDesc.Placeholder = "Description"
	editDesc.CharLimit = 1000
	editDesc.SetWidth(50)
	editDesc.SetHeight(3)
	editDesc.ShowLineNumbers = false

	editPriority := textinput.New()
	editPriority.Placeholder = "1=high 2=medium 3=low"
	editPriority.CharLimit = 1

	editDue := textinput.New()
	editDue.Placeholder = "Due date YYYY-MM-DD (optional)"
	editDue.CharLimit = 10

	subtaskInput := textinput.New()
	subtaskInput.Placeholder = "New subtask title..."
	subtaskInput.CharLimit = 200

	return &TaskListView{
		mgr:          mgr,
		project:      project,
		styles:       s,
		keys:         keys.DefaultKeyMap(),
		focus:        FocusTaskList,
		searchInput:  search,
		editTitle:    editTitle,
		editDesc:     editDesc,
		editPriority: editPriority,
		editDue:      editDue,
		subtaskInput: subtaskInput,
	}
}

// BackToProjects signals to go back to project list
type BackToProjects struct{}

// Init initializes the view
func (v *TaskListView) Init() tea.Cmd {
	return tea.Batch(v.loadTasks, v.loadLabels)
}

type tasksLoadedMsg struct {
	tasks []*models.Task
}

type labelsLoadedMsg struct {
	labels []*models.Label
}

type subtasksLoadedMsg struct {
	subtasks []*models.SubTask
}

func (v *TaskListView) loadTasks() tea.Msg {
	all := v.mgr.GetTasksByProject(v.project.ID)
	search := strings.ToLower(strings.TrimSpace(v.searchInput.Value()))

	var tasks []*models.Task
	for _, t := range all {
		if t.Completed != v.showingCompleted {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		if v.selectedLabel != nil && !t.HasLabel(*v.selectedLabel) {
			continue
		}
		tasks = append(tasks, t)
	}
	return tasksLoadedMsg{tasks: tasks}
}

func (v *TaskListView) loadLabels() tea.Msg {
	return labelsLoadedMsg{labels: v.mgr.GetAllLabels()}
}

func (v *TaskListView) loadSubtasks() tea.Msg {
	if len(v.tasks) == 0 || v.cursor >= len(v.tasks) {
		return subtasksLoadedMsg{}
	}
	return subtasksLoadedMsg{subtasks: v.mgr.GetSubtasksByTask(v.tasks[v.cursor].ID)}
}

// Update handles messages
func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(v.width)
		inputWidth := clamp(contentWidth-10, 20, 50)
		v.editDesc.SetWidth(inputWidth)
		return v, nil

	case tasksLoadedMsg:
		v.tasks = msg.tasks
		if v.cursor >= len(v.tasks) {
			v.cursor = max(0, len(v.tasks)-1)
		}
		// Close label assignment if the task left the filtered list
		if v.assigningLabels && v.assigningTaskID != "" {
			found := false
			for _, t := range v.tasks {
				if t.ID == v.assigningTaskID {
					found = true
					break
				}
			}
			if !found {
				v.assigningLabels = false
				v.assigningTaskID = ""
			}
		}
		return v, nil

	case labelsLoadedMsg:
		v.labels = msg.labels
		return v, nil

	case subtasksLoadedMsg:
		v.viewSubtasks = msg.subtasks
		if v.subtaskCursor >= len(v.viewSubtasks) {
			v.subtaskCursor = max(0, len(v.viewSubtasks)-1)
		}
		return v, nil

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		if v.editing {
			return v.updateEditing(msg)
		}

		if v.viewingTask {
			return v.updateViewingTask(msg)
		}

		if v.assigningLabels {
			return v.updateAssigningLabels(msg)
		}

		if v.labelDropdownOpen {
			return v.updateLabelDropdown(msg)
		}

		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *TaskListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v.statusErr = ""

	// Search input swallows keys while focused
	if v.focus == FocusSearchInput {
		switch {
		case key.Matches(msg, v.keys.Back):
			v.searchInput.Blur()
			v.focus = FocusTaskList
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			v.searchInput.Blur()
			v.focus = FocusTaskList
			return v, v.loadTasks
		default:
			var cmd tea.Cmd
			v.searchInput, cmd = v.searchInput.Update(msg)
			return v, tea.Batch(cmd, v.loadTasks)
		}
	}

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return BackToProjects{} }

	case key.Matches(msg, v.keys.Tab):
		v.cycleFocus(1)
		return v, nil

	case msg.String() == "shift+tab":
		v.cycleFocus(-1)
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.focus == FocusTaskList && v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.focus == FocusTaskList && v.cursor < len(v.tasks)-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Toggle):
		// Only tasks without subtasks toggle directly; a parent task's
		// flag is owned by its subtasks.
		if v.focus == FocusTaskList && len(v.tasks) > 0 {
			task := v.tasks[v.cursor]
			if len(task.SubtaskIDs) == 0 {
				if err := v.mgr.ToggleTask(task.ID); err != nil {
					v.statusErr = err.Error()
				}
				return v, v.loadTasks
			}
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		switch v.focus {
		case FocusBackButton:
			return v, func() tea.Msg { return BackToProjects{} }
		case FocusLabelDropdown:
			v.labelDropdownOpen = true
			v.labelCursor = 0
			return v, nil
		case FocusTaskList:
			if len(v.tasks) > 0 {
				v.viewingTask = true
				v.subtaskCursor = 0
				return v, v.loadSubtasks
			}
		}
		return v, nil

	case key.Matches(msg, v.keys.Edit):
		if v.focus == FocusTaskList && len(v.tasks) > 0 {
			v.startEditTask(v.tasks[v.cursor])
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		v.startNewTask()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Delete):
		if v.focus == FocusTaskList && len(v.tasks) > 0 {
			v.confirmingDelete = true
			v.deleteIsSubtask = false
			v.deleteTargetID = v.tasks[v.cursor].ID
			v.deleteTargetName = v.tasks[v.cursor].Title
			return v, nil
		}
		return v, nil

	case key.Matches(msg, v.keys.Search):
		v.focus = FocusSearchInput
		v.searchInput.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Filter):
		v.focus = FocusLabelDropdown
		v.labelDropdownOpen = true
		v.labelCursor = 0
		return v, nil

	case msg.String() == "t":
		if v.focus == FocusTaskList && len(v.tasks) > 0 {
			v.assigningLabels = true
			v.assignLabelCursor = 0
			v.assigningTaskID = v.tasks[v.cursor].ID
			return v, nil
		}

	case key.Matches(msg, v.keys.Labels):
		return v, func() tea.Msg { return OpenLabels{} }

	case msg.String() == "?":
		v.showHelpPopup = true
		return v, nil

	case key.Matches(msg, v.keys.ShowCompleted):
		v.showingCompleted = !v.showingCompleted
		v.cursor = 0
		v.scrollY = 0
		return v, v.loadTasks
	}

	return v, nil
}

func (v *TaskListView) updateLabelDropdown(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.labelDropdownOpen = false
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.labelCursor > 0 {
			v.labelCursor--
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.labelCursor < len(v.labels) { // +1 for "None" option
			v.labelCursor++
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.labelCursor == 0 {
			v.selectedLabel = nil
		} else {
			labelID := v.labels[v.labelCursor-1].ID
			v.selectedLabel = &labelID
		}
		v.labelDropdownOpen = false
		return v, v.loadTasks
	}

	return v, nil
}

func (v *TaskListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if v.deleteIsSubtask {
			if err := v.mgr.DeleteSubTask(v.deleteTargetID); err != nil {
				v.statusErr = err.Error()
			}
			v.confirmingDelete = false
			return v, tea.Batch(v.loadTasks, v.loadSubtasks)
		}
		if err := v.mgr.DeleteTask(v.deleteTargetID); err != nil {
			v.statusErr = err.Error()
		}
		v.confirmingDelete = false
		v.viewingTask = false
		return v, v.loadTasks
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *TaskListView) updateViewingTask(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Inline subtask creation
	if v.subtaskInputFocused {
		switch {
		case key.Matches(msg, v.keys.Back):
			v.subtaskInputFocused = false
			v.subtaskInput.Blur()
			return v, nil
		case key.Matches(msg, v.keys.Enter), msg.String() == "ctrl+s":
			return v, v.submitSubtask()
		default:
			var cmd tea.Cmd
			v.subtaskInput, cmd = v.subtaskInput.Update(msg)
			return v, cmd
		}
	}

	switch {
	case key.Matches(msg, v.keys.Back):
		v.viewingTask = false
		v.viewSubtasks = nil
		return v, v.loadTasks

	case key.Matches(msg, v.keys.Up):
		if v.subtaskCursor > 0 {
			v.subtaskCursor--
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.subtaskCursor < len(v.viewSubtasks)-1 {
			v.subtaskCursor++
		}
		return v, nil

	case key.Matches(msg, v.keys.Toggle):
		if len(v.viewSubtasks) > 0 && v.subtaskCursor < len(v.viewSubtasks) {
			v.mgr.ToggleSubTask(v.viewSubtasks[v.subtaskCursor].ID)
			return v, tea.Batch(v.loadTasks, v.loadSubtasks)
		}
		return v, nil

	case key.Matches(msg, v.keys.New), msg.String() == "a":
		v.subtaskInputFocused = true
		v.subtaskInput.Reset()
		v.subtaskInput.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Delete):
		if len(v.viewSubtasks) > 0 && v.subtaskCursor < len(v.viewSubtasks) {
			st := v.viewSubtasks[v.subtaskCursor]
			v.confirmingDelete = true
			v.deleteIsSubtask = true
			v.deleteTargetID = st.ID
			v.deleteTargetName = st.Title
		}
		return v, nil

	case key.Matches(msg, v.keys.Edit):
		v.viewingTask = false
		v.viewSubtasks = nil
		v.startEditTask(v.tasks[v.cursor])
		return v, textinput.Blink

	case msg.String() == "t":
		v.viewingTask = false
		v.viewSubtasks = nil
		v.assigningLabels = true
		v.assignLabelCursor = 0
		v.assigningTaskID = v.tasks[v.cursor].ID
		return v, nil

	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	}
	return v, nil
}

func (v *TaskListView) submitSubtask() tea.Cmd {
	title := strings.TrimSpace(v.subtaskInput.Value())
	if title == "" {
		return nil
	}
	if len(v.tasks) == 0 || v.cursor >= len(v.tasks) {
		return nil
	}

	_, err := v.mgr.CreateSubTask(manager.SubTaskCreateOptions{
		Title:  title,
		TaskID: v.tasks[v.cursor].ID,
	})
	if err != nil {
		return nil
	}

	v.subtaskInput.Reset()
	v.subtaskInputFocused = false
	v.subtaskInput.Blur()

	return tea.Batch(v.loadTasks, v.loadSubtasks)
}

func (v *TaskListView) updateAssigningLabels(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.assigningLabels = false
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.assignLabelCursor > 0 {
			v.assignLabelCursor--
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.assignLabelCursor < len(v.labels)-1 {
			v.assignLabelCursor++
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter), msg.String() == " ":
		if len(v.tasks) > 0 && v.assignLabelCursor < len(v.labels) {
			task := v.tasks[v.cursor]
			label := v.labels[v.assignLabelCursor]

			if task.HasLabel(label.ID) {
				v.mgr.RemoveLabelFromTask(task.ID, label.ID)
			} else {
				v.mgr.AddLabelToTask(task.ID, label.ID)
			}
			return v, v.loadTasks
		}
	}

	return v, nil
}

func (v *TaskListView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		return v, nil

	case msg.String() == "ctrl+s":
		return v, v.saveTask()

	case key.Matches(msg, v.keys.Tab):
		v.editFocusIdx = (v.editFocusIdx + 1) % 6 // 0-5: title, desc, priority, due, labels, save
		v.updateEditFocus()
		return v, nil

	case msg.String() == "shift+tab":
		v.editFocusIdx = (v.editFocusIdx + 5) % 6
		v.updateEditFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		// Enter on single-line fields moves on
		if v.editFocusIdx == 0 || v.editFocusIdx == 2 || v.editFocusIdx == 3 {
			v.editFocusIdx++
			v.updateEditFocus()
			return v, nil
		}
		if v.editFocusIdx == 4 {
			v.toggleEditLabel()
			return v, nil
		}
		if v.editFocusIdx == 5 {
			return v, v.saveTask()
		}
		// The description textarea keeps enter for newlines

	case msg.String() == " ":
		if v.editFocusIdx == 4 {
			v.toggleEditLabel()
			return v, nil
		}

	case key.Matches(msg, v.keys.Up):
		if v.editFocusIdx == 4 && v.editLabelCursor > 0 {
			v.editLabelCursor--
			return v, nil
		}

	case key.Matches(msg, v.keys.Down):
		if v.editFocusIdx == 4 && v.editLabelCursor < len(v.labels)-1 {
			v.editLabelCursor++
			return v, nil
		}
	}

	var cmd tea.Cmd
	switch v.editFocusIdx {
	case 0:
		v.editTitle, cmd = v.editTitle.Update(msg)
	case 1:
		v.editDesc, cmd = v.editDesc.Update(msg)
	case 2:
		v.editPriority, cmd = v.editPriority.Update(msg)
	case 3:
		v.editDue, cmd = v.editDue.Update(msg)
	}
	return v, cmd
}

// toggleEditLabel toggles the currently selected label in the edit form
func (v *TaskListView) toggleEditLabel() {
	if v.editLabelCursor >= len(v.labels) {
		return
	}
	labelID := v.labels[v.editLabelCursor].ID

	for i, id := range v.editLabels {
		if id == labelID {
			v.editLabels = append(v.editLabels[:i], v.editLabels[i+1:]...)
			return
		}
	}
	v.editLabels = append(v.editLabels, labelID)
}

func (v *TaskListView) cycleFocus(dir int) {
	v.searchInput.Blur()

	v.focus = FocusArea((int(v.focus) + dir + 4) % 4)

	if v.focus == FocusSearchInput {
		v.searchInput.Focus()
	}
}

func (v *TaskListView) ensureVisible() {
	// Each task item is 2 lines + 1 margin = 3 lines
	availableHeight := v.height - 10
	if availableHeight < 3 {
		availableHeight = 3
	}
	visibleItems := availableHeight / 3
	if visibleItems < 1 {
		visibleItems = 1
	}

	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visibleItems {
		v.scrollY = v.cursor - visibleItems + 1
	}
}

func (v *TaskListView) startNewTask() {
	v.editing = true
	v.editingNew = true
	v.editFocusIdx = 0
	v.editLabelCursor = 0
	v.editLabels = []string{}
	v.editTitle.Reset()
	v.editDesc.Reset()
	v.editPriority.SetValue(strconv.Itoa(models.PriorityLow))
	v.editDue.Reset()
	v.updateEditFocus()
}

func (v *TaskListView) startEditTask(task *models.Task) {
	v.editing = true
	v.editingNew = false
	v.editFocusIdx = 0
	v.editLabelCursor = 0
	v.editLabels = append([]string(nil), task.Labels...)
	v.editTitle.SetValue(task.Title)
	v.editDesc.SetValue(task.Description)
	v.editPriority.SetValue(strconv.Itoa(task.Priority))
	if task.DueDate != nil {
		v.editDue.SetValue(*task.DueDate)
	} else {
		v.editDue.Reset()
	}
	v.updateEditFocus()
}

func (v *TaskListView) updateEditFocus() {
	v.editTitle.Blur()
	v.editDesc.Blur()
	v.editPriority.Blur()
	v.editDue.Blur()

	switch v.editFocusIdx {
	case 0:
		v.editTitle.Focus()
	case 1:
		v.editDesc.Focus()
	case 2:
		v.editPriority.Focus()
	case 3:
		v.editDue.Focus()
	}
}

func (v *TaskListView) saveTask() tea.Cmd {
	title := strings.TrimSpace(v.editTitle.Value())
	if title == "" {
		v.editing = false
		return nil
	}

	desc := strings.TrimSpace(v.editDesc.Value())
	priority, _ := strconv.Atoi(v.editPriority.Value())
	if !models.ValidPriority(priority) {
		priority = models.PriorityLow
	}
	due := strings.TrimSpace(v.editDue.Value())

	if v.editingNew {
		opts := manager.TaskCreateOptions{
			Title:       title,
			ProjectID:   v.project.ID,
			Priority:    priority,
			Description: desc,
			Labels:      v.editLabels,
		}
		if due != "" {
			opts.DueDate = &due
		}
		if _, err := v.mgr.CreateTask(opts); err != nil {
			v.statusErr = err.Error()
		}
	} else if len(v.tasks) > 0 {
		upd := manager.TaskUpdate{
			Title:       &title,
			Description: &desc,
			Priority:    &priority,
			Labels:      v.editLabels,
		}
		if due != "" {
			upd.DueDate = &due
		} else {
			upd.ClearDueDate = true
		}
		if err := v.mgr.UpdateTask(v.tasks[v.cursor].ID, upd); err != nil {
			v.statusErr = err.Error()
		}
	}

	v.editing = false
	return v.loadTasks
}

// View renders the view
func (v *TaskListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	if v.editing {
		return v.renderEditForm()
	}

	if v.viewingTask {
		return v.renderTaskView()
	}

	if v.assigningLabels {
		return v.renderLabelAssignment()
	}

	var b strings.Builder

	b.WriteString(v.renderHeader())
	b.WriteString("\n\n")

	b.WriteString(v.renderTaskList())

	if v.statusErr != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(styles.Current.Error).Render(v.statusErr))
	}

	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *TaskListView) renderHeader() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	isNarrow := contentWidth < 60

	searchStyle := s.Input
	if v.focus == FocusSearchInput {
		searchStyle = s.InputFocused
	}
	searchWidth := clamp(contentWidth-8, 10, 30)
	v.searchInput.Placeholder = "Search..."
	searchBox := searchStyle.Width(searchWidth).Render(v.searchInput.View())

	labelStyle := s.Button
	if v.focus == FocusLabelDropdown {
		labelStyle = s.ButtonFocused
	}
	labelName := "All"
	if v.selectedLabel != nil {
		for _, l := range v.labels {
			if l.ID == *v.selectedLabel {
				labelName = l.Name
				break
			}
		}
	}
	if !isNarrow {
		labelName = "Labels: " + labelName
	}
	labelBtn := labelStyle.Render(labelName + " ▼")

	titleText := fmt.Sprintf("%s · %.0f%%", v.project.Name, v.mgr.GetProjectProgress(v.project.ID))
	if v.showingCompleted {
		titleText += " (Completed)"
	}
	title := s.Title.Render(titleText)

	var header string
	if isNarrow {
		header = lipgloss.JoinVertical(lipgloss.Left,
			searchBox,
			labelBtn,
		)
	} else {
		backStyle := s.Button
		if v.focus == FocusBackButton {
			backStyle = s.ButtonFocused
		}
		backBtn := backStyle.Render("← Projects")

		header = lipgloss.JoinHorizontal(lipgloss.Center,
			backBtn, "  ", searchBox, "  ", labelBtn,
		)
	}

	dropdown := ""
	if v.labelDropdownOpen {
		dropdown = "\n" + v.renderLabelDropdown()
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, header+dropdown)
}

func (v *TaskListView) renderLabelDropdown() string {
	s := v.styles
	var items []string

	noneStyle := s.ListItem
	if v.labelCursor == 0 {
		noneStyle = s.ListSelected
	}
	items = append(items, noneStyle.Render("None"))

	for i, label := range v.labels {
		itemStyle := s.ListItem
		if v.labelCursor == i+1 {
			itemStyle = s.ListSelected
		}
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(label.Color))
		items = append(items, itemStyle.Render(swatch.Render("●")+" "+label.Name))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, items...)
	return s.Panel.Render(content)
}

func (v *TaskListView) renderTaskList() string {
	s := v.styles

	if len(v.tasks) == 0 {
		if v.showingCompleted {
			return s.TitleMuted.Render("No completed tasks.")
		}
		return s.TitleMuted.Render("No tasks. Press 'n' to create one.")
	}

	availableHeight := v.height - 12
	if availableHeight < 3 {
		availableHeight = 3
	}
	visibleItems := availableHeight / 3
	if visibleItems < 1 {
		visibleItems = 1
	}

	var items []string
	endIdx := min(v.scrollY+visibleItems, len(v.tasks))

	for i := v.scrollY; i < endIdx; i++ {
		task := v.tasks[i]
		items = append(items, v.renderTaskItem(task, i == v.cursor && v.focus == FocusTaskList))
	}

	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (v *TaskListView) renderTaskItem(task *models.Task, selected bool) string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	width := max(contentWidth-4, 20)

	checkbox := "[ ]"
	if task.Completed {
		checkbox = s.Done.Render("[✓]")
	}

	prio := s.Priority[task.Priority].Render(models.PriorityLabel(task.Priority))
	titleLine := fmt.Sprintf("%s %s %s", checkbox, prio, task.Title)

	// Second line: subtask progress, due date, labels
	var parts []string
	if n := len(task.SubtaskIDs); n > 0 {
		parts = append(parts, s.Progress.Render(fmt.Sprintf("%.0f%% of %d subtasks", v.mgr.GetTaskProgress(task.ID), n)))
	}
	if task.DueDate != nil {
		parts = append(parts, s.TitleMuted.Render("due "+*task.DueDate))
	}
	for _, labelID := range task.Labels {
		if label, ok := v.mgr.GetLabel(labelID); ok {
			swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(label.Color))
			parts = append(parts, swatch.Render(label.Name))
		}
	}
	detailLine := strings.Join(parts, " · ")
	if detailLine == "" {
		detailLine = s.TitleMuted.Render("no details")
	}

	var titleStyle, detailStyle lipgloss.Style
	if selected {
		titleStyle = s.ListSelected.Width(width)
		detailStyle = s.ListSelected.Width(width)
	} else {
		titleStyle = s.ListItem.Width(width)
		detailStyle = s.ListItem.Width(width)
	}

	title := titleStyle.Render(titleLine)
	detail := detailStyle.Render(detailLine)

	return lipgloss.JoinVertical(lipgloss.Left, title, detail) + "\n"
}

func (v *TaskListView) renderEditForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	formTitle := "New Task"
	if !v.editingNew {
		formTitle = "Edit Task"
	}

	titleStyle := s.Input
	descStyle := s.Input
	priorityStyle := s.Input
	dueStyle := s.Input
	labelsStyle := s.Input
	btnStyle := s.Button

	switch v.editFocusIdx {
	case 0:
		titleStyle = s.InputFocused
	case 1:
		descStyle = s.InputFocused
	case 2:
		priorityStyle = s.InputFocused
	case 3:
		dueStyle = s.InputFocused
	case 4:
		labelsStyle = s.InputFocused
	case 5:
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	labelSelector := v.renderEditLabelSelector(labelsStyle, inputWidth)

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(formTitle),
		"",
		"Title:",
		titleStyle.Width(inputWidth).Render(v.editTitle.View()),
		"",
		"Description:",
		descStyle.Render(v.editDesc.View()),
		"",
		"Priority (1=high 2=medium 3=low):",
		priorityStyle.Width(10).Render(v.editPriority.View()),
		"",
		"Due date:",
		dueStyle.Width(24).Render(v.editDue.View()),
		"",
		"Labels:",
		labelSelector,
		"",
		btnStyle.Render(" Save "),
		"",
		s.TitleMuted.Render("Tab: next • ↑↓: select label • Space/↵: toggle • Ctrl+S: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

// renderEditLabelSelector renders the inline label selector for the edit form
func (v *TaskListView) renderEditLabelSelector(containerStyle lipgloss.Style, width int) string {
	s := v.styles

	if len(v.labels) == 0 {
		return containerStyle.Width(width).Render(s.TitleMuted.Render("No labels available"))
	}

	var items []string
	for i, label := range v.labels {
		isSelected := false
		for _, id := range v.editLabels {
			if id == label.ID {
				isSelected = true
				break
			}
		}

		checkbox := "[ ]"
		if isSelected {
			checkbox = "[x]"
		}

		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(label.Color))
		itemText := checkbox + " " + swatch.Render("●") + " " + label.Name

		if v.editFocusIdx == 4 && i == v.editLabelCursor {
			items = append(items, s.ListSelected.Render(itemText))
		} else {
			items = append(items, s.ListItem.Render(itemText))
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Left, items...)
	return containerStyle.Width(width).Render(content)
}

func (v *TaskListView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}

	completedLabel := "done"
	if v.showingCompleted {
		completedLabel = "back"
	}

	return v.styles.Help.Render(
		fmt.Sprintf("%s view • %s toggle • %s edit • %s new • %s del • %s search • %s filter • %s labels • %s %s • %s back • %s quit",
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("space"),
			v.styles.HelpKey.Render("e"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("/"),
			v.styles.HelpKey.Render("f"),
			v.styles.HelpKey.Render("t"),
			v.styles.HelpKey.Render("c"),
			completedLabel,
			v.styles.HelpKey.Render("esc"),
			v.styles.HelpKey.Render("q"),
		),
	)
}

func (v *TaskListView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	completedLabel := "show completed"
	if v.showingCompleted {
		completedLabel = "hide completed"
	}

	helpItems := []string{
		s.HelpKey.Render("↵") + "      view task + subtasks",
		s.HelpKey.Render("space") + "  toggle done (no subtasks)",
		s.HelpKey.Render("e") + "      edit task",
		s.HelpKey.Render("n") + "      new task",
		s.HelpKey.Render("d") + "      delete task",
		s.HelpKey.Render("/") + "      search",
		s.HelpKey.Render("f") + "      filter by label",
		s.HelpKey.Render("t") + "      assign labels",
		s.HelpKey.Render("L") + "      manage labels",
		s.HelpKey.Render("c") + "      " + completedLabel,
		s.HelpKey.Render("esc") + "    back",
		s.HelpKey.Render("q") + "      quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.Panel.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderLabelAssignment() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	if len(v.tasks) == 0 {
		return ""
	}

	task := v.tasks[v.cursor]

	var items []string
	for i, label := range v.labels {
		itemStyle := s.ListItem
		if i == v.assignLabelCursor {
			itemStyle = s.ListSelected
		}

		checkbox := "[ ]"
		if task.HasLabel(label.ID) {
			checkbox = "[x]"
		}

		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(label.Color))
		items = append(items, itemStyle.Render(checkbox+" "+swatch.Render("●")+" "+label.Name))
	}

	if len(items) == 0 {
		items = append(items, s.TitleMuted.Render("No labels. Press 'L' to create some."))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Assign Labels to: "+task.Title),
		"",
		lipgloss.JoinVertical(lipgloss.Left, items...),
		"",
		s.TitleMuted.Render("Enter/Space: toggle • Esc: done"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.Panel.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	title := "Delete Task?"
	if v.deleteIsSubtask {
		title = "Delete Subtask?"
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render(title),
		"",
		s.TitleMuted.Render(fmt.Sprintf("\"%s\"", v.deleteTargetName)),
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

func (v *TaskListView) renderTaskView() string {
	if len(v.tasks) == 0 || v.cursor >= len(v.tasks) {
		return ""
	}

	s := v.styles
	task := v.tasks[v.cursor]
	maxContentWidth := styles.ContentWidth(v.width)

	statusText := s.Pending.Render("⏳ Pending")
	if task.Completed {
		statusText = s.Done.Render("✓ Completed")
		if task.CompletedAt != nil {
			statusText += s.TitleMuted.Render(" " + (*task.CompletedAt)[:10])
		}
	}

	var labelStrs []string
	for _, labelID := range task.Labels {
		if label, ok := v.mgr.GetLabel(labelID); ok {
			swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(label.Color))
			labelStrs = append(labelStrs, swatch.Render(label.Name))
		}
	}
	labelsLine := "None"
	if len(labelStrs) > 0 {
		labelsLine = strings.Join(labelStrs, " ")
	}

	descText := task.Description
	if descText == "" {
		descText = s.TitleMuted.Render("No description")
	}

	dueLine := "None"
	if task.DueDate != nil {
		dueLine = *task.DueDate
	}

	titleStyle := s.Title.MarginBottom(1)
	labelStyle := s.TitleMuted
	textWidth := clamp(maxContentWidth-10, 20, 70)

	// Subtasks section
	var subtasksContent string
	if len(v.viewSubtasks) == 0 {
		subtasksContent = s.TitleMuted.Render("No subtasks yet")
	} else {
		var lines []string
		for i, st := range v.viewSubtasks {
			checkbox := "[ ]"
			if st.Completed {
				checkbox = s.Done.Render("[✓]")
			}
			line := fmt.Sprintf("%s %s", checkbox, st.Title)
			if st.DueDate != nil {
				line += s.TitleMuted.Render(" · due " + *st.DueDate)
			}
			if i == v.subtaskCursor && !v.subtaskInputFocused {
				lines = append(lines, s.ListSelected.Render(line))
			} else {
				lines = append(lines, s.ListItem.Render(line))
			}
		}
		lines = append(lines, "",
			s.Progress.Render(fmt.Sprintf("%.0f%% complete", v.mgr.GetTaskProgress(task.ID))))
		subtasksContent = lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	subtaskInputStyle := s.Input
	if v.subtaskInputFocused {
		subtaskInputStyle = s.InputFocused
	}

	var helpText string
	if v.subtaskInputFocused {
		helpText = s.Help.Render(
			fmt.Sprintf("%s add • %s cancel",
				s.HelpKey.Render("↵"),
				s.HelpKey.Render("esc"),
			),
		)
	} else {
		helpText = s.Help.Render(
			fmt.Sprintf("%s toggle subtask • %s add subtask • %s del subtask • %s edit • %s labels • %s back",
				s.HelpKey.Render("space"),
				s.HelpKey.Render("a"),
				s.HelpKey.Render("d"),
				s.HelpKey.Render("e"),
				s.HelpKey.Render("t"),
				s.HelpKey.Render("esc"),
			),
		)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(task.Title),
		"",
		labelStyle.Render("Status"),
		statusText,
		"",
		labelStyle.Render("Priority"),
		s.Priority[task.Priority].Render(models.PriorityLabel(task.Priority)),
		"",
		labelStyle.Render("Due"),
		dueLine,
		"",
		labelStyle.Render("Labels"),
		labelsLine,
		"",
		labelStyle.Render("Description"),
		lipgloss.NewStyle().Width(textWidth).Render(descText),
		"",
		labelStyle.Render("Subtasks"),
		subtasksContent,
		"",
		subtaskInputStyle.Width(clamp(textWidth, 20, 50)).Render(v.subtaskInput.View()),
		"",
		helpText,
	)

	padded := lipgloss.NewStyle().Padding(1, 2).Render(content)
	return styles.CenterView(padded, v.width, v.height)
}
