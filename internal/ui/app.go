package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"taskdesk/internal/manager"
	"taskdesk/internal/models"
	"taskdesk/internal/ui/views"
)

// Currently active view
type View int

const (
	ViewProjects View = iota
	ViewTasks
	ViewLabels
)

// App is the root bubbletea model, switching between the project,
// task and label views. All state changes go through the manager.
type App struct {
	mgr         *manager.Manager
	currentView View
	prevView    View
	projectList *views.ProjectListView
	taskList    *views.TaskListView
	labelList   *views.LabelListView
	width       int
	height      int
}

// NewApp creates the root application model.
func NewApp(mgr *manager.Manager) *App {
	return &App{
		mgr:         mgr,
		currentView: ViewProjects,
		projectList: views.NewProjectListView(mgr),
	}
}

func (a *App) Init() tea.Cmd {
	return a.projectList.Init()
}

func (a *App) openProject(project *models.Project) tea.Cmd {
	a.currentView = ViewTasks
	a.taskList = views.NewTaskListView(a.mgr, project)

	return tea.Batch(
		a.taskList.Init(),
		func() tea.Msg {
			return tea.WindowSizeMsg{Width: a.width, Height: a.height}
		},
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Always update project list size since it persists
		a.projectList.Update(msg)

	case views.SelectedProject:
		return a, a.openProject(msg.Project)

	case views.BackToProjects:
		a.currentView = ViewProjects
		return a, tea.Batch(
			a.projectList.Init(),
			func() tea.Msg {
				return tea.WindowSizeMsg{Width: a.width, Height: a.height}
			},
		)

	case views.OpenLabels:
		a.prevView = a.currentView
		a.currentView = ViewLabels
		a.labelList = views.NewLabelListView(a.mgr)
		return a, tea.Batch(
			a.labelList.Init(),
			func() tea.Msg {
				return tea.WindowSizeMsg{Width: a.width, Height: a.height}
			},
		)

	case views.CloseLabels:
		a.currentView = a.prevView
		var cmd tea.Cmd
		switch a.currentView {
		case ViewTasks:
			if a.taskList != nil {
				cmd = a.taskList.Init()
			}
		default:
			cmd = a.projectList.Init()
		}
		return a, tea.Batch(cmd, func() tea.Msg {
			return tea.WindowSizeMsg{Width: a.width, Height: a.height}
		})
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewProjects:
		_, cmd = a.projectList.Update(msg)
	case ViewTasks:
		_, cmd = a.taskList.Update(msg)
	case ViewLabels:
		_, cmd = a.labelList.Update(msg)
	}

	return a, cmd
}

func (a *App) View() string {
	switch a.currentView {
	case ViewTasks:
		if a.taskList != nil {
			return a.taskList.View()
		}
	case ViewLabels:
		if a.labelList != nil {
			return a.labelList.View()
		}
	}
	return a.projectList.View()
}
