package manager

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"taskdesk/internal/models"
	"taskdesk/internal/store"
)

// ManagerTestSuite runs every test against a fresh manager backed by a
// real file in a temp dir, with a fixed clock.
type ManagerTestSuite struct {
	suite.Suite
	dataFile string
	mgr      *Manager
	clock    time.Time
}

func (s *ManagerTestSuite) SetupTest() {
	s.dataFile = filepath.Join(s.T().TempDir(), "projects.json")
	s.clock = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.mgr = s.openManager()
}

// openManager builds a manager over the suite's data file.
func (s *ManagerTestSuite) openManager() *Manager {
	logger := log.New(io.Discard)
	m := New(store.New(s.dataFile, logger), logger)
	m.Now = func() time.Time { return s.clock }
	return m
}

// tick advances the fixed clock by one minute.
func (s *ManagerTestSuite) tick() {
	s.clock = s.clock.Add(time.Minute)
}

func (s *ManagerTestSuite) newProject(name string) *models.Project {
	p, err := s.mgr.CreateProject(ProjectCreateOptions{Name: name})
	s.Require().NoError(err)
	return p
}

func (s *ManagerTestSuite) newTask(projectID, title string) *models.Task {
	t, err := s.mgr.CreateTask(TaskCreateOptions{Title: title, ProjectID: projectID})
	s.Require().NoError(err)
	return t
}

func (s *ManagerTestSuite) newSubtask(taskID, title string) *models.SubTask {
	st, err := s.mgr.CreateSubTask(SubTaskCreateOptions{Title: title, TaskID: taskID})
	s.Require().NoError(err)
	return st
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerTestSuite))
}

func (s *ManagerTestSuite) TestCreateProjectDefaults() {
	p := s.newProject("Website")

	assert.NotEmpty(s.T(), p.ID)
	assert.Equal(s.T(), "Website", p.Name)
	assert.Equal(s.T(), "1.0.0", p.Version)
	assert.NotNil(s.T(), p.TaskIDs)
	assert.Empty(s.T(), p.TaskIDs)
	assert.Equal(s.T(), models.Timestamp(s.clock), p.CreatedAt)
}

func (s *ManagerTestSuite) TestCreateProjectEmptyName() {
	_, err := s.mgr.CreateProject(ProjectCreateOptions{Name: "   "})
	assert.True(s.T(), IsValidation(err))
}

func (s *ManagerTestSuite) TestGetAllProjectsOrdering() {
	first := s.newProject("B")
	s.tick()
	second := s.newProject("A")

	got := s.mgr.GetAllProjects()
	s.Require().Len(got, 2)
	// Creation order, not name order.
	assert.Equal(s.T(), first.ID, got[0].ID)
	assert.Equal(s.T(), second.ID, got[1].ID)
}

func (s *ManagerTestSuite) TestCreateTaskUnknownProject() {
	_, err := s.mgr.CreateTask(TaskCreateOptions{Title: "orphan", ProjectID: "nope"})
	assert.True(s.T(), IsNotFound(err))
}

func (s *ManagerTestSuite) TestCreateTaskRegistersOnProject() {
	p := s.newProject("Website")
	task := s.newTask(p.ID, "Design")

	assert.Equal(s.T(), []string{task.ID}, p.TaskIDs)
	assert.Equal(s.T(), models.PriorityLow, task.Priority)
	assert.Equal(s.T(), p.ID, task.ProjectID)
}

func (s *ManagerTestSuite) TestCreateTaskInvalidPriority() {
	p := s.newProject("Website")
	_, err := s.mgr.CreateTask(TaskCreateOptions{Title: "bad", ProjectID: p.ID, Priority: 7})
	assert.True(s.T(), IsValidation(err))
}

func (s *ManagerTestSuite) TestCreateTaskDropsUnknownLabels() {
	p := s.newProject("Website")
	label, err := s.mgr.CreateLabel(LabelCreateOptions{Name: "urgent"})
	s.Require().NoError(err)

	task, err := s.mgr.CreateTask(TaskCreateOptions{
		Title:     "Design",
		ProjectID: p.ID,
		Labels:    []string{label.ID, "ghost"},
	})
	s.Require().NoError(err)
	assert.Equal(s.T(), []string{label.ID}, task.Labels)
}

func (s *ManagerTestSuite) TestTasksByProjectSortsByPriority() {
	p := s.newProject("Website")
	low, err := s.mgr.CreateTask(TaskCreateOptions{Title: "low", ProjectID: p.ID, Priority: models.PriorityLow})
	s.Require().NoError(err)
	s.tick()
	high, err := s.mgr.CreateTask(TaskCreateOptions{Title: "high", ProjectID: p.ID, Priority: models.PriorityHigh})
	s.Require().NoError(err)

	got := s.mgr.GetTasksByProject(p.ID)
	s.Require().Len(got, 2)
	assert.Equal(s.T(), high.ID, got[0].ID)
	assert.Equal(s.T(), low.ID, got[1].ID)
}

func (s *ManagerTestSuite) TestToggleTaskStampsCompletedAt() {
	p := s.newProject("Website")
	task := s.newTask(p.ID, "Design")

	s.tick()
	s.Require().NoError(s.mgr.ToggleTask(task.ID))
	assert.True(s.T(), task.Completed)
	s.Require().NotNil(s.T(), task.CompletedAt)
	assert.Equal(s.T(), models.Timestamp(s.clock), *task.CompletedAt)

	s.Require().NoError(s.mgr.ToggleTask(task.ID))
	assert.False(s.T(), task.Completed)
	assert.Nil(s.T(), task.CompletedAt)
}

func (s *ManagerTestSuite) TestUpdateTaskCompletedStamps() {
	p := s.newProject("Website")
	task := s.newTask(p.ID, "Design")

	completed := true
	s.Require().NoError(s.mgr.UpdateTask(task.ID, TaskUpdate{Completed: &completed}))
	assert.True(s.T(), task.Completed)
	assert.NotNil(s.T(), task.CompletedAt)

	// Setting the same value again changes nothing.
	stamp := *task.CompletedAt
	s.Require().NoError(s.mgr.UpdateTask(task.ID, TaskUpdate{Completed: &completed}))
	assert.Equal(s.T(), stamp, *task.CompletedAt)
}

func (s *ManagerTestSuite) TestSubtaskCopiesProjectFromParent() {
	p := s.newProject("Website")
	task := s.newTask(p.ID, "Design")
	st := s.newSubtask(task.ID, "Wireframes")

	assert.Equal(s.T(), task.ID, st.TaskID)
	assert.Equal(s.T(), p.ID, st.ProjectID)
	assert.Equal(s.T(), []string{st.ID}, task.SubtaskIDs)
}

func (s *ManagerTestSuite) TestCreateSubTaskUnknownTask() {
	_, err := s.mgr.CreateSubTask(SubTaskCreateOptions{Title: "orphan", TaskID: "nope"})
	assert.True(s.T(), IsNotFound(err))
}

func (s *ManagerTestSuite) TestCompletionReconciliation() {
	p := s.newProject("Website")
	task := s.newTask(p.ID, "Design")
	a := s.newSubtask(task.ID, "Wireframes")
	b := s.newSubtask(task.ID, "Mockups")

	s.Require().NoError(s.mgr.ToggleSubTask(a.ID))
	assert.False(s.T(), task.Completed)

	s.tick()
	s.Require().NoError(s.mgr.ToggleSubTask(b.ID))
	assert.True(s.T(), task.Completed)
	s.Require().NotNil(s.T(), task.CompletedAt)
	assert.Equal(s.T(), models.Timestamp(s.clock), *task.CompletedAt)

	// Re-opening one subtask reopens the parent and clears the stamp.
	s.Require().NoError(s.mgr.ToggleSubTask(a.ID))
	assert.False(s.T(), task.Completed)
	assert.Nil(s.T(), task.CompletedAt)
}

func (s *ManagerTestSuite) TestAddingSubtaskReopensCompletedTask() {
	p := s.newProject("Website")
	task := s.newTask(p.ID, "Design")
	s.Require().NoError(s.mgr.ToggleTask(task.ID))
	s.Require().True(task.Completed)

	s.newSubtask(task.ID, "Wireframes")
	assert.False(s.T(), task.Completed)
	assert.Nil(s.T(), task.CompletedAt)
}

func (s *ManagerTestSuite) TestDeletingLastOpenSubtaskCompletesTask() {
	p := s.newProject("Website")
	task := s.newTask(p.ID, "Design")
	done := s.newSubtask(task.ID, "Wireframes")
	open := s.newSubtask(task.ID, "Mockups")
	s.Require().NoError(s.mgr.ToggleSubTask(done.ID))
	s.Require().False(task.Completed)

	s.Require().NoError(s.mgr.DeleteSubTask(open.ID))
	assert.True(s.T(), task.Completed)
}

func (s *ManagerTestSuite) TestTaskProgress() {
	p := s.newProject("Website")
	task := s.newTask(p.ID, "Design")

	// No subtasks: the task's own flag decides.
	assert.Equal(s.T(), 0.0, s.mgr.GetTaskProgress(task.ID))
	s.Require().NoError(s.mgr.ToggleTask(task.ID))
	assert.Equal(s.T(), 100.0, s.mgr.GetTaskProgress(task.ID))
	s.Require().NoError(s.mgr.ToggleTask(task.ID))

	a := s.newSubtask(task.ID, "Wireframes")
	s.newSubtask(task.ID, "Mockups")
	s.Require().NoError(s.mgr.ToggleSubTask(a.ID))
	assert.Equal(s.T(), 50.0, s.mgr.GetTaskProgress(task.ID))
}

func (s *ManagerTestSuite) TestProjectProgress() {
	p := s.newProject("Website")
	done := s.newTask(p.ID, "Design")
	s.newTask(p.ID, "Build")
	s.Require().NoError(s.mgr.ToggleTask(done.ID))

	assert.Equal(s.T(), 50.0, s.mgr.GetProjectProgress(p.ID))
}

func (s *ManagerTestSuite) TestDeleteTaskCascades() {
	p := s.newProject("Website")
	task := s.newTask(p.ID, "Design")
	st := s.newSubtask(task.ID, "Wireframes")

	s.Require().NoError(s.mgr.DeleteTask(task.ID))

	_, ok := s.mgr.GetTask(task.ID)
	assert.False(s.T(), ok)
	_, ok = s.mgr.GetSubTask(st.ID)
	assert.False(s.T(), ok)
	assert.Empty(s.T(), p.TaskIDs)

	// A second delete reports not found.
	assert.True(s.T(), IsNotFound(s.mgr.DeleteTask(task.ID)))
}

func (s *ManagerTestSuite) TestDeleteProjectCascades() {
	p := s.newProject("Website")
	other := s.newProject("Other")
	task := s.newTask(p.ID, "Design")
	st := s.newSubtask(task.ID, "Wireframes")
	keep := s.newTask(other.ID, "Keep")

	s.Require().NoError(s.mgr.DeleteProject(p.ID))

	_, ok := s.mgr.GetProject(p.ID)
	assert.False(s.T(), ok)
	_, ok = s.mgr.GetTask(task.ID)
	assert.False(s.T(), ok)
	_, ok = s.mgr.GetSubTask(st.ID)
	assert.False(s.T(), ok)

	// Unrelated projects are untouched.
	_, ok = s.mgr.GetTask(keep.ID)
	assert.True(s.T(), ok)
}

func (s *ManagerTestSuite) TestDeleteLabelScrubsReferences() {
	p := s.newProject("Website")
	label, err := s.mgr.CreateLabel(LabelCreateOptions{Name: "urgent", Color: "#ff0000"})
	s.Require().NoError(err)

	task, err := s.mgr.CreateTask(TaskCreateOptions{Title: "Design", ProjectID: p.ID, Labels: []string{label.ID}})
	s.Require().NoError(err)
	st, err := s.mgr.CreateSubTask(SubTaskCreateOptions{Title: "Wireframes", TaskID: task.ID, Labels: []string{label.ID}})
	s.Require().NoError(err)
	s.Require().NoError(s.mgr.AddLabelToProject(p.ID, label.ID))

	s.Require().NoError(s.mgr.DeleteLabel(label.ID))

	assert.Empty(s.T(), p.Labels)
	assert.Empty(s.T(), task.Labels)
	assert.Empty(s.T(), st.Labels)
	_, ok := s.mgr.GetLabel(label.ID)
	assert.False(s.T(), ok)
}

func (s *ManagerTestSuite) TestCreateLabelValidation() {
	_, err := s.mgr.CreateLabel(LabelCreateOptions{Name: "bad", Color: "red"})
	assert.True(s.T(), IsValidation(err))

	label, err := s.mgr.CreateLabel(LabelCreateOptions{Name: "plain"})
	s.Require().NoError(err)
	assert.Equal(s.T(), models.DefaultLabelColor, label.Color)
}

func (s *ManagerTestSuite) TestLabelAttachDetach() {
	p := s.newProject("Website")
	task := s.newTask(p.ID, "Design")
	label, err := s.mgr.CreateLabel(LabelCreateOptions{Name: "urgent"})
	s.Require().NoError(err)

	s.Require().NoError(s.mgr.AddLabelToTask(task.ID, label.ID))
	s.Require().NoError(s.mgr.AddLabelToTask(task.ID, label.ID)) // idempotent
	assert.Equal(s.T(), []string{label.ID}, task.Labels)

	assert.True(s.T(), IsNotFound(s.mgr.AddLabelToTask(task.ID, "ghost")))

	s.Require().NoError(s.mgr.RemoveLabelFromTask(task.ID, label.ID))
	assert.Empty(s.T(), task.Labels)
}

func (s *ManagerTestSuite) TestStatistics() {
	p := s.newProject("Website")
	done := s.newTask(p.ID, "Design")
	task := s.newTask(p.ID, "Build")
	st := s.newSubtask(task.ID, "Compile")
	s.newSubtask(task.ID, "Link")
	s.Require().NoError(s.mgr.ToggleTask(done.ID))
	s.Require().NoError(s.mgr.ToggleSubTask(st.ID))
	_, err := s.mgr.CreateLabel(LabelCreateOptions{Name: "urgent"})
	s.Require().NoError(err)

	stats := s.mgr.GetStatistics()
	assert.Equal(s.T(), 1, stats.Projects)
	assert.Equal(s.T(), 2, stats.Tasks)
	assert.Equal(s.T(), 2, stats.Subtasks)
	assert.Equal(s.T(), 1, stats.Labels)
	assert.Equal(s.T(), 1, stats.CompletedTasks)
	assert.Equal(s.T(), 1, stats.CompletedSubtasks)
	assert.Equal(s.T(), 50.0, stats.TaskCompletionRate)
	assert.Equal(s.T(), 50.0, stats.SubtaskCompletionRate)
}

func (s *ManagerTestSuite) TestPersistenceRoundTrip() {
	p := s.newProject("Website")
	task := s.newTask(p.ID, "Design")
	st := s.newSubtask(task.ID, "Wireframes")
	label, err := s.mgr.CreateLabel(LabelCreateOptions{Name: "urgent"})
	s.Require().NoError(err)
	s.Require().NoError(s.mgr.AddLabelToTask(task.ID, label.ID))
	s.Require().NoError(s.mgr.ToggleSubTask(st.ID))

	reopened := s.openManager()

	gotProject, ok := reopened.GetProject(p.ID)
	s.Require().True(ok)
	assert.Equal(s.T(), []string{task.ID}, gotProject.TaskIDs)

	gotTask, ok := reopened.GetTask(task.ID)
	s.Require().True(ok)
	assert.True(s.T(), gotTask.Completed) // single subtask done
	assert.Equal(s.T(), []string{label.ID}, gotTask.Labels)

	gotSub, ok := reopened.GetSubTask(st.ID)
	s.Require().True(ok)
	assert.True(s.T(), gotSub.Completed)
	assert.NotNil(s.T(), gotSub.CompletedAt)
}

func (s *ManagerTestSuite) TestImportLegacyTasks() {
	p := s.newProject("Inbox")

	due := "2025-07-01"
	legacy := map[string]store.LegacyTask{
		"a1": {Title: "Old chore", Priority: 1, Completed: true, CreatedAt: "2024-01-02T10:00:00Z"},
		"b2": {Title: "Still open", Description: "carry over", DueDate: &due},
	}
	data, err := json.Marshal(legacy)
	s.Require().NoError(err)
	legacyPath := filepath.Join(s.T().TempDir(), "todos.json")
	s.Require().NoError(os.WriteFile(legacyPath, data, 0644))

	n, err := s.mgr.ImportLegacyTasks(legacyPath, p.ID)
	s.Require().NoError(err)
	assert.Equal(s.T(), 2, n)

	tasks := s.mgr.GetTasksByProject(p.ID)
	s.Require().Len(tasks, 2)

	byTitle := map[string]*models.Task{}
	for _, t := range tasks {
		byTitle[t.Title] = t
	}

	chore := byTitle["Old chore"]
	s.Require().NotNil(chore)
	assert.True(s.T(), chore.Completed)
	s.Require().NotNil(chore.CompletedAt)
	assert.Equal(s.T(), "2024-01-02T10:00:00Z", chore.CreatedAt)
	assert.Equal(s.T(), models.PriorityHigh, chore.Priority)

	open := byTitle["Still open"]
	s.Require().NotNil(open)
	assert.False(s.T(), open.Completed)
	assert.Equal(s.T(), models.PriorityLow, open.Priority)
	s.Require().NotNil(open.DueDate)
	assert.Equal(s.T(), due, *open.DueDate)
}

func (s *ManagerTestSuite) TestImportLegacyUnknownProject() {
	_, err := s.mgr.ImportLegacyTasks("whatever.json", "nope")
	assert.True(s.T(), IsNotFound(err))
}

func (s *ManagerTestSuite) TestUpdateProject() {
	p := s.newProject("Website")

	name := "Site"
	version := "2.0.0"
	s.Require().NoError(s.mgr.UpdateProject(p.ID, ProjectUpdate{Name: &name, Version: &version}))
	assert.Equal(s.T(), "Site", p.Name)
	assert.Equal(s.T(), "2.0.0", p.Version)

	empty := " "
	err := s.mgr.UpdateProject(p.ID, ProjectUpdate{Name: &empty})
	assert.True(s.T(), IsValidation(err))

	assert.True(s.T(), IsNotFound(s.mgr.UpdateProject("nope", ProjectUpdate{})))
}

func (s *ManagerTestSuite) TestRejectedUpdateChangesNothing() {
	p := s.newProject("Website")
	task := s.newTask(p.ID, "Design")

	title := "sneaky"
	badPriority := 9
	err := s.mgr.UpdateTask(task.ID, TaskUpdate{Title: &title, Priority: &badPriority})
	s.Require().True(IsValidation(err))
	assert.Equal(s.T(), "Design", task.Title)

	// A later unrelated persist must not flush a half-applied update.
	_, err = s.mgr.CreateLabel(LabelCreateOptions{Name: "urgent"})
	s.Require().NoError(err)

	reopened := s.openManager()
	got, ok := reopened.GetTask(task.ID)
	s.Require().True(ok)
	assert.Equal(s.T(), "Design", got.Title)
	assert.Equal(s.T(), models.PriorityLow, got.Priority)
}

func (s *ManagerTestSuite) TestRejectedSubtaskUpdateChangesNothing() {
	p := s.newProject("Website")
	task := s.newTask(p.ID, "Design")
	st := s.newSubtask(task.ID, "Wireframes")

	title := "sneaky"
	badPriority := 0
	err := s.mgr.UpdateSubTask(st.ID, SubTaskUpdate{Title: &title, Priority: &badPriority})
	s.Require().True(IsValidation(err))
	assert.Equal(s.T(), "Wireframes", st.Title)
	assert.Equal(s.T(), models.PriorityLow, st.Priority)
}

func (s *ManagerTestSuite) TestRejectedLabelUpdateChangesNothing() {
	label, err := s.mgr.CreateLabel(LabelCreateOptions{Name: "urgent"})
	s.Require().NoError(err)

	name := "renamed"
	badColor := "red"
	err = s.mgr.UpdateLabel(label.ID, LabelUpdate{Name: &name, Color: &badColor})
	s.Require().True(IsValidation(err))
	assert.Equal(s.T(), "urgent", label.Name)
	assert.Equal(s.T(), models.DefaultLabelColor, label.Color)
}

func (s *ManagerTestSuite) TestUpdateTaskDueDate() {
	p := s.newProject("Website")
	task := s.newTask(p.ID, "Design")

	due := "2025-07-01"
	s.Require().NoError(s.mgr.UpdateTask(task.ID, TaskUpdate{DueDate: &due}))
	s.Require().NotNil(task.DueDate)
	assert.Equal(s.T(), due, *task.DueDate)

	s.Require().NoError(s.mgr.UpdateTask(task.ID, TaskUpdate{ClearDueDate: true}))
	assert.Nil(s.T(), task.DueDate)
}
