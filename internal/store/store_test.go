package store

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdesk/internal/models"
)

func testStore(t *testing.T, path string) *Store {
	t.Helper()
	return New(path, log.New(io.Discard))
}

func TestLoadMissingFileStartsEmpty(t *testing.T) {
	s := testStore(t, filepath.Join(t.TempDir(), "nope.json"))

	doc := s.Load()
	require.NotNil(t, doc)
	assert.Empty(t, doc.Labels)
	assert.Empty(t, doc.Projects)
	assert.Empty(t, doc.Tasks)
	assert.Empty(t, doc.Subtasks)
}

func TestLoadCorruptFileStartsEmptyAndWarns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	var buf bytes.Buffer
	s := New(path, log.New(&buf))

	doc := s.Load()
	require.NotNil(t, doc)
	assert.Empty(t, doc.Projects)
	assert.Contains(t, buf.String(), "data file corrupt")
}

func TestLoadNormalizesMissingMappings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"projects": {}}`), 0644))

	doc := testStore(t, path).Load()
	assert.NotNil(t, doc.Labels)
	assert.NotNil(t, doc.Tasks)
	assert.NotNil(t, doc.Subtasks)
}

func TestSaveCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "projects.json")
	s := testStore(t, path)

	require.NoError(t, s.Save(NewDocument()))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.json")
	s := testStore(t, path)

	now := "2025-06-01T12:00:00Z"
	project := models.NewProject("Website", "", "first", now)
	task := models.NewTask("Design", project.ID, models.PriorityHigh, "", nil, now)
	project.AddTask(task.ID, now)
	subtask := models.NewSubTask("Wireframes", task.ID, project.ID, models.PriorityLow, "", nil, now)
	task.AddSubtask(subtask.ID, now)
	subtask.Toggle(now)
	label := models.NewLabel("urgent", "", "", now)

	doc := NewDocument()
	doc.Projects[project.ID] = project
	doc.Tasks[task.ID] = task
	doc.Subtasks[subtask.ID] = subtask
	doc.Labels[label.ID] = label
	require.NoError(t, s.Save(doc))

	got := s.Load()
	require.Len(t, got.Projects, 1)
	assert.Equal(t, []string{task.ID}, got.Projects[project.ID].TaskIDs)
	assert.Equal(t, []string{subtask.ID}, got.Tasks[task.ID].SubtaskIDs)
	assert.True(t, got.Subtasks[subtask.ID].Completed)
	require.NotNil(t, got.Subtasks[subtask.ID].CompletedAt)
	assert.Equal(t, now, *got.Subtasks[subtask.ID].CompletedAt)
	assert.Equal(t, models.DefaultLabelColor, got.Labels[label.ID].Color)
}

func TestLoadLegacy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
        "a1": {"id": "a1", "title": "Old chore", "priority": 1, "completed": true, "created_at": "2024-01-02T10:00:00Z"},
        "b2": {"id": "b2", "title": "Still open", "due_date": "2025-07-01"}
    }`), 0644))

	tasks, err := LoadLegacy(path)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.True(t, tasks["a1"].Completed)
	require.NotNil(t, tasks["b2"].DueDate)
	assert.Equal(t, "2025-07-01", *tasks["b2"].DueDate)
}

func TestLoadLegacyErrors(t *testing.T) {
	_, err := LoadLegacy(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "todos.json")
	require.NoError(t, os.WriteFile(path, []byte("nope"), 0644))
	_, err = LoadLegacy(path)
	assert.Error(t, err)
}
