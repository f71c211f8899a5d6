// Package store reads and writes the JSON document that backs all
// persisted state: one file holding the label, project, task and
// subtask mappings.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"taskdesk/internal/models"
)

// Document is the persisted shape of the whole data set, each entity
// mapping keyed by id.
type Document struct {
	Labels   map[string]*models.Label   `json:"labels"`
	Projects map[string]*models.Project `json:"projects"`
	Tasks    map[string]*models.Task    `json:"tasks"`
	Subtasks map[string]*models.SubTask `json:"subtasks"`
}

// NewDocument returns an empty document with all mappings allocated.
func NewDocument() *Document {
	return &Document{
		Labels:   map[string]*models.Label{},
		Projects: map[string]*models.Project{},
		Tasks:    map[string]*models.Task{},
		Subtasks: map[string]*models.SubTask{},
	}
}

// Store binds the document to a file path.
type Store struct {
	path string
	log  *log.Logger
}

// New creates a store for the given file path.
func New(path string, logger *log.Logger) *Store {
	return &Store{path: path, log: logger}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the document from disk. A missing file, an unreadable
// file or unparseable content all yield an empty document; read
// failures are logged but never surfaced, so a ruined data file costs
// the data and not the session.
func (s *Store) Load() *Document {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("data file unreadable, starting empty", "path", s.path, "err", err)
		}
		return NewDocument()
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.log.Warn("data file corrupt, starting empty", "path", s.path, "err", err)
		return NewDocument()
	}

	// A top-level mapping may be absent in files written by older
	// versions; treat it as empty.
	if doc.Labels == nil {
		doc.Labels = map[string]*models.Label{}
	}
	if doc.Projects == nil {
		doc.Projects = map[string]*models.Project{}
	}
	if doc.Tasks == nil {
		doc.Tasks = map[string]*models.Task{}
	}
	if doc.Subtasks == nil {
		doc.Subtasks = map[string]*models.SubTask{}
	}
	return &doc
}

// Save overwrites the data file with the full document, creating
// parent directories as needed. Output is indented, key-sorted (map
// marshaling is ordered) and keeps non-ASCII text readable.
func (s *Store) Save(doc *Document) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	f, err := os.Create(s.path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return f.Close()
}
