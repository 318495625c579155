// Package storage provides YAML-file-backed stores for tasks and dependency
// edges, one file pair per workspace under workspaces/<name>/.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cascadehq/cascade/pkg/models"
	"gopkg.in/yaml.v3"
)

// TaskFile is the top-level structure of tasks.yaml.
type TaskFile struct {
	Version string                 `yaml:"version"`
	Tasks   map[string]models.Task `yaml:"tasks"`
}

// TaskStore defines the task persistence interface the engine consumes.
// In the surrounding product the task records are owned by an external
// document store; this file-backed implementation stands in for it.
type TaskStore interface {
	AddTask(task models.Task) error
	UpdateTask(task models.Task) error
	GetTask(taskID string) (*models.Task, error)
	GetAllTasks() ([]models.Task, error)
	Load() error
	Save() error
}

type fileTaskStore struct {
	basePath  string
	workspace string
	data      TaskFile
}

// NewTaskStore creates a TaskStore backed by
// basePath/workspaces/<workspace>/tasks.yaml.
func NewTaskStore(basePath, workspace string) TaskStore {
	return &fileTaskStore{
		basePath:  basePath,
		workspace: workspace,
		data: TaskFile{
			Version: "1.0",
			Tasks:   make(map[string]models.Task),
		},
	}
}

func (s *fileTaskStore) dir() string {
	return filepath.Join(s.basePath, "workspaces", s.workspace)
}

func (s *fileTaskStore) filePath() string {
	return filepath.Join(s.dir(), "tasks.yaml")
}

func (s *fileTaskStore) AddTask(task models.Task) error {
	if task.ID == "" {
		return fmt.Errorf("adding task: ID must not be empty")
	}
	if _, exists := s.data.Tasks[task.ID]; exists {
		return fmt.Errorf("adding task: task %s already exists", task.ID)
	}
	s.data.Tasks[task.ID] = task
	return nil
}

func (s *fileTaskStore) UpdateTask(task models.Task) error {
	if _, exists := s.data.Tasks[task.ID]; !exists {
		return fmt.Errorf("updating task %s: not present in workspace %s", task.ID, s.workspace)
	}
	s.data.Tasks[task.ID] = task
	return nil
}

func (s *fileTaskStore) GetTask(taskID string) (*models.Task, error) {
	task, exists := s.data.Tasks[taskID]
	if !exists {
		return nil, fmt.Errorf("task %s not found in workspace %s", taskID, s.workspace)
	}
	return &task, nil
}

func (s *fileTaskStore) GetAllTasks() ([]models.Task, error) {
	tasks := make([]models.Task, 0, len(s.data.Tasks))
	for _, t := range s.data.Tasks {
		tasks = append(tasks, t)
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].ID < tasks[j].ID
	})
	return tasks, nil
}

func (s *fileTaskStore) Load() error {
	data, err := os.ReadFile(s.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			s.data = TaskFile{
				Version: "1.0",
				Tasks:   make(map[string]models.Task),
			}
			return nil
		}
		return fmt.Errorf("loading tasks: %w", err)
	}

	var tf TaskFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return fmt.Errorf("loading tasks: parsing YAML: %w", err)
	}
	if tf.Tasks == nil {
		tf.Tasks = make(map[string]models.Task)
	}
	s.data = tf
	return nil
}

func (s *fileTaskStore) Save() error {
	if err := os.MkdirAll(s.dir(), 0o750); err != nil {
		return fmt.Errorf("saving tasks: creating directory: %w", err)
	}
	data, err := yaml.Marshal(&s.data)
	if err != nil {
		return fmt.Errorf("saving tasks: marshaling YAML: %w", err)
	}
	if err := os.WriteFile(s.filePath(), data, 0o600); err != nil {
		return fmt.Errorf("saving tasks: writing file: %w", err)
	}
	return nil
}
