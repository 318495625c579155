package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cascadehq/cascade/pkg/models"
	"gopkg.in/yaml.v3"
)

// DependencyFile is the top-level structure of dependencies.yaml.
type DependencyFile struct {
	Version string                           `yaml:"version"`
	Edges   map[string]models.DependencyEdge `yaml:"edges"`
}

// DependencyStore defines edge persistence for one workspace. Edges are
// keyed by ID; the ordered (source, target) pair is additionally unique.
type DependencyStore interface {
	AddEdge(edge models.DependencyEdge) error
	RemoveEdge(edgeID string) error
	GetEdge(edgeID string) (*models.DependencyEdge, error)
	EdgeByPair(sourceID, targetID string) (*models.DependencyEdge, bool)
	Outgoing(taskID string) []models.DependencyEdge
	Incoming(taskID string) []models.DependencyEdge
	AllEdges() []models.DependencyEdge
	Load() error
	Save() error
}

type fileDependencyStore struct {
	basePath  string
	workspace string
	data      DependencyFile
	// byPair indexes edges by "source\x00target" for duplicate detection.
	byPair map[string]string
}

// NewDependencyStore creates a DependencyStore backed by
// basePath/workspaces/<workspace>/dependencies.yaml.
func NewDependencyStore(basePath, workspace string) DependencyStore {
	return &fileDependencyStore{
		basePath:  basePath,
		workspace: workspace,
		data: DependencyFile{
			Version: "1.0",
			Edges:   make(map[string]models.DependencyEdge),
		},
		byPair: make(map[string]string),
	}
}

func pairKey(sourceID, targetID string) string {
	return sourceID + "\x00" + targetID
}

func (s *fileDependencyStore) dir() string {
	return filepath.Join(s.basePath, "workspaces", s.workspace)
}

func (s *fileDependencyStore) filePath() string {
	return filepath.Join(s.dir(), "dependencies.yaml")
}

func (s *fileDependencyStore) AddEdge(edge models.DependencyEdge) error {
	if edge.ID == "" {
		return fmt.Errorf("adding dependency: ID must not be empty")
	}
	if _, exists := s.data.Edges[edge.ID]; exists {
		return fmt.Errorf("adding dependency: edge %s already exists", edge.ID)
	}
	key := pairKey(edge.SourceID, edge.TargetID)
	if existing, dup := s.byPair[key]; dup {
		return fmt.Errorf("adding dependency: pair %s -> %s already linked by %s",
			edge.SourceID, edge.TargetID, existing)
	}
	s.data.Edges[edge.ID] = edge
	s.byPair[key] = edge.ID
	return nil
}

func (s *fileDependencyStore) RemoveEdge(edgeID string) error {
	edge, exists := s.data.Edges[edgeID]
	if !exists {
		return fmt.Errorf("removing dependency: edge %s not found", edgeID)
	}
	delete(s.data.Edges, edgeID)
	delete(s.byPair, pairKey(edge.SourceID, edge.TargetID))
	return nil
}

func (s *fileDependencyStore) GetEdge(edgeID string) (*models.DependencyEdge, error) {
	edge, exists := s.data.Edges[edgeID]
	if !exists {
		return nil, fmt.Errorf("edge %s not found in workspace %s", edgeID, s.workspace)
	}
	return &edge, nil
}

func (s *fileDependencyStore) EdgeByPair(sourceID, targetID string) (*models.DependencyEdge, bool) {
	id, exists := s.byPair[pairKey(sourceID, targetID)]
	if !exists {
		return nil, false
	}
	edge := s.data.Edges[id]
	return &edge, true
}

func (s *fileDependencyStore) Outgoing(taskID string) []models.DependencyEdge {
	var edges []models.DependencyEdge
	for _, e := range s.data.Edges {
		if e.SourceID == taskID {
			edges = append(edges, e)
		}
	}
	sortByID(edges)
	return edges
}

func (s *fileDependencyStore) Incoming(taskID string) []models.DependencyEdge {
	var edges []models.DependencyEdge
	for _, e := range s.data.Edges {
		if e.TargetID == taskID {
			edges = append(edges, e)
		}
	}
	sortByID(edges)
	return edges
}

func (s *fileDependencyStore) AllEdges() []models.DependencyEdge {
	edges := make([]models.DependencyEdge, 0, len(s.data.Edges))
	for _, e := range s.data.Edges {
		edges = append(edges, e)
	}
	sortByID(edges)
	return edges
}

func sortByID(edges []models.DependencyEdge) {
	sort.Slice(edges, func(i, j int) bool {
		return edges[i].ID < edges[j].ID
	})
}

func (s *fileDependencyStore) Load() error {
	data, err := os.ReadFile(s.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			s.data = DependencyFile{
				Version: "1.0",
				Edges:   make(map[string]models.DependencyEdge),
			}
			s.byPair = make(map[string]string)
			return nil
		}
		return fmt.Errorf("loading dependencies: %w", err)
	}

	var df DependencyFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return fmt.Errorf("loading dependencies: parsing YAML: %w", err)
	}
	if df.Edges == nil {
		df.Edges = make(map[string]models.DependencyEdge)
	}
	s.data = df
	s.byPair = make(map[string]string, len(df.Edges))
	for id, e := range df.Edges {
		s.byPair[pairKey(e.SourceID, e.TargetID)] = id
	}
	return nil
}

func (s *fileDependencyStore) Save() error {
	if err := os.MkdirAll(s.dir(), 0o750); err != nil {
		return fmt.Errorf("saving dependencies: creating directory: %w", err)
	}
	data, err := yaml.Marshal(&s.data)
	if err != nil {
		return fmt.Errorf("saving dependencies: marshaling YAML: %w", err)
	}
	if err := os.WriteFile(s.filePath(), data, 0o600); err != nil {
		return fmt.Errorf("saving dependencies: writing file: %w", err)
	}
	return nil
}
