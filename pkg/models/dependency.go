package models

import "time"

// DependencyType classifies how a source task constrains its dependent.
type DependencyType string

const (
	// FinishToStart: the dependent may not start before the source finishes.
	FinishToStart DependencyType = "fs"
	// StartToStart: the dependent may not start before the source starts.
	StartToStart DependencyType = "ss"
	// FinishToFinish: the dependent may not finish before the source finishes.
	FinishToFinish DependencyType = "ff"
	// StartToFinish: the dependent may not finish before the source starts.
	StartToFinish DependencyType = "sf"
)

// DependencyTypes lists all valid dependency types.
var DependencyTypes = []DependencyType{
	FinishToStart,
	StartToStart,
	FinishToFinish,
	StartToFinish,
}

// IsValid reports whether dt is one of the four supported constraint types.
func (dt DependencyType) IsValid() bool {
	switch dt {
	case FinishToStart, StartToStart, FinishToFinish, StartToFinish:
		return true
	default:
		return false
	}
}

// DependencyEdge is a directed relation from a blocking task (source) to a
// constrained task (target). Within a workspace at most one edge exists per
// ordered (source, target) pair, and the edge set is always acyclic.
// Edges are never mutated; a type change is a remove followed by an add.
type DependencyEdge struct {
	ID        string         `yaml:"id"`
	Workspace string         `yaml:"workspace"`
	SourceID  string         `yaml:"source"`
	TargetID  string         `yaml:"target"`
	Type      DependencyType `yaml:"type"`
	Created   time.Time      `yaml:"created"`
}
