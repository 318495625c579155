package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// IDGenerator produces unique, sequential identifiers within a workspace.
type IDGenerator interface {
	NextID(workspace string) (string, error)
}

// fileIDGenerator persists its counter in a dotfile inside the workspace
// directory (e.g. .task_counter, .dep_counter), one counter per prefix.
type fileIDGenerator struct {
	basePath string
	prefix   string
	padWidth int
}

// NewIDGenerator creates an IDGenerator producing {prefix}-{counter} IDs,
// zero-padded to padWidth (0 disables padding). The counter file lives in
// basePath/workspaces/<workspace>/.
func NewIDGenerator(basePath, prefix string, padWidth int) IDGenerator {
	return &fileIDGenerator{
		basePath: basePath,
		prefix:   prefix,
		padWidth: padWidth,
	}
}

func (g *fileIDGenerator) NextID(workspace string) (string, error) {
	dir := filepath.Join(g.basePath, "workspaces", workspace)
	counterPath := filepath.Join(dir, "."+strings.ToLower(g.prefix)+"_counter")

	counter := 0
	data, err := os.ReadFile(counterPath)
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("reading %s counter: %w", g.prefix, err)
	}
	if err == nil {
		trimmed := strings.TrimSpace(string(data))
		counter, err = strconv.Atoi(trimmed)
		if err != nil {
			return "", fmt.Errorf("parsing %s counter %q: %w", g.prefix, trimmed, err)
		}
	}

	counter++

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("creating workspace directory for %s counter: %w", g.prefix, err)
	}
	if err := os.WriteFile(counterPath, []byte(strconv.Itoa(counter)), 0o600); err != nil {
		return "", fmt.Errorf("writing %s counter: %w", g.prefix, err)
	}

	if g.padWidth > 0 {
		return fmt.Sprintf("%s-%0*d", g.prefix, g.padWidth, counter), nil
	}
	return fmt.Sprintf("%s-%d", g.prefix, counter), nil
}
