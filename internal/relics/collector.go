package relics

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// File is one parsed source file handed to the pattern engine.
type File struct {
	Path   string
	Source []byte
	Root   *sitter.Node
}

// Collector discovers and parses Python files under a root directory.
type Collector struct {
	parser      *Parser
	logger      *slog.Logger
	excludeDirs map[string]bool
}

// NewCollector creates a collector skipping the given directory names.
func NewCollector(logger *slog.Logger, excludeDirs []string) *Collector {
	skip := make(map[string]bool, len(excludeDirs))
	for _, d := range excludeDirs {
		skip[d] = true
	}
	return &Collector{
		parser:      NewParser(),
		logger:      logger,
		excludeDirs: skip,
	}
}

// Collect walks root in lexicographic path order and calls fn once per
// parseable .py file. A file that cannot be read or parsed is skipped
// without surfacing an error; a single malformed file never aborts the
// walk. The scan is best effort over heterogeneous trees.
func (c *Collector) Collect(ctx context.Context, root string, fn func(File) error) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil //nolint:nilerr // skip inaccessible
		}
		if info.IsDir() {
			if path != root && c.excludeDirs[info.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(info.Name(), ".py") {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		source, err := os.ReadFile(path)
		if err != nil {
			c.logger.Debug("Skipping unreadable file", "file", path, "error", err)
			return nil
		}
		rootNode, err := c.parser.Parse(ctx, source)
		if err != nil || rootNode == nil {
			c.logger.Debug("Skipping unparseable file", "file", path, "error", err)
			return nil
		}
		return fn(File{Path: path, Source: source, Root: rootNode})
	})
}
