// Package repofetch acquires the tree to scan. Remote targets are
// shallow-cloned into a temporary directory; local targets are used in
// place. The scanner core only ever sees a local path.
package repofetch

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// IsRemote reports whether target names a remote repository rather
// than a local path.
func IsRemote(target string) bool {
	return strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://")
}

// Fetch clones url at depth 1 into a fresh temporary directory and
// returns the local path together with a cleanup func removing it.
// No retries: a failed clone is reported once and the caller decides.
func Fetch(ctx context.Context, url string, logger *slog.Logger) (string, func(), error) {
	dir, err := os.MkdirTemp("", "deadsnakes-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create clone directory: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	logger.Debug("Cloning repository", "url", url, "dir", dir)

	cmd := exec.CommandContext(ctx, "git", "clone", "--depth", "1", url, dir)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("git clone failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return dir, cleanup, nil
}
