package relics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Scanner runs the full relic scan: discover files, parse each one,
// inspect every tree, summarize. Files are scanned one at a time; each
// file's scan is independent of every other's.
type Scanner struct {
	logger *slog.Logger
}

// NewScanner creates a new relic scanner.
func NewScanner(logger *slog.Logger) *Scanner {
	return &Scanner{logger: logger}
}

// Scan performs a relic scan with the given options. Rerunning over
// unchanged input produces an identical finding sequence.
func (s *Scanner) Scan(ctx context.Context, opts ScanOptions) (*ScanResult, error) {
	start := time.Now()

	if len(opts.ExcludeDirs) == 0 {
		opts.ExcludeDirs = DefaultExcludeDirs()
	}

	collector := NewCollector(s.logger, opts.ExcludeDirs)

	var findings []Finding
	filesScanned := 0

	err := collector.Collect(ctx, opts.Root, func(f File) error {
		filesScanned++
		fileFindings := Inspect(f.Path, f.Source, f.Root)
		if len(fileFindings) > 0 {
			s.logger.Debug("Relics found", "file", f.Path, "count", len(fileFindings))
		}
		findings = append(findings, fileFindings...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	result := &ScanResult{
		RunID:     uuid.NewString(),
		Root:      opts.Root,
		ScannedAt: time.Now().UTC(),
		Duration:  time.Since(start).String(),
		Findings:  findings,
		Summary:   buildSummary(findings, filesScanned),
	}

	s.logger.Info("Scan complete",
		"root", opts.Root,
		"files", filesScanned,
		"findings", len(findings),
		"duration", time.Since(start).String(),
	)

	return result, nil
}

// buildSummary creates aggregate statistics from findings.
func buildSummary(findings []Finding, filesScanned int) ScanSummary {
	summary := ScanSummary{
		TotalFindings: len(findings),
		ByKind:        make(map[Kind]int),
		FilesScanned:  filesScanned,
	}

	files := make(map[string]bool)
	for _, f := range findings {
		summary.ByKind[f.Kind]++
		files[f.File] = true
	}
	summary.FilesWithRelics = len(files)

	return summary
}
