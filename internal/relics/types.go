// Package relics detects obsolete Python 2 idioms ("relics") in source
// trees. Files are parsed with tree-sitter's Python grammar and a fixed,
// closed rule set is evaluated against every syntax-tree node.
package relics

import "time"

// Kind identifies which rule produced a finding. The set is closed and
// the literal strings are a compatibility contract with downstream
// tooling (CI logs, PR comments), so they must not change.
type Kind string

const (
	KindPercentFormat  Kind = "% formatting"
	KindIterItems      Kind = "iteritems"
	KindIterKeys       Kind = "iterkeys"
	KindIterValues     Kind = "itervalues"
	KindOSPathJoin     Kind = "os.path.join"
	KindXrange         Kind = "xrange"
	KindBasestring     Kind = "basestring"
	KindUnicode        Kind = "unicode"
	KindCommaExcept    Kind = "except E, e:"
	KindPrintStatement Kind = "print statement"
)

// Finding is a single reported match of a relic rule against one
// syntax-tree node. Line is 1-based, Column is the 0-based byte offset
// of the node's starting token within its line.
type Finding struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Column  int    `json:"col"`
	Kind    Kind   `json:"relic"`
	Snippet string `json:"snippet"`
}

// ScanOptions configures a relic scan.
type ScanOptions struct {
	Root        string   `json:"root"`
	ExcludeDirs []string `json:"excludeDirs,omitempty"`
}

// ScanResult contains the complete scan result for one root directory.
// Findings are in deterministic order: files in lexicographic path
// order, nodes in document order within each file.
type ScanResult struct {
	RunID     string      `json:"runId"`
	Root      string      `json:"root"`
	ScannedAt time.Time   `json:"scannedAt"`
	Duration  string      `json:"duration"`
	Findings  []Finding   `json:"findings"`
	Summary   ScanSummary `json:"summary"`
}

// HasFindings reports whether the scan found any relics. CI uses this
// as the pass/fail signal.
func (r *ScanResult) HasFindings() bool {
	return len(r.Findings) > 0
}

// ScanSummary provides aggregate statistics.
type ScanSummary struct {
	TotalFindings   int          `json:"totalFindings"`
	ByKind          map[Kind]int `json:"byKind"`
	FilesScanned    int          `json:"filesScanned"`
	FilesWithRelics int          `json:"filesWithRelics"`
}

// DefaultExcludeDirs returns directories skipped during file discovery.
func DefaultExcludeDirs() []string {
	return []string{
		".git",
		"node_modules",
		"__pycache__",
		".venv",
		"vendor",
	}
}
