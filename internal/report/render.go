// Package report renders finding sequences for the scanner's output
// channels: the terminal, CI logs, report artifacts and PR comments.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/klauspost/compress/gzip"

	"deadsnakes/internal/relics"
)

// Title is the marker heading used in PR comment bodies. The notifier
// matches on it to update an existing comment instead of posting a new
// one, so it must stay stable across releases.
const Title = "Dead Snakes Report"

// Format selects an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatPlain Format = "plain"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatTable, FormatJSON, FormatPlain:
		return Format(s), nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (use: table, json, plain)", s)
	}
}

// Render writes findings to w in the requested format. Output is a pure
// function of the finding sequence.
func Render(w io.Writer, findings []relics.Finding, format Format) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, findings)
	case FormatPlain:
		return renderPlain(w, findings)
	default:
		return renderTable(w, findings)
	}
}

// renderTable writes an aligned column view for terminals.
func renderTable(w io.Writer, findings []relics.Finding) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tLINE\tCOL\tRELIC\tSNIPPET")
	for _, f := range findings {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n", f.File, f.Line, f.Column, f.Kind, oneLine(f.Snippet))
	}
	return tw.Flush()
}

// renderJSON writes one JSON object per finding, one per line.
func renderJSON(w io.Writer, findings []relics.Finding) error {
	enc := json.NewEncoder(w)
	for _, f := range findings {
		if err := enc.Encode(f); err != nil {
			return err
		}
	}
	return nil
}

// renderPlain writes the compact file:line:col form.
func renderPlain(w io.Writer, findings []relics.Finding) error {
	for _, f := range findings {
		if _, err := fmt.Fprintf(w, "%s:%d:%d %s %s\n", f.File, f.Line, f.Column, f.Kind, oneLine(f.Snippet)); err != nil {
			return err
		}
	}
	return nil
}

// Markdown renders the PR comment body: the title marker followed by a
// markdown table of findings.
func Markdown(findings []relics.Finding) string {
	var b strings.Builder
	b.WriteString("## " + Title + "\n\n")
	b.WriteString(fmt.Sprintf("Found **%d** obsolete Python 2 construct(s).\n\n", len(findings)))
	b.WriteString("| File | Line | Col | Relic | Snippet |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, f := range findings {
		b.WriteString(fmt.Sprintf("| %s | %d | %d | %s | `%s` |\n",
			escapeCell(f.File), f.Line, f.Column, escapeCell(string(f.Kind)), escapeCell(oneLine(f.Snippet))))
	}
	return b.String()
}

// WriteFile writes the full scan result as JSON to path. A .gz suffix
// gzip-compresses the artifact.
func WriteFile(path string, result *relics.ScanResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var w io.Writer = f
	if strings.HasSuffix(path, ".gz") {
		gz := gzip.NewWriter(f)
		defer func() { _ = gz.Close() }()
		w = gz
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// oneLine collapses a snippet so it cannot break row-oriented output.
func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	return s
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
