package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deadsnakes/internal/relics"
)

var fixtures = []relics.Finding{
	{File: "a.py", Line: 1, Column: 0, Kind: relics.KindPrintStatement, Snippet: `print "x"`},
	{File: "b.py", Line: 3, Column: 4, Kind: relics.KindPercentFormat, Snippet: `"%s" % name`},
	{File: "b.py", Line: 9, Column: 0, Kind: relics.KindOSPathJoin, Snippet: "os.path.join"},
}

func TestParseFormat(t *testing.T) {
	for _, valid := range []string{"table", "json", "plain", ""} {
		_, err := ParseFormat(valid)
		assert.NoError(t, err, "format %q", valid)
	}
	_, err := ParseFormat("sarif")
	assert.Error(t, err)
}

func TestRenderPlain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, fixtures, FormatPlain))

	want := "a.py:1:0 print statement print \"x\"\n" +
		"b.py:3:4 % formatting \"%s\" % name\n" +
		"b.py:9:0 os.path.join os.path.join\n"
	assert.Equal(t, want, buf.String())
}

func TestRenderJSONLines(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, fixtures, FormatJSON))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	var first relics.Finding
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, fixtures[0], first)

	// Wire field names are a compatibility contract.
	assert.Contains(t, lines[1], `"relic":"% formatting"`)
	assert.Contains(t, lines[1], `"col":4`)
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, fixtures, FormatTable))

	out := buf.String()
	assert.Contains(t, out, "FILE")
	assert.Contains(t, out, "RELIC")
	assert.Contains(t, out, "a.py")
	assert.Contains(t, out, "print statement")
}

func TestRenderIsDeterministic(t *testing.T) {
	for _, format := range []Format{FormatTable, FormatJSON, FormatPlain} {
		var first, second bytes.Buffer
		require.NoError(t, Render(&first, fixtures, format))
		require.NoError(t, Render(&second, fixtures, format))
		assert.Equal(t, first.String(), second.String(), "format %s", format)
	}
}

func TestMarkdown(t *testing.T) {
	body := Markdown(fixtures)

	assert.True(t, strings.HasPrefix(body, "## Dead Snakes Report"))
	assert.Contains(t, body, "Found **3**")
	assert.Contains(t, body, "| a.py | 1 | 0 | print statement |")
}

func TestMarkdownEscapesPipes(t *testing.T) {
	body := Markdown([]relics.Finding{
		{File: "a.py", Line: 1, Kind: relics.KindPercentFormat, Snippet: `"a|b" % x`},
	})
	assert.Contains(t, body, `\|`)
}

func TestWriteFile(t *testing.T) {
	result := &relics.ScanResult{
		RunID:    "run-1",
		Root:     "/tmp/x",
		Findings: fixtures,
	}

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, WriteFile(path, result))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded relics.ScanResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, result.Findings, decoded.Findings)
}

func TestWriteFileGzip(t *testing.T) {
	result := &relics.ScanResult{RunID: "run-2", Findings: fixtures}

	path := filepath.Join(t.TempDir(), "report.json.gz")
	require.NoError(t, WriteFile(path, result))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)

	var decoded relics.ScanResult
	require.NoError(t, json.NewDecoder(gz).Decode(&decoded))
	assert.Equal(t, "run-2", decoded.RunID)
	assert.Equal(t, result.Findings, decoded.Findings)
}
