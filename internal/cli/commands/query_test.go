package commands

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRecords = [][]any{
	{"Kerala", time.Date(2020, 3, 14, 0, 0, 0, 0, time.UTC), 10.0},
	{"Goa, North", time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC), nil},
}

var testCols = []string{"region", "date", "cases"}

func TestRenderRecords_Table(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, renderRecords(buf, testCols, testRecords, "table"))

	out := buf.String()
	assert.Contains(t, out, "REGION")
	assert.Contains(t, out, "2020-03-14")
	assert.Contains(t, out, "NULL")
	assert.Contains(t, out, "(2 rows)")
}

func TestRenderRecords_JSONFormat(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, renderRecords(buf, testCols, testRecords, "json"))

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Kerala", rows[0]["region"])
	assert.Equal(t, "2020-03-14", rows[0]["date"])
	assert.InDelta(t, 10.0, rows[0]["cases"], 1e-9)
	assert.Nil(t, rows[1]["cases"])
}

func TestRenderRecords_CSVFormat(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, renderRecords(buf, testCols, testRecords, "csv"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"region,date,cases",
		"Kerala,2020-03-14,10",
		`"Goa, North",2020-03-15,NULL`,
	}, lines)
}

func TestRenderRecords_MarkdownFormat(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, renderRecords(buf, testCols, testRecords, "md"))

	out := strings.ToLower(buf.String())
	assert.Contains(t, out, "| region | date | cases |")
	assert.Contains(t, out, "| kerala | 2020-03-14 | 10 |")
	assert.NotContains(t, out, "rows)")
}

func TestRenderRecords_EmptyResults(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, renderRecords(buf, testCols, nil, "table"))
	assert.Equal(t, "(0 rows)\n", buf.String())

	buf.Reset()
	require.NoError(t, renderRecords(buf, testCols, nil, "json"))
	assert.Equal(t, "[]\n", buf.String())
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "NULL"},
		{"string", "Kerala", "Kerala"},
		{"int", int64(42), "42"},
		{"whole float", 37.0, "37"},
		{"fraction", 0.125, "0.125"},
		{"float32", float32(1.5), "1.5"},
		{"bool", true, "true"},
		{"date", time.Date(2021, 1, 16, 0, 0, 0, 0, time.UTC), "2021-01-16"},
		{"timestamp", time.Date(2021, 1, 16, 9, 30, 0, 0, time.UTC), "2021-01-16T09:30:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatValue(tt.in))
		})
	}
}

func TestPrintREPLHelp(t *testing.T) {
	buf := new(bytes.Buffer)
	printREPLHelp(buf)

	for _, cmd := range []string{".help", ".tables", ".schema", ".clear", ".quit"} {
		assert.Contains(t, buf.String(), cmd)
	}
}

func TestNewTableCompleter(t *testing.T) {
	c := newTableCompleter([]string{"merged", "wide_cases"})

	var names []string
	for _, child := range c.GetChildren() {
		names = append(names, strings.TrimSpace(string(child.GetName())))
	}
	assert.Contains(t, names, "merged")
	assert.Contains(t, names, "wide_cases")
	assert.Contains(t, names, ".schema")
}

func TestHistoryPath(t *testing.T) {
	assert.Empty(t, historyPath(""))

	root := t.TempDir()
	assert.Equal(t, root+"/.covidlens/query_history", historyPath(root))
	assert.DirExists(t, root+"/.covidlens")
}
