package ui

import (
	"bytes"
	"strings"
	"testing"
)

func renderTable(headers []string, rows [][]string) string {
	var buf bytes.Buffer
	table := NewTable(&buf, headers, &TableOptions{NoColor: true})
	for _, row := range rows {
		table.AddRow(row...)
	}
	table.Render()
	return buf.String()
}

func TestTableRender(t *testing.T) {
	out := renderTable([]string{"NAME", "NAMESPACE"}, [][]string{
		{"String_slugify", "String"},
		{"len", "core"},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + rule + 2 rows, got %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "NAME") {
		t.Errorf("unexpected header line: %q", lines[0])
	}
	if !strings.Contains(lines[1], "----") {
		t.Errorf("expected a dashed rule, got %q", lines[1])
	}
	if !strings.Contains(out, "String_slugify  String") {
		t.Errorf("row cells not aligned two spaces apart:\n%s", out)
	}
}

func TestTableColumnsWidenToLongestCell(t *testing.T) {
	out := renderTable([]string{"A", "B"}, [][]string{
		{"very-long-cell-content", "x"},
	})
	lines := strings.Split(out, "\n")
	// The header's B column must start two spaces after the widest A cell.
	want := len("very-long-cell-content") + 2
	if got := strings.Index(lines[0], "B"); got != want {
		t.Errorf("B column at %d, want %d: %q", got, want, lines[0])
	}
}

func TestTableShortRows(t *testing.T) {
	out := renderTable([]string{"A", "B"}, [][]string{{"only-a"}})
	if !strings.Contains(out, "only-a") {
		t.Errorf("short row lost: %s", out)
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.HasSuffix(line, " ") {
			t.Errorf("line has trailing whitespace: %q", line)
		}
	}
}

func TestTableNoHeaders(t *testing.T) {
	out := renderTable(nil, [][]string{{"a"}})
	if out != "" {
		t.Errorf("headerless table must render nothing, got %q", out)
	}
}

func TestTableEmptyRows(t *testing.T) {
	out := renderTable([]string{"A"}, nil)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Errorf("expected just header + rule, got %q", out)
	}
}
