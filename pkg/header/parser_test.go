package header

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"octopusstream/pkg/streamerr"
)

// writeHeader writes header lines to a file in a temporary directory
func writeHeader(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "OctopusData_1.dth")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatalf("Failed to write header: %v", err)
	}
	return path
}

// TestParse verifies record count, field order and value normalization
func TestParse(t *testing.T) {
	path := writeHeader(t,
		"N: 1 W: 4 H: 2 Time: 1434550000.125 Shutter: True",
		"N: 2 W: 4 H: 2 Time: 1434550000.225 Shutter: False",
		"N: 3 W: 4 H: 2 Time: 1434550000.325 Shutter: True",
	)

	records, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}

	wantNames := []string{"N", "W", "H", "Time", "Shutter"}
	names := records[0].Schema.Names
	if len(names) != len(wantNames) {
		t.Fatalf("Expected fields %v, got %v", wantNames, names)
	}
	for i := range wantNames {
		if names[i] != wantNames[i] {
			t.Errorf("Field %d: expected %s, got %s", i, wantNames[i], names[i])
		}
	}

	maxN := 0.0
	for _, rec := range records {
		n, _ := rec.Get("N")
		if n > maxN {
			maxN = n
		}
	}
	if int(maxN) != len(records) {
		t.Errorf("Expected record count %d to equal max N %v", len(records), maxN)
	}

	if v, _ := records[0].Get("Shutter"); v != 1 {
		t.Errorf("Expected True to parse as 1, got %v", v)
	}
	if v, _ := records[1].Get("Shutter"); v != 0 {
		t.Errorf("Expected False to parse as 0, got %v", v)
	}
	if v, _ := records[2].Get("Time"); v != 1434550000.325 {
		t.Errorf("Expected Time 1434550000.325, got %v", v)
	}
	if records[1].Raw[4] != "False" {
		t.Errorf("Expected raw token False, got %s", records[1].Raw[4])
	}

	w, h, ok := Geometry(records[0])
	if !ok || w != 4 || h != 2 {
		t.Errorf("Expected geometry 4x2, got %dx%d (ok=%v)", w, h, ok)
	}
}

// TestParseMissingFile verifies that an absent header is reported as ErrMissingFile
func TestParseMissingFile(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "nope_1.dth"))
	if !errors.Is(err, streamerr.ErrMissingFile) {
		t.Errorf("Expected ErrMissingFile, got %v", err)
	}
}

// TestParseMalformed verifies that a short line is rejected rather than misaligned
func TestParseMalformed(t *testing.T) {
	path := writeHeader(t,
		"N: 1 W: 4 H: 2 Time: 1.0",
		"N: 2 W: 4",
	)
	_, err := Parse(path)
	if !errors.Is(err, streamerr.ErrMalformedHeader) {
		t.Errorf("Expected ErrMalformedHeader, got %v", err)
	}
}

// TestParseValueError verifies that free text values are rejected
func TestParseValueError(t *testing.T) {
	path := writeHeader(t,
		"N: 1 W: 4 H: 2 Gain: N/A",
	)
	_, err := Parse(path)
	if !errors.Is(err, streamerr.ErrValueParse) {
		t.Errorf("Expected ErrValueParse, got %v", err)
	}
}

// TestParseValue checks the normalization rules directly
func TestParseValue(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{"True", 1, false},
		{"False", 0, false},
		{"42", 42, false},
		{"-1.5e3", -1500, false},
		{"true", 0, true},
		{"N/A", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseValue(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseValue(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseValue(%q) = %v, expected %v", tt.raw, got, tt.want)
		}
	}
}

// TestParseReaderBlankLines verifies that trailing blank lines do not produce records
func TestParseReaderBlankLines(t *testing.T) {
	input := "N: 1 W: 2 H: 2\nN: 2 W: 2 H: 2\n\n\n"
	records, err := ParseReader(strings.NewReader(input), "inline")
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("Expected 2 records, got %d", len(records))
	}
}

// TestGeometryRejectsInvalidSizes verifies that only positive whole sizes are accepted
func TestGeometryRejectsInvalidSizes(t *testing.T) {
	tests := []struct {
		line string
		ok   bool
	}{
		{"N: 1 W: 512 H: 256", true},
		{"N: 1 W: 0.5 H: 2", false},
		{"N: 1 W: 2 H: 1.5", false},
		{"N: 1 W: 0 H: 2", false},
		{"N: 1 W: -4 H: 2", false},
		{"N: 1 H: 2", false},
	}

	for _, tt := range tests {
		records, err := ParseReader(strings.NewReader(tt.line), "inline")
		if err != nil {
			t.Fatalf("ParseReader(%q) failed: %v", tt.line, err)
		}
		if _, _, ok := Geometry(records[0]); ok != tt.ok {
			t.Errorf("Geometry(%q) ok = %v, expected %v", tt.line, ok, tt.ok)
		}
	}
}
