package filename

import (
	"errors"
	"path/filepath"
	"testing"

	"octopusstream/pkg/streamerr"
)

// TestParse verifies stem and index extraction from chunk filenames
func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		wantStem  string
		wantIndex int
	}{
		{"OctopusData_1.dth", "OctopusData_", 1},
		{"OctopusData_12.dat", "OctopusData_", 12},
		{"run_2_0007.dth", "run_2_", 7},
		{"/some/dir/Cam_B_100.dat", "Cam_B_", 100},
	}

	for _, tt := range tests {
		stem, index, err := Parse(tt.name)
		if err != nil {
			t.Errorf("Parse(%q) returned error: %v", tt.name, err)
			continue
		}
		if stem != tt.wantStem || index != tt.wantIndex {
			t.Errorf("Parse(%q) = (%q, %d), expected (%q, %d)",
				tt.name, stem, index, tt.wantStem, tt.wantIndex)
		}
	}
}

// TestParseRejects verifies that non-conforming names fail with ErrFormat
func TestParseRejects(t *testing.T) {
	for _, name := range []string{
		"OctopusData_1.tif",
		"OctopusData1.dth",
		"OctopusData_.dth",
		"Octopus-Data_3.dth",
		"OctopusData_1.dth.bak",
		"",
	} {
		if _, _, err := Parse(name); !errors.Is(err, streamerr.ErrFormat) {
			t.Errorf("Parse(%q): expected ErrFormat, got %v", name, err)
		}
	}
}

// TestRoundTrip verifies that Parse recovers what Build composed
func TestRoundTrip(t *testing.T) {
	dir := filepath.Join("data", "session")
	for _, stem := range []string{"a_", "OctopusData_", "x_y_", "_"} {
		for _, index := range []int{0, 1, 9, 10, 123456} {
			for _, ext := range []string{".dat", ".dth"} {
				path, err := Build(dir, stem, index, ext)
				if err != nil {
					t.Fatalf("Build failed: %v", err)
				}
				gotStem, gotIndex, err := Parse(path)
				if err != nil {
					t.Fatalf("Parse(%q) failed: %v", path, err)
				}
				if gotStem != stem || gotIndex != index {
					t.Errorf("Round trip of (%q, %d) gave (%q, %d)", stem, index, gotStem, gotIndex)
				}
			}
		}
	}
}

// TestBuildEmptyStem verifies that an empty stem is rejected
func TestBuildEmptyStem(t *testing.T) {
	if _, err := Build("dir", "", 1, ".dat"); !errors.Is(err, streamerr.ErrFormat) {
		t.Errorf("Expected ErrFormat for empty stem, got %v", err)
	}
}

// TestParseLocator verifies locator construction from a header path
func TestParseLocator(t *testing.T) {
	path := filepath.Join("data", "OctopusData_3.dth")
	loc, err := ParseLocator(path)
	if err != nil {
		t.Fatalf("ParseLocator failed: %v", err)
	}
	if loc.Dir != "data" || loc.Stem != "OctopusData_" || loc.Index != 3 {
		t.Errorf("Unexpected locator %+v", loc)
	}

	dataPath, err := DataPath(loc, 4)
	if err != nil {
		t.Fatalf("DataPath failed: %v", err)
	}
	if dataPath != filepath.Join("data", "OctopusData_4.dat") {
		t.Errorf("Unexpected data path %s", dataPath)
	}

	if _, err := ParseLocator(filepath.Join("data", "OctopusData_3.dat")); !errors.Is(err, streamerr.ErrFormat) {
		t.Errorf("Expected ErrFormat for a .dat locator, got %v", err)
	}
}
