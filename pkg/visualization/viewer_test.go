package visualization

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"octopusstream/internal/models"
)

// createTestStream builds a stream whose sample at (x, y, t) is x + 10*y + 100*t
func createTestStream(width, height, depth int) *models.AssembledStream {
	stream := &models.AssembledStream{Title: "test_", Width: width, Height: height}
	for t := 0; t < depth; t++ {
		pix := make([]uint16, width*height)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				pix[y*width+x] = uint16(x + 10*y + 100*t)
			}
		}
		stream.Frames = append(stream.Frames, models.Frame{Width: width, Height: height, Pix: pix})
	}
	return stream
}

// TestNewViewer verifies that a new viewer picks up the stream geometry
func TestNewViewer(t *testing.T) {
	viewer := NewViewer(createTestStream(4, 3, 5))

	if viewer.width != 4 {
		t.Errorf("Expected width %d, got %d", 4, viewer.width)
	}

	if viewer.height != 3 {
		t.Errorf("Expected height %d, got %d", 3, viewer.height)
	}

	if viewer.depth != 5 {
		t.Errorf("Expected depth %d, got %d", 5, viewer.depth)
	}
}

// TestExtractSlice verifies frames and kymographs are extracted correctly
func TestExtractSlice(t *testing.T) {
	width, height, depth := 4, 3, 5
	viewer := NewViewer(createTestStream(width, height, depth))

	// Frame slices keep the raw samples
	for z := 0; z < depth; z++ {
		img, err := viewer.ExtractSlice("t", z)
		if err != nil {
			t.Fatalf("Failed to extract frame %d: %v", z, err)
		}
		bounds := img.Bounds()
		if bounds.Dx() != width || bounds.Dy() != height {
			t.Errorf("Expected frame dimensions %dx%d, got %dx%d",
				width, height, bounds.Dx(), bounds.Dy())
		}
		if got := img.Gray16At(2, 1).Y; got != uint16(2+10+100*z) {
			t.Errorf("Frame %d: expected sample %d, got %d", z, 2+10+100*z, got)
		}
	}

	// X kymograph: time horizontal, y vertical
	imgX, err := viewer.ExtractSlice("x", 1)
	if err != nil {
		t.Fatalf("Failed to extract X slice: %v", err)
	}
	if imgX.Bounds().Dx() != depth || imgX.Bounds().Dy() != height {
		t.Errorf("Expected X slice dimensions %dx%d, got %dx%d",
			depth, height, imgX.Bounds().Dx(), imgX.Bounds().Dy())
	}
	if got := imgX.Gray16At(3, 2).Y; got != 1+20+300 {
		t.Errorf("Expected X slice sample %d, got %d", 321, got)
	}

	// Y kymograph: x horizontal, time vertical
	imgY, err := viewer.ExtractSlice("y", 2)
	if err != nil {
		t.Fatalf("Failed to extract Y slice: %v", err)
	}
	if imgY.Bounds().Dx() != width || imgY.Bounds().Dy() != depth {
		t.Errorf("Expected Y slice dimensions %dx%d, got %dx%d",
			width, depth, imgY.Bounds().Dx(), imgY.Bounds().Dy())
	}
	if got := imgY.Gray16At(3, 4).Y; got != 3+20+400 {
		t.Errorf("Expected Y slice sample %d, got %d", 423, got)
	}

	// Test invalid axis
	if _, err := viewer.ExtractSlice("invalid", 0); err == nil {
		t.Error("Expected error for invalid axis, got nil")
	}

	// Test out of bounds position
	if _, err := viewer.ExtractSlice("t", depth); err == nil {
		t.Error("Expected error for out of bounds position, got nil")
	}
	if _, err := viewer.ExtractSlice("x", -1); err == nil {
		t.Error("Expected error for negative position, got nil")
	}
}

// TestProjection verifies max, min and mean projections over time
func TestProjection(t *testing.T) {
	viewer := NewViewer(createTestStream(3, 2, 4))

	tests := []struct {
		method string
		want   uint16
	}{
		{"max", 1 + 10 + 300},
		{"min", 1 + 10},
		{"mean", 1 + 10 + 150},
	}
	for _, tt := range tests {
		img, err := viewer.Projection(tt.method)
		if err != nil {
			t.Fatalf("Projection %s failed: %v", tt.method, err)
		}
		if got := img.Gray16At(1, 1).Y; got != tt.want {
			t.Errorf("Projection %s: expected %d, got %d", tt.method, tt.want, got)
		}
	}

	if _, err := viewer.Projection("median"); err == nil {
		t.Error("Expected error for unknown projection, got nil")
	}

	empty := NewViewer(&models.AssembledStream{Width: 2, Height: 2})
	if _, err := empty.Projection("max"); err == nil {
		t.Error("Expected error for empty stack, got nil")
	}
}

// TestSaveSliceSequence verifies that frames are written as 16-bit PNGs
func TestSaveSliceSequence(t *testing.T) {
	// Skip this test in short mode
	if testing.Short() {
		t.Skip("Skipping file I/O test in short mode")
	}

	depth := 3
	viewer := NewViewer(createTestStream(4, 4, depth))

	outputDir := filepath.Join(t.TempDir(), "frames")
	if err := viewer.SaveSliceSequence("t", outputDir); err != nil {
		t.Fatalf("Failed to save slice sequence: %v", err)
	}

	for z := 0; z < depth; z++ {
		filename := filepath.Join(outputDir, fmt.Sprintf("test_t_%04d.png", z))
		file, err := os.Open(filename)
		if err != nil {
			t.Fatalf("Expected slice file %s: %v", filename, err)
		}
		img, err := png.Decode(file)
		file.Close()
		if err != nil {
			t.Fatalf("Failed to decode %s: %v", filename, err)
		}
		r, _, _, _ := img.At(3, 3).RGBA()
		if uint16(r) != uint16(3+30+100*z) {
			t.Errorf("Frame %d: expected sample %d after round trip, got %d", z, 3+30+100*z, r)
		}
	}

	if err := viewer.SaveSliceSequence("invalid", outputDir); err == nil {
		t.Error("Expected error for invalid axis, got nil")
	}
}
