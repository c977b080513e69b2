package models

import (
	"testing"
)

// TestSchemaLookup verifies positional lookup of field names
func TestSchemaLookup(t *testing.T) {
	schema := NewSchema([]string{"N", "W", "H", "Time"})
	rec := HeaderRecord{Schema: schema, Values: []float64{3, 512, 256, 1.5}}

	if v, ok := rec.Get("H"); !ok || v != 256 {
		t.Errorf("Expected H=256, got %v (ok=%v)", v, ok)
	}
	if _, ok := rec.Get("Gain"); ok {
		t.Error("Expected unknown field lookup to fail")
	}
	if _, ok := (HeaderRecord{}).Get("N"); ok {
		t.Error("Expected lookup on a record without schema to fail")
	}
	if schema.Len() != 4 {
		t.Errorf("Expected 4 fields, got %d", schema.Len())
	}
}

// TestRawChunkSize verifies the expected byte length of a chunk
func TestRawChunkSize(t *testing.T) {
	chunk := RawChunk{Width: 512, Height: 256, FrameCount: 100}
	if chunk.FrameBytes() != 512*256*2 {
		t.Errorf("Expected frame bytes %d, got %d", 512*256*2, chunk.FrameBytes())
	}
	if chunk.ExpectedSize() != 512*256*2*100 {
		t.Errorf("Expected size %d, got %d", 512*256*2*100, chunk.ExpectedSize())
	}
}

// TestFrameImage verifies conversion to a 16-bit image keeps samples
func TestFrameImage(t *testing.T) {
	frame := Frame{Width: 3, Height: 2, Pix: []uint16{0, 1, 2, 300, 65535, 5}}
	img := frame.Image()

	bounds := img.Bounds()
	if bounds.Dx() != 3 || bounds.Dy() != 2 {
		t.Fatalf("Expected 3x2 image, got %dx%d", bounds.Dx(), bounds.Dy())
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			if got := img.Gray16At(x, y).Y; got != frame.At(x, y) {
				t.Errorf("Pixel (%d,%d): expected %d, got %d", x, y, frame.At(x, y), got)
			}
		}
	}
}
