package models

import (
	"image"
	"image/color"
)

// Extensions used by Octopus streams
const (
	// DataExt is the extension of raw 16-bit frame chunks
	DataExt = ".dat"

	// HeaderExt is the extension of the plain text sidecar headers
	HeaderExt = ".dth"
)

// StreamLocator identifies a candidate stream on disk
type StreamLocator struct {
	// Dir is the directory holding the chunk files
	Dir string

	// Stem is the filename prefix shared by all chunks, including the trailing underscore
	Stem string

	// Index is the sequence number of the chunk the user picked
	Index int
}

// Schema is the ordered set of field names shared by every record of one header file
type Schema struct {
	Names []string
	index map[string]int
}

// NewSchema creates a schema from the ordered field names
func NewSchema(names []string) *Schema {
	s := &Schema{
		Names: names,
		index: make(map[string]int, len(names)),
	}
	for i, name := range names {
		// first occurrence wins, matching positional lookup
		if _, ok := s.index[name]; !ok {
			s.index[name] = i
		}
	}
	return s
}

// Position returns the column of a field name
func (s *Schema) Position(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Len returns the number of fields
func (s *Schema) Len() int {
	return len(s.Names)
}

// HeaderRecord holds the metadata of a single frame
type HeaderRecord struct {
	// Schema is shared with the other records of the same header file
	Schema *Schema

	// Raw holds the value tokens as they appear in the file
	Raw []string

	// Values holds the normalized numeric values, in schema order
	Values []float64
}

// Get returns the numeric value of a named field
func (r HeaderRecord) Get(name string) (float64, bool) {
	if r.Schema == nil {
		return 0, false
	}
	i, ok := r.Schema.Position(name)
	if !ok || i >= len(r.Values) {
		return 0, false
	}
	return r.Values[i], true
}

// RawChunk describes one .dat file of the stream
type RawChunk struct {
	// Index is the sequence number of the chunk
	Index int

	// Width and Height are the frame dimensions in pixels
	Width, Height int

	// FrameCount is the number of frames declared by the paired header
	FrameCount int

	// Path is the location of the .dat file
	Path string
}

// FrameBytes returns the size of one frame in bytes
func (c RawChunk) FrameBytes() int64 {
	return int64(c.Width) * int64(c.Height) * 2
}

// ExpectedSize returns the byte length the .dat file must have
func (c RawChunk) ExpectedSize() int64 {
	return c.FrameBytes() * int64(c.FrameCount)
}

// Frame is a single unsigned 16-bit image in row-major order
type Frame struct {
	Width  int
	Height int
	Pix    []uint16

	// Chunk is the sequence number of the chunk the frame was read from
	Chunk int
}

// At returns the sample at (x, y)
func (f Frame) At(x, y int) uint16 {
	return f.Pix[y*f.Width+x]
}

// Image converts the frame to a 16-bit grayscale image
func (f Frame) Image() *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			img.SetGray16(x, y, color.Gray16{Y: f.Pix[y*f.Width+x]})
		}
	}
	return img
}

// AssembledStream is the ordered frame sequence reconstructed from a stream
type AssembledStream struct {
	// Locator is the stream the caller asked for
	Locator StreamLocator

	// Title is the display name of the stack
	Title string

	// Width and Height are the geometry of every frame
	Width, Height int

	// Frames holds the frames in stream order
	Frames []Frame

	// Headers holds one record per frame when headers were requested, else nil
	Headers []HeaderRecord

	// Chunks lists the sequence numbers that contributed frames
	Chunks []int

	// Truncated is set when the frame cap dropped frames that would otherwise
	// have been read. A cap that lands on a chunk boundary right before a gap
	// does not truncate.
	Truncated bool

	// StoppedAtGap is the first selected chunk whose .dat file was missing, or -1
	StoppedAtGap int
}

// Len returns the number of frames
func (s *AssembledStream) Len() int {
	return len(s.Frames)
}

// HasHeaders reports whether per-frame metadata was attached
func (s *AssembledStream) HasHeaders() bool {
	return s.Headers != nil
}
