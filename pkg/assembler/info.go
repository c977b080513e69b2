package assembler

import (
	"fmt"
	"time"

	"octopusstream/internal/models"
	"octopusstream/pkg/chunks"
	"octopusstream/pkg/filename"
	"octopusstream/pkg/header"
)

// TimestampLayout is the layout used to print acquisition times
const TimestampLayout = "Mon, 02 Jan 2006 15:04:05"

// StreamInfo summarizes a stream before it is read
type StreamInfo struct {
	Locator models.StreamLocator

	// Width and Height come from the first record of the starting header
	Width, Height int

	// FramesPerChunk is the record count of the starting header
	FramesPerChunk int

	// Chunks holds every sequence number present for the stem, sorted
	Chunks []int

	// Timestamp is the acquisition time of the first frame, zero if the
	// header carries no Time field
	Timestamp time.Time
}

// Inspect reads the starting header and enumerates the chunks of a stream
// without touching any frame data.
func Inspect(loc models.StreamLocator) (*StreamInfo, error) {
	path, err := filename.HeaderPath(loc, loc.Index)
	if err != nil {
		return nil, err
	}
	records, err := header.Parse(path)
	if err != nil {
		return nil, err
	}
	width, height, err := geometry(records, path)
	if err != nil {
		return nil, err
	}
	indices, err := chunks.List(loc.Dir, loc.Stem)
	if err != nil {
		return nil, err
	}

	info := &StreamInfo{
		Locator:        loc,
		Width:          width,
		Height:         height,
		FramesPerChunk: len(records),
		Chunks:         indices,
	}
	if ts, ok := records[0].Get("Time"); ok {
		info.Timestamp = UnixTime(ts)
	}
	return info, nil
}

// Summary renders the stem, geometry, chunk count and first timestamp
func (s *StreamInfo) Summary() string {
	summary := fmt.Sprintf("%s\n%dx%dx%d (16-bit)", s.Locator.Stem, s.Width, s.Height, len(s.Chunks))
	if !s.Timestamp.IsZero() {
		summary += "\n" + s.Timestamp.Format(TimestampLayout)
	}
	return summary
}

// EstimatePixels returns the number of samples an import of the selected
// chunks would hold in memory, bounded by frameCap when positive
func (s *StreamInfo) EstimatePixels(start, end, frameCap int) int64 {
	selected := chunks.SelectRange(s.Chunks, start, end)
	frames := int64(len(selected)) * int64(s.FramesPerChunk)
	if frameCap > 0 && frames > int64(frameCap) {
		frames = int64(frameCap)
	}
	return frames * int64(s.Width) * int64(s.Height)
}

// EstimateBytes is EstimatePixels in bytes
func (s *StreamInfo) EstimateBytes(start, end, frameCap int) uint64 {
	return uint64(s.EstimatePixels(start, end, frameCap)) * 2
}

// UnixTime converts fractional Unix seconds to a UTC time
func UnixTime(seconds float64) time.Time {
	sec := int64(seconds)
	nsec := int64((seconds - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC()
}
