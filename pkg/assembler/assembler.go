// Package assembler reconstructs a single logical frame stack from the
// numbered chunk files of an Octopus camera stream.
//
// The camera software splits an acquisition into chunks of (usually) 100
// frames, each chunk a pair of files:
//
//	OctopusData_1.dat  raw little-endian unsigned 16-bit frames
//	OctopusData_1.dth  one text header line per frame
//
// Assembly proceeds as follows:
//  1. Parse the header of the chunk the user picked to learn the frame geometry
//  2. Enumerate every chunk of the stem in the directory, in numeric order
//  3. Select the requested range of positions in that list
//  4. Read each selected chunk in order, stopping silently at the first
//     chunk whose .dat file is missing
//  5. Attach each chunk's header records to its frames when requested
//
// The frame cap is applied while reading: a chunk is only read up to the
// frames still allowed, and no further chunk is opened once the cap is hit.
package assembler

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"octopusstream/internal/models"
	"octopusstream/pkg/chunks"
	"octopusstream/pkg/filename"
	"octopusstream/pkg/header"
	"octopusstream/pkg/logging"
	"octopusstream/pkg/streamerr"
)

// Options controls a single assembly.
type Options struct {
	// FrameCap is the maximum number of frames materialized across all chunks.
	// Zero or negative disables the cap.
	FrameCap int

	// IncludeHeaders attaches the per-frame header records to the result
	IncludeHeaders bool

	// Start and End are 1-based positions in the sorted chunk list.
	// Zero selects the first and last chunk respectively.
	Start int
	End   int

	// Title is the display name of the stack; it defaults to the stem
	Title string
}

// Assembler reads Octopus streams. It holds no per-stream state, so one
// instance can serve any number of sequential or concurrent calls.
type Assembler struct {
	logger *slog.Logger
}

// NewAssembler creates a new assembler that reports progress to logger.
// A nil logger discards progress messages.
func NewAssembler(logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Assembler{logger: logger}
}

// Assemble reads the stream identified by loc.
//
// A missing starting header, an unlistable directory or a malformed header
// aborts before any frame is read. A selected chunk whose .dat file is
// absent ends the stream without error. A .dat file whose size disagrees
// with its header fails the whole assembly with streamerr.ErrCorruptChunk.
func (a *Assembler) Assemble(ctx context.Context, loc models.StreamLocator, opts Options) (*models.AssembledStream, error) {
	firstPath, err := filename.HeaderPath(loc, loc.Index)
	if err != nil {
		return nil, err
	}
	first, err := header.Parse(firstPath)
	if err != nil {
		return nil, err
	}
	width, height, err := geometry(first, firstPath)
	if err != nil {
		return nil, err
	}

	indices, err := chunks.List(loc.Dir, loc.Stem)
	if err != nil {
		return nil, err
	}
	selected := chunks.SelectRange(indices, opts.Start, opts.End)

	title := opts.Title
	if title == "" {
		title = loc.Stem
	}

	stream := &models.AssembledStream{
		Locator:      loc,
		Title:        title,
		Width:        width,
		Height:       height,
		StoppedAtGap: -1,
	}
	if opts.IncludeHeaders {
		stream.Headers = make([]models.HeaderRecord, 0)
	}

	a.logger.Info("assembling stream",
		"dir", loc.Dir,
		"stem", loc.Stem,
		"width", width,
		"height", height,
		"chunks", len(selected),
		"frame_cap", opts.FrameCap,
	)

	for i, idx := range selected {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("assembly interrupted before chunk %d: %w", idx, err)
		}

		remaining := -1
		if opts.FrameCap > 0 {
			remaining = opts.FrameCap - len(stream.Frames)
		}

		read, present, err := a.readChunk(loc, idx, width, height, remaining, first, opts.IncludeHeaders, stream)
		if err != nil {
			return nil, err
		}
		if !present {
			stream.StoppedAtGap = idx
			a.logger.Warn("chunk data missing, ending stream", "chunk", idx, "frames", len(stream.Frames))
			break
		}
		stream.Chunks = append(stream.Chunks, idx)

		if opts.FrameCap > 0 && len(stream.Frames) >= opts.FrameCap {
			stream.Truncated = read.partial
			if !read.partial && i < len(selected)-1 {
				// a cap on a chunk boundary only truncates if the stream would
				// have continued
				next := selected[i+1]
				more, err := dataExists(loc, next)
				if err != nil {
					return nil, err
				}
				stream.Truncated = more
				if !more {
					stream.StoppedAtGap = next
				}
			}
			if stream.Truncated {
				a.logger.Info("frame cap reached", "frame_cap", opts.FrameCap, "last_chunk", idx)
			}
			break
		}
	}

	a.logger.Info("stream assembled", "frames", len(stream.Frames), "chunks", len(stream.Chunks))
	return stream, nil
}

type chunkRead struct {
	partial bool
}

// readChunk appends up to limit frames of chunk idx to stream. present is
// false when the chunk's .dat file does not exist. A negative limit reads the
// whole chunk.
//
// Without headers every chunk is sized from the first chunk's record count
// and its .dth is never opened. With headers each chunk is sized from its own
// records, so a short final chunk is accepted.
func (a *Assembler) readChunk(loc models.StreamLocator, idx, width, height, limit int,
	first []models.HeaderRecord, withHeaders bool, stream *models.AssembledStream) (chunkRead, bool, error) {
	dataPath, err := filename.DataPath(loc, idx)
	if err != nil {
		return chunkRead{}, false, err
	}
	info, err := os.Stat(dataPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return chunkRead{}, false, nil
		}
		return chunkRead{}, false, fmt.Errorf("stat chunk %d: %w", idx, err)
	}

	records := first
	if withHeaders && idx != loc.Index {
		headerPath, err := filename.HeaderPath(loc, idx)
		if err != nil {
			return chunkRead{}, false, err
		}
		records, err = header.Parse(headerPath)
		if err != nil {
			return chunkRead{}, false, err
		}
		w, h, err := geometry(records, headerPath)
		if err != nil {
			return chunkRead{}, false, err
		}
		if w != width || h != height {
			return chunkRead{}, false, streamerr.New(streamerr.ErrCorruptChunk, headerPath,
				"geometry %dx%d differs from stream geometry %dx%d", w, h, width, height)
		}
	}

	chunk := models.RawChunk{
		Index:      idx,
		Width:      width,
		Height:     height,
		FrameCount: len(records),
		Path:       dataPath,
	}
	if info.Size() != chunk.ExpectedSize() {
		return chunkRead{}, false, streamerr.New(streamerr.ErrCorruptChunk, dataPath,
			"size %d bytes, expected %d for %d frames of %dx%d",
			info.Size(), chunk.ExpectedSize(), chunk.FrameCount, width, height)
	}

	take := chunk.FrameCount
	if limit >= 0 && limit < take {
		take = limit
	}

	frames, err := ReadFrames(chunk, take)
	if err != nil {
		return chunkRead{}, false, err
	}
	stream.Frames = append(stream.Frames, frames...)
	if withHeaders {
		stream.Headers = append(stream.Headers, records[:take]...)
	}

	a.logger.Debug("chunk read", "chunk", idx, "frames", take, "declared", chunk.FrameCount)
	return chunkRead{partial: take < chunk.FrameCount}, true, nil
}

// dataExists reports whether the .dat file of chunk idx is present
func dataExists(loc models.StreamLocator, idx int) (bool, error) {
	dataPath, err := filename.DataPath(loc, idx)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(dataPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat chunk %d: %w", idx, err)
	}
	return true, nil
}

// ReadFrames reads the first n frames of a chunk in storage order.
func ReadFrames(chunk models.RawChunk, n int) ([]models.Frame, error) {
	if n > chunk.FrameCount {
		n = chunk.FrameCount
	}
	if n <= 0 {
		return nil, nil
	}

	file, err := os.Open(chunk.Path)
	if err != nil {
		return nil, fmt.Errorf("open chunk %d: %w", chunk.Index, err)
	}
	defer file.Close()

	r := bufio.NewReaderSize(file, int(min(chunk.FrameBytes(), 1<<20)))
	frames := make([]models.Frame, n)
	for i := range frames {
		pix := make([]uint16, chunk.Width*chunk.Height)
		if err := binary.Read(r, binary.LittleEndian, pix); err != nil {
			return nil, streamerr.Wrap(streamerr.ErrCorruptChunk, chunk.Path, err)
		}
		frames[i] = models.Frame{
			Width:  chunk.Width,
			Height: chunk.Height,
			Pix:    pix,
			Chunk:  chunk.Index,
		}
	}
	return frames, nil
}

// geometry extracts the frame size from the first record of a header
func geometry(records []models.HeaderRecord, path string) (int, int, error) {
	if len(records) == 0 {
		return 0, 0, streamerr.New(streamerr.ErrMalformedHeader, path, "header has no records")
	}
	w, h, ok := header.Geometry(records[0])
	if !ok {
		return 0, 0, streamerr.New(streamerr.ErrMalformedHeader, path, "missing or invalid W/H fields")
	}
	return w, h, nil
}
