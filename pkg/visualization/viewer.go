package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"octopusstream/internal/models"
)

// Viewer exposes an assembled stream as an x/y/t volume so it can be sliced
// along any axis, projected over time and written to disk.
type Viewer struct {
	// frames holds the stack in stream order
	frames []models.Frame

	// dimensions of the stack
	width  int
	height int
	depth  int

	// title names exported files
	title string
}

// NewViewer creates a new viewer over an assembled stream
func NewViewer(stream *models.AssembledStream) *Viewer {
	return &Viewer{
		frames: stream.Frames,
		width:  stream.Width,
		height: stream.Height,
		depth:  len(stream.Frames),
		title:  stream.Title,
	}
}

// ExtractSlice extracts a 2D image from the stack along the specified axis.
// Axis t (or z) returns a frame; x and y return kymographs with time running
// along the horizontal and vertical axis respectively.
func (v *Viewer) ExtractSlice(axis string, position int) (*image.Gray16, error) {
	if position < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}

	var img *image.Gray16

	switch axis {
	case "x", "X":
		// YT plane at column position
		if position >= v.width {
			return nil, fmt.Errorf("position %d exceeds width %d", position, v.width)
		}

		img = image.NewGray16(image.Rect(0, 0, v.depth, v.height))
		for t, frame := range v.frames {
			for y := 0; y < v.height; y++ {
				img.SetGray16(t, y, color.Gray16{Y: frame.At(position, y)})
			}
		}

	case "y", "Y":
		// XT plane at row position
		if position >= v.height {
			return nil, fmt.Errorf("position %d exceeds height %d", position, v.height)
		}

		img = image.NewGray16(image.Rect(0, 0, v.width, v.depth))
		for t, frame := range v.frames {
			for x := 0; x < v.width; x++ {
				img.SetGray16(x, t, color.Gray16{Y: frame.At(x, position)})
			}
		}

	case "t", "T", "z", "Z":
		if position >= v.depth {
			return nil, fmt.Errorf("position %d exceeds frame count %d", position, v.depth)
		}
		img = v.frames[position].Image()

	default:
		return nil, fmt.Errorf("invalid axis: %s (must be x, y, or t)", axis)
	}

	return img, nil
}

// Projection reduces the stack over time, one output pixel per x/y position.
// Supported methods are max, min and mean.
func (v *Viewer) Projection(method string) (*image.Gray16, error) {
	if v.depth == 0 {
		return nil, fmt.Errorf("cannot project an empty stack")
	}

	img := image.NewGray16(image.Rect(0, 0, v.width, v.height))
	for y := 0; y < v.height; y++ {
		for x := 0; x < v.width; x++ {
			var value uint16
			switch method {
			case "max":
				for _, frame := range v.frames {
					value = max(value, frame.At(x, y))
				}
			case "min":
				value = math.MaxUint16
				for _, frame := range v.frames {
					value = min(value, frame.At(x, y))
				}
			case "mean":
				var sum float64
				for _, frame := range v.frames {
					sum += float64(frame.At(x, y))
				}
				value = uint16(math.Round(sum / float64(v.depth)))
			default:
				return nil, fmt.Errorf("invalid projection: %s (must be max, min, or mean)", method)
			}
			img.SetGray16(x, y, color.Gray16{Y: value})
		}
	}

	return img, nil
}

// SaveSlice saves an image as a 16-bit PNG
func (v *Viewer) SaveSlice(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}

	if err := png.Encode(file, img); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// SaveSliceSequence extracts and saves every slice along the specified axis
func (v *Viewer) SaveSliceSequence(axis string, outputDir string) error {
	var maxPos int
	switch axis {
	case "x", "X":
		maxPos = v.width
	case "y", "Y":
		maxPos = v.height
	case "t", "T", "z", "Z":
		maxPos = v.depth
	default:
		return fmt.Errorf("invalid axis: %s (must be x, y, or t)", axis)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	for pos := 0; pos < maxPos; pos++ {
		img, err := v.ExtractSlice(axis, pos)
		if err != nil {
			return err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("%s%s_%04d.png", v.title, axis, pos))
		if err := v.SaveSlice(img, filename); err != nil {
			return err
		}
	}

	return nil
}
