// Package header parses Octopus .dth sidecar files.
//
// A header holds one line per frame. Each line is a run of whitespace
// separated "key: value" tokens, and the keys found on the first line define
// the schema for the whole file:
//
//	N: 1 W: 512 H: 512 Time: 1434550000.125 Shutter: True
//	N: 2 W: 512 H: 512 Time: 1434550000.225 Shutter: True
//
// Values are normalized to numbers: True and False become 1 and 0 and
// everything else must parse as a float.
package header

import (
	"bufio"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"octopusstream/internal/models"
	"octopusstream/pkg/streamerr"
)

var (
	keyPattern   = regexp.MustCompile(`(\w*)\s*:\s*`)
	valuePattern = regexp.MustCompile(`\S+:\s*(\S+)`)
)

// Parse reads the header file at path and returns one record per frame.
func Parse(path string) ([]models.HeaderRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, streamerr.Wrap(streamerr.ErrMissingFile, path, err)
	}
	defer file.Close()

	return ParseReader(file, path)
}

// ParseReader parses header lines from r. name is only used in error messages.
func ParseReader(r io.Reader, name string) ([]models.HeaderRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		schema  *models.Schema
		records []models.HeaderRecord
		lineNo  int
	)

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		if schema == nil {
			keys := keyPattern.FindAllStringSubmatch(line, -1)
			names := make([]string, len(keys))
			for i, k := range keys {
				names[i] = k[1]
			}
			schema = models.NewSchema(names)
		}

		matches := valuePattern.FindAllStringSubmatch(line, -1)
		if len(matches) != schema.Len() {
			return nil, streamerr.New(streamerr.ErrMalformedHeader, name,
				"line %d has %d fields, expected %d", lineNo, len(matches), schema.Len())
		}

		record := models.HeaderRecord{
			Schema: schema,
			Raw:    make([]string, len(matches)),
			Values: make([]float64, len(matches)),
		}
		for i, m := range matches {
			v, err := ParseValue(m[1])
			if err != nil {
				return nil, streamerr.New(streamerr.ErrValueParse, name,
					"line %d field %q: cannot parse %q", lineNo, schema.Names[i], m[1])
			}
			record.Raw[i] = m[1]
			record.Values[i] = v
		}
		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, streamerr.Wrap(streamerr.ErrMalformedHeader, name, err)
	}

	return records, nil
}

// ParseValue normalizes a raw header token.
// "True" and "False" map to 1 and 0; anything else must be a float.
func ParseValue(raw string) (float64, error) {
	switch raw {
	case "True":
		return 1, nil
	case "False":
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}

// Geometry returns the frame width and height declared by a record. Both
// must be positive whole numbers.
func Geometry(rec models.HeaderRecord) (width, height int, ok bool) {
	w, okW := rec.Get("W")
	h, okH := rec.Get("H")
	if !okW || !okH || w < 1 || h < 1 {
		return 0, 0, false
	}
	if w != math.Trunc(w) || h != math.Trunc(h) {
		return 0, 0, false
	}
	return int(w), int(h), true
}
