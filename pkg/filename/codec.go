// Package filename converts between Octopus chunk filenames and their
// (stem, sequence number) parts.
//
// Chunks are named <stem><index><ext> where the stem carries its own trailing
// underscore, e.g. OctopusData_12.dat has stem "OctopusData_" and index 12.
// Sequence numbers have no fixed width.
package filename

import (
	"path/filepath"
	"regexp"
	"strconv"

	"octopusstream/internal/models"
	"octopusstream/pkg/streamerr"
)

var chunkPattern = regexp.MustCompile(`^(\w*_)([0-9]+)\.(dth|dat)$`)

// Parse splits a chunk filename into its stem and sequence number.
// Only the base name is inspected.
func Parse(name string) (stem string, index int, err error) {
	base := filepath.Base(name)
	m := chunkPattern.FindStringSubmatch(base)
	if m == nil {
		return "", 0, streamerr.New(streamerr.ErrFormat, name, "expected <stem>_<number>.dth or .dat")
	}

	index, err = strconv.Atoi(m[2])
	if err != nil {
		return "", 0, streamerr.Wrap(streamerr.ErrFormat, name, err)
	}
	return m[1], index, nil
}

// ParseLocator turns the path of a user-chosen header file into a stream locator.
// The file must be a .dth header.
func ParseLocator(path string) (models.StreamLocator, error) {
	if filepath.Ext(path) != models.HeaderExt {
		return models.StreamLocator{}, streamerr.New(streamerr.ErrFormat, path, "please select an octopus .dth file")
	}

	stem, index, err := Parse(path)
	if err != nil {
		return models.StreamLocator{}, err
	}

	return models.StreamLocator{
		Dir:   filepath.Dir(path),
		Stem:  stem,
		Index: index,
	}, nil
}

// Build composes the path of a chunk file. It performs no I/O.
func Build(dir, stem string, index int, ext string) (string, error) {
	if stem == "" {
		return "", streamerr.New(streamerr.ErrFormat, dir, "empty stem")
	}
	return filepath.Join(dir, stem+strconv.Itoa(index)+ext), nil
}

// DataPath returns the .dat path of a chunk of the located stream
func DataPath(loc models.StreamLocator, index int) (string, error) {
	return Build(loc.Dir, loc.Stem, index, models.DataExt)
}

// HeaderPath returns the .dth path of a chunk of the located stream
func HeaderPath(loc models.StreamLocator, index int) (string, error) {
	return Build(loc.Dir, loc.Stem, index, models.HeaderExt)
}
