// Package chunks discovers which sequence numbers of a stream exist on disk.
package chunks

import (
	"os"
	"regexp"
	"sort"
	"strconv"

	"octopusstream/pkg/streamerr"
)

// List returns the sequence numbers of every <stem><number>.dth file in dir,
// deduplicated and in ascending numeric order. Gaps are not filled in.
func List(dir, stem string) ([]int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, streamerr.Wrap(streamerr.ErrMissingDirectory, dir, err)
	}

	pattern, err := regexp.Compile(`^` + regexp.QuoteMeta(stem) + `([0-9]+)\.dth$`)
	if err != nil {
		return nil, streamerr.Wrap(streamerr.ErrFormat, stem, err)
	}

	seen := make(map[int]struct{})
	var indices []int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := pattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		indices = append(indices, n)
	}

	sort.Ints(indices)
	return indices, nil
}

// SelectRange maps 1-based positions in the sorted index list to the chunk
// numbers they cover. start > end is swapped, and both ends are clamped to
// the list. A zero start or end means the first or last position.
func SelectRange(indices []int, start, end int) []int {
	if len(indices) == 0 {
		return nil
	}
	if start == 0 {
		start = 1
	}
	if end == 0 {
		end = len(indices)
	}
	if start > end {
		start, end = end, start
	}
	if start < 1 {
		start = 1
	}
	if end > len(indices) {
		end = len(indices)
	}
	if start > len(indices) {
		start = len(indices)
	}

	first, last := indices[start-1], indices[end-1]
	var selected []int
	for _, n := range indices {
		if n >= first && n <= last {
			selected = append(selected, n)
		}
	}
	return selected
}
