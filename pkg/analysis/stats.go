// Package analysis computes summary statistics over assembled frames and
// their acquisition metadata.
package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"octopusstream/internal/models"
)

// FrameStats holds intensity statistics of a single frame
type FrameStats struct {
	Mean   float64
	StdDev float64
	Min    uint16
	Max    uint16
}

// Timing describes the acquisition rate recovered from the Time header field
type Timing struct {
	// Duration is the time between the first and last frame in seconds
	Duration float64

	// MeanInterval is the mean time between consecutive frames in seconds
	MeanInterval float64

	// IntervalStdDev is the spread of the frame intervals
	IntervalStdDev float64

	// FrameRate is 1/MeanInterval, zero when the interval is not positive
	FrameRate float64

	// Dropped counts intervals longer than 1.5 times the median interval
	Dropped int
}

// ComputeFrameStats returns intensity statistics for one frame
func ComputeFrameStats(frame models.Frame) FrameStats {
	if len(frame.Pix) == 0 {
		return FrameStats{}
	}

	values := make([]float64, len(frame.Pix))
	lo, hi := uint16(math.MaxUint16), uint16(0)
	for i, p := range frame.Pix {
		values[i] = float64(p)
		lo = min(lo, p)
		hi = max(hi, p)
	}

	mean, std := stat.MeanStdDev(values, nil)
	if len(values) < 2 {
		std = 0
	}
	return FrameStats{Mean: mean, StdDev: std, Min: lo, Max: hi}
}

// ComputeStackStats returns statistics for every frame of a stream
func ComputeStackStats(stream *models.AssembledStream) []FrameStats {
	out := make([]FrameStats, len(stream.Frames))
	for i, frame := range stream.Frames {
		out[i] = ComputeFrameStats(frame)
	}
	return out
}

// MeanIntensityTrace returns the mean intensity of each frame in order
func MeanIntensityTrace(stats []FrameStats) []float64 {
	trace := make([]float64, len(stats))
	for i, s := range stats {
		trace[i] = s.Mean
	}
	return trace
}

// ComputeTiming derives the frame rate from the Time field of the headers.
// ok is false when there are fewer than two records carrying a Time value.
func ComputeTiming(headers []models.HeaderRecord) (Timing, bool) {
	times := make([]float64, 0, len(headers))
	for _, rec := range headers {
		if ts, ok := rec.Get("Time"); ok {
			times = append(times, ts)
		}
	}
	if len(times) < 2 {
		return Timing{}, false
	}

	intervals := make([]float64, len(times)-1)
	for i := 1; i < len(times); i++ {
		intervals[i-1] = times[i] - times[i-1]
	}

	mean, std := stat.MeanStdDev(intervals, nil)
	if len(intervals) < 2 {
		std = 0
	}

	sorted := make([]float64, len(intervals))
	copy(sorted, intervals)
	median := quantile(sorted, 0.5)

	timing := Timing{
		Duration:       times[len(times)-1] - times[0],
		MeanInterval:   mean,
		IntervalStdDev: std,
	}
	if mean > 0 {
		timing.FrameRate = 1 / mean
	}
	if median > 0 {
		for _, d := range intervals {
			if d > 1.5*median {
				timing.Dropped++
			}
		}
	}
	return timing, true
}

// quantile sorts values in place and returns the empirical quantile p
func quantile(values []float64, p float64) float64 {
	sort.Float64s(values)
	return stat.Quantile(p, stat.Empirical, values, nil)
}
