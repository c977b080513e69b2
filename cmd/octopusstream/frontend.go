package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"octopusstream/internal/models"
	"octopusstream/pkg/analysis"
	"octopusstream/pkg/assembler"
	"octopusstream/pkg/config"
	"octopusstream/pkg/filename"
	"octopusstream/pkg/results"
	"octopusstream/pkg/visualization"
)

// openFlags holds what the user asked for on the command line
type openFlags struct {
	path       string
	title      string
	start      int
	end        int
	frameCap   int
	noHeaders  bool
	yes        bool
	framesDir  string
	projection string
	tableStyle string
	csvPath    string
	dbPath     string
	stats      bool
}

// cliFrontend collects import parameters from flags and presents the result
// on the terminal and on disk.
type cliFrontend struct {
	cfg    *config.Config
	flags  openFlags
	logger *slog.Logger

	in  io.Reader
	out io.Writer

	// stdinTTY and stdoutTTY are overridable for tests
	stdinTTY  bool
	stdoutTTY bool
}

func newCLIFrontend(cfg *config.Config, flags openFlags, logger *slog.Logger, in io.Reader, out io.Writer) *cliFrontend {
	return &cliFrontend{
		cfg:       cfg,
		flags:     flags,
		logger:    logger,
		in:        in,
		out:       out,
		stdinTTY:  isTerminal(os.Stdin),
		stdoutTTY: isTerminal(os.Stdout),
	}
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// CollectStreamParameters resolves the locator, applies configuration
// defaults and guards against imports that would use too much memory.
func (f *cliFrontend) CollectStreamParameters(ctx context.Context) (assembler.Request, error) {
	loc, err := filename.ParseLocator(f.flags.path)
	if err != nil {
		return assembler.Request{}, err
	}

	info, err := assembler.Inspect(loc)
	if err != nil {
		return assembler.Request{}, err
	}

	opts := assembler.Options{
		FrameCap:       f.cfg.Import.FrameCap,
		IncludeHeaders: f.cfg.Import.IncludeHeaders && !f.flags.noHeaders,
		Start:          f.cfg.Import.Start,
		End:            f.cfg.Import.End,
		Title:          f.flags.title,
	}
	if f.flags.start != 0 {
		opts.Start = f.flags.start
	}
	if f.flags.end != 0 {
		opts.End = f.flags.end
	}
	if f.flags.frameCap >= 0 {
		opts.FrameCap = f.flags.frameCap
	}

	f.logger.Info("opening stream",
		"path", f.flags.path,
		"width", info.Width,
		"height", info.Height,
		"chunks", len(info.Chunks),
		"frames_per_chunk", info.FramesPerChunk,
	)

	// the guard looks at the uncapped size, as the acquisition tool did
	pixels := info.EstimatePixels(opts.Start, opts.End, 0)
	if f.cfg.Memory.WarnPixels > 0 && pixels > f.cfg.Memory.WarnPixels && !f.flags.yes {
		size := humanize.IBytes(uint64(pixels) * 2)
		if !f.stdinTTY {
			return assembler.Request{}, fmt.Errorf("selected chunks hold %s of frame data; rerun with --yes to continue", size)
		}
		ok, err := f.confirm(fmt.Sprintf("This may use a lot of memory (%s). Continue?", size))
		if err != nil {
			return assembler.Request{}, err
		}
		if !ok {
			return assembler.Request{}, assembler.ErrCanceled
		}
	}

	return assembler.Request{Locator: loc, Options: opts}, nil
}

func (f *cliFrontend) confirm(question string) (bool, error) {
	fmt.Fprintf(f.out, "%s [y/N] ", question)
	line, err := bufio.NewReader(f.in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("read answer: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// PresentResult prints the stack summary and metadata table and writes any
// requested exports.
func (f *cliFrontend) PresentResult(ctx context.Context, stream *models.AssembledStream) error {
	f.printSummary(stream)

	table := results.FromStream(stream)
	if f.flags.stats {
		if err := addStatsColumns(table, analysis.ComputeStackStats(stream)); err != nil {
			return err
		}
	}

	if stream.HasHeaders() || f.flags.stats {
		style := f.tableStyle()
		switch style {
		case "table":
			fmt.Fprintln(f.out, table.Render("Octopus header metadata"))
		case "csv":
			if err := table.WriteCSV(f.out); err != nil {
				return fmt.Errorf("write table: %w", err)
			}
		}
	}

	if f.flags.csvPath != "" {
		if err := writeCSVFile(f.flags.csvPath, table); err != nil {
			return err
		}
		f.logger.Info("metadata written", "path", f.flags.csvPath)
	}

	if f.flags.dbPath != "" {
		exporter, err := results.OpenSQLite(f.flags.dbPath)
		if err != nil {
			return fmt.Errorf("open metadata database: %w", err)
		}
		defer exporter.Close()

		id, err := exporter.Export(ctx, stream, table)
		if err != nil {
			return fmt.Errorf("export metadata: %w", err)
		}
		fmt.Fprintf(f.out, "Stored import %s in %s\n", id, f.flags.dbPath)
	}

	viewer := visualization.NewViewer(stream)
	framesDir := f.flags.framesDir
	if framesDir == "" {
		framesDir = f.cfg.Output.FramesDir
	}
	if framesDir != "" {
		if err := viewer.SaveSliceSequence("t", framesDir); err != nil {
			return fmt.Errorf("save frames: %w", err)
		}
		f.logger.Info("frames written", "dir", framesDir, "frames", stream.Len())
	}

	if f.flags.projection != "" {
		img, err := viewer.Projection(f.flags.projection)
		if err != nil {
			return err
		}
		dir := framesDir
		if dir == "" {
			dir = "."
		}
		path := filepath.Join(dir, fmt.Sprintf("%s%s_projection.png", stream.Title, f.flags.projection))
		if err := viewer.SaveSlice(img, path); err != nil {
			return fmt.Errorf("save projection: %w", err)
		}
		f.logger.Info("projection written", "path", path)
	}

	return nil
}

func (f *cliFrontend) printSummary(stream *models.AssembledStream) {
	fmt.Fprintf(f.out, "Octopus (%s)\n", stream.Title)
	fmt.Fprintf(f.out, "%dx%dx%d (16-bit), %s\n", stream.Width, stream.Height, stream.Len(),
		humanize.IBytes(uint64(stream.Len())*uint64(stream.Width)*uint64(stream.Height)*2))
	if len(stream.Chunks) > 0 {
		fmt.Fprintf(f.out, "File range: %d-%d\n", stream.Chunks[0], stream.Chunks[len(stream.Chunks)-1])
	}
	if stream.StoppedAtGap >= 0 {
		fmt.Fprintf(f.out, "Stopped at chunk %d: data file missing\n", stream.StoppedAtGap)
	}
	if stream.Truncated {
		fmt.Fprintf(f.out, "Truncated to %d frames by the frame cap\n", stream.Len())
	}
	if timing, ok := analysis.ComputeTiming(stream.Headers); ok {
		fmt.Fprintf(f.out, "Duration %.3fs, %.2f frames/s, interval %.4fs ± %.4fs",
			timing.Duration, timing.FrameRate, timing.MeanInterval, timing.IntervalStdDev)
		if timing.Dropped > 0 {
			fmt.Fprintf(f.out, ", %d long intervals", timing.Dropped)
		}
		fmt.Fprintln(f.out)
	}
}

// tableStyle downgrades the rounded table to CSV when stdout is not a terminal
func (f *cliFrontend) tableStyle() string {
	style := f.flags.tableStyle
	if style == "" {
		style = f.cfg.Output.TableStyle
	}
	if style == "table" && !f.stdoutTTY {
		return "csv"
	}
	return style
}

// addStatsColumns appends per-frame intensity statistics to the table
func addStatsColumns(table *results.Table, stats []analysis.FrameStats) error {
	mean := analysis.MeanIntensityTrace(stats)
	std := make([]float64, len(stats))
	lo := make([]float64, len(stats))
	hi := make([]float64, len(stats))
	for i, s := range stats {
		std[i], lo[i], hi[i] = s.StdDev, float64(s.Min), float64(s.Max)
	}

	for _, col := range []struct {
		name   string
		values []float64
	}{{"Mean", mean}, {"StdDev", std}, {"Min", lo}, {"Max", hi}} {
		if err := table.AddColumn(col.name, col.values); err != nil {
			return err
		}
	}
	return nil
}

func writeCSVFile(path string, table *results.Table) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := table.WriteCSV(file); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}
