package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"go-midicnc/config"
	"go-midicnc/debug"
	"go-midicnc/gcode"
	"go-midicnc/midi"
	"go-midicnc/preview"
	"go-midicnc/sequencer"
	"go-midicnc/theme"
	"go-midicnc/tui"
)

// job is one fully resolved conversion
type job struct {
	Input     string
	Output    string
	Prefix    []byte
	Postfix   []byte
	StartTick int64
	Machine   *config.Machine
}

func configError(err error) error {
	return fault.Wrap(err, fmsg.With("defaults file"), ftag.With(config.InvalidConfig))
}

func loadPresets(cmd *cli.Command) (config.Presets, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, configError(err)
	}
	return presetsFor(cmd, cfg)
}

// presetsFor reads the machines file named by --machines, or else by the
// saved defaults
func presetsFor(cmd *cli.Command, cfg *config.Config) (config.Presets, error) {
	path := cfg.MachinesFile
	if cmd.IsSet("machines") {
		path = cmd.String("machines")
	}
	return config.LoadPresets(path)
}

func loadTheme(cmd *cli.Command) (*theme.Theme, error) {
	path := cmd.String("palette")
	if path == "" {
		return theme.New(nil), nil
	}
	palette, err := theme.LoadGPL(path)
	if err != nil {
		return nil, fault.Wrap(err,
			fmsg.WithDesc("load palette", fmt.Sprintf("Cannot load palette %s.", path)),
			ftag.With(config.InvalidConfig),
		)
	}
	return theme.New(palette), nil
}

// loadJob layers flags over the saved defaults over the built-in presets.
// Prefix and postfix are read here so a missing file fails before any output
// exists.
func loadJob(cmd *cli.Command) (*job, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, configError(err)
	}

	opts := cfg.Options()
	if cmd.IsSet("machine") {
		opts.Machine = cmd.String("machine")
	}
	if cmd.IsSet("units") {
		opts.Units = cmd.String("units")
	}
	if cmd.IsSet("axes") {
		opts.Axes = cmd.String("axes")
	}
	if cmd.IsSet("channels") {
		opts.Channels = cmd.IntSlice("channels")
	}
	if cmd.IsSet("ppu") {
		opts.PPU = cmd.FloatSlice("ppu")
	}
	if cmd.IsSet("safemin") {
		opts.SafeMin = cmd.FloatSlice("safemin")
	}
	if cmd.IsSet("safemax") {
		opts.SafeMax = cmd.FloatSlice("safemax")
	}
	if cmd.IsSet("no-comments") {
		opts.SuppressComments = cmd.Bool("no-comments")
	}
	opts.Verbose = cmd.Bool("verbose")

	presets, err := presetsFor(cmd, cfg)
	if err != nil {
		return nil, err
	}
	machine, err := config.Resolve(presets, opts)
	if err != nil {
		return nil, err
	}

	j := &job{
		Input:     cmd.String("infile"),
		Output:    cmd.String("outfile"),
		StartTick: int64(cmd.Int("start-tick")),
		Machine:   machine,
	}
	if j.StartTick < 0 {
		return nil, fault.New("negative start tick",
			fmsg.WithDesc("start tick", "--start-tick cannot be negative."),
			ftag.With(config.InvalidConfig),
		)
	}

	prefix, postfix := cfg.Prefix, cfg.Postfix
	if cmd.IsSet("prefix") {
		prefix = cmd.String("prefix")
	}
	if cmd.IsSet("postfix") {
		postfix = cmd.String("postfix")
	}
	if j.Prefix, err = readInjection(prefix, "prefix"); err != nil {
		return nil, err
	}
	if j.Postfix, err = readInjection(postfix, "postfix"); err != nil {
		return nil, err
	}

	return j, nil
}

func readInjection(path, flag string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fault.Wrap(err,
			fmsg.WithDesc("read "+flag, fmt.Sprintf("Cannot read %s file %s.", flag, path)),
		)
	}
	return data, nil
}

// openOutput creates the output file (and its directory). "-" is stdout.
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "-" {
		return stdout, func() error { return nil }, nil
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fault.Wrap(err, fmsg.WithDesc("create output dir", "Cannot create the output directory."))
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fault.Wrap(err,
			fmsg.WithDesc("create output", fmt.Sprintf("Cannot create output file %s.", path)),
		)
	}
	return f, f.Close, nil
}

// prepare loads everything a pass needs. The MIDI file is validated here,
// before any output is created.
func prepare(ctx context.Context, cmd *cli.Command) (*job, *midi.File, *sequencer.Timeline, error) {
	logger := log.FromContext(ctx)

	j, err := loadJob(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	f, err := midi.ReadFile(j.Input)
	if err != nil {
		return nil, nil, nil, err
	}
	tl := sequencer.BuildTimeline(f, j.Machine.Channels, logger)
	return j, f, tl, nil
}

func (a *app) convert(ctx context.Context, cmd *cli.Command) error {
	logger := log.FromContext(ctx)

	j, f, tl, err := prepare(ctx, cmd)
	if err != nil {
		return err
	}
	th, err := loadTheme(cmd)
	if err != nil {
		return err
	}

	// Keep the report off stdout when the program goes there
	reportTo := cmd.Root().Writer
	if j.Output == "-" {
		reportTo = cmd.Root().ErrWriter
	}
	rep := newReport(reportTo, th)
	rep.settings(j)
	rep.midiFile(j, f, tl)

	out, closeOut, err := openOutput(j.Output, cmd.Root().Writer)
	if err != nil {
		return err
	}

	w := gcode.NewWriter(out)
	rec := &sequencer.Recorder{}
	stats, runErr := writeProgram(w, j, tl, rec, logger)

	// Whatever was generated before a failure stays in the file
	flushErr := w.Flush()
	closeErr := closeOut()

	rep.result(stats, rec.Blocks, runErr)
	if runErr != nil {
		return runErr
	}
	if flushErr != nil {
		return fault.Wrap(flushErr, fmsg.WithDesc("write output", "Cannot write the output file."))
	}
	if closeErr != nil {
		return fault.Wrap(closeErr, fmsg.WithDesc("close output", "Cannot write the output file."))
	}
	return nil
}

// writeProgram emits the whole G-code program: header, prefix, moves, postfix.
// Blocks also go to observer. On an envelope violation the postfix is not
// written.
func writeProgram(w *gcode.Writer, j *job, tl *sequencer.Timeline, observer sequencer.Emitter, logger *log.Logger) (sequencer.Stats, error) {
	var stats sequencer.Stats

	if !j.Machine.SuppressComments {
		if err := w.Header(j.Input); err != nil {
			return stats, err
		}
	}
	if j.Prefix != nil {
		if err := w.Copy(bytes.NewReader(j.Prefix)); err != nil {
			return stats, err
		}
	}

	gen := sequencer.NewGenerator(j.Machine, sequencer.Tee(w, observer), logger)
	gen.SetStartTime(j.StartTick)
	stats, err := gen.Run(tl)
	if err != nil {
		return stats, err
	}

	if j.Postfix != nil {
		if err := w.Copy(bytes.NewReader(j.Postfix)); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// record runs a pass into memory, for the viewers
func record(j *job, tl *sequencer.Timeline, logger *log.Logger) ([]sequencer.Block, sequencer.Stats, error) {
	rec := &sequencer.Recorder{}
	gen := sequencer.NewGenerator(j.Machine, rec, logger)
	gen.SetStartTime(j.StartTick)
	stats, err := gen.Run(tl)
	return rec.Blocks, stats, err
}

func (a *app) inspect(ctx context.Context, cmd *cli.Command) error {
	// Terminal logging would tear through the full-screen view
	logger := log.FromContext(ctx)
	if !cmd.IsSet("log-file") {
		logger = debug.Discard()
		ctx = log.WithContext(ctx, logger)
	}

	j, _, tl, err := prepare(ctx, cmd)
	if err != nil {
		return err
	}
	th, err := loadTheme(cmd)
	if err != nil {
		return err
	}

	blocks, _, runErr := record(j, tl, logger)

	driven := sequencer.DrivenAxis
	env := tui.Envelope{Min: j.Machine.SafeMin[driven], Max: j.Machine.SafeMax[driven]}
	title := fmt.Sprintf("%s on %s", filepath.Base(j.Input), j.Machine.Description)
	if err := tui.Run(tui.NewModel(title, blocks, env, th)); err != nil {
		return fault.Wrap(err, fmsg.With("run inspector"))
	}
	return runErr
}

func (a *app) preview(ctx context.Context, cmd *cli.Command) error {
	logger := log.FromContext(ctx)

	j, _, tl, err := prepare(ctx, cmd)
	if err != nil {
		return err
	}

	blocks, stats, runErr := record(j, tl, logger)

	path := cmd.String("wav")
	f, err := os.Create(path)
	if err != nil {
		return fault.Wrap(err, fmsg.WithDesc("create wav", fmt.Sprintf("Cannot create %s.", path)))
	}
	opts := preview.Options{SampleRate: cmd.Int("rate"), Volume: cmd.Float("volume")}
	if err := preview.Render(f, tl, blocks, opts); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fault.Wrap(err, fmsg.With("close wav"))
	}

	fmt.Fprintf(cmd.Root().Writer, "Wrote %s: %d notes, %.2f seconds\n", path, stats.Blocks, stats.Seconds)
	return runErr
}
