package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"go-midicnc/config"
	"go-midicnc/debug"
	"go-midicnc/midi"
	"go-midicnc/sequencer"
)

// Exit statuses
const (
	exitOK       = 0
	exitError    = 1 // usage, configuration, IO
	exitEnvelope = 2
	exitInput    = 3 // empty or unreadable MIDI
)

func main() {
	os.Exit(run(context.Background(), os.Args, os.Stdout, os.Stderr))
}

// run executes the CLI and maps its outcome to an exit status
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	err := a.command().Run(ctx, args)
	if err == nil {
		return exitOK
	}
	a.printError(err)
	return exitCode(err)
}

func exitCode(err error) int {
	switch ftag.Get(err) {
	case sequencer.EnvelopeViolation:
		return exitEnvelope
	case midi.InvalidInput:
		return exitInput
	default:
		return exitError
	}
}

type app struct {
	stdout, stderr io.Writer
	verbose        bool
	logClose       io.Closer
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:      "midicnc",
		Usage:     "play MIDI files on a CNC machine by turning notes into G-code moves",
		Writer:    a.stdout,
		ErrWriter: a.stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "infile",
				Aliases: []string{"i"},
				Value:   "./midi-files/input.mid",
				Usage:   "the input MIDI filename",
			},
			&cli.StringFlag{
				Name:    "outfile",
				Aliases: []string{"o"},
				Value:   "./gcode-files/output.gcode",
				Usage:   "the output Gcode filename, - for stdout",
			},
			&cli.IntSliceFlag{
				Name:  "channels",
				Usage: "list of MIDI channels to process (0-15), default all",
			},
			&cli.StringFlag{
				Name:  "machine",
				Usage: "machine preset: cupcake, thingomatic, shapercube, ultimaker, custom, or one from --machines",
			},
			&cli.StringFlag{
				Name:  "machines",
				Usage: "YAML file of extra machine presets",
			},
			&cli.StringFlag{
				Name:  "units",
				Usage: "metric or imperial",
			},
			&cli.FloatSliceFlag{
				Name:  "ppu",
				Usage: "pulses per unit for X,Y,Z",
			},
			&cli.FloatSliceFlag{
				Name:  "safemin",
				Usage: "minimum safe position for X,Y,Z",
			},
			&cli.FloatSliceFlag{
				Name:  "safemax",
				Usage: "maximum safe position for X,Y,Z",
			},
			&cli.StringFlag{
				Name:  "prefix",
				Usage: "file copied into the output before the moves",
			},
			&cli.StringFlag{
				Name:  "postfix",
				Usage: "file copied into the output after the moves",
			},
			&cli.StringFlag{
				Name:  "axes",
				Usage: "ordering of axes to drive, e.g. X, ZY, XYZ",
			},
			&cli.IntFlag{
				Name:  "start-tick",
				Usage: "skip everything before this MIDI tick",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "print verbose output to the terminal",
			},
			&cli.BoolFlag{
				Name:  "no-comments",
				Usage: "suppress comments in the output",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "write diagnostics to this file instead of stderr",
			},
			&cli.StringFlag{
				Name:  "palette",
				Usage: "GIMP palette (.gpl) for terminal colors",
			},
		},
		Before: a.before,
		After:  a.after,
		Action: a.convert,
		Commands: []*cli.Command{
			{
				Name:   "convert",
				Usage:  "write the G-code program (default)",
				Action: a.convert,
			},
			{
				Name:   "inspect",
				Usage:  "browse the generated moves without writing G-code",
				Action: a.inspect,
			},
			{
				Name:  "preview",
				Usage: "render the driving notes to a WAV file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "wav",
						Value: "preview.wav",
						Usage: "output WAV filename",
					},
					&cli.IntFlag{
						Name:  "rate",
						Value: 22050,
						Usage: "sample rate in Hz",
					},
					&cli.FloatFlag{
						Name:  "volume",
						Value: 0.25,
						Usage: "square wave amplitude, 0-1",
					},
				},
				Action: a.preview,
			},
			{
				Name:   "machines",
				Usage:  "list machine presets",
				Action: a.machines,
			},
			{
				Name:  "config",
				Usage: "manage saved defaults",
				Commands: []*cli.Command{
					{
						Name:   "save",
						Usage:  "save the current flags as defaults",
						Action: a.saveConfig,
					},
					{
						Name:   "path",
						Usage:  "print the defaults file location",
						Action: a.configPath,
					},
				},
			},
		},
	}
}

// before sets up the logger every action finds in its context
func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	a.verbose = cmd.Bool("verbose")

	var logger *log.Logger
	if path := cmd.String("log-file"); path != "" {
		l, closer, err := debug.OpenLogFile(path, a.verbose)
		if err != nil {
			return ctx, fmt.Errorf("open log file: %w", err)
		}
		logger, a.logClose = l, closer
	} else {
		logger = debug.NewLogger(a.stderr, a.verbose)
	}

	return log.WithContext(ctx, logger), nil
}

func (a *app) after(ctx context.Context, cmd *cli.Command) error {
	if a.logClose != nil {
		return a.logClose.Close()
	}
	return nil
}

// printError reports the user-facing message; verbose runs add the full chain
func (a *app) printError(err error) {
	issue := fmsg.GetIssue(err)
	if issue == "" {
		issue = err.Error()
	}
	fmt.Fprintf(a.stderr, "\n*** ERROR ***\n%s\n", issue)

	if !a.verbose {
		return
	}
	fmt.Fprintf(a.stderr, "detail: %v\n", err)

	var env *sequencer.EnvelopeError
	if errors.As(err, &env) {
		fmt.Fprintf(a.stderr, "note %s (%d) at tick %d: %s at %.4f, move %.4f, envelope [%.3f, %.3f]\n",
			midi.NoteName(env.Pitch), env.Pitch, env.Time, env.Axis, env.Position, env.Distance, env.Min, env.Max)
	}
}

func (a *app) machines(ctx context.Context, cmd *cli.Command) error {
	presets, err := loadPresets(cmd)
	if err != nil {
		return err
	}
	th, err := loadTheme(cmd)
	if err != nil {
		return err
	}
	newReport(cmd.Root().Writer, th).presets(presets)
	return nil
}

func (a *app) saveConfig(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return configError(err)
	}

	if cmd.IsSet("machine") {
		cfg.Machine = cmd.String("machine")
	}
	if cmd.IsSet("machines") {
		cfg.MachinesFile = cmd.String("machines")
	}
	if cmd.IsSet("units") {
		cfg.Units = cmd.String("units")
	}
	if cmd.IsSet("axes") {
		cfg.Axes = cmd.String("axes")
	}
	if cmd.IsSet("channels") {
		cfg.Channels = cmd.IntSlice("channels")
	}
	if cmd.IsSet("prefix") {
		cfg.Prefix = cmd.String("prefix")
	}
	if cmd.IsSet("postfix") {
		cfg.Postfix = cmd.String("postfix")
	}
	if cmd.IsSet("no-comments") {
		cfg.SuppressComments = cmd.Bool("no-comments")
	}

	// Refuse to persist settings that would not resolve
	presets, err := presetsFor(cmd, cfg)
	if err != nil {
		return err
	}
	if _, err := config.Resolve(presets, cfg.Options()); err != nil {
		return err
	}

	if err := cfg.Save(); err != nil {
		return configError(err)
	}
	path, _ := config.ConfigPath()
	fmt.Fprintf(cmd.Root().Writer, "Saved defaults to %s\n", path)
	return nil
}

func (a *app) configPath(ctx context.Context, cmd *cli.Command) error {
	path, err := config.ConfigPath()
	if err != nil {
		return configError(err)
	}
	fmt.Fprintln(cmd.Root().Writer, path)
	return nil
}
