package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-midicnc/config"
	"go-midicnc/midi"
	"go-midicnc/sequencer"
	"go-midicnc/theme"
)

// report prints the run summary: settings, MIDI header, and outcome
type report struct {
	w  io.Writer
	th *theme.Theme
}

func newReport(w io.Writer, th *theme.Theme) *report {
	return &report{w: w, th: th}
}

func (r *report) field(label, value string) {
	fmt.Fprintf(r.w, "%s\n    %s\n", r.th.Label().Render(label+":"), r.th.Value().Render(value))
}

func (r *report) heading(text string) {
	fmt.Fprintf(r.w, "\n%s\n", r.th.Title().Render(text))
}

func triple(v [3]float64) string {
	return fmt.Sprintf("[%.3f, %.3f, %.3f]", v[0], v[1], v[2])
}

func channelList(chs []uint8) string {
	var sb strings.Builder
	sb.WriteString("[")
	for _, ch := range chs {
		fmt.Fprintf(&sb, " %d", ch)
	}
	sb.WriteString(" ]")
	return sb.String()
}

func (r *report) settings(j *job) {
	m := j.Machine
	r.heading("Settings")
	r.field("MIDI input file", j.Input)
	r.field("Gcode output file", j.Output)
	r.field("Machine type", m.Description)
	r.field("Units and Feed rates", fmt.Sprintf("%s and %s/minute", m.Units.Name, m.Units.Abbrev))
	r.field("Minimum safe limits [X, Y, Z]", triple(m.SafeMin))
	r.field("Maximum safe limits [X, Y, Z]", triple(m.SafeMax))
	r.field(fmt.Sprintf("Pulses per %s [X, Y, Z] axis", m.Units.Name), triple(m.PPU))
	r.field("MIDI channels", fmt.Sprint(m.Channels.Channels()))
	if len(m.Axes) > 1 {
		r.field("Generate Gcode for", fmt.Sprintf("%d axes in the order %s", len(m.Axes), m.AxesString()))
	} else {
		r.field("Generate Gcode for", fmt.Sprintf("%s axis only", m.AxesString()))
	}
}

func (r *report) midiFile(j *job, f *midi.File, tl *sequencer.Timeline) {
	r.heading("MIDI")
	r.field("MIDI file", filepath.Base(j.Input))
	r.field("MIDI format", fmt.Sprintf("%d", f.Format))
	r.field("Number of tracks", fmt.Sprintf("%d", f.NumTracks()))
	r.field("Timing division", fmt.Sprintf("%d", f.Division))
	for _, tc := range tl.Channels.Tracks {
		fmt.Fprintf(r.w, "Processed track %d, containing channels numbered: %s\n", tc.Track, channelList(tc.Channels))
	}
	fmt.Fprintf(r.w, "The file as a whole contains channels numbered: %s\n", channelList(tl.Channels.All))
}

func (r *report) result(stats sequencer.Stats, blocks []sequencer.Block, err error) {
	r.heading("Result")
	r.field("Blocks written", fmt.Sprintf("%d", stats.Blocks))
	r.field("Rests", fmt.Sprintf("%d", stats.Rests))
	r.field("Direction reversals", fmt.Sprintf("%d", stats.Reversals))
	r.field("Playing time", fmt.Sprintf("%.2f seconds", stats.Seconds))
	if len(blocks) > 0 {
		lo, hi := travelRange(blocks)
		r.field(fmt.Sprintf("Travel on %s", blocks[0].Axis), fmt.Sprintf("%.3f to %.3f", lo, hi))
	}
	if err != nil {
		fmt.Fprintln(r.w, r.th.Alert().Render("Stopped early, output is incomplete"))
		return
	}
	fmt.Fprintln(r.w, lipgloss.NewStyle().Foreground(r.th.Success()).Render("Done"))
}

// travelRange is the span the driven axis covered, starting from 0
func travelRange(blocks []sequencer.Block) (lo, hi float64) {
	for _, b := range blocks {
		lo = min(lo, b.Position)
		hi = max(hi, b.Position)
	}
	return lo, hi
}

func (r *report) presets(p config.Presets) {
	for _, name := range p.Names() {
		pr := p[name]
		axes := pr.Axes
		if axes == "" {
			axes = "XYZ"
		}
		fmt.Fprintf(r.w, "%s  %s\n", r.th.Title().Render(fmt.Sprintf("%-12s", name)), r.th.Value().Render(pr.Description))
		fmt.Fprintf(r.w, "%s ppu %s  min %s  max %s  axes %s\n",
			strings.Repeat(" ", 13), triple(pr.PPU), triple(pr.SafeMin), triple(pr.SafeMax), axes)
	}
}
