package sequencer

import (
	"fmt"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/charmbracelet/log"

	"go-midicnc/config"
	"go-midicnc/midi"
)

const (
	FeedRate = 34.0    // units per minute, every axis
	RPMPerHz = 10.0    // spindle speed per Hz of the driving note
	MinRPM   = 2000.0  // slowest spindle speed the controllers accept
	MaxRPM   = 12000.0 // fastest
)

// SpindleRPM maps a note frequency to a clamped spindle speed
func SpindleRPM(freq float64) float64 {
	rpm := freq * RPMPerHz
	switch {
	case rpm < MinRPM:
		return MinRPM
	case rpm > MaxRPM:
		return MaxRPM
	default:
		return rpm
	}
}

// AxisState tracks one axis through the run
type AxisState struct {
	Axis      config.Axis
	Position  float64
	Direction float64 // +1 or -1
	PPU       float64
	Min       float64
	Max       float64
}

// DrivenAxis is the only axis that moves. The configured axis ordering is
// reported but does not change which axis is voiced.
const DrivenAxis = config.AxisX

// GeneratorState is everything that changes during a pass
type GeneratorState struct {
	Axis     AxisState
	Notes    *NoteSet
	LastTime int64
}

// Stats summarizes a finished (or aborted) pass
type Stats struct {
	Blocks    int
	Rests     int
	Reversals int
	Seconds   float64 // playing time covered by emitted blocks
}

// Generator walks a timeline once and turns it into blocks
type Generator struct {
	machine *config.Machine
	emit    Emitter
	logger  *log.Logger
	state   GeneratorState
}

// NewGenerator prepares a pass for machine, sending blocks to emit.
// The driven axis starts at 0 moving in the positive direction.
func NewGenerator(machine *config.Machine, emit Emitter, logger *log.Logger) *Generator {
	return &Generator{
		machine: machine,
		emit:    emit,
		logger:  logger,
		state: GeneratorState{
			Axis: AxisState{
				Axis:      DrivenAxis,
				Direction: 1.0,
				PPU:       machine.PPU[DrivenAxis],
				Min:       machine.SafeMin[DrivenAxis],
				Max:       machine.SafeMax[DrivenAxis],
			},
			Notes: NewNoteSet(logger),
		},
	}
}

// SetStartTime skips everything up to tick t: no block covers time before it
func (g *Generator) SetStartTime(t int64) {
	g.state.LastTime = t
}

// State returns the generator's current state
func (g *Generator) State() GeneratorState {
	return g.state
}

// Run performs the pass. On an envelope violation it stops immediately;
// blocks emitted before that point stay emitted.
func (g *Generator) Run(tl *Timeline) (Stats, error) {
	var stats Stats

	if tl.Division == 0 {
		return stats, fault.New("zero division",
			fmsg.WithDesc("timeline division is zero", "The MIDI file has no timing division."),
			ftag.With(midi.InvalidInput),
		)
	}

	for _, ev := range tl.Events {
		if ev.Time > g.state.LastTime {
			if err := g.advance(tl, ev.Time, &stats); err != nil {
				return stats, err
			}
		}

		// Every entry updates the set, so all events sharing a timestamp are
		// applied before the next timestamp is voiced.
		if ev.On {
			g.state.Notes.On(ev.Pitch)
		} else {
			g.state.Notes.Off(ev.Pitch)
		}
	}

	return stats, nil
}

// advance voices the span from LastTime to now
func (g *Generator) advance(tl *Timeline, now int64, stats *Stats) error {
	st := &g.state

	chord := st.Notes.Len()
	pitch, ok := st.Notes.Highest()
	if !ok {
		stats.Rests++
		st.LastTime = now
		return nil
	}

	freq := midi.Frequency(pitch)
	duration := tl.Seconds(now - st.LastTime)
	distance := (FeedRate * duration) / 60.0

	// A zero tempo gives a span with no travel; nothing is written for it
	if distance <= 0 {
		g.logger.Debug("no movement", "time", now, "note", pitch)
		st.LastTime = now
		return nil
	}

	axis := &st.Axis
	reversed := false
	g.logger.Debug("chord", "hz", fmt.Sprintf("%7.3f", freq), "seconds", fmt.Sprintf("%5.2f", duration), "time", now)
	g.logger.Debug("feed", "rate", FeedRate, "units", g.machine.Units.Abbrev+"/min")
	g.logger.Debug("moves", "axis", axis.Axis, "relative", fmt.Sprintf("%7.3f", distance), "units", g.machine.Units.Name)

	switch ReachedLimit(axis.Position, distance*axis.Direction, axis.Min, axis.Max) {
	case MustReverse:
		axis.Direction = -axis.Direction
		reversed = true
		stats.Reversals++
		g.logger.Debug("reversing", "axis", axis.Axis, "position", axis.Position, "direction", axis.Direction)
	case Fatal:
		envErr := &EnvelopeError{
			Time:     now,
			Pitch:    pitch,
			Axis:     axis.Axis,
			Position: axis.Position,
			Distance: distance,
			Min:      axis.Min,
			Max:      axis.Max,
		}
		g.logger.Error("movement outside safe envelope", "time", now, "note", pitch, "axis", axis.Axis,
			"position", axis.Position, "distance", distance)
		return fault.Wrap(envErr,
			fmsg.WithDesc("envelope violation",
				"The current movement cannot be completed within the safe working envelope of your machine. "+
					"Turn on the --verbose option to see which MIDI data caused the problem and adjust the MIDI file "+
					"(or your safety limits if you are confident you can do that safely). Aborting."),
			ftag.With(EnvelopeViolation),
		)
	}
	axis.Position += distance * axis.Direction

	block := Block{
		Start:     st.LastTime,
		Time:      now,
		Pitch:     pitch,
		Chord:     chord,
		Frequency: freq,
		Duration:  duration,
		Feed:      FeedRate,
		Distance:  distance * axis.Direction,
		RPM:       SpindleRPM(freq),
		Axis:      axis.Axis,
		Position:  axis.Position,
		Direction: axis.Direction,
		Reversed:  reversed,
	}
	if err := g.emit.Emit(block); err != nil {
		return fault.Wrap(err, fmsg.With("emit block"))
	}

	stats.Blocks++
	stats.Seconds += duration
	st.LastTime = now
	return nil
}
