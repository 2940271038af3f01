package config

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

// InvalidConfig tags errors caused by inconsistent settings
const InvalidConfig ftag.Kind = "invalid_config"

// Axis identifies one of the three machine axes
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	return [...]string{"X", "Y", "Z"}[a]
}

// Units describes a measurement scheme and its scale to millimetres
type Units struct {
	Name   string
	Abbrev string
	Scale  float64
}

// UnitSchemes are the measurement schemes we know about
var UnitSchemes = map[string]Units{
	"metric":   {Name: "millimetre", Abbrev: "mm", Scale: 1.0},
	"imperial": {Name: "inch", Abbrev: "in", Scale: 25.4},
}

// axisOrders lists every accepted ordering of axes to voice
var axisOrders = map[string][]Axis{
	"X": {AxisX}, "Y": {AxisY}, "Z": {AxisZ},
	"XY": {AxisX, AxisY}, "YX": {AxisY, AxisX},
	"XZ": {AxisX, AxisZ}, "ZX": {AxisZ, AxisX},
	"YZ": {AxisY, AxisZ}, "ZY": {AxisZ, AxisY},
	"XYZ": {AxisX, AxisY, AxisZ}, "XZY": {AxisX, AxisZ, AxisY},
	"YXZ": {AxisY, AxisX, AxisZ}, "YZX": {AxisY, AxisZ, AxisX},
	"ZXY": {AxisZ, AxisX, AxisY}, "ZYX": {AxisZ, AxisY, AxisX},
}

// AxisOrders returns the accepted axis orderings, sorted
func AxisOrders() []string {
	names := make([]string, 0, len(axisOrders))
	for name := range axisOrders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseAxes resolves an ordering like "ZY" into axes
func ParseAxes(s string) ([]Axis, error) {
	axes, ok := axisOrders[strings.ToUpper(s)]
	if !ok {
		return nil, fault.New("unknown axis ordering",
			fmsg.WithDesc("parse axes "+s, fmt.Sprintf("Axes %q must be one of %s.", s, strings.Join(AxisOrders(), ", "))),
			ftag.With(InvalidConfig),
		)
	}
	return slices.Clone(axes), nil
}

// ChannelMask is an allow-list of MIDI channels 0-15, one bit per channel
type ChannelMask uint16

// AllChannels allows every MIDI channel
const AllChannels ChannelMask = 0xFFFF

// NewChannelMask builds a mask from channel numbers
func NewChannelMask(channels []int) (ChannelMask, error) {
	var m ChannelMask
	for _, ch := range channels {
		if ch < 0 || ch > 15 {
			return 0, fault.New("channel out of range",
				fmsg.WithDesc(fmt.Sprintf("channel %d", ch), fmt.Sprintf("MIDI channel %d is not in 0-15.", ch)),
				ftag.With(InvalidConfig),
			)
		}
		m |= 1 << uint(ch)
	}
	return m, nil
}

// Has reports whether ch is allowed
func (m ChannelMask) Has(ch uint8) bool {
	return ch < 16 && m&(1<<ch) != 0
}

// Channels lists the allowed channels in ascending order
func (m ChannelMask) Channels() []int {
	var out []int
	for ch := 0; ch < 16; ch++ {
		if m&(1<<uint(ch)) != 0 {
			out = append(out, ch)
		}
	}
	return out
}

// Machine is the resolved configuration for one run
type Machine struct {
	Name        string
	Description string
	Units       Units
	PPU         [3]float64 // pulses per unit, X Y Z
	SafeMin     [3]float64
	SafeMax     [3]float64
	Axes        []Axis // voicing order
	Channels    ChannelMask

	Verbose          bool
	SuppressComments bool
}

// Options are the user's choices before presets are applied.
// Nil slices and empty strings fall back to the preset.
type Options struct {
	Machine  string
	Units    string
	Axes     string
	PPU      []float64
	SafeMin  []float64
	SafeMax  []float64
	Channels []int

	Verbose          bool
	SuppressComments bool
}

// Resolve applies presets and unit scaling to opts.
// Preset ppu values are multiplied by the unit scale and preset envelope
// edges divided by it; explicit values are taken as given.
func Resolve(presets Presets, opts Options) (*Machine, error) {
	name := opts.Machine
	if name == "" {
		name = DefaultMachine
	}
	preset, ok := presets[name]
	if !ok {
		return nil, fault.New("unknown machine",
			fmsg.WithDesc("machine "+name, fmt.Sprintf("Machine %q must be one of %s.", name, strings.Join(presets.Names(), ", "))),
			ftag.With(InvalidConfig),
		)
	}

	unitName := opts.Units
	if unitName == "" {
		unitName = "metric"
	}
	units, ok := UnitSchemes[unitName]
	if !ok {
		return nil, fault.New("unknown units",
			fmsg.WithDesc("units "+unitName, fmt.Sprintf("Units %q must be metric or imperial.", unitName)),
			ftag.With(InvalidConfig),
		)
	}

	m := &Machine{
		Name:             name,
		Description:      preset.Description,
		Units:            units,
		Verbose:          opts.Verbose,
		SuppressComments: opts.SuppressComments,
	}

	for i := 0; i < 3; i++ {
		m.PPU[i] = preset.PPU[i] * units.Scale
		m.SafeMin[i] = preset.SafeMin[i] / units.Scale
		m.SafeMax[i] = preset.SafeMax[i] / units.Scale
	}
	if err := override(&m.PPU, opts.PPU, "ppu"); err != nil {
		return nil, err
	}
	if err := override(&m.SafeMin, opts.SafeMin, "safemin"); err != nil {
		return nil, err
	}
	if err := override(&m.SafeMax, opts.SafeMax, "safemax"); err != nil {
		return nil, err
	}
	for i := 0; i < 3; i++ {
		if m.SafeMin[i] >= m.SafeMax[i] {
			return nil, fault.New("empty envelope",
				fmsg.WithDesc(fmt.Sprintf("%s envelope", Axis(i)),
					fmt.Sprintf("Safe minimum %.3f for %s is not below maximum %.3f.", m.SafeMin[i], Axis(i), m.SafeMax[i])),
				ftag.With(InvalidConfig),
			)
		}
	}

	axes := opts.Axes
	if axes == "" {
		axes = preset.Axes
	}
	if axes == "" {
		axes = "XYZ"
	}
	var err error
	if m.Axes, err = ParseAxes(axes); err != nil {
		return nil, err
	}

	if opts.Channels == nil {
		m.Channels = AllChannels
	} else if m.Channels, err = NewChannelMask(opts.Channels); err != nil {
		return nil, err
	}

	return m, nil
}

func override(dst *[3]float64, values []float64, flag string) error {
	if values == nil {
		return nil
	}
	if len(values) != 3 {
		return fault.New("wrong value count",
			fmsg.WithDesc(flag, fmt.Sprintf("--%s needs three values (X Y Z), got %d.", flag, len(values))),
			ftag.With(InvalidConfig),
		)
	}
	copy(dst[:], values)
	return nil
}

// AxesString renders the voicing order, e.g. "ZY"
func (m *Machine) AxesString() string {
	var sb strings.Builder
	for _, a := range m.Axes {
		sb.WriteString(a.String())
	}
	return sb.String()
}
