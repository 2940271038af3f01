package config

import (
	"fmt"
	"maps"
	"os"
	"sort"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"gopkg.in/yaml.v3"
)

// DefaultMachine is used when no machine is chosen
const DefaultMachine = "cupcake"

// Preset describes a machine before units are applied.
// Values are in millimetres.
type Preset struct {
	Description string     `yaml:"description"`
	PPU         [3]float64 `yaml:"ppu"`
	SafeMin     [3]float64 `yaml:"safemin"`
	SafeMax     [3]float64 `yaml:"safemax"`
	Axes        string     `yaml:"axes"`
}

// Presets maps machine names to their specs
type Presets map[string]Preset

// Specifications for some machines (need verification!)
var builtinPresets = Presets{
	"cupcake": {
		Description: "Makerbot Cupcake CNC",
		PPU:         [3]float64{11.767, 11.767, 320.000},
		SafeMin:     [3]float64{-20.000, -20.000, 0.000},
		SafeMax:     [3]float64{20.000, 20.000, 10.000},
		Axes:        "XYZ",
	},
	"thingomatic": {
		Description: "Makerbot Thing-O-Matic",
		PPU:         [3]float64{47.069852, 47.069852, 200.0},
		SafeMin:     [3]float64{-20.000, -20.000, 0.000},
		SafeMax:     [3]float64{20.000, 20.000, 10.000},
		Axes:        "XYZ",
	},
	"shapercube": {
		Description: "Shapercube",
		PPU:         [3]float64{10.0, 10.0, 320.0},
		SafeMin:     [3]float64{0.000, 0.000, 0.000},
		SafeMax:     [3]float64{10.000, 10.000, 10.000},
		Axes:        "XYZ",
	},
	"ultimaker": {
		Description: "Ultimaker",
		PPU:         [3]float64{47.069852, 47.069852, 160.0},
		SafeMin:     [3]float64{0.000, 0.000, 0.000},
		SafeMax:     [3]float64{10.000, 10.000, 10.000},
		Axes:        "XYZ",
	},
	"custom": {
		Description: "Bespoke machine",
		PPU:         [3]float64{10.0, 10.0, 10.0},
		SafeMin:     [3]float64{0.000, 0.000, 0.000},
		SafeMax:     [3]float64{10.000, 10.000, 10.000},
		Axes:        "X",
	},
}

// BuiltinPresets returns a copy of the built-in machine table
func BuiltinPresets() Presets {
	return maps.Clone(builtinPresets)
}

// Names returns preset names, sorted
func (p Presets) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// presetFile is the YAML layout of a machines file:
//
//	machines:
//	  mymill:
//	    description: Garage mill
//	    ppu: [80, 80, 400]
//	    safemin: [0, 0, -5]
//	    safemax: [200, 200, 0]
//	    axes: XY
type presetFile struct {
	Machines Presets `yaml:"machines"`
}

// LoadPresets reads a YAML machines file and layers it over the built-ins.
// An empty path returns the built-ins unchanged.
func LoadPresets(path string) (Presets, error) {
	presets := BuiltinPresets()
	if path == "" {
		return presets, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fault.Wrap(err,
			fmsg.WithDesc("read machines file", fmt.Sprintf("Cannot read machines file %s.", path)),
			ftag.With(InvalidConfig),
		)
	}

	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fault.Wrap(err,
			fmsg.WithDesc("parse machines file", fmt.Sprintf("Machines file %s is not valid YAML.", path)),
			ftag.With(InvalidConfig),
		)
	}

	for name, p := range file.Machines {
		if p.Description == "" {
			p.Description = name
		}
		presets[name] = p
	}
	return presets, nil
}
