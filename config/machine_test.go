package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Southclaws/fault/ftag"
)

func TestResolveCupcakeDefaults(t *testing.T) {
	m, err := Resolve(BuiltinPresets(), Options{})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if m.Name != "cupcake" {
		t.Fatalf("name: got %q", m.Name)
	}
	if m.PPU != [3]float64{11.767, 11.767, 320} {
		t.Errorf("ppu: got %v", m.PPU)
	}
	if m.SafeMin != [3]float64{-20, -20, 0} || m.SafeMax != [3]float64{20, 20, 10} {
		t.Errorf("envelope: got %v %v", m.SafeMin, m.SafeMax)
	}
	if m.AxesString() != "XYZ" {
		t.Errorf("axes: got %q", m.AxesString())
	}
	if m.Channels != AllChannels {
		t.Errorf("channels: got %016b", m.Channels)
	}
}

func TestResolveImperialScalesPresetValues(t *testing.T) {
	m, err := Resolve(BuiltinPresets(), Options{Machine: "shapercube", Units: "imperial"})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if math.Abs(m.PPU[0]-254.0) > 1e-9 {
		t.Errorf("ppu X: got %v, want 254", m.PPU[0])
	}
	if math.Abs(m.SafeMax[2]-10.0/25.4) > 1e-12 {
		t.Errorf("safemax Z: got %v", m.SafeMax[2])
	}
	if m.Units.Abbrev != "in" {
		t.Errorf("units: got %+v", m.Units)
	}
}

func TestResolveExplicitValuesAreNotScaled(t *testing.T) {
	m, err := Resolve(BuiltinPresets(), Options{
		Units:   "imperial",
		PPU:     []float64{1, 2, 3},
		SafeMin: []float64{-1, -1, -1},
		SafeMax: []float64{1, 1, 1},
	})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if m.PPU != [3]float64{1, 2, 3} || m.SafeMax != [3]float64{1, 1, 1} {
		t.Fatalf("got ppu %v safemax %v", m.PPU, m.SafeMax)
	}
}

func TestResolveCustomMachineUsesPresetAxes(t *testing.T) {
	m, err := Resolve(BuiltinPresets(), Options{Machine: "custom"})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if m.AxesString() != "X" {
		t.Fatalf("axes: got %q, want X", m.AxesString())
	}
}

func TestResolveErrors(t *testing.T) {
	cases := []struct {
		name string
		opts Options
	}{
		{"unknown machine", Options{Machine: "lathe"}},
		{"unknown units", Options{Units: "furlongs"}},
		{"bad axes", Options{Axes: "XX"}},
		{"channel range", Options{Channels: []int{16}}},
		{"ppu count", Options{PPU: []float64{1, 2}}},
		{"inverted envelope", Options{SafeMin: []float64{5, 0, 0}, SafeMax: []float64{1, 10, 10}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Resolve(BuiltinPresets(), c.opts)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := ftag.Get(err); got != InvalidConfig {
				t.Fatalf("tag: got %q, want %q", got, InvalidConfig)
			}
		})
	}
}

func TestChannelMask(t *testing.T) {
	m, err := NewChannelMask([]int{0, 9, 15})
	if err != nil {
		t.Fatal(err)
	}
	for ch := uint8(0); ch < 16; ch++ {
		want := ch == 0 || ch == 9 || ch == 15
		if m.Has(ch) != want {
			t.Errorf("Has(%d): got %v, want %v", ch, m.Has(ch), want)
		}
	}
	if got := m.Channels(); len(got) != 3 || got[1] != 9 {
		t.Errorf("Channels: got %v", got)
	}
	if AllChannels.Has(16) {
		t.Error("channel 16 must never be allowed")
	}
}

func TestParseAxesAcceptsEveryOrdering(t *testing.T) {
	orders := AxisOrders()
	if len(orders) != 15 {
		t.Fatalf("orderings: got %d, want 15", len(orders))
	}
	axes, err := ParseAxes("zyx")
	if err != nil {
		t.Fatal(err)
	}
	if axes[0] != AxisZ || axes[2] != AxisX {
		t.Fatalf("ZYX: got %v", axes)
	}
}

func TestLoadPresetsLayersYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "machines.yaml")
	doc := `machines:
  mymill:
    ppu: [80, 80, 400]
    safemin: [0, 0, -5]
    safemax: [200, 200, 0]
    axes: XY
  custom:
    description: Overridden
    ppu: [1, 1, 1]
    safemin: [0, 0, 0]
    safemax: [5, 5, 5]
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	presets, err := LoadPresets(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if _, ok := presets["cupcake"]; !ok {
		t.Fatal("built-in presets must survive")
	}
	mill := presets["mymill"]
	if mill.Description != "mymill" || mill.PPU[2] != 400 || mill.SafeMin[2] != -5 {
		t.Fatalf("mymill: got %+v", mill)
	}
	if presets["custom"].Description != "Overridden" {
		t.Fatalf("custom: got %+v", presets["custom"])
	}

	m, err := Resolve(presets, Options{Machine: "mymill"})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if m.AxesString() != "XY" || m.SafeMax[0] != 200 {
		t.Fatalf("resolved: got %+v", m)
	}
}

func TestLoadPresetsRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "machines.yaml")
	if err := os.WriteFile(path, []byte("machines: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPresets(path); ftag.Get(err) != InvalidConfig {
		t.Fatalf("expected invalid config, got %v", err)
	}
}
