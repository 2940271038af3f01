package widgets

import (
	"math"
	"strings"

	"go-midicnc/theme"
)

// EnvelopeGauge draws pos inside [min, max] as │──●───│, width cells wide
// including the edges. Positions outside the envelope pin to an edge.
func EnvelopeGauge(pos, min, max float64, width int, sym theme.Symbols) string {
	inner := width - 2
	if inner < 1 {
		inner = 1
	}

	head := 0
	if max > min {
		frac := (pos - min) / (max - min)
		head = int(math.Round(frac * float64(inner-1)))
	}
	head = clamp(head, 0, inner-1)

	var sb strings.Builder
	sb.WriteRune(sym.GaugeEdge)
	for i := 0; i < inner; i++ {
		if i == head {
			sb.WriteRune(sym.GaugeHead)
		} else {
			sb.WriteRune(sym.GaugeEmpty)
		}
	}
	sb.WriteRune(sym.GaugeEdge)
	return sb.String()
}

// DirectionMark picks the arrow for a block's travel direction
func DirectionMark(direction float64, reversed bool, sym theme.Symbols) rune {
	switch {
	case reversed:
		return sym.Bounce
	case direction < 0:
		return sym.Backward
	default:
		return sym.Forward
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
