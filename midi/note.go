package midi

import (
	"math"
	"strconv"
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName returns the human-readable name of a MIDI pitch (60 = C4)
func NoteName(pitch uint8) string {
	octave := int(pitch)/12 - 1
	return noteNames[int(pitch)%12] + strconv.Itoa(octave)
}

// Frequency returns the equal-tempered frequency in Hz, with A4 (69) at 440 Hz
func Frequency(pitch uint8) float64 {
	return math.Pow(2.0, (float64(pitch)-69.0)/12.0) * 440.0
}
