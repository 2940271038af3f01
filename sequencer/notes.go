package sequencer

import (
	"slices"

	"github.com/charmbracelet/log"

	"go-midicnc/midi"
)

// NoteSet holds the pitches that are currently sounding.
// Duplicate note-ons and stray note-offs are common in real files, so they
// are logged and otherwise ignored.
type NoteSet struct {
	notes  map[uint8]struct{}
	logger *log.Logger
}

// NewNoteSet creates an empty set that reports anomalies to logger
func NewNoteSet(logger *log.Logger) *NoteSet {
	return &NoteSet{
		notes:  make(map[uint8]struct{}),
		logger: logger,
	}
}

// On marks pitch as sounding. Returns false if it already was.
func (s *NoteSet) On(pitch uint8) bool {
	if _, ok := s.notes[pitch]; ok {
		s.logger.Warn("tried to turn on note already on", "note", pitch, "name", midi.NoteName(pitch))
		return false
	}
	s.notes[pitch] = struct{}{}
	return true
}

// Off releases pitch. Returns false if it was not sounding.
func (s *NoteSet) Off(pitch uint8) bool {
	if _, ok := s.notes[pitch]; !ok {
		s.logger.Warn("tried to turn off note that wasn't on", "note", pitch, "name", midi.NoteName(pitch))
		return false
	}
	delete(s.notes, pitch)
	return true
}

// Has reports whether pitch is sounding
func (s *NoteSet) Has(pitch uint8) bool {
	_, ok := s.notes[pitch]
	return ok
}

// Len returns the number of sounding pitches
func (s *NoteSet) Len() int {
	return len(s.notes)
}

// Descending returns a snapshot of sounding pitches, highest first
func (s *NoteSet) Descending() []uint8 {
	out := make([]uint8, 0, len(s.notes))
	for p := range s.notes {
		out = append(out, p)
	}
	slices.Sort(out)
	slices.Reverse(out)
	return out
}

// Highest returns the highest sounding pitch
func (s *NoteSet) Highest() (uint8, bool) {
	if len(s.notes) == 0 {
		return 0, false
	}
	return s.Descending()[0], true
}
