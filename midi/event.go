package midi

// Kind identifies what a decoded event carries
type Kind uint8

const (
	Other Kind = iota
	NoteOn
	NoteOff
	Tempo
	TrackName
	CuePoint
	Lyric
)

func (k Kind) String() string {
	switch k {
	case NoteOn:
		return "note on"
	case NoteOff:
		return "note off"
	case Tempo:
		return "tempo"
	case TrackName:
		return "track name"
	case CuePoint:
		return "cue point"
	case Lyric:
		return "lyric"
	default:
		return "other"
	}
}

// DefaultTempo is the SMF default of 120 bpm, in microseconds per quarter note
const DefaultTempo uint32 = 500000

// Event is one decoded track event with its absolute time in ticks.
// Only the fields relevant to Kind are set.
type Event struct {
	Track    int
	Absolute int64
	Kind     Kind
	Channel  uint8  // NoteOn, NoteOff
	Note     uint8  // NoteOn, NoteOff
	Velocity uint8  // NoteOn, NoteOff
	Tempo    uint32 // Tempo: microseconds per quarter note
	Text     string // TrackName, CuePoint, Lyric
}

// Track is the event stream of one SMF track
type Track struct {
	Number int
	Events []Event
}

// File is a decoded Standard MIDI File
type File struct {
	Format   uint16
	Division uint16 // ticks per quarter note
	Tracks   []Track
}

// NumTracks returns the number of tracks in the file
func (f *File) NumTracks() int {
	return len(f.Tracks)
}
