package midi

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"gitlab.com/gomidi/midi/v2/smf"
)

// InvalidInput tags errors caused by an empty or undecodable MIDI source
const InvalidInput ftag.Kind = "invalid_input"

// ReadFile decodes the Standard MIDI File at path.
// An empty file is rejected before any decoding happens.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fault.Wrap(err,
			fmsg.WithDesc("read midi file", fmt.Sprintf("Cannot read input file %s.", path)),
			ftag.With(InvalidInput),
		)
	}
	if len(data) == 0 {
		base := filepath.Base(path)
		return nil, fault.New("empty midi file",
			fmsg.WithDesc("input file is empty", fmt.Sprintf("Input file %s is empty! Aborting.", base)),
			ftag.With(InvalidInput),
		)
	}
	return Decode(bytes.NewReader(data))
}

// Decode reads an SMF from r into a File with absolute event times
func Decode(r io.Reader) (*File, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fault.Wrap(err,
			fmsg.WithDesc("decode smf", "The input is not a valid Standard MIDI File."),
			ftag.With(InvalidInput),
		)
	}
	return FromSMF(s)
}

// FromSMF converts an already parsed gomidi SMF.
// Only metric (ticks per quarter note) time formats are supported.
func FromSMF(s *smf.SMF) (*File, error) {
	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok || ticks.Resolution() == 0 {
		return nil, fault.New("unsupported time format",
			fmsg.WithDesc("smf time format is not metric", "SMPTE timed MIDI files are not supported."),
			ftag.With(InvalidInput),
		)
	}

	f := &File{
		Format:   s.Format(),
		Division: ticks.Resolution(),
		Tracks:   make([]Track, 0, len(s.Tracks)),
	}

	for i, tr := range s.Tracks {
		track := Track{Number: i}
		var abs int64
		for _, ev := range tr {
			abs += int64(ev.Delta)
			e, ok := decodeMessage(ev.Message)
			if !ok {
				continue
			}
			e.Track = i
			e.Absolute = abs
			track.Events = append(track.Events, e)
		}
		f.Tracks = append(f.Tracks, track)
	}

	return f, nil
}

// decodeMessage maps the messages the converter cares about; everything else
// is reported as not ok and dropped.
func decodeMessage(msg smf.Message) (Event, bool) {
	var ch, key, vel uint8
	var bpm float64
	var text string

	switch {
	case msg.GetNoteOn(&ch, &key, &vel):
		return Event{Kind: NoteOn, Channel: ch, Note: key, Velocity: vel}, true
	case msg.GetNoteOff(&ch, &key, &vel):
		return Event{Kind: NoteOff, Channel: ch, Note: key, Velocity: vel}, true
	case msg.GetMetaTempo(&bpm):
		if bpm <= 0 {
			return Event{}, false
		}
		return Event{Kind: Tempo, Tempo: uint32(math.Round(60000000 / bpm))}, true
	case msg.GetMetaTrackName(&text):
		return Event{Kind: TrackName, Text: strings.TrimSpace(text)}, true
	case msg.GetMetaCuepoint(&text):
		return Event{Kind: CuePoint, Text: strings.TrimSpace(text)}, true
	case msg.GetMetaLyric(&text):
		return Event{Kind: Lyric, Text: strings.TrimSpace(text)}, true
	}

	return Event{}, false
}
