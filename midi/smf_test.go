package midi

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/Southclaws/fault/ftag"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func encode(t *testing.T, tracks ...smf.Track) []byte {
	t.Helper()
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)
	for _, tr := range tracks {
		tr.Close(0)
		if err := s.Add(tr); err != nil {
			t.Fatalf("add track: %v", err)
		}
	}
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		t.Fatalf("write smf: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeAbsoluteTimes(t *testing.T) {
	var conductor smf.Track
	conductor.Add(0, smf.MetaTempo(100))

	var melody smf.Track
	melody.Add(0, gomidi.NoteOn(2, 69, 100))
	melody.Add(480, gomidi.NoteOff(2, 69))
	melody.Add(240, gomidi.NoteOn(2, 72, 90))
	melody.Add(240, gomidi.NoteOff(2, 72))

	f, err := Decode(bytes.NewReader(encode(t, conductor, melody)))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if f.Division != 480 {
		t.Fatalf("division: got %d, want 480", f.Division)
	}
	if f.NumTracks() != 2 {
		t.Fatalf("tracks: got %d, want 2", f.NumTracks())
	}

	var tempo uint32
	for _, e := range f.Tracks[0].Events {
		if e.Kind == Tempo {
			tempo = e.Tempo
		}
	}
	if tempo != 600000 {
		t.Fatalf("tempo: got %d, want 600000", tempo)
	}

	notes := f.Tracks[1].Events
	if len(notes) != 4 {
		t.Fatalf("melody events: got %d, want 4", len(notes))
	}
	wantTimes := []int64{0, 480, 720, 960}
	for i, e := range notes {
		if e.Absolute != wantTimes[i] {
			t.Errorf("event %d: time %d, want %d", i, e.Absolute, wantTimes[i])
		}
		if e.Channel != 2 {
			t.Errorf("event %d: channel %d, want 2", i, e.Channel)
		}
		if e.Track != 1 {
			t.Errorf("event %d: track %d, want 1", i, e.Track)
		}
	}
	if notes[0].Kind != NoteOn || notes[0].Note != 69 || notes[0].Velocity != 100 {
		t.Errorf("first event: got %+v", notes[0])
	}
	if notes[1].Kind != NoteOff || notes[1].Note != 69 {
		t.Errorf("second event: got %+v", notes[1])
	}
}

func TestDecodeZeroVelocityNoteOnKeepsPitch(t *testing.T) {
	var tr smf.Track
	tr.Add(0, gomidi.NoteOn(0, 64, 80))
	tr.Add(120, gomidi.NoteOn(0, 64, 0))

	f, err := Decode(bytes.NewReader(encode(t, tr)))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	events := f.Tracks[0].Events
	if len(events) != 2 {
		t.Fatalf("events: got %d, want 2", len(events))
	}
	release := events[1]
	if release.Note != 64 || release.Velocity != 0 {
		t.Fatalf("release: got %+v", release)
	}
	if release.Kind != NoteOn && release.Kind != NoteOff {
		t.Fatalf("release kind: got %v", release.Kind)
	}
}

func TestReadFileRejectsEmptyInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.mid")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	_, err := ReadFile(path)
	if err == nil {
		t.Fatal("expected error for empty file")
	}
	if got := ftag.Get(err); got != InvalidInput {
		t.Fatalf("tag: got %q, want %q", got, InvalidInput)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("definitely not a midi file")))
	if err == nil {
		t.Fatal("expected decode error")
	}
	if got := ftag.Get(err); got != InvalidInput {
		t.Fatalf("tag: got %q, want %q", got, InvalidInput)
	}
}
