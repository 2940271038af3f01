package main

import (
	"fmt"
	"os"

	"gitlab.com/gomidi/midi/v2/smf"

	"go-midicnc/config"
	"go-midicnc/debug"
	"go-midicnc/midi"
	"go-midicnc/sequencer"
)

func main() {
	if len(os.Args) < 3 {
		usage()
		return
	}

	path := os.Args[2]
	var err error
	switch os.Args[1] {
	case "raw":
		err = dumpRaw(path)
	case "events":
		err = dumpEvents(path)
	case "channels":
		err = dumpChannels(path)
	case "tempo":
		err = dumpTempo(path)
	default:
		usage()
		return
	}

	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("SMF Dump")
	fmt.Println("")
	fmt.Println("Usage: smfdump <command> <file.mid>")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  raw       - Every message as gomidi sees it")
	fmt.Println("  events    - Decoded events the converter uses")
	fmt.Println("  channels  - Channels used per track")
	fmt.Println("  tempo     - Tempo changes and the tempo a conversion would use")
}

func dumpRaw(path string) error {
	s, err := smf.ReadFile(path)
	if err != nil {
		return err
	}

	fmt.Printf("=== %s: format %d, %d tracks, %s ===\n", path, s.Format(), len(s.Tracks), s.TimeFormat)
	for i, tr := range s.Tracks {
		fmt.Printf("\n--- Track %d ---\n", i)
		var abs int64
		for _, ev := range tr {
			abs += int64(ev.Delta)
			fmt.Printf("  %8d  %s\n", abs, ev.Message)
		}
	}
	return nil
}

func dumpEvents(path string) error {
	f, err := midi.ReadFile(path)
	if err != nil {
		return err
	}

	for _, tr := range f.Tracks {
		fmt.Printf("--- Track %d ---\n", tr.Number)
		for _, e := range tr.Events {
			switch e.Kind {
			case midi.NoteOn, midi.NoteOff:
				fmt.Printf("  %8d  %-9s ch %2d  %-4s (%3d) vel %3d\n",
					e.Absolute, e.Kind, e.Channel, midi.NoteName(e.Note), e.Note, e.Velocity)
			case midi.Tempo:
				fmt.Printf("  %8d  %-9s %d us/quarter\n", e.Absolute, e.Kind, e.Tempo)
			default:
				fmt.Printf("  %8d  %-9s %q\n", e.Absolute, e.Kind, e.Text)
			}
		}
	}
	return nil
}

func dumpChannels(path string) error {
	f, err := midi.ReadFile(path)
	if err != nil {
		return err
	}

	tl := sequencer.BuildTimeline(f, config.AllChannels, debug.Discard())
	for _, tc := range tl.Channels.Tracks {
		fmt.Printf("Track %d: channels %v\n", tc.Track, tc.Channels)
	}
	fmt.Printf("All: %v\n", tl.Channels.All)
	fmt.Printf("%d note events\n", len(tl.Events))
	return nil
}

func dumpTempo(path string) error {
	f, err := midi.ReadFile(path)
	if err != nil {
		return err
	}

	for _, tr := range f.Tracks {
		for _, e := range tr.Events {
			if e.Kind == midi.Tempo {
				fmt.Printf("track %d tick %8d: %d us/quarter (%.2f bpm)\n",
					tr.Number, e.Absolute, e.Tempo, 60000000.0/float64(e.Tempo))
			}
		}
	}

	tl := sequencer.BuildTimeline(f, config.AllChannels, debug.Discard())
	fmt.Printf("Conversion tempo: %d us/quarter after %d changes, division %d\n",
		tl.Tempo, tl.TempoChanges, tl.Division)
	return nil
}
