package sequencer

import (
	"sort"

	"github.com/charmbracelet/log"

	"go-midicnc/config"
	"go-midicnc/midi"
)

// NoteEvent is one entry of the merged timeline. Channel and track identity
// are gone by this point.
type NoteEvent struct {
	Time     int64
	On       bool
	Pitch    uint8
	Velocity uint8
}

// TrackChannels lists the channels that contributed notes from one track
type TrackChannels struct {
	Track    int
	Channels []uint8
}

// ChannelReport is diagnostic only; nothing downstream reads it
type ChannelReport struct {
	Tracks []TrackChannels
	All    []uint8
}

// Timeline is the time-ordered note stream for a whole file
type Timeline struct {
	Events       []NoteEvent
	Division     uint16 // ticks per quarter note
	Tempo        uint32 // microseconds per quarter note, last value seen
	TempoChanges int
	Channels     ChannelReport
}

// BuildTimeline merges the notes of every track on an allowed channel into
// one sequence ordered by absolute time. Simultaneous events keep the order
// they were collected in (track order, then position within the track).
func BuildTimeline(f *midi.File, allow config.ChannelMask, logger *log.Logger) *Timeline {
	tl := &Timeline{
		Division: f.Division,
		Tempo:    midi.DefaultTempo,
	}

	var all [16]bool
	for _, track := range f.Tracks {
		var seen [16]bool
		for _, ev := range track.Events {
			switch ev.Kind {
			case midi.Tempo:
				tl.Tempo = ev.Tempo
				tl.TempoChanges++
				logger.Debug("tempo change", "tempo", ev.Tempo, "time", ev.Absolute)

			case midi.NoteOn, midi.NoteOff:
				if !allow.Has(ev.Channel) {
					continue
				}
				seen[ev.Channel] = true

				// Some files use "note on, velocity 0" as a note off
				on := ev.Kind == midi.NoteOn && ev.Velocity > 0
				tl.Events = append(tl.Events, NoteEvent{
					Time:     ev.Absolute,
					On:       on,
					Pitch:    ev.Note,
					Velocity: ev.Velocity,
				})
				msg := "note off"
				if on {
					msg = "note on"
				}
				logger.Debug(msg, "time", ev.Absolute, "channel", ev.Channel, "note", ev.Note, "velocity", ev.Velocity)

			case midi.TrackName, midi.CuePoint, midi.Lyric:
				logger.Debug(ev.Kind.String(), "track", track.Number, "text", ev.Text)

			default:
				// not relevant to motion
			}
		}

		if channels := channelList(seen); len(channels) > 0 {
			tl.Channels.Tracks = append(tl.Channels.Tracks, TrackChannels{Track: track.Number, Channels: channels})
			for _, ch := range channels {
				all[ch] = true
			}
		}
	}
	tl.Channels.All = channelList(all)

	sort.SliceStable(tl.Events, func(i, j int) bool {
		return tl.Events[i].Time < tl.Events[j].Time
	})

	return tl
}

func channelList(seen [16]bool) []uint8 {
	var out []uint8
	for ch, ok := range seen {
		if ok {
			out = append(out, uint8(ch))
		}
	}
	return out
}

// Seconds converts a tick span to seconds at the timeline's tempo
func (tl *Timeline) Seconds(ticks int64) float64 {
	return float64(ticks) / float64(tl.Division) * (float64(tl.Tempo) / 1000000.0)
}
