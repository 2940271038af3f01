package preview

import (
	"io"
	"math"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"

	"go-midicnc/sequencer"
)

// Options controls the rendered audio
type Options struct {
	SampleRate int
	Volume     float64 // 0-1
}

// DefaultOptions renders mono-in-stereo 22.05 kHz at a comfortable level
func DefaultOptions() Options {
	return Options{SampleRate: 22050, Volume: 0.25}
}

// rampSamples smooths block edges so consecutive tones don't click
const rampSamples = 64

// Render writes a WAV approximating what the machine will sound like: each
// block becomes a square wave at its driving note's frequency, and the gaps
// between blocks (rests) become silence.
func Render(w io.WriteSeeker, tl *sequencer.Timeline, blocks []sequencer.Block, opts Options) error {
	if opts.SampleRate <= 0 {
		opts.SampleRate = DefaultOptions().SampleRate
	}
	format := beep.Format{
		SampleRate:  beep.SampleRate(opts.SampleRate),
		NumChannels: 2,
		Precision:   2,
	}

	var parts []beep.Streamer
	cursor := 0
	for _, b := range blocks {
		start := sampleAt(tl, b.Start, opts.SampleRate)
		end := sampleAt(tl, b.Time, opts.SampleRate)
		if start > cursor {
			parts = append(parts, beep.Silence(start-cursor))
			cursor = start
		}
		if end > cursor {
			parts = append(parts, &tone{
				freq:   b.Frequency,
				rate:   float64(opts.SampleRate),
				length: end - cursor,
				volume: opts.Volume,
			})
			cursor = end
		}
	}

	if err := wav.Encode(w, beep.Seq(parts...), format); err != nil {
		return fault.Wrap(err, fmsg.With("encode preview wav"))
	}
	return nil
}

func sampleAt(tl *sequencer.Timeline, tick int64, rate int) int {
	return int(math.Round(tl.Seconds(tick) * float64(rate)))
}

// tone is a finite square wave streamer
type tone struct {
	freq   float64
	rate   float64
	length int
	pos    int
	volume float64
}

func (t *tone) Stream(samples [][2]float64) (n int, ok bool) {
	if t.pos >= t.length {
		return 0, false
	}
	for i := range samples {
		if t.pos >= t.length {
			return i, true
		}
		phase := math.Mod(t.freq*float64(t.pos)/t.rate, 1.0)
		v := t.volume
		if phase >= 0.5 {
			v = -v
		}
		v *= t.ramp()
		samples[i][0], samples[i][1] = v, v
		t.pos++
	}
	return len(samples), true
}

func (t *tone) ramp() float64 {
	edge := min(t.pos, t.length-1-t.pos)
	if edge >= rampSamples {
		return 1
	}
	return float64(edge) / rampSamples
}

func (t *tone) Err() error {
	return nil
}
