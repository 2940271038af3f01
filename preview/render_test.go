package preview

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/faiface/beep/wav"

	"go-midicnc/sequencer"
)

func TestRenderLengthIncludesRests(t *testing.T) {
	tl := &sequencer.Timeline{Division: 480, Tempo: 500000}
	blocks := []sequencer.Block{
		{Start: 0, Time: 480, Frequency: 440},
		{Start: 960, Time: 1440, Frequency: 523.25},
	}

	path := filepath.Join(t.TempDir(), "preview.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := Render(f, tl, blocks, Options{SampleRate: 8000, Volume: 0.5}); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	in, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()

	stream, format, err := wav.Decode(in)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	defer stream.Close()

	if int(format.SampleRate) != 8000 || format.NumChannels != 2 {
		t.Fatalf("format: got %+v", format)
	}
	// 1.5 seconds: tone, rest, tone
	if got := stream.Len(); got != 12000 {
		t.Fatalf("samples: got %d, want 12000", got)
	}

	samples := make([][2]float64, 12000)
	n, _ := stream.Stream(samples)
	if n != 12000 {
		t.Fatalf("streamed %d samples", n)
	}
	if samples[6000] != [2]float64{0, 0} {
		t.Fatalf("rest should be silent, got %v", samples[6000])
	}
	// Level is checked on the streamer; the decoder rescales samples
	var sounding bool
	for _, s := range samples[:4000] {
		if s[0] != 0 {
			sounding = true
			break
		}
	}
	if !sounding {
		t.Fatal("first note is silent")
	}
}

func TestTonePeaksAtVolume(t *testing.T) {
	tn := &tone{freq: 440, rate: 8000, length: 4000, volume: 0.5}
	buf := make([][2]float64, 4000)
	if n, _ := tn.Stream(buf); n != 4000 {
		t.Fatalf("streamed %d samples", n)
	}
	var lo, hi float64
	for _, s := range buf {
		lo, hi = min(lo, s[0]), max(hi, s[0])
	}
	if hi != 0.5 || lo != -0.5 {
		t.Fatalf("range: got %v to %v, want -0.5 to 0.5", lo, hi)
	}
	if buf[0][0] != 0 || buf[3999][0] != 0 {
		t.Fatalf("edges should ramp from silence: %v %v", buf[0], buf[3999])
	}
}

func TestToneStreamsExactLength(t *testing.T) {
	tn := &tone{freq: 100, rate: 1000, length: 10, volume: 1}
	buf := make([][2]float64, 8)
	n, ok := tn.Stream(buf)
	if n != 8 || !ok {
		t.Fatalf("first: %d %v", n, ok)
	}
	n, ok = tn.Stream(buf)
	if n != 2 || !ok {
		t.Fatalf("second: %d %v", n, ok)
	}
	if n, ok = tn.Stream(buf); n != 0 || ok {
		t.Fatalf("drained: %d %v", n, ok)
	}
}
