package sequencer

import "go-midicnc/config"

// Block is one generated move: a spindle speed plus a relative travel on the
// driven axis, covering the time from the previous tick to Time.
type Block struct {
	Start     int64 // absolute tick where the block begins
	Time      int64 // absolute tick where the block ends
	Pitch     uint8
	Chord     int     // number of notes sounding, only Pitch is voiced
	Frequency float64 // Hz
	Duration  float64 // seconds
	Feed      float64 // units per minute
	Distance  float64 // signed relative travel
	RPM       float64
	Axis      config.Axis
	Position  float64 // axis position after the move
	Direction float64 // +1 or -1 after the move
	Reversed  bool    // direction flipped to stay inside the envelope
}

// Emitter receives blocks in timeline order
type Emitter interface {
	Emit(b Block) error
}

// Recorder keeps every block in memory
type Recorder struct {
	Blocks []Block
}

func (r *Recorder) Emit(b Block) error {
	r.Blocks = append(r.Blocks, b)
	return nil
}

// Tee fans each block out to several emitters, stopping at the first error
func Tee(emitters ...Emitter) Emitter {
	return teeEmitter(emitters)
}

type teeEmitter []Emitter

func (t teeEmitter) Emit(b Block) error {
	for _, e := range t {
		if err := e.Emit(b); err != nil {
			return err
		}
	}
	return nil
}
