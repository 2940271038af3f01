package gcode

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"

	"go-midicnc/sequencer"
)

// StepVar is the machine variable holding the per-move multiplier, set by the
// user's prefix
const StepVar = 801

// TravelVar accumulates X travel across the whole program
const TravelVar = 802

// FormatBlock renders one per-note block. Every move is on X whatever the
// axis ordering. Every line is newline terminated.
func FormatBlock(rpm, distance, feed float64) string {
	return fmt.Sprintf("S%.10f;\n#%d= #%d + #%d * %.10f;\nX#%d F%.1f;\nG4 P25 (dwell);\n",
		rpm, TravelVar, TravelVar, StepVar, distance, TravelVar, feed)
}

// Writer streams a G-code program. It implements sequencer.Emitter.
type Writer struct {
	w      *bufio.Writer
	blocks int
}

// NewWriter wraps w; call Flush when done, including after errors
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Comment writes a "( text )" line
func (w *Writer) Comment(text string) error {
	_, err := fmt.Fprintf(w.w, "( %s )\n", text)
	return err
}

// Header names the input file, the only metadata we emit
func (w *Writer) Header(input string) error {
	return w.Comment("Input file was " + filepath.Base(input))
}

// Copy writes r through unmodified (prefix and postfix files)
func (w *Writer) Copy(r io.Reader) error {
	_, err := io.Copy(w.w, r)
	return err
}

// Emit writes the block for one generated move
func (w *Writer) Emit(b sequencer.Block) error {
	if _, err := w.w.WriteString(FormatBlock(b.RPM, b.Distance, b.Feed)); err != nil {
		return err
	}
	w.blocks++
	return nil
}

// Blocks returns how many blocks were written
func (w *Writer) Blocks() int {
	return w.blocks
}

// Flush pushes buffered output to the underlying writer
func (w *Writer) Flush() error {
	return w.w.Flush()
}
