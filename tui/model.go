package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-midicnc/midi"
	"go-midicnc/sequencer"
	"go-midicnc/theme"
	"go-midicnc/widgets"
)

const gaugeWidth = 24

// Envelope is the safe range of the driven axis
type Envelope struct {
	Min, Max float64
}

// fraction places pos in the envelope, 0 at Min and 1 at Max
func (e Envelope) fraction(pos float64) float64 {
	if e.Max <= e.Min {
		return 0
	}
	return max(0, min(1, (pos-e.Min)/(e.Max-e.Min)))
}

// Model browses the blocks of a finished conversion
type Model struct {
	Title    string
	Blocks   []sequencer.Block
	Envelope Envelope
	Theme    *theme.Theme

	offset   int
	height   int
	help     bool
	quitting bool
}

var keys = []widgets.KeyBinding{
	{Key: "j/k", Desc: "scroll"},
	{Key: "space/b", Desc: "page"},
	{Key: "g/G", Desc: "top/bottom"},
	{Key: "?", Desc: "help"},
	{Key: "q", Desc: "quit"},
}

var helpSections = []widgets.KeySection{
	{Title: "Scroll", Keys: []widgets.KeyBinding{
		{Key: "j, down", Desc: "next block"},
		{Key: "k, up", Desc: "previous block"},
		{Key: "space, f", Desc: "next page"},
		{Key: "b, pgup", Desc: "previous page"},
		{Key: "g, home", Desc: "first block"},
		{Key: "G, end", Desc: "last block"},
	}},
	{Title: "Other", Keys: []widgets.KeyBinding{
		{Key: "?", Desc: "toggle this help"},
		{Key: "q, esc", Desc: "quit"},
	}},
}

func NewModel(title string, blocks []sequencer.Block, env Envelope, th *theme.Theme) Model {
	return Model{
		Title:    title,
		Blocks:   blocks,
		Envelope: env,
		Theme:    th,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Offset returns the index of the first visible block
func (m Model) Offset() int {
	return m.offset
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "?":
			m.help = !m.help
		case "j", "down":
			m.scroll(1)
		case "k", "up":
			m.scroll(-1)
		case " ", "pgdown", "f":
			m.scroll(m.pageSize())
		case "b", "pgup":
			m.scroll(-m.pageSize())
		case "g", "home":
			m.offset = 0
		case "G", "end":
			m.offset = m.maxOffset()
		}

	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.offset = min(m.offset, m.maxOffset())
	}

	return m, nil
}

func (m *Model) scroll(delta int) {
	m.offset = max(0, min(m.offset+delta, m.maxOffset()))
}

// pageSize is the number of block rows that fit under the header
func (m Model) pageSize() int {
	if m.height <= 0 {
		return 20
	}
	return max(1, m.height-5)
}

func (m Model) maxOffset() int {
	return max(0, len(m.Blocks)-m.pageSize())
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	th := m.Theme
	if m.help {
		return th.Title().Render("Keys") + "\n\n" + th.Value().Render(widgets.RenderKeyHelp(helpSections)) + "\n"
	}

	headerStyle := th.Title()
	dimStyle := th.Label()
	rowStyle := th.Value()
	bounceStyle := th.Alert()

	end := min(len(m.Blocks), m.offset+m.pageSize())
	header := headerStyle.Render(fmt.Sprintf("%s  blocks %d-%d of %d", m.Title, min(m.offset+1, end), end, len(m.Blocks)))
	columns := dimStyle.Render(fmt.Sprintf("%8s  %-4s %10s %9s %11s  %s", "tick", "note", "Hz", "rpm", "move", "envelope"))

	var out strings.Builder
	out.WriteString(header)
	out.WriteString("\n")
	out.WriteString(columns)
	out.WriteString("\n")

	for _, b := range m.Blocks[m.offset:end] {
		mark := widgets.DirectionMark(b.Direction, b.Reversed, th.Symbols)
		gauge := widgets.EnvelopeGauge(b.Position, m.Envelope.Min, m.Envelope.Max, gaugeWidth, th.Symbols)
		gaugeStyle := lipgloss.NewStyle().Foreground(th.Color(m.Envelope.fraction(b.Position)))
		line := fmt.Sprintf("%8d  %-4s %10.3f %9.1f %+11.5f  ",
			b.Time, midi.NoteName(b.Pitch), b.Frequency, b.RPM, b.Distance)
		tail := fmt.Sprintf(" %c %s", mark, b.Axis)
		if b.Reversed {
			out.WriteString(bounceStyle.Render(line) + gaugeStyle.Render(gauge) + bounceStyle.Render(tail))
		} else {
			out.WriteString(rowStyle.Render(line) + gaugeStyle.Render(gauge) + rowStyle.Render(tail))
		}
		out.WriteString("\n")
	}

	if len(m.Blocks) == 0 {
		out.WriteString(dimStyle.Render(string(th.Symbols.Rest) + " no blocks: the selected channels never sound"))
		out.WriteString("\n")
	}

	out.WriteString("\n")
	out.WriteString(widgets.RenderKeyLine(keys, dimStyle))

	return out.String()
}

// Run shows the inspector full screen until the user quits
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
