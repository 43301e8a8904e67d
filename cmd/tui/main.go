// Command tui is an interactive front end for playing a preset: it shows
// the node graph, the live play state and the rendered waveform preview,
// and maps keys to trigger and release.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gridsound/audiograph/internal/app"
	"github.com/gridsound/audiograph/internal/graph"
	"github.com/gridsound/audiograph/internal/preset"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2).
			MarginTop(1)

	playingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FF00"))

	idleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	nodeBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(1, 2).
			MarginRight(2)

	waveBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FFFF00")).
			Padding(1, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type keyMap struct {
	Trigger key.Binding
	Release key.Binding
	NoteUp  key.Binding
	NoteDn  key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Trigger: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "trigger"),
	),
	Release: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "release"),
	),
	NoteUp: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("up/k", "note up"),
	),
	NoteDn: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("down/j", "note down"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Trigger, k.Release, k.NoteUp, k.NoteDn, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Trigger, k.Release},
		{k.NoteUp, k.NoteDn},
		{k.Quit},
	}
}

var noteNames = []string{"C2", "E2", "G2", "C3", "E3", "G3", "C4", "E4", "G4", "C5"}

type model struct {
	g       *graph.Graph
	cfg     *preset.GraphConfig
	keys    keyMap
	help    help.Model
	width   int
	playing bool
	noteIdx int
	wave    []float64
	message string
	msgErr  bool
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func initialModel(g *graph.Graph, cfg *preset.GraphConfig) model {
	return model{
		g:       g,
		cfg:     cfg,
		keys:    keys,
		help:    help.New(),
		noteIdx: 6, // C4
	}
}

func (m model) Init() tea.Cmd {
	return tickCmd()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case tickMsg:
		m.playing = m.g.IsPlaying()
		m.wave = m.g.WaveformData()
		return m, tickCmd()

	case tea.KeyMsg:
		ctx := context.Background()
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Trigger):
			if err := m.g.Trigger(ctx, noteNames[m.noteIdx]); err != nil {
				m.message = fmt.Sprintf("Trigger failed: %v", err)
				m.msgErr = true
			} else {
				m.message = fmt.Sprintf("Triggered %s", noteNames[m.noteIdx])
				m.msgErr = false
			}
			m.playing = m.g.IsPlaying()

		case key.Matches(msg, m.keys.Release):
			m.g.Release(ctx)
			m.playing = m.g.IsPlaying()
			m.message = "Released"
			m.msgErr = false

		case key.Matches(msg, m.keys.NoteUp):
			if m.noteIdx < len(noteNames)-1 {
				m.noteIdx++
			}

		case key.Matches(msg, m.keys.NoteDn):
			if m.noteIdx > 0 {
				m.noteIdx--
			}
		}
	}

	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("audiograph :: %s", m.cfg.Name)))
	b.WriteString("\n\n")

	state := idleStyle.Render("◼ idle")
	if m.playing {
		state = playingStyle.Render("▶ playing")
	}
	b.WriteString(fmt.Sprintf("  %s   note: %s\n\n", state, noteNames[m.noteIdx]))

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		nodeBoxStyle.Render(m.nodeListView()),
		waveBoxStyle.Render(m.waveView()),
	))
	b.WriteString("\n")

	if m.message != "" {
		line := m.message
		if m.msgErr {
			line = errorStyle.Render(line)
		}
		b.WriteString("  " + line + "\n")
	}

	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	b.WriteString("\n")
	return b.String()
}

func (m model) nodeListView() string {
	var b strings.Builder
	b.WriteString("Nodes\n")
	for _, inst := range m.g.Nodes() {
		marker := "·"
		if inst.Materialized() {
			marker = "●"
		}
		trigger := ""
		if inst.Trigger {
			trigger = " (trigger)"
		}
		fmt.Fprintf(&b, " %s %s: %s%s\n", marker, inst.ID, inst.Type, trigger)
	}
	fmt.Fprintf(&b, "\nconnections: %d", len(m.g.Connections()))
	return b.String()
}

// waveView renders the cached waveform preview as a sparkline.
func (m model) waveView() string {
	const width = 48
	levels := []rune("▁▂▃▄▅▆▇█")

	if len(m.wave) == 0 {
		return "Waveform\n\n  (trigger to render)"
	}

	var peak float64
	for _, s := range m.wave {
		if a := abs(s); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		peak = 1
	}

	var line strings.Builder
	for i := 0; i < width; i++ {
		s := abs(m.wave[i*len(m.wave)/width]) / peak
		idx := int(s * float64(len(levels)-1))
		line.WriteRune(levels[idx])
	}
	return "Waveform\n\n" + line.String()
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func main() {
	headless := flag.Bool("headless", false, "Run without opening a sound device.")
	logLevel := flag.String("log-level", "warn", "Logging level for the background runtime.")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: tui [options] PRESET_PATH")
		os.Exit(2)
	}

	appConfig, err := app.NewConfig(app.Config{
		PresetPath: flag.Arg(0),
		LogLevel:   *logLevel,
		Headless:   *headless,
	})
	if err != nil {
		log.Fatal(err)
	}

	// Keep runtime logs away from the alternate screen.
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "A critical startup error occurred: %v\n", r)
			os.Exit(1)
		}
	}()

	a := app.NewApp(io.Discard, appConfig, preset.NewLoader())
	ctx := context.Background()
	if err := a.Graph().Initialize(ctx, a.Preset()); err != nil {
		log.Fatal(err)
	}
	defer a.Close(ctx)

	p := tea.NewProgram(initialModel(a.Graph(), a.Preset()), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("TUI crashed: %v", err)
	}
}
