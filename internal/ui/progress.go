// Package ui renders the live view of a batch run.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"annogen/internal/pipeline"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// row is the state of one stage of the run or one source file.
type row struct {
	label   string
	status  pipeline.Status
	stage   pipeline.Stage
	elapsed time.Duration
}

type batchModel struct {
	title   string
	events  <-chan pipeline.Event
	spinner spinner.Model
	bar     progress.Model
	stages  []row
	files   []row
	byFile  map[string]int
	failure string
	width   int
	done    bool
}

type eventMsg pipeline.Event
type closedMsg struct{}

// NewProgressModel returns a Bubble Tea model following the events of one
// batch run: a strip with the run's stages, one row per source and a bar that
// fills as stages and scans finish. It quits when events is closed.
func NewProgressModel(title string, files []string, events <-chan pipeline.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = activeStyle

	m := &batchModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(60)),
		byFile:  make(map[string]int, len(files)),
		width:   80,
	}
	for _, st := range pipeline.Stages {
		m.stages = append(m.stages, row{label: string(st), status: pipeline.StatusQueued, stage: st})
	}
	for i, f := range files {
		m.files = append(m.files, row{label: f, status: pipeline.StatusQueued})
		m.byFile[f] = i
	}
	return m
}

func (m *batchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *batchModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *batchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(pipeline.Event(msg)), m.next())
	case closedMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = max(msg.Width-4, 10)
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// apply folds one event into the rows and returns the bar animation.
func (m *batchModel) apply(ev pipeline.Event) tea.Cmd {
	if i, ok := m.byFile[ev.File]; ok {
		m.files[i].status = ev.Status
		m.files[i].stage = ev.Stage
		m.files[i].elapsed = ev.Elapsed
		if ev.Status == pipeline.StatusWorking {
			m.markStage(ev.Stage, pipeline.StatusWorking, 0)
		}
	} else {
		m.markStage(ev.Stage, ev.Status, ev.Elapsed)
	}
	if ev.Status == pipeline.StatusError && ev.Err != nil {
		m.failure = ev.Err.Error()
		m.markStage(ev.Stage, pipeline.StatusError, ev.Elapsed)
	}
	if ev.Status == pipeline.StatusSkipped && ev.Stage == pipeline.StageWrite {
		m.stages[len(m.stages)-1].label = "unchanged"
	}
	return m.bar.SetPercent(m.fraction())
}

func (m *batchModel) markStage(st pipeline.Stage, status pipeline.Status, elapsed time.Duration) {
	for i := range m.stages {
		if m.stages[i].stage != st {
			continue
		}
		if m.stages[i].status == pipeline.StatusError {
			return
		}
		m.stages[i].status = status
		if elapsed > 0 {
			m.stages[i].elapsed = elapsed
		}
		return
	}
}

// fraction weighs every stage equally. Load and scan have no run-level done
// event, so they count the share of files past them.
func (m *batchModel) fraction() float64 {
	total := 0.0
	for _, st := range m.stages {
		switch {
		case finished(st.status):
			total++
		case st.stage == pipeline.StageLoad || st.stage == pipeline.StageScan:
			total += m.filesPast(st.stage)
		}
	}
	return total / float64(len(m.stages))
}

func (m *batchModel) filesPast(st pipeline.Stage) float64 {
	if len(m.files) == 0 {
		return 0
	}
	n := 0
	for _, f := range m.files {
		past := f.stage == pipeline.StageScan && finished(f.status)
		if st == pipeline.StageLoad {
			past = past || f.stage == pipeline.StageScan || (f.stage == pipeline.StageLoad && finished(f.status))
		}
		if past {
			n++
		}
	}
	return float64(n) / float64(len(m.files))
}

func finished(s pipeline.Status) bool {
	return s == pipeline.StatusDone || s == pipeline.StatusSkipped
}

func (m *batchModel) View() string {
	var b strings.Builder
	head := m.spinner.View() + " " + m.title
	if m.done {
		head = "done: " + m.title
	}
	b.WriteString(titleStyle.Render(head))
	b.WriteString("\n")

	strip := make([]string, 0, len(m.stages))
	for _, st := range m.stages {
		strip = append(strip, paint(st.status).Render(st.label))
	}
	b.WriteString("  " + strings.Join(strip, " > ") + "\n\n")

	nameWidth := max(m.width-24, 16)
	for _, f := range m.files {
		status := fileStatus(f)
		line := fmt.Sprintf("  %-10s %s", status, truncate(f.label, nameWidth))
		if f.elapsed > 0 && finished(f.status) {
			line += pendingStyle.Render(" " + f.elapsed.Round(time.Millisecond).String())
		}
		b.WriteString(paint(f.status).Render(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done && m.failure == "" {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteString("\n")
	if m.failure != "" {
		b.WriteString(failStyle.Render("  " + truncate(m.failure, m.width-2)))
		b.WriteString("\n")
	}
	return b.String()
}

// fileStatus names what a source is doing: "loading", "scanning", "loaded",
// "scanned", "failed" or "queued".
func fileStatus(f row) string {
	switch f.status {
	case pipeline.StatusWorking:
		if f.stage == pipeline.StageLoad {
			return "loading"
		}
		return "scanning"
	case pipeline.StatusDone, pipeline.StatusSkipped:
		if f.stage == pipeline.StageLoad {
			return "loaded"
		}
		return "scanned"
	case pipeline.StatusError:
		return "failed"
	}
	return "queued"
}

func paint(s pipeline.Status) lipgloss.Style {
	switch s {
	case pipeline.StatusDone, pipeline.StatusSkipped:
		return okStyle
	case pipeline.StatusError:
		return failStyle
	case pipeline.StatusWorking:
		return activeStyle
	}
	return pendingStyle
}

// truncate shortens value to width terminal cells, keeping the end, which is
// the file name for a path.
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.TruncateLeft(value, runewidth.StringWidth(value)-width, "")
	}
	return runewidth.TruncateLeft(value, runewidth.StringWidth(value)-width+3, "...")
}
