package cli

import (
	"fmt"
	"time"

	"logicdoc/internal/data/history"
	"logicdoc/internal/ui/report"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var docStyle = lipgloss.NewStyle().Margin(1, 2)

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

// fileEntry is one file section flattened out of its phase.
type fileEntry struct {
	phase   int
	heading string
	section report.FileSection
}

type model struct {
	fileList    list.Model
	root        string
	trendReport *history.TrendReport
	showTrend   bool
	files       []fileEntry
	runID       string
	lastUpdate  time.Time
	documented  int
	missing     int
	warnings    []string

	showDetails  bool
	selected     fileEntry
	selectedFunc int
	jumpStatus   string
}

type updateMsg struct {
	doc        report.Document
	documented int
	missing    int
	warnings   []string
}

type sourceJumpResultMsg struct {
	target string
	err    error
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return handleKeyActions(msg, m)
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		width := msg.Width - h
		height := msg.Height - v - 8
		if height < 5 {
			height = 5
		}
		m.fileList.SetSize(width, height)
	case updateMsg:
		m = m.applyUpdate(msg)
	case sourceJumpResultMsg:
		if msg.err != nil {
			m.jumpStatus = statusStyle.Render(fmt.Sprintf("Source jump failed: %v", msg.err))
		} else {
			m.jumpStatus = statusStyle.Render(fmt.Sprintf("Opened source: %s", msg.target))
		}
	}

	var cmd tea.Cmd
	m.fileList, cmd = m.fileList.Update(msg)
	return m, cmd
}

func (m model) applyUpdate(msg updateMsg) model {
	m.runID = msg.doc.RunID
	m.lastUpdate = msg.doc.GeneratedAt
	if m.lastUpdate.IsZero() {
		m.lastUpdate = time.Now()
	}
	if msg.doc.ProjectRoot != "" {
		m.root = msg.doc.ProjectRoot
	}
	m.documented = msg.documented
	m.missing = msg.missing
	m.warnings = msg.warnings

	files := make([]fileEntry, 0, len(m.files))
	items := make([]list.Item, 0, len(m.files))
	for _, phase := range msg.doc.Phases {
		for _, section := range phase.Files {
			entry := fileEntry{phase: phase.Number, heading: phase.Heading(), section: section}
			files = append(files, entry)
			items = append(items, item{title: section.Path, desc: describeFile(entry)})
		}
	}
	m.files = files
	m.fileList.SetItems(items)

	if m.showDetails {
		m = refreshDetails(m, m.selected.phase, m.selected.section.Path)
	}
	return m
}

func describeFile(entry fileEntry) string {
	s := entry.section
	if !s.Found {
		return fmt.Sprintf("Phase %d | not found", entry.phase)
	}
	desc := fmt.Sprintf("Phase %d | %d functions", entry.phase, len(s.Functions))
	if s.Domain != "" {
		desc += " | " + s.Domain
	}
	if s.MarkerAdded {
		desc += " | marker added"
	}
	return desc
}

func (m model) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last run: %s | %s | %d files",
		m.lastUpdate.Format("15:04:05"), m.runID, len(m.files)))

	summary := successStyle.Render(fmt.Sprintf("%d documented", m.documented))
	if m.missing > 0 {
		summary += " | " + missingStyle.Render(fmt.Sprintf("%d missing", m.missing))
	}
	if len(m.warnings) > 0 {
		summary += " | " + warningStyle.Render(fmt.Sprintf("%d warnings", len(m.warnings)))
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle.MarginLeft(2).Render("Logic Documentation"), status, summary)
	help := renderHelp(m)

	body := m.fileList.View()
	if m.showDetails {
		body = renderDetails(m)
	}
	if m.showTrend {
		body += "\n\n" + renderTrendOverlay(m.trendReport)
	}
	if m.jumpStatus != "" {
		body += "\n\n" + m.jumpStatus
	}

	return docStyle.Render(header + "\n" + help + "\n\n" + body)
}

func initialModel(root string, trendReport *history.TrendReport) model {
	fileList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	fileList.Title = "Documented Files"
	fileList.SetShowStatusBar(false)
	fileList.SetFilteringEnabled(true)

	return model{
		fileList:    fileList,
		root:        root,
		trendReport: trendReport,
		lastUpdate:  time.Now(),
	}
}
