package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

func handleKeyActions(msg tea.KeyMsg, m model) (tea.Model, tea.Cmd) {
	if m.fileList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.fileList, cmd = m.fileList.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "t":
		m.showTrend = !m.showTrend
		return m, nil
	}

	if !m.showDetails {
		if msg.String() == "enter" {
			return openDetails(m), nil
		}
		var cmd tea.Cmd
		m.fileList, cmd = m.fileList.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "esc", "backspace":
		m.showDetails = false
		m.selectedFunc = 0
		return m, nil
	case "j", "down":
		if m.selectedFunc < len(m.selected.section.Functions)-1 {
			m.selectedFunc++
		}
		return m, nil
	case "k", "up":
		if m.selectedFunc > 0 {
			m.selectedFunc--
		}
		return m, nil
	case "o":
		target, ok := selectedSourceTarget(m)
		if !ok {
			m.jumpStatus = statusStyle.Render("No source target available.")
			return m, nil
		}
		return m, jumpToSourceCmd(target)
	}
	return m, nil
}

func openDetails(m model) model {
	idx := m.fileList.GlobalIndex()
	if idx < 0 || idx >= len(m.files) {
		return m
	}
	m.selected = m.files[idx]
	m.showDetails = true
	m.selectedFunc = 0
	return m
}

// refreshDetails re-selects the open file after a rebuild. The detail pane
// closes when the file is no longer part of the run.
func refreshDetails(m model, phase int, path string) model {
	for _, entry := range m.files {
		if entry.phase == phase && entry.section.Path == path {
			m.selected = entry
			if m.selectedFunc >= len(entry.section.Functions) {
				m.selectedFunc = 0
			}
			return m
		}
	}
	m.showDetails = false
	m.selectedFunc = 0
	return m
}

type sourceTarget struct {
	file string
	line int
}

func selectedSourceTarget(m model) (sourceTarget, bool) {
	section := m.selected.section
	if !section.Found {
		return sourceTarget{}, false
	}
	file := section.Path
	if !filepath.IsAbs(file) && m.root != "" {
		file = filepath.Join(m.root, filepath.FromSlash(file))
	}
	line := 1
	if len(section.Functions) > 0 {
		idx := m.selectedFunc
		if idx < 0 {
			idx = 0
		}
		if idx >= len(section.Functions) {
			idx = len(section.Functions) - 1
		}
		if start := section.Functions[idx].StartLine; start > 0 {
			line = start
		}
	}
	return sourceTarget{file: file, line: line}, true
}

func jumpToSourceCmd(target sourceTarget) tea.Cmd {
	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	args := []string{target.file}
	if strings.Contains(editor, "vim") || strings.Contains(editor, "nvim") || strings.HasSuffix(editor, "/vi") || editor == "vi" {
		args = []string{fmt.Sprintf("+%d", target.line), target.file}
	}
	cmd := exec.Command(editor, args...)
	label := fmt.Sprintf("%s:%d", target.file, target.line)
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return sourceJumpResultMsg{target: label, err: err}
	})
}
