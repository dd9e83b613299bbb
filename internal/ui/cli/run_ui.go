package cli

import (
	"context"
	"errors"

	coreapp "logicdoc/internal/core/app"
	"logicdoc/internal/data/history"

	tea "github.com/charmbracelet/bubbletea"
)

func runUI(ctx context.Context, app *coreapp.App, report *history.TrendReport) error {
	m := initialModel(app.Paths.ProjectRoot, report)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	app.SetUpdateHandler(func(update coreapp.Update) {
		p.Send(newUpdateMsg(update))
	})
	defer app.SetUpdateHandler(nil)

	go func() {
		if update, ok := app.LastUpdate(); ok {
			p.Send(newUpdateMsg(update))
		}
	}()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func newUpdateMsg(update coreapp.Update) updateMsg {
	return updateMsg{
		doc:        update.Document,
		documented: update.Result.FilesDocumented,
		missing:    update.Result.FilesMissing,
		warnings:   update.Result.Warnings,
	}
}
