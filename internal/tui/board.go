package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"xpeak/internal/engine"
)

func RunBoard(ctx context.Context, store *engine.Store, out io.Writer) error {
	m := newBoardModel(ctx, store)
	p := tea.NewProgram(m, tea.WithOutput(out), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
