package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/AssQ222/PDRPG/internal/engine"
)

// RunBoard shows the dashboard until the user quits.
func RunBoard(ctx context.Context, svc *engine.Service, in io.Reader, out io.Writer) error {
	m := newBoardModel(ctx, svc)
	opts := []tea.ProgramOption{tea.WithOutput(out), tea.WithContext(ctx)}
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	_, err := tea.NewProgram(m, opts...).Run()
	return err
}
