package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// Run opens the live console and blocks until the user quits or ctx ends.
// Writes made from the console schedule a refresh, and the refresher polls
// while a session is open.
func Run(ctx context.Context, opts Options) error {
	sessions, stopSessions := opts.Session.Subscribe()
	defer stopSessions()
	snapshots, stopSnapshots := opts.Refresher.Subscribe()
	defer stopSnapshots()

	opts.Resources.OnWrite(func(context.Context, string) {
		opts.Refresher.Trigger()
	})
	if err := opts.Refresher.Restore(ctx); err != nil && opts.Logger != nil {
		opts.Logger.WarnContext(ctx, "restore cached collections failed", "error", err)
	}
	if opts.Session.State().Authenticated() {
		opts.Refresher.Start(ctx)
	}

	model := NewModel(ctx, opts, sessions, snapshots)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
