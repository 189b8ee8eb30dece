package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/chatfolders/internal/sweep"
	"github.com/nikbrunner/chatfolders/internal/tui"
)

// runTUI runs the folder panel. With a sidebar snapshot configured, chats
// that disappear from it are swept while the panel is open.
func runTUI(ctx context.Context, e *Env) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app := tui.NewApp(tui.AppParams{
		Organizer: e.Org,
		Context:   ctx,
		Logger:    e.Logger.WithPrefix("tui"),
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	if e.Snapshot != nil {
		sw := e.newSweeper(func(r sweep.Result) {
			if r.Removed > 0 {
				p.Send(tui.ReloadMsg{})
			}
		})
		defer sw.Stop()

		go func() {
			err := e.Snapshot.Watch(ctx, func(nurls []string) { sw.Report(nurls...) })
			if err != nil && ctx.Err() == nil {
				e.Logger.Error("sidebar watch stopped", "err", err)
			}
		}()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running panel: %w", err)
	}
	return nil
}

// newSweeper returns a sweeper removing chats through the organizer.
func (e *Env) newSweeper(onDone func(sweep.Result)) *sweep.Sweeper {
	return sweep.New(sweep.Params{
		Delay:  e.Config.Sweep.Delay,
		Apply:  e.Org.RemoveURLs,
		OnDone: onDone,
		Logger: e.Logger.WithPrefix("sweep"),
	})
}
