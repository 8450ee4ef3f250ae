package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"echo-console/internal/config"
	"echo-console/internal/features"
)

// Run 在终端中启动交互界面，直到用户退出或 ctx 结束。
func Run(ctx context.Context, opts Options) error {
	if opts.Context == nil {
		opts.Context = ctx
	}
	cfg := opts.Config
	if cfg.LeaderKey == "" {
		cfg = config.Default()
		opts.Config = cfg
	}

	progOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if features.Enabled(cfg.Features, features.AltScreen) {
		progOpts = append(progOpts, tea.WithAltScreen())
	}
	if features.Enabled(cfg.Features, features.Mouse) {
		progOpts = append(progOpts, tea.WithMouseCellMotion())
	}

	p := tea.NewProgram(New(opts), progOpts...)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
