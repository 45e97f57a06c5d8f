package tui

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Veraticus/claimdesk/internal/engine"
	tea "github.com/charmbracelet/bubbletea"
)

// Run opens the claims browser on the session and blocks until the user quits
// or ctx is canceled.
func Run(ctx context.Context, session *engine.Session, opts ...Option) error {
	if session == nil {
		return fmt.Errorf("session is required")
	}

	// Best-effort terminal restore in case the program dies mid-frame.
	defer func() {
		_, _ = os.Stdout.Write([]byte("\033[?1049l")) // exit alternate screen
		_, _ = os.Stdout.Write([]byte("\033[?25h"))   // show cursor
		_, _ = os.Stdout.Write([]byte("\033[m"))      // reset colors
	}()

	m := NewModel(ctx, session, opts...)
	programOpts := []tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithAltScreen(),
	}
	if m.config.MouseSupport {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}

	if _, err := tea.NewProgram(m, programOpts...).Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
