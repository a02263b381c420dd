package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/msmview/internal/datasource"
	"github.com/vanderheijden86/msmview/pkg/dashboard"
	"github.com/vanderheijden86/msmview/pkg/debug"
	"github.com/vanderheijden86/msmview/pkg/model"
	"github.com/vanderheijden86/msmview/pkg/ui"
	"github.com/vanderheijden86/msmview/pkg/watcher"
)

// AutoCloseEnvVar quits the interactive view after the given number of
// milliseconds. Used by smoke tests.
const AutoCloseEnvVar = "MSMVIEW_TUI_AUTOCLOSE_MS"

type viewFlags struct {
	watch    bool
	noMouse  bool
	helpOnly bool
}

func (a *app) newViewCmd() *cobra.Command {
	var f viewFlags
	f.watch = true
	cmd := &cobra.Command{
		Use:   "view [dataset]",
		Short: "Open the interactive dashboard",
		Long: `Open the linked dashboard in the terminal.

Tab switches between processes and clusters, arrow keys move, enter picks.
Digits pick directly, mouse clicks pick what is under the pointer. Press ?
for the full key list.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runView(cmd, firstArg(args), f)
		},
	}
	cmd.Flags().BoolVar(&f.watch, "watch", true, "reload when the dataset changes on disk")
	cmd.Flags().BoolVar(&f.noMouse, "no-mouse", false, "disable mouse picking")
	cmd.Flags().BoolVar(&f.helpOnly, "help-screen", false, "start with the key help open")
	return cmd
}

func (a *app) runView(cmd *cobra.Command, arg string, f viewFlags) error {
	defer a.printTimings(cmd)

	ds, src, err := a.load(contextOf(cmd), arg)
	if err != nil {
		return err
	}

	cfg := a.cfg
	if f.noMouse {
		off := false
		cfg.UI.Mouse = &off
	}
	if f.helpOnly {
		cfg.UI.HelpOnly = true
	}

	buildOpts := dashboard.OptionsFromConfig(cfg)
	d, err := dashboard.Build(ds, buildOpts)
	if err != nil {
		return fmt.Errorf("build dashboard: %w", err)
	}

	var w *watcher.Watcher
	if f.watch {
		w = startWatcher(src.Path)
		if w != nil {
			defer w.Stop()
		}
	}

	theme := ui.DefaultTheme(lipgloss.DefaultRenderer())
	m := ui.NewModel(d, ui.Options{
		Source:  src.Path,
		Config:  cfg,
		Build:   buildOpts,
		Watcher: w,
		Load: func(ctx context.Context) (*model.Dataset, error) {
			return datasource.LoadFromSource(ctx, src, a.loaderOptions())
		},
		Theme: &theme,
	})

	if err := runTUIProgram(m, cfg.UI.MouseEnabled()); err != nil {
		return fmt.Errorf("running msmview: %w", err)
	}
	return nil
}

// startWatcher watches path for changes. Failures only disable live reload.
func startWatcher(path string) *watcher.Watcher {
	w, err := watcher.NewWatcher(path,
		watcher.WithOnError(func(err error) {
			debug.Log("watcher: %v", err)
		}),
	)
	if err != nil {
		debug.Log("live reload disabled: %v", err)
		return nil
	}
	if err := w.Start(); err != nil {
		debug.Log("live reload disabled: %v", err)
		return nil
	}
	return w
}

func runTUIProgram(m ui.Model, mouse bool) error {
	opts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	}
	if mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(m, opts...)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	if v := os.Getenv(AutoCloseEnvVar); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	_, err := p.Run()
	if err != nil && (errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted)) {
		return nil
	}
	return err
}
