package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/msmview/internal/datasource"
	"github.com/vanderheijden86/msmview/pkg/dashboard"
	"github.com/vanderheijden86/msmview/pkg/model"
	"github.com/vanderheijden86/msmview/pkg/render"
	"github.com/vanderheijden86/msmview/pkg/watcher"
)

// ErrNoOutput is returned when export has no output path and cannot ask.
var ErrNoOutput = errors.New("no output path (use -o)")

type exportFlags struct {
	output  string
	format  string
	process int
	cluster int
	width   int
	height  int
	watch   bool
}

func (a *app) newExportCmd() *cobra.Command {
	var f exportFlags
	cmd := &cobra.Command{
		Use:   "export [dataset]",
		Short: "Write a static PNG or SVG snapshot",
		Long: `Render the dashboard to an image file.

--process and --cluster pre-select items the same way picking them would.
With --watch the snapshot is written again whenever the dataset changes.
Without -o on a terminal, msmview asks for the path and format.`,
		Example: `  msmview export -o villin.png ./villin
  msmview export -o villin.svg --process 2 --cluster 5 ./villin`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExport(cmd, firstArg(args), f)
		},
	}
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (.png or .svg)")
	cmd.Flags().StringVar(&f.format, "format", "", "png or svg (default from the extension, then config)")
	cmd.Flags().IntVarP(&f.process, "process", "p", 0, "pre-select process 1-7")
	cmd.Flags().IntVarP(&f.cluster, "cluster", "k", 0, "pre-select cluster 1-8")
	cmd.Flags().IntVar(&f.width, "width", 0, "image width in pixels (default from config)")
	cmd.Flags().IntVar(&f.height, "height", 0, "image height in pixels (default from config)")
	cmd.Flags().BoolVarP(&f.watch, "watch", "w", false, "re-export when the dataset changes")
	return cmd
}

func (a *app) runExport(cmd *cobra.Command, arg string, f exportFlags) error {
	defer a.printTimings(cmd)

	if f.output == "" {
		if !isTerminal() {
			return ErrNoOutput
		}
		if err := askExportTarget(&f); err != nil {
			return err
		}
	}
	if filepath.Ext(f.output) == "" {
		if f.format == "" {
			f.format = a.cfg.Export.Format
		}
		if f.format == "" {
			f.format = render.FormatPNG
		}
		f.output += "." + strings.ToLower(f.format)
	}

	ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ds, src, err := a.load(ctx, arg)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if err := a.exportOnce(out, ds, f); err != nil {
		return err
	}
	if !f.watch {
		return nil
	}
	return a.watchExport(ctx, out, src, f)
}

func (a *app) exportOnce(out io.Writer, ds *model.Dataset, f exportFlags) error {
	opts := dashboard.OptionsFromConfig(a.cfg)
	if f.width > 0 {
		opts.Width = f.width
	}
	if f.height > 0 {
		opts.Height = f.height
	}
	if a.verbose {
		opts.Logger = log.New(os.Stderr, "msmview: ", 0)
	}
	d, err := dashboard.Build(ds, opts)
	if err != nil {
		return fmt.Errorf("build dashboard: %w", err)
	}
	if err := d.Select(f.process, f.cluster); err != nil {
		return err
	}
	path, err := render.SaveSnapshot(d.Figure, render.SnapshotOptions{Path: f.output, Format: f.format})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %s (%s)\n", path, d.ViewState().Summary())
	return nil
}

// watchExport re-exports on every dataset change until ctx is done. Load
// errors are reported and the previous snapshot is left in place.
func (a *app) watchExport(ctx context.Context, out io.Writer, src datasource.DataSource, f exportFlags) error {
	w, err := watcher.NewWatcher(src.Path,
		watcher.WithOnError(func(err error) {
			fmt.Fprintf(out, "Watch error: %v\n", err)
		}),
	)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", src.Path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.Changed():
		}
		ds, err := datasource.LoadFromSource(ctx, src, a.loaderOptions())
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintf(out, "Reload failed: %v\n", err)
			continue
		}
		if err := a.exportOnce(out, ds, f); err != nil {
			fmt.Fprintf(out, "Export failed: %v\n", err)
		}
	}
}

func askExportTarget(f *exportFlags) error {
	f.output = "msmview"
	format := render.FormatPNG
	form := newForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Output file").
				Value(&f.output).
				Placeholder("msmview").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return ErrNoOutput
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Format").
				Options(
					huh.NewOption("PNG (raster)", render.FormatPNG),
					huh.NewOption("SVG (vector)", render.FormatSVG),
				).
				Value(&format),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	f.output = withFormatExt(strings.TrimSpace(f.output), format)
	f.format = format
	return nil
}

// withFormatExt gives path the extension of format. A missing, .png or .svg
// extension is replaced; any other extension is kept.
func withFormatExt(path, format string) string {
	ext := filepath.Ext(path)
	switch strings.ToLower(ext) {
	case "", "." + render.FormatPNG, "." + render.FormatSVG:
		return strings.TrimSuffix(path, ext) + "." + format
	}
	return path
}

func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
