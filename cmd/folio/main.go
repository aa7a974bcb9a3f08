package main

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"folio/internal/bootstrap"
	"folio/internal/platform/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "folio",
		Short:         "Terminal document reader with reading-session tracking",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file path")

	root.AddCommand(newReadCmd(&configPath))
	root.AddCommand(newExportCmd(&configPath))
	root.AddCommand(newInfoCmd(&configPath))
	root.AddCommand(newStatsCmd(&configPath))
	return root
}

func loadApp(configPath string) (*bootstrap.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg)
}

func newReadCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "read <path>",
		Short: "Open a document in the interactive reader",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			app, err := loadApp(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			return bootstrap.RunTUI(app, args[0])
		},
	}
}

func newExportCmd(configPath *string) *cobra.Command {
	var page int
	var scale float64
	var outPath string

	export := &cobra.Command{
		Use:   "export <path>",
		Short: "Render one page to a PNG file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			viewer, err := app.OpenViewer(args[0], false)
			if err != nil {
				return err
			}
			defer viewer.Close()

			out, err := viewer.CLI.ExportPage(context.Background(), page, scale)
			if err != nil {
				return err
			}

			if outPath == "" {
				base := filepath.Base(args[0])
				outPath = fmt.Sprintf("%s-p%d.png", base[:len(base)-len(filepath.Ext(base))], page)
			}
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("create %s: %w", outPath, err)
			}
			defer func() { _ = f.Close() }()
			if err := png.Encode(f, out.Image); err != nil {
				return fmt.Errorf("encode png: %w", err)
			}
			bounds := out.Image.Bounds()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported page %d (%dx%d) to %s\n", page, bounds.Dx(), bounds.Dy(), outPath)
			return nil
		},
	}
	export.Flags().IntVar(&page, "page", 1, "page to export (1-based)")
	export.Flags().Float64Var(&scale, "scale", 1.0, "render scale factor")
	export.Flags().StringVar(&outPath, "out", "", "output file (default <name>-p<page>.png)")
	return export
}

func newInfoCmd(configPath *string) *cobra.Command {
	var page int

	info := &cobra.Command{
		Use:   "info <path>",
		Short: "Show document page count and page geometry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			viewer, err := app.OpenViewer(args[0], false)
			if err != nil {
				return err
			}
			defer viewer.Close()

			ctx := context.Background()
			state := viewer.CLI.State(ctx)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "pages: %d\n", state.PageCount)

			if page > 0 {
				geom, err := viewer.CLI.PageGeometry(ctx, page)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "page %d: %dx%d\n", geom.PageIndex, geom.Width, geom.Height)
			}
			return nil
		},
	}
	info.Flags().IntVar(&page, "page", 0, "show geometry for this page")
	return info
}

func newStatsCmd(configPath *string) *cobra.Command {
	var limit int

	stats := &cobra.Command{
		Use:   "stats <path>",
		Short: "Show reading history for a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			abs, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			out, err := app.SessionCLI.History(context.Background(), abs, limit)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(out.Sessions) == 0 {
				_, _ = fmt.Fprintln(w, "no sessions recorded")
				return nil
			}
			_, _ = fmt.Fprintln(w, "recent sessions:")
			for _, s := range out.Sessions {
				_, _ = fmt.Fprintf(w, "  %s  %s  %s\n",
					s.StartedAt.Format("2006-01-02 15:04"),
					(time.Duration(s.DurationMs) * time.Millisecond).Round(time.Second),
					s.SessionID,
				)
			}
			_, _ = fmt.Fprintln(w, "time per page:")
			for _, p := range out.Totals {
				_, _ = fmt.Fprintf(w, "  page %-4d %s\n", p.PageIndex,
					(time.Duration(p.DurationMs) * time.Millisecond).Round(time.Second))
			}
			return nil
		},
	}
	stats.Flags().IntVar(&limit, "limit", 10, "max sessions to list")
	return stats
}
