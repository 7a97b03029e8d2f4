package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ncbrowse/internal/app"
	"ncbrowse/internal/chart"
	"ncbrowse/internal/config"
	"ncbrowse/internal/log"
	"ncbrowse/internal/tree"
	"ncbrowse/internal/tui"
)

// Cfg holds the flags, environment and config file values.
var Cfg *viper.Viper

var cfg config.Config

func init() {
	Cfg = config.New()
	if err := config.BindFlags(Root.PersistentFlags(), Cfg); err != nil {
		panic(err)
	}
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "output file; the extension selects html, png, jpg or svg")
	exportCmd.Flags().StringVarP(&exportType, "type", "t", "auto", "plot type: auto, timeseries, profile, geomap, heatmap, animated or line")
	exportCmd.Flags().IntVar(&exportFrame, "frame", 0, "frame of an animated plot to draw in image formats")
	if err := exportCmd.MarkFlagRequired("output"); err != nil {
		panic(err)
	}
	Root.AddCommand(infoCmd, exportCmd)
}

// setConfig resolves the configuration and starts logging.
func setConfig() error {
	var err error
	cfg, err = config.Load(Cfg)
	if err != nil {
		return err
	}
	path := cfg.LogFile
	if path == "" {
		path = log.DefaultPath(filepath.Join(config.DataDir(), "logs"))
	}
	return log.Init(cfg.Debug, path)
}

// Root is the main command: it opens the terminal browser.
var Root = &cobra.Command{
	Use:   "ncbrowse [files...]",
	Short: "Browse and plot NetCDF files in the terminal.",
	Long: `ncbrowse opens NetCDF files, shows their dimensions, variables and
attributes, and plots variables as time series, profiles, maps, heatmaps or
animations. Plots can be exported to HTML, PNG, JPEG or SVG.`,
	Args:              cobra.ArbitraryArgs,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
	PersistentPostRun: func(*cobra.Command, []string) { log.Sync() },
	RunE: func(cmd *cobra.Command, args []string) error {
		a := app.New(cfg, log.GetSugaredLogger())
		final, err := tea.NewProgram(tui.New(a, args...), tea.WithAltScreen()).Run()
		var w, h int
		if m, ok := final.(tui.Model); ok {
			w, h = m.Size()
		}
		return errors.Join(err, a.Shutdown(w, h))
	},
}

var infoCmd = &cobra.Command{
	Use:   "info FILE",
	Short: "Print the structure of a NetCDF file.",
	Long: `info prints the dimensions, coordinates, data variables and attributes
of FILE, followed by the plot type each data variable would get.`,
	Args:              cobra.ExactArgs(1),
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := app.New(cfg, log.GetSugaredLogger())
		defer a.Shutdown(0, 0)
		ds, err := a.Datasets.Open(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprint(out, tree.Render(tree.Build(ds)))
		fmt.Fprintln(out, "\nPlots")
		for _, v := range ds.DataVars {
			kind := chart.Infer(v.Dims).String()
			fmt.Fprintf(out, "  %-20s %-10s %s values\n", v.Name, kind, humanize.Comma(int64(v.Size())))
		}
		return nil
	},
}

var (
	exportOut   string
	exportType  string
	exportFrame int
)

var exportCmd = &cobra.Command{
	Use:   "export FILE VARIABLE",
	Short: "Render a plot without opening the browser.",
	Long: `export builds the plot of VARIABLE in FILE with the saved plot options
and writes it to the --output file. HTML output carries every frame of an
animated plot with a slider; image formats draw the --frame slice.`,
	Args:              cobra.ExactArgs(2),
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		arch, err := chart.ParseArchetype(exportType)
		if err != nil {
			return err
		}
		a := app.New(cfg, log.GetSugaredLogger())
		defer a.Shutdown(0, 0)
		f, err := a.Export(args[0], args[1], arch, exportFrame, exportOut)
		if err != nil {
			return err
		}
		for _, w := range f.Warnings {
			fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
		}
		size := "?"
		if fi, err := os.Stat(exportOut); err == nil {
			size = humanize.Bytes(uint64(fi.Size()))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s, %s)\n", exportOut, f.Archetype, size)
		return nil
	},
}
