package main

import (
	"fmt"
	"io"
	"math"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/msmview/internal/datasource"
	"github.com/vanderheijden86/msmview/pkg/figure"
	"github.com/vanderheijden86/msmview/pkg/model"
)

type clusterInfo struct {
	ID            int      `json:"id"`
	Marker        string   `json:"marker"`
	Color         string   `json:"color"`
	PresenceLevel float64  `json:"presence_level"`
	InnerLevel    *float64 `json:"inner_level,omitempty"`
}

type processInfo struct {
	ID      int     `json:"id"`
	Slowest float64 `json:"slowest_timescale"`
	Levels  int     `json:"levels"`
}

type datasetInfo struct {
	Name       string                `json:"name"`
	Source     datasource.DataSource `json:"source"`
	Rows       int                   `json:"rows"`
	Cols       int                   `json:"cols"`
	Extent     [4]float64            `json:"extent"`
	Lags       []float64             `json:"lags"`
	LagUnit    string                `json:"lag_unit,omitempty"`
	FreeEnergy [2]float64            `json:"free_energy_range"`
	Clusters   []clusterInfo         `json:"clusters"`
	Processes  []processInfo         `json:"processes"`
	Images     int                   `json:"images"`
}

func (a *app) newInfoCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "info [dataset]",
		Short: "Summarize a dataset",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.printTimings(cmd)
			ds, src, err := a.load(contextOf(cmd), firstArg(args))
			if err != nil {
				return err
			}
			info := describe(ds, src)
			if asJSON {
				data, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			printInfo(cmd.OutOrStdout(), info)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print machine-readable JSON")
	return cmd
}

func describe(ds *model.Dataset, src datasource.DataSource) datasetInfo {
	info := datasetInfo{
		Name:    ds.Name,
		Source:  src,
		Lags:    ds.Lags,
		LagUnit: ds.LagUnit,
		Images:  len(ds.Images),
	}
	info.Rows, info.Cols = ds.FreeEnergy.Dims()
	xmin, xmax, ymin, ymax := ds.FreeEnergy.Extent()
	info.Extent = [4]float64{xmin, xmax, ymin, ymax}
	if lo, hi, ok := ds.FreeEnergy.Range(); ok {
		info.FreeEnergy = [2]float64{lo, hi}
	}
	for _, c := range ds.Clusters {
		info.Clusters = append(info.Clusters, clusterInfo{
			ID:            c.ID,
			Marker:        c.Marker,
			Color:         figure.Hex(c.Color),
			PresenceLevel: c.PresenceLevel,
			InnerLevel:    c.InnerLevel,
		})
	}
	for _, p := range ds.Processes {
		slowest := 0.0
		for _, t := range p.Timescales {
			if !math.IsNaN(t) && t > slowest {
				slowest = t
			}
		}
		info.Processes = append(info.Processes, processInfo{
			ID:      p.ID,
			Slowest: slowest,
			Levels:  len(p.Levels),
		})
	}
	return info
}

func printInfo(w io.Writer, info datasetInfo) {
	fmt.Fprintf(w, "Dataset:    %s\n", info.Name)
	fmt.Fprintf(w, "Source:     %s (%s)\n", info.Source.Path, info.Source.Type)
	fmt.Fprintf(w, "Grid:       %d x %d, x %g..%g, y %g..%g\n",
		info.Rows, info.Cols, info.Extent[0], info.Extent[1], info.Extent[2], info.Extent[3])
	fmt.Fprintf(w, "Lags:       %d %s\n", len(info.Lags), info.LagUnit)
	fmt.Fprintf(w, "ΔG range:   %.3g..%.3g\n", info.FreeEnergy[0], info.FreeEnergy[1])
	fmt.Fprintf(w, "Images:     %d\n", info.Images)
	fmt.Fprintln(w, "\nClusters:")
	for _, c := range info.Clusters {
		fmt.Fprintf(w, "  %d  %-2s %s  presence %.3g\n", c.ID, c.Marker, c.Color, c.PresenceLevel)
	}
	fmt.Fprintln(w, "\nProcesses:")
	for _, p := range info.Processes {
		fmt.Fprintf(w, "  %d  slowest %.4g %s, %d levels\n", p.ID, p.Slowest, info.LagUnit, p.Levels)
	}
}
