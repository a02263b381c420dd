package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/msmview/internal/datasource"
)

func (a *app) newBundleCmd() *cobra.Command {
	var noVerify bool
	cmd := &cobra.Command{
		Use:   "bundle <dataset-dir> <out.msm>",
		Short: "Pack a dataset directory into one SQLite file",
		Long: `Write every field, time scale and image of a dataset into a single
SQLite bundle that msmview can open like a directory. The bundle is read
back and compared with the source unless --no-verify is given.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.printTimings(cmd)
			ctx := contextOf(cmd)

			ds, src, err := a.load(ctx, args[0])
			if err != nil {
				return err
			}
			if err := datasource.WriteBundle(ctx, ds, args[1]); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if noVerify {
				fmt.Fprintf(out, "Wrote %s\n", args[1])
				return nil
			}

			dst, err := datasource.Discover(args[1])
			if err != nil {
				return err
			}
			diff, err := datasource.CompareSources(ctx, src, dst, datasource.DefaultDiffOptions())
			if err != nil {
				return err
			}
			if diff.HasInconsistencies() {
				return fmt.Errorf("bundle verification failed:\n%s", diff.Summary())
			}
			fmt.Fprintf(out, "Wrote %s (%s, verified)\n", dst.Path, formatBytes(dst.Size))
			return nil
		},
	}
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "skip reading the bundle back")
	return cmd
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%c", float64(n)/float64(div), "KMGTPE"[exp])
}
