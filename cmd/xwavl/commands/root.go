package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/benz9527/xwavl/internal/bench"
)

const configFlag = "config"

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "xwavl",
		Short: "WAVL tree and d-ary heap experiments",
		Long: `xwavl measures the rebalancing cost of WAVL trees and the comparison
cost of d-ary heaps.

Commands:
  bench wavl    Insert then remove n keys, report the rebalancing steps
  bench dheap   Heap sort and decrease priority, report the comparisons`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String(configFlag, "", "yaml config file (default .xwavl.yaml in . or $HOME)")
	bench.RegisterGlobalFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(NewBenchCommand())
	rootCmd.AddCommand(versionCmd(version))
	return rootCmd
}

func versionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "xwavl %s\n", version)
		},
	}
}
