package commands

import (
	"github.com/spf13/cobra"

	"github.com/benz9527/xwavl/internal/bench"
)

func NewBenchCommand() *cobra.Command {
	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "Run an experiment and render its report",
	}
	bench.RegisterFlags(benchCmd.PersistentFlags())

	benchCmd.AddCommand(newBenchKindCommand(bench.WAVLBench,
		"Insert then remove n keys in a WAVL tree, report the rebalancing steps"))
	benchCmd.AddCommand(newBenchKindCommand(bench.DHeapBench,
		"Sort and decrease priorities by d-ary heaps, report the comparisons"))
	return benchCmd
}

func newBenchKindCommand(kind bench.Kind, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(kind),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, err := cmd.Flags().GetString(configFlag)
			if err != nil {
				return err
			}
			cfg, err := bench.LoadConfig(configPath, cmd.Flags())
			if err != nil {
				return err
			}
			return bench.Run(cmd.Context(), cfg, kind, cmd.OutOrStdout())
		},
	}
}
