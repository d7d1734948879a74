package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/AnatoleLucet/reactive"
	"github.com/AnatoleLucet/reactive/internal/scenario"
)

func runCmd() *cobra.Command {
	var metrics bool

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>...",
		Short: "Run scenarios and print their traces",
		Long: `Run each scenario in its own runtime and print its trace.

With --metrics, the runtime counters of every scenario are printed
after the traces in the Prometheus text format.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			reg := prometheus.NewRegistry()

			for i, path := range args {
				s, err := scenario.Load(path)
				if err != nil {
					return err
				}

				if len(args) > 1 {
					if i > 0 {
						fmt.Fprintln(out)
					}
					fmt.Fprintf(out, "=== %s\n", s.Name)
				}

				var opts []reactive.Option
				if metrics {
					opts = append(opts,
						reactive.WithMetrics(reg),
						reactive.WithConstLabels(prometheus.Labels{"scenario": s.Name}),
					)
				}

				if err := scenario.Run(s, out, opts...); err != nil {
					return fmt.Errorf("%s: %w", s.Name, err)
				}
			}

			if !metrics {
				return nil
			}

			families, err := reg.Gather()
			if err != nil {
				return fmt.Errorf("gather metrics: %w", err)
			}

			fmt.Fprintln(out)
			for _, mf := range families {
				if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
					return err
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&metrics, "metrics", "m", false, "Print runtime metrics after the traces")

	return cmd
}
