package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Barlow1/hoots-sub000/internal/common/config"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect worker configuration",
	}

	var path string
	check := &cobra.Command{
		Use:   "check",
		Short: "Load and validate a worker config file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				cfg *config.Config
				err error
			)
			if path != "" {
				cfg, err = config.LoadFromFile(path)
			} else {
				cfg, err = config.Load()
			}
			if err != nil {
				return err
			}
			root.logger.Debug("config loaded", zap.String("app", cfg.App.Name), zap.Int("workers", len(cfg.Workers)))

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config OK: %s (%s)\n", cfg.App.Name, cfg.App.Environment)

			p := cfg.Matching.Policy()
			fmt.Fprintf(out, "matching: cost ±%g, experience ±%g, premium ≥%g\n",
				p.CostTolerance, p.ExperienceTolerance, p.PremiumCostThreshold)

			taskTypes := make([]string, 0, len(cfg.Workers))
			for taskType := range cfg.Workers {
				taskTypes = append(taskTypes, taskType)
			}
			sort.Strings(taskTypes)
			for _, taskType := range taskTypes {
				w := config.GetWorkerConfig(cfg, taskType)
				state := "enabled"
				if !w.Enabled {
					state = "disabled"
				}
				fmt.Fprintf(out, "  %-32s %-8s timeout=%s maxJobs=%d\n",
					taskType, state, config.GetDuration(w.Timeout), w.MaxJobsActive)
			}
			return nil
		},
	}
	check.Flags().StringVar(&path, "config", "", "config file (default is configs/config.yaml)")

	cmd.AddCommand(check)
	return cmd
}
