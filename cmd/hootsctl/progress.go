package main

import (
	"github.com/spf13/cobra"

	"github.com/Barlow1/hoots-sub000/internal/engine"
)

type progressResult struct {
	Progress       int  `json:"progress"`
	CompletedCount int  `json:"completedCount"`
	TotalCount     int  `json:"totalCount"`
	IsComplete     bool `json:"isComplete"`
}

func newProgressCmd(_ *rootOptions) *cobra.Command {
	var milestones string

	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Compute a goal's progress percentage from its milestones",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var ms []engine.Milestone
			if err := readJSON(milestones, cmd.InOrStdin(), &ms); err != nil {
				return err
			}

			completed := engine.CountCompleted(ms)
			return writeJSON(cmd.OutOrStdout(), progressResult{
				Progress:       engine.GoalProgress(ms),
				CompletedCount: completed,
				TotalCount:     len(ms),
				// progress rounds up, so 100 alone does not mean done
				IsComplete: len(ms) > 0 && completed == len(ms),
			})
		},
	}

	cmd.Flags().StringVarP(&milestones, "milestones", "m", "-", "milestones JSON array file (- for stdin)")
	return cmd
}
