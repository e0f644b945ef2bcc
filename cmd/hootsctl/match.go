package main

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Barlow1/hoots-sub000/internal/common/config"
	"github.com/Barlow1/hoots-sub000/internal/engine"
)

type matchOptions struct {
	preferences string
	candidates  string
	configFile  string

	costTolerance        float64
	experienceTolerance  float64
	premiumCostThreshold float64
}

type matchResult struct {
	Matches        []engine.Mentor `json:"matches"`
	MatchCount     int             `json:"matchCount"`
	CandidateCount int             `json:"candidateCount"`
}

func newMatchCmd(root *rootOptions) *cobra.Command {
	opts := &matchOptions{}

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Filter a list of mentors against a user's preferences",
		Example: `  hootsctl match --preferences prefs.json --candidates mentors.json
  cat mentors.json | hootsctl match --preferences prefs.json --candidates -`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.preferences == "-" && opts.candidates == "-" {
				return errors.New("only one of --preferences and --candidates can read stdin")
			}

			var prefs engine.Preferences
			if err := readJSON(opts.preferences, cmd.InOrStdin(), &prefs); err != nil {
				return err
			}
			var candidates []engine.Mentor
			if err := readJSON(opts.candidates, cmd.InOrStdin(), &candidates); err != nil {
				return err
			}

			policy, err := opts.policy(cmd)
			if err != nil {
				return err
			}
			root.logger.Debug("matching",
				zap.Int("candidates", len(candidates)),
				zap.Float64("costTolerance", policy.CostTolerance),
				zap.Float64("experienceTolerance", policy.ExperienceTolerance),
				zap.Float64("premiumCostThreshold", policy.PremiumCostThreshold))

			matches := policy.Filter(prefs, candidates)
			return writeJSON(cmd.OutOrStdout(), matchResult{
				Matches:        matches,
				MatchCount:     len(matches),
				CandidateCount: len(candidates),
			})
		},
	}

	cmd.Flags().StringVarP(&opts.preferences, "preferences", "p", "", "preferences JSON file (- for stdin)")
	cmd.Flags().StringVarP(&opts.candidates, "candidates", "c", "", "mentor candidates JSON array file (- for stdin)")
	cmd.Flags().StringVar(&opts.configFile, "config", "", "read tolerance bands from a worker config file")
	cmd.Flags().Float64Var(&opts.costTolerance, "cost-tolerance", engine.DefaultCostTolerance, "inclusive cost band")
	cmd.Flags().Float64Var(&opts.experienceTolerance, "experience-tolerance", engine.DefaultExperienceTolerance, "inclusive experience band")
	cmd.Flags().Float64Var(&opts.premiumCostThreshold, "premium-threshold", engine.DefaultPremiumCostThreshold, "premium cost threshold")
	_ = cmd.MarkFlagRequired("preferences")
	_ = cmd.MarkFlagRequired("candidates")
	return cmd
}

// policy starts from the config file when given; explicit flags win.
func (o *matchOptions) policy(cmd *cobra.Command) (engine.MatchPolicy, error) {
	p := engine.DefaultMatchPolicy
	if o.configFile != "" {
		cfg, err := config.LoadFromFile(o.configFile)
		if err != nil {
			return p, err
		}
		p = cfg.Matching.Policy()
	}

	flags := cmd.Flags()
	if flags.Changed("cost-tolerance") {
		p.CostTolerance = o.costTolerance
	}
	if flags.Changed("experience-tolerance") {
		p.ExperienceTolerance = o.experienceTolerance
	}
	if flags.Changed("premium-threshold") {
		p.PremiumCostThreshold = o.premiumCostThreshold
	}
	return p, nil
}
