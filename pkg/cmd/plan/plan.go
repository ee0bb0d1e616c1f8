package plan

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/iracelog-tirestrategy/log"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/analysis/degradation"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/cmd/util"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/config"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/racestints"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/report"
)

func NewPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan file.csv",
		Short: "compute a compound strategy for the race",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			laps, err := util.LoadLaps(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			logger := log.GetFromContext(cmd.Context()).Named("plan")
			rates := degradation.Estimate(laps)
			for _, cr := range rates {
				logger.Debug("degradation",
					log.String("compound", string(cr.Compound)),
					log.Float64("rate", cr.Rate))
			}
			raceLaps, err := report.ResolveRaceLaps(laps, config.StrategyArgs)
			if err != nil {
				return err
			}
			calc := racestints.NewCompoundStintCalc(rates, &racestints.CompoundCalcParams{
				RaceLaps:         raceLaps,
				RequiredPitstops: config.StrategyArgs.RequiredPitstops,
				WearThreshold:    config.StrategyArgs.WearThreshold,
				MinCompounds:     config.StrategyArgs.MinCompounds,
			})
			res, err := calc.Calc()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if res.Reason != "" {
				fmt.Fprintln(out, res.Reason)
				return nil
			}
			for _, p := range res.Parts {
				fmt.Fprintln(out, p.Output())
			}
			for _, w := range res.Warnings {
				logger.Warn(w)
			}
			return nil
		},
	}
	return cmd
}
