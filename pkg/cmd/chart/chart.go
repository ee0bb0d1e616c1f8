package chart

import (
	"github.com/spf13/cobra"

	"github.com/mpapenbr/iracelog-tirestrategy/log"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/analysis/stints"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/chart"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/cmd/util"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/config"
)

var outFile string

func NewChartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart file.csv",
		Short: "render the average tire wear per lap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			laps, err := util.LoadLaps(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			opts := chart.DefaultOptions()
			opts.Threshold = config.StrategyArgs.WearThreshold
			err = chart.Render(laps, stints.Segment(laps, stints.WearOrCompound), opts, outFile)
			if err != nil {
				return err
			}
			log.GetFromContext(cmd.Context()).Info("chart written", log.String("file", outFile))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outFile,
		"out",
		"o",
		"wear.png",
		"output file (png, svg, pdf)")
	return cmd
}
