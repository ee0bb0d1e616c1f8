package analyze

import (
	"github.com/spf13/cobra"

	"github.com/mpapenbr/iracelog-tirestrategy/pkg/cmd/util"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/config"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/report"
)

func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze file.csv",
		Short: "full analysis: stats, degradation, stints, pit prediction and strategy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			laps, err := util.LoadLaps(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			r, err := report.Build(cmd.Context(), laps, config.StrategyArgs)
			if err != nil {
				return err
			}
			return report.Write(cmd.OutOrStdout(), r, config.OutputFormat, config.Query)
		},
	}
	cmd.Flags().StringVarP(&config.OutputFormat,
		"format",
		"f",
		report.FormatText,
		"output format (text, json, yaml)")
	cmd.Flags().StringVar(&config.Query,
		"query",
		"",
		"JSONPath expression to select parts of the json output (e.g. $.strategy.plan)")
	return cmd
}
