package stints

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/iracelog-tirestrategy/log"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/analysis/stints"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/cmd/util"
)

var wearOnly bool

func NewStintsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stints file.csv",
		Short: "display the stints of a lap file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			laps, err := util.LoadLaps(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			policy := stints.WearOrCompound
			if wearOnly {
				policy = stints.WearReset
			}
			log.GetFromContext(cmd.Context()).Named("stints").
				Debug("segmenting", log.String("policy", policy.String()))
			out := cmd.OutOrStdout()
			for _, s := range stints.Segment(laps, policy) {
				fmt.Fprintf(out, "Stint %d: %d-%d (%d laps) on %s\n",
					s.Index, s.FirstLap, s.LastLap, s.LapCount, s.Compound)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&wearOnly,
		"simple",
		false,
		"split only on wear drops, ignore compound changes")
	return cmd
}
