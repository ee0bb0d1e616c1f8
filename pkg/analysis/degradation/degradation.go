package degradation

import (
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"

	"github.com/mpapenbr/iracelog-tirestrategy/pkg/analysis/stints"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/model"
)

// Estimate computes the average wear increase per lap for each compound.
//
// The laps of a compound are split into stints on wear drops. Each stint with
// more than one lap contributes the mean of its lap-to-lap wear differences,
// where the first lap counts as a difference of 0. The compound rate is the
// unweighted mean of these stint values, 0 if no stint qualifies.
// The result is ordered by first appearance of the compound.
func Estimate(laps []model.LapRecord) model.Rates {
	compounds := lo.Uniq(lo.Map(laps, func(l model.LapRecord, _ int) model.Compound {
		return l.Compound
	}))
	ret := make(model.Rates, 0, len(compounds))
	for _, c := range compounds {
		ret = append(ret, model.CompoundRate{Compound: c, Rate: compoundRate(laps, c)})
	}
	return ret
}

func compoundRate(laps []model.LapRecord, c model.Compound) float64 {
	compoundLaps := lo.Filter(laps, func(l model.LapRecord, _ int) bool {
		return l.Compound == c
	})
	rates := make([]float64, 0)
	for _, s := range stints.Segment(compoundLaps, stints.WearReset) {
		if s.LapCount > 1 {
			rates = append(rates, stat.Mean(WearDiffs(s.Laps(compoundLaps), true), nil))
		}
	}
	if len(rates) == 0 {
		return 0
	}
	return stat.Mean(rates, nil)
}

// WearDiffs returns the lap-to-lap differences of the average wear.
// If fillFirst is set the result starts with 0 for the first lap and has the
// same length as laps, otherwise it has one entry less.
func WearDiffs(laps []model.LapRecord, fillFirst bool) []float64 {
	ret := make([]float64, 0, len(laps))
	if fillFirst && len(laps) > 0 {
		ret = append(ret, 0)
	}
	for i := 1; i < len(laps); i++ {
		ret = append(ret, laps[i].AvgWear()-laps[i-1].AvgWear())
	}
	return ret
}
