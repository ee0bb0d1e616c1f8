package pit

import (
	"fmt"
	"math"

	"github.com/aarondl/opt/null"
	"gonum.org/v1/gonum/stat"

	"github.com/mpapenbr/iracelog-tirestrategy/pkg/analysis/degradation"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/analysis/stints"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/model"
)

const (
	ReasonInsufficientData = "insufficient data"
	ReasonNoDegradation    = "no wear increase in current stint"
	ReasonBeyondHorizon    = "no pit needed within the observed horizon"
)

type (
	// Prediction is the result of extrapolating the current stint to the wear
	// threshold. Lap is null when no prediction could be made, Reason says why.
	Prediction struct {
		Lap         null.Val[float64]
		Reason      string
		Stint       model.Stint
		CurrentWear float64
		Degradation float64 // avg wear increase per lap in current stint
		LapsNeeded  float64 // +Inf if the wear does not increase
	}
	// Advice is the result of the immediate pit check
	Advice struct {
		Valid  bool
		PitNow bool
		Wear   float64 // avg wear over all corners of the recent laps
		Reason string
	}
)

// PlannedPit predicts the lap at which the average wear of the current stint
// reaches threshold.
func PlannedPit(laps []model.LapRecord, threshold float64) Prediction {
	cur, ok := stints.Current(laps, stints.WearReset)
	if !ok || cur.LapCount < 2 {
		return Prediction{Reason: ReasonInsufficientData, Stint: cur}
	}
	stintLaps := cur.Laps(laps)
	last := stintLaps[len(stintLaps)-1]
	ret := Prediction{
		Stint:       cur,
		CurrentWear: last.AvgWear(),
		Degradation: stat.Mean(degradation.WearDiffs(stintLaps, false), nil),
		LapsNeeded:  math.Inf(1),
	}
	if ret.Degradation <= 0 {
		ret.Reason = ReasonNoDegradation
		return ret
	}
	ret.LapsNeeded = (threshold - ret.CurrentWear) / ret.Degradation
	pitLap := float64(last.Lap) + ret.LapsNeeded
	if pitLap <= float64(last.Lap) {
		ret.Reason = ReasonBeyondHorizon
		return ret
	}
	ret.Lap = null.From(pitLap)
	return ret
}

// Advise checks whether the wear of the last recentLaps laps already reached
// threshold. All wear values of these laps are averaged as one pool.
func Advise(laps []model.LapRecord, threshold float64, recentLaps int) Advice {
	if recentLaps < 1 || len(laps) < recentLaps {
		return Advice{Reason: ReasonInsufficientData}
	}
	pool := make([]float64, 0, recentLaps*int(model.NumCorners))
	for _, l := range laps[len(laps)-recentLaps:] {
		pool = append(pool, l.Wear[:]...)
	}
	wear := stat.Mean(pool, nil)
	ret := Advice{Valid: true, Wear: wear, PitNow: wear >= threshold}
	if ret.PitNow {
		ret.Reason = fmt.Sprintf("recent wear %.2f%% reached threshold %.2f%%", wear, threshold)
	} else {
		ret.Reason = fmt.Sprintf("recent wear %.2f%% below threshold %.2f%%", wear, threshold)
	}
	return ret
}
