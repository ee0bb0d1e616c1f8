package stats

import (
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"

	"github.com/mpapenbr/iracelog-tirestrategy/pkg/analysis/stints"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/model"
)

// RaceStats summarizes lap times of the whole race and the current stint.
// FastestLap considers all laps, FastestStintLap only the current stint.
type RaceStats struct {
	Valid             bool
	FastestLap        model.LapRecord
	FastestStintLap   model.LapRecord
	AvgStintLapTime   float64
	LastLap           model.LapRecord
	DeltaToStintAvg   float64
	DeltaToStintBest  float64
	DeltaToFastestLap float64
	CurrentStint      model.Stint
}

// Compute derives the race stats. The current stint is determined by wear
// resets only.
func Compute(laps []model.LapRecord) RaceStats {
	cur, ok := stints.Current(laps, stints.WearReset)
	if !ok {
		return RaceStats{}
	}
	stintLaps := cur.Laps(laps)
	ret := RaceStats{
		Valid:           true,
		CurrentStint:    cur,
		FastestLap:      fastest(laps),
		FastestStintLap: fastest(stintLaps),
		AvgStintLapTime: stat.Mean(lo.Map(stintLaps, func(l model.LapRecord, _ int) float64 {
			return l.LapTime
		}), nil),
		LastLap: laps[len(laps)-1],
	}
	ret.DeltaToStintAvg = ret.LastLap.LapTime - ret.AvgStintLapTime
	ret.DeltaToStintBest = ret.LastLap.LapTime - ret.FastestStintLap.LapTime
	ret.DeltaToFastestLap = ret.LastLap.LapTime - ret.FastestLap.LapTime
	return ret
}

// fastest returns the first lap with the minimum lap time
func fastest(laps []model.LapRecord) model.LapRecord {
	return lo.MinBy(laps, func(a, b model.LapRecord) bool {
		return a.LapTime < b.LapTime
	})
}
