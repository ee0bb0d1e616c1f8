package basedata

import (
	"fmt"
	"strings"

	"github.com/mpapenbr/iracelog-tirestrategy/pkg/model"
)

// Lap creates a lap record with the same wear on all four corners
func Lap(lap int, lapTime float64, compound model.Compound, wear float64) model.LapRecord {
	return model.LapRecord{
		Lap:      lap,
		LapTime:  lapTime,
		Compound: compound,
		Wear:     [model.NumCorners]float64{wear, wear, wear, wear},
	}
}

// LapsWithWear creates consecutive laps starting at lap 1 with the given
// average wear values. Lap times are 90s.
func LapsWithWear(compound model.Compound, wear ...float64) []model.LapRecord {
	ret := make([]model.LapRecord, len(wear))
	for i, w := range wear {
		ret[i] = Lap(i+1, 90, compound, w)
	}
	return ret
}

// SampleRace is a short race with two Soft stints followed by a Hard stint.
//
//	laps 1-4  Soft wear 2,10,20,33
//	laps 5-6  Soft wear 4,15
//	laps 7-10 Hard wear 1,6,11,16
func SampleRace() []model.LapRecord {
	times := []float64{90.5, 90.1, 90.3, 91.0, 89.9, 90.2, 92.0, 91.5, 91.7, 91.8}
	wear := []float64{2, 10, 20, 33, 4, 15, 1, 6, 11, 16}
	ret := make([]model.LapRecord, len(wear))
	for i := range wear {
		c := model.CompoundSoft
		if i >= 6 {
			c = model.CompoundHard
		}
		ret[i] = Lap(i+1, times[i], c, wear[i])
	}
	return ret
}

// SampleRaceCSV renders SampleRace as CSV the way the telemetry export writes
// it: padded header names and a compound column with a prefix.
func SampleRaceCSV() string {
	b := &strings.Builder{}
	b.WriteString(" Lap , Laptime,Tyre Compound , Front left tire usage (percentage)," +
		"Front right tire usage (percentage),Rear left tire usage (percentage)," +
		"Rear right tire usage (percentage)\n")
	for _, l := range SampleRace() {
		fmt.Fprintf(b, "%d,%.1f,%s,%g,%g,%g,%g\n",
			l.Lap, l.LapTime, l.Compound, l.Wear[0], l.Wear[1], l.Wear[2], l.Wear[3])
	}
	return b.String()
}
