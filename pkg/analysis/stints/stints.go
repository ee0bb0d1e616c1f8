// Package stints splits a lap sequence into stints.
//
// A new stint starts whenever the average tire wear drops compared to the
// previous lap. With the WearOrCompound policy a change of the compound label
// starts a new stint as well. The decision is strictly local, a single noisy
// low wear sample splits a stint.
package stints

import (
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/model"
)

type Policy int

const (
	// WearReset splits only when the average wear drops
	WearReset Policy = iota
	// WearOrCompound splits on wear drops and on compound changes
	WearOrCompound
)

func (p Policy) String() string {
	switch p {
	case WearReset:
		return "wear"
	case WearOrCompound:
		return "wear+compound"
	default:
		return "unknown"
	}
}

// Segment partitions laps into stints. The stints cover laps without gaps or
// overlaps, the last stint is the current one.
func Segment(laps []model.LapRecord, policy Policy) []model.Stint {
	if len(laps) == 0 {
		return []model.Stint{}
	}
	ret := make([]model.Stint, 0)
	start := 0
	for i := 1; i < len(laps); i++ {
		if isBoundary(laps[i-1], laps[i], policy) {
			ret = append(ret, newStint(laps, len(ret), start, i))
			start = i
		}
	}
	return append(ret, newStint(laps, len(ret), start, len(laps)))
}

// Current returns the last stint of laps according to policy
func Current(laps []model.LapRecord, policy Policy) (model.Stint, bool) {
	all := Segment(laps, policy)
	if len(all) == 0 {
		return model.Stint{}, false
	}
	return all[len(all)-1], true
}

func isBoundary(prev, cur model.LapRecord, policy Policy) bool {
	if cur.AvgWear() < prev.AvgWear() {
		return true
	}
	return policy == WearOrCompound && cur.Compound != prev.Compound
}

func newStint(laps []model.LapRecord, idx, start, end int) model.Stint {
	return model.Stint{
		Index:    idx,
		Start:    start,
		End:      end,
		FirstLap: laps[start].Lap,
		LastLap:  laps[end-1].Lap,
		Compound: laps[start].Compound,
		LapCount: end - start,
	}
}
