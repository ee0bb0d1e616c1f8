package racestints

import (
	"errors"

	"github.com/samber/lo"

	"github.com/mpapenbr/iracelog-tirestrategy/pkg/model"
)

type (
	PartType   int
	CalcStints interface {
		Calc() (*Result, error)
	}
	Part interface {
		Type() PartType
		Output() string
	}
	StintPart interface {
		Part
		Compound() model.Compound
		Laps() int
		LapStart() int
		LapEnd() int
		MaxLaps() int // laps the compound can do until the wear threshold
	}
	PitPart interface {
		Part
		Lap() int // lap at the end of which the car pits
	}
	// Result holds the alternating stint and pit parts of a plan.
	// If no plan could be computed Parts is empty and Reason is set.
	Result struct {
		Parts    []Part
		Warnings []string
		Reason   string
	}
	PlanEntry struct {
		Compound model.Compound `json:"compound"`
		Laps     int            `json:"laps"`
	}
)

const (
	PartTypeStint PartType = iota
	PartTypePit
)

var (
	ErrInvalidParam = errors.New("invalid strategy parameter")
	ErrNoLapTime    = errors.New("average lap time must be positive")
)

func (r *Result) Stints() []StintPart {
	return lo.FilterMap(r.Parts, func(p Part, _ int) (StintPart, bool) {
		sp, ok := p.(StintPart)
		return sp, ok
	})
}

// PitLaps returns the cumulative lap numbers of all pit stops
func (r *Result) PitLaps() []int {
	return lo.FilterMap(r.Parts, func(p Part, _ int) (int, bool) {
		if pp, ok := p.(PitPart); ok {
			return pp.Lap(), true
		}
		return 0, false
	})
}

func (r *Result) Plan() []PlanEntry {
	return lo.Map(r.Stints(), func(s StintPart, _ int) PlanEntry {
		return PlanEntry{Compound: s.Compound(), Laps: s.Laps()}
	})
}

func (r *Result) TotalLaps() int {
	return lo.SumBy(r.Stints(), func(s StintPart) int { return s.Laps() })
}
