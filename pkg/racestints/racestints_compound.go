package racestints

import (
	"fmt"
	"math"
	"slices"

	"github.com/mpapenbr/iracelog-tirestrategy/pkg/model"
)

const ReasonNoDegradationData = "insufficient data: no degradation rates available"

// PreferredCompoundOrder is the order in which compounds are picked for a plan
var PreferredCompoundOrder = []model.Compound{
	model.CompoundHard,
	model.CompoundMedium,
	model.CompoundSoft,
}

type (
	CompoundCalcParams struct {
		RaceLaps         int     // race length in laps
		RequiredPitstops int     // number of pit stops
		WearThreshold    float64 // average wear at which the tires are done
		MinCompounds     int     // number of distinct compounds to rotate
	}
)

type (
	compoundStintCalc struct {
		param *CompoundCalcParams
		rates model.Rates
		parts []Part
	}
	stintPart struct {
		compound model.Compound
		laps     int
		lapStart int
		lapEnd   int
		maxLaps  int
	}
	pitPart struct {
		lap int
	}
)

func NewCompoundStintCalc(rates model.Rates, param *CompoundCalcParams) CalcStints {
	return &compoundStintCalc{rates: rates, param: param}
}

func (p *CompoundCalcParams) validate() error {
	switch {
	case p.RequiredPitstops < 0:
		return fmt.Errorf("%w: required pitstops %d < 0", ErrInvalidParam, p.RequiredPitstops)
	case p.RaceLaps < p.RequiredPitstops+1:
		return fmt.Errorf("%w: %d race laps cannot hold %d stints",
			ErrInvalidParam, p.RaceLaps, p.RequiredPitstops+1)
	case p.WearThreshold <= 0:
		return fmt.Errorf("%w: wear threshold %.2f <= 0", ErrInvalidParam, p.WearThreshold)
	case p.MinCompounds < 1:
		return fmt.Errorf("%w: min compounds %d < 1", ErrInvalidParam, p.MinCompounds)
	}
	return nil
}

//nolint:funlen // readability
func (c *compoundStintCalc) Calc() (*Result, error) {
	if err := c.param.validate(); err != nil {
		return nil, err
	}
	if len(c.rates) == 0 {
		return &Result{Parts: []Part{}, Reason: ReasonNoDegradationData}, nil
	}
	ret := &Result{}
	maxLaps := make(map[model.Compound]int, len(c.rates))
	for _, cr := range c.rates {
		maxLaps[cr.Compound] = c.maxStintLaps(cr.Rate)
	}

	candidates := OrderCompounds(c.rates)
	if len(candidates) < c.param.MinCompounds {
		ret.Warnings = append(ret.Warnings,
			fmt.Sprintf("only %d compounds available, %d requested",
				len(candidates), c.param.MinCompounds))
	} else {
		candidates = candidates[:c.param.MinCompounds]
	}

	stintsNeeded := c.param.RequiredPitstops + 1
	base := c.param.RaceLaps / stintsNeeded
	extra := c.param.RaceLaps % stintsNeeded

	planned := make([]*stintPart, 0, stintsNeeded)
	rot := 0
	var prev model.Compound
	for i := range stintsNeeded {
		chunk := base
		if i < extra {
			chunk++
		}
		compound := candidates[rot%len(candidates)]
		if i > 0 && compound == prev && len(candidates) > 1 {
			rot++
			compound = candidates[rot%len(candidates)]
		}
		rot++
		planned = append(planned, &stintPart{
			compound: compound,
			laps:     min(chunk, maxLaps[compound]),
			maxLaps:  maxLaps[compound],
		})
		prev = compound
	}

	// laps removed by the compound limits go to the last stint,
	// even if this exceeds its limit
	sum := 0
	for _, sp := range planned {
		sum += sp.laps
	}
	if shortfall := c.param.RaceLaps - sum; shortfall > 0 {
		last := planned[len(planned)-1]
		last.laps += shortfall
		if last.laps > last.maxLaps {
			ret.Warnings = append(ret.Warnings,
				fmt.Sprintf("final stint on %s exceeds wear limit: %d laps planned, %d safe",
					last.compound, last.laps, last.maxLaps))
		}
	}

	c.parts = make([]Part, 0, 2*stintsNeeded-1)
	curLap := 1
	for i, sp := range planned {
		sp.lapStart = curLap
		sp.lapEnd = curLap + sp.laps - 1
		curLap += sp.laps
		c.parts = append(c.parts, sp)
		if i < len(planned)-1 {
			c.parts = append(c.parts, &pitPart{lap: sp.lapEnd})
		}
	}
	ret.Parts = c.parts
	return ret, nil
}

// maxStintLaps returns the laps until the wear threshold is reached.
// Compounds without measured wear increase may run the whole race.
// The result is at least 1, a capped stint must keep a positive length.
func (c *compoundStintCalc) maxStintLaps(rate float64) int {
	if rate <= 0 {
		return c.param.RaceLaps
	}
	return max(1, int(math.Floor(c.param.WearThreshold/rate)))
}

// OrderCompounds sorts the compounds of rates by PreferredCompoundOrder.
// Compounds not in that list follow in order of their appearance in rates.
func OrderCompounds(rates model.Rates) []model.Compound {
	rank := func(c model.Compound) int {
		if idx := slices.Index(PreferredCompoundOrder, c); idx >= 0 {
			return idx
		}
		return len(PreferredCompoundOrder) + slices.IndexFunc(rates,
			func(cr model.CompoundRate) bool { return cr.Compound == c })
	}
	ret := make([]model.Compound, 0, len(rates))
	for _, cr := range rates {
		if !slices.Contains(ret, cr.Compound) {
			ret = append(ret, cr.Compound)
		}
	}
	slices.SortStableFunc(ret, func(a, b model.Compound) int {
		return rank(a) - rank(b)
	})
	return ret
}

func (s stintPart) Type() PartType {
	return PartTypeStint
}

func (s stintPart) Compound() model.Compound {
	return s.compound
}

func (s stintPart) Laps() int {
	return s.laps
}

func (s stintPart) LapStart() int {
	return s.lapStart
}

func (s stintPart) LapEnd() int {
	return s.lapEnd
}

func (s stintPart) MaxLaps() int {
	return s.maxLaps
}

func (s stintPart) Output() string {
	return fmt.Sprintf("%d-%d (%d): %s", s.lapStart, s.lapEnd, s.laps, s.compound)
}

func (p pitPart) Type() PartType {
	return PartTypePit
}

func (p pitPart) Lap() int {
	return p.lap
}

func (p pitPart) Output() string {
	return fmt.Sprintf("Pit after lap %d", p.lap)
}
