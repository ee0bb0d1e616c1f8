package model

// Stint is a contiguous range of laps on one set of tires.
// Start and End are indexes into the lap slice the stint was computed from,
// End is exclusive.
type Stint struct {
	Index    int      `json:"index" yaml:"index"`
	Start    int      `json:"-" yaml:"-"`
	End      int      `json:"-" yaml:"-"`
	FirstLap int      `json:"firstLap" yaml:"firstLap"`
	LastLap  int      `json:"lastLap" yaml:"lastLap"`
	Compound Compound `json:"compound" yaml:"compound"`
	LapCount int      `json:"lapCount" yaml:"lapCount"`
}

// Laps returns the part of laps covered by the stint
func (s Stint) Laps(laps []LapRecord) []LapRecord {
	return laps[s.Start:s.End]
}

// CompoundRate is the average wear increase per lap for a compound
type CompoundRate struct {
	Compound Compound `json:"compound" yaml:"compound"`
	Rate     float64  `json:"rate" yaml:"rate"`
}

// Rates keeps the degradation rates in order of first appearance of the compound
type Rates []CompoundRate

func (r Rates) Get(c Compound) (float64, bool) {
	for _, cr := range r {
		if cr.Compound == c {
			return cr.Rate, true
		}
	}
	return 0, false
}

func (r Rates) Map() map[Compound]float64 {
	ret := make(map[Compound]float64, len(r))
	for _, cr := range r {
		ret[cr.Compound] = cr.Rate
	}
	return ret
}
