package racestints

import (
	"fmt"
	"math"
	"time"
)

type DurationParams struct {
	RaceDur  time.Duration // duration until end of race
	AvgLap   time.Duration // average lap time
	PitTime  time.Duration // time lost per pit stop
	Pitstops int           // number of pit stops
}

// RaceLapsForDuration computes the laps needed to finish a timed race.
// The time spent in the pits is taken from the race duration. Like in a timed
// race a started lap is finished, so the result is rounded up. The result has
// at least one lap per stint.
func RaceLapsForDuration(p *DurationParams) (int, error) {
	if p.AvgLap <= 0 {
		return 0, ErrNoLapTime
	}
	if p.RaceDur <= 0 {
		return 0, fmt.Errorf("%w: race duration %s", ErrInvalidParam, p.RaceDur)
	}
	driving := p.RaceDur - time.Duration(p.Pitstops)*p.PitTime
	laps := int(math.Ceil(driving.Seconds() / p.AvgLap.Seconds()))
	return max(laps, p.Pitstops+1), nil
}
