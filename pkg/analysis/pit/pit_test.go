//nolint:funlen // ok for tests
package pit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	gta "gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"

	"github.com/mpapenbr/iracelog-tirestrategy/pkg/model"
	"github.com/mpapenbr/iracelog-tirestrategy/testsupport/basedata"
)

func TestPlannedPit(t *testing.T) {
	tests := []struct {
		name       string
		laps       []model.LapRecord
		threshold  float64
		wantLap    float64
		wantOK     bool
		wantReason string
	}{
		{
			name:       "no laps",
			laps:       nil,
			threshold:  70,
			wantReason: ReasonInsufficientData,
		},
		{
			name:       "single lap",
			laps:       basedata.LapsWithWear(model.CompoundSoft, 10),
			threshold:  70,
			wantReason: ReasonInsufficientData,
		},
		{
			name:       "fresh tires after reset",
			laps:       basedata.LapsWithWear(model.CompoundSoft, 10, 20, 5),
			threshold:  70,
			wantReason: ReasonInsufficientData,
		},
		{
			name:       "wear does not increase",
			laps:       basedata.LapsWithWear(model.CompoundHard, 10, 10, 10),
			threshold:  70,
			wantReason: ReasonNoDegradation,
		},
		{
			name:      "second soft stint",
			laps:      basedata.LapsWithWear(model.CompoundSoft, 2, 10, 20, 33, 4, 15),
			threshold: 70,
			wantLap:   11,
			wantOK:    true,
		},
		{
			name:      "sample race",
			laps:      basedata.SampleRace(),
			threshold: 70,
			wantLap:   20.8,
			wantOK:    true,
		},
		{
			name:       "threshold already passed",
			laps:       basedata.LapsWithWear(model.CompoundSoft, 60, 75),
			threshold:  70,
			wantReason: ReasonBeyondHorizon,
		},
		{
			name:       "threshold reached on last lap",
			laps:       basedata.LapsWithWear(model.CompoundSoft, 60, 70),
			threshold:  70,
			wantReason: ReasonBeyondHorizon,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PlannedPit(tt.laps, tt.threshold)
			lap, ok := got.Lap.Get()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantReason, got.Reason)
			if tt.wantOK {
				assert.InDelta(t, tt.wantLap, lap, 1e-9)
			}
		})
	}
}

func TestPlannedPitDetails(t *testing.T) {
	got := PlannedPit(basedata.SampleRace(), 70)
	gta.Equal(t, got.Stint.FirstLap, 7)
	gta.Equal(t, got.CurrentWear, 16.0)
	gta.Equal(t, got.Degradation, 5.0)
	gta.Assert(t, math.Abs(got.LapsNeeded-10.8) < 1e-9)

	flat := PlannedPit(basedata.LapsWithWear(model.CompoundHard, 10, 10), 70)
	gta.Assert(t, math.IsInf(flat.LapsNeeded, 1))
	gta.Assert(t, cmp.Equal(flat.Reason, ReasonNoDegradation))
}

func TestAdvise(t *testing.T) {
	wearLap := func(lap int, w ...float64) model.LapRecord {
		return model.LapRecord{
			Lap: lap, LapTime: 90, Compound: model.CompoundSoft,
			Wear: [model.NumCorners]float64{w[0], w[1], w[2], w[3]},
		}
	}
	tests := []struct {
		name       string
		laps       []model.LapRecord
		threshold  float64
		recent     int
		wantValid  bool
		wantPitNow bool
		wantWear   float64
	}{
		{
			name:      "sample race",
			laps:      basedata.SampleRace(),
			threshold: 70,
			recent:    3,
			wantValid: true,
			wantWear:  11,
		},
		{
			name: "exactly at threshold",
			laps: []model.LapRecord{
				wearLap(1, 60, 80, 70, 70),
				wearLap(2, 65, 75, 70, 70),
				wearLap(3, 70, 70, 70, 70),
			},
			threshold:  70,
			recent:     3,
			wantValid:  true,
			wantPitNow: true,
			wantWear:   70,
		},
		{
			name: "only recent laps count",
			laps: []model.LapRecord{
				wearLap(1, 90, 90, 90, 90),
				wearLap(2, 10, 20, 30, 40),
			},
			threshold: 70,
			recent:    1,
			wantValid: true,
			wantWear:  25,
		},
		{
			name:      "too few laps",
			laps:      basedata.LapsWithWear(model.CompoundSoft, 80, 90),
			threshold: 70,
			recent:    3,
		},
		{
			name:      "no recent laps requested",
			laps:      basedata.SampleRace(),
			threshold: 70,
			recent:    0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Advise(tt.laps, tt.threshold, tt.recent)
			assert.Equal(t, tt.wantValid, got.Valid)
			assert.Equal(t, tt.wantPitNow, got.PitNow)
			assert.InDelta(t, tt.wantWear, got.Wear, 1e-9)
			assert.NotEmpty(t, got.Reason)
			if !tt.wantValid {
				assert.Equal(t, ReasonInsufficientData, got.Reason)
			}
		})
	}
}
