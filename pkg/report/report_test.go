//nolint:funlen // ok for tests
package report

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ohler55/ojg/oj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mpapenbr/iracelog-tirestrategy/pkg/analysis/pit"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/config"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/model"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/racestints"
	"github.com/mpapenbr/iracelog-tirestrategy/testsupport/basedata"
)

func TestBuild(t *testing.T) {
	r, err := Build(context.Background(), basedata.SampleRace(), config.DefaultStrategy())
	require.NoError(t, err)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, 10, r.NumLaps)
	assert.Equal(t, 54, r.Params.RaceLaps)
	require.NotNil(t, r.Stats)
	assert.Equal(t, 5, r.Stats.FastestLap.Lap)

	rate, ok := r.Degradation.Get(model.CompoundSoft)
	assert.True(t, ok)
	assert.InDelta(t, 6.625, rate, 1e-9)

	assert.Len(t, r.Stints, 3)

	require.NotNil(t, r.PlannedPit.Lap)
	assert.InDelta(t, 20.8, *r.PlannedPit.Lap, 1e-9)
	require.NotNil(t, r.PlannedPit.LapsNeeded)
	assert.InDelta(t, 10.8, *r.PlannedPit.LapsNeeded, 1e-9)

	assert.True(t, r.Advice.Valid)
	assert.False(t, r.Advice.PitNow)
	assert.InDelta(t, 11, r.Advice.Wear, 1e-9)

	assert.Equal(t, []racestints.PlanEntry{
		{Compound: model.CompoundHard, Laps: 18},
		{Compound: model.CompoundSoft, Laps: 10},
		{Compound: model.CompoundHard, Laps: 26},
	}, r.Strategy.Plan)
	assert.Equal(t, []int{18, 28}, r.Strategy.PitLaps)
	assert.Equal(t, []string{
		"1-18 (18): Hard", "Pit after lap 18",
		"19-28 (10): Soft", "Pit after lap 28",
		"29-54 (26): Hard",
	}, r.Strategy.Parts)
	assert.Len(t, r.Strategy.Warnings, 1)
}

func TestBuildNoLaps(t *testing.T) {
	r, err := Build(context.Background(), nil, config.DefaultStrategy())
	require.NoError(t, err)
	assert.Nil(t, r.Stats)
	assert.Empty(t, r.Degradation)
	assert.Nil(t, r.PlannedPit.Lap)
	assert.Equal(t, pit.ReasonInsufficientData, r.PlannedPit.Reason)
	assert.False(t, r.Advice.Valid)
	assert.Equal(t, racestints.ReasonNoDegradationData, r.Strategy.Reason)
	assert.Empty(t, r.Strategy.Plan)
}

func TestBuildRaceDuration(t *testing.T) {
	p := config.DefaultStrategy()
	p.RaceDuration = time.Hour
	p.PitTime = 25 * time.Second
	r, err := Build(context.Background(), basedata.SampleRace(), p)
	require.NoError(t, err)
	// avg lap 90.9s: (3600-50)/90.9 = 39.05
	assert.Equal(t, 40, r.Params.RaceLaps)
	assert.Equal(t, 40, lapSum(r.Strategy.Plan))
}

func TestBuildInvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		modify func(p *config.Strategy)
	}{
		{name: "negative pitstops", modify: func(p *config.Strategy) { p.RequiredPitstops = -1 }},
		{name: "race too short", modify: func(p *config.Strategy) { p.RaceLaps = 2 }},
		{name: "zero threshold", modify: func(p *config.Strategy) { p.WearThreshold = 0 }},
		{name: "no compounds", modify: func(p *config.Strategy) { p.MinCompounds = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := config.DefaultStrategy()
			tt.modify(&p)
			_, err := Build(context.Background(), basedata.SampleRace(), p)
			assert.True(t, errors.Is(err, racestints.ErrInvalidParam), "got %v", err)
		})
	}
}

func TestWriteText(t *testing.T) {
	r, err := Build(context.Background(), basedata.SampleRace(), config.DefaultStrategy())
	require.NoError(t, err)
	buf := &bytes.Buffer{}
	require.NoError(t, Write(buf, r, FormatText, ""))
	out := buf.String()

	for _, want := range []string{
		"==== Race Statistics ====",
		"Fastest lap (all time): Lap 5 - 89.900s on Soft",
		"Average lap time (current stint): 91.750s",
		"Delta to fastest (all time): +1.900s",
		"Soft: 6.63% per lap",
		"Hard: 3.75% per lap",
		"Planned pitstop around lap 21",
		"No immediate pitstop needed. Recent average wear: 11.00%",
		"Stint 1: 5-6 (2 laps) on Soft",
		"Strategy (54 laps, 2 stops, threshold 70%):",
		"Pit after lap 28",
		"Warning: final stint on Hard exceeds wear limit",
	} {
		assert.Contains(t, out, want)
	}
}

func TestWriteJSON(t *testing.T) {
	r, err := Build(context.Background(), basedata.SampleRace(), config.DefaultStrategy())
	require.NoError(t, err)

	tests := []struct {
		name  string
		query string
		check func(t *testing.T, doc any)
	}{
		{
			name: "complete report",
			check: func(t *testing.T, doc any) {
				t.Helper()
				m, ok := doc.(map[string]any)
				require.True(t, ok)
				assert.Equal(t, int64(10), m["numLaps"])
				assert.Contains(t, m, "strategy")
			},
		},
		{
			name:  "single result",
			query: "$.strategy.pitLaps",
			check: func(t *testing.T, doc any) {
				t.Helper()
				assert.Equal(t, []any{int64(18), int64(28)}, doc)
			},
		},
		{
			name:  "multiple results",
			query: "$.strategy.plan[*].compound",
			check: func(t *testing.T, doc any) {
				t.Helper()
				assert.Equal(t, []any{"Hard", "Soft", "Hard"}, doc)
			},
		},
		{
			name:  "no result",
			query: "$.unknown",
			check: func(t *testing.T, doc any) {
				t.Helper()
				assert.Nil(t, doc)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			require.NoError(t, Write(buf, r, FormatJSON, tt.query))
			doc, err := oj.Parse(buf.Bytes())
			require.NoError(t, err)
			tt.check(t, doc)
		})
	}
}

func TestWriteJSONInvalidQuery(t *testing.T) {
	r, err := Build(context.Background(), basedata.SampleRace(), config.DefaultStrategy())
	require.NoError(t, err)
	assert.Error(t, WriteJSON(&bytes.Buffer{}, r, "$.[[["))
}

func TestWriteYAML(t *testing.T) {
	r, err := Build(context.Background(), basedata.SampleRace(), config.DefaultStrategy())
	require.NoError(t, err)
	buf := &bytes.Buffer{}
	require.NoError(t, Write(buf, r, FormatYAML, ""))

	var got Report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, r.Strategy.PitLaps, got.Strategy.PitLaps)
	require.Len(t, got.Stints, len(r.Stints))
	for i := range r.Stints {
		assert.Equal(t, r.Stints[i].FirstLap, got.Stints[i].FirstLap)
		assert.Equal(t, r.Stints[i].LapCount, got.Stints[i].LapCount)
	}
	assert.Equal(t, r.Degradation, got.Degradation)
}

func TestWriteUnknownFormat(t *testing.T) {
	assert.ErrorIs(t, Write(&bytes.Buffer{}, &Report{}, "xml", ""), ErrUnknownFormat)
}

func lapSum(plan []racestints.PlanEntry) int {
	ret := 0
	for _, e := range plan {
		ret += e.Laps
	}
	return ret
}
