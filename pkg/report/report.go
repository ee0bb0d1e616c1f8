package report

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gonum.org/v1/gonum/stat"

	"github.com/mpapenbr/iracelog-tirestrategy/log"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/analysis/degradation"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/analysis/pit"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/analysis/stats"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/analysis/stints"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/config"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/model"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/racestints"
)

var tracer = otel.Tracer("github.com/mpapenbr/iracelog-tirestrategy/pkg/report")

type (
	Report struct {
		ID          string        `json:"id" yaml:"id"`
		NumLaps     int           `json:"numLaps" yaml:"numLaps"`
		Params      Params        `json:"params" yaml:"params"`
		Stats       *Stats        `json:"stats,omitempty" yaml:"stats,omitempty"`
		Degradation model.Rates   `json:"degradation" yaml:"degradation"`
		Stints      []model.Stint `json:"stints" yaml:"stints"`
		PlannedPit  PlannedPit    `json:"plannedPit" yaml:"plannedPit"`
		Advice      Advice        `json:"advice" yaml:"advice"`
		Strategy    Strategy      `json:"strategy" yaml:"strategy"`
	}
	Params struct {
		WearThreshold    float64 `json:"wearThreshold" yaml:"wearThreshold"`
		RaceLaps         int     `json:"raceLaps" yaml:"raceLaps"`
		RequiredPitstops int     `json:"requiredPitstops" yaml:"requiredPitstops"`
		MinCompounds     int     `json:"minCompounds" yaml:"minCompounds"`
		RecentLaps       int     `json:"recentLaps" yaml:"recentLaps"`
	}
	Stats struct {
		FastestLap        model.LapRecord `json:"fastestLap" yaml:"fastestLap"`
		FastestStintLap   model.LapRecord `json:"fastestStintLap" yaml:"fastestStintLap"`
		AvgStintLapTime   float64         `json:"avgStintLapTime" yaml:"avgStintLapTime"`
		LastLap           model.LapRecord `json:"lastLap" yaml:"lastLap"`
		DeltaToStintAvg   float64         `json:"deltaToStintAvg" yaml:"deltaToStintAvg"`
		DeltaToStintBest  float64         `json:"deltaToStintBest" yaml:"deltaToStintBest"`
		DeltaToFastestLap float64         `json:"deltaToFastestLap" yaml:"deltaToFastestLap"`
	}
	PlannedPit struct {
		Lap         *float64 `json:"lap" yaml:"lap"`
		Reason      string   `json:"reason,omitempty" yaml:"reason,omitempty"`
		CurrentWear float64  `json:"currentWear" yaml:"currentWear"`
		Degradation float64  `json:"degradation" yaml:"degradation"`
		LapsNeeded  *float64 `json:"lapsNeeded" yaml:"lapsNeeded"`
	}
	Advice struct {
		Valid  bool    `json:"valid" yaml:"valid"`
		PitNow bool    `json:"pitNow" yaml:"pitNow"`
		Wear   float64 `json:"wear" yaml:"wear"`
		Reason string  `json:"reason" yaml:"reason"`
	}
	Strategy struct {
		Plan     []racestints.PlanEntry `json:"plan" yaml:"plan"`
		PitLaps  []int                  `json:"pitLaps" yaml:"pitLaps"`
		Parts    []string               `json:"parts" yaml:"parts"`
		Warnings []string               `json:"warnings,omitempty" yaml:"warnings,omitempty"`
		Reason   string                 `json:"reason,omitempty" yaml:"reason,omitempty"`
	}
)

// Build runs the complete analysis on laps.
// Only invalid strategy parameters yield an error, missing data is reported
// by the reason fields of the report.
//
//nolint:funlen // readability
func Build(ctx context.Context, laps []model.LapRecord, p config.Strategy) (*Report, error) {
	ctx, span := tracer.Start(ctx, "report.Build",
		trace.WithAttributes(attribute.Int("laps", len(laps))))
	defer span.End()

	id := uuid.NewString()
	logger := log.GetFromContext(ctx).Named("report").With(log.String("id", id))

	raceLaps, err := ResolveRaceLaps(laps, p)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	ret := &Report{
		ID:      id,
		NumLaps: len(laps),
		Params: Params{
			WearThreshold:    p.WearThreshold,
			RaceLaps:         raceLaps,
			RequiredPitstops: p.RequiredPitstops,
			MinCompounds:     p.MinCompounds,
			RecentLaps:       p.RecentLaps,
		},
	}

	if s := stats.Compute(laps); s.Valid {
		ret.Stats = &Stats{
			FastestLap:        s.FastestLap,
			FastestStintLap:   s.FastestStintLap,
			AvgStintLapTime:   s.AvgStintLapTime,
			LastLap:           s.LastLap,
			DeltaToStintAvg:   s.DeltaToStintAvg,
			DeltaToStintBest:  s.DeltaToStintBest,
			DeltaToFastestLap: s.DeltaToFastestLap,
		}
	}

	ret.Degradation = degradation.Estimate(laps)
	logger.Debug("degradation", log.Any("rates", ret.Degradation))

	ret.Stints = stints.Segment(laps, stints.WearOrCompound)
	logger.Debug("stints", log.Int("count", len(ret.Stints)))

	ret.PlannedPit = convertPrediction(pit.PlannedPit(laps, p.WearThreshold))
	a := pit.Advise(laps, p.WearThreshold, p.RecentLaps)
	ret.Advice = Advice{Valid: a.Valid, PitNow: a.PitNow, Wear: a.Wear, Reason: a.Reason}

	calc := racestints.NewCompoundStintCalc(ret.Degradation, &racestints.CompoundCalcParams{
		RaceLaps:         raceLaps,
		RequiredPitstops: p.RequiredPitstops,
		WearThreshold:    p.WearThreshold,
		MinCompounds:     p.MinCompounds,
	})
	res, err := calc.Calc()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	ret.Strategy = Strategy{
		Plan:     res.Plan(),
		PitLaps:  res.PitLaps(),
		Parts:    lo.Map(res.Parts, func(p racestints.Part, _ int) string { return p.Output() }),
		Warnings: res.Warnings,
		Reason:   res.Reason,
	}
	for _, w := range res.Warnings {
		logger.Warn("strategy", log.String("warning", w))
	}
	logger.Info("report created",
		log.Int("laps", len(laps)),
		log.Int("stints", len(ret.Stints)),
		log.Int("planStints", len(ret.Strategy.Plan)))
	return ret, nil
}

// ResolveRaceLaps returns the race length in laps. With a race duration the
// laps are derived from the average lap time of laps.
func ResolveRaceLaps(laps []model.LapRecord, p config.Strategy) (int, error) {
	if p.RaceDuration <= 0 || len(laps) == 0 {
		return p.RaceLaps, nil
	}
	avg := stat.Mean(lo.Map(laps, func(l model.LapRecord, _ int) float64 {
		return l.LapTime
	}), nil)
	return racestints.RaceLapsForDuration(&racestints.DurationParams{
		RaceDur:  p.RaceDuration,
		AvgLap:   time.Duration(avg * float64(time.Second)),
		PitTime:  p.PitTime,
		Pitstops: p.RequiredPitstops,
	})
}

func convertPrediction(pred pit.Prediction) PlannedPit {
	ret := PlannedPit{
		Reason:      pred.Reason,
		CurrentWear: pred.CurrentWear,
		Degradation: pred.Degradation,
	}
	if lap, ok := pred.Lap.Get(); ok {
		ret.Lap = &lap
	}
	if !math.IsInf(pred.LapsNeeded, 0) && pred.Stint.LapCount >= 2 {
		ret.LapsNeeded = lo.ToPtr(pred.LapsNeeded)
	}
	return ret
}
