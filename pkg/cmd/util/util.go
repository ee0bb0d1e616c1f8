package util

import (
	"context"
	"fmt"

	"github.com/mpapenbr/iracelog-tirestrategy/log"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/ingest/csvlaps"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/model"
)

func ParseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

// LoadLaps reads the lap records of a CSV file
func LoadLaps(ctx context.Context, file string) ([]model.LapRecord, error) {
	logger := log.GetFromContext(ctx).Named("load")
	laps, err := csvlaps.ReadFile(file)
	if err != nil {
		logger.Error("could not read laps", log.String("file", file), log.ErrorField(err))
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}
	logger.Debug("laps loaded", log.String("file", file), log.Int("laps", len(laps)))
	return laps, nil
}
