package config

import "time"

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	LogLevel          string // sets the log level (zap log level values)
	LogFormat         string // text vs json
	LogFilter         string // zapfilter rules, e.g. "debug:report,server.* info:*"
	EnableTelemetry   bool   // enable telemetry
	TelemetryEndpoint string // endpoint for telemetry ("stdout" uses stdout exporters)
	ServerAddr        string // listen addr for the http server
	OutputFormat      string // text, json or yaml
	Query             string // JSONPath expression applied to json output
)

const (
	DefaultWearThreshold    = 70.0
	DefaultRaceLaps         = 54
	DefaultRequiredPitstops = 2
	DefaultMinCompounds     = 2
	DefaultRecentLaps       = 3
)

// Strategy holds the parameters consumed by the analysis
type Strategy struct {
	WearThreshold    float64       // average wear (percent) at which tires should be changed
	RaceLaps         int           // race length in laps
	RaceDuration     time.Duration // if > 0 race laps are derived from this and the avg lap time
	PitTime          time.Duration // time lost per pit stop, used with RaceDuration
	RequiredPitstops int           // mandatory pit stops
	MinCompounds     int           // minimum number of distinct compounds to use
	RecentLaps       int           // laps considered for the immediate pit advice
}

// StrategyArgs is filled by the command line flags
var StrategyArgs = DefaultStrategy()

func DefaultStrategy() Strategy {
	return Strategy{
		WearThreshold:    DefaultWearThreshold,
		RaceLaps:         DefaultRaceLaps,
		RequiredPitstops: DefaultRequiredPitstops,
		MinCompounds:     DefaultMinCompounds,
		RecentLaps:       DefaultRecentLaps,
	}
}
