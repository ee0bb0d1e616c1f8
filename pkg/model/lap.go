package model

import "gonum.org/v1/gonum/floats"

// Compound is the tire compound label as found in the data.
// The set is open, the constants are the usual dry compounds.
type Compound string

const (
	CompoundSoft   Compound = "Soft"
	CompoundMedium Compound = "Medium"
	CompoundHard   Compound = "Hard"
)

// Corner indexes the Wear array of a LapRecord
type Corner int

const (
	FrontLeft Corner = iota
	FrontRight
	RearLeft
	RearRight
	NumCorners
)

// LapRecord holds the telemetry of a single lap.
// LapTime is in seconds, Wear holds the wear percentage per corner.
type LapRecord struct {
	Lap      int                 `json:"lap" yaml:"lap"`
	LapTime  float64             `json:"lapTime" yaml:"lapTime"`
	Compound Compound            `json:"compound" yaml:"compound"`
	Wear     [NumCorners]float64 `json:"wear" yaml:"wear,flow"`
}

// AvgWear is the mean wear over all four corners
func (l LapRecord) AvgWear() float64 {
	return floats.Sum(l.Wear[:]) / float64(NumCorners)
}
