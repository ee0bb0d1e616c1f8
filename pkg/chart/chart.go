package chart

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/mpapenbr/iracelog-tirestrategy/pkg/model"
)

type Options struct {
	Title     string
	Threshold float64
	Width     vg.Length
	Height    vg.Length
}

func DefaultOptions() Options {
	return Options{
		Title:  "Average tire wear per lap",
		Width:  14 * vg.Inch,
		Height: 6 * vg.Inch,
	}
}

// Build creates a plot with one line per stint and a horizontal line for the
// wear threshold if it is > 0.
func Build(laps []model.LapRecord, stints []model.Stint, opts Options) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "Lap"
	p.Y.Label.Text = "Average wear (%)"

	for i, s := range stints {
		pts := make(plotter.XYs, 0, s.LapCount)
		for _, l := range s.Laps(laps) {
			pts = append(pts, plotter.XY{X: float64(l.Lap), Y: l.AvgWear()})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("Stint %d (%s)", s.Index, s.Compound), line)
	}

	if opts.Threshold > 0 && len(laps) > 0 {
		limit, err := plotter.NewLine(plotter.XYs{
			{X: float64(laps[0].Lap), Y: opts.Threshold},
			{X: float64(laps[len(laps)-1].Lap), Y: opts.Threshold},
		})
		if err != nil {
			return nil, err
		}
		limit.Color = color.RGBA{R: 200, A: 255}
		limit.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
		p.Add(limit)
		p.Legend.Add("threshold", limit)
	}

	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())
	return p, nil
}

// Render builds the chart and saves it to file. The image format is derived
// from the file extension.
func Render(laps []model.LapRecord, stints []model.Stint, opts Options, file string) error {
	p, err := Build(laps, stints, opts)
	if err != nil {
		return err
	}
	return p.Save(opts.Width, opts.Height, file)
}
