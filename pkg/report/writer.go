package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var ErrUnknownFormat = errors.New("unknown output format")

var jsonOptions = oj.Options{Indent: 2, UseTags: true, KeyExact: true}

// Write dispatches to the writer for format. query is only used with json.
func Write(w io.Writer, r *Report, format, query string) error {
	switch format {
	case FormatText:
		return WriteText(w, r)
	case FormatJSON:
		return WriteJSON(w, r, query)
	case FormatYAML:
		return WriteYAML(w, r)
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
}

// WriteJSON writes the report as JSON. If query is set, only the values
// selected by this JSONPath expression are written.
func WriteJSON(w io.Writer, r *Report, query string) error {
	b, err := oj.Marshal(r, &jsonOptions)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if query != "" {
		if b, err = applyQuery(b, query); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func applyQuery(data []byte, query string) ([]byte, error) {
	x, err := jp.ParseString(query)
	if err != nil {
		return nil, fmt.Errorf("parse query %q: %w", query, err)
	}
	doc, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	var result any
	switch found := x.Get(doc); len(found) {
	case 0:
		result = nil
	case 1:
		result = found[0]
	default:
		result = found
	}
	return []byte(oj.JSON(result, &jsonOptions)), nil
}

func WriteYAML(w io.Writer, r *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return enc.Close()
}

//nolint:funlen // readability
func WriteText(w io.Writer, r *Report) error {
	b := &strings.Builder{}
	if s := r.Stats; s != nil {
		fmt.Fprintln(b, "==== Race Statistics ====")
		fmt.Fprintf(b, "Fastest lap (all time): Lap %d - %ss on %s\n",
			s.FastestLap.Lap, fixed(s.FastestLap.LapTime, 3), s.FastestLap.Compound)
		fmt.Fprintf(b, "Fastest lap (current stint): Lap %d - %ss\n",
			s.FastestStintLap.Lap, fixed(s.FastestStintLap.LapTime, 3))
		fmt.Fprintf(b, "Average lap time (current stint): %ss\n", fixed(s.AvgStintLapTime, 3))
		fmt.Fprintf(b, "Last lap: Lap %d - %ss\n", s.LastLap.Lap, fixed(s.LastLap.LapTime, 3))
		fmt.Fprintf(b, "Delta to avg (current stint): %ss\n", signed(s.DeltaToStintAvg, 3))
		fmt.Fprintf(b, "Delta to fastest (current stint): %ss\n", signed(s.DeltaToStintBest, 3))
		fmt.Fprintf(b, "Delta to fastest (all time): %ss\n", signed(s.DeltaToFastestLap, 3))
	}

	fmt.Fprintln(b, "\nAverage degradation per compound:")
	for _, cr := range r.Degradation {
		fmt.Fprintf(b, "  %s: %s%% per lap\n", cr.Compound, fixed(cr.Rate, 2))
	}

	fmt.Fprintln(b)
	if r.PlannedPit.Lap != nil {
		fmt.Fprintf(b, "Planned pitstop around lap %s\n",
			decimal.NewFromFloat(*r.PlannedPit.Lap).RoundBank(0).String())
	} else {
		fmt.Fprintf(b, "No planned pitstop: %s\n", r.PlannedPit.Reason)
	}

	switch {
	case !r.Advice.Valid:
		fmt.Fprintf(b, "No current pit advice: %s\n", r.Advice.Reason)
	case r.Advice.PitNow:
		fmt.Fprintf(b, "Immediate pitstop recommended! Recent average wear: %s%%\n",
			fixed(r.Advice.Wear, 2))
	default:
		fmt.Fprintf(b, "No immediate pitstop needed. Recent average wear: %s%%\n",
			fixed(r.Advice.Wear, 2))
	}

	fmt.Fprintln(b, "\nStint summaries:")
	for _, s := range r.Stints {
		fmt.Fprintf(b, "  Stint %d: %d-%d (%d laps) on %s\n",
			s.Index, s.FirstLap, s.LastLap, s.LapCount, s.Compound)
	}

	fmt.Fprintf(b, "\nStrategy (%d laps, %d stops, threshold %s%%):\n",
		r.Params.RaceLaps, r.Params.RequiredPitstops, fixed(r.Params.WearThreshold, 0))
	if r.Strategy.Reason != "" {
		fmt.Fprintf(b, "  %s\n", r.Strategy.Reason)
	}
	for _, p := range r.Strategy.Parts {
		fmt.Fprintf(b, "  %s\n", p)
	}
	for _, warn := range r.Strategy.Warnings {
		fmt.Fprintf(b, "  Warning: %s\n", warn)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

func signed(v float64, places int32) string {
	d := decimal.NewFromFloat(v)
	if d.Sign() >= 0 {
		return "+" + d.StringFixed(places)
	}
	return d.StringFixed(places)
}
