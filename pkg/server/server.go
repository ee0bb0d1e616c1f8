package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/mpapenbr/iracelog-tirestrategy/log"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/config"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/ingest/csvlaps"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/racestints"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/report"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/utils"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/utils/cache"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/utils/cache/loadercache"
)

const maxBodySize = 10 << 20

var contentTypes = map[string]string{
	report.FormatJSON: "application/json",
	report.FormatYAML: "application/yaml",
	report.FormatText: "text/plain; charset=utf-8",
}

// errBadInput marks errors caused by the uploaded data
type errBadInput struct{ err error }

func (e errBadInput) Error() string { return e.err.Error() }
func (e errBadInput) Unwrap() error { return e.err }

type (
	Option func(s *Server)
	Server struct {
		defaults config.Strategy
		l        *log.Logger
		analyses metric.Int64Counter
		cacheTTL time.Duration
		reports  cache.Cache[string, report.Report]
	}
)

func NewServer(opts ...Option) *Server {
	ret := &Server{
		defaults: config.DefaultStrategy(),
		l:        log.Default().Named("server"),
		cacheTTL: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(ret)
	}
	ret.reports = loadercache.New(
		loadercache.WithName[string, report.Report]("reports"),
		loadercache.WithExpiration[string, report.Report](ret.cacheTTL),
		loadercache.WithLogger[string, report.Report](ret.l.Named("cache")))
	var err error
	ret.analyses, err = otel.Meter("github.com/mpapenbr/iracelog-tirestrategy/pkg/server").
		Int64Counter("tirestrat.analyses",
			metric.WithDescription("number of analysis requests"))
	if err != nil {
		ret.l.Warn("could not create counter", log.ErrorField(err))
	}
	return ret
}

func WithDefaults(arg config.Strategy) Option {
	return func(s *Server) {
		s.defaults = arg
	}
}

// WithCacheTTL sets how long reports of identical requests are reused
func WithCacheTTL(arg time.Duration) Option {
	return func(s *Server) {
		s.cacheTTL = arg
	}
}

func WithLogger(arg *log.Logger) Option {
	return func(s *Server) {
		s.l = arg
	}
}

// Handler returns the http handler serving POST /analyze
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /analyze", s.analyze)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// analyze expects the CSV lap data as request body. Strategy parameters may be
// overridden by query parameters.
func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	ctx := log.AddToContext(r.Context(), s.l)
	format := r.URL.Query().Get("format")
	if format == "" {
		format = report.FormatJSON
	}
	contentType, ok := contentTypes[format]
	if !ok {
		s.fail(w, r, http.StatusBadRequest,
			fmt.Errorf("%w %q", report.ErrUnknownFormat, format))
		return
	}
	params, err := s.strategyParams(r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	key := utils.HashKey(body, fmt.Appendf(nil, "%+v", params))
	res, err := s.reports.GetOrLoad(ctx, key,
		func(ctx context.Context) (*report.Report, error) {
			laps, err := csvlaps.Read(bytes.NewReader(body))
			if err != nil {
				return nil, errBadInput{err}
			}
			return report.Build(ctx, laps, params)
		})
	if err != nil {
		status := http.StatusInternalServerError
		var bad errBadInput
		if errors.As(err, &bad) || errors.Is(err, racestints.ErrInvalidParam) {
			status = http.StatusBadRequest
		}
		s.fail(w, r, status, err)
		return
	}
	s.count(r, "ok")
	w.Header().Set("Content-Type", contentType)
	if err := report.Write(w, res, format, r.URL.Query().Get("query")); err != nil {
		s.l.Error("could not write report", log.ErrorField(err))
	}
}

//nolint:cyclop // one branch per parameter
func (s *Server) strategyParams(r *http.Request) (config.Strategy, error) {
	ret := s.defaults
	q := r.URL.Query()
	var err error
	parseInt := func(name string, target *int) {
		if v := q.Get(name); v != "" && err == nil {
			if *target, err = strconv.Atoi(v); err != nil {
				err = fmt.Errorf("parameter %s: %w", name, err)
			}
		}
	}
	if v := q.Get("wear-threshold"); v != "" {
		if ret.WearThreshold, err = strconv.ParseFloat(v, 64); err != nil {
			return ret, fmt.Errorf("parameter wear-threshold: %w", err)
		}
	}
	if v := q.Get("race-duration"); v != "" {
		if ret.RaceDuration, err = time.ParseDuration(v); err != nil {
			return ret, fmt.Errorf("parameter race-duration: %w", err)
		}
	}
	if v := q.Get("pit-time"); v != "" {
		if ret.PitTime, err = time.ParseDuration(v); err != nil {
			return ret, fmt.Errorf("parameter pit-time: %w", err)
		}
	}
	parseInt("race-laps", &ret.RaceLaps)
	parseInt("pitstops", &ret.RequiredPitstops)
	parseInt("min-compounds", &ret.MinCompounds)
	parseInt("recent-laps", &ret.RecentLaps)
	return ret, err
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.l.Warn("analysis failed", log.Int("status", status), log.ErrorField(err))
	s.count(r, "error")
	http.Error(w, err.Error(), status)
}

func (s *Server) count(r *http.Request, result string) {
	if s.analyses == nil {
		return
	}
	s.analyses.Add(r.Context(), 1,
		metric.WithAttributes(attribute.String("result", result)))
}
