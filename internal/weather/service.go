package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/i474232898/wine-insight/internal/observability"
)

const (
	// DefaultFetchTimeout bounds a single call to the daily source.
	DefaultFetchTimeout = 20 * time.Second

	// HistoryYears is how many seasons before the reference year are analyzed.
	HistoryYears = 20

	// EarliestYear is the first season ever requested.
	EarliestYear = 1980
)

// Request describes one growing-season analysis.
type Request struct {
	Location Location
	Season   SeasonWindow
	Vintage  *int
}

// Service fetches daily weather for a location and reduces it to a Report.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	source  DailySource
	clock   clockwork.Clock
	timeout time.Duration
	logger  *slog.Logger
	metrics *observability.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used to pick the last complete year.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithFetchTimeout overrides DefaultFetchTimeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger overrides slog.Default for service logs.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMetrics records report outcomes and fetch durations in m.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a new Service reading from source.
func NewService(source DailySource, opts ...Option) *Service {
	s := &Service{
		source:  source,
		clock:   clockwork.NewRealClock(),
		timeout: DefaultFetchTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// YearRange returns the inclusive span of seasons to analyze. The end is the
// last fully elapsed calendar year; the start reaches HistoryYears back from
// the vintage (or the end year), never before EarliestYear or after the end.
func YearRange(now time.Time, vintage *int) (start, end int) {
	end = now.UTC().Year() - 1

	ref := end
	if vintage != nil && *vintage < end {
		ref = *vintage
	}

	start = max(ref-HistoryYears, EarliestYear)
	start = min(start, end)
	return start, end
}

// Aggregate performs one fetch from the daily source and builds the report.
// Errors are ErrNoLocation, ErrUpstreamFetchFailed or ErrNoWeatherData.
func (s *Service) Aggregate(ctx context.Context, req Request) (Report, error) {
	report, err := s.aggregate(ctx, req)
	s.metrics.ObserveClimateReport(outcomeOf(err))
	return report, err
}

func (s *Service) aggregate(ctx context.Context, req Request) (Report, error) {
	loc := req.Location
	if !loc.Valid() {
		return Report{}, fmt.Errorf("%w: latitude=%v longitude=%v", ErrNoLocation, loc.Latitude, loc.Longitude)
	}

	season, defaulted := req.Season.Resolve()
	if defaulted {
		s.logger.Warn("season window not usable; using default",
			"requested", req.Season, "default", season, "location", loc.Key())
	}

	startYear, endYear := YearRange(s.clock.Now(), req.Vintage)

	fetchReq := DailyRequest{
		Location: loc,
		Start:    season.StartDate(startYear),
		End:      season.EndDate(endYear),
	}

	series, err := s.fetch(ctx, fetchReq)
	if err != nil {
		return Report{}, err
	}

	years := Summarize(BucketByYear(Observations(series), season))
	if len(years) == 0 {
		return Report{}, fmt.Errorf("%w: no season with temperature readings for %s", ErrNoWeatherData, loc.Key())
	}

	avg := AverageSummaries(years)

	var selected *YearlySummary
	if req.Vintage != nil {
		selected = FindYear(years, *req.Vintage)
	}

	s.logger.Debug("climate report built",
		"location", loc.Key(), "start_year", startYear, "end_year", endYear, "years", len(years))

	return Report{
		Region:            loc.Region,
		Latitude:          loc.Latitude,
		Longitude:         loc.Longitude,
		Season:            season,
		SeasonDefaulted:   defaulted,
		StartYear:         startYear,
		EndYear:           endYear,
		SelectedVintage:   req.Vintage,
		AllYearsAverage:   avg,
		SelectedYear:      selected,
		SelectedVsAverage: Compare(selected, avg),
		YearlyMetrics:     years,
	}, nil
}

func (s *Service) fetch(ctx context.Context, req DailyRequest) (DailySeries, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	series, err := s.source.FetchDaily(fetchCtx, req)
	s.metrics.ObserveArchiveFetch(time.Since(started))

	if err != nil {
		s.logger.Error("daily weather fetch failed", "location", req.Location.Key(), "error", err)
		if errors.Is(err, ErrNoWeatherData) || errors.Is(err, ErrUpstreamFetchFailed) {
			return DailySeries{}, err
		}
		return DailySeries{}, fmt.Errorf("%w: %w", ErrUpstreamFetchFailed, err)
	}

	if !series.Complete() {
		return DailySeries{}, fmt.Errorf("%w: response is missing daily arrays", ErrNoWeatherData)
	}
	return series, nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return observability.OutcomeOK
	case errors.Is(err, ErrNoLocation):
		return observability.OutcomeNoLocation
	case errors.Is(err, ErrNoWeatherData):
		return observability.OutcomeNoData
	default:
		return observability.OutcomeUpstreamError
	}
}
