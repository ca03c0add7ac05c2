package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/wine-insight/internal/catalog"
	"github.com/i474232898/wine-insight/internal/observability"
	"github.com/i474232898/wine-insight/internal/weather"
	"github.com/i474232898/wine-insight/internal/wine"
)

var validate = validator.New()

// ClimateAggregator builds growing-season reports.
type ClimateAggregator interface {
	Aggregate(ctx context.Context, req weather.Request) (weather.Report, error)
}

// Deps are the collaborators the handlers need. Geocoder, Metrics and Logger
// may be nil.
type Deps struct {
	Catalog  *catalog.Catalog
	Climate  ClimateAggregator
	Geocoder weather.RegionGeocoder
	Metrics  *observability.Metrics
	Logger   *slog.Logger
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	h := &handlers{deps}

	v1 := app.Group("/api/v1")
	v1.Get("/wines/lookup", h.lookup)
	v1.Get("/wines/explain", h.explain)
	v1.Get("/climate", h.climate)
}

type handlers struct {
	Deps
}

// lookupResponse is the normalized query together with its catalog match.
type lookupResponse struct {
	wine.Query
	Match *catalog.Match `json:"xwines_dataset_match"`
}

// explainResponse adds the growing-season analysis, which is either a
// weather.Report or an unavailableWeather value.
type explainResponse struct {
	lookupResponse
	Weather any `json:"growing_season_weather"`
}

type unavailableWeather struct {
	Available bool   `json:"available"`
	Error     string `json:"error"`
}

func (h *handlers) lookup(c *fiber.Ctx) error {
	resp, err := h.lookupWine(c)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func (h *handlers) climate(c *fiber.Ctx) error {
	var q climateQuery
	if err := q.bind(c); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	report, err := h.report(c.UserContext(), q, q.Vintage)
	if err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}
	return c.JSON(report)
}

func (h *handlers) explain(c *fiber.Ctx) error {
	resp, err := h.lookupWine(c)
	if err != nil {
		return err
	}

	out := explainResponse{lookupResponse: resp}

	var q climateQuery
	if err := q.bind(c); err != nil {
		h.Logger.Warn("growing season query rejected", "wine", resp.Name, "error", err)
		out.Weather = unavailableWeather{Available: false, Error: err.Error()}
		return c.JSON(out)
	}

	report, err := h.report(c.UserContext(), q, resp.Vintage)
	if err != nil {
		h.Logger.Warn("growing season weather unavailable", "wine", resp.Name, "error", err)
		out.Weather = unavailableWeather{Available: false, Error: err.Error()}
	} else {
		out.Weather = report
	}
	return c.JSON(out)
}

func (h *handlers) lookupWine(c *fiber.Ctx) (lookupResponse, error) {
	var q lookupQuery
	if err := q.bind(c); err != nil {
		return lookupResponse{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	query, err := wine.Normalize(q.Name, q.Vintage)
	if err != nil {
		return lookupResponse{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	match := catalog.Search(h.Catalog, query.Name)
	h.Metrics.ObserveMatch(match != nil)

	return lookupResponse{Query: query, Match: match}, nil
}

func (h *handlers) report(ctx context.Context, q climateQuery, vintage *int) (weather.Report, error) {
	loc, err := h.resolveLocation(ctx, q)
	if err != nil {
		outcome := observability.OutcomeNoLocation
		if errors.Is(err, weather.ErrUpstreamFetchFailed) {
			outcome = observability.OutcomeUpstreamError
		}
		h.Metrics.ObserveClimateReport(outcome)
		return weather.Report{}, err
	}
	return h.Climate.Aggregate(ctx, weather.Request{
		Location: loc,
		Season:   q.Season,
		Vintage:  vintage,
	})
}

// resolveLocation prefers explicit coordinates and falls back to geocoding
// the region name when a geocoder is configured.
func (h *handlers) resolveLocation(ctx context.Context, q climateQuery) (weather.Location, error) {
	if q.Lat != "" || q.Lon != "" {
		return weather.ParseLocation(q.Region, q.Lat, q.Lon)
	}
	if q.Region != "" && h.Geocoder != nil {
		return h.Geocoder.Geocode(ctx, q.Region)
	}
	return weather.Location{}, fmt.Errorf("%w: lat and lon (or a geocodable region) are required", weather.ErrNoLocation)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, weather.ErrNoLocation):
		return fiber.StatusBadRequest
	case errors.Is(err, weather.ErrNoWeatherData):
		return fiber.StatusNotFound
	case errors.Is(err, weather.ErrUpstreamFetchFailed):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// lookupQuery holds query parameters identifying a wine.
type lookupQuery struct {
	Name    string `validate:"required,max=300"`
	Vintage *int   `validate:"omitempty,gte=1900,lte=2100"`
}

func (l *lookupQuery) bind(c *fiber.Ctx) error {
	l.Name = c.Query("name")

	vintage, err := optionalInt(c, "vintage")
	if err != nil {
		return err
	}
	l.Vintage = vintage

	return validate.Struct(l)
}

// climateQuery holds query parameters for the growing-season analysis.
// Out-of-range season fields are not rejected here; the service falls back
// to the default window for them.
type climateQuery struct {
	Lat     string
	Lon     string
	Region  string `validate:"max=200"`
	Vintage *int   `validate:"omitempty,gte=1900,lte=2100"`
	Season  weather.SeasonWindow
}

func (q *climateQuery) bind(c *fiber.Ctx) error {
	q.Lat = strings.TrimSpace(c.Query("lat"))
	q.Lon = strings.TrimSpace(c.Query("lon"))
	q.Region = strings.TrimSpace(c.Query("region"))

	vintage, err := optionalInt(c, "vintage")
	if err != nil {
		return err
	}
	q.Vintage = vintage

	season, err := parseSeason(c)
	if err != nil {
		return err
	}
	q.Season = season

	return validate.Struct(q)
}

// parseSeason reads the four season fields. When none is given the default
// window is used as is.
func parseSeason(c *fiber.Ctx) (weather.SeasonWindow, error) {
	names := []string{"start_month", "start_day", "end_month", "end_day"}
	values := make([]int, len(names))
	given := false

	for i, name := range names {
		v, err := optionalInt(c, name)
		if err != nil {
			return weather.SeasonWindow{}, err
		}
		if v != nil {
			values[i] = *v
			given = true
		}
	}

	if !given {
		return weather.DefaultSeason, nil
	}
	return weather.SeasonWindow{
		StartMonth: values[0],
		StartDay:   values[1],
		EndMonth:   values[2],
		EndDay:     values[3],
	}, nil
}

func optionalInt(c *fiber.Ctx, name string) (*int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", name)
	}
	return &v, nil
}
