package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/wine-insight/internal/weather"
)

// DefaultUserAgent identifies this service to upstream APIs.
const DefaultUserAgent = "wine-insight/1.0"

// dailyVariables are the Open-Meteo daily aggregates the climate report needs.
const dailyVariables = "temperature_2m_max,temperature_2m_min,precipitation_sum"

// OpenMeteoArchiveProvider implements weather.DailySource using the Open-Meteo
// historical weather archive.
type OpenMeteoArchiveProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewOpenMeteoArchiveProvider returns a provider reading from baseURL.
func NewOpenMeteoArchiveProvider(client *http.Client, baseURL string) *OpenMeteoArchiveProvider {
	return &OpenMeteoArchiveProvider{
		name:    "openmeteo-archive",
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client:    client,
			UserAgent: DefaultUserAgent,
		},
		circuit: newCircuitBreaker("openmeteo-archive"),
	}
}

func (p *OpenMeteoArchiveProvider) Name() string {
	return p.name
}

// FetchDaily requests daily max/min temperature and precipitation in UTC for
// the inclusive date range of req.
func (p *OpenMeteoArchiveProvider) FetchDaily(ctx context.Context, req weather.DailyRequest) (weather.DailySeries, error) {
	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%.4f", req.Location.Latitude))
		values.Set("longitude", fmt.Sprintf("%.4f", req.Location.Longitude))
		values.Set("start_date", req.Start.Format(time.DateOnly))
		values.Set("end_date", req.End.Format(time.DateOnly))
		values.Set("daily", dailyVariables)
		values.Set("timezone", "UTC")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.DailySeries{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Daily *weather.DailySeries `json:"daily"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.DailySeries{}, fmt.Errorf("decode %s response: %w", p.name, err)
	}

	if payload.Daily == nil || len(payload.Daily.Time) == 0 {
		return weather.DailySeries{}, fmt.Errorf("%w: %s returned no daily block", weather.ErrNoWeatherData, p.name)
	}

	return *payload.Daily, nil
}

// upstreamReason extracts the "reason" field Open-Meteo sends with 4xx errors.
func upstreamReason(resp *http.Response) string {
	var body struct {
		Reason string `json:"reason"`
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || json.Unmarshal(data, &body) != nil || body.Reason == "" {
		return ""
	}
	return " (" + body.Reason + ")"
}
