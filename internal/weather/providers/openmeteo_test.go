package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/wine-insight/internal/weather"
)

func archiveRequest() weather.DailyRequest {
	return weather.DailyRequest{
		Location: weather.Location{Region: "Napa Valley", Latitude: 38.50251, Longitude: -122.26539},
		Start:    time.Date(2005, time.April, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2025, time.October, 31, 0, 0, 0, 0, time.UTC),
	}
}

func newArchiveServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenMeteoArchive_FetchDaily(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "38.5025", q.Get("latitude"))
		assert.Equal(t, "-122.2654", q.Get("longitude"))
		assert.Equal(t, "2005-04-01", q.Get("start_date"))
		assert.Equal(t, "2025-10-31", q.Get("end_date"))
		assert.Equal(t, "temperature_2m_max,temperature_2m_min,precipitation_sum", q.Get("daily"))
		assert.Equal(t, "UTC", q.Get("timezone"))
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"latitude": 38.5,
			"daily": {
				"time": ["2005-04-01", "2005-04-02"],
				"temperature_2m_max": [21.3, null],
				"temperature_2m_min": [7.1, 6.0],
				"precipitation_sum": [0.0, 4.2]
			}
		}`))
	}))
	defer srv.Close()

	p := NewOpenMeteoArchiveProvider(srv.Client(), srv.URL)
	assert.Equal(t, "openmeteo-archive", p.Name())

	series, err := p.FetchDaily(context.Background(), archiveRequest())
	require.NoError(t, err)

	assert.Equal(t, []string{"2005-04-01", "2005-04-02"}, series.Time)
	require.Len(t, series.TempMax, 2)
	assert.InDelta(t, 21.3, *series.TempMax[0], 1e-9)
	assert.Nil(t, series.TempMax[1])
	assert.InDelta(t, 4.2, *series.Precip[1], 1e-9)
	assert.True(t, series.Complete())
}

func TestOpenMeteoArchive_MissingDaily(t *testing.T) {
	for _, body := range []string{`{"latitude": 38.5}`, `{"daily": {"time": []}}`} {
		srv := newArchiveServer(t, http.StatusOK, body)
		p := NewOpenMeteoArchiveProvider(srv.Client(), srv.URL)

		_, err := p.FetchDaily(context.Background(), archiveRequest())
		assert.ErrorIs(t, err, weather.ErrNoWeatherData, body)
	}
}

func TestOpenMeteoArchive_StatusErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{"server error", http.StatusBadGateway, `oops`, errServerError, "502"},
		{"rate limited", http.StatusTooManyRequests, `{}`, errRateLimited, "rate limited"},
		{"bad request with reason", http.StatusBadRequest, `{"error": true, "reason": "Parameter 'start_date' is out of allowed range"}`, errUnexpected, "out of allowed range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newArchiveServer(t, tt.status, tt.body)
			p := NewOpenMeteoArchiveProvider(srv.Client(), srv.URL)

			_, err := p.FetchDaily(context.Background(), archiveRequest())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.NotErrorIs(t, err, weather.ErrNoWeatherData)
		})
	}
}

func TestOpenMeteoArchive_MalformedJSON(t *testing.T) {
	srv := newArchiveServer(t, http.StatusOK, `{"daily": [`)
	p := NewOpenMeteoArchiveProvider(srv.Client(), srv.URL)

	_, err := p.FetchDaily(context.Background(), archiveRequest())
	require.Error(t, err)
	assert.NotErrorIs(t, err, weather.ErrNoWeatherData)
}

func TestOpenMeteoArchive_CircuitOpensAfterRepeatedFailures(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewOpenMeteoArchiveProvider(srv.Client(), srv.URL)
	for i := 0; i < 6; i++ {
		_, err := p.FetchDaily(context.Background(), archiveRequest())
		require.ErrorIs(t, err, errServerError)
	}

	_, err := p.FetchDaily(context.Background(), archiveRequest())
	assert.ErrorIs(t, err, errCircuitOpen)
	assert.Equal(t, 6, calls, "open circuit must not reach the server")
}

func TestOpenMeteoArchive_RejectedRequestsDoNotTripCircuit(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("latitude") == "999.0000" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error": true, "reason": "Latitude must be in range of -90 to 90°."}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"daily": {"time": ["2005-04-01"], "temperature_2m_max": [20], "temperature_2m_min": [8], "precipitation_sum": [0]}}`))
	}))
	defer srv.Close()

	p := NewOpenMeteoArchiveProvider(srv.Client(), srv.URL)

	bad := archiveRequest()
	bad.Location.Latitude = 999
	for i := 0; i < 10; i++ {
		_, err := p.FetchDaily(context.Background(), bad)
		require.ErrorIs(t, err, errUnexpected)
	}

	series, err := p.FetchDaily(context.Background(), archiveRequest())
	require.NoError(t, err)
	assert.Len(t, series.Time, 1)
	assert.Equal(t, 11, calls)
}

func TestOpenMeteoArchive_CallerCancellationDoesNotTripCircuit(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"daily": {"time": ["2005-04-01"], "temperature_2m_max": [20], "temperature_2m_min": [8], "precipitation_sum": [0]}}`))
	}))
	defer srv.Close()

	p := NewOpenMeteoArchiveProvider(srv.Client(), srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 10; i++ {
		_, err := p.FetchDaily(ctx, archiveRequest())
		require.ErrorIs(t, err, context.Canceled)
	}

	_, err := p.FetchDaily(context.Background(), archiveRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestOpenMeteoArchive_NoRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewOpenMeteoArchiveProvider(srv.Client(), srv.URL)
	_, err := p.FetchDaily(context.Background(), archiveRequest())
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestOpenMeteoArchive_NoClient(t *testing.T) {
	p := NewOpenMeteoArchiveProvider(nil, "http://unused")
	_, err := p.FetchDaily(context.Background(), archiveRequest())
	assert.ErrorIs(t, err, errNoHTTPClient)
}
