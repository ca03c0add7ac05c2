package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/wine-insight/internal/weather"
)

// zeroResultsMessage is the error text the geocoder package returns for a
// ZERO_RESULTS status.
const zeroResultsMessage = "No results found."

// geocodeFunc matches geocoder.Geocoding so tests can stub the Google call.
type geocodeFunc func(geocoder.Address) (geocoder.Location, error)

// GoogleRegionGeocoder implements weather.RegionGeocoder with the Google
// Geocoding API.
type GoogleRegionGeocoder struct {
	geocode geocodeFunc
}

// NewGoogleRegionGeocoder configures the geocoder package with apiKey. The key
// is package-global in the underlying library, so only one instance should exist.
func NewGoogleRegionGeocoder(apiKey string) *GoogleRegionGeocoder {
	geocoder.ApiKey = apiKey
	return &GoogleRegionGeocoder{geocode: geocoder.Geocoding}
}

// Geocode resolves a region such as "Rioja, Spain". The underlying client has
// no context support, so ctx only bounds how long the caller waits. A region
// Google does not know is ErrNoLocation; every other failure is
// ErrUpstreamFetchFailed.
func (g *GoogleRegionGeocoder) Geocode(ctx context.Context, region string) (weather.Location, error) {
	region = strings.TrimSpace(region)
	if region == "" {
		return weather.Location{}, fmt.Errorf("%w: empty region", weather.ErrNoLocation)
	}

	type result struct {
		loc geocoder.Location
		err error
	}
	done := make(chan result, 1)
	go func() {
		// Geocoding indexes the first result without checking unknown statuses.
		defer func() {
			if p := recover(); p != nil {
				done <- result{err: fmt.Errorf("geocoder panicked: %v", p)}
			}
		}()
		loc, err := g.geocode(geocoder.Address{City: region})
		done <- result{loc, err}
	}()

	select {
	case <-ctx.Done():
		return weather.Location{}, fmt.Errorf("%w: geocode %q: %w", weather.ErrUpstreamFetchFailed, region, ctx.Err())
	case r := <-done:
		if r.err != nil {
			if r.err.Error() == zeroResultsMessage {
				return weather.Location{}, fmt.Errorf("%w: geocode %q: %w", weather.ErrNoLocation, region, r.err)
			}
			return weather.Location{}, fmt.Errorf("%w: geocode %q: %w", weather.ErrUpstreamFetchFailed, region, r.err)
		}
		return weather.Location{
			Region:    region,
			Latitude:  r.loc.Latitude,
			Longitude: r.loc.Longitude,
		}, nil
	}
}
