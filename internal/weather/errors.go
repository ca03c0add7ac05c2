package weather

import "errors"

var (
	// ErrNoLocation is returned when the coordinates are missing or not finite.
	ErrNoLocation = errors.New("no usable location")

	// ErrUpstreamFetchFailed wraps transport, status and decode failures of the
	// daily weather source.
	ErrUpstreamFetchFailed = errors.New("weather data fetch failed")

	// ErrNoWeatherData is returned when the source has no usable daily data
	// for the requested window.
	ErrNoWeatherData = errors.New("no weather data for requested window")
)

// IsUnavailable reports whether err means the weather analysis could not be
// produced. Callers surface all of these as one outcome and keep the error
// for diagnostics.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrNoLocation) ||
		errors.Is(err, ErrUpstreamFetchFailed) ||
		errors.Is(err, ErrNoWeatherData)
}
