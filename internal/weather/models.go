package weather

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Location is a growing region resolved to coordinates.
type Location struct {
	Region    string  `json:"region,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Key returns a canonical string key for this location at 4-decimal precision.
func (l Location) Key() string {
	return fmt.Sprintf("%.4f,%.4f", l.Latitude, l.Longitude)
}

// Valid reports whether both coordinates are finite and on the globe.
func (l Location) Valid() bool {
	return validLatitude(l.Latitude) && validLongitude(l.Longitude)
}

// ParseLocation builds a Location from textual coordinates.
func ParseLocation(region, lat, lon string) (Location, error) {
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil || !validLatitude(la) {
		return Location{}, fmt.Errorf("%w: latitude %q", ErrNoLocation, lat)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil || !validLongitude(lo) {
		return Location{}, fmt.Errorf("%w: longitude %q", ErrNoLocation, lon)
	}
	return Location{Region: strings.TrimSpace(region), Latitude: la, Longitude: lo}, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func validLatitude(f float64) bool {
	return isFinite(f) && f >= -90 && f <= 90
}

func validLongitude(f float64) bool {
	return isFinite(f) && f >= -180 && f <= 180
}

// DailySeries is the raw daily payload of a weather source: parallel columns
// indexed by day. Numeric entries are nil where the source had no value.
type DailySeries struct {
	Time    []string   `json:"time"`
	TempMax []*float64 `json:"temperature_2m_max"`
	TempMin []*float64 `json:"temperature_2m_min"`
	Precip  []*float64 `json:"precipitation_sum"`
}

// Complete reports whether every expected column is present.
func (s DailySeries) Complete() bool {
	return s.Time != nil && s.TempMax != nil && s.TempMin != nil && s.Precip != nil
}

// DailyObservation is one day of weather at a location.
type DailyObservation struct {
	Date     time.Time
	HighC    *float64
	LowC     *float64
	PrecipMm *float64
}

// YearlySummary aggregates one growing season.
type YearlySummary struct {
	Year        int     `json:"year"`
	AvgHighC    float64 `json:"avg_high_c"`
	MaxHighC    float64 `json:"max_high_c"`
	AvgLowC     float64 `json:"avg_low_c"`
	MinLowC     float64 `json:"min_low_c"`
	RainTotalMm float64 `json:"rain_total_mm"`
	RainyDays   int     `json:"rainy_days"`
}

// Averages is the unweighted mean of every summary metric across years.
type Averages struct {
	AvgHighC    float64 `json:"avg_high_c"`
	MaxHighC    float64 `json:"max_high_c"`
	AvgLowC     float64 `json:"avg_low_c"`
	MinLowC     float64 `json:"min_low_c"`
	RainTotalMm float64 `json:"rain_total_mm"`
	RainyDays   float64 `json:"rainy_days"`
}

// Comparison holds the selected vintage minus the all-years average. The two
// extreme deltas compare the vintage's peak and trough against the average
// daily high and low. Every field is nil when there is no selected summary.
type Comparison struct {
	AvgHighDelta     *float64 `json:"avg_high_c_delta"`
	AvgLowDelta      *float64 `json:"avg_low_c_delta"`
	RainTotalDelta   *float64 `json:"rain_total_mm_delta"`
	RainyDaysDelta   *float64 `json:"rainy_days_delta"`
	MaxHighVsAvgHigh *float64 `json:"max_high_vs_avg_high_c"`
	MinLowVsAvgLow   *float64 `json:"min_low_vs_avg_low_c"`
}

// Report is the growing-season climate analysis for one location.
type Report struct {
	Region            string          `json:"region,omitempty"`
	Latitude          float64         `json:"latitude"`
	Longitude         float64         `json:"longitude"`
	Season            SeasonWindow    `json:"season"`
	SeasonDefaulted   bool            `json:"season_defaulted"`
	StartYear         int             `json:"start_year"`
	EndYear           int             `json:"end_year"`
	SelectedVintage   *int            `json:"selected_vintage"`
	AllYearsAverage   Averages        `json:"all_years_average"`
	SelectedYear      *YearlySummary  `json:"selected_year"`
	SelectedVsAverage Comparison      `json:"selected_vs_average"`
	YearlyMetrics     []YearlySummary `json:"yearly_metrics"`
}
