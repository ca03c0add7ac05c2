package weather

import (
	"context"
	"time"
)

// DailyRequest asks a source for daily observations over an inclusive date range.
type DailyRequest struct {
	Location Location
	Start    time.Time
	End      time.Time
}

// Key returns a canonical key for caching this request.
func (r DailyRequest) Key() string {
	return r.Location.Key() + ":" + r.Start.Format(time.DateOnly) + ":" + r.End.Format(time.DateOnly)
}

// DailySource abstracts a historical daily weather provider (e.g. the Open-Meteo archive).
type DailySource interface {
	FetchDaily(ctx context.Context, req DailyRequest) (DailySeries, error)
}

// RegionGeocoder resolves a free-text region name to coordinates.
type RegionGeocoder interface {
	Geocode(ctx context.Context, region string) (Location, error)
}
