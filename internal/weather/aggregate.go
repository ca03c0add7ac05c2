package weather

import (
	"math"
	"sort"
	"time"
)

// rainyDayThresholdMm is the daily precipitation at which a day counts as rainy.
const rainyDayThresholdMm = 1.0

// Observations zips the parallel columns of a series into daily observations.
// Columns are truncated to the shortest one and days whose date does not
// parse are skipped.
func Observations(s DailySeries) []DailyObservation {
	n := min(len(s.Time), len(s.TempMax), len(s.TempMin), len(s.Precip))

	obs := make([]DailyObservation, 0, n)
	for i := 0; i < n; i++ {
		date, err := time.Parse(time.DateOnly, s.Time[i])
		if err != nil {
			continue
		}
		obs = append(obs, DailyObservation{
			Date:     date,
			HighC:    finiteOrNil(s.TempMax[i]),
			LowC:     finiteOrNil(s.TempMin[i]),
			PrecipMm: finiteOrNil(s.Precip[i]),
		})
	}
	return obs
}

// BucketByYear groups observations inside the season window by calendar year.
func BucketByYear(obs []DailyObservation, season SeasonWindow) map[int][]DailyObservation {
	buckets := make(map[int][]DailyObservation)
	for _, o := range obs {
		if !season.Contains(o.Date.Month(), o.Date.Day()) {
			continue
		}
		buckets[o.Date.Year()] = append(buckets[o.Date.Year()], o)
	}
	return buckets
}

// SummarizeYear reduces one season of observations. It returns false when the
// season has no high or no low temperature readings, regardless of rainfall.
func SummarizeYear(year int, obs []DailyObservation) (YearlySummary, bool) {
	var (
		highs, lows []float64
		rainTotal   float64
		rainyDays   int
	)

	for _, o := range obs {
		if o.HighC != nil {
			highs = append(highs, *o.HighC)
		}
		if o.LowC != nil {
			lows = append(lows, *o.LowC)
		}
		if o.PrecipMm != nil {
			rainTotal += *o.PrecipMm
			if *o.PrecipMm >= rainyDayThresholdMm {
				rainyDays++
			}
		}
	}

	if len(highs) == 0 || len(lows) == 0 {
		return YearlySummary{}, false
	}

	return YearlySummary{
		Year:        year,
		AvgHighC:    round2(mean(highs)),
		MaxHighC:    round2(maxOf(highs)),
		AvgLowC:     round2(mean(lows)),
		MinLowC:     round2(minOf(lows)),
		RainTotalMm: round2(rainTotal),
		RainyDays:   rainyDays,
	}, true
}

// Summarize summarizes every bucket and returns the surviving years in
// ascending order.
func Summarize(buckets map[int][]DailyObservation) []YearlySummary {
	years := make([]YearlySummary, 0, len(buckets))
	for year, obs := range buckets {
		if s, ok := SummarizeYear(year, obs); ok {
			years = append(years, s)
		}
	}
	sort.Slice(years, func(i, j int) bool { return years[i].Year < years[j].Year })
	return years
}

// AverageSummaries returns the unweighted per-metric mean across years.
func AverageSummaries(years []YearlySummary) Averages {
	if len(years) == 0 {
		return Averages{}
	}

	var sum Averages
	for _, y := range years {
		sum.AvgHighC += y.AvgHighC
		sum.MaxHighC += y.MaxHighC
		sum.AvgLowC += y.AvgLowC
		sum.MinLowC += y.MinLowC
		sum.RainTotalMm += y.RainTotalMm
		sum.RainyDays += float64(y.RainyDays)
	}

	n := float64(len(years))
	return Averages{
		AvgHighC:    round2(sum.AvgHighC / n),
		MaxHighC:    round2(sum.MaxHighC / n),
		AvgLowC:     round2(sum.AvgLowC / n),
		MinLowC:     round2(sum.MinLowC / n),
		RainTotalMm: round2(sum.RainTotalMm / n),
		RainyDays:   round2(sum.RainyDays / n),
	}
}

// Compare returns the deltas of selected against avg. A nil selection yields
// a Comparison with every field nil.
func Compare(selected *YearlySummary, avg Averages) Comparison {
	if selected == nil {
		return Comparison{}
	}
	return Comparison{
		AvgHighDelta:     delta(selected.AvgHighC, avg.AvgHighC),
		AvgLowDelta:      delta(selected.AvgLowC, avg.AvgLowC),
		RainTotalDelta:   delta(selected.RainTotalMm, avg.RainTotalMm),
		RainyDaysDelta:   delta(float64(selected.RainyDays), avg.RainyDays),
		MaxHighVsAvgHigh: delta(selected.MaxHighC, avg.AvgHighC),
		MinLowVsAvgLow:   delta(selected.MinLowC, avg.AvgLowC),
	}
}

// FindYear returns the summary for year, or nil.
func FindYear(years []YearlySummary, year int) *YearlySummary {
	for i := range years {
		if years[i].Year == year {
			y := years[i]
			return &y
		}
	}
	return nil
}

func delta(selected, average float64) *float64 {
	d := round2(selected - average)
	return &d
}

// round2 rounds half away from zero to two decimal places. Halves are judged
// on the stored binary value, so 1.005 (held as 1.00499...) becomes 1.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func finiteOrNil(v *float64) *float64 {
	if v == nil || !isFinite(*v) {
		return nil
	}
	return v
}

func mean(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func maxOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		m = math.Max(m, v)
	}
	return m
}

func minOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		m = math.Min(m, v)
	}
	return m
}
