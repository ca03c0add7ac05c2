// Package catalog holds the reference wine catalog and the token-overlap
// matcher used to look wines up in it.
package catalog

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/i474232898/wine-insight/internal/common"
)

// Record is a single catalog row. Optional fields are nil when the source
// row did not carry a usable value.
type Record struct {
	WineName   string   `json:"wine_name"`
	Winery     *string  `json:"winery"`
	Country    *string  `json:"country"`
	Region     *string  `json:"region"`
	Grape      *string  `json:"grape"`
	AvgRating  *float64 `json:"avg_rating"`
	NumRatings *int     `json:"num_ratings"`
}

// Match is the best catalog row for a query together with its overlap score.
type Match struct {
	Record
	Score float64 `json:"score"`
}

// RecordFromRow builds a Record from a loosely typed row. Column aliases are
// resolved first-present-wins.
func RecordFromRow(row map[string]string) Record {
	return Record{
		WineName:   common.FirstNonEmpty(row["wine_name"], row["name"]),
		Winery:     common.OptionalString(common.FirstNonEmpty(row["winery_name"], row["winery"])),
		Country:    common.OptionalString(row["country"]),
		Region:     common.OptionalString(common.FirstNonEmpty(row["region_1"], row["region"])),
		Grape:      common.OptionalString(common.FirstNonEmpty(row["grapes"], row["grape"])),
		AvgRating:  parseFloat(common.FirstNonEmpty(row["rating"], row["average_rating"])),
		NumRatings: parseCount(common.FirstNonEmpty(row["num_reviews"], row["reviews"])),
	}
}

func parseFloat(s string) *float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// parseCount accepts integral or fractional text ("12", "12.0") and
// truncates toward zero.
func parseCount(s string) *int {
	f := parseFloat(s)
	if f == nil || math.Abs(*f) > math.MaxInt32 {
		return nil
	}
	n := int(*f)
	return &n
}

// stringify renders a decoded JSON value the way it should appear in a row.
func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}
