package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSeasonWindow_Resolve(t *testing.T) {
	tests := []struct {
		name          string
		window        SeasonWindow
		want          SeasonWindow
		wantDefaulted bool
	}{
		{"valid window kept", SeasonWindow{5, 15, 9, 30}, SeasonWindow{5, 15, 9, 30}, false},
		{"single day kept", SeasonWindow{6, 1, 6, 1}, SeasonWindow{6, 1, 6, 1}, false},
		{"inverted months", SeasonWindow{10, 1, 3, 31}, DefaultSeason, true},
		{"inverted days same month", SeasonWindow{6, 20, 6, 10}, DefaultSeason, true},
		{"zero value", SeasonWindow{}, DefaultSeason, true},
		{"month out of range", SeasonWindow{4, 1, 13, 1}, DefaultSeason, true},
		{"day out of range", SeasonWindow{4, 0, 10, 31}, DefaultSeason, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, defaulted := tt.window.Resolve()
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantDefaulted, defaulted)
		})
	}
}

func TestSeasonWindow_ContainsIsInclusive(t *testing.T) {
	w := DefaultSeason

	assert.True(t, w.Contains(time.April, 1))
	assert.True(t, w.Contains(time.October, 31))
	assert.True(t, w.Contains(time.July, 15))
	assert.False(t, w.Contains(time.March, 31))
	assert.False(t, w.Contains(time.November, 1))
}

func TestSeasonWindow_Dates(t *testing.T) {
	w := SeasonWindow{StartMonth: 2, StartDay: 29, EndMonth: 4, EndDay: 31}

	assert.Equal(t, time.Date(2023, time.February, 28, 0, 0, 0, 0, time.UTC), w.StartDate(2023))
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), w.StartDate(2024))
	assert.Equal(t, time.Date(2024, time.April, 30, 0, 0, 0, 0, time.UTC), w.EndDate(2024))
}
