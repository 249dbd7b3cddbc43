package review_test

import (
	"testing"
	"time"

	"github.com/rohmanhakim/paper-review/internal/review"
	"github.com/stretchr/testify/assert"
)

func TestLastWeek(t *testing.T) {
	want := []string{"2024-08-05", "2024-08-06", "2024-08-07", "2024-08-08", "2024-08-09"}
	tests := []struct {
		name  string
		today time.Time
	}{
		{"monday", time.Date(2024, 8, 12, 9, 0, 0, 0, time.UTC)},
		{"wednesday", time.Date(2024, 8, 14, 23, 59, 0, 0, time.UTC)},
		{"sunday", time.Date(2024, 8, 18, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, monday := review.LastWeek(tt.today)

			assert.Equal(t, want, days)
			assert.Equal(t, "2024-08-05", monday)
		})
	}
}

func TestLastWeek_AcrossMonthBoundary(t *testing.T) {
	days, monday := review.LastWeek(time.Date(2024, 9, 4, 12, 0, 0, 0, time.UTC))

	assert.Equal(t, "2024-08-26", monday)
	assert.Equal(t, "2024-08-30", days[4])
}

func TestSpreadsheetTitle(t *testing.T) {
	assert.Equal(t, "Paper Review: 2024-08-05", review.SpreadsheetTitle("2024-08-05"))
}
