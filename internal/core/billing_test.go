package core_test

import (
	"testing"
	"time"

	"pos-backend/internal/core"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBillingCycleDate(t *testing.T) {
	tests := []struct {
		name       string
		closingDay int
		txDate     time.Time
		want       time.Time
	}{
		{
			name:       "before closing stays in current month",
			closingDay: 15,
			txDate:     date(2026, time.March, 10),
			want:       date(2026, time.March, 15),
		},
		{
			name:       "on closing day stays in current month",
			closingDay: 15,
			txDate:     date(2026, time.March, 15),
			want:       date(2026, time.March, 15),
		},
		{
			name:       "after closing rolls to next month",
			closingDay: 10,
			txDate:     date(2026, time.March, 15),
			want:       date(2026, time.April, 10),
		},
		{
			name:       "closing day 31 clamps to end of February",
			closingDay: 31,
			txDate:     date(2023, time.February, 15),
			want:       date(2023, time.February, 28),
		},
		{
			name:       "closing day 31 clamps to Feb 29 in leap years",
			closingDay: 31,
			txDate:     date(2024, time.February, 15),
			want:       date(2024, time.February, 29),
		},
		{
			name:       "closing day 31 clamps to April 30",
			closingDay: 31,
			txDate:     date(2026, time.April, 12),
			want:       date(2026, time.April, 30),
		},
		{
			name:       "roll past clamped closing lands on next month's real day",
			closingDay: 30,
			txDate:     date(2023, time.February, 28), // candidate clamps to Feb 28, tx is not after it
			want:       date(2023, time.February, 28),
		},
		{
			name:       "December rolls into January of next year",
			closingDay: 10,
			txDate:     date(2026, time.December, 20),
			want:       date(2027, time.January, 10),
		},
		{
			name:       "time-of-day on the closing day does not roll forward",
			closingDay: 20,
			txDate:     time.Date(2026, time.May, 20, 18, 45, 0, 0, time.UTC),
			want:       date(2026, time.May, 20),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.BillingCycleDate(tt.closingDay, tt.txDate)
			if !got.Equal(tt.want) {
				t.Errorf("BillingCycleDate(%d, %s) = %s, want %s",
					tt.closingDay, tt.txDate.Format("2006-01-02"), got.Format("2006-01-02"), tt.want.Format("2006-01-02"))
			}
			// Pure: same inputs, same output.
			if again := core.BillingCycleDate(tt.closingDay, tt.txDate); !again.Equal(got) {
				t.Errorf("BillingCycleDate is not deterministic: %s then %s", got, again)
			}
		})
	}
}

func TestAddMonthsClamped(t *testing.T) {
	tests := []struct {
		name   string
		start  time.Time
		months int
		want   time.Time
	}{
		{"plain month add", date(2026, time.March, 10), 1, date(2026, time.April, 10)},
		{"Jan 31 clamps to Feb 28", date(2023, time.January, 31), 1, date(2023, time.February, 28)},
		{"Jan 31 clamps to Feb 29 in leap year", date(2024, time.January, 31), 1, date(2024, time.February, 29)},
		{"clamp applies per target month, day is preserved", date(2026, time.January, 31), 2, date(2026, time.March, 31)},
		{"Jan 31 plus three months is Apr 30", date(2026, time.January, 31), 3, date(2026, time.April, 30)},
		{"year rollover", date(2026, time.November, 15), 2, date(2027, time.January, 15)},
		{"zero months is identity", date(2026, time.July, 4), 0, date(2026, time.July, 4)},
		{"negative months go backward", date(2026, time.March, 31), -1, date(2026, time.February, 28)},
		{"negative across year boundary", date(2026, time.January, 15), -2, date(2025, time.November, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.AddMonthsClamped(tt.start, tt.months)
			if !got.Equal(tt.want) {
				t.Errorf("AddMonthsClamped(%s, %d) = %s, want %s",
					tt.start.Format("2006-01-02"), tt.months, got.Format("2006-01-02"), tt.want.Format("2006-01-02"))
			}
		})
	}
}

func TestNextCycleFrom(t *testing.T) {
	// Same clamp rule as BillingCycleDate, anchored on the reference date.
	got := core.NextCycleFrom(31, time.Date(2023, time.February, 10, 9, 30, 0, 0, time.UTC))
	want := date(2023, time.February, 28)
	if !got.Equal(want) {
		t.Errorf("NextCycleFrom(31, Feb 10) = %s, want %s", got.Format("2006-01-02"), want.Format("2006-01-02"))
	}

	got = core.NextCycleFrom(5, date(2026, time.August, 20))
	want = date(2026, time.September, 5)
	if !got.Equal(want) {
		t.Errorf("NextCycleFrom(5, Aug 20) = %s, want %s", got.Format("2006-01-02"), want.Format("2006-01-02"))
	}
}
