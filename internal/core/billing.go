package core

import "time"

// BillingCycleDate computes the statement date a transaction is attributed
// to, given the card's closing day (1..31) and the transaction date.
//
// The candidate closing date is built in the transaction's own month, with
// the closing day clamped to the month's last valid day (closing day 31 in
// February closes on Feb 28/29, not Mar 3). If the transaction falls
// strictly after that candidate, the cycle rolls forward one month.
//
// Pure: identical inputs always produce the identical date.
func BillingCycleDate(closingDay int, txDate time.Time) time.Time {
	d := midnightUTC(txDate)
	candidate := dateWithClampedDay(d.Year(), d.Month(), closingDay)
	if d.After(candidate) {
		y, m := nextMonth(d.Year(), d.Month())
		return dateWithClampedDay(y, m, closingDay)
	}
	return candidate
}

// NextCycleFrom returns the first closing date strictly in the future of
// (or on) the reference date, using the same clamp rule as BillingCycleDate.
// Reporting views use it to resolve "the upcoming statement" from today.
func NextCycleFrom(closingDay int, reference time.Time) time.Time {
	return BillingCycleDate(closingDay, midnightUTC(reference))
}

// AddMonthsClamped advances d by the given number of whole months,
// preserving the day-of-month and clamping at month boundaries
// (Jan 31 + 1 month = Feb 28/29). time.Time.AddDate is not usable here:
// it normalizes overflow into the following month.
func AddMonthsClamped(d time.Time, months int) time.Time {
	y := d.Year()
	m := int(d.Month()) - 1 + months
	y += m / 12
	m = m % 12
	if m < 0 {
		m += 12
		y--
	}
	return dateWithClampedDay(y, time.Month(m+1), d.Day())
}

// dateWithClampedDay builds a midnight-UTC date, clamping day to the
// month's length.
func dateWithClampedDay(year int, month time.Month, day int) time.Time {
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func nextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

// midnightUTC normalizes a timestamp to its calendar date at midnight UTC.
// All cycle and payment dates in the system are date-valued.
func midnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
