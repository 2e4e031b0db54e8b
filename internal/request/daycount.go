package request

import "time"

const (
	PeriodFull = "FULL"
	PeriodAM   = "AM"
	PeriodPM   = "PM"
)

// ComputeDays returns the duration of a leave span in days, counting
// half days. A PM start or an AM end each remove half a day from the
// inclusive calendar count. Zero-value dates yield 0.
func ComputeDays(dateFrom, dateTo time.Time, startPeriod, endPeriod string) float64 {
	if dateFrom.IsZero() || dateTo.IsZero() {
		return 0
	}

	from := atMidnightUTC(dateFrom)
	to := atMidnightUTC(dateTo)
	if to.Before(from) {
		return 0
	}

	base := int(to.Sub(from).Hours()/24) + 1

	if base == 1 {
		// Both markers describe the same day. AM/PM spans the whole
		// day; ambiguous combinations count as a full day too.
		if startPeriod == PeriodAM && endPeriod == PeriodAM {
			return 0.5
		}
		if startPeriod == PeriodPM && endPeriod == PeriodPM {
			return 0.5
		}
		return 1
	}

	days := float64(base)
	if startPeriod == PeriodPM {
		days -= 0.5
	}
	if endPeriod == PeriodAM {
		days -= 0.5
	}
	return days
}

// Dates are compared at UTC midnight, never converted to a local zone.
func atMidnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
