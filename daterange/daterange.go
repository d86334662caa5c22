package daterange

import (
	"math/rand/v2"
	"time"

	"hotel-rates-scraper/models"
)

// StayNights is the length of each sampled window (an 8-day span, 7 nights)
const StayNights = 7

// Generate samples one stay window per calendar month touched by
// [start, start+horizonDays). The start day is drawn uniformly from
// [1, lastDay-StayNights], clamped to 1 for very short months.
// A nil rng uses the package-level source.
func Generate(start time.Time, horizonDays int, rng *rand.Rand) []models.DateRange {
	if horizonDays <= 0 {
		return nil
	}

	start = truncateDay(start)
	end := start.AddDate(0, 0, horizonDays)

	var ranges []models.DateRange
	for current := start; current.Before(end); {
		monthStart := time.Date(current.Year(), current.Month(), 1, 0, 0, 0, 0, time.UTC)
		lastDay := monthStart.AddDate(0, 1, -1).Day()

		maxStart := lastDay - StayNights
		if maxStart < 1 {
			maxStart = 1
		}

		startDay := 1 + intN(rng, maxStart)
		checkIn := monthStart.AddDate(0, 0, startDay-1)
		ranges = append(ranges, models.DateRange{
			CheckIn:  checkIn,
			CheckOut: checkIn.AddDate(0, 0, StayNights),
		})

		// Move to the first day of the next month
		current = monthStart.AddDate(0, 1, 0)
	}

	return ranges
}

// CountMonths returns how many calendar months [start, start+horizonDays) touches,
// which is the number of windows Generate produces
func CountMonths(start time.Time, horizonDays int) int {
	if horizonDays <= 0 {
		return 0
	}
	start = truncateDay(start)
	last := start.AddDate(0, 0, horizonDays-1)
	return (last.Year()-start.Year())*12 + int(last.Month()) - int(start.Month()) + 1
}

func intN(rng *rand.Rand, n int) int {
	if rng == nil {
		return rand.IntN(n)
	}
	return rng.IntN(n)
}

// truncateDay drops the time of day and pins the date to UTC
func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
