package booking

import (
	"sort"
	"time"
)

// Availability is the computed remaining capacity of a rental on a single
// calendar day. It is derived on every query and never persisted. The value
// may be negative: an overbooked day must be visible to callers, not hidden.
type Availability struct {
	Date              time.Time `json:"date"`
	AvailableQuantity int       `json:"available_quantity"`
}

// DayQuantity is one entry of a per-day booked-quantity series.
type DayQuantity struct {
	Date     time.Time
	Quantity int
}

// MergedQuantities holds the two independent per-day sums that count against
// inventory: committed bookings and checkout holds.
type MergedQuantities struct {
	Booked int
	Held   int
}

// NormalizeDate truncates a timestamp to midnight UTC. All availability math
// operates on calendar days.
func NormalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MergeBookedQuantitiesAndHolds folds the per-day booked series and the set
// of holds into one date-indexed map. Booked quantities are summed per date.
// Each hold is expanded into one entry per calendar day of its inclusive
// range. Dates present in only one input keep a zero on the other side.
//
// The map's iteration order is unspecified; callers must sort by date before
// producing output.
func MergeBookedQuantitiesAndHolds(booked []DayQuantity, holds []BookingHold) map[time.Time]MergedQuantities {
	merged := make(map[time.Time]MergedQuantities)

	for _, dq := range booked {
		date := NormalizeDate(dq.Date)
		entry := merged[date]
		entry.Booked += dq.Quantity
		merged[date] = entry
	}

	for _, hold := range holds {
		start := NormalizeDate(hold.StartDate)
		end := NormalizeDate(hold.EndDate)
		for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
			entry := merged[date]
			entry.Held += hold.Quantity
			merged[date] = entry
		}
	}

	return merged
}

// CalculateAvailability derives per-day remaining capacity for every calendar
// day in [startDate, endDate] inclusive: total − booked − held. Days with no
// activity produce an entry with the full total; a single-day range produces
// exactly one entry. Merged dates outside the range are ignored so the result
// always has endDate−startDate+1 entries in ascending date order.
func CalculateAvailability(merged map[time.Time]MergedQuantities, totalQuantity int, startDate, endDate time.Time) []Availability {
	start := NormalizeDate(startDate)
	end := NormalizeDate(endDate)

	availability := make([]Availability, 0, int(end.Sub(start).Hours()/24)+1)
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		entry := merged[date]
		availability = append(availability, Availability{
			Date:              date,
			AvailableQuantity: totalQuantity - entry.Booked - entry.Held,
		})
	}

	sort.Slice(availability, func(i, j int) bool {
		return availability[i].Date.Before(availability[j].Date)
	})

	return availability
}
