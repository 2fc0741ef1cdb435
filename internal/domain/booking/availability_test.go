package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return parsed.UTC()
}

func TestMergeSumsBookedQuantitiesByDate(t *testing.T) {
	d1 := day(t, "2025-06-01")
	d2 := day(t, "2025-06-02")

	merged := MergeBookedQuantitiesAndHolds([]DayQuantity{
		{Date: d1, Quantity: 2},
		{Date: d1, Quantity: 3},
		{Date: d2, Quantity: 1},
	}, nil)

	assert.Equal(t, MergedQuantities{Booked: 5}, merged[d1])
	assert.Equal(t, MergedQuantities{Booked: 1}, merged[d2])
}

func TestMergeExpandsHoldsPerDay(t *testing.T) {
	hold := BookingHold{
		HoldID:    uuid.New(),
		RentalID:  uuid.New(),
		Quantity:  2,
		StartDate: day(t, "2025-06-02"),
		EndDate:   day(t, "2025-06-04"),
		Status:    HoldStatusBlocked,
	}

	merged := MergeBookedQuantitiesAndHolds(nil, []BookingHold{hold})

	require.Len(t, merged, 3)
	for _, d := range []string{"2025-06-02", "2025-06-03", "2025-06-04"} {
		assert.Equal(t, MergedQuantities{Held: 2}, merged[day(t, d)], "day %s", d)
	}
}

func TestMergeDefaultsMissingSidesToZero(t *testing.T) {
	booked := []DayQuantity{{Date: day(t, "2025-06-01"), Quantity: 1}}
	holds := []BookingHold{{
		Quantity:  4,
		StartDate: day(t, "2025-06-03"),
		EndDate:   day(t, "2025-06-03"),
	}}

	merged := MergeBookedQuantitiesAndHolds(booked, holds)

	assert.Equal(t, MergedQuantities{Booked: 1, Held: 0}, merged[day(t, "2025-06-01")])
	assert.Equal(t, MergedQuantities{Booked: 0, Held: 4}, merged[day(t, "2025-06-03")])
}

func TestCalculateAvailabilityScenario(t *testing.T) {
	// total=5, one active booking qty=3 over [06-01, 06-03], one blocked
	// hold qty=1 over [06-02, 06-04].
	booked := []DayQuantity{
		{Date: day(t, "2025-06-01"), Quantity: 3},
		{Date: day(t, "2025-06-02"), Quantity: 3},
		{Date: day(t, "2025-06-03"), Quantity: 3},
		{Date: day(t, "2025-06-04"), Quantity: 0},
	}
	holds := []BookingHold{{
		Quantity:  1,
		StartDate: day(t, "2025-06-02"),
		EndDate:   day(t, "2025-06-04"),
		Status:    HoldStatusBlocked,
	}}

	merged := MergeBookedQuantitiesAndHolds(booked, holds)
	availability := CalculateAvailability(merged, 5, day(t, "2025-06-01"), day(t, "2025-06-04"))

	require.Len(t, availability, 4)
	expected := []struct {
		date string
		qty  int
	}{
		{"2025-06-01", 2},
		{"2025-06-02", 1},
		{"2025-06-03", 1},
		{"2025-06-04", 4},
	}
	for i, e := range expected {
		assert.Equal(t, day(t, e.date), availability[i].Date)
		assert.Equal(t, e.qty, availability[i].AvailableQuantity)
	}
}

func TestCalculateAvailabilityCoversEveryDayInRange(t *testing.T) {
	start := day(t, "2025-07-01")
	end := day(t, "2025-07-10")

	availability := CalculateAvailability(nil, 3, start, end)

	require.Len(t, availability, 10)
	for i, a := range availability {
		assert.Equal(t, start.AddDate(0, 0, i), a.Date, "entries must be contiguous and ascending")
		assert.Equal(t, 3, a.AvailableQuantity, "zero-activity days keep the full total")
	}
}

func TestCalculateAvailabilitySingleDayRange(t *testing.T) {
	d := day(t, "2025-07-01")
	availability := CalculateAvailability(nil, 2, d, d)

	require.Len(t, availability, 1)
	assert.Equal(t, d, availability[0].Date)
	assert.Equal(t, 2, availability[0].AvailableQuantity)
}

func TestCalculateAvailabilityDoesNotClampNegatives(t *testing.T) {
	d := day(t, "2025-06-01")
	merged := MergeBookedQuantitiesAndHolds(
		[]DayQuantity{{Date: d, Quantity: 4}},
		[]BookingHold{{Quantity: 3, StartDate: d, EndDate: d}},
	)

	availability := CalculateAvailability(merged, 5, d, d)

	require.Len(t, availability, 1)
	assert.Equal(t, -2, availability[0].AvailableQuantity, "overbooked days must surface as negative")
}

func TestCalculateAvailabilityIgnoresDatesOutsideRange(t *testing.T) {
	// A hold stretching past the queried range must not add extra entries.
	holds := []BookingHold{{
		Quantity:  1,
		StartDate: day(t, "2025-05-30"),
		EndDate:   day(t, "2025-06-05"),
	}}
	merged := MergeBookedQuantitiesAndHolds(nil, holds)

	availability := CalculateAvailability(merged, 5, day(t, "2025-06-01"), day(t, "2025-06-02"))

	require.Len(t, availability, 2)
	assert.Equal(t, day(t, "2025-06-01"), availability[0].Date)
	assert.Equal(t, day(t, "2025-06-02"), availability[1].Date)
	assert.Equal(t, 4, availability[0].AvailableQuantity)
	assert.Equal(t, 4, availability[1].AvailableQuantity)
}

func TestNormalizeDate(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	local := time.Date(2025, 6, 1, 22, 30, 0, 0, loc)
	normalized := NormalizeDate(local)

	assert.Equal(t, time.UTC, normalized.Location())
	assert.Equal(t, 0, normalized.Hour())
	// 22:30 EDT is 02:30 UTC the next day.
	assert.Equal(t, 2, normalized.Day())
}
