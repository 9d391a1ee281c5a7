package availability

import (
	"testing"

	"turfbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlaps(t *testing.T) {
	// 9-11 vs 10-12 share hour 10.
	assert.True(t, Overlaps(9, 2, 10, 2))
	// 9-11 vs 11-13 are adjacent; half-open intervals do not conflict.
	assert.False(t, Overlaps(9, 2, 11, 2))
	assert.True(t, Overlaps(10, 1, 10, 1))
	assert.False(t, Overlaps(10, 0, 10, 1))
	// Containment.
	assert.True(t, Overlaps(9, 4, 10, 1))
}

func slotByHour(t *testing.T, slots []Slot, hour int) Slot {
	t.Helper()
	for _, s := range slots {
		if s.Hour == hour {
			return s
		}
	}
	t.Fatalf("hour %d not in grid", hour)
	return Slot{}
}

func TestComputeAvailableStarts(t *testing.T) {
	existing := []models.BookingRecord{
		{ID: 1, Date: "2026-09-01", Turf: models.TurfSmall, Start: 10, Duration: 2},
	}

	t.Run("GridCoversOperatingRange", func(t *testing.T) {
		slots := ComputeAvailableStarts(models.Venue{}, "2026-09-01", models.TurfSmall, 2, existing)
		require.Len(t, slots, 16)
		assert.Equal(t, 6, slots[0].Hour)
		assert.Equal(t, 21, slots[len(slots)-1].Hour)
	})

	t.Run("ConflictBlocksOverlappingStarts", func(t *testing.T) {
		slots := ComputeAvailableStarts(models.Venue{}, "2026-09-01", models.TurfSmall, 2, existing)
		// Starting at 9 for 2h runs into the 10:00 booking.
		assert.False(t, slotByHour(t, slots, 9).Bookable)
		assert.False(t, slotByHour(t, slots, 10).Bookable)
		assert.False(t, slotByHour(t, slots, 11).Bookable)
		// Ending at 10 or starting at 12 is fine.
		assert.True(t, slotByHour(t, slots, 8).Bookable)
		assert.True(t, slotByHour(t, slots, 12).Bookable)
	})

	t.Run("OtherDateOrTurfDoesNotConflict", func(t *testing.T) {
		slots := ComputeAvailableStarts(models.Venue{}, "2026-09-02", models.TurfSmall, 2, existing)
		assert.True(t, slotByHour(t, slots, 10).Bookable)

		slots = ComputeAvailableStarts(models.Venue{}, "2026-09-01", models.TurfLarge, 2, existing)
		assert.True(t, slotByHour(t, slots, 10).Bookable)
	})

	t.Run("ClosingTimeBound", func(t *testing.T) {
		// duration=4: latest start is 22-3 = 19.
		slots := ComputeAvailableStarts(models.Venue{}, "2026-09-01", models.TurfLarge, 4, nil)
		assert.True(t, slotByHour(t, slots, 19).Bookable)
		assert.False(t, slotByHour(t, slots, 20).Bookable)
		assert.False(t, slotByHour(t, slots, 21).Bookable)
	})

	t.Run("ConfiguredHoursBoundTheGrid", func(t *testing.T) {
		venue := models.Venue{OpenHour: 8, CloseHour: 20}

		slots := ComputeAvailableStarts(venue, "2026-09-01", models.TurfSmall, 1, nil)
		require.Len(t, slots, 12)
		assert.Equal(t, 8, slots[0].Hour)
		assert.Equal(t, 19, slots[len(slots)-1].Hour)
		// Stock-venue hours simply do not appear in the grid.
		for _, s := range slots {
			assert.True(t, s.Bookable)
		}

		// Closing bound moves with the configured close.
		slots = ComputeAvailableStarts(venue, "2026-09-01", models.TurfSmall, 4, nil)
		assert.True(t, slotByHour(t, slots, 17).Bookable)
		assert.False(t, slotByHour(t, slots, 18).Bookable)
	})

	t.Run("UnsetInputsYieldNoBookableHours", func(t *testing.T) {
		for _, slots := range [][]Slot{
			ComputeAvailableStarts(models.Venue{}, "", models.TurfSmall, 2, nil),
			ComputeAvailableStarts(models.Venue{}, "2026-09-01", "", 2, nil),
		} {
			require.Len(t, slots, 16)
			for _, s := range slots {
				assert.False(t, s.Bookable)
			}
		}
	})
}

func TestConflicts(t *testing.T) {
	existing := []models.BookingRecord{
		{Date: "2026-09-01", Turf: models.TurfSmall, Start: 10, Duration: 2},
		{Date: "2026-09-01", Turf: models.TurfLarge, Start: 9, Duration: 3},
	}

	assert.True(t, Conflicts("2026-09-01", models.TurfSmall, 11, 1, existing))
	assert.False(t, Conflicts("2026-09-01", models.TurfSmall, 12, 2, existing))
	assert.False(t, Conflicts("2026-09-03", models.TurfSmall, 10, 2, existing))
	assert.True(t, Conflicts("2026-09-01", models.TurfLarge, 11, 2, existing))
}
