package bookings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slot(visitTime string, hours int) Booking {
	return Booking{
		TariffID:      1,
		VisitDate:     time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		VisitTime:     &visitTime,
		DurationHours: &hours,
	}
}

func TestParseClock(t *testing.T) {
	m, err := ParseClock("14:30")
	require.NoError(t, err)
	assert.Equal(t, 14*60+30, m)

	m, err = ParseClock("00:00")
	require.NoError(t, err)
	assert.Equal(t, 0, m)

	for _, bad := range []string{"", "25:00", "14:60", "14.30", "14:30:00", "завтра"} {
		_, err := ParseClock(bad)
		assert.ErrorIs(t, err, ErrInvalidInput, "input %q", bad)
	}
}

func TestConflicts(t *testing.T) {
	tests := []struct {
		name string
		a, b Booking
		want bool
	}{
		{"identical", slot("10:00", 2), slot("10:00", 2), true},
		{"nested", slot("10:00", 4), slot("11:00", 1), true},
		{"partial overlap", slot("10:00", 2), slot("11:00", 2), true},
		{"touching end-start", slot("10:00", 1), slot("11:00", 1), false},
		{"touching start-end", slot("11:00", 1), slot("10:00", 1), false},
		{"disjoint", slot("09:00", 1), slot("15:00", 2), false},
		{"minute precision", slot("10:30", 1), slot("11:00", 1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Conflicts(tt.a, tt.b))
			// предикат симметричен
			assert.Equal(t, tt.want, Conflicts(tt.b, tt.a))
		})
	}
}

func TestConflictsDayPassNever(t *testing.T) {
	day := Booking{TariffID: 1, VisitDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
	assert.False(t, Conflicts(day, day))
	assert.False(t, Conflicts(day, slot("10:00", 2)))
	assert.False(t, Conflicts(slot("10:00", 2), day))
}

func TestSlot(t *testing.T) {
	b := slot("10:00", 2)
	start, end, ok := b.Slot()
	require.True(t, ok)
	assert.Equal(t, 600, start)
	assert.Equal(t, 720, end)

	_, _, ok = Booking{}.Slot()
	assert.False(t, ok)
}
