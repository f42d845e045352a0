package tariffs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriceFor(t *testing.T) {
	meeting := Tariff{Name: "Переговорная-A", Price: 500, Purpose: PurposeMeetingRoom}
	assert.Equal(t, 500.0, meeting.PriceFor(1))
	assert.Equal(t, 1000.0, meeting.PriceFor(2))

	// два знака после запятой
	odd := Tariff{Price: 499.99, Purpose: PurposeMeetingRoom}
	assert.Equal(t, 1499.97, odd.PriceFor(3))

	day := Tariff{Name: "Опенспейс", Price: 700, Purpose: PurposeDayPass}
	assert.Equal(t, 700.0, day.PriceFor(0))
	// длительность для дневного тарифа не влияет на цену
	assert.Equal(t, 700.0, day.PriceFor(8))
}

func TestTimeBound(t *testing.T) {
	assert.True(t, Tariff{Purpose: PurposeMeetingRoom}.TimeBound())
	assert.False(t, Tariff{Purpose: PurposeDayPass}.TimeBound())
}
