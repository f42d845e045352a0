package tariffs

import (
	"errors"
	"math"
	"time"
)

type Purpose string

const (
	PurposeMeetingRoom Purpose = "meeting_room" // почасовая аренда, слот эксклюзивный
	PurposeDayPass     Purpose = "day_pass"     // фиксированная цена за день
)

var (
	ErrNotFound = errors.New("tariffs: not found")
	ErrInactive = errors.New("tariffs: inactive")
	ErrStorage  = errors.New("tariffs: storage failure")
)

type Tariff struct {
	ID          int64
	Name        string
	Description string
	Price       float64
	Purpose     Purpose
	ServiceID   *string
	IsActive    bool
	CreatedAt   time.Time
}

func (t Tariff) TimeBound() bool { return t.Purpose == PurposeMeetingRoom }

// PriceFor считает стоимость брони по тарифу.
// Для почасовых тарифов цена умножается на длительность в часах.
func (t Tariff) PriceFor(durationHours int) float64 {
	if t.TimeBound() {
		return round2(t.Price * float64(durationHours))
	}
	return t.Price
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
