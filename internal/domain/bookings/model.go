package bookings

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound          = errors.New("bookings: not found")
	ErrInvalidInput      = errors.New("bookings: invalid input")
	ErrSlotConflict      = errors.New("bookings: slot conflict")
	ErrAlreadyConfirmed  = errors.New("bookings: already confirmed")
	ErrInvalidTariffType = errors.New("bookings: tariff type does not support confirmation")

	// ErrStorage отделяет инфраструктурные сбои от доменных ошибок:
	// их можно ретраить на границе, доменные — нет.
	ErrStorage = errors.New("bookings: storage failure")
)

type Booking struct {
	ID            int64
	UserID        int64
	TariffID      int64
	VisitDate     time.Time // значима только дата
	VisitTime     *string   // "15:04", заполняется только для переговорных
	DurationHours *int
	Amount        float64
	Paid          bool
	Confirmed     bool
	CreatedAt     time.Time
}

// TimeBound — бронь занимает временной слот (переговорная).
func (b Booking) TimeBound() bool {
	return b.VisitTime != nil && b.DurationHours != nil
}

// Slot возвращает полуинтервал [start, end) в минутах от полуночи.
func (b Booking) Slot() (start, end int, ok bool) {
	if !b.TimeBound() {
		return 0, 0, false
	}
	start, err := ParseClock(*b.VisitTime)
	if err != nil {
		return 0, 0, false
	}
	return start, start + *b.DurationHours*60, true
}

// Conflicts проверяет пересечение слотов двух броней одного тарифа и даты.
// Интервалы полуоткрытые: стык «конец одной = начало другой» пересечением не считается.
func Conflicts(a, b Booking) bool {
	s1, e1, ok := a.Slot()
	if !ok {
		return false
	}
	s2, e2, ok := b.Slot()
	if !ok {
		return false
	}
	return s1 < e2 && s2 < e1
}

// ParseClock разбирает время вида «чч:мм» в минуты от полуночи.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w: время должно быть в формате чч:мм", ErrInvalidInput)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Filter ограничивает выборку списка броней.
type Filter struct {
	UserID   *int64
	TariffID *int64
	Date     *time.Time
	Limit    int
}

// View — проекция брони для списков админки: бронь плюс отображаемые
// поля пользователя и тарифа.
type View struct {
	Booking
	UserName      string
	TelegramID    int64
	TariffName    string
	TariffPurpose string
}
