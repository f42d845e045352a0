package bookings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Spok95/coworking-bot/internal/domain/notifications"
	"github.com/Spok95/coworking-bot/internal/domain/tariffs"
	"github.com/Spok95/coworking-bot/internal/infra/metrics"
)

// Store — персистентный слой броней. Реализация обязана выполнять
// проверку пересечений и вставку атомарно относительно других записей
// по тому же тарифу и дате.
type Store interface {
	Create(ctx context.Context, b *Booking, note func(id int64) notifications.Notification) error
	Update(ctx context.Context, b *Booking, recheckSlot bool) error
	Confirm(ctx context.Context, id int64, note notifications.Notification) (*Booking, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Booking, error)
	List(ctx context.Context, f Filter) ([]View, error)
}

// Catalog — каталог тарифов.
type Catalog interface {
	GetActive(ctx context.Context, id int64) (*tariffs.Tariff, error)
	GetByID(ctx context.Context, id int64) (*tariffs.Tariff, error)
}

// UserStats — счётчик успешных броней пользователя.
type UserStats interface {
	IncSuccessfulBookings(ctx context.Context, userID int64) error
}

// Service — планировщик броней: валидация против каталога, расчёт цены,
// жизненный цикл и эмиссия доменных событий.
type Service struct {
	store   Store
	catalog Catalog
	stats   UserStats
	log     *slog.Logger
}

func NewService(store Store, catalog Catalog, stats UserStats, log *slog.Logger) *Service {
	return &Service{store: store, catalog: catalog, stats: stats, log: log}
}

// CreateRequest — заявка на бронь. VisitTime и DurationHours обязательны
// только для почасовых тарифов.
type CreateRequest struct {
	UserID        int64
	TariffID      int64
	VisitDate     time.Time
	VisitTime     *string
	DurationHours *int
}

// Create валидирует заявку, считает и замораживает цену, сохраняет бронь
// и эмитит событие BookingCreated.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Booking, *tariffs.Tariff, error) {
	t, err := s.catalog.GetActive(ctx, req.TariffID)
	if err != nil {
		return nil, nil, err
	}

	b := &Booking{
		UserID:    req.UserID,
		TariffID:  t.ID,
		VisitDate: req.VisitDate,
	}

	if t.TimeBound() {
		if req.VisitTime == nil || req.DurationHours == nil {
			return nil, nil, fmt.Errorf("%w: для переговорной нужны время и продолжительность", ErrInvalidInput)
		}
		if *req.DurationHours < 1 {
			return nil, nil, fmt.Errorf("%w: продолжительность — от 1 часа", ErrInvalidInput)
		}
		if _, err := ParseClock(*req.VisitTime); err != nil {
			return nil, nil, err
		}
		b.VisitTime = req.VisitTime
		b.DurationHours = req.DurationHours
		b.Amount = t.PriceFor(*req.DurationHours)
		// переговорная ждёт подтверждения оператором
		b.Confirmed = false
	} else {
		b.Amount = t.PriceFor(0)
		// дневные тарифы подтверждены с момента создания
		b.Confirmed = true
	}

	err = s.store.Create(ctx, b, func(id int64) notifications.Notification {
		return notifications.BookingCreated(id, t.Name, b.VisitDate.Format("2006-01-02"))
	})
	if err != nil {
		if errors.Is(err, ErrSlotConflict) {
			metrics.SlotConflicts.Inc()
		}
		return nil, nil, err
	}

	metrics.BookingsCreated.WithLabelValues(string(t.Purpose)).Inc()
	if !t.TimeBound() {
		// дневная бронь успешна сразу; для переговорной счётчик растёт при подтверждении
		if err := s.stats.IncSuccessfulBookings(ctx, b.UserID); err != nil {
			s.log.Error("inc successful bookings failed", "user_id", b.UserID, "err", err)
		}
	}

	s.log.Info("booking created",
		"booking_id", b.ID, "user_id", b.UserID, "tariff_id", t.ID,
		"date", b.VisitDate.Format("2006-01-02"), "amount", b.Amount)
	return b, t, nil
}

// EditRequest — правка из админки: nil-поле остаётся как было.
type EditRequest struct {
	VisitDate     *time.Time
	VisitTime     *string
	DurationHours *int
	Amount        *float64
	Paid          *bool
}

// Edit перечитывает и перезаписывает бронь. Проверка пересечений
// запускается только если поменялись дата, время или продолжительность;
// правка суммы или флага оплаты слот не трогает.
func (s *Service) Edit(ctx context.Context, id int64, req EditRequest) (*Booking, error) {
	b, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// тариф может быть уже деактивирован — правка существующей брони
	// это исправление данных, а не новый допуск
	t, err := s.catalog.GetByID(ctx, b.TariffID)
	if err != nil {
		return nil, err
	}

	recheck := false
	if req.VisitDate != nil && !req.VisitDate.Equal(b.VisitDate) {
		b.VisitDate = *req.VisitDate
		recheck = true
	}
	if !t.TimeBound() && (req.VisitTime != nil || req.DurationHours != nil) {
		return nil, fmt.Errorf("%w: у дневного тарифа нет времени и продолжительности", ErrInvalidInput)
	}
	if t.TimeBound() {
		if req.VisitTime != nil && (b.VisitTime == nil || *req.VisitTime != *b.VisitTime) {
			if _, err := ParseClock(*req.VisitTime); err != nil {
				return nil, err
			}
			b.VisitTime = req.VisitTime
			recheck = true
		}
		if req.DurationHours != nil && (b.DurationHours == nil || *req.DurationHours != *b.DurationHours) {
			if *req.DurationHours < 1 {
				return nil, fmt.Errorf("%w: продолжительность — от 1 часа", ErrInvalidInput)
			}
			b.DurationHours = req.DurationHours
			recheck = true
		}
	}
	if req.Amount != nil {
		if *req.Amount < 0 {
			return nil, fmt.Errorf("%w: сумма не может быть отрицательной", ErrInvalidInput)
		}
		b.Amount = *req.Amount
	}
	if req.Paid != nil {
		b.Paid = *req.Paid
	}

	if err := s.store.Update(ctx, b, recheck && t.TimeBound()); err != nil {
		if errors.Is(err, ErrSlotConflict) {
			metrics.SlotConflicts.Inc()
		}
		return nil, err
	}
	s.log.Info("booking updated", "booking_id", b.ID, "slot_rechecked", recheck && t.TimeBound())
	return b, nil
}

// SetPaid — точка входа платёжного коллаборатора, частный случай Edit.
func (s *Service) SetPaid(ctx context.Context, id int64, paid bool) (*Booking, error) {
	return s.Edit(ctx, id, EditRequest{Paid: &paid})
}

// Confirm подтверждает бронь переговорной и эмитит BookingConfirmed.
func (s *Service) Confirm(ctx context.Context, id int64) (*Booking, error) {
	b, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	t, err := s.catalog.GetByID(ctx, b.TariffID)
	if err != nil {
		return nil, err
	}
	if !t.TimeBound() {
		return nil, ErrInvalidTariffType
	}

	b, err = s.store.Confirm(ctx, id, notifications.BookingConfirmed(id))
	if err != nil {
		return nil, err
	}

	metrics.BookingsConfirmed.Inc()
	if err := s.stats.IncSuccessfulBookings(ctx, b.UserID); err != nil {
		s.log.Error("inc successful bookings failed", "user_id", b.UserID, "err", err)
	}
	s.log.Info("booking confirmed", "booking_id", b.ID)
	return b, nil
}

// Delete удаляет бронь; следующая проверка пересечений её уже не увидит.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("booking deleted", "booking_id", id)
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Booking, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter) ([]View, error) {
	return s.store.List(ctx, f)
}
