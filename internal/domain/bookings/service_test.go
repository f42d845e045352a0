package bookings

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/coworking-bot/internal/domain/notifications"
	"github.com/Spok95/coworking-bot/internal/domain/tariffs"
)

// memStore реализует Store в памяти, повторяя семантику БД-репозитория:
// проверка пересечений и вставка выполняются под одним замком.
type memStore struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]Booking
	notes  []notifications.Notification

	updates     int
	lastRecheck bool // аргумент recheckSlot последнего Update
}

func newMemStore() *memStore { return &memStore{items: map[int64]Booking{}} }

func (m *memStore) Create(_ context.Context, b *Booking, note func(int64) notifications.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.items {
		if other.TariffID == b.TariffID && other.VisitDate.Equal(b.VisitDate) && Conflicts(*b, other) {
			return ErrSlotConflict
		}
	}
	m.nextID++
	b.ID = m.nextID
	b.CreatedAt = time.Now()
	m.items[b.ID] = *b
	if note != nil {
		m.notes = append(m.notes, note(b.ID))
	}
	return nil
}

func (m *memStore) Update(_ context.Context, b *Booking, recheckSlot bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	m.lastRecheck = recheckSlot
	if _, ok := m.items[b.ID]; !ok {
		return ErrNotFound
	}
	if recheckSlot {
		for id, other := range m.items {
			if id == b.ID {
				continue
			}
			if other.TariffID == b.TariffID && other.VisitDate.Equal(b.VisitDate) && Conflicts(*b, other) {
				return ErrSlotConflict
			}
		}
	}
	m.items[b.ID] = *b
	return nil
}

func (m *memStore) Confirm(_ context.Context, id int64, note notifications.Notification) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	if b.Confirmed {
		return nil, ErrAlreadyConfirmed
	}
	b.Confirmed = true
	m.items[id] = b
	m.notes = append(m.notes, note)
	return &b, nil
}

func (m *memStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memStore) GetByID(_ context.Context, id int64) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (m *memStore) List(_ context.Context, f Filter) ([]View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []View
	for _, b := range m.items {
		if f.UserID != nil && b.UserID != *f.UserID {
			continue
		}
		if f.TariffID != nil && b.TariffID != *f.TariffID {
			continue
		}
		out = append(out, View{Booking: b})
	}
	return out, nil
}

type fakeCatalog struct {
	m map[int64]tariffs.Tariff
}

func (f *fakeCatalog) GetActive(_ context.Context, id int64) (*tariffs.Tariff, error) {
	t, ok := f.m[id]
	if !ok {
		return nil, tariffs.ErrNotFound
	}
	if !t.IsActive {
		return nil, tariffs.ErrInactive
	}
	return &t, nil
}

func (f *fakeCatalog) GetByID(_ context.Context, id int64) (*tariffs.Tariff, error) {
	t, ok := f.m[id]
	if !ok {
		return nil, tariffs.ErrNotFound
	}
	return &t, nil
}

type fakeStats struct {
	mu     sync.Mutex
	counts map[int64]int
}

func (f *fakeStats) IncSuccessfulBookings(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counts == nil {
		f.counts = map[int64]int{}
	}
	f.counts[userID]++
	return nil
}

const (
	tariffMeeting  = int64(1) // Переговорная-A, 500 ₽/ч
	tariffDayPass  = int64(2) // Опенспейс, 700 ₽/день
	tariffDisabled = int64(3)
)

func newTestService() (*Service, *memStore, *fakeStats) {
	store := newMemStore()
	catalog := &fakeCatalog{m: map[int64]tariffs.Tariff{
		tariffMeeting:  {ID: tariffMeeting, Name: "Переговорная-A", Price: 500, Purpose: tariffs.PurposeMeetingRoom, IsActive: true},
		tariffDayPass:  {ID: tariffDayPass, Name: "Опенспейс", Price: 700, Purpose: tariffs.PurposeDayPass, IsActive: true},
		tariffDisabled: {ID: tariffDisabled, Name: "Архивный", Price: 300, Purpose: tariffs.PurposeMeetingRoom, IsActive: false},
	}}
	stats := &fakeStats{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(store, catalog, stats, log), store, stats
}

func sp(s string) *string { return &s }
func ip(i int) *int       { return &i }

var visitDate = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func meetingRequest(userID int64, clock string, hours int) CreateRequest {
	return CreateRequest{
		UserID:        userID,
		TariffID:      tariffMeeting,
		VisitDate:     visitDate,
		VisitTime:     sp(clock),
		DurationHours: ip(hours),
	}
}

func TestCreateMeetingRoom(t *testing.T) {
	svc, store, stats := newTestService()
	ctx := context.Background()

	b, tf, err := svc.Create(ctx, meetingRequest(10, "10:00", 2))
	require.NoError(t, err)
	assert.Equal(t, "Переговорная-A", tf.Name)
	assert.Equal(t, 1000.0, b.Amount)
	assert.False(t, b.Confirmed, "переговорная ждёт подтверждения оператором")
	assert.False(t, b.Paid)

	// ровно одно уведомление о создании, непрочитанное
	require.Len(t, store.notes, 1)
	n := store.notes[0]
	assert.Equal(t, notifications.KindBooking, n.Kind)
	assert.Equal(t, fmt.Sprintf("/booking/%d", b.ID), n.TargetURL)
	assert.False(t, n.IsRead)

	// счётчик успешных броней растёт только при подтверждении
	assert.Zero(t, stats.counts[10])
}

func TestCreateDayPass(t *testing.T) {
	svc, store, stats := newTestService()
	ctx := context.Background()

	b, _, err := svc.Create(ctx, CreateRequest{UserID: 10, TariffID: tariffDayPass, VisitDate: visitDate})
	require.NoError(t, err)
	assert.Equal(t, 700.0, b.Amount)
	assert.True(t, b.Confirmed, "дневная бронь подтверждена с момента создания")
	assert.Nil(t, b.VisitTime)
	assert.Nil(t, b.DurationHours)
	assert.Equal(t, 1, stats.counts[10])
	require.Len(t, store.notes, 1)
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name string
		req  CreateRequest
		want error
	}{
		{"no time", CreateRequest{UserID: 1, TariffID: tariffMeeting, VisitDate: visitDate, DurationHours: ip(2)}, ErrInvalidInput},
		{"no duration", CreateRequest{UserID: 1, TariffID: tariffMeeting, VisitDate: visitDate, VisitTime: sp("10:00")}, ErrInvalidInput},
		{"zero duration", meetingRequest(1, "10:00", 0), ErrInvalidInput},
		{"bad clock", meetingRequest(1, "10-00", 2), ErrInvalidInput},
		{"inactive tariff", CreateRequest{UserID: 1, TariffID: tariffDisabled, VisitDate: visitDate, VisitTime: sp("10:00"), DurationHours: ip(1)}, tariffs.ErrInactive},
		{"unknown tariff", CreateRequest{UserID: 1, TariffID: 99, VisitDate: visitDate, VisitTime: sp("10:00"), DurationHours: ip(1)}, tariffs.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Create(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateOverlapRejected(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Create(ctx, meetingRequest(10, "10:00", 2))
	require.NoError(t, err)

	_, _, err = svc.Create(ctx, meetingRequest(11, "11:00", 1))
	assert.ErrorIs(t, err, ErrSlotConflict, "pending-бронь уже держит слот")
}

func TestCreateTouchingIntervals(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Create(ctx, meetingRequest(10, "10:00", 1))
	require.NoError(t, err)
	_, _, err = svc.Create(ctx, meetingRequest(11, "11:00", 1))
	assert.NoError(t, err, "стык интервалов пересечением не считается")
}

func TestDayPassNoExclusivity(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	for userID := int64(1); userID <= 3; userID++ {
		_, _, err := svc.Create(ctx, CreateRequest{UserID: userID, TariffID: tariffDayPass, VisitDate: visitDate})
		require.NoError(t, err)
	}
}

func TestEditAmountPaidSkipsConflictCheck(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	b, _, err := svc.Create(ctx, meetingRequest(10, "10:00", 2))
	require.NoError(t, err)

	got, err := svc.Edit(ctx, b.ID, EditRequest{Amount: sp2(900), Paid: bp(true)})
	require.NoError(t, err)
	assert.Equal(t, 900.0, got.Amount)
	assert.True(t, got.Paid)
	assert.Equal(t, 1, store.updates)
	assert.False(t, store.lastRecheck, "правка суммы/оплаты не трогает слот")
}

func TestEditTimeRechecksAtomically(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Create(ctx, meetingRequest(10, "10:00", 2))
	require.NoError(t, err)
	second, _, err := svc.Create(ctx, meetingRequest(11, "13:00", 1))
	require.NoError(t, err)

	// переносим вторую бронь внутрь первой
	_, err = svc.Edit(ctx, second.ID, EditRequest{VisitTime: sp("10:30"), Amount: sp2(9999)})
	assert.ErrorIs(t, err, ErrSlotConflict)

	// провал отменяет правку целиком, включая сумму
	got, err := svc.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "13:00", *got.VisitTime)
	assert.Equal(t, 500.0, got.Amount)
}

func TestEditOwnSlotDoesNotSelfConflict(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	b, _, err := svc.Create(ctx, meetingRequest(10, "10:00", 3))
	require.NoError(t, err)

	// сжимаем собственный слот — пересечение с самим собой не считается
	got, err := svc.Edit(ctx, b.ID, EditRequest{DurationHours: ip(1)})
	require.NoError(t, err)
	assert.Equal(t, 1, *got.DurationHours)
}

func TestEditDayPassRejectsSlotFields(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	b, _, err := svc.Create(ctx, CreateRequest{UserID: 10, TariffID: tariffDayPass, VisitDate: visitDate})
	require.NoError(t, err)

	_, err = svc.Edit(ctx, b.ID, EditRequest{VisitTime: sp("10:00")})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Edit(ctx, b.ID, EditRequest{DurationHours: ip(2)})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, store.updates, "отклонённая правка не доходит до хранилища")
}

func TestSetPaid(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	b, _, err := svc.Create(ctx, CreateRequest{UserID: 10, TariffID: tariffDayPass, VisitDate: visitDate})
	require.NoError(t, err)

	got, err := svc.SetPaid(ctx, b.ID, true)
	require.NoError(t, err)
	assert.True(t, got.Paid)
	assert.False(t, store.lastRecheck)

	_, err = svc.SetPaid(ctx, 999, true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConfirm(t *testing.T) {
	svc, store, stats := newTestService()
	ctx := context.Background()

	b, _, err := svc.Create(ctx, meetingRequest(10, "10:00", 2))
	require.NoError(t, err)

	got, err := svc.Confirm(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, got.Confirmed)
	assert.Equal(t, 1, stats.counts[10])

	// создание + подтверждение
	require.Len(t, store.notes, 2)
	assert.Equal(t, fmt.Sprintf("Бронь #%d подтверждена", b.ID), store.notes[1].Message)

	_, err = svc.Confirm(ctx, b.ID)
	assert.ErrorIs(t, err, ErrAlreadyConfirmed)

	_, err = svc.Confirm(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConfirmDayPassInvalid(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	b, _, err := svc.Create(ctx, CreateRequest{UserID: 10, TariffID: tariffDayPass, VisitDate: visitDate})
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, b.ID)
	assert.ErrorIs(t, err, ErrInvalidTariffType)
}

func TestDeleteFreesSlot(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	// сценарий: бронь 10:00/2ч мешает брони 11:00/1ч, пока не удалена
	first, _, err := svc.Create(ctx, meetingRequest(10, "10:00", 2))
	require.NoError(t, err)
	assert.Equal(t, 1000.0, first.Amount)
	assert.False(t, first.Confirmed)

	_, _, err = svc.Create(ctx, meetingRequest(11, "11:00", 1))
	require.ErrorIs(t, err, ErrSlotConflict)

	confirmed, err := svc.Confirm(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, confirmed.Confirmed)

	require.NoError(t, svc.Delete(ctx, first.ID))

	_, _, err = svc.Create(ctx, meetingRequest(11, "11:00", 1))
	assert.NoError(t, err, "после удаления слот свободен")

	assert.ErrorIs(t, svc.Delete(ctx, first.ID), ErrNotFound)
}

func TestConcurrentCreateSingleWinner(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// окна взаимно пересекаются: все стартуют внутри 10:00–12:00
			clock := fmt.Sprintf("%02d:%02d", 10+i%2, (i*13)%60)
			_, _, err := svc.Create(ctx, meetingRequest(int64(i+1), clock, 2))
			errs[i] = err
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, ErrSlotConflict)
		}
	}
	assert.Equal(t, 1, ok, "из пересекающихся заявок проходит ровно одна")
}

func sp2(v float64) *float64 { return &v }
func bp(v bool) *bool        { return &v }
