package notifications

import (
	"errors"
	"fmt"
	"time"
)

type Kind string

const (
	KindUser    Kind = "user"
	KindBooking Kind = "booking"
	KindTicket  Kind = "ticket"
	KindOther   Kind = "other"
)

var (
	ErrNotFound = errors.New("notifications: not found")
	ErrStorage  = errors.New("notifications: storage failure")
)

type Notification struct {
	ID        int64
	Kind      Kind
	Message   string
	TargetURL string
	IsRead    bool
	CreatedAt time.Time
}

// Feed — то, что показывает колокольчик в админке: последние записи и счётчик.
type Feed struct {
	Items  []Notification
	Unread int
}

// NewUser — событие завершённой регистрации пользователя.
func NewUser(userID int64, fullName string) Notification {
	return Notification{
		Kind:      KindUser,
		Message:   fmt.Sprintf("Новый пользователь: %s", fullName),
		TargetURL: fmt.Sprintf("/user/%d", userID),
	}
}

// BookingCreated — событие новой брони.
func BookingCreated(bookingID int64, tariffName, visitDate string) Notification {
	return Notification{
		Kind:      KindBooking,
		Message:   fmt.Sprintf("Новая бронь #%d: %s, %s", bookingID, tariffName, visitDate),
		TargetURL: fmt.Sprintf("/booking/%d", bookingID),
	}
}

// TicketCreated — событие новой заявки в поддержку.
func TicketCreated(ticketID int64, fullName string) Notification {
	return Notification{
		Kind:      KindTicket,
		Message:   fmt.Sprintf("Новая заявка #%d: %s", ticketID, fullName),
		TargetURL: fmt.Sprintf("/ticket/%d", ticketID),
	}
}

// BookingConfirmed — событие подтверждения брони оператором.
func BookingConfirmed(bookingID int64) Notification {
	return Notification{
		Kind:      KindBooking,
		Message:   fmt.Sprintf("Бронь #%d подтверждена", bookingID),
		TargetURL: fmt.Sprintf("/booking/%d", bookingID),
	}
}
