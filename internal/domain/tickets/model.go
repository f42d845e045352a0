package tickets

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status — жизненный цикл заявки в поддержку.
type Status string

const (
	StatusOpen       Status = "открыта"
	StatusInProgress Status = "в работе"
	StatusClosed     Status = "закрыта"
)

var (
	ErrNotFound     = errors.New("tickets: not found")
	ErrInvalidInput = errors.New("tickets: invalid input")
	ErrStorage      = errors.New("tickets: storage failure")
)

type Ticket struct {
	ID          int64
	UserID      int64
	Description string
	PhotoID     *string // file_id фото в Telegram, если прикреплено
	Status      Status
	Comment     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// View — заявка с отображаемыми полями пользователя для админки.
type View struct {
	Ticket
	UserName   string
	TelegramID int64
}

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusClosed:
		return true
	}
	return false
}

// ValidateStatus проверяет смену статуса: закрыть заявку без комментария нельзя.
func ValidateStatus(s Status, comment string) error {
	if !s.Valid() {
		return fmt.Errorf("%w: неизвестный статус %q", ErrInvalidInput, s)
	}
	if s == StatusClosed && strings.TrimSpace(comment) == "" {
		return fmt.Errorf("%w: для закрытия заявки нужен комментарий", ErrInvalidInput)
	}
	return nil
}

// StatusMessage — текст для клиента при смене статуса его заявки.
func StatusMessage(id int64, s Status, comment string) string {
	msg := fmt.Sprintf("Статус заявки #%d изменён на '%s'", id, s)
	if comment != "" {
		msg += "\nКомментарий: " + comment
	}
	return msg
}
