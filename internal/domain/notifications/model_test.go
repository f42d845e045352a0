package notifications

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventConstructors(t *testing.T) {
	n := NewUser(7, "Иванов Иван")
	assert.Equal(t, KindUser, n.Kind)
	assert.Equal(t, "Новый пользователь: Иванов Иван", n.Message)
	assert.Equal(t, "/user/7", n.TargetURL)
	assert.False(t, n.IsRead)

	n = BookingCreated(42, "Переговорная-A", "2024-06-01")
	assert.Equal(t, KindBooking, n.Kind)
	assert.Equal(t, "Новая бронь #42: Переговорная-A, 2024-06-01", n.Message)
	assert.Equal(t, "/booking/42", n.TargetURL)

	n = TicketCreated(5, "Иванов Иван")
	assert.Equal(t, KindTicket, n.Kind)
	assert.Equal(t, "Новая заявка #5: Иванов Иван", n.Message)
	assert.Equal(t, "/ticket/5", n.TargetURL)

	n = BookingConfirmed(42)
	assert.Equal(t, KindBooking, n.Kind)
	assert.Equal(t, "Бронь #42 подтверждена", n.Message)
	assert.Equal(t, "/booking/42", n.TargetURL)
}

func TestWithDefaults(t *testing.T) {
	n := withDefaults(Notification{Message: "что-то произошло"})
	assert.Equal(t, KindOther, n.Kind)
	assert.Equal(t, "/notifications", n.TargetURL)

	// заполненные поля не перетираются
	n = withDefaults(BookingCreated(1, "x", "2024-06-01"))
	assert.Equal(t, KindBooking, n.Kind)
	assert.Equal(t, "/booking/1", n.TargetURL)
}
