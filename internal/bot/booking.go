package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/coworking-bot/internal/dialog"
	"github.com/Spok95/coworking-bot/internal/domain/bookings"
	"github.com/Spok95/coworking-bot/internal/domain/tariffs"
)

func (b *Bot) startBooking(ctx context.Context, chatID int64) {
	list, err := b.tariffs.List(ctx, true)
	if err != nil {
		b.log.Error("list tariffs failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Ошибка загрузки тарифов"))
		return
	}
	if len(list) == 0 {
		m := tgbotapi.NewMessage(chatID, "Нет доступных тарифов для бронирования.")
		m.ReplyMarkup = backKeyboard()
		b.send(m)
		return
	}

	_ = b.states.Set(ctx, chatID, dialog.StateBookTariff, dialog.Payload{})
	m := tgbotapi.NewMessage(chatID, "Выберите тариф:")
	m.ReplyMarkup = tariffKeyboard(list)
	b.send(m)
}

func (b *Bot) handleTariffChosen(ctx context.Context, chatID int64, tariffID int64) {
	t, err := b.tariffs.GetActive(ctx, tariffID)
	if err != nil {
		b.send(tgbotapi.NewMessage(chatID, "Тариф не найден или отключён. Попробуйте снова."))
		return
	}

	_ = b.states.Set(ctx, chatID, dialog.StateBookDate, dialog.Payload{"tariff_id": t.ID})
	m := tgbotapi.NewMessage(chatID,
		fmt.Sprintf("Вы выбрали тариф: %s\nВведите дату визита (гггг-мм-дд, например, 2025-07-25):", t.Name))
	m.ReplyMarkup = backKeyboard()
	b.send(m)
}

func (b *Bot) handleBookDate(ctx context.Context, msg *tgbotapi.Message, st *dialog.Item) {
	chatID := msg.Chat.ID

	visitDate, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(msg.Text), b.loc)
	if err != nil {
		b.send(tgbotapi.NewMessage(chatID, "Неверный формат даты. Введите в формате гггг-мм-дд (например, 2025-07-25):"))
		return
	}
	now := time.Now().In(b.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, b.loc)
	if visitDate.Before(today) {
		b.send(tgbotapi.NewMessage(chatID, "Дата не может быть в прошлом. Введите снова:"))
		return
	}

	tariffID, ok := dialog.GetInt64(st.Payload, "tariff_id")
	if !ok {
		_ = b.states.Reset(ctx, chatID)
		b.send(tgbotapi.NewMessage(chatID, "Диалог сброшен, начните бронирование заново."))
		return
	}
	t, err := b.tariffs.GetActive(ctx, tariffID)
	if err != nil {
		_ = b.states.Reset(ctx, chatID)
		b.send(tgbotapi.NewMessage(chatID, "Тариф больше недоступен. Начните заново."))
		return
	}

	st.Payload["date"] = visitDate.Format("2006-01-02")
	if t.TimeBound() {
		_ = b.states.Set(ctx, chatID, dialog.StateBookTime, st.Payload)
		b.send(tgbotapi.NewMessage(chatID, "Введите время визита (чч:мм, например, 14:30):"))
		return
	}

	// опенспейс бронируется сразу, без времени
	b.finishBooking(ctx, msg, st.Payload, nil, nil)
}

func (b *Bot) handleBookTime(ctx context.Context, msg *tgbotapi.Message, st *dialog.Item) {
	chatID := msg.Chat.ID
	raw := strings.TrimSpace(msg.Text)
	if _, err := bookings.ParseClock(raw); err != nil {
		b.send(tgbotapi.NewMessage(chatID, "Неверный формат времени. Введите в формате чч:мм (например, 14:30):"))
		return
	}
	st.Payload["time"] = raw
	_ = b.states.Set(ctx, chatID, dialog.StateBookDuration, st.Payload)
	b.send(tgbotapi.NewMessage(chatID, "Введите продолжительность бронирования в часах (например, 2):"))
}

func (b *Bot) handleBookDuration(ctx context.Context, msg *tgbotapi.Message, st *dialog.Item) {
	chatID := msg.Chat.ID
	dur, err := strconv.Atoi(strings.TrimSpace(msg.Text))
	if err != nil {
		b.send(tgbotapi.NewMessage(chatID, "Введите целое число часов (например, 2):"))
		return
	}
	if dur < 1 {
		b.send(tgbotapi.NewMessage(chatID, "Продолжительность должна быть не меньше 1 часа. Введите снова:"))
		return
	}

	visitTime, _ := dialog.GetString(st.Payload, "time")
	b.finishBooking(ctx, msg, st.Payload, &visitTime, &dur)
}

func (b *Bot) finishBooking(ctx context.Context, msg *tgbotapi.Message, p dialog.Payload, visitTime *string, dur *int) {
	chatID := msg.Chat.ID

	u, err := b.users.GetByTelegramID(ctx, msg.From.ID)
	if err != nil || u == nil {
		b.send(tgbotapi.NewMessage(chatID, "Сначала пройдите регистрацию: /start"))
		return
	}
	tariffID, _ := dialog.GetInt64(p, "tariff_id")
	dateStr, _ := dialog.GetString(p, "date")
	visitDate, err := time.ParseInLocation("2006-01-02", dateStr, b.loc)
	if err != nil {
		_ = b.states.Reset(ctx, chatID)
		b.send(tgbotapi.NewMessage(chatID, "Диалог сброшен, начните бронирование заново."))
		return
	}

	bk, t, err := b.scheduler.Create(ctx, bookings.CreateRequest{
		UserID:        u.ID,
		TariffID:      tariffID,
		VisitDate:     visitDate,
		VisitTime:     visitTime,
		DurationHours: dur,
	})
	if err != nil {
		b.replyBookingError(ctx, chatID, p, err)
		return
	}
	_ = b.states.Reset(ctx, chatID)

	var sb strings.Builder
	sb.WriteString("Бронь создана!\n")
	sb.WriteString("Тариф: " + t.Name + "\n")
	sb.WriteString("Дата: " + dateStr + "\n")
	if bk.TimeBound() {
		sb.WriteString(fmt.Sprintf("Время: %s\nПродолжительность: %d ч\n", *bk.VisitTime, *bk.DurationHours))
	}
	sb.WriteString(fmt.Sprintf("Сумма: %.2f ₽\n", bk.Amount))
	sb.WriteString("Оплата: " + b.pay.PaymentURL(bk.ID) + "\n")
	if bk.Confirmed {
		sb.WriteString("Бронь подтверждена.")
	} else {
		sb.WriteString("Ожидайте подтверждения.")
	}

	m := tgbotapi.NewMessage(chatID, sb.String())
	m.ReplyMarkup = userMenuKeyboard()
	b.send(m)

	admin := fmt.Sprintf("Новая бронь #%d: %s, %s", bk.ID, t.Name, dateStr)
	if bk.TimeBound() {
		admin += fmt.Sprintf(", %s, %d ч", *bk.VisitTime, *bk.DurationHours)
	}
	admin += " — " + u.FullName
	b.notifyAdmin(admin)
}

func (b *Bot) replyBookingError(ctx context.Context, chatID int64, p dialog.Payload, err error) {
	switch {
	case errors.Is(err, bookings.ErrSlotConflict):
		delete(p, "time")
		_ = b.states.Set(ctx, chatID, dialog.StateBookTime, p)
		b.send(tgbotapi.NewMessage(chatID, "Это время уже занято — выберите другое время (чч:мм):"))
	case errors.Is(err, tariffs.ErrInactive), errors.Is(err, tariffs.ErrNotFound):
		_ = b.states.Reset(ctx, chatID)
		b.send(tgbotapi.NewMessage(chatID, "Тариф больше недоступен. Начните бронирование заново."))
	case errors.Is(err, bookings.ErrInvalidInput):
		b.send(tgbotapi.NewMessage(chatID, "Проверьте введённые данные и попробуйте снова."))
	default:
		b.log.Error("create booking failed", "err", err)
		_ = b.states.Reset(ctx, chatID)
		b.send(tgbotapi.NewMessage(chatID, "Не удалось создать бронь, попробуйте позже."))
	}
}
