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
	"github.com/Spok95/coworking-bot/internal/domain/notifications"
	"github.com/Spok95/coworking-bot/internal/domain/tariffs"
)

const adminListLimit = 10

/*** БРОНИ ***/

func (b *Bot) showBookings(ctx context.Context, chatID int64) {
	list, err := b.scheduler.List(ctx, bookings.Filter{Limit: adminListLimit})
	if err != nil {
		b.log.Error("list bookings failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Ошибка загрузки броней"))
		return
	}
	if len(list) == 0 {
		b.send(tgbotapi.NewMessage(chatID, "Броней пока нет."))
		return
	}

	b.send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Последние брони (%d):", len(list))))
	for _, v := range list {
		m := tgbotapi.NewMessage(chatID, formatBookingCard(v))
		m.ReplyMarkup = bookingAdminKeyboard(v.ID, v.Confirmed, v.TimeBound())
		b.send(m)
	}
}

func formatBookingCard(v bookings.View) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Бронь #%d — %s\n", v.ID, v.TariffName))
	sb.WriteString("Клиент: " + v.UserName + "\n")
	sb.WriteString("Дата: " + v.VisitDate.Format("2006-01-02") + "\n")
	if v.TimeBound() {
		sb.WriteString(fmt.Sprintf("Время: %s, %d ч\n", *v.VisitTime, *v.DurationHours))
	}
	sb.WriteString(fmt.Sprintf("Сумма: %.2f ₽\n", v.Amount))
	sb.WriteString("Оплата: " + yesNo(v.Paid) + ", подтверждена: " + yesNo(v.Confirmed))
	return sb.String()
}

func yesNo(v bool) string {
	if v {
		return "да"
	}
	return "нет"
}

func (b *Bot) adminConfirmBooking(ctx context.Context, chatID int64, id int64) {
	bk, err := b.scheduler.Confirm(ctx, id)
	switch {
	case err == nil:
	case errors.Is(err, bookings.ErrAlreadyConfirmed):
		b.send(tgbotapi.NewMessage(chatID, "Бронь уже подтверждена."))
		return
	case errors.Is(err, bookings.ErrInvalidTariffType):
		b.send(tgbotapi.NewMessage(chatID, "Дневные брони подтверждаются автоматически."))
		return
	case errors.Is(err, bookings.ErrNotFound):
		b.send(tgbotapi.NewMessage(chatID, "Бронь не найдена."))
		return
	default:
		b.log.Error("confirm booking failed", "booking_id", id, "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Ошибка при подтверждении брони"))
		return
	}

	b.send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Бронь #%d подтверждена.", id)))

	// сообщаем клиенту
	u, err := b.users.GetByID(ctx, bk.UserID)
	if err != nil {
		b.log.Error("load booking user failed", "booking_id", id, "err", err)
		return
	}
	t, err := b.tariffs.GetByID(ctx, bk.TariffID)
	if err != nil {
		b.log.Error("load booking tariff failed", "booking_id", id, "err", err)
		return
	}
	text := fmt.Sprintf("Ваша бронь подтверждена!\nТариф: %s\nДата: %s",
		t.Name, bk.VisitDate.Format("2006-01-02"))
	if bk.TimeBound() {
		text += fmt.Sprintf("\nВремя: %s\nПродолжительность: %d ч", *bk.VisitTime, *bk.DurationHours)
	}
	b.send(tgbotapi.NewMessage(u.TelegramID, text))
}

func (b *Bot) adminDeleteBooking(ctx context.Context, chatID int64, id int64) {
	if err := b.scheduler.Delete(ctx, id); err != nil {
		if errors.Is(err, bookings.ErrNotFound) {
			b.send(tgbotapi.NewMessage(chatID, "Бронь не найдена."))
			return
		}
		b.log.Error("delete booking failed", "booking_id", id, "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Ошибка при удалении брони"))
		return
	}
	b.send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Бронь #%d удалена, слот освобождён.", id)))
}

/*** ТАРИФЫ ***/

func (b *Bot) showTariffs(ctx context.Context, chatID int64) {
	list, err := b.tariffs.List(ctx, false)
	if err != nil {
		b.log.Error("list tariffs failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Ошибка загрузки тарифов"))
		return
	}

	rows := [][]tgbotapi.InlineKeyboardButton{}
	var sb strings.Builder
	sb.WriteString("Тарифы:\n")
	for _, t := range list {
		status := "выключен"
		if t.IsActive {
			status = "активен"
		}
		kind := "день"
		if t.TimeBound() {
			kind = "час"
		}
		sb.WriteString(fmt.Sprintf("#%d %s — %.2f ₽/%s, %s\n", t.ID, t.Name, t.Price, kind, status))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("Вкл/выкл «%s»", t.Name),
				fmt.Sprintf("adm:tariff:toggle:%d", t.ID),
			),
		))
	}
	if len(list) == 0 {
		sb.WriteString("пока пусто\n")
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("➕ Новый тариф", "adm:tariff:new"),
	))

	m := tgbotapi.NewMessage(chatID, sb.String())
	m.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.send(m)
}

func (b *Bot) adminToggleTariff(ctx context.Context, chatID int64, id int64) {
	t, err := b.tariffs.GetByID(ctx, id)
	if err != nil {
		b.send(tgbotapi.NewMessage(chatID, "Тариф не найден."))
		return
	}
	// существующие брони деактивация не трогает — блокируются только новые
	if err := b.tariffs.SetActive(ctx, id, !t.IsActive); err != nil {
		b.log.Error("toggle tariff failed", "tariff_id", id, "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Ошибка при переключении тарифа"))
		return
	}
	b.showTariffs(ctx, chatID)
}

func (b *Bot) handleTariffName(ctx context.Context, msg *tgbotapi.Message, st *dialog.Item) {
	chatID := msg.Chat.ID
	name := strings.TrimSpace(msg.Text)
	if name == "" {
		b.send(tgbotapi.NewMessage(chatID, "Название не может быть пустым. Введите снова:"))
		return
	}
	st.Payload["name"] = name
	_ = b.states.Set(ctx, chatID, dialog.StateAdmTariffPrice, st.Payload)
	b.send(tgbotapi.NewMessage(chatID, "Цена (за час для переговорной, за день для опенспейса):"))
}

func (b *Bot) handleTariffPrice(ctx context.Context, msg *tgbotapi.Message, st *dialog.Item) {
	chatID := msg.Chat.ID
	price, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(msg.Text), ",", "."), 64)
	if err != nil || price < 0 {
		b.send(tgbotapi.NewMessage(chatID, "Введите неотрицательное число, например 500 или 499.90:"))
		return
	}
	st.Payload["price"] = price
	_ = b.states.Set(ctx, chatID, dialog.StateAdmTariffPurpose, st.Payload)
	m := tgbotapi.NewMessage(chatID, "Назначение тарифа:")
	m.ReplyMarkup = purposeKeyboard()
	b.send(m)
}

func (b *Bot) handleTariffPurpose(ctx context.Context, chatID int64, purpose string) {
	st, _ := b.states.Get(ctx, chatID)
	if st.State != dialog.StateAdmTariffPurpose {
		return
	}
	name, _ := dialog.GetString(st.Payload, "name")
	price, _ := st.Payload["price"].(float64)

	var p tariffs.Purpose
	switch purpose {
	case string(tariffs.PurposeMeetingRoom):
		p = tariffs.PurposeMeetingRoom
	case string(tariffs.PurposeDayPass):
		p = tariffs.PurposeDayPass
	default:
		return
	}

	id, err := b.tariffs.Create(ctx, &tariffs.Tariff{
		Name:     name,
		Price:    price,
		Purpose:  p,
		IsActive: true,
	})
	if err != nil {
		b.log.Error("create tariff failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Ошибка при создании тарифа"))
		return
	}
	_ = b.states.Reset(ctx, chatID)
	b.send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Тариф #%d «%s» создан.", id, name)))
	b.showTariffs(ctx, chatID)
}

/*** УВЕДОМЛЕНИЯ ***/

func (b *Bot) showNotifications(ctx context.Context, chatID int64) {
	feed, err := b.notes.Recent(ctx, adminListLimit)
	if err != nil {
		b.log.Error("load notifications failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Ошибка загрузки уведомлений"))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Непрочитанных: %d\n\n", feed.Unread))
	rows := [][]tgbotapi.InlineKeyboardButton{}
	for _, n := range feed.Items {
		mark := "🔴"
		if n.IsRead {
			mark = "✓"
		}
		sb.WriteString(fmt.Sprintf("%s #%d %s (%s)\n", mark, n.ID, n.Message, n.CreatedAt.In(b.loc).Format("2006-01-02 15:04")))
		if !n.IsRead {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(
					fmt.Sprintf("Прочитано #%d", n.ID),
					fmt.Sprintf("ntf:read:%d", n.ID),
				),
			))
		}
	}
	if len(feed.Items) == 0 {
		sb.WriteString("уведомлений нет\n")
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Прочитать все", "ntf:readall"),
		tgbotapi.NewInlineKeyboardButtonData("Очистить старые", "ntf:prune"),
	))

	m := tgbotapi.NewMessage(chatID, sb.String())
	m.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.send(m)
}

func (b *Bot) adminMarkNotificationRead(ctx context.Context, chatID int64, id int64) {
	if err := b.notes.MarkRead(ctx, id); err != nil {
		if errors.Is(err, notifications.ErrNotFound) {
			b.send(tgbotapi.NewMessage(chatID, "Уведомление не найдено."))
			return
		}
		b.log.Error("mark notification read failed", "id", id, "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Ошибка при обновлении уведомления"))
		return
	}
	b.showNotifications(ctx, chatID)
}

func (b *Bot) adminMarkAllRead(ctx context.Context, chatID int64) {
	n, err := b.notes.MarkAllRead(ctx)
	if err != nil {
		b.log.Error("mark all read failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Ошибка при обновлении уведомлений"))
		return
	}
	b.send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Помечено как прочитано: %d.", n)))
	b.showNotifications(ctx, chatID)
}

// adminPruneNotifications удаляет прочитанные уведомления старше 30 дней.
func (b *Bot) adminPruneNotifications(ctx context.Context, chatID int64) {
	threshold := time.Now().In(b.loc).AddDate(0, 0, -30)
	n, err := b.notes.PruneRead(ctx, threshold)
	if err != nil {
		b.log.Error("prune notifications failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Ошибка при очистке уведомлений"))
		return
	}
	b.send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Удалено старых прочитанных уведомлений: %d.", n)))
}
