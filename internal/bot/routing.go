package bot

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/coworking-bot/internal/dialog"
)

func (b *Bot) onMessage(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	if b.isAdmin(msg.From.ID) && b.handleAdminButton(ctx, msg) {
		return
	}

	b.handleStateMessage(ctx, msg)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start":
		u, err := b.users.UpsertByTelegram(ctx, msg.From.ID, msg.From.UserName)
		if err != nil {
			b.log.Error("upsert user failed", "tg_id", msg.From.ID, "err", err)
			b.send(tgbotapi.NewMessage(chatID, "Ошибка: не удалось сохранить профиль"))
			return
		}

		if b.isAdmin(msg.From.ID) {
			m := tgbotapi.NewMessage(chatID, "Привет, админ! Управление бронями и тарифами — через кнопки снизу.")
			m.ReplyMarkup = adminReplyKeyboard()
			b.send(m)
			return
		}

		if u.ProfileComplete() {
			m := tgbotapi.NewMessage(chatID, "С возвращением! Выберите действие:")
			m.ReplyMarkup = userMenuKeyboard()
			b.send(m)
			return
		}

		// первый контакт — дособираем анкету
		_ = b.states.Set(ctx, chatID, dialog.StateAwaitFIO, dialog.Payload{})
		b.askFIO(chatID)

	case "help":
		b.send(tgbotapi.NewMessage(chatID,
			"Команды:\n/start — начать регистрацию/работу\n/help — помощь"))

	default:
		b.send(tgbotapi.NewMessage(chatID, "Не знаю такую команду. Наберите /help"))
	}
}

// handleAdminButton обрабатывает нижнюю панель оператора.
func (b *Bot) handleAdminButton(ctx context.Context, msg *tgbotapi.Message) bool {
	chatID := msg.Chat.ID
	switch msg.Text {
	case "Брони":
		b.showBookings(ctx, chatID)
	case "Тарифы":
		b.showTariffs(ctx, chatID)
	case "Заявки":
		b.showTickets(ctx, chatID)
	case "Уведомления":
		b.showNotifications(ctx, chatID)
	case "Экспорт броней":
		b.exportBookings(ctx, chatID)
	default:
		return false
	}
	return true
}

func (b *Bot) handleStateMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	st, _ := b.states.Get(ctx, chatID)

	switch st.State {
	case dialog.StateAwaitFIO:
		b.handleFIO(ctx, msg, st)
	case dialog.StateAwaitPhone:
		b.handlePhone(ctx, msg, st)
	case dialog.StateAwaitEmail:
		b.handleEmail(ctx, msg, st)

	case dialog.StateBookDate:
		b.handleBookDate(ctx, msg, st)
	case dialog.StateBookTime:
		b.handleBookTime(ctx, msg, st)
	case dialog.StateBookDuration:
		b.handleBookDuration(ctx, msg, st)

	case dialog.StateTicketText:
		b.handleTicketText(ctx, msg, st)
	case dialog.StateTicketAskPhoto:
		m := tgbotapi.NewMessage(chatID, "Хотите прикрепить фото к заявке?")
		m.ReplyMarkup = photoChoiceKeyboard()
		b.send(m)
	case dialog.StateTicketPhoto:
		b.handleTicketPhoto(ctx, msg, st)

	case dialog.StateAdmTariffName:
		b.handleTariffName(ctx, msg, st)
	case dialog.StateAdmTariffPrice:
		b.handleTariffPrice(ctx, msg, st)
	case dialog.StateAdmTicketComment:
		b.handleTicketCloseComment(ctx, msg, st)

	default:
		b.send(tgbotapi.NewMessage(chatID, "Наберите /start, чтобы начать."))
	}
}

func (b *Bot) onCallback(ctx context.Context, upd tgbotapi.Update) {
	cb := upd.CallbackQuery
	chatID := cb.Message.Chat.ID
	data := cb.Data

	// убираем «часики» на кнопке
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.log.Debug("callback ack failed", "err", err)
	}

	switch {
	case data == "main_menu":
		_ = b.states.Reset(ctx, chatID)
		m := tgbotapi.NewMessage(chatID, "Главное меню:")
		m.ReplyMarkup = userMenuKeyboard()
		b.send(m)

	case data == "info":
		b.send(tgbotapi.NewMessage(chatID,
			"Коворкинг: опенспейс — дневной тариф, переговорная — почасовая с подтверждением оператором."))

	case data == "booking":
		b.startBooking(ctx, chatID)

	case data == "helpdesk":
		b.startTicket(ctx, chatID)

	case data == "tk:photo:add":
		b.handleTicketPhotoChoice(ctx, chatID, cb.From.ID, true)

	case data == "tk:photo:skip":
		b.handleTicketPhotoChoice(ctx, chatID, cb.From.ID, false)

	case strings.HasPrefix(data, "tariff:"):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "tariff:"), 10, 64)
		if err != nil {
			return
		}
		b.handleTariffChosen(ctx, chatID, id)

	case strings.HasPrefix(data, "adm:book:confirm:"):
		if !b.isAdmin(cb.From.ID) {
			return
		}
		id, _ := strconv.ParseInt(strings.TrimPrefix(data, "adm:book:confirm:"), 10, 64)
		b.adminConfirmBooking(ctx, chatID, id)

	case strings.HasPrefix(data, "adm:book:del:"):
		if !b.isAdmin(cb.From.ID) {
			return
		}
		id, _ := strconv.ParseInt(strings.TrimPrefix(data, "adm:book:del:"), 10, 64)
		b.adminDeleteBooking(ctx, chatID, id)

	case data == "adm:tariff:new":
		if !b.isAdmin(cb.From.ID) {
			return
		}
		_ = b.states.Set(ctx, chatID, dialog.StateAdmTariffName, dialog.Payload{})
		b.send(tgbotapi.NewMessage(chatID, "Название нового тарифа:"))

	case strings.HasPrefix(data, "adm:tariff:toggle:"):
		if !b.isAdmin(cb.From.ID) {
			return
		}
		id, _ := strconv.ParseInt(strings.TrimPrefix(data, "adm:tariff:toggle:"), 10, 64)
		b.adminToggleTariff(ctx, chatID, id)

	case strings.HasPrefix(data, "adm:tariff:purpose:"):
		if !b.isAdmin(cb.From.ID) {
			return
		}
		b.handleTariffPurpose(ctx, chatID, strings.TrimPrefix(data, "adm:tariff:purpose:"))

	case strings.HasPrefix(data, "adm:tk:work:"):
		if !b.isAdmin(cb.From.ID) {
			return
		}
		id, _ := strconv.ParseInt(strings.TrimPrefix(data, "adm:tk:work:"), 10, 64)
		b.adminTicketToWork(ctx, chatID, id)

	case strings.HasPrefix(data, "adm:tk:close:"):
		if !b.isAdmin(cb.From.ID) {
			return
		}
		id, _ := strconv.ParseInt(strings.TrimPrefix(data, "adm:tk:close:"), 10, 64)
		b.adminTicketAskClose(ctx, chatID, id)

	case strings.HasPrefix(data, "adm:tk:del:"):
		if !b.isAdmin(cb.From.ID) {
			return
		}
		id, _ := strconv.ParseInt(strings.TrimPrefix(data, "adm:tk:del:"), 10, 64)
		b.adminDeleteTicket(ctx, chatID, id)

	case strings.HasPrefix(data, "ntf:read:"):
		if !b.isAdmin(cb.From.ID) {
			return
		}
		id, _ := strconv.ParseInt(strings.TrimPrefix(data, "ntf:read:"), 10, 64)
		b.adminMarkNotificationRead(ctx, chatID, id)

	case data == "ntf:readall":
		if !b.isAdmin(cb.From.ID) {
			return
		}
		b.adminMarkAllRead(ctx, chatID)

	case data == "ntf:prune":
		if !b.isAdmin(cb.From.ID) {
			return
		}
		b.adminPruneNotifications(ctx, chatID)
	}
}
