package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/coworking-bot/internal/dialog"
	"github.com/Spok95/coworking-bot/internal/domain/tickets"
)

/*** ПОЛЬЗОВАТЕЛЬ ***/

func (b *Bot) startTicket(ctx context.Context, chatID int64) {
	_ = b.states.Set(ctx, chatID, dialog.StateTicketText, dialog.Payload{})
	m := tgbotapi.NewMessage(chatID, "Опишите вашу проблему или пожелание:")
	m.ReplyMarkup = backKeyboard()
	b.send(m)
}

func (b *Bot) handleTicketText(ctx context.Context, msg *tgbotapi.Message, st *dialog.Item) {
	chatID := msg.Chat.ID
	desc := strings.TrimSpace(msg.Text)
	if desc == "" {
		b.send(tgbotapi.NewMessage(chatID, "Описание не может быть пустым. Пожалуйста, введите описание:"))
		return
	}
	st.Payload["description"] = desc
	_ = b.states.Set(ctx, chatID, dialog.StateTicketAskPhoto, st.Payload)
	m := tgbotapi.NewMessage(chatID, "Хотите прикрепить фото к заявке?")
	m.ReplyMarkup = photoChoiceKeyboard()
	b.send(m)
}

func (b *Bot) handleTicketPhotoChoice(ctx context.Context, chatID, tgID int64, addPhoto bool) {
	st, _ := b.states.Get(ctx, chatID)
	if st.State != dialog.StateTicketAskPhoto {
		return
	}
	if addPhoto {
		_ = b.states.Set(ctx, chatID, dialog.StateTicketPhoto, st.Payload)
		b.send(tgbotapi.NewMessage(chatID, "Пожалуйста, отправьте фото."))
		return
	}
	b.saveTicket(ctx, chatID, tgID, st.Payload, nil)
}

func (b *Bot) handleTicketPhoto(ctx context.Context, msg *tgbotapi.Message, st *dialog.Item) {
	chatID := msg.Chat.ID
	if len(msg.Photo) == 0 {
		b.send(tgbotapi.NewMessage(chatID, "Это не фото. Отправьте фото или вернитесь в главное меню."))
		return
	}
	// последний размер — самый крупный
	fileID := msg.Photo[len(msg.Photo)-1].FileID
	b.saveTicket(ctx, chatID, msg.From.ID, st.Payload, &fileID)
}

func (b *Bot) saveTicket(ctx context.Context, chatID, tgID int64, p dialog.Payload, photoID *string) {
	u, err := b.users.GetByTelegramID(ctx, tgID)
	if err != nil || u == nil {
		b.send(tgbotapi.NewMessage(chatID, "Сначала пройдите регистрацию: /start"))
		return
	}
	desc, ok := dialog.GetString(p, "description")
	if !ok || desc == "" {
		_ = b.states.Reset(ctx, chatID)
		b.send(tgbotapi.NewMessage(chatID, "Диалог сброшен, начните создание заявки заново."))
		return
	}

	t := &tickets.Ticket{UserID: u.ID, Description: desc, PhotoID: photoID}
	if err := b.tickets.Create(ctx, t, u.FullName); err != nil {
		b.log.Error("create ticket failed", "user_id", u.ID, "err", err)
		_ = b.states.Reset(ctx, chatID)
		b.send(tgbotapi.NewMessage(chatID, "Ошибка при создании заявки. Попробуйте позже."))
		return
	}
	_ = b.states.Reset(ctx, chatID)

	m := tgbotapi.NewMessage(chatID, fmt.Sprintf("Заявка #%d создана!", t.ID))
	m.ReplyMarkup = userMenuKeyboard()
	b.send(m)

	caption := fmt.Sprintf("Новая заявка #%d: %s\n%s", t.ID, u.FullName, desc)
	if photoID != nil && b.adminChat != 0 {
		photo := tgbotapi.NewPhoto(b.adminChat, tgbotapi.FileID(*photoID))
		photo.Caption = caption
		b.send(photo)
		return
	}
	b.notifyAdmin(caption)
}

/*** АДМИН ***/

func (b *Bot) showTickets(ctx context.Context, chatID int64) {
	list, err := b.tickets.List(ctx, adminListLimit)
	if err != nil {
		b.log.Error("list tickets failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Ошибка загрузки заявок"))
		return
	}
	if len(list) == 0 {
		b.send(tgbotapi.NewMessage(chatID, "Заявок пока нет."))
		return
	}

	b.send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Последние заявки (%d):", len(list))))
	for _, v := range list {
		m := tgbotapi.NewMessage(chatID, formatTicketCard(v))
		m.ReplyMarkup = ticketAdminKeyboard(v.ID, v.Status)
		b.send(m)
	}
}

func formatTicketCard(v tickets.View) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Заявка #%d — %s\n", v.ID, v.Status))
	sb.WriteString("Клиент: " + v.UserName + "\n")
	sb.WriteString(v.Description + "\n")
	if v.PhotoID != nil {
		sb.WriteString("Фото: есть\n")
	}
	if v.Comment != "" {
		sb.WriteString("Комментарий: " + v.Comment + "\n")
	}
	sb.WriteString("Создана: " + v.CreatedAt.Format("2006-01-02 15:04"))
	return sb.String()
}

func (b *Bot) adminTicketToWork(ctx context.Context, chatID int64, id int64) {
	t, err := b.tickets.SetStatus(ctx, id, tickets.StatusInProgress, "")
	if err != nil {
		if errors.Is(err, tickets.ErrNotFound) {
			b.send(tgbotapi.NewMessage(chatID, "Заявка не найдена."))
			return
		}
		b.log.Error("ticket to work failed", "ticket_id", id, "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Ошибка при обновлении заявки"))
		return
	}
	b.send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Заявка #%d взята в работу.", id)))
	b.notifyTicketUser(ctx, t)
}

func (b *Bot) adminTicketAskClose(ctx context.Context, chatID int64, id int64) {
	_ = b.states.Set(ctx, chatID, dialog.StateAdmTicketComment, dialog.Payload{"ticket_id": id})
	b.send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Комментарий к закрытию заявки #%d:", id)))
}

func (b *Bot) handleTicketCloseComment(ctx context.Context, msg *tgbotapi.Message, st *dialog.Item) {
	chatID := msg.Chat.ID
	comment := strings.TrimSpace(msg.Text)
	if comment == "" {
		b.send(tgbotapi.NewMessage(chatID, "Комментарий обязателен для закрытия заявки. Введите снова:"))
		return
	}
	id, ok := dialog.GetInt64(st.Payload, "ticket_id")
	if !ok {
		_ = b.states.Reset(ctx, chatID)
		b.send(tgbotapi.NewMessage(chatID, "Диалог сброшен, откройте список заявок заново."))
		return
	}

	t, err := b.tickets.SetStatus(ctx, id, tickets.StatusClosed, comment)
	if err != nil {
		if errors.Is(err, tickets.ErrNotFound) {
			_ = b.states.Reset(ctx, chatID)
			b.send(tgbotapi.NewMessage(chatID, "Заявка не найдена."))
			return
		}
		b.log.Error("close ticket failed", "ticket_id", id, "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Ошибка при закрытии заявки"))
		return
	}
	_ = b.states.Reset(ctx, chatID)
	b.send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Заявка #%d закрыта.", id)))
	b.notifyTicketUser(ctx, t)
}

func (b *Bot) adminDeleteTicket(ctx context.Context, chatID int64, id int64) {
	if err := b.tickets.Delete(ctx, id); err != nil {
		if errors.Is(err, tickets.ErrNotFound) {
			b.send(tgbotapi.NewMessage(chatID, "Заявка не найдена."))
			return
		}
		b.log.Error("delete ticket failed", "ticket_id", id, "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Ошибка при удалении заявки"))
		return
	}
	b.send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Заявка #%d удалена.", id)))
}

// notifyTicketUser сообщает клиенту о смене статуса его заявки.
func (b *Bot) notifyTicketUser(ctx context.Context, t *tickets.Ticket) {
	u, err := b.users.GetByID(ctx, t.UserID)
	if err != nil {
		b.log.Error("load ticket user failed", "ticket_id", t.ID, "err", err)
		return
	}
	b.send(tgbotapi.NewMessage(u.TelegramID, tickets.StatusMessage(t.ID, t.Status, t.Comment)))
}
