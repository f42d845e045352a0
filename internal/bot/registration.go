package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/coworking-bot/internal/dialog"
)

func (b *Bot) askFIO(chatID int64) {
	b.send(tgbotapi.NewMessage(chatID, "Введите, пожалуйста, ФИО одной строкой."))
}

func (b *Bot) handleFIO(ctx context.Context, msg *tgbotapi.Message, st *dialog.Item) {
	chatID := msg.Chat.ID
	fio := strings.TrimSpace(msg.Text)
	if fio == "" {
		b.send(tgbotapi.NewMessage(chatID, "ФИО не может быть пустым. Введите снова:"))
		return
	}
	st.Payload["fio"] = fio
	_ = b.states.Set(ctx, chatID, dialog.StateAwaitPhone, st.Payload)
	b.send(tgbotapi.NewMessage(chatID, "Теперь номер телефона:"))
}

func (b *Bot) handlePhone(ctx context.Context, msg *tgbotapi.Message, st *dialog.Item) {
	chatID := msg.Chat.ID
	phone := strings.TrimSpace(msg.Text)
	if phone == "" {
		b.send(tgbotapi.NewMessage(chatID, "Телефон не может быть пустым. Введите снова:"))
		return
	}
	st.Payload["phone"] = phone
	_ = b.states.Set(ctx, chatID, dialog.StateAwaitEmail, st.Payload)
	b.send(tgbotapi.NewMessage(chatID, "И email:"))
}

func (b *Bot) handleEmail(ctx context.Context, msg *tgbotapi.Message, st *dialog.Item) {
	chatID := msg.Chat.ID
	email := strings.TrimSpace(msg.Text)
	if email == "" || !strings.Contains(email, "@") {
		b.send(tgbotapi.NewMessage(chatID, "Похоже, это не email. Введите снова:"))
		return
	}

	fio, _ := dialog.GetString(st.Payload, "fio")
	phone, _ := dialog.GetString(st.Payload, "phone")

	u, err := b.users.SaveProfile(ctx, msg.From.ID, fio, phone, email)
	if err != nil {
		b.log.Error("save profile failed", "tg_id", msg.From.ID, "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Ошибка: не удалось сохранить анкету. Попробуйте ещё раз."))
		return
	}
	_ = b.states.Reset(ctx, chatID)

	b.notifyAdmin("Новый пользователь: " + u.FullName)

	m := tgbotapi.NewMessage(chatID, "Регистрация завершена! Выберите действие:")
	m.ReplyMarkup = userMenuKeyboard()
	b.send(m)
}
