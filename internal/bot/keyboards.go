package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/coworking-bot/internal/domain/tariffs"
	"github.com/Spok95/coworking-bot/internal/domain/tickets"
)

func userMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📍 Забронировать", "booking"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🛠 Поддержка", "helpdesk"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❔ Информация", "info"),
		),
	)
}

func backKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏠 Главное меню", "main_menu"),
		),
	)
}

func tariffKeyboard(list []tariffs.Tariff) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}
	for _, t := range list {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s (%.2f ₽)", t.Name, t.Price),
				fmt.Sprintf("tariff:%d", t.ID),
			),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✖️ Отменить", "main_menu"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func purposeKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Переговорная (почасовая)", "adm:tariff:purpose:meeting_room"),
			tgbotapi.NewInlineKeyboardButtonData("Опенспейс (день)", "adm:tariff:purpose:day_pass"),
		),
	)
}

func photoChoiceKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Да", "tk:photo:add"),
			tgbotapi.NewInlineKeyboardButtonData("Нет", "tk:photo:skip"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✖️ Отменить", "main_menu"),
		),
	)
}

// ticketAdminKeyboard — кнопки карточки заявки в операторском чате.
func ticketAdminKeyboard(id int64, status tickets.Status) tgbotapi.InlineKeyboardMarkup {
	row := []tgbotapi.InlineKeyboardButton{}
	if status == tickets.StatusOpen {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("🔧 В работу", fmt.Sprintf("adm:tk:work:%d", id)))
	}
	if status != tickets.StatusClosed {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("✅ Закрыть", fmt.Sprintf("adm:tk:close:%d", id)))
	}
	row = append(row, tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить", fmt.Sprintf("adm:tk:del:%d", id)))
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

// bookingAdminKeyboard — кнопки карточки брони в операторском чате.
func bookingAdminKeyboard(id int64, confirmed, timeBound bool) tgbotapi.InlineKeyboardMarkup {
	row := []tgbotapi.InlineKeyboardButton{}
	if timeBound && !confirmed {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("✅ Подтвердить", fmt.Sprintf("adm:book:confirm:%d", id)))
	}
	row = append(row, tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить", fmt.Sprintf("adm:book:del:%d", id)))
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

// adminReplyKeyboard Нижняя панель (ReplyKeyboard) для оператора
func adminReplyKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.ReplyKeyboardMarkup{
		ResizeKeyboard: true,
		Keyboard: [][]tgbotapi.KeyboardButton{
			{tgbotapi.NewKeyboardButton("Брони"), tgbotapi.NewKeyboardButton("Тарифы")},
			{tgbotapi.NewKeyboardButton("Заявки"), tgbotapi.NewKeyboardButton("Уведомления")},
			{tgbotapi.NewKeyboardButton("Экспорт броней")},
		},
	}
}
