package bot

import (
	"bytes"
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xuri/excelize/v2"

	"github.com/Spok95/coworking-bot/internal/domain/bookings"
)

// exportBookings выгружает реестр броней в Excel и отправляет документом.
func (b *Bot) exportBookings(ctx context.Context, chatID int64) {
	list, err := b.scheduler.List(ctx, bookings.Filter{})
	if err != nil {
		b.log.Error("export: list bookings failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Ошибка загрузки броней"))
		return
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{
		"booking_id",
		"client",
		"telegram_id",
		"tariff",
		"visit_date",
		"visit_time",
		"duration_hours",
		"amount",
		"paid",
		"confirmed",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		b.send(tgbotapi.NewMessage(chatID, "Ошибка формирования файла (заголовок)"))
		return
	}

	row := 2
	for _, v := range list {
		visitTime := ""
		duration := 0
		if v.TimeBound() {
			visitTime = *v.VisitTime
			duration = *v.DurationHours
		}
		excelRow := []interface{}{
			v.ID,
			v.UserName,
			v.TelegramID,
			v.TariffName,
			v.VisitDate.Format("2006-01-02"),
			visitTime,
			duration,
			v.Amount,
			yesNo(v.Paid),
			yesNo(v.Confirmed),
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			b.send(tgbotapi.NewMessage(chatID, "Ошибка формирования файла (ячейки)"))
			return
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			b.send(tgbotapi.NewMessage(chatID, "Ошибка формирования файла (строки)"))
			return
		}
		row++
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		b.send(tgbotapi.NewMessage(chatID, "Ошибка записи файла"))
		return
	}

	fileName := fmt.Sprintf("bookings_%s.xlsx", time.Now().In(b.loc).Format("20060102_150405"))
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fileName,
		Bytes: buf.Bytes(),
	})
	doc.Caption = fmt.Sprintf("Брони: %d строк", len(list))
	b.send(doc)
}
