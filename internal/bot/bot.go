package bot

import (
	"context"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/coworking-bot/internal/dialog"
	"github.com/Spok95/coworking-bot/internal/domain/bookings"
	"github.com/Spok95/coworking-bot/internal/domain/notifications"
	"github.com/Spok95/coworking-bot/internal/domain/tariffs"
	"github.com/Spok95/coworking-bot/internal/domain/tickets"
	"github.com/Spok95/coworking-bot/internal/domain/users"
	"github.com/Spok95/coworking-bot/internal/infra/payments"
)

// Inbox — читающая сторона диспетчера уведомлений, нужная админ-панели.
type Inbox interface {
	Recent(ctx context.Context, limit int) (*notifications.Feed, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context) (int64, error)
	PruneRead(ctx context.Context, olderThan time.Time) (int64, error)
}

type Bot struct {
	api       *tgbotapi.BotAPI
	log       *slog.Logger
	users     *users.Repo
	states    *dialog.Repo
	scheduler *bookings.Service
	tariffs   *tariffs.Repo
	tickets   *tickets.Repo
	notes     Inbox
	pay       *payments.Service
	adminChat int64
	loc       *time.Location
}

func New(api *tgbotapi.BotAPI, log *slog.Logger,
	usersRepo *users.Repo, statesRepo *dialog.Repo,
	scheduler *bookings.Service, tariffsRepo *tariffs.Repo,
	ticketsRepo *tickets.Repo, notesRepo Inbox, pay *payments.Service,
	adminChatID int64, loc *time.Location) *Bot {

	return &Bot{
		api: api, log: log, users: usersRepo, states: statesRepo,
		scheduler: scheduler, tariffs: tariffsRepo, tickets: ticketsRepo,
		notes: notesRepo, pay: pay, adminChat: adminChatID, loc: loc,
	}
}

func (b *Bot) Run(ctx context.Context, timeoutSec int) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSec
	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd := <-updates:
			if upd.Message != nil {
				b.onMessage(ctx, upd)
			} else if upd.CallbackQuery != nil {
				b.onCallback(ctx, upd)
			}
		}
	}
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send failed", "err", err)
	}
}

// notifyAdmin дублирует доменное событие в операторский чат.
// Запись в инбокс уже закоммичена вместе с событием, так что потеря
// телеграм-сообщения ничего не ломает.
func (b *Bot) notifyAdmin(text string) {
	if b.adminChat == 0 {
		return
	}
	b.send(tgbotapi.NewMessage(b.adminChat, text))
}

func (b *Bot) isAdmin(tgID int64) bool {
	return b.adminChat != 0 && tgID == b.adminChat
}
