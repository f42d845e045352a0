package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Spok95/coworking-bot/internal/domain/bookings"
)

// Scheduler — часть планировщика, нужная платёжному коллаборатору.
type Scheduler interface {
	SetPaid(ctx context.Context, bookingID int64, paid bool) (*bookings.Booking, error)
}

type Handler struct {
	log       *slog.Logger
	scheduler Scheduler
}

func NewHandler(log *slog.Logger, scheduler Scheduler) *Handler {
	return &Handler{log: log, scheduler: scheduler}
}

// ServeHTTP эмулирует "успешную оплату":
// /payments/pay?booking=123 -> помечаем бронь оплаченной и показываем простую HTML-страницу.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bookingStr := r.URL.Query().Get("booking")
	if bookingStr == "" {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("missing booking parameter"))
		return
	}

	bookingID, err := strconv.ParseInt(bookingStr, 10, 64)
	if err != nil || bookingID <= 0 {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("invalid booking parameter"))
		return
	}

	if _, err := h.scheduler.SetPaid(ctx, bookingID, true); err != nil {
		if errors.Is(err, bookings.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("booking not found"))
			return
		}
		h.log.Error("failed to mark booking as paid",
			"booking_id", bookingID,
			"err", err,
		)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("failed to update booking"))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = fmt.Fprintf(w,
		"<html><body><h1>Оплата прошла</h1><p>Бронь #%d помечена как оплаченная.</p></body></html>",
		bookingID,
	)
}
