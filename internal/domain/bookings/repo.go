package bookings

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spok95/coworking-bot/internal/domain/notifications"
)

type Repo struct {
	pool  *pgxpool.Pool
	notes *notifications.Repo
}

func NewRepo(pool *pgxpool.Pool, notes *notifications.Repo) *Repo {
	return &Repo{pool: pool, notes: notes}
}

const bookingCols = `id, user_id, tariff_id, visit_date, visit_time, duration_hours, amount, paid, confirmed, created_at`

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	if err := row.Scan(&b.ID, &b.UserID, &b.TariffID, &b.VisitDate, &b.VisitTime,
		&b.DurationHours, &b.Amount, &b.Paid, &b.Confirmed, &b.CreatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}

// lockTariff сериализует допуск по ключу (тариф, дата): конкурирующие
// create/edit по одному тарифу встают в очередь на строке тарифа,
// иначе оба прошли бы проверку пересечений и оба вставились.
func lockTariff(ctx context.Context, tx pgx.Tx, tariffID int64) error {
	_, err := tx.Exec(ctx, `SELECT 1 FROM tariffs WHERE id = $1 FOR UPDATE`, tariffID)
	return err
}

// hasOverlap сканирует под блокировкой все слотовые брони тарифа на дату,
// исключая excludeID (правка собственного слота не конфликтует сама с собой).
func hasOverlap(ctx context.Context, tx pgx.Tx, candidate *Booking, excludeID int64) (bool, error) {
	rows, err := tx.Query(ctx, `
		SELECT `+bookingCols+`
		FROM bookings
		WHERE tariff_id = $1 AND visit_date = $2
		  AND visit_time IS NOT NULL AND duration_hours IS NOT NULL AND id <> $3
	`, candidate.TariffID, candidate.VisitDate, excludeID)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		other, err := scanBooking(rows)
		if err != nil {
			return false, err
		}
		// pending-брони тоже держат слот: место занято с момента создания
		if Conflicts(*candidate, *other) {
			return true, nil
		}
	}
	return false, rows.Err()
}

// Create — допускная транзакция: блокировка ключа, проверка пересечений,
// вставка и уведомление о новой брони одним коммитом.
func (r *Repo) Create(ctx context.Context, b *Booking, note func(id int64) notifications.Notification) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return storageErr("create", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if b.TimeBound() {
		if err := lockTariff(ctx, tx, b.TariffID); err != nil {
			return storageErr("create", err)
		}
		conflict, err := hasOverlap(ctx, tx, b, 0)
		if err != nil {
			return storageErr("create", err)
		}
		if conflict {
			return ErrSlotConflict
		}
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO bookings (user_id, tariff_id, visit_date, visit_time, duration_hours, amount, paid, confirmed)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at
	`, b.UserID, b.TariffID, b.VisitDate, b.VisitTime, b.DurationHours, b.Amount, b.Paid, b.Confirmed)
	if err := row.Scan(&b.ID, &b.CreatedAt); err != nil {
		return storageErr("create", err)
	}

	if note != nil {
		if _, err := r.notes.InsertTx(ctx, tx, note(b.ID)); err != nil {
			return storageErr("create", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return storageErr("create", err)
	}
	return nil
}

// Update перезаписывает изменяемые поля брони. При recheckSlot пересечения
// проверяются заново под той же блокировкой, и провал отменяет правку целиком.
func (r *Repo) Update(ctx context.Context, b *Booking, recheckSlot bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return storageErr("update", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if recheckSlot && b.TimeBound() {
		if err := lockTariff(ctx, tx, b.TariffID); err != nil {
			return storageErr("update", err)
		}
		conflict, err := hasOverlap(ctx, tx, b, b.ID)
		if err != nil {
			return storageErr("update", err)
		}
		if conflict {
			return ErrSlotConflict
		}
	}

	tag, err := tx.Exec(ctx, `
		UPDATE bookings
		SET visit_date=$2, visit_time=$3, duration_hours=$4, amount=$5, paid=$6
		WHERE id=$1
	`, b.ID, b.VisitDate, b.VisitTime, b.DurationHours, b.Amount, b.Paid)
	if err != nil {
		return storageErr("update", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return storageErr("update", err)
	}
	return nil
}

// Confirm переводит бронь в подтверждённые. Условие confirmed = FALSE в
// UPDATE закрывает гонку двух операторов: второй получит ErrAlreadyConfirmed.
func (r *Repo) Confirm(ctx context.Context, id int64, note notifications.Notification) (*Booking, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, storageErr("confirm", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		UPDATE bookings SET confirmed = TRUE
		WHERE id = $1 AND NOT confirmed
		RETURNING `+bookingCols, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if err2 := tx.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM bookings WHERE id = $1)`, id).Scan(&exists); err2 != nil {
				return nil, storageErr("confirm", err2)
			}
			if exists {
				return nil, ErrAlreadyConfirmed
			}
			return nil, ErrNotFound
		}
		return nil, storageErr("confirm", err)
	}

	if _, err := r.notes.InsertTx(ctx, tx, note); err != nil {
		return nil, storageErr("confirm", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storageErr("confirm", err)
	}
	return b, nil
}

// Delete убирает бронь и тем самым сразу освобождает слот.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return storageErr("delete", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Booking, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+bookingCols+` FROM bookings WHERE id = $1`, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storageErr("get", err)
	}
	return b, nil
}

// List отдаёт проекцию для списков админки: свежие даты сверху.
func (r *Repo) List(ctx context.Context, f Filter) ([]View, error) {
	q := `
		SELECT b.id, b.user_id, b.tariff_id, b.visit_date, b.visit_time, b.duration_hours,
		       b.amount, b.paid, b.confirmed, b.created_at,
		       u.full_name, u.telegram_id, t.name, t.purpose
		FROM bookings b
		JOIN users u ON u.id = b.user_id
		JOIN tariffs t ON t.id = b.tariff_id
		WHERE TRUE`
	args := []any{}
	if f.UserID != nil {
		args = append(args, *f.UserID)
		q += ` AND b.user_id = $` + strconv.Itoa(len(args))
	}
	if f.TariffID != nil {
		args = append(args, *f.TariffID)
		q += ` AND b.tariff_id = $` + strconv.Itoa(len(args))
	}
	if f.Date != nil {
		args = append(args, *f.Date)
		q += ` AND b.visit_date = $` + strconv.Itoa(len(args))
	}
	q += ` ORDER BY b.visit_date DESC, b.id DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += ` LIMIT $` + strconv.Itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, storageErr("list", err)
	}
	defer rows.Close()

	var out []View
	for rows.Next() {
		var v View
		if err := rows.Scan(&v.ID, &v.UserID, &v.TariffID, &v.VisitDate, &v.VisitTime, &v.DurationHours,
			&v.Amount, &v.Paid, &v.Confirmed, &v.CreatedAt,
			&v.UserName, &v.TelegramID, &v.TariffName, &v.TariffPurpose); err != nil {
			return nil, storageErr("list", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list", err)
	}
	return out, nil
}
