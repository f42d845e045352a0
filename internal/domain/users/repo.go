package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spok95/coworking-bot/internal/domain/notifications"
)

var (
	ErrNotFound = errors.New("users: not found")
	ErrStorage  = errors.New("users: storage failure")
)

type Repo struct {
	pool  *pgxpool.Pool
	notes *notifications.Repo
}

func NewRepo(pool *pgxpool.Pool, notes *notifications.Repo) *Repo {
	return &Repo{pool: pool, notes: notes}
}

const userCols = `id, telegram_id, username, full_name, phone, email, successful_bookings, first_join_time, reg_date`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.TelegramID, &u.Username, &u.FullName, &u.Phone, &u.Email,
		&u.SuccessfulBookings, &u.FirstJoinTime, &u.RegDate); err != nil {
		return nil, err
	}
	return &u, nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}

func (r *Repo) GetByTelegramID(ctx context.Context, tgID int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE telegram_id = $1`, tgID)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("get by telegram id", err)
	}
	return u, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storageErr("get", err)
	}
	return u, nil
}

// UpsertByTelegram заводит пользователя при первом контакте.
// Профиль при этом пустой — регистрация дозаполняет его отдельно.
func (r *Repo) UpsertByTelegram(ctx context.Context, tgID int64, username string) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (telegram_id, username)
		VALUES ($1,$2)
		ON CONFLICT (telegram_id)
		DO UPDATE SET username = EXCLUDED.username
		RETURNING `+userCols, tgID, username)
	u, err := scanUser(row)
	if err != nil {
		return nil, storageErr("upsert", err)
	}
	return u, nil
}

// SaveProfile обновляет анкету. Если профиль стал полным впервые,
// в той же транзакции фиксируется дата регистрации и уведомление
// «Новый пользователь» для админки.
func (r *Repo) SaveProfile(ctx context.Context, tgID int64, fullName, phone, email string) (*User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, storageErr("save profile", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		UPDATE users
		SET full_name=$2, phone=$3, email=$4
		WHERE telegram_id=$1
		RETURNING `+userCols, tgID, fullName, phone, email)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storageErr("save profile", err)
	}

	if u.ProfileComplete() && u.RegDate == nil {
		row := tx.QueryRow(ctx,
			`UPDATE users SET reg_date = now() WHERE id = $1 RETURNING reg_date`, u.ID)
		if err := row.Scan(&u.RegDate); err != nil {
			return nil, storageErr("save profile", err)
		}
		if _, err := r.notes.InsertTx(ctx, tx, notifications.NewUser(u.ID, u.FullName)); err != nil {
			return nil, storageErr("save profile", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storageErr("save profile", err)
	}
	return u, nil
}

// IncSuccessfulBookings увеличивает счётчик завершённых броней пользователя.
func (r *Repo) IncSuccessfulBookings(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET successful_bookings = successful_bookings + 1 WHERE id = $1`, id)
	if err != nil {
		return storageErr("inc bookings", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
