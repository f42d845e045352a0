package tickets

import (
	"context"
	"errors"
	"fmt"

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

const ticketCols = `id, user_id, description, photo_id, status, comment, created_at, updated_at`

func scanTicket(row pgx.Row) (*Ticket, error) {
	var t Ticket
	if err := row.Scan(&t.ID, &t.UserID, &t.Description, &t.PhotoID,
		&t.Status, &t.Comment, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}

// Create сохраняет заявку и в той же транзакции пишет уведомление
// «Новая заявка» в инбокс оператора.
func (r *Repo) Create(ctx context.Context, t *Ticket, fullName string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return storageErr("create", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		INSERT INTO tickets (user_id, description, photo_id)
		VALUES ($1,$2,$3)
		RETURNING id, status, created_at, updated_at
	`, t.UserID, t.Description, t.PhotoID)
	if err := row.Scan(&t.ID, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return storageErr("create", err)
	}

	if _, err := r.notes.InsertTx(ctx, tx, notifications.TicketCreated(t.ID, fullName)); err != nil {
		return storageErr("create", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return storageErr("create", err)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Ticket, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+ticketCols+` FROM tickets WHERE id = $1`, id)
	t, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storageErr("get", err)
	}
	return t, nil
}

// List отдаёт последние заявки с данными клиента, свежие сверху.
func (r *Repo) List(ctx context.Context, limit int) ([]View, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.pool.Query(ctx, `
		SELECT t.id, t.user_id, t.description, t.photo_id, t.status, t.comment,
		       t.created_at, t.updated_at, u.full_name, u.telegram_id
		FROM tickets t
		JOIN users u ON u.id = t.user_id
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, storageErr("list", err)
	}
	defer rows.Close()

	var out []View
	for rows.Next() {
		var v View
		if err := rows.Scan(&v.ID, &v.UserID, &v.Description, &v.PhotoID, &v.Status, &v.Comment,
			&v.CreatedAt, &v.UpdatedAt, &v.UserName, &v.TelegramID); err != nil {
			return nil, storageErr("list", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list", err)
	}
	return out, nil
}

// SetStatus переводит заявку в новый статус; закрытие требует комментария.
func (r *Repo) SetStatus(ctx context.Context, id int64, s Status, comment string) (*Ticket, error) {
	if err := ValidateStatus(s, comment); err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE tickets SET status=$2, comment=$3, updated_at=now()
		WHERE id=$1
		RETURNING `+ticketCols, id, s, comment)
	t, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storageErr("set status", err)
	}
	return t, nil
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return storageErr("delete", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
