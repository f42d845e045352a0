package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spok95/coworking-bot/internal/infra/metrics"
)

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}

// InsertTx пишет уведомление в рамках чужой транзакции: бронь и её
// уведомление не должны становиться видимыми порознь.
func (r *Repo) InsertTx(ctx context.Context, tx pgx.Tx, n Notification) (int64, error) {
	n = withDefaults(n)
	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO notifications (kind, message, target_url)
		VALUES ($1,$2,$3)
		RETURNING id
	`, n.Kind, n.Message, n.TargetURL).Scan(&id)
	if err != nil {
		return 0, storageErr("insert", err)
	}
	metrics.NotificationsEmitted.WithLabelValues(string(n.Kind)).Inc()
	return id, nil
}

// Emit — автономная запись вне чужой транзакции.
func (r *Repo) Emit(ctx context.Context, n Notification) (int64, error) {
	n = withDefaults(n)
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO notifications (kind, message, target_url)
		VALUES ($1,$2,$3)
		RETURNING id
	`, n.Kind, n.Message, n.TargetURL).Scan(&id)
	if err != nil {
		return 0, storageErr("emit", err)
	}
	metrics.NotificationsEmitted.WithLabelValues(string(n.Kind)).Inc()
	return id, nil
}

func withDefaults(n Notification) Notification {
	if n.Kind == "" {
		n.Kind = KindOther
	}
	if n.TargetURL == "" {
		n.TargetURL = "/notifications"
	}
	return n
}

// Recent возвращает последние уведомления (новые сверху) и число непрочитанных.
func (r *Repo) Recent(ctx context.Context, limit int) (*Feed, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, kind, message, target_url, is_read, created_at
		FROM notifications
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, storageErr("recent", err)
	}
	defer rows.Close()

	var f Feed
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.Kind, &n.Message, &n.TargetURL, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, storageErr("recent", err)
		}
		f.Items = append(f.Items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("recent", err)
	}

	if err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM notifications WHERE NOT is_read`,
	).Scan(&f.Unread); err != nil {
		return nil, storageErr("unread count", err)
	}
	return &f, nil
}

// MarkRead идемпотентна: повторная пометка уже прочитанного — не ошибка.
func (r *Repo) MarkRead(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return storageErr("mark read", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead возвращает, сколько записей перешло в прочитанные.
func (r *Repo) MarkAllRead(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE NOT is_read`)
	if err != nil {
		return 0, storageErr("mark all read", err)
	}
	return tag.RowsAffected(), nil
}

// PruneRead удаляет прочитанные уведомления старше порога.
// Вызывается только явно из админки, автоматической чистки нет.
func (r *Repo) PruneRead(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM notifications WHERE is_read AND created_at < $1`, olderThan)
	if err != nil {
		return 0, storageErr("prune", err)
	}
	return tag.RowsAffected(), nil
}
