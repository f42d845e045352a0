package tariffs

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const tariffCols = `id, name, description, price, purpose, service_id, is_active, created_at`

func scanTariff(row pgx.Row) (*Tariff, error) {
	var t Tariff
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Price, &t.Purpose, &t.ServiceID, &t.IsActive, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Tariff, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+tariffCols+` FROM tariffs WHERE id = $1`, id)
	t, err := scanTariff(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storageErr("get", err)
	}
	return t, nil
}

// GetActive возвращает тариф, пригодный для новой брони.
// Деактивированный тариф блокирует только новые брони — правки старых идут через GetByID.
func (r *Repo) GetActive(ctx context.Context, id int64) (*Tariff, error) {
	t, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.IsActive {
		return nil, ErrInactive
	}
	return t, nil
}

func (r *Repo) List(ctx context.Context, onlyActive bool) ([]Tariff, error) {
	q := `SELECT ` + tariffCols + ` FROM tariffs ORDER BY id`
	if onlyActive {
		q = `SELECT ` + tariffCols + ` FROM tariffs WHERE is_active ORDER BY id`
	}
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, storageErr("list", err)
	}
	defer rows.Close()

	var out []Tariff
	for rows.Next() {
		var t Tariff
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.Price, &t.Purpose, &t.ServiceID, &t.IsActive, &t.CreatedAt); err != nil {
			return nil, storageErr("list", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list", err)
	}
	return out, nil
}

func (r *Repo) Create(ctx context.Context, t *Tariff) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO tariffs (name, description, price, purpose, service_id, is_active)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id
	`, t.Name, t.Description, t.Price, t.Purpose, t.ServiceID, t.IsActive).Scan(&id)
	if err != nil {
		return 0, storageErr("create", err)
	}
	return id, nil
}

// Update меняет всё, кроме purpose: назначение тарифа фиксируется при создании.
func (r *Repo) Update(ctx context.Context, t *Tariff) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tariffs
		SET name=$2, description=$3, price=$4, service_id=$5, is_active=$6
		WHERE id=$1
	`, t.ID, t.Name, t.Description, t.Price, t.ServiceID, t.IsActive)
	if err != nil {
		return storageErr("update", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE tariffs SET is_active=$2 WHERE id=$1`, id, active)
	if err != nil {
		return storageErr("set active", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tariffs WHERE id=$1`, id)
	if err != nil {
		return storageErr("delete", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
