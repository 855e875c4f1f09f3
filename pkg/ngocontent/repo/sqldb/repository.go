package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/tendant/ngo-content/pkg/ngocontent"
)

// orderExprs maps order keys onto ORDER BY expressions shared by all tables
var orderExprs = map[string]string{
	"":           "id ASC",
	"id":         "id ASC",
	"name":       "lower(name) ASC, id ASC",
	"created_at": "created_at ASC, id ASC",
}

// repository implements ngocontent.RecordRepository on bun row models
type repository[E ngocontent.Entity, R any] struct {
	db bun.IDB
	m  mapping[E, R]
}

func (r *repository[E, R]) wrap(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ngocontent.ErrNotFound
	}
	return fmt.Errorf("%w: %s %s: %w", ngocontent.ErrRecordWrite, op, r.m.table, err)
}

func (r *repository[E, R]) Insert(ctx context.Context, entity E) error {
	row := r.m.toRow(entity)
	res, err := r.db.NewInsert().Model(row).Exec(ctx)
	if err != nil {
		return r.wrap("insert", err)
	}

	id := r.m.fromRow(row).EntityID()
	if id == 0 {
		if id, err = res.LastInsertId(); err != nil {
			return r.wrap("insert", err)
		}
	}
	entity.SetEntityID(id)
	return nil
}

func (r *repository[E, R]) Update(ctx context.Context, entity E) error {
	res, err := r.db.NewUpdate().Model(r.m.toRow(entity)).WherePK().Exec(ctx)
	if err != nil {
		return r.wrap("update", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return r.wrap("update", err)
	}
	if n == 0 {
		return ngocontent.ErrNotFound
	}
	return nil
}

func (r *repository[E, R]) GetByID(ctx context.Context, id int64) (E, error) {
	row := new(R)
	if err := r.db.NewSelect().Model(row).Where("id = ?", id).Scan(ctx); err != nil {
		var zero E
		return zero, r.wrap("get", err)
	}
	return r.m.fromRow(row), nil
}

func (r *repository[E, R]) Delete(ctx context.Context, id int64) (E, error) {
	e, err := r.GetByID(ctx, id)
	if err != nil {
		return e, err
	}
	if _, err := r.db.NewDelete().Model((*R)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
		var zero E
		return zero, r.wrap("delete", err)
	}
	return e, nil
}

func (r *repository[E, R]) Count(ctx context.Context) (int, error) {
	n, err := r.db.NewSelect().Model((*R)(nil)).Count(ctx)
	if err != nil {
		return 0, r.wrap("count", err)
	}
	return n, nil
}

func (r *repository[E, R]) GetPage(ctx context.Context, orderKey string, pageSize, pageNumber int) ([]E, error) {
	order, ok := orderExprs[orderKey]
	if !ok {
		return nil, fmt.Errorf("unsupported order key %q for %s", orderKey, r.m.table)
	}

	var rows []R
	err := r.db.NewSelect().
		Model(&rows).
		OrderExpr(order).
		Limit(pageSize).
		Offset(ngocontent.Offset(pageSize, pageNumber)).
		Scan(ctx)
	if err != nil {
		return nil, r.wrap("page", err)
	}
	return r.entities(rows), nil
}

func (r *repository[E, R]) List(ctx context.Context, orderKey string) ([]E, error) {
	order, ok := orderExprs[orderKey]
	if !ok {
		return nil, fmt.Errorf("unsupported order key %q for %s", orderKey, r.m.table)
	}

	var rows []R
	if err := r.db.NewSelect().Model(&rows).OrderExpr(order).Scan(ctx); err != nil {
		return nil, r.wrap("list", err)
	}
	return r.entities(rows), nil
}

func (r *repository[E, R]) ExistsBy(ctx context.Context, field string, value any) (bool, error) {
	q := r.db.NewSelect().Model((*R)(nil))
	switch field {
	case "id":
		q = q.Where("id = ?", value)
	case "name":
		q = q.Where("lower(name) = lower(?)", value)
	default:
		return false, fmt.Errorf("unsupported field %q for %s", field, r.m.table)
	}

	exists, err := q.Exists(ctx)
	if err != nil {
		return false, r.wrap("exists", err)
	}
	return exists, nil
}

func (r *repository[E, R]) entities(rows []R) []E {
	result := make([]E, 0, len(rows))
	for i := range rows {
		result = append(result, r.m.fromRow(&rows[i]))
	}
	return result
}
