package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/tendant/ngo-content/pkg/ngocontent"
)

// table maps one entity kind onto its SQL table. columns excludes id, which
// is always selected first.
type table[E ngocontent.Entity] struct {
	name    string
	columns []string
	// orderable maps order keys to columns; id is always allowed
	orderable map[string]string
	// caseless fields are compared with lower() in ExistsBy
	caseless map[string]bool
	newRow   func() E
	scanDest func(E) []any
	values   func(E) []any
}

func (t table[E]) selectList() string {
	return "id, " + strings.Join(t.columns, ", ")
}

func (t table[E]) scan(row pgx.Row) (E, error) {
	e := t.newRow()
	var id int64
	dest := append([]any{&id}, t.scanDest(e)...)
	if err := row.Scan(dest...); err != nil {
		var zero E
		return zero, err
	}
	e.SetEntityID(id)
	return e, nil
}

func (t table[E]) orderBy(key string) (string, error) {
	if key == "" || key == "id" {
		return "id", nil
	}
	col, ok := t.orderable[key]
	if !ok {
		return "", fmt.Errorf("unsupported order key %q for %s", key, t.name)
	}
	return col + ", id", nil
}

var categoryTable = table[*ngocontent.Category]{
	name:      "categories",
	columns:   []string{"name", "description", "image", "created_at", "updated_at"},
	orderable: map[string]string{"name": "lower(name)", "created_at": "created_at"},
	caseless:  map[string]bool{"name": true},
	newRow:    func() *ngocontent.Category { return &ngocontent.Category{} },
	scanDest: func(c *ngocontent.Category) []any {
		return []any{&c.Name, &c.Description, &c.Image, &c.CreatedAt, &c.UpdatedAt}
	},
	values: func(c *ngocontent.Category) []any {
		return []any{c.Name, c.Description, c.Image, c.CreatedAt, c.UpdatedAt}
	},
}

var testimonialTable = table[*ngocontent.Testimonial]{
	name:      "testimonials",
	columns:   []string{"name", "content", "image", "created_at", "updated_at"},
	orderable: map[string]string{"name": "lower(name)", "created_at": "created_at"},
	caseless:  map[string]bool{"name": true},
	newRow:    func() *ngocontent.Testimonial { return &ngocontent.Testimonial{} },
	scanDest: func(t *ngocontent.Testimonial) []any {
		return []any{&t.Name, &t.Content, &t.Image, &t.CreatedAt, &t.UpdatedAt}
	},
	values: func(t *ngocontent.Testimonial) []any {
		return []any{t.Name, t.Content, t.Image, t.CreatedAt, t.UpdatedAt}
	},
}

var memberTable = table[*ngocontent.Member]{
	name: "members",
	columns: []string{"name", "description", "facebook_url", "instagram_url", "linkedin_url",
		"image", "created_at", "updated_at"},
	orderable: map[string]string{"name": "lower(name)", "created_at": "created_at"},
	caseless:  map[string]bool{"name": true},
	newRow:    func() *ngocontent.Member { return &ngocontent.Member{} },
	scanDest: func(m *ngocontent.Member) []any {
		return []any{&m.Name, &m.Description, &m.FacebookURL, &m.InstagramURL, &m.LinkedinURL,
			&m.Image, &m.CreatedAt, &m.UpdatedAt}
	},
	values: func(m *ngocontent.Member) []any {
		return []any{m.Name, m.Description, m.FacebookURL, m.InstagramURL, m.LinkedinURL,
			m.Image, m.CreatedAt, m.UpdatedAt}
	},
}

// repository implements ngocontent.RecordRepository inside one transaction
type repository[E ngocontent.Entity] struct {
	db    DBTX
	table table[E]
}

func placeholders(from, n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(ph, ", ")
}

func (r *repository[E]) Insert(ctx context.Context, entity E) error {
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		r.table.name, strings.Join(r.table.columns, ", "), placeholders(1, len(r.table.columns)))

	var id int64
	if err := r.db.QueryRow(ctx, query, r.table.values(entity)...).Scan(&id); err != nil {
		return handlePostgresError("insert "+r.table.name, err)
	}
	entity.SetEntityID(id)
	return nil
}

func (r *repository[E]) Update(ctx context.Context, entity E) error {
	sets := make([]string, len(r.table.columns))
	for i, col := range r.table.columns {
		sets[i] = fmt.Sprintf("%s = $%d", col, i+2)
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $1", r.table.name, strings.Join(sets, ", "))

	args := append([]any{entity.EntityID()}, r.table.values(entity)...)
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return handlePostgresError("update "+r.table.name, err)
	}
	if tag.RowsAffected() == 0 {
		return ngocontent.ErrNotFound
	}
	return nil
}

func (r *repository[E]) GetByID(ctx context.Context, id int64) (E, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", r.table.selectList(), r.table.name)

	e, err := r.table.scan(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return e, handlePostgresError("get "+r.table.name, err)
	}
	return e, nil
}

func (r *repository[E]) Delete(ctx context.Context, id int64) (E, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1 RETURNING %s", r.table.name, r.table.selectList())

	e, err := r.table.scan(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return e, handlePostgresError("delete "+r.table.name, err)
	}
	return e, nil
}

func (r *repository[E]) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, "SELECT count(*) FROM "+r.table.name).Scan(&count); err != nil {
		return 0, handlePostgresError("count "+r.table.name, err)
	}
	return count, nil
}

func (r *repository[E]) GetPage(ctx context.Context, orderKey string, pageSize, pageNumber int) ([]E, error) {
	order, err := r.table.orderBy(orderKey)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s LIMIT $1 OFFSET $2",
		r.table.selectList(), r.table.name, order)
	return r.query(ctx, "page", query, pageSize, ngocontent.Offset(pageSize, pageNumber))
}

func (r *repository[E]) List(ctx context.Context, orderKey string) ([]E, error) {
	order, err := r.table.orderBy(orderKey)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", r.table.selectList(), r.table.name, order)
	return r.query(ctx, "list", query)
}

func (r *repository[E]) ExistsBy(ctx context.Context, field string, value any) (bool, error) {
	var cond string
	switch {
	case field == "id":
		cond = "id = $1"
	case r.table.caseless[field]:
		cond = fmt.Sprintf("lower(%s) = lower($1)", field)
	default:
		return false, fmt.Errorf("unsupported field %q for %s", field, r.table.name)
	}

	var exists bool
	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE %s)", r.table.name, cond)
	if err := r.db.QueryRow(ctx, query, value).Scan(&exists); err != nil {
		return false, handlePostgresError("exists "+r.table.name, err)
	}
	return exists, nil
}

func (r *repository[E]) query(ctx context.Context, op, query string, args ...any) ([]E, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, handlePostgresError(op+" "+r.table.name, err)
	}
	defer rows.Close()

	result := []E{}
	for rows.Next() {
		e, err := r.table.scan(rows)
		if err != nil {
			return nil, handlePostgresError(op+" "+r.table.name, err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, handlePostgresError(op+" "+r.table.name, err)
	}
	return result, nil
}
