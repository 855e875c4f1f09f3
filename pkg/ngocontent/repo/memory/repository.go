package memory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/tendant/ngo-content/pkg/ngocontent"
)

// ErrCompleted is returned when a unit of work is used after commit or rollback.
var ErrCompleted = errors.New("unit of work already completed")

// knownFields are the columns every table can filter and order by.
var knownFields = []string{"id", "name", "image"}

// Store implements ngocontent.Store using in-memory tables. Changes staged on
// a unit of work are applied atomically on SaveChanges.
type Store struct {
	mu           sync.RWMutex
	categories   *table[*ngocontent.Category]
	testimonials *table[*ngocontent.Testimonial]
	members      *table[*ngocontent.Member]
}

// New creates a new in-memory store
func New() *Store {
	return &Store{
		categories: newTable(
			func(c *ngocontent.Category) *ngocontent.Category { cp := *c; return &cp },
			func(c *ngocontent.Category, field string) (any, bool) {
				switch field {
				case "id":
					return c.ID, true
				case "name":
					return c.Name, true
				case "image":
					return c.Image, true
				}
				return nil, false
			},
		),
		testimonials: newTable(
			func(t *ngocontent.Testimonial) *ngocontent.Testimonial { cp := *t; return &cp },
			func(t *ngocontent.Testimonial, field string) (any, bool) {
				switch field {
				case "id":
					return t.ID, true
				case "name":
					return t.Name, true
				case "image":
					return t.Image, true
				}
				return nil, false
			},
		),
		members: newTable(
			func(m *ngocontent.Member) *ngocontent.Member { cp := *m; return &cp },
			func(m *ngocontent.Member, field string) (any, bool) {
				switch field {
				case "id":
					return m.ID, true
				case "name":
					return m.Name, true
				case "image":
					return m.Image, true
				}
				return nil, false
			},
		),
	}
}

// Begin opens a unit of work. It never fails for the memory store.
func (s *Store) Begin(ctx context.Context) (ngocontent.UnitOfWork, error) {
	return &unitOfWork{store: s}, nil
}

func (s *Store) Close() error {
	return nil
}

// table holds the committed rows of one entity kind.
type table[E ngocontent.Entity] struct {
	rows   map[int64]E
	nextID int64
	clone  func(E) E
	field  func(E, string) (any, bool)
}

func newTable[E ngocontent.Entity](clone func(E) E, field func(E, string) (any, bool)) *table[E] {
	return &table[E]{
		rows:  make(map[int64]E),
		clone: clone,
		field: field,
	}
}

// sorted returns copies of all rows ordered by key, then by id.
func (t *table[E]) sorted(key string) ([]E, error) {
	if !slices.Contains(knownFields, key) {
		return nil, fmt.Errorf("unknown order key %q", key)
	}
	result := make([]E, 0, len(t.rows))
	for _, row := range t.rows {
		result = append(result, t.clone(row))
	}
	sort.SliceStable(result, func(i, j int) bool {
		a, _ := t.field(result[i], key)
		b, _ := t.field(result[j], key)
		if c := compare(a, b); c != 0 {
			return c < 0
		}
		return result[i].EntityID() < result[j].EntityID()
	})
	return result, nil
}

func compare(a, b any) int {
	switch av := a.(type) {
	case int64:
		bv, _ := b.(int64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case string:
		bv, _ := b.(string)
		return strings.Compare(strings.ToLower(av), strings.ToLower(bv))
	}
	return 0
}

type stagedOp struct {
	check func() error
	apply func()
}

// unitOfWork stages mutations until SaveChanges.
type unitOfWork struct {
	store *Store
	ops   []stagedOp
	done  bool
}

func (u *unitOfWork) Categories() ngocontent.RecordRepository[*ngocontent.Category] {
	return &repository[*ngocontent.Category]{uow: u, table: u.store.categories}
}

func (u *unitOfWork) Testimonials() ngocontent.RecordRepository[*ngocontent.Testimonial] {
	return &repository[*ngocontent.Testimonial]{uow: u, table: u.store.testimonials}
}

func (u *unitOfWork) Members() ngocontent.RecordRepository[*ngocontent.Member] {
	return &repository[*ngocontent.Member]{uow: u, table: u.store.members}
}

// SaveChanges validates every staged change and applies them all, or none.
func (u *unitOfWork) SaveChanges(ctx context.Context) error {
	if u.done {
		return ErrCompleted
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	for _, op := range u.ops {
		if op.check == nil {
			continue
		}
		if err := op.check(); err != nil {
			return err
		}
	}
	for _, op := range u.ops {
		op.apply()
	}

	u.ops = nil
	u.done = true
	return nil
}

func (u *unitOfWork) Rollback(ctx context.Context) error {
	u.ops = nil
	u.done = true
	return nil
}

func (u *unitOfWork) stage(op stagedOp) error {
	if u.done {
		return ErrCompleted
	}
	u.ops = append(u.ops, op)
	return nil
}

// repository is a unit-of-work scoped view of one table.
type repository[E ngocontent.Entity] struct {
	uow   *unitOfWork
	table *table[E]
}

func (r *repository[E]) Insert(ctx context.Context, entity E) error {
	r.uow.store.mu.Lock()
	r.table.nextID++
	id := r.table.nextID
	r.uow.store.mu.Unlock()

	entity.SetEntityID(id)
	row := r.table.clone(entity)
	return r.uow.stage(stagedOp{
		apply: func() { r.table.rows[id] = row },
	})
}

func (r *repository[E]) Update(ctx context.Context, entity E) error {
	id := entity.EntityID()
	if err := r.exists(id); err != nil {
		return err
	}
	row := r.table.clone(entity)
	return r.uow.stage(stagedOp{
		check: func() error { return r.existsLocked(id) },
		apply: func() { r.table.rows[id] = row },
	})
}

func (r *repository[E]) GetByID(ctx context.Context, id int64) (E, error) {
	r.uow.store.mu.RLock()
	defer r.uow.store.mu.RUnlock()

	row, ok := r.table.rows[id]
	if !ok {
		var zero E
		return zero, ngocontent.ErrNotFound
	}
	return r.table.clone(row), nil
}

func (r *repository[E]) Delete(ctx context.Context, id int64) (E, error) {
	removed, err := r.GetByID(ctx, id)
	if err != nil {
		return removed, err
	}
	err = r.uow.stage(stagedOp{
		check: func() error { return r.existsLocked(id) },
		apply: func() { delete(r.table.rows, id) },
	})
	return removed, err
}

func (r *repository[E]) Count(ctx context.Context) (int, error) {
	r.uow.store.mu.RLock()
	defer r.uow.store.mu.RUnlock()
	return len(r.table.rows), nil
}

func (r *repository[E]) GetPage(ctx context.Context, orderKey string, pageSize, pageNumber int) ([]E, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive, got %d", pageSize)
	}
	rows, err := r.List(ctx, orderKey)
	if err != nil {
		return nil, err
	}

	offset := ngocontent.Offset(pageSize, pageNumber)
	if offset >= len(rows) {
		return []E{}, nil
	}
	end := offset + pageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end], nil
}

func (r *repository[E]) List(ctx context.Context, orderKey string) ([]E, error) {
	r.uow.store.mu.RLock()
	defer r.uow.store.mu.RUnlock()
	return r.table.sorted(orderKey)
}

func (r *repository[E]) ExistsBy(ctx context.Context, field string, value any) (bool, error) {
	r.uow.store.mu.RLock()
	defer r.uow.store.mu.RUnlock()

	if !slices.Contains(knownFields, field) {
		return false, fmt.Errorf("unknown field %q", field)
	}
	for _, row := range r.table.rows {
		v, _ := r.table.field(row, field)
		if s, isString := v.(string); isString {
			if want, ok := value.(string); ok && strings.EqualFold(s, want) {
				return true, nil
			}
			continue
		}
		if v == value {
			return true, nil
		}
	}
	return false, nil
}

func (r *repository[E]) exists(id int64) error {
	r.uow.store.mu.RLock()
	defer r.uow.store.mu.RUnlock()
	return r.existsLocked(id)
}

func (r *repository[E]) existsLocked(id int64) error {
	if _, ok := r.table.rows[id]; !ok {
		return ngocontent.ErrNotFound
	}
	return nil
}
