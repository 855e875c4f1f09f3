package ngocontent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Services bundles the entity services sharing one store and coordinator.
type Services struct {
	Categories   *CategoryService
	Testimonials *TestimonialService
	Members      *MemberService

	store Store
}

// Close releases the underlying store.
func (s *Services) Close() error {
	return s.store.Close()
}

type options struct {
	store        Store
	blobs        BlobStore
	coordinator  *AttachmentCoordinator
	coordOptions []CoordinatorOption
	links        LinkBuilder
	logger       *slog.Logger
	now          func() time.Time
}

// Option represents a functional option for configuring the services
type Option func(*options)

// WithStore sets the relational store
func WithStore(store Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithBlobStore sets the image blob store
func WithBlobStore(blobs BlobStore) Option {
	return func(o *options) {
		o.blobs = blobs
	}
}

// WithCoordinator uses a preconfigured coordinator instead of building one
// from the blob store.
func WithCoordinator(c *AttachmentCoordinator) Option {
	return func(o *options) {
		o.coordinator = c
	}
}

// WithCoordinatorOptions passes options to the coordinator built from the blob store
func WithCoordinatorOptions(opts ...CoordinatorOption) Option {
	return func(o *options) {
		o.coordOptions = append(o.coordOptions, opts...)
	}
}

// WithLinkBuilder sets how previous/next page links are rendered
func WithLinkBuilder(links LinkBuilder) Option {
	return func(o *options) {
		o.links = links
	}
}

// WithLogger sets the logger for services and the coordinator
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock overrides the time source used for record timestamps
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// New creates the entity services with the given options
func New(opts ...Option) (*Services, error) {
	o := options{
		links:  NewQueryLinkBuilder(""),
		logger: slog.Default(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.store == nil {
		return nil, fmt.Errorf("store is required")
	}

	coord := o.coordinator
	if coord == nil {
		if o.blobs == nil {
			return nil, fmt.Errorf("blob store is required")
		}
		coordOpts := append([]CoordinatorOption{WithCoordinatorLogger(o.logger)}, o.coordOptions...)
		var err error
		coord, err = NewAttachmentCoordinator(o.blobs, coordOpts...)
		if err != nil {
			return nil, err
		}
	}

	return &Services{
		Categories: &CategoryService{svc: newEntityService(o, coord, kind[*Category]{
			name:     "category",
			path:     "/Category",
			orderKey: "name",
			repo:     UnitOfWork.Categories,
		})},
		Testimonials: &TestimonialService{svc: newEntityService(o, coord, kind[*Testimonial]{
			name:     "testimonial",
			path:     "/Testimonials",
			orderKey: "id",
			repo:     UnitOfWork.Testimonials,
		})},
		Members: &MemberService{svc: newEntityService(o, coord, kind[*Member]{
			name:     "member",
			path:     "/Member",
			orderKey: "name",
			repo:     UnitOfWork.Members,
		})},
		store: o.store,
	}, nil
}

// kind describes one entity kind to the generic service.
type kind[E Entity] struct {
	name     string
	path     string
	orderKey string
	repo     func(UnitOfWork) RecordRepository[E]
}

// entityService implements create/update/delete/page once for every kind.
type entityService[E Entity] struct {
	store  Store
	coord  *AttachmentCoordinator
	links  LinkBuilder
	kind   kind[E]
	logger *slog.Logger
	now    func() time.Time
}

func newEntityService[E Entity](o options, coord *AttachmentCoordinator, k kind[E]) *entityService[E] {
	return &entityService[E]{
		store:  o.store,
		coord:  coord,
		links:  o.links,
		kind:   k,
		logger: o.logger.With("kind", k.name),
		now:    o.now,
	}
}

func (s *entityService[E]) begin(ctx context.Context) (UnitOfWork, func(), error) {
	uow, err := s.store.Begin(ctx)
	if err != nil {
		return nil, nil, s.recordErr("begin", 0, err)
	}
	return uow, func() { _ = uow.Rollback(ctx) }, nil
}

func (s *entityService[E]) create(ctx context.Context, entity E, asset *PendingAsset) Result[E] {
	out, err := s.coord.Create(ctx, asset, func(ctx context.Context, locator string) error {
		uow, done, err := s.begin(ctx)
		if err != nil {
			return err
		}
		defer done()

		entity.SetAssetRef(locator)
		entity.Touch(s.now())
		if err := s.kind.repo(uow).Insert(ctx, entity); err != nil {
			return s.recordErr("insert", 0, err)
		}
		if err := uow.SaveChanges(ctx); err != nil {
			return s.recordErr("commit", entity.EntityID(), err)
		}
		return nil
	})
	if err != nil {
		return s.failure("create", 0, err)
	}

	s.logger.Info("record created", "id", entity.EntityID(), "image", entity.AssetRef())
	return Ok(entity, fmt.Sprintf("%s created", s.kind.name)).WithWarnings(out.Warnings...)
}

func (s *entityService[E]) update(ctx context.Context, id int64, apply func(E), change AssetChange) Result[E] {
	uow, done, err := s.begin(ctx)
	if err != nil {
		return s.failure("update", id, err)
	}
	defer done()

	repo := s.kind.repo(uow)
	entity, err := repo.GetByID(ctx, id)
	if err != nil {
		return s.failure("update", id, err)
	}

	previous := entity.AssetRef()
	apply(entity)

	persist := func(ctx context.Context, locator string) error {
		entity.SetAssetRef(locator)
		entity.Touch(s.now())
		if err := repo.Update(ctx, entity); err != nil {
			return s.recordErr("update", id, err)
		}
		if err := uow.SaveChanges(ctx); err != nil {
			return s.recordErr("commit", id, err)
		}
		return nil
	}

	var out Outcome
	switch change.Kind {
	case AssetRemove:
		out, err = s.coord.Remove(ctx, previous, persist)
	case AssetReplace:
		out, err = s.coord.Replace(ctx, previous, change.Asset, persist)
	default:
		out, err = s.coord.Replace(ctx, previous, nil, persist)
	}
	if err != nil {
		return s.failure("update", id, err)
	}

	s.logger.Info("record updated", "id", id, "image", entity.AssetRef())
	return Ok(entity, fmt.Sprintf("%s updated", s.kind.name)).WithWarnings(out.Warnings...)
}

func (s *entityService[E]) delete(ctx context.Context, id int64) Result[E] {
	uow, done, err := s.begin(ctx)
	if err != nil {
		return s.failure("delete", id, err)
	}
	defer done()

	repo := s.kind.repo(uow)
	entity, err := repo.GetByID(ctx, id)
	if err != nil {
		return s.failure("delete", id, err)
	}

	out, err := s.coord.Delete(ctx, entity.AssetRef(), func(ctx context.Context) error {
		removed, err := repo.Delete(ctx, id)
		if err != nil {
			return s.recordErr("delete", id, err)
		}
		if err := uow.SaveChanges(ctx); err != nil {
			return s.recordErr("commit", id, err)
		}
		entity = removed
		return nil
	})
	if err != nil {
		return s.failure("delete", id, err)
	}

	s.logger.Info("record deleted", "id", id)
	return Ok(entity, fmt.Sprintf("%s deleted", s.kind.name)).WithWarnings(out.Warnings...)
}

func (s *entityService[E]) get(ctx context.Context, id int64) Result[E] {
	uow, done, err := s.begin(ctx)
	if err != nil {
		return s.failure("get", id, err)
	}
	defer done()

	entity, err := s.kind.repo(uow).GetByID(ctx, id)
	if err != nil {
		return s.failure("get", id, err)
	}
	return Ok(entity)
}

func (s *entityService[E]) list(ctx context.Context) Result[[]E] {
	uow, done, err := s.begin(ctx)
	if err != nil {
		return failure[[]E](s, "list", 0, err)
	}
	defer done()

	entities, err := s.kind.repo(uow).List(ctx, s.kind.orderKey)
	if err != nil {
		return failure[[]E](s, "list", 0, err)
	}
	if entities == nil {
		entities = []E{}
	}
	return Ok(entities)
}

func (s *entityService[E]) exists(ctx context.Context, field string, value any) (bool, error) {
	uow, done, err := s.begin(ctx)
	if err != nil {
		return false, err
	}
	defer done()

	return s.kind.repo(uow).ExistsBy(ctx, field, value)
}

// pageOf reads one page of records and projects each into P.
func pageOf[E Entity, P any](ctx context.Context, s *entityService[E], page, pageSize int, project func(E) P) Result[*Page[P]] {
	if page <= 0 || pageSize <= 0 {
		err := &ValidationError{Fields: []string{"page and page size must be positive"}}
		return Fail[*Page[P]](err)
	}

	uow, done, err := s.begin(ctx)
	if err != nil {
		return failure[*Page[P]](s, "page", 0, err)
	}
	defer done()

	repo := s.kind.repo(uow)
	total, err := repo.Count(ctx)
	if err != nil {
		return failure[*Page[P]](s, "count", 0, err)
	}

	meta, err := Paginate(total, pageSize, page, s.kind.path, s.links)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return NotFound[*Page[P]]("page %d does not exist", page)
		}
		return Fail[*Page[P]](err)
	}

	items := make([]P, 0, pageSize)
	if total > 0 {
		rows, err := repo.GetPage(ctx, s.kind.orderKey, pageSize, page)
		if err != nil {
			return failure[*Page[P]](s, "page", 0, err)
		}
		for _, row := range rows {
			items = append(items, project(row))
		}
	}

	return Ok(&Page[P]{PageMeta: meta, Items: items})
}

// recordErr classifies a repository error. Missing rows stay NotFound; every
// other failure becomes a RecordWriteFailure.
func (s *entityService[E]) recordErr(op string, id int64, err error) error {
	if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrRecordWrite) {
		err = fmt.Errorf("%w: %w", ErrRecordWrite, err)
	}
	return &EntityError{Kind: s.kind.name, ID: id, Op: op, Err: err}
}

func (s *entityService[E]) failure(op string, id int64, err error) Result[E] {
	return failure[E](s, op, id, err)
}

func failure[T any, E Entity](s *entityService[E], op string, id int64, err error) Result[T] {
	switch StatusOf(err) {
	case StatusNotFound:
		if id != 0 {
			return NotFound[T]("%s %d was not found", s.kind.name, id)
		}
		return Fail[T](err)
	case StatusValidationFailed:
		return Fail[T](err)
	case StatusBlobWriteFailed:
		s.logger.Error("image could not be stored", "op", op, "id", id, "error", err)
		return Fail[T](err, fmt.Sprintf("%s image could not be stored", s.kind.name))
	default:
		s.logger.Error("record operation failed", "op", op, "id", id, "error", err)
		return Fail[T](err, fmt.Sprintf("%s could not be saved", s.kind.name))
	}
}
