package ngocontent

import (
	"context"
	"fmt"
	"strings"
)

// CategoryService manages categories and their images.
type CategoryService struct {
	svc *entityService[*Category]
}

// Create validates req, rejects duplicate names and stores the category.
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) Result[*Category] {
	if err := req.Validate(); err != nil {
		return Fail[*Category](err)
	}

	if err := s.checkNameFree(ctx, req.Name); err != nil {
		return s.svc.failure("exists", 0, err)
	}

	return s.svc.create(ctx, categoryFromCreate(req), req.Image)
}

// Update applies req to an existing category. Renaming onto another
// category's name is rejected; changing only the letter case is not.
func (s *CategoryService) Update(ctx context.Context, req UpdateCategoryRequest) Result[*Category] {
	if err := req.Validate(); err != nil {
		return Fail[*Category](err)
	}
	change, err := assetChange(req.Image, req.RemoveImage)
	if err != nil {
		return Fail[*Category](err)
	}

	current := s.svc.get(ctx, req.ID)
	if !current.Succeeded() {
		return current
	}
	if !strings.EqualFold(strings.TrimSpace(current.Value.Name), strings.TrimSpace(req.Name)) {
		if err := s.checkNameFree(ctx, req.Name); err != nil {
			return s.svc.failure("exists", req.ID, err)
		}
	}
	return s.svc.update(ctx, req.ID, func(c *Category) { applyCategoryUpdate(c, req) }, change)
}

// Delete removes the category and then its image.
func (s *CategoryService) Delete(ctx context.Context, id int64) Result[*Category] {
	return s.svc.delete(ctx, id)
}

func (s *CategoryService) Get(ctx context.Context, id int64) Result[*Category] {
	return s.svc.get(ctx, id)
}

// GetPage returns category names ordered by name.
func (s *CategoryService) GetPage(ctx context.Context, page, pageSize int) Result[*Page[string]] {
	return pageOf(ctx, s.svc, page, pageSize, categoryName)
}

// checkNameFree returns a ValidationError when name is already taken
func (s *CategoryService) checkNameFree(ctx context.Context, name string) error {
	exists, err := s.ExistsByName(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return &ValidationError{Fields: []string{fmt.Sprintf("category %q already exists", strings.TrimSpace(name))}}
	}
	return nil
}

// ExistsByName reports whether a category with the given name is stored.
func (s *CategoryService) ExistsByName(ctx context.Context, name string) (bool, error) {
	return s.svc.exists(ctx, "name", strings.TrimSpace(name))
}
