package ngocontent

import (
	"fmt"
	"strings"
)

// DefaultPageSize is used when a caller does not ask for a page size.
const DefaultPageSize = 10

// QueryLinkBuilder renders links as BaseURL + path + "?page=N".
type QueryLinkBuilder struct {
	BaseURL string
}

// NewQueryLinkBuilder creates a link builder rooted at baseURL. An empty
// baseURL produces relative links such as "/Category?page=2".
func NewQueryLinkBuilder(baseURL string) *QueryLinkBuilder {
	return &QueryLinkBuilder{BaseURL: strings.TrimSuffix(baseURL, "/")}
}

func (b *QueryLinkBuilder) PageLink(path string, page int) string {
	return fmt.Sprintf("%s%s?page=%d", b.BaseURL, path, page)
}

// Paginate computes page metadata for requestedPage of a collection holding
// totalItems. The page count always rounds up. Asking for a page past the end
// returns ErrNotFound; an empty collection only has page 1.
func Paginate(totalItems, pageSize, requestedPage int, path string, links LinkBuilder) (PageMeta, error) {
	if totalItems < 0 {
		return PageMeta{}, &ValidationError{Fields: []string{"total items must not be negative"}}
	}
	if pageSize <= 0 {
		return PageMeta{}, &ValidationError{Fields: []string{"page size must be positive"}}
	}
	if requestedPage <= 0 {
		return PageMeta{}, &ValidationError{Fields: []string{"page must be positive"}}
	}

	totalPages := (totalItems + pageSize - 1) / pageSize
	if totalPages > 0 && requestedPage > totalPages {
		return PageMeta{}, fmt.Errorf("page %d of %d: %w", requestedPage, totalPages, ErrNotFound)
	}
	if totalPages == 0 && requestedPage > 1 {
		return PageMeta{}, fmt.Errorf("page %d of empty collection: %w", requestedPage, ErrNotFound)
	}

	if links == nil {
		links = NewQueryLinkBuilder("")
	}
	meta := PageMeta{
		CurrentPage: requestedPage,
		TotalItems:  totalItems,
		TotalPages:  totalPages,
	}
	if requestedPage > 1 {
		meta.PrevPage = links.PageLink(path, requestedPage-1)
	}
	if requestedPage < totalPages {
		meta.NextPage = links.PageLink(path, requestedPage+1)
	}
	return meta, nil
}

// Offset returns the number of rows preceding page.
func Offset(pageSize, page int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}
