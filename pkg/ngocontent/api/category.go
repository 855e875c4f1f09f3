package api

import (
	"net/http"

	"github.com/tendant/ngo-content/pkg/ngocontent"
)

// ListCategories returns one page of category names
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	page, size, _, err := h.pageParams(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	writeResult(w, r, h.services.Categories.GetPage(r.Context(), page, size))
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	writeResult(w, r, h.services.Categories.Get(r.Context(), id))
}

// CreateCategory accepts name, description and an optional image
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	f, err := parseForm(w, r, "name", "description")
	if err != nil {
		badRequest(w, r, err)
		return
	}

	writeCreated(w, r, h.services.Categories.Create(r.Context(), ngocontent.CreateCategoryRequest{
		Name:        f.get("name"),
		Description: f.get("description"),
		Image:       f.image,
	}))
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	f, err := parseForm(w, r, "name", "description")
	if err != nil {
		badRequest(w, r, err)
		return
	}

	writeResult(w, r, h.services.Categories.Update(r.Context(), ngocontent.UpdateCategoryRequest{
		ID:          id,
		Name:        f.get("name"),
		Description: f.get("description"),
		Image:       f.image,
		RemoveImage: f.removeImage,
	}))
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	writeResult(w, r, h.services.Categories.Delete(r.Context(), id))
}
