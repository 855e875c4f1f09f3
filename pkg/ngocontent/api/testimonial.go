package api

import (
	"net/http"

	"github.com/tendant/ngo-content/pkg/ngocontent"
)

func (h *Handler) ListTestimonials(w http.ResponseWriter, r *http.Request) {
	page, size, _, err := h.pageParams(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	writeResult(w, r, h.services.Testimonials.GetPage(r.Context(), page, size))
}

func (h *Handler) GetTestimonial(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	writeResult(w, r, h.services.Testimonials.Get(r.Context(), id))
}

func (h *Handler) CreateTestimonial(w http.ResponseWriter, r *http.Request) {
	f, err := parseForm(w, r, "name", "content")
	if err != nil {
		badRequest(w, r, err)
		return
	}

	writeCreated(w, r, h.services.Testimonials.Create(r.Context(), ngocontent.CreateTestimonialRequest{
		Name:    f.get("name"),
		Content: f.get("content"),
		Image:   f.image,
	}))
}

func (h *Handler) UpdateTestimonial(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	f, err := parseForm(w, r, "name", "content")
	if err != nil {
		badRequest(w, r, err)
		return
	}

	writeResult(w, r, h.services.Testimonials.Update(r.Context(), ngocontent.UpdateTestimonialRequest{
		ID:          id,
		Name:        f.get("name"),
		Content:     f.get("content"),
		Image:       f.image,
		RemoveImage: f.removeImage,
	}))
}

func (h *Handler) DeleteTestimonial(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	writeResult(w, r, h.services.Testimonials.Delete(r.Context(), id))
}
