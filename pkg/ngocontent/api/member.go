package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/tendant/ngo-content/pkg/ngocontent"
)

var memberFields = []string{"id", "name", "description", "facebook_url", "instagram_url", "linkedin_url"}

// ListMembers returns the full listing to administrators. Everyone else
// must ask for a page.
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	page, size, paged, err := h.pageParams(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}

	if !paged {
		if !isAdministrator(r) {
			writeResult(w, r, ngocontent.Unauthorized[any]("unauthorized"))
			return
		}
		writeResult(w, r, h.services.Members.List(r.Context()))
		return
	}

	writeResult(w, r, h.services.Members.GetPage(r.Context(), page, size))
}

func (h *Handler) GetMember(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	writeResult(w, r, h.services.Members.Get(r.Context(), id))
}

func (h *Handler) CreateMember(w http.ResponseWriter, r *http.Request) {
	f, err := parseForm(w, r, memberFields...)
	if err != nil {
		badRequest(w, r, err)
		return
	}

	writeCreated(w, r, h.services.Members.Create(r.Context(), ngocontent.CreateMemberRequest{
		Name:         f.get("name"),
		Description:  f.get("description"),
		FacebookURL:  f.get("facebook_url"),
		InstagramURL: f.get("instagram_url"),
		LinkedinURL:  f.get("linkedin_url"),
		Image:        f.image,
	}))
}

// UpdateMember rejects a body id that differs from the path id
func (h *Handler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	f, err := parseForm(w, r, memberFields...)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	if raw := f.get("id"); raw != "" {
		bodyID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || bodyID != id {
			badRequest(w, r, &ngocontent.ValidationError{Fields: []string{fmt.Sprintf("id %q does not match member %d", raw, id)}})
			return
		}
	}

	writeResult(w, r, h.services.Members.Update(r.Context(), ngocontent.UpdateMemberRequest{
		ID:           id,
		Name:         f.get("name"),
		Description:  f.get("description"),
		FacebookURL:  f.get("facebook_url"),
		InstagramURL: f.get("instagram_url"),
		LinkedinURL:  f.get("linkedin_url"),
		Image:        f.image,
		RemoveImage:  f.removeImage,
	}))
}

func (h *Handler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	writeResult(w, r, h.services.Members.Delete(r.Context(), id))
}
