package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"

	"github.com/tendant/ngo-content/pkg/ngocontent"
)

const (
	// maxUploadSize bounds multipart bodies, image included
	maxUploadSize = 10 << 20
	// maxMemory is kept in memory by ParseMultipartForm before spilling to disk
	maxMemory = 4 << 20
)

// Handler serves the category, testimonial and member endpoints
type Handler struct {
	services *ngocontent.Services
	pageSize int
	auth     *jwtauth.JWTAuth
}

// Option configures a Handler
type Option func(*Handler)

// WithPageSize sets the page size used when a request does not pass page_size
func WithPageSize(size int) Option {
	return func(h *Handler) {
		if size > 0 {
			h.pageSize = size
		}
	}
}

// WithAuth requires a valid bearer token signed by auth on every route
func WithAuth(auth *jwtauth.JWTAuth) Option {
	return func(h *Handler) {
		h.auth = auth
	}
}

// NewHandler creates a new handler over services
func NewHandler(services *ngocontent.Services, opts ...Option) *Handler {
	h := &Handler{services: services, pageSize: ngocontent.DefaultPageSize}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the entity routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		if h.auth != nil {
			r.Use(jwtauth.Verifier(h.auth))
			r.Use(jwtauth.Authenticator)
		}

		r.Route("/Category", func(r chi.Router) {
			r.Get("/", h.ListCategories)
			r.Post("/", h.CreateCategory)
			r.Get("/{id}", h.GetCategory)
			r.Put("/{id}", h.UpdateCategory)
			r.Delete("/{id}", h.DeleteCategory)
		})

		r.Route("/Testimonials", func(r chi.Router) {
			r.Get("/", h.ListTestimonials)
			r.Post("/", h.CreateTestimonial)
			r.Get("/{id}", h.GetTestimonial)
			r.Put("/{id}", h.UpdateTestimonial)
			r.Delete("/{id}", h.DeleteTestimonial)
		})

		r.Route("/Member", func(r chi.Router) {
			r.Get("/", h.ListMembers)
			r.Post("/", h.CreateMember)
			r.Get("/{id}", h.GetMember)
			r.Put("/{id}", h.UpdateMember)
			r.Delete("/{id}", h.DeleteMember)
		})
	})

	return r
}

// httpStatus maps a result status onto the response code. created is used
// for successful creates.
func httpStatus(status ngocontent.Status, created bool) int {
	switch status {
	case ngocontent.StatusOK:
		if created {
			return http.StatusCreated
		}
		return http.StatusOK
	case ngocontent.StatusValidationFailed:
		return http.StatusBadRequest
	case ngocontent.StatusNotFound:
		return http.StatusNotFound
	case ngocontent.StatusUnauthorized:
		return http.StatusUnauthorized
	case ngocontent.StatusBlobWriteFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeResult[T any](w http.ResponseWriter, r *http.Request, res ngocontent.Result[T]) {
	render.Status(r, httpStatus(res.Status, false))
	render.JSON(w, r, res)
}

func writeCreated[T any](w http.ResponseWriter, r *http.Request, res ngocontent.Result[T]) {
	render.Status(r, httpStatus(res.Status, true))
	render.JSON(w, r, res)
}

func badRequest(w http.ResponseWriter, r *http.Request, err error) {
	writeResult(w, r, ngocontent.Fail[any](err))
}

// idParam parses the {id} path parameter
func idParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &ngocontent.ValidationError{Fields: []string{fmt.Sprintf("invalid id %q", raw)}}
	}
	return id, nil
}

// pageParams reads page and page_size. ok is false when page is absent.
func (h *Handler) pageParams(r *http.Request) (page, size int, ok bool, err error) {
	q := r.URL.Query()
	size = h.pageSize

	if raw := q.Get("page_size"); raw != "" {
		size, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, false, &ngocontent.ValidationError{Fields: []string{fmt.Sprintf("invalid page_size %q", raw)}}
		}
	}

	raw := q.Get("page")
	if raw == "" {
		return 1, size, false, nil
	}
	page, err = strconv.Atoi(raw)
	if err != nil {
		return 0, 0, false, &ngocontent.ValidationError{Fields: []string{fmt.Sprintf("invalid page %q", raw)}}
	}
	return page, size, true, nil
}

// form holds the fields of a create or update request, from either a
// multipart form or a JSON body.
type form struct {
	values      map[string]string
	image       *ngocontent.PendingAsset
	removeImage bool
}

func (f form) get(key string) string {
	return f.values[key]
}

// parseForm reads the request body. JSON bodies cannot carry an image.
func parseForm(w http.ResponseWriter, r *http.Request, fields ...string) (form, error) {
	f := form{values: make(map[string]string, len(fields))}

	if render.GetRequestContentType(r) == render.ContentTypeJSON {
		body := map[string]any{}
		if err := render.DecodeJSON(io.LimitReader(r.Body, maxUploadSize), &body); err != nil {
			return f, &ngocontent.ValidationError{Fields: []string{"invalid JSON body"}}
		}
		for _, field := range fields {
			if v, ok := body[field]; ok && v != nil {
				f.values[field] = jsonValue(v)
			}
		}
		if v, ok := body["remove_image"].(bool); ok {
			f.removeImage = v
		}
		return f, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return f, &ngocontent.ValidationError{Fields: []string{"invalid form: " + err.Error()}}
	}

	for _, field := range fields {
		f.values[field] = strings.TrimSpace(r.FormValue(field))
	}
	if raw := r.FormValue("remove_image"); raw != "" {
		remove, err := strconv.ParseBool(raw)
		if err != nil {
			return f, &ngocontent.ValidationError{Fields: []string{fmt.Sprintf("invalid remove_image %q", raw)}}
		}
		f.removeImage = remove
	}

	image, err := readImage(r)
	if err != nil {
		return f, err
	}
	f.image = image
	return f, nil
}

// jsonValue renders a decoded JSON scalar the way the same field would
// arrive in a multipart form.
func jsonValue(v any) string {
	switch v := v.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// readImage returns the uploaded "image" file, or nil when none was sent
func readImage(r *http.Request) (*ngocontent.PendingAsset, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, &ngocontent.ValidationError{Fields: []string{"invalid image upload"}}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error("Failed to read uploaded image", "file_name", header.Filename, "error", err)
		return nil, &ngocontent.ValidationError{Fields: []string{"image could not be read"}}
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return &ngocontent.PendingAsset{FileName: header.Filename, ContentType: contentType, Data: data}, nil
}
