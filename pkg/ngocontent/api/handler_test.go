package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/ngo-content/pkg/ngocontent"
	"github.com/tendant/ngo-content/pkg/ngocontent/api"
	"github.com/tendant/ngo-content/pkg/ngocontent/presets"
	memorystorage "github.com/tendant/ngo-content/pkg/ngocontent/storage/memory"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type testServer struct {
	handler http.Handler
	blobs   *memorystorage.Backend
	auth    *jwtauth.JWTAuth
	token   string
	admin   string
}

type response struct {
	Value    json.RawMessage `json:"value"`
	Status   string          `json:"status"`
	Messages []string        `json:"messages"`
	Warnings []string        `json:"warnings"`
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	env := presets.NewTesting(t)

	auth := api.NewAuth("test-secret")
	token, err := api.IssueToken(auth, "editor", "Editor", time.Hour)
	require.NoError(t, err)
	admin, err := api.IssueToken(auth, "root", api.RoleAdministrator, time.Hour)
	require.NoError(t, err)

	h := api.NewHandler(env.Services, api.WithAuth(auth), api.WithPageSize(2))
	return &testServer{handler: h.Routes(), blobs: env.Blobs, auth: auth, token: token, admin: admin}
}

func (ts *testServer) do(t *testing.T, req *http.Request, token string) (*httptest.ResponseRecorder, response) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	var body response
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	}
	return rr, body
}

func multipartRequest(t *testing.T, method, path string, fields map[string]string, image []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		part, err := mw.CreateFormFile("image", "photo.png")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	rr, _ := ts.do(t, httptest.NewRequest(http.MethodGet, "/Category?page=1", nil), "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	other, err := api.IssueToken(api.NewAuth("other-secret"), "x", api.RoleAdministrator, time.Hour)
	require.NoError(t, err)
	rr, _ = ts.do(t, httptest.NewRequest(http.MethodGet, "/Category?page=1", nil), other)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCategoryLifecycle(t *testing.T) {
	ts := newTestServer(t)

	rr, body := ts.do(t, multipartRequest(t, http.MethodPost, "/Category", map[string]string{
		"name":        "Art",
		"description": "Painting classes",
	}, pngHeader), ts.token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "ok", body.Status)

	var art ngocontent.Category
	require.NoError(t, json.Unmarshal(body.Value, &art))
	assert.Equal(t, "Art", art.Name)
	assert.True(t, strings.HasPrefix(art.Image, "https://memory.local/images/"), art.Image)
	assert.Equal(t, 1, ts.blobs.Len())

	rr, body = ts.do(t, jsonRequest(t, http.MethodPost, "/Category", map[string]any{"name": "Books"}), ts.token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var books ngocontent.Category
	require.NoError(t, json.Unmarshal(body.Value, &books))
	assert.Empty(t, books.Image)

	// duplicate names are rejected regardless of case
	rr, body = ts.do(t, jsonRequest(t, http.MethodPost, "/Category", map[string]any{"name": "art"}), ts.token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "validation_failed", body.Status)

	rr, body = ts.do(t, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/Category/%d", art.ID), nil), ts.token)
	assert.Equal(t, http.StatusOK, rr.Code)

	// drop the image but keep the record
	rr, body = ts.do(t, multipartRequest(t, http.MethodPut, fmt.Sprintf("/Category/%d", art.ID), map[string]string{
		"name":         "Art",
		"description":  "Painting and drawing",
		"remove_image": "true",
	}, nil), ts.token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var updated ngocontent.Category
	require.NoError(t, json.Unmarshal(body.Value, &updated))
	assert.Empty(t, updated.Image)
	assert.Equal(t, "Painting and drawing", updated.Description)
	assert.Equal(t, 0, ts.blobs.Len())

	rr, _ = ts.do(t, multipartRequest(t, http.MethodPut, fmt.Sprintf("/Category/%d", art.ID), map[string]string{
		"name":         "Art",
		"remove_image": "true",
	}, pngHeader), ts.token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 0, ts.blobs.Len())

	rr, _ = ts.do(t, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/Category/%d", books.ID), nil), ts.token)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr, body = ts.do(t, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/Category/%d", books.ID), nil), ts.token)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "not_found", body.Status)
}

func TestCategoryPaging(t *testing.T) {
	ts := newTestServer(t)
	for _, name := range []string{"Music", "Art", "Sports", "Books", "Dance"} {
		rr, _ := ts.do(t, jsonRequest(t, http.MethodPost, "/Category", map[string]any{"name": name}), ts.token)
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr, body := ts.do(t, httptest.NewRequest(http.MethodGet, "/Category?page=2", nil), ts.token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var page ngocontent.Page[string]
	require.NoError(t, json.Unmarshal(body.Value, &page))
	assert.Equal(t, []string{"Dance", "Music"}, page.Items)
	assert.Equal(t, 5, page.TotalItems)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, "/Category?page=1", page.PrevPage)
	assert.Equal(t, "/Category?page=3", page.NextPage)

	rr, _ = ts.do(t, httptest.NewRequest(http.MethodGet, "/Category?page=4", nil), ts.token)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr, _ = ts.do(t, httptest.NewRequest(http.MethodGet, "/Category?page=abc", nil), ts.token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestTestimonialCreateRequiresContent(t *testing.T) {
	ts := newTestServer(t)

	rr, body := ts.do(t, multipartRequest(t, http.MethodPost, "/Testimonials", map[string]string{"name": "Ana"}, nil), ts.token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, body.Messages, "content is required")
	assert.Equal(t, 0, ts.blobs.Len())

	rr, body = ts.do(t, multipartRequest(t, http.MethodPost, "/Testimonials", map[string]string{
		"name":    "Ana",
		"content": "The classes changed my summer.",
	}, pngHeader), ts.token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr, body = ts.do(t, httptest.NewRequest(http.MethodGet, "/Testimonials?page=1", nil), ts.token)
	require.Equal(t, http.StatusOK, rr.Code)
	var page ngocontent.Page[ngocontent.TestimonialSummary]
	require.NoError(t, json.Unmarshal(body.Value, &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Ana", page.Items[0].Name)
	assert.NotEmpty(t, page.Items[0].Image)
}

func TestMemberListing(t *testing.T) {
	ts := newTestServer(t)
	for _, name := range []string{"Carla", "Bruno", "Alice"} {
		rr, _ := ts.do(t, jsonRequest(t, http.MethodPost, "/Member", map[string]any{
			"name":         name,
			"linkedin_url": "https://www.linkedin.com/in/" + strings.ToLower(name),
		}), ts.token)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}

	tests := []struct {
		name       string
		path       string
		token      string
		wantStatus int
	}{
		{name: "editor without page", path: "/Member", token: ts.token, wantStatus: http.StatusUnauthorized},
		{name: "editor with page", path: "/Member?page=1", token: ts.token, wantStatus: http.StatusOK},
		{name: "administrator full listing", path: "/Member", token: ts.admin, wantStatus: http.StatusOK},
		{name: "page out of range", path: "/Member?page=3", token: ts.admin, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, body := ts.do(t, httptest.NewRequest(http.MethodGet, tt.path, nil), tt.token)
			assert.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, "unauthorized", body.Status)
			}
		})
	}

	_, body := ts.do(t, httptest.NewRequest(http.MethodGet, "/Member", nil), ts.admin)
	var members []ngocontent.Member
	require.NoError(t, json.Unmarshal(body.Value, &members))
	require.Len(t, members, 3)
	assert.Equal(t, "Alice", members[0].Name)
}

func TestMemberUpdate(t *testing.T) {
	ts := newTestServer(t)

	rr, body := ts.do(t, multipartRequest(t, http.MethodPost, "/Member", map[string]string{"name": "Dora"}, pngHeader), ts.token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var dora ngocontent.Member
	require.NoError(t, json.Unmarshal(body.Value, &dora))
	oldImage := dora.Image

	path := fmt.Sprintf("/Member/%d", dora.ID)
	rr, _ = ts.do(t, multipartRequest(t, http.MethodPut, path, map[string]string{
		"id":   fmt.Sprint(dora.ID + 1),
		"name": "Dora",
	}, nil), ts.token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, body = ts.do(t, multipartRequest(t, http.MethodPut, path, map[string]string{
		"id":   fmt.Sprint(dora.ID),
		"name": "Dora Lima",
	}, pngHeader), ts.token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var updated ngocontent.Member
	require.NoError(t, json.Unmarshal(body.Value, &updated))
	assert.Equal(t, "Dora Lima", updated.Name)
	assert.NotEqual(t, oldImage, updated.Image)
	assert.Equal(t, 1, ts.blobs.Len())

	rr, body = ts.do(t, jsonRequest(t, http.MethodPut, path, map[string]any{
		"id":   dora.ID,
		"name": "  Dora L.  ",
	}), ts.token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.NoError(t, json.Unmarshal(body.Value, &updated))
	assert.Equal(t, "Dora L.", updated.Name)

	rr, _ = ts.do(t, httptest.NewRequest(http.MethodPut, "/Member/zero", nil), ts.token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = ts.do(t, httptest.NewRequest(http.MethodDelete, path, nil), ts.token)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, ts.blobs.Len())
}
