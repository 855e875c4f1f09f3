package s3

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 answers the handful of path-style calls the backend makes.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]bool
	deletes int
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, _ = io.Copy(io.Discard, r.Body)
	key := strings.TrimPrefix(r.URL.Path, "/")

	switch r.Method {
	case http.MethodPut:
		f.objects[key] = true
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodHead:
		if !f.objects[key] {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Length", "0")
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		f.deletes++
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newFakeBackend(t *testing.T) (*Backend, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: map[string]bool{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	backend, err := New(context.Background(), Config{
		Bucket:          "ngo-images",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		Endpoint:        srv.URL,
		UsePathStyle:    true,
		PublicBaseURL:   "https://cdn.ngo.example.org",
	})
	require.NoError(t, err)
	return backend, fake
}

func TestS3Backend_Configuration(t *testing.T) {
	t.Run("EmptyBucket", func(t *testing.T) {
		_, err := New(context.Background(), Config{Region: "us-east-1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket name is required")
	})

	t.Run("DerivedPublicURL", func(t *testing.T) {
		assert.Equal(t, "https://ngo.s3.eu-west-1.amazonaws.com",
			publicBaseURL(Config{Bucket: "ngo", Region: "eu-west-1"}))
		assert.Equal(t, "http://localhost:9000/ngo",
			publicBaseURL(Config{Bucket: "ngo", Endpoint: "http://localhost:9000/"}))
		assert.Equal(t, "https://cdn.example.org",
			publicBaseURL(Config{Bucket: "ngo", PublicBaseURL: "https://cdn.example.org"}))
	})
}

func TestS3Backend_SaveAndDelete(t *testing.T) {
	backend, fake := newFakeBackend(t)
	ctx := context.Background()

	loc, err := backend.Save(ctx, "abc_logo.png", strings.NewReader("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.ngo.example.org/abc_logo.png", loc)
	assert.True(t, fake.objects["ngo-images/abc_logo.png"])

	deleted, err := backend.Delete(ctx, loc)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, 1, fake.deletes)

	deleted, err = backend.Delete(ctx, loc)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, 1, fake.deletes)
}

func TestS3Backend_ForeignLocator(t *testing.T) {
	backend, fake := newFakeBackend(t)

	_, err := backend.Delete(context.Background(), "https://elsewhere.example.org/abc_logo.png")
	assert.Error(t, err)
	assert.Zero(t, fake.deletes)
}

// TestS3Backend_Integration requires a running MinIO instance or S3 credentials
func TestS3Backend_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	endpoint := os.Getenv("AWS_S3_ENDPOINT")
	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")
	bucket := os.Getenv("AWS_S3_BUCKET")
	if endpoint == "" || accessKey == "" || secretKey == "" || bucket == "" {
		t.Skip("Skipping integration test: S3/MinIO environment variables not set")
	}

	ctx := context.Background()
	backend, err := New(ctx, Config{
		Bucket:                 bucket,
		AccessKeyID:            accessKey,
		SecretAccessKey:        secretKey,
		Endpoint:               endpoint,
		UsePathStyle:           true,
		CreateBucketIfNotExist: true,
	})
	require.NoError(t, err)

	loc, err := backend.Save(ctx, "integration_test.txt", strings.NewReader("hello"), "text/plain")
	require.NoError(t, err)

	deleted, err := backend.Delete(ctx, loc)
	require.NoError(t, err)
	assert.True(t, deleted)
}
