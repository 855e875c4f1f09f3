package ngocontent_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/ngo-content/pkg/ngocontent"
)

func newCoordinator(t *testing.T, blobs ngocontent.BlobStore, opts ...ngocontent.CoordinatorOption) *ngocontent.AttachmentCoordinator {
	t.Helper()
	c, err := ngocontent.NewAttachmentCoordinator(blobs, opts...)
	require.NoError(t, err)
	return c
}

func TestCoordinator_CreateWithoutAsset(t *testing.T) {
	blobs := newRecordingBlobs()
	c := newCoordinator(t, blobs)

	var persisted *string
	out, err := c.Create(context.Background(), nil, func(ctx context.Context, locator string) error {
		persisted = &locator
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, ngocontent.StateRecordPersisted, out.State)
	require.NotNil(t, persisted)
	assert.Empty(t, *persisted)
	assert.Empty(t, blobs.log())
}

func TestCoordinator_CreateWritesBlobFirst(t *testing.T) {
	blobs := newRecordingBlobs()
	c := newCoordinator(t, blobs)

	out, err := c.Create(context.Background(), png("team photo.png"), func(ctx context.Context, locator string) error {
		assert.True(t, blobs.has(locator), "blob must exist before the record step")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, ngocontent.StateRecordPersisted, out.State)
	assert.True(t, strings.HasPrefix(out.Locator, "https://cdn.example.org/"))
	assert.True(t, strings.HasSuffix(out.Locator, "_team_photo.png"), out.Locator)
	assert.Equal(t, "save", blobs.log())
}

func TestCoordinator_CreateCompensatesFailedRecord(t *testing.T) {
	blobs := newRecordingBlobs()
	c := newCoordinator(t, blobs)

	out, err := c.Create(context.Background(), png("a.png"), func(ctx context.Context, locator string) error {
		return ngocontent.ErrRecordWrite
	})
	require.ErrorIs(t, err, ngocontent.ErrRecordWrite)
	assert.Equal(t, ngocontent.StateFailed, out.State)
	assert.Equal(t, "save,delete", blobs.log())
	assert.Equal(t, 0, blobs.len())
}

func TestCoordinator_CreateBlobFailureSkipsRecord(t *testing.T) {
	blobs := newRecordingBlobs()
	blobs.failSave = true
	c := newCoordinator(t, blobs)

	called := false
	_, err := c.Create(context.Background(), png("a.png"), func(ctx context.Context, locator string) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, ngocontent.ErrBlobWrite)
	assert.False(t, called)
	assert.Equal(t, ngocontent.StatusBlobWriteFailed, ngocontent.StatusOf(err))

	var storageErr *ngocontent.StorageError
	assert.True(t, errors.As(err, &storageErr))
}

func TestCoordinator_InsecureLocatorIsCompensated(t *testing.T) {
	blobs := newRecordingBlobs()
	blobs.baseURL = "http://cdn.example.org/"
	c := newCoordinator(t, blobs)

	called := false
	_, err := c.Create(context.Background(), png("a.png"), func(ctx context.Context, locator string) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, ngocontent.StatusBlobWriteFailed, ngocontent.StatusOf(err))
	assert.True(t, errors.Is(err, ngocontent.ErrInsecureLocator))
	assert.False(t, called)
	assert.Equal(t, "save,delete", blobs.log())
	assert.Equal(t, 0, blobs.len())

	permissive := newCoordinator(t, blobs, ngocontent.WithLocatorPolicy(ngocontent.AllowAnyLocator))
	out, err := permissive.Create(context.Background(), png("a.png"), func(ctx context.Context, locator string) error { return nil })
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.Locator, "http://"))
}

func TestCoordinator_Replace(t *testing.T) {
	ctx := context.Background()
	blobs := newRecordingBlobs()
	c := newCoordinator(t, blobs)

	first, err := c.Create(ctx, png("old.png"), func(ctx context.Context, locator string) error { return nil })
	require.NoError(t, err)
	blobs.reset()

	t.Run("record failure keeps previous image", func(t *testing.T) {
		out, err := c.Replace(ctx, first.Locator, png("new.png"), func(ctx context.Context, locator string) error {
			return ngocontent.ErrRecordWrite
		})
		require.Error(t, err)
		assert.Equal(t, ngocontent.StateFailed, out.State)
		assert.True(t, blobs.has(first.Locator))
		assert.Equal(t, 1, blobs.len())
		blobs.reset()
	})

	t.Run("nil asset keeps reference", func(t *testing.T) {
		var persisted string
		_, err := c.Replace(ctx, first.Locator, nil, func(ctx context.Context, locator string) error {
			persisted = locator
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, first.Locator, persisted)
		assert.Empty(t, blobs.log())
	})

	t.Run("success releases previous image", func(t *testing.T) {
		var order []string
		out, err := c.Replace(ctx, first.Locator, png("new.png"), func(ctx context.Context, locator string) error {
			order = append(order, "persist")
			assert.True(t, blobs.has(first.Locator), "old blob must survive until the record is persisted")
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"persist"}, order)
		assert.Equal(t, "save,delete", blobs.log())
		assert.False(t, blobs.has(first.Locator))
		assert.True(t, blobs.has(out.Locator))
		assert.Empty(t, out.Warnings)
	})
}

func TestCoordinator_DeleteOrdersRecordFirst(t *testing.T) {
	ctx := context.Background()
	blobs := newRecordingBlobs()
	c := newCoordinator(t, blobs)

	created, err := c.Create(ctx, png("a.png"), func(ctx context.Context, locator string) error { return nil })
	require.NoError(t, err)

	t.Run("record failure leaves blob", func(t *testing.T) {
		_, err := c.Delete(ctx, created.Locator, func(ctx context.Context) error { return ngocontent.ErrRecordWrite })
		require.Error(t, err)
		assert.True(t, blobs.has(created.Locator))
	})

	t.Run("blob failure is a warning", func(t *testing.T) {
		blobs.failDelete = true
		defer func() { blobs.failDelete = false }()

		out, err := c.Delete(ctx, created.Locator, func(ctx context.Context) error { return nil })
		require.NoError(t, err)
		assert.Equal(t, ngocontent.StateRecordPersisted, out.State)
		require.Len(t, out.Warnings, 1)
		assert.Contains(t, out.Warnings[0], created.Locator)
	})

	t.Run("success", func(t *testing.T) {
		out, err := c.Delete(ctx, created.Locator, func(ctx context.Context) error {
			assert.True(t, blobs.has(created.Locator))
			return nil
		})
		require.NoError(t, err)
		assert.Empty(t, out.Warnings)
		assert.False(t, blobs.has(created.Locator))
	})

	t.Run("no image", func(t *testing.T) {
		blobs.reset()
		_, err := c.Delete(ctx, "", func(ctx context.Context) error { return nil })
		require.NoError(t, err)
		assert.Empty(t, blobs.log())
	})
}

func TestCoordinator_Remove(t *testing.T) {
	ctx := context.Background()
	blobs := newRecordingBlobs()
	c := newCoordinator(t, blobs)

	created, err := c.Create(ctx, png("a.png"), func(ctx context.Context, locator string) error { return nil })
	require.NoError(t, err)

	persisted := "unset"
	_, err = c.Remove(ctx, created.Locator, func(ctx context.Context, locator string) error {
		persisted = locator
		return nil
	})
	require.NoError(t, err)
	assert.Empty(t, persisted)
	assert.Equal(t, 0, blobs.len())
}

func TestAttachmentState_String(t *testing.T) {
	assert.Equal(t, "blob_staged", ngocontent.StateBlobStaged.String())
	assert.Equal(t, "compensating_delete", ngocontent.StateCompensatingDelete.String())
	assert.Equal(t, "state(9)", ngocontent.AttachmentState(9).String())
}

func TestNewAttachmentCoordinator_RequiresBlobStore(t *testing.T) {
	_, err := ngocontent.NewAttachmentCoordinator(nil)
	assert.Error(t, err)
}

type namedBlobs struct {
	*recordingBlobs
}

func (namedBlobs) Name() string { return "recording" }

func TestCoordinator_StorageErrorNamesBackend(t *testing.T) {
	tests := []struct {
		name    string
		store   func(*recordingBlobs) ngocontent.BlobStore
		backend string
		message string
	}{
		{
			name:    "named backend",
			store:   func(b *recordingBlobs) ngocontent.BlobStore { return namedBlobs{b} },
			backend: "recording",
			message: "on backend recording:",
		},
		{
			name:    "unnamed backend",
			store:   func(b *recordingBlobs) ngocontent.BlobStore { return b },
			backend: "",
			message: "storage operation save failed for ",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blobs := newRecordingBlobs()
			blobs.failSave = true
			c := newCoordinator(t, tt.store(blobs))

			_, err := c.Create(context.Background(), png("a.png"), func(ctx context.Context, locator string) error {
				return nil
			})
			var storageErr *ngocontent.StorageError
			require.True(t, errors.As(err, &storageErr))
			assert.Equal(t, tt.backend, storageErr.Backend)
			assert.Contains(t, err.Error(), tt.message)
			assert.NotContains(t, err.Error(), "on backend :")
		})
	}
}
