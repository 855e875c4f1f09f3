package memory

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/ngo-content/pkg/ngocontent"
	"github.com/tendant/ngo-content/pkg/ngocontent/storage"
)

func TestMemoryBackend_SaveAndDelete(t *testing.T) {
	b, err := New("")
	require.NoError(t, err)
	ctx := context.Background()

	loc, err := b.Save(ctx, "abc_logo.png", strings.NewReader("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://memory.local/images/abc_logo.png", loc)
	assert.Equal(t, 1, b.Len())

	rc, contentType, err := b.Open(ctx, loc)
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	assert.Equal(t, "png-bytes", string(data))
	assert.Equal(t, "image/png", contentType)

	deleted, err := b.Delete(ctx, loc)
	require.NoError(t, err)
	assert.True(t, deleted)

	// second delete is a no-op
	deleted, err = b.Delete(ctx, loc)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, _, err = b.Open(ctx, loc)
	assert.ErrorIs(t, err, ngocontent.ErrNotFound)
}

func TestMemoryBackend_DottedName(t *testing.T) {
	b, err := New("")
	require.NoError(t, err)
	ctx := context.Background()

	loc, err := b.Save(ctx, "abc_logo..v2.png", strings.NewReader("png-bytes"), "image/png")
	require.NoError(t, err)

	deleted, err := b.Delete(ctx, loc)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, 0, b.Len())
}

func TestMemoryBackend_ForeignLocator(t *testing.T) {
	b, err := New("https://img.example.org")
	require.NoError(t, err)

	_, err = b.Delete(context.Background(), "https://memory.local/images/abc.png")
	assert.ErrorIs(t, err, storage.ErrForeignLocator)
}

func TestMemoryBackend_Validation(t *testing.T) {
	b, err := New("")
	require.NoError(t, err)

	_, err = b.Save(context.Background(), "", strings.NewReader("x"), "")
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = b.Save(ctx, "k", strings.NewReader("x"), "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, b.Len())
}

func TestMemoryBackend_ConcurrentSaves(t *testing.T) {
	b, err := New("")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := b.Save(context.Background(), strings.Repeat("k", i+1), strings.NewReader("data"), "image/jpeg")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 20, b.Len())
}
