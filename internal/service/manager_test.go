package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdworks/markpad/internal/compress"
	"github.com/mdworks/markpad/internal/tester"
)

func newTestManager(t *testing.T) *DocumentManager {
	t.Helper()
	s := tester.MemoryStore()
	t.Cleanup(func() { s.Close() })
	return NewDocumentManager(s, compress.NewOptimizer(compress.NewGZip()))
}

func TestCreate(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	id, err := m.Create(ctx, "  Notes  ", "# Notes\n\n")
	require.NoError(t, err)
	require.NotZero(t, id)

	doc, err := m.Get(ctx, id, true)
	require.NoError(t, err)
	assert.Equal(t, "Notes", doc.Title, "title must be trimmed")
	assert.Equal(t, "# Notes\n\n", doc.Content)
	assert.Equal(t, 9, doc.ContentLength)
}

func TestCreate_EmptyTitle(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Create(context.Background(), "   ", "content")
	assert.ErrorIs(t, err, ErrEmptyTitle)
}

func TestGet_NotFound(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Get(context.Background(), 404, true)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = m.Get(context.Background(), 404, false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGet_MetadataDoesNotLoadContent(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	id, err := m.Create(ctx, "meta only", "some content here")
	require.NoError(t, err)

	doc, err := m.Get(ctx, id, false)
	require.NoError(t, err)
	assert.False(t, doc.ContentLoaded)
	assert.Equal(t, "", doc.Content)
	assert.Equal(t, len("some content here"), doc.ContentLength)

	stats := m.CacheStats()
	assert.Equal(t, 0, stats.DocumentCacheSize)
	assert.Equal(t, 1, stats.MetadataCacheSize)
}

func TestGet_CachesFullDocument(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	id, err := m.Create(ctx, "cached", "body")
	require.NoError(t, err)

	first, err := m.Get(ctx, id, true)
	require.NoError(t, err)
	second, err := m.Get(ctx, id, true)
	require.NoError(t, err)

	assert.Same(t, first, second, "second read must come from the cache")
	assert.Equal(t, 1, m.CacheStats().DocumentCacheSize)
}

func TestLoadContent(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	id, err := m.Create(ctx, "load me", "the content")
	require.NoError(t, err)

	content, err := m.LoadContent(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "the content", content)

	// Content-only and full variants occupy distinct cache slots.
	_, err = m.Get(ctx, id, true)
	require.NoError(t, err)
	assert.Equal(t, 2, m.CacheStats().DocumentCacheSize)

	_, err = m.LoadContent(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate_InvalidatesCaches(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	id, err := m.Create(ctx, "stale test", "old content")
	require.NoError(t, err)

	// Warm every variant.
	_, err = m.Get(ctx, id, true)
	require.NoError(t, err)
	_, err = m.Get(ctx, id, false)
	require.NoError(t, err)
	_, err = m.LoadContent(ctx, id)
	require.NoError(t, err)

	content := "new content"
	require.NoError(t, m.Update(ctx, id, nil, &content))

	doc, err := m.Get(ctx, id, true)
	require.NoError(t, err)
	assert.Equal(t, "new content", doc.Content, "a stale read after update must be impossible")

	got, err := m.LoadContent(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "new content", got)
}

func TestUpdate_Validation(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	id, err := m.Create(ctx, "valid", "content")
	require.NoError(t, err)

	err = m.Update(ctx, id, nil, nil)
	assert.ErrorIs(t, err, ErrNoFieldsToUpdate)

	empty := "  "
	err = m.Update(ctx, id, &empty, nil)
	assert.ErrorIs(t, err, ErrEmptyTitle)

	title := "ghost"
	err = m.Update(ctx, 404, &title, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	id, err := m.Create(ctx, "doomed", "content")
	require.NoError(t, err)
	_, err = m.Get(ctx, id, true)
	require.NoError(t, err)

	require.NoError(t, m.Delete(ctx, id))

	_, err = m.Get(ctx, id, true)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, m.CacheStats().DocumentCacheSize)

	assert.ErrorIs(t, m.Delete(ctx, id), ErrNotFound)
}

func TestList_WarmsMetadataCache(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := m.Create(ctx, fmt.Sprintf("doc %d", i), "content")
		require.NoError(t, err)
	}

	docs, err := m.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, docs, 3)
	assert.Equal(t, 3, m.CacheStats().MetadataCacheSize)
}

func TestList_DefersLargeContent(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	large := strings.Repeat("x", LargeDocumentThreshold+1)
	_, err := m.Create(ctx, "big", large)
	require.NoError(t, err)
	_, err = m.Create(ctx, "small", "tiny")
	require.NoError(t, err)

	docs, err := m.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	for _, doc := range docs {
		switch doc.Title {
		case "big":
			assert.False(t, doc.ContentLoaded)
			assert.Equal(t, "", doc.Content)
			assert.Equal(t, LargeDocumentThreshold+1, doc.ContentLength)
		case "small":
			assert.True(t, doc.ContentLoaded)
			assert.Equal(t, "tiny", doc.Content)
		}
	}
}

func TestIsLarge(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	smallID, err := m.Create(ctx, "small", "content")
	require.NoError(t, err)
	largeID, err := m.Create(ctx, "large", strings.Repeat("x", LargeDocumentThreshold+1))
	require.NoError(t, err)

	large, err := m.IsLarge(ctx, smallID)
	require.NoError(t, err)
	assert.False(t, large)

	large, err = m.IsLarge(ctx, largeID)
	require.NoError(t, err)
	assert.True(t, large)

	_, err = m.IsLarge(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreImage_Validation(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	id, err := m.Create(ctx, "host", "")
	require.NoError(t, err)

	_, err = m.StoreImage(ctx, id, "  ", []byte{1})
	assert.ErrorIs(t, err, ErrEmptyFilename)

	_, err = m.StoreImage(ctx, id, "pic.png", nil)
	assert.ErrorIs(t, err, ErrEmptyImageData)
}

func TestGetImage_RoundTrip(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	docID, err := m.Create(ctx, "host", "")
	require.NoError(t, err)

	data := append([]byte("\x89PNG"), []byte("small image payload")...)
	imgID, err := m.StoreImage(ctx, docID, "pic.png", data)
	require.NoError(t, err)

	rec, err := m.GetImage(ctx, imgID)
	require.NoError(t, err)
	assert.Equal(t, "pic.png", rec.Filename)
	// Small payloads skip the optimizer; cached data is display-ready either
	// way after Decompress.
	assert.Equal(t, data, m.Decompress(rec.Data))

	assert.Equal(t, 1, m.CacheStats().ImageCacheSize)

	_, err = m.GetImage(ctx, 404)
	assert.ErrorIs(t, err, ErrImageNotFound)
}

func TestDelete_LeavesImageCacheEntries(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	docID, err := m.Create(ctx, "host", "")
	require.NoError(t, err)
	imgID, err := m.StoreImage(ctx, docID, "pic.png", []byte("\x89PNGdata"))
	require.NoError(t, err)
	_, err = m.GetImage(ctx, imgID)
	require.NoError(t, err)

	require.NoError(t, m.Delete(ctx, docID))

	// Image payloads age out via LRU rather than being invalidated on delete.
	assert.Equal(t, 1, m.CacheStats().ImageCacheSize)
}

func TestSearch(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	_, err := m.Create(ctx, "findable", "alpha\nbeta target gamma\ndelta")
	require.NoError(t, err)

	matches, err := m.Search(ctx, "target", false)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 2, matches[0].LineNumber)
}

func TestDocumentCacheStaysBounded(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	for i := 0; i < documentCacheMax+5; i++ {
		id, err := m.Create(ctx, fmt.Sprintf("doc %d", i), "content")
		require.NoError(t, err)
		_, err = m.Get(ctx, id, true)
		require.NoError(t, err)
	}

	stats := m.CacheStats()
	assert.LessOrEqual(t, stats.DocumentCacheSize, documentCacheMax)
}

func TestConcurrentReadsAndInvalidations(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	id, err := m.Create(ctx, "shared", "v0")
	require.NoError(t, err)
	imgID, err := m.StoreImage(ctx, id, "pic.png", []byte("\x89PNGdata"))
	require.NoError(t, err)

	// Updates invalidate cache entries while readers traverse them; both
	// directions must be safe from independent goroutines.
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			content := fmt.Sprintf("v%d", i)
			assert.NoError(t, m.Update(ctx, id, nil, &content))
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if _, err := m.Get(ctx, id, true); err != nil {
				assert.NoError(t, err)
				return
			}
			if _, err := m.GetImage(ctx, imgID); err != nil {
				assert.NoError(t, err)
				return
			}
			m.CacheStats()
			if i%50 == 0 {
				m.Optimize()
			}
		}
	}()

	wg.Wait()

	content, err := m.LoadContent(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "v199", content)
}

func TestOptimizeAndClear(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	for i := 0; i < 90; i++ {
		id, err := m.Create(ctx, fmt.Sprintf("doc %d", i), "content")
		require.NoError(t, err)
		_, err = m.Get(ctx, id, true)
		require.NoError(t, err)
	}
	require.Greater(t, m.CacheStats().DocumentCacheSize, 80)

	m.Optimize()
	assert.Less(t, m.CacheStats().DocumentCacheSize, 90, "optimize must trim a cache past 80% fill")

	m.ClearCaches()
	stats := m.CacheStats()
	assert.Equal(t, 0, stats.DocumentCacheSize)
	assert.Equal(t, 0, stats.MetadataCacheSize)
	assert.Equal(t, 0, stats.ImageCacheSize)
}
