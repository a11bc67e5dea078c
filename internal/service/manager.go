package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/mdworks/markpad/internal/cache"
	"github.com/mdworks/markpad/internal/compress"
	"github.com/mdworks/markpad/internal/model"
	"github.com/mdworks/markpad/internal/store"
)

const (
	// LargeDocumentThreshold is the content length, in bytes, above which a
	// document is treated as large: deferred in listings, flagged on load.
	LargeDocumentThreshold = 50000

	documentCacheMax = 100
	metadataCacheMax = 200
	imageCacheMax    = 50

	// optimizeFill is the fill fraction past which Optimize trims a cache.
	optimizeFill = 0.8
)

// docVariant distinguishes what a document cache entry holds. Using an
// explicit composite key instead of formatted strings keeps id 12 with
// content and id 121 without from ever colliding.
type docVariant int

const (
	variantFull docVariant = iota
	variantContentOnly
)

type docKey struct {
	ID      uint
	Variant docVariant
}

// ImageRecord is a cached image payload. Data may be in the optimizer's
// compressed form; use ImageHandler.ImageData for display-ready bytes.
type ImageRecord struct {
	Filename string
	Data     []byte
}

// CacheStats reports cache sizes and configured maxima for observability.
type CacheStats struct {
	DocumentCacheSize int
	DocumentCacheMax  int
	MetadataCacheSize int
	MetadataCacheMax  int
	ImageCacheSize    int
	ImageCacheMax     int
}

// DocumentManager serves document reads through layered caches and keeps
// those caches coherent with writes. Callers arrive from independent
// goroutines: the editor flow, the auto-save timer, the preview pipeline and
// the maintenance jobs, so every cache touch goes through mu.
type DocumentManager struct {
	store     store.Store
	optimizer *compress.Optimizer

	mu        sync.Mutex
	documents *cache.Cache[docKey, *model.Document]
	metadata  *cache.Cache[uint, *model.Document]
	images    *cache.Cache[uint, *ImageRecord]
}

func NewDocumentManager(s store.Store, optimizer *compress.Optimizer) *DocumentManager {
	return &DocumentManager{
		store:     s,
		optimizer: optimizer,
		documents: cache.New[docKey, *model.Document](documentCacheMax),
		metadata:  cache.New[uint, *model.Document](metadataCacheMax),
		images:    cache.New[uint, *ImageRecord](imageCacheMax),
	}
}

// Create persists a new document and returns its id. The caches are not
// populated; the next read will do that.
func (m *DocumentManager) Create(ctx context.Context, title, content string) (uint, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return 0, ErrEmptyTitle
	}

	doc := &model.Document{Title: title, Content: content}
	if err := m.store.CreateDocument(ctx, doc); err != nil {
		return 0, fmt.Errorf("create document %q: %w", title, err)
	}

	logrus.Infof("created document %q with id %d", title, doc.ID)
	return doc.ID, nil
}

// Get retrieves a document. With loadContent the full row is returned (large
// documents are logged but still fully materialized); without it only a
// metadata projection is read and cached separately.
func (m *DocumentManager) Get(ctx context.Context, id uint, loadContent bool) (*model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if loadContent {
		key := docKey{ID: id, Variant: variantFull}
		if doc, ok := m.documents.Get(key); ok {
			return doc, nil
		}

		doc, err := m.store.GetDocument(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get document %d: %w", id, err)
		}
		if doc == nil {
			return nil, ErrNotFound
		}

		if doc.ContentLength > LargeDocumentThreshold {
			logrus.Infof("loading large document %d (%d bytes)", id, doc.ContentLength)
		}

		m.documents.Put(key, doc)
		return doc, nil
	}

	if doc, ok := m.metadata.Get(id); ok {
		return doc, nil
	}

	doc, err := m.store.GetDocumentMeta(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get document meta %d: %w", id, err)
	}
	if doc == nil {
		return nil, ErrNotFound
	}

	m.metadata.Put(id, doc)
	return doc, nil
}

// LoadContent returns a document's content, using a content-only cache
// variant. Very large documents get an advisory log before the load; content
// is always fully materialized.
func (m *DocumentManager) LoadContent(ctx context.Context, id uint) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := docKey{ID: id, Variant: variantContentOnly}
	if doc, ok := m.documents.Get(key); ok {
		return doc.Content, nil
	}

	length, found, err := m.store.ContentLength(ctx, id)
	if err != nil {
		return "", fmt.Errorf("content length %d: %w", id, err)
	}
	if !found {
		return "", ErrNotFound
	}
	if length > LargeDocumentThreshold*2 {
		logrus.Infof("streaming large document %d (%d bytes)", id, length)
	}

	doc, err := m.store.GetDocument(ctx, id)
	if err != nil {
		return "", fmt.Errorf("load content %d: %w", id, err)
	}
	if doc == nil {
		return "", ErrNotFound
	}

	m.documents.Put(key, doc)
	return doc.Content, nil
}

// List returns all documents ordered by updated_at descending. With
// loadContent, documents past the large threshold come back deferred:
// ContentLoaded false, Content empty. Callers must check the flag, not the
// string; empty content is valid.
func (m *DocumentManager) List(ctx context.Context, loadContent bool) ([]*model.Document, error) {
	docs, err := m.store.ListDocuments(ctx, loadContent, LargeDocumentThreshold)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	if !loadContent {
		// Sidebar-style listings warm the metadata cache.
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, doc := range docs {
			if cached, ok := m.metadata.Get(doc.ID); ok {
				docs[i] = cached
				continue
			}
			m.metadata.Put(doc.ID, doc)
		}
	}

	return docs, nil
}

// Update changes title and/or content and invalidates every cache variant
// for the id so a stale read afterwards is impossible.
func (m *DocumentManager) Update(ctx context.Context, id uint, title, content *string) error {
	if title == nil && content == nil {
		return ErrNoFieldsToUpdate
	}
	if title != nil && strings.TrimSpace(*title) == "" {
		return ErrEmptyTitle
	}

	err := m.store.UpdateDocument(ctx, id, title, content)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update document %d: %w", id, err)
	}

	m.mu.Lock()
	m.invalidateDocument(id)
	m.mu.Unlock()
	logrus.Infof("updated document %d", id)
	return nil
}

// Delete removes the document and cascades its image rows.
//
// Known gap: cached image payloads for the deleted document are left to age
// out via LRU instead of being invalidated here. Keeping them makes an
// undo-style redisplay possible; they are content-addressed by image id and
// harmless once unreferenced.
func (m *DocumentManager) Delete(ctx context.Context, id uint) error {
	err := m.store.DeleteDocument(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete document %d: %w", id, err)
	}

	m.mu.Lock()
	m.invalidateDocument(id)
	m.mu.Unlock()
	logrus.Infof("deleted document %d", id)
	return nil
}

// IsLarge reports whether the document's content length exceeds the large
// threshold. Content is never loaded.
func (m *DocumentManager) IsLarge(ctx context.Context, id uint) (bool, error) {
	length, found, err := m.store.ContentLength(ctx, id)
	if err != nil {
		return false, fmt.Errorf("content length %d: %w", id, err)
	}
	if !found {
		return false, ErrNotFound
	}
	return length > LargeDocumentThreshold, nil
}

// StoreImage validates and persists an image owned by a document.
func (m *DocumentManager) StoreImage(ctx context.Context, docID uint, filename string, data []byte) (uint, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return 0, ErrEmptyFilename
	}
	if len(data) == 0 {
		return 0, ErrEmptyImageData
	}

	img := &model.Image{DocumentID: docID, Filename: filename, Data: data}
	if err := m.store.StoreImage(ctx, img); err != nil {
		return 0, fmt.Errorf("store image %q: %w", filename, err)
	}

	logrus.Infof("stored image %q with id %d", filename, img.ID)
	return img.ID, nil
}

// GetImage returns an image record, optimizing large payloads on first load.
// The cached Data may carry a compression marker; ImageHandler.ImageData
// undoes it.
func (m *DocumentManager) GetImage(ctx context.Context, id uint) (*ImageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec, ok := m.images.Get(id); ok {
		return rec, nil
	}

	img, err := m.store.GetImage(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get image %d: %w", id, err)
	}
	if img == nil {
		return nil, ErrImageNotFound
	}

	rec := &ImageRecord{Filename: img.Filename, Data: m.optimizer.Optimize(img.Data)}
	m.images.Put(id, rec)
	return rec, nil
}

// Decompress undoes the optimizer's transparent compression.
func (m *DocumentManager) Decompress(data []byte) []byte {
	return m.optimizer.Decompress(data)
}

func (m *DocumentManager) Search(ctx context.Context, query string, caseSensitive bool) ([]*store.SearchMatch, error) {
	return m.store.Search(ctx, query, caseSensitive)
}

func (m *DocumentManager) CacheStats() CacheStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	return CacheStats{
		DocumentCacheSize: m.documents.Len(),
		DocumentCacheMax:  m.documents.MaxSize(),
		MetadataCacheSize: m.metadata.Len(),
		MetadataCacheMax:  m.metadata.MaxSize(),
		ImageCacheSize:    m.images.Len(),
		ImageCacheMax:     m.images.MaxSize(),
	}
}

// ClearCaches drops every cache and its access records.
func (m *DocumentManager) ClearCaches() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.documents.Clear()
	m.metadata.Clear()
	m.images.Clear()
	logrus.Info("cleared all document caches")
}

// Optimize proactively trims any cache past 80% fill and prunes orphaned
// access-time records. Run from the periodic maintenance job.
func (m *DocumentManager) Optimize() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.documents.OverThreshold(optimizeFill) {
		m.documents.EvictLRU()
	}
	if m.metadata.OverThreshold(optimizeFill) {
		m.metadata.EvictLRU()
	}
	if m.images.OverThreshold(optimizeFill) {
		m.images.EvictLRU()
	}

	pruned := m.documents.PruneOrphans() + m.metadata.PruneOrphans() + m.images.PruneOrphans()
	if pruned > 0 {
		logrus.Infof("pruned %d orphaned cache access records", pruned)
	}
}

// invalidateDocument drops every cache variant for id. Callers hold m.mu.
func (m *DocumentManager) invalidateDocument(id uint) {
	m.documents.DeleteFunc(func(k docKey) bool { return k.ID == id })
	m.metadata.Delete(id)
}
