// Package app wires the editor session: settings, document manager, render
// pipeline, preview and maintenance jobs. The GUI toolkit binds to Session
// methods; everything here is toolkit-agnostic.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mdworks/markpad/internal/compress"
	"github.com/mdworks/markpad/internal/config"
	"github.com/mdworks/markpad/internal/jobs"
	"github.com/mdworks/markpad/internal/preview"
	"github.com/mdworks/markpad/internal/render"
	"github.com/mdworks/markpad/internal/service"
	"github.com/mdworks/markpad/internal/settings"
	"github.com/mdworks/markpad/internal/store"
	"github.com/mdworks/markpad/internal/theme"
)

// autoSaveDelay is how long after the last edit the document is persisted.
const autoSaveDelay = 2 * time.Second

// Session is one running editor instance over one document store.
type Session struct {
	store    *store.GormStore
	settings *settings.Manager
	manager  *service.DocumentManager
	images   *service.ImageHandler
	renderer *render.Renderer
	preview  *preview.Preview
	runner   *jobs.Runner

	mu            sync.Mutex
	currentDocID  uint
	pendingText   string
	dirty         bool
	autoSaveTimer *time.Timer
}

// NewSession wires a session onto the given preview surface.
func NewSession(cfg config.Config, surface preview.Surface) (*Session, error) {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	codec, err := compress.NewCodec(cfg.ImageCodec)
	if err != nil {
		return nil, err
	}

	sm := settings.NewManager(cfg.SettingsPath)

	previewTheme := sm.PreviewTheme()
	if !theme.Known(previewTheme) {
		previewTheme = theme.Default
	}

	manager := service.NewDocumentManager(st, compress.NewOptimizer(codec))
	images := service.NewImageHandler(manager)
	renderer := render.NewRenderer(previewTheme)

	s := &Session{
		store:    st,
		settings: sm,
		manager:  manager,
		images:   images,
		renderer: renderer,
		preview:  preview.New(surface, renderer, images),
	}

	s.runner = jobs.NewRunner(
		jobs.NewCacheOptimizeTask("@every 5m", manager, renderer),
		jobs.NewCacheStatsTask("@every 30m", manager, renderer),
	)

	return s, nil
}

// Start restores the last session document and begins processing.
func (s *Session) Start(ctx context.Context) error {
	go s.preview.Run(ctx)
	s.runner.Start()

	lastID := s.settings.LastDocumentID()
	if lastID != 0 {
		if err := s.OpenDocument(ctx, lastID); err == nil {
			return nil
		}
		// The last document may have been deleted since.
		logrus.Warnf("last document %d unavailable, starting fresh", lastID)
	}

	id, err := s.manager.Create(ctx, "Welcome", "# Welcome\n\nStart typing to see the live preview.\n")
	if err != nil {
		return err
	}
	return s.OpenDocument(ctx, id)
}

// OpenDocument loads a document into the editor and preview.
func (s *Session) OpenDocument(ctx context.Context, id uint) error {
	doc, err := s.manager.Get(ctx, id, true)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.flushLocked(ctx)
	s.currentDocID = doc.ID
	s.pendingText = doc.Content
	s.mu.Unlock()

	s.images.SetCurrentDocument(doc.ID)
	s.settings.SetLastDocumentID(doc.ID)
	s.settings.AddRecentDocument(doc.ID, doc.Title)
	s.preview.Update(doc.Content)
	return nil
}

// EditorChanged receives every text change: the preview re-renders through
// the debounced queue and an auto-save is (re)armed.
func (s *Session) EditorChanged(text string) {
	s.mu.Lock()
	s.pendingText = text
	s.dirty = true
	if s.autoSaveTimer == nil {
		s.autoSaveTimer = time.AfterFunc(autoSaveDelay, s.autoSave)
	} else {
		s.autoSaveTimer.Reset(autoSaveDelay)
	}
	s.mu.Unlock()

	s.preview.Update(text)
}

func (s *Session) autoSave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushLocked(context.Background())
}

// flushLocked persists pending edits. Callers hold s.mu.
func (s *Session) flushLocked(ctx context.Context) {
	if !s.dirty || s.currentDocID == 0 {
		return
	}
	content := s.pendingText
	if err := s.manager.Update(ctx, s.currentDocID, nil, &content); err != nil {
		logrus.Errorf("auto-save of document %d failed: %v", s.currentDocID, err)
		return
	}
	s.dirty = false
}

// Save persists pending edits immediately.
func (s *Session) Save(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushLocked(ctx)
}

// CreateDocument creates and opens a new document.
func (s *Session) CreateDocument(ctx context.Context, title string) (uint, error) {
	id, err := s.manager.Create(ctx, title, "")
	if err != nil {
		return 0, err
	}
	return id, s.OpenDocument(ctx, id)
}

// RenameDocument retitles a document and refreshes the recents list.
func (s *Session) RenameDocument(ctx context.Context, id uint, title string) error {
	if err := s.manager.Update(ctx, id, &title, nil); err != nil {
		return err
	}
	s.settings.AddRecentDocument(id, title)
	return nil
}

// DeleteDocument removes a document, its images and its recents entry.
func (s *Session) DeleteDocument(ctx context.Context, id uint) error {
	if err := s.manager.Delete(ctx, id); err != nil {
		return err
	}
	s.settings.RemoveRecentDocument(id)

	s.mu.Lock()
	if s.currentDocID == id {
		s.currentDocID = 0
		s.dirty = false
	}
	s.mu.Unlock()
	return nil
}

// SetPreviewTheme switches the preview theme and persists the choice.
func (s *Session) SetPreviewTheme(name string) {
	if !theme.Known(name) {
		return
	}
	s.preview.SetTheme(name)
	s.settings.SetPreviewTheme(name)

	s.mu.Lock()
	text := s.pendingText
	s.mu.Unlock()
	s.preview.Update(text)
}

// Manager exposes the document manager for sidebar listings and search.
func (s *Session) Manager() *service.DocumentManager {
	return s.manager
}

// Preview exposes the preview for scroll syncing.
func (s *Session) Preview() *preview.Preview {
	return s.preview
}

// Close flushes edits and tears the session down. The store connection is
// only closed here; for an in-memory database this is the moment its data
// ceases to exist.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.autoSaveTimer != nil {
		s.autoSaveTimer.Stop()
	}
	s.flushLocked(ctx)
	s.mu.Unlock()

	s.runner.Stop()
	s.preview.Stop()
	return s.store.Close()
}
