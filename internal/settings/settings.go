// Package settings persists session state as a flat JSON file: last opened
// document, window layout, themes, fonts and the recent-document list.
package settings

import (
	"encoding/hex"
	"encoding/json"
	"os"

	"github.com/sirupsen/logrus"
)

const maxRecentDocuments = 10

// RecentDocument is one entry of the most-recent-first recents list.
type RecentDocument struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

type state struct {
	LastDocumentID     uint             `json:"last_document_id"`
	WindowGeometry     string           `json:"window_geometry"`
	SplitterSizes      []int            `json:"splitter_sizes"`
	RecentDocuments    []RecentDocument `json:"recent_documents"`
	PreviewTheme       string           `json:"preview_theme"`
	EditorTheme        string           `json:"editor_theme"`
	LineNumbersEnabled bool             `json:"line_numbers_enabled"`
	EditorFontSize     int              `json:"editor_font_size"`
	EditorFontFamily   string           `json:"editor_font_family"`
}

func defaults() state {
	return state{
		PreviewTheme:       "dark",
		EditorTheme:        "dark",
		LineNumbersEnabled: true,
		EditorFontSize:     12,
		EditorFontFamily:   "Consolas",
	}
}

// Manager loads settings once and writes the file back after every change.
// A missing or corrupt file falls back to defaults instead of failing the
// application start.
type Manager struct {
	path  string
	state state
}

func NewManager(path string) *Manager {
	m := &Manager{path: path, state: defaults()}
	m.load()
	return m
}

func (m *Manager) load() {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logrus.Errorf("failed to load settings: %v", err)
		}
		return
	}

	loaded := defaults()
	if err := json.Unmarshal(data, &loaded); err != nil {
		logrus.Errorf("settings file corrupt, using defaults: %v", err)
		return
	}
	m.state = loaded
}

func (m *Manager) save() {
	data, err := json.MarshalIndent(m.state, "", "  ")
	if err != nil {
		logrus.Errorf("failed to encode settings: %v", err)
		return
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		logrus.Errorf("failed to save settings: %v", err)
	}
}

func (m *Manager) LastDocumentID() uint {
	return m.state.LastDocumentID
}

func (m *Manager) SetLastDocumentID(id uint) {
	m.state.LastDocumentID = id
	m.save()
}

// WindowGeometry returns the saved opaque geometry blob, nil when unset.
func (m *Manager) WindowGeometry() []byte {
	if m.state.WindowGeometry == "" {
		return nil
	}
	geo, err := hex.DecodeString(m.state.WindowGeometry)
	if err != nil {
		return nil
	}
	return geo
}

func (m *Manager) SetWindowGeometry(geometry []byte) {
	m.state.WindowGeometry = hex.EncodeToString(geometry)
	m.save()
}

func (m *Manager) SplitterSizes() []int {
	return m.state.SplitterSizes
}

func (m *Manager) SetSplitterSizes(sizes []int) {
	m.state.SplitterSizes = sizes
	m.save()
}

// AddRecentDocument pushes a document to the front of the recents list,
// de-duplicated by id and bounded to the ten most recent.
func (m *Manager) AddRecentDocument(id uint, title string) {
	recent := make([]RecentDocument, 0, len(m.state.RecentDocuments)+1)
	recent = append(recent, RecentDocument{ID: id, Title: title})
	for _, r := range m.state.RecentDocuments {
		if r.ID != id {
			recent = append(recent, r)
		}
	}
	if len(recent) > maxRecentDocuments {
		recent = recent[:maxRecentDocuments]
	}

	m.state.RecentDocuments = recent
	m.save()
}

func (m *Manager) RecentDocuments() []RecentDocument {
	out := make([]RecentDocument, len(m.state.RecentDocuments))
	copy(out, m.state.RecentDocuments)
	return out
}

func (m *Manager) RemoveRecentDocument(id uint) {
	recent := m.state.RecentDocuments[:0]
	for _, r := range m.state.RecentDocuments {
		if r.ID != id {
			recent = append(recent, r)
		}
	}
	m.state.RecentDocuments = recent
	m.save()
}

func (m *Manager) PreviewTheme() string {
	return m.state.PreviewTheme
}

func (m *Manager) SetPreviewTheme(name string) {
	m.state.PreviewTheme = name
	m.save()
}

func (m *Manager) EditorTheme() string {
	return m.state.EditorTheme
}

func (m *Manager) SetEditorTheme(name string) {
	m.state.EditorTheme = name
	m.save()
}

func (m *Manager) LineNumbersEnabled() bool {
	return m.state.LineNumbersEnabled
}

func (m *Manager) SetLineNumbersEnabled(enabled bool) {
	m.state.LineNumbersEnabled = enabled
	m.save()
}

func (m *Manager) EditorFontSize() int {
	return m.state.EditorFontSize
}

func (m *Manager) SetEditorFontSize(size int) {
	m.state.EditorFontSize = size
	m.save()
}

func (m *Manager) EditorFontFamily() string {
	return m.state.EditorFontFamily
}

func (m *Manager) SetEditorFontFamily(family string) {
	m.state.EditorFontFamily = family
	m.save()
}
