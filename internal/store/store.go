package store

import (
	"context"

	"github.com/mdworks/markpad/internal/model"
)

// SearchMatch is one full-text hit with surrounding context lines.
type SearchMatch struct {
	DocumentID uint
	Title      string
	LineNumber int
	Line       string
	Context    []string
}

type Store interface {
	DocumentStore
	ImageStore
	SearchStore
	Transaction(ctx context.Context, f func(tx Store) error) error
	Migrate() error
	Close() error
}

type DocumentStore interface {
	// CreateDocument creates a new document. The assigned id is written back
	// into doc.ID.
	CreateDocument(ctx context.Context, doc *model.Document) error
	// GetDocument retrieves a full document row, content included.
	// Returns (nil, nil) when no row matches.
	GetDocument(ctx context.Context, id uint) (*model.Document, error)
	// GetDocumentMeta retrieves a metadata projection: no content bytes cross
	// the connection, only LENGTH(content).
	GetDocumentMeta(ctx context.Context, id uint) (*model.Document, error)
	// ListDocuments retrieves all documents ordered by updated_at descending.
	// When loadContent is true, content longer than deferOver bytes is left
	// empty with ContentLoaded=false.
	ListDocuments(ctx context.Context, loadContent bool, deferOver int) ([]*model.Document, error)
	// UpdateDocument updates title and/or content (nil means leave as is) and
	// bumps updated_at. Returns gorm.ErrRecordNotFound when no row matched.
	UpdateDocument(ctx context.Context, id uint, title, content *string) error
	// DeleteDocument deletes a document and cascades its images in one
	// transaction. Returns gorm.ErrRecordNotFound when no row matched.
	DeleteDocument(ctx context.Context, id uint) error
	// ContentLength reports LENGTH(content) without materializing content.
	// The bool reports whether the row exists.
	ContentLength(ctx context.Context, id uint) (int, bool, error)
}

type ImageStore interface {
	// StoreImage stores an image row. The assigned id is written back.
	StoreImage(ctx context.Context, img *model.Image) error
	// GetImage retrieves an image by id. Returns (nil, nil) when missing.
	GetImage(ctx context.Context, id uint) (*model.Image, error)
	// ListDocumentImages lists image ids owned by a document.
	ListDocumentImages(ctx context.Context, docID uint) ([]uint, error)
}

type SearchStore interface {
	// Search runs a linear scan over all document content and returns matches
	// with surrounding context lines.
	Search(ctx context.Context, query string, caseSensitive bool) ([]*SearchMatch, error)
}
