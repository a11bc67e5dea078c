package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/mdworks/markpad/internal/model"
)

// searchContextLines is how many lines are kept on each side of a hit.
const searchContextLines = 2

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var _ Store = (*GormStore)(nil)

type GormStore struct {
	db *gorm.DB
}

func (g *GormStore) Transaction(ctx context.Context, f func(tx Store) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return f(NewGormStore(tx))
	})
}

func (g *GormStore) Migrate() error {
	return model.Migrate(g.db)
}

func (g *GormStore) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (g *GormStore) CreateDocument(ctx context.Context, doc *model.Document) error {
	return g.db.WithContext(ctx).Create(doc).Error
}

func (g *GormStore) GetDocument(ctx context.Context, id uint) (*model.Document, error) {
	var doc model.Document
	err := g.db.WithContext(ctx).Where("id = ?", id).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	doc.ContentLength = len(doc.Content)
	doc.ContentLoaded = true
	return &doc, nil
}

func (g *GormStore) GetDocumentMeta(ctx context.Context, id uint) (*model.Document, error) {
	var doc model.Document
	var length int

	// Content stays on the other side of the connection; only its length is
	// queried.
	err := g.db.WithContext(ctx).Model(&model.Document{}).
		Select("id, title, '' AS content, created_at, updated_at").
		Where("id = ?", id).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	row := g.db.WithContext(ctx).Model(&model.Document{}).
		Select("LENGTH(content)").Where("id = ?", id).Row()
	if err := row.Scan(&length); err != nil {
		return nil, err
	}
	doc.ContentLength = length
	doc.ContentLoaded = false
	return &doc, nil
}

func (g *GormStore) ListDocuments(ctx context.Context, loadContent bool, deferOver int) ([]*model.Document, error) {
	var docs []*model.Document
	q := g.db.WithContext(ctx).Model(&model.Document{}).Order("updated_at DESC")

	if loadContent {
		// Content of oversized documents is deferred at the SQL level so the
		// bytes never cross the connection.
		q = q.Select("id, title, CASE WHEN LENGTH(content) <= ? THEN content ELSE '' END AS content, created_at, updated_at",
			deferOver)
	} else {
		q = q.Select("id, title, '' AS content, created_at, updated_at")
	}

	if err := q.Find(&docs).Error; err != nil {
		return nil, err
	}

	lengths := map[uint]int{}
	rows, err := g.db.WithContext(ctx).Model(&model.Document{}).
		Select("id, LENGTH(content)").Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id uint
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		lengths[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, doc := range docs {
		doc.ContentLength = lengths[doc.ID]
		if loadContent {
			doc.ContentLoaded = doc.ContentLength <= deferOver
		} else {
			doc.ContentLoaded = false
		}
	}

	return docs, nil
}

func (g *GormStore) UpdateDocument(ctx context.Context, id uint, title, content *string) error {
	updates := map[string]interface{}{}
	if title != nil {
		updates["title"] = strings.TrimSpace(*title)
	}
	if content != nil {
		updates["content"] = *content
	}

	res := g.db.WithContext(ctx).Model(&model.Document{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (g *GormStore) DeleteDocument(ctx context.Context, id uint) error {
	return g.Transaction(ctx, func(tx Store) error {
		gtx := tx.(*GormStore)

		// Images first so a failed document delete leaves nothing orphaned.
		if err := gtx.db.Where("document_id = ?", id).Delete(&model.Image{}).Error; err != nil {
			return err
		}

		res := gtx.db.Where("id = ?", id).Delete(&model.Document{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (g *GormStore) ContentLength(ctx context.Context, id uint) (int, bool, error) {
	var length int
	row := g.db.WithContext(ctx).Model(&model.Document{}).
		Select("LENGTH(content)").Where("id = ?", id).Row()
	if err := row.Scan(&length); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return length, true, nil
}

func (g *GormStore) StoreImage(ctx context.Context, img *model.Image) error {
	return g.db.WithContext(ctx).Create(img).Error
}

func (g *GormStore) GetImage(ctx context.Context, id uint) (*model.Image, error) {
	var img model.Image
	err := g.db.WithContext(ctx).Where("id = ?", id).First(&img).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (g *GormStore) ListDocumentImages(ctx context.Context, docID uint) ([]uint, error) {
	var ids []uint
	err := g.db.WithContext(ctx).Model(&model.Image{}).
		Where("document_id = ?", docID).Pluck("id", &ids).Error
	return ids, err
}

func (g *GormStore) Search(ctx context.Context, query string, caseSensitive bool) ([]*SearchMatch, error) {
	if query == "" {
		return nil, nil
	}

	docs, err := g.ListDocuments(ctx, false, 0)
	if err != nil {
		return nil, err
	}

	needle := query
	if !caseSensitive {
		needle = strings.ToLower(query)
	}

	var matches []*SearchMatch
	for _, meta := range docs {
		full, err := g.GetDocument(ctx, meta.ID)
		if err != nil {
			return nil, err
		}
		if full == nil {
			continue
		}

		lines := strings.Split(full.Content, "\n")
		for i, line := range lines {
			haystack := line
			if !caseSensitive {
				haystack = strings.ToLower(line)
			}
			if !strings.Contains(haystack, needle) {
				continue
			}

			lo := i - searchContextLines
			if lo < 0 {
				lo = 0
			}
			hi := i + searchContextLines + 1
			if hi > len(lines) {
				hi = len(lines)
			}

			ctxLines := make([]string, hi-lo)
			copy(ctxLines, lines[lo:hi])

			matches = append(matches, &SearchMatch{
				DocumentID: full.ID,
				Title:      full.Title,
				LineNumber: i + 1,
				Line:       line,
				Context:    ctxLines,
			})
		}
	}

	logrus.Debugf("search %q matched %d lines", query, len(matches))
	return matches, nil
}
