package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// imageURLPattern matches the synthetic image://<id> references used inside
// markdown. Online http/https URLs are left alone.
var imageURLPattern = regexp.MustCompile(`image://(\d+)`)

// ImageHandler bridges stored images and the render pipeline: it names new
// images, sniffs their format, and resolves image:// references into inline
// data URLs before the HTML reaches the preview surface.
type ImageHandler struct {
	manager *DocumentManager

	// currentDocID is the document new images are attached to.
	currentDocID uint
}

func NewImageHandler(manager *DocumentManager) *ImageHandler {
	return &ImageHandler{manager: manager}
}

// SetCurrentDocument sets the document that owns subsequently attached images.
func (h *ImageHandler) SetCurrentDocument(id uint) {
	h.currentDocID = id
}

// Attach stores image bytes under a generated filename and returns the
// markdown snippet referencing it.
func (h *ImageHandler) Attach(ctx context.Context, data []byte) (string, error) {
	if h.currentDocID == 0 {
		logrus.Warn("no current document set for image storage")
		return "", ErrNotFound
	}

	filename := NewImageFilename(extensionFor(SniffMIME(data)))
	id, err := h.manager.StoreImage(ctx, h.currentDocID, filename, data)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("![%s](image://%d)", filename, id), nil
}

// ImageData returns display-ready bytes for an image, undoing any transparent
// compression applied by the optimizer.
func (h *ImageHandler) ImageData(ctx context.Context, id uint) ([]byte, error) {
	rec, err := h.manager.GetImage(ctx, id)
	if err != nil {
		return nil, err
	}
	return h.manager.Decompress(rec.Data), nil
}

// ResolveImageURLs replaces every image://<id> reference with an inline
// base64 data URL. References that cannot be resolved are left untouched so
// a missing image degrades to a broken link instead of breaking the render.
func (h *ImageHandler) ResolveImageURLs(ctx context.Context, markdown string) string {
	return imageURLPattern.ReplaceAllStringFunc(markdown, func(ref string) string {
		idStr := strings.TrimPrefix(ref, "image://")
		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil {
			return ref
		}

		data, err := h.ImageData(ctx, uint(id))
		if err != nil {
			logrus.Errorf("could not resolve %s: %v", ref, err)
			return ref
		}

		encoded := base64.StdEncoding.EncodeToString(data)
		return fmt.Sprintf("data:%s;base64,%s", SniffMIME(data), encoded)
	})
}

// NewImageFilename generates a unique image filename with the given extension.
func NewImageFilename(ext string) string {
	return fmt.Sprintf("image_%s.%s", uuid.New().String()[:8], ext)
}

// SniffMIME detects the image format from its magic bytes, defaulting to PNG.
func SniffMIME(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG")):
		return "image/png"
	case bytes.HasPrefix(data, []byte("\xff\xd8\xff")):
		return "image/jpeg"
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return "image/gif"
	case bytes.HasPrefix(data, []byte("RIFF")) && len(data) >= 12 && bytes.Equal(data[8:12], []byte("WEBP")):
		return "image/webp"
	default:
		return "image/png"
	}
}

func extensionFor(mime string) string {
	switch mime {
	case "image/jpeg":
		return "jpg"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	default:
		return "png"
	}
}
