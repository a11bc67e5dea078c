package render

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/mdworks/markpad/internal/cache"
)

const (
	htmlCacheMax  = 200
	blockCacheMax = 500

	// incrementalThreshold is the content size, in bytes, above which a
	// document is rendered block by block through the block cache.
	incrementalThreshold = 5000
)

// Stats reports render cache performance.
type Stats struct {
	Size           int
	MaxSize        int
	Hits           int
	Misses         int
	HitRatePercent float64
	BlockCacheSize int
}

// Renderer turns (markdown, theme) into an HTML body fragment exactly once
// per distinct pair. Large documents are rendered incrementally: unchanged
// blocks come out of the content-addressed block cache and only edited
// blocks are re-parsed.
//
// Renders run on the preview goroutine while theme switches and the
// maintenance Optimize arrive from others, so mu guards all state.
type Renderer struct {
	md        goldmark.Markdown
	theme     string
	htmlCache *cache.Cache[string, string]
	blocks    *blockCache

	mu      sync.Mutex
	hits    int
	misses  int
	lastKey string
}

func NewRenderer(theme string) *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
				html.WithUnsafe(),
			),
		),
		theme:     theme,
		htmlCache: cache.New[string, string](htmlCacheMax),
		blocks:    newBlockCache(blockCacheMax),
	}
}

// Render produces the HTML body for markdown under the current theme. The
// second return is false when the (content, theme) pair matches the
// immediately previous render, in which case the caller should do nothing.
// The empty string is a valid, cacheable input.
func (r *Renderer) Render(markdown string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := contentKey(markdown, r.theme)
	if key == r.lastKey {
		return "", false, nil
	}

	if body, ok := r.htmlCache.Get(key); ok {
		r.hits++
		r.lastKey = key
		return body, true, nil
	}
	r.misses++

	var body string
	var err error
	if len(markdown) > incrementalThreshold {
		body, err = r.renderIncremental(markdown)
	} else {
		body, err = r.convert(markdown)
	}
	if err != nil {
		// The key is not recorded, so resubmitting the same content retries
		// instead of being skipped as already rendered.
		return "", false, err
	}

	r.lastKey = key
	r.htmlCache.Put(key, body)
	return body, true, nil
}

// SetTheme switches the active theme. Whole-document entries are keyed by
// theme so stale ones simply age out, but the last-key marker must be reset
// or the next render of the same content would be skipped. The block cache
// survives: block fragments carry no theme styling.
func (r *Renderer) SetTheme(theme string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if theme == r.theme {
		return
	}
	r.theme = theme
	r.lastKey = ""
	logrus.Infof("preview theme set to %s", theme)
}

func (r *Renderer) Theme() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.theme
}

func (r *Renderer) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	total := r.hits + r.misses
	rate := 0.0
	if total > 0 {
		rate = float64(r.hits) / float64(total) * 100
	}
	return Stats{
		Size:           r.htmlCache.Len(),
		MaxSize:        r.htmlCache.MaxSize(),
		Hits:           r.hits,
		Misses:         r.misses,
		HitRatePercent: rate,
		BlockCacheSize: r.blocks.len(),
	}
}

// Optimize trims the HTML cache past 80% fill and prunes orphaned access
// records. Run from the periodic maintenance job.
func (r *Renderer) Optimize() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.htmlCache.OverThreshold(0.8) {
		r.htmlCache.EvictLRU()
	}
	r.htmlCache.PruneOrphans()
}

// Clear drops both caches, the counters and the last-rendered marker.
func (r *Renderer) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.htmlCache.Clear()
	r.blocks.clear()
	r.hits = 0
	r.misses = 0
	r.lastKey = ""
}

func (r *Renderer) renderIncremental(markdown string) (string, error) {
	blocks := SplitBlocks(markdown)
	parts := make([]string, 0, len(blocks))

	for _, block := range blocks {
		hash := hashString(block)
		if html, ok := r.blocks.get(hash); ok {
			parts = append(parts, html)
			continue
		}

		html, err := r.convert(block)
		if err != nil {
			return "", err
		}
		r.blocks.put(hash, html)
		parts = append(parts, html)
	}

	return joinFragments(parts), nil
}

func (r *Renderer) convert(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func joinFragments(parts []string) string {
	var buf bytes.Buffer
	for i, p := range parts {
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(p)
	}
	return buf.String()
}

func contentKey(markdown, theme string) string {
	return hashString(markdown + "\x00" + theme)
}

func hashString(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
