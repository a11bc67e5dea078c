package render

import "strings"

// SplitBlocks splits markdown into independently cacheable blocks delimited
// by blank lines. A fenced code block is one atomic block regardless of the
// blank lines inside it, so splitting can never cut a fence in half.
func SplitBlocks(content string) []string {
	var blocks []string
	var current []string
	inCode := false

	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inCode = !inCode
			current = append(current, line)
			if !inCode {
				blocks = append(blocks, strings.Join(current, "\n"))
				current = nil
			}
			continue
		}

		if inCode {
			current = append(current, line)
			continue
		}

		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				blocks = append(blocks, strings.Join(current, "\n"))
				current = nil
			}
			continue
		}

		current = append(current, line)
	}

	if len(current) > 0 {
		blocks = append(blocks, strings.Join(current, "\n"))
	}

	return blocks
}

// blockCache holds rendered HTML fragments addressed by block content hash.
// It is shared across documents on purpose: identical blocks render once no
// matter where they appear. When the cap is exceeded the oldest quarter by
// insertion order is dropped.
type blockCache struct {
	entries map[string]string
	order   []string
	cap     int
}

func newBlockCache(cap int) *blockCache {
	return &blockCache{entries: make(map[string]string), cap: cap}
}

func (b *blockCache) get(hash string) (string, bool) {
	html, ok := b.entries[hash]
	return html, ok
}

func (b *blockCache) put(hash, html string) {
	if _, exists := b.entries[hash]; exists {
		return
	}
	b.entries[hash] = html
	b.order = append(b.order, hash)

	if len(b.entries) > b.cap {
		b.trim()
	}
}

func (b *blockCache) trim() {
	remove := len(b.order) / 4
	if remove < 1 {
		remove = 1
	}
	for _, hash := range b.order[:remove] {
		delete(b.entries, hash)
	}
	b.order = append([]string(nil), b.order[remove:]...)
}

func (b *blockCache) len() int {
	return len(b.entries)
}

func (b *blockCache) clear() {
	b.entries = make(map[string]string)
	b.order = nil
}
