package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildDocument(t *testing.T) {
	html := BuildDocument("<h1>Title</h1>", "body { color: red; }", 0)

	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, "body { color: red; }")
	assert.Contains(t, html, "<h1>Title</h1>")
	assert.Contains(t, html, "savedPosition = 0")
	assert.NotContains(t, html, "opacity: 0;")
}

func TestBuildDocument_WithScrollOffset(t *testing.T) {
	html := BuildDocument("<p>body</p>", "", 342.5)

	assert.Contains(t, html, "savedPosition = 342.5")
	assert.Contains(t, html, "opacity: 0;")
	assert.Contains(t, html, "scroll-restored")
	// The visibility timeout must exist so a failed restore never leaves the
	// page blank.
	assert.Contains(t, html, "setTimeout")
}
