package preview

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdworks/markpad/internal/render"
)

// fakeSurface records SetHTML swaps and script runs, and replies to scripts
// from a scripted queue of values.
type fakeSurface struct {
	mu      sync.Mutex
	htmls   []string
	scripts []string
	replies []interface{}
	loaded  chan bool
}

func newFakeSurface(replies ...interface{}) *fakeSurface {
	return &fakeSurface{replies: replies, loaded: make(chan bool, 1)}
}

func (f *fakeSurface) SetHTML(html string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.htmls = append(f.htmls, html)
}

func (f *fakeSurface) RunScript(js string) <-chan interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts = append(f.scripts, js)

	var v interface{}
	if len(f.replies) > 0 {
		v = f.replies[0]
		f.replies = f.replies[1:]
	}
	ch := make(chan interface{}, 1)
	ch <- v
	return ch
}

func (f *fakeSurface) LoadFinished() <-chan bool {
	return f.loaded
}

func (f *fakeSurface) htmlCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.htmls)
}

func (f *fakeSurface) lastHTML() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.htmls) == 0 {
		return ""
	}
	return f.htmls[len(f.htmls)-1]
}

func (f *fakeSurface) scriptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.scripts)
}

func (f *fakeSurface) script(i int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i >= len(f.scripts) {
		return ""
	}
	return f.scripts[i]
}

func startPreview(t *testing.T, surface Surface) *Preview {
	t.Helper()
	p := New(surface, render.NewRenderer("dark"), nil)
	ctx, cancel := context.WithCancel(context.Background())
	go p.Run(ctx)
	t.Cleanup(func() {
		p.Stop()
		cancel()
	})
	return p
}

func TestPreview_RendersSubmittedMarkdown(t *testing.T) {
	surface := newFakeSurface(float64(0))
	p := startPreview(t, surface)

	p.Update("# Hello")

	require.Eventually(t, func() bool { return surface.htmlCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	html := surface.lastHTML()
	assert.Contains(t, html, "<h1>Hello</h1>")
	assert.Contains(t, html, "savedPosition = 0")
	assert.NotContains(t, html, "opacity: 0;", "no restore means no hidden start")
}

func TestPreview_EmbedsSavedScrollOffset(t *testing.T) {
	surface := newFakeSurface(float64(120))
	p := startPreview(t, surface)

	p.Update("# Scrolled")

	require.Eventually(t, func() bool { return surface.htmlCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	html := surface.lastHTML()
	assert.Contains(t, html, "savedPosition = 120")
	assert.Contains(t, html, "opacity: 0;", "page must start hidden until the restore runs")
	assert.Contains(t, html, "scroll-restored")
}

func TestPreview_CoalescesRapidUpdates(t *testing.T) {
	surface := newFakeSurface(float64(0))
	p := startPreview(t, surface)

	p.Update("# One")
	p.Update("# Two")
	p.Update("# Three")

	require.Eventually(t, func() bool { return surface.htmlCount() >= 1 },
		2*time.Second, 10*time.Millisecond)
	time.Sleep(300 * time.Millisecond)

	assert.Equal(t, 1, surface.htmlCount(), "rapid edits must collapse into one render")
	assert.Contains(t, surface.lastHTML(), "<h1>Three</h1>")
}

func TestPreview_IdenticalContentDoesNotSwap(t *testing.T) {
	surface := newFakeSurface(float64(0), float64(0))
	p := startPreview(t, surface)

	p.Update("# Same")
	require.Eventually(t, func() bool { return surface.htmlCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	p.Update("# Same")
	time.Sleep(300 * time.Millisecond)

	assert.Equal(t, 1, surface.htmlCount())
}

func TestPreview_FallbackScrollAfterFailedRestore(t *testing.T) {
	// First reply: offset read before the swap. Second reply: the post-load
	// check still reads zero, so the fallback scroll must run.
	surface := newFakeSurface(float64(120), float64(0))
	p := startPreview(t, surface)

	p.Update("# Content")
	require.Eventually(t, func() bool { return surface.htmlCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	surface.loaded <- true

	require.Eventually(t, func() bool { return surface.scriptCount() >= 3 },
		2*time.Second, 10*time.Millisecond)
	assert.Contains(t, surface.script(2), "window.scrollTo(0, 120)")
}

func TestPreview_NoFallbackWhenRestoreTook(t *testing.T) {
	// The post-load check reads the restored offset, so nothing more runs.
	surface := newFakeSurface(float64(120), float64(120))
	p := startPreview(t, surface)

	p.Update("# Content")
	require.Eventually(t, func() bool { return surface.htmlCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	surface.loaded <- true

	require.Eventually(t, func() bool { return surface.scriptCount() == 2 },
		2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 2, surface.scriptCount())
}

func TestPreview_SyncScroll(t *testing.T) {
	surface := newFakeSurface()
	p := New(surface, render.NewRenderer("dark"), nil)
	defer p.Stop()

	p.SyncScroll(0.5)

	require.Equal(t, 1, surface.scriptCount())
	assert.Contains(t, surface.script(0), "0.5")
}

func TestAsFloat(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want float64
		ok   bool
	}{
		{"float64", float64(12.5), 12.5, true},
		{"float32", float32(3), 3, true},
		{"int", 7, 7, true},
		{"int64", int64(9), 9, true},
		{"string", "120", 0, false},
		{"nil", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := asFloat(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScrollScripts(t *testing.T) {
	fallback := scrollFallbackScript(256)
	assert.True(t, strings.Contains(fallback, "window.scrollTo(0, 256)"))

	follow := syncScrollScript(0.25)
	assert.True(t, strings.Contains(follow, "0.25"))
}
