// Package preview drives the HTML preview surface: debounced rendering of
// editor content and scroll-position preservation across content swaps.
package preview

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mdworks/markpad/internal/render"
	"github.com/mdworks/markpad/internal/service"
	"github.com/mdworks/markpad/internal/theme"
)

// scriptTimeout bounds how long a surface script reply is awaited. A reply
// that arrives later is simply dropped; the worst case is a slightly wrong
// scroll restore, never corruption.
const scriptTimeout = 250 * time.Millisecond

// Preview owns the render pipeline for one preview surface. All state is
// mutated from the single Run goroutine; edits arrive through the coalescing
// queue and surface replies through channels, so there is interleaving but
// no parallel access.
type Preview struct {
	surface  Surface
	renderer *render.Renderer
	queue    *render.Queue
	images   *service.ImageHandler

	savedOffset    float64
	restorePending bool

	done chan struct{}
}

func New(surface Surface, renderer *render.Renderer, images *service.ImageHandler) *Preview {
	return &Preview{
		surface:  surface,
		renderer: renderer,
		queue:    render.NewQueue(),
		images:   images,
		done:     make(chan struct{}),
	}
}

// Update queues markdown for display. Rapid calls coalesce; only the last
// one inside a debounce window is rendered.
func (p *Preview) Update(markdown string) {
	p.queue.Submit(markdown)
}

// SetTheme switches the preview theme and re-renders the current content on
// the next update cycle.
func (p *Preview) SetTheme(name string) {
	p.renderer.SetTheme(name)
}

// SyncScroll follows the editor pane: scrolls the preview to the same
// fractional position.
func (p *Preview) SyncScroll(fraction float64) {
	p.surface.RunScript(syncScrollScript(fraction))
}

// Run processes render results and surface notifications until Stop. It is
// the single consumer of the queue and the only goroutine touching preview
// state.
func (p *Preview) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.done:
			return
		case content := <-p.queue.Out():
			p.display(ctx, content)
		case ok := <-p.surface.LoadFinished():
			p.onLoadFinished(ok)
		}
	}
}

// Stop tears down the queue and the run loop.
func (p *Preview) Stop() {
	p.queue.Stop()
	close(p.done)
}

// display runs one render pass: capture the scroll offset, render, and swap
// the surface content with the offset embedded for restoration.
func (p *Preview) display(ctx context.Context, markdown string) {
	// Read the current offset before replacing content. The reply is
	// asynchronous; ordering against a newer edit is not guaranteed and a
	// stale offset is acceptable.
	select {
	case v := <-p.surface.RunScript(readScrollScript):
		if offset, ok := asFloat(v); ok {
			p.savedOffset = offset
		}
	case <-time.After(scriptTimeout):
	case <-ctx.Done():
		return
	}

	if p.images != nil {
		markdown = p.images.ResolveImageURLs(ctx, markdown)
	}

	body, changed, err := p.renderer.Render(markdown)
	if err != nil {
		logrus.Errorf("markdown render failed: %v", err)
		return
	}
	if !changed {
		return
	}

	html := render.BuildDocument(body, theme.Get(p.renderer.Theme()), p.savedOffset)
	p.restorePending = p.savedOffset > 0
	p.surface.SetHTML(html)
}

// onLoadFinished completes the restore protocol: if the inline script failed
// and the page still sits at the top, scroll once more.
func (p *Preview) onLoadFinished(ok bool) {
	if !ok || !p.restorePending {
		return
	}
	p.restorePending = false

	if p.savedOffset <= 0 {
		return
	}

	offset := p.savedOffset
	go func() {
		select {
		case v := <-p.surface.RunScript(readScrollScript):
			if current, isNum := asFloat(v); isNum && current == 0 {
				p.surface.RunScript(scrollFallbackScript(offset))
			}
		case <-time.After(scriptTimeout):
		}
	}()
}
