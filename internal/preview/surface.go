package preview

// Surface is the embedded web renderer displaying the preview. It accepts a
// complete HTML document, executes small script snippets with an
// asynchronously delivered single result, and reports load completion.
//
// Every Surface round-trip is a suspension point: the reply arrives on a
// channel some frames later, interleaved with other events, never blocking
// the event goroutine.
type Surface interface {
	// SetHTML replaces the displayed document.
	SetHTML(html string)
	// RunScript executes js and delivers its value on the returned channel.
	// The channel receives exactly once; the value may be nil.
	RunScript(js string) <-chan interface{}
	// LoadFinished receives true after each successful SetHTML load.
	LoadFinished() <-chan bool
}
