package preview

import "fmt"

const readScrollScript = `(function() {
    return window.pageYOffset || document.documentElement.scrollTop;
})();`

// scrollFallbackScript re-issues the scroll when the inline restore script
// did not take: if the page still reads zero after load, scroll again.
func scrollFallbackScript(offset float64) string {
	return fmt.Sprintf(`(function() {
    var currentScroll = window.pageYOffset || document.documentElement.scrollTop;
    if (currentScroll === 0 && %g > 0) {
        window.scrollTo(0, %g);
    }
})();`, offset, offset)
}

// syncScrollScript scrolls the preview to a fraction of its full height,
// used to follow the editor pane.
func syncScrollScript(fraction float64) string {
	return fmt.Sprintf(`(function() {
    var body = document.body;
    var html = document.documentElement;
    var height = Math.max(body.scrollHeight, body.offsetHeight,
                          html.clientHeight, html.scrollHeight, html.offsetHeight);
    window.scrollTo(0, (height - window.innerHeight) * %g);
})();`, fraction)
}

// asFloat coerces a script result into a float64 offset. Surfaces deliver
// numbers as float64, int or json-ish values depending on the binding.
func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
