package render

import (
	"fmt"
	"strings"
)

// BuildDocument wraps a rendered body fragment into a complete HTML page
// with the theme stylesheet and the scroll restoration script.
//
// When scrollOffset is positive the page starts invisible, scrolls to the
// offset on first paint and only then reveals itself, so the viewport never
// visibly jumps to the top and back on a content swap. A 100ms timeout
// forces visibility regardless, so a failed restore can never leave the
// preview permanently blank.
func BuildDocument(body, themeCSS string, scrollOffset float64) string {
	hidden := ""
	if scrollOffset > 0 {
		hidden = "opacity: 0;"
	}

	var b strings.Builder
	b.WriteString(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Markdown Preview</title>
    <style>
`)
	b.WriteString(themeCSS)
	b.WriteString(fmt.Sprintf(`
        * { box-sizing: border-box; }

        html { %s }

        html.scroll-restored {
            opacity: 1;
            transition: opacity 0.05s ease-in;
        }

        body {
            text-rendering: optimizeLegibility;
            -webkit-font-smoothing: antialiased;
        }

        img { max-width: 100%%; height: auto; }

        pre {
            border-radius: 6px;
            overflow-x: auto;
            font-size: 0.9em;
            line-height: 1.4;
        }
    </style>
    <script>
        (function() {
            var savedPosition = %g;

            function restoreScroll() {
                if (savedPosition > 0) {
                    window.scrollTo(0, savedPosition);
                }
                document.documentElement.classList.add('scroll-restored');
            }

            if (document.readyState === 'loading') {
                document.addEventListener('DOMContentLoaded', restoreScroll);
            } else {
                restoreScroll();
            }

            setTimeout(function() {
                document.documentElement.classList.add('scroll-restored');
            }, 100);
        })();
    </script>
</head>
<body>
`, hidden, scrollOffset))
	b.WriteString(body)
	b.WriteString(`
</body>
</html>`)
	return b.String()
}
