package extract

import (
	"github.com/PuerkitoBio/goquery"

	"tailor-engine/internal/scrape/util"
)

// A page whose body carries less visible text than this is treated as an
// unrendered shell.
const minRenderedText = 200

const mountSelector = `#root, #app, #__next, #__nuxt, #___gatsby, #svelte, ` +
	`[data-reactroot], [ng-version], [ng-app], [data-v-app], [data-server-rendered], app-root`

// IsScriptRendered reports whether html is a client-side application shell:
// a framework mount point plus a near-empty body.
func IsScriptRendered(html string) bool {
	return scriptRendered(loadDocument(html))
}

func scriptRendered(doc *goquery.Document) bool {
	if doc == nil || doc.Find(mountSelector).Length() == 0 {
		return false
	}
	body := doc.Find("body").Clone()
	body.Find("script, style, noscript, template").Remove()
	return len([]rune(util.CleanText(body.Text()))) < minRenderedText
}
