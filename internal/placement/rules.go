package placement

import (
	"fmt"
	"regexp"
)

// Slot names, positional: candidate 0 is featured, 1-2 are content, 3 goes
// before the call-to-action section.
const (
	SlotFeatured = "featured"
	SlotContent  = "content"
	SlotPreCTA   = "pre_cta"
)

// A slot resolves through an ordered pattern cascade; the first pattern that
// matches is replaced exactly once and the cascade stops.
var featuredPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)\[Featured Image\]`),
	regexp.MustCompile(`(?is)<figure class="featured-image">\s*\[Featured Image\]\s*</figure>`),
	regexp.MustCompile(`(?is)<div[^>]*>\s*\[Featured Image[^\]]*\]\s*</div>`),
}

// Content patterns are numbered; only two content slots exist.
var contentPatterns = map[int][]*regexp.Regexp{
	1: compileContentPatterns(1),
	2: compileContentPatterns(2),
}

func compileContentPatterns(n int) []*regexp.Regexp {
	return []*regexp.Regexp{
		regexp.MustCompile(fmt.Sprintf(`(?is)\[Content Image %d\]`, n)),
		regexp.MustCompile(fmt.Sprintf(`(?is)<figure class="content-image">\s*\[Content Image %d\]\s*</figure>`, n)),
		regexp.MustCompile(fmt.Sprintf(`(?is)\[Image %d\]`, n)),
	}
}

// Structural anchors for the content-slot fallback path.
var (
	headingClose = regexp.MustCompile(`(?i)</h2>`)
	nextBoundary = regexp.MustCompile(`(?i)<h2|<section|</article`)
	ctaSection   = regexp.MustCompile(`(?i)<section class="cta-section">`)
)

// Leftover placeholder tokens are scrubbed to fallback text, wrapped forms
// first so no empty wrappers survive.
var scrubPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<figure[^>]*>\s*\[(?:Featured Image[^\]]*|Content Image \d+|Image \d+)\]\s*</figure>`),
	regexp.MustCompile(`(?is)<div[^>]*>\s*\[Featured Image[^\]]*\]\s*</div>`),
	regexp.MustCompile(`(?i)\[Featured Image[^\]]*\]`),
	regexp.MustCompile(`(?i)\[Content Image \d+\]`),
	regexp.MustCompile(`(?i)\[Image \d+\]`),
}

var figureBlock = regexp.MustCompile(`(?s)<figure[^>]*>.*?</figure>`)
