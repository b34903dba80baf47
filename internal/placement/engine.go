// Package placement merges selected images into draft HTML. The engine is
// best-effort text rewriting: it never fails, and malformed input passes
// through untouched outside the spans it rewrites.
package placement

import (
	"html"
	"regexp"
	"strings"

	"blogforge/internal/domain/model"

	"github.com/rs/zerolog"
)

const (
	maxAltLen    = 125
	fallbackHTML = `<p class="image-unavailable">Image not available</p>`

	embeddedCSS = `<style>
figure { margin: 30px 0; text-align: center; }
figure img { max-width: 100%; height: auto; border-radius: 8px; box-shadow: 0 4px 6px rgba(0,0,0,0.1); }
figcaption { margin-top: 10px; font-style: italic; color: #666; font-size: 0.9em; }
</style>`
)

// Stats reports how each slot was resolved; used for logging and metrics.
type Stats struct {
	Used              int
	PlaceholderHits   int
	StructuralInserts int
	Skipped           int
	Fallbacks         int
}

type Engine struct {
	log *zerolog.Logger
}

func New(logger *zerolog.Logger) *Engine {
	l := logger.With().Str("component", "placement").Logger()
	return &Engine{log: &l}
}

// Integrate places up to four candidates into doc. Slot assignment is
// positional: 0 featured, 1-2 content, 3 pre-CTA. With no candidates every
// placeholder token is replaced with fallback text so none leak into output.
func (e *Engine) Integrate(doc string, images []model.ImageCandidate, keyword string) (string, Stats) {
	var st Stats
	if len(images) == 0 {
		out := scrub(doc, &st)
		return out, st
	}

	out := doc

	// Slot 0: featured.
	if len(images) > 0 {
		block := figureHTML("featured-image", images[0], keyword, true)
		if replaced, ok := replaceFirst(out, featuredPatterns, block); ok {
			out = replaced
			st.PlaceholderHits++
			st.Used++
		} else {
			st.Skipped++
		}
	}

	// Slots 1-2: content, placeholder cascade then structural fallback.
	contentPlaced := 0
	for i := 1; i < len(images) && i < 3; i++ {
		block := figureHTML("content-image", images[i], keyword, true)
		if replaced, ok := replaceFirst(out, contentPatterns[contentPlaced+1], block); ok {
			out = replaced
			contentPlaced++
			st.PlaceholderHits++
			st.Used++
			continue
		}
		if inserted, ok := insertAfterHeading(out, block, contentPlaced); ok {
			out = inserted
			contentPlaced++
			st.StructuralInserts++
			st.Used++
			continue
		}
		st.Skipped++
	}

	// Slot 3: before the CTA section.
	if len(images) > 3 {
		block := figureHTML("cta-image", images[3], keyword, false)
		if loc := ctaSection.FindStringIndex(out); loc != nil {
			out = out[:loc[0]] + block + "\n" + out[loc[0]:]
			st.StructuralInserts++
			st.Used++
		} else {
			st.Skipped++
		}
	}

	out = scrub(out, &st)
	out = collapseAdjacentDuplicates(out)
	out = ensureCSS(out)

	e.log.Debug().
		Int("candidates", len(images)).
		Int("used", st.Used).
		Int("skipped", st.Skipped).
		Msg("image placement done")
	return out, st
}

// replaceFirst runs a pattern cascade; the first match is replaced exactly
// once and wins the slot.
func replaceFirst(doc string, patterns []*regexp.Regexp, block string) (string, bool) {
	for _, re := range patterns {
		if loc := re.FindStringIndex(doc); loc != nil {
			return doc[:loc[0]] + block + doc[loc[1]:], true
		}
	}
	return doc, false
}

// insertAfterHeading places a content block after the section belonging to
// the (placed+1)-th content slot. Section position is derived by counting
// closed h2 headings; the block lands just before the next structural
// boundary. No anchor means the slot is skipped.
func insertAfterHeading(doc, block string, placed int) (string, bool) {
	closes := headingClose.FindAllStringIndex(doc, -1)
	need := (placed + 1) * 2
	if len(closes) < need {
		return doc, false
	}
	pos := closes[need-1][1]
	rel := nextBoundary.FindStringIndex(doc[pos:])
	if rel == nil {
		return doc, false
	}
	at := pos + rel[0]
	return doc[:at] + "\n" + block + "\n" + doc[at:], true
}

// scrub replaces any placeholder tokens still present with fallback text.
func scrub(doc string, st *Stats) string {
	for _, re := range scrubPatterns {
		doc = re.ReplaceAllStringFunc(doc, func(string) string {
			st.Fallbacks++
			return fallbackHTML
		})
	}
	return doc
}

// collapseAdjacentDuplicates folds consecutive identical figure blocks into
// one, guarding against a placeholder hit and a structural insert both
// firing for the same logical slot.
func collapseAdjacentDuplicates(doc string) string {
	for {
		spans := figureBlock.FindAllStringIndex(doc, -1)
		collapsed := false
		for i := 1; i < len(spans); i++ {
			prev, cur := spans[i-1], spans[i]
			between := doc[prev[1]:cur[0]]
			if strings.TrimSpace(between) != "" {
				continue
			}
			if doc[prev[0]:prev[1]] != doc[cur[0]:cur[1]] {
				continue
			}
			doc = doc[:prev[1]] + doc[cur[1]:]
			collapsed = true
			break
		}
		if !collapsed {
			return doc
		}
	}
}

// ensureCSS injects the figure stylesheet when the document carries none.
func ensureCSS(doc string) string {
	if strings.Contains(doc, "</style>") {
		return doc
	}
	if strings.Contains(doc, "</head>") {
		return strings.Replace(doc, "</head>", embeddedCSS+"\n</head>", 1)
	}
	return strings.Replace(doc, "<body>", "<head>"+embeddedCSS+"</head>\n<body>", 1)
}

// figureHTML renders the image block for a slot. Caption is omitted for the
// pre-CTA slot.
func figureHTML(class string, img model.ImageCandidate, keyword string, caption bool) string {
	alt := altText(img, keyword)
	var b strings.Builder
	b.WriteString(`<figure class="` + class + `">` + "\n")
	b.WriteString(`<img src="` + html.EscapeString(img.URL) + `" alt="` + alt + `" loading="lazy">` + "\n")
	if caption {
		b.WriteString(`<figcaption>` + alt + `</figcaption>` + "\n")
	}
	b.WriteString(`</figure>`)
	return b.String()
}

// altText prefers explicit alt, then title, then a synthesized keyword
// string, trimmed to a sane caption length.
func altText(img model.ImageCandidate, keyword string) string {
	alt := strings.TrimSpace(img.Alt)
	if alt == "" {
		alt = strings.TrimSpace(img.Title)
	}
	if alt == "" {
		alt = keyword + " image"
	}
	if r := []rune(alt); len(r) > maxAltLen {
		alt = strings.TrimSpace(string(r[:maxAltLen]))
	}
	return html.EscapeString(alt)
}
