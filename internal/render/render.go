// Package render turns a finished draft into the plain HTML rendition:
// article skeleton, image placeholder tokens, FAQ/CTA/conclusion sections
// and an embedded stylesheet. Placeholders are resolved later by the
// placement engine.
package render

import (
	"fmt"
	"regexp"
	"strings"

	"blogforge/internal/domain/model"
)

var (
	anyHeading    = regexp.MustCompile(`(?is)<h[1-6][^>]*>.*?</h[1-6]>`)
	codeFence     = regexp.MustCompile("```(?:html)?\\s*")
	excessNewline = regexp.MustCompile(`\n{3,}`)
	tagGap        = regexp.MustCompile(`>\s+<`)
	dupHeading    = regexp.MustCompile(`(?is)<h2[^>]*>.*?</h2>`)
	dupConclusion = regexp.MustCompile(`(?is)<h2[^>]*>Conclusion</h2>`)
	bulletPrefix  = regexp.MustCompile(`^[•\-\*]\s*`)
	numberPrefix  = regexp.MustCompile(`^\d+\.\s*`)
	numberedLine  = regexp.MustCompile(`^\d+\.`)
)

// SimpleHTML assembles the full standalone document from draft fields.
// A content-image placeholder follows every second section except the last.
func SimpleHTML(d *model.ArticleDraft) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"UTF-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	b.WriteString("<title>" + d.TitleTag + "</title>\n")
	b.WriteString(stylesheet)
	b.WriteString("\n</head>\n<body>\n<article>\n")

	b.WriteString("<h1>" + d.H1 + "</h1>\n")
	b.WriteString("<div class=\"opening\">\n" + CleanFragment(d.Opening) + "\n</div>\n")
	b.WriteString("<figure class=\"featured-image\">\n[Featured Image]\n</figure>\n")

	n := len(d.Subheadings)
	if len(d.Sections) < n {
		n = len(d.Sections)
	}
	for i := 0; i < n; i++ {
		content := CleanFragment(d.Sections[i])
		// the subheading is rendered here, drop any duplicate from the body
		content = dupHeading.ReplaceAllString(content, "")
		b.WriteString("<h2>" + d.Subheadings[i] + "</h2>\n" + content + "\n")
		if (i+1)%2 == 0 && i < n-1 {
			b.WriteString(fmt.Sprintf("<figure class=\"content-image\">\n[Content Image %d]\n</figure>\n", (i+1)/2))
		}
	}

	if d.EnhancedHTML != "" {
		b.WriteString("<section class=\"faq-section\">\n" + CleanFragment(d.EnhancedHTML) + "\n</section>\n")
	}
	if d.CTA != "" {
		b.WriteString("<section class=\"cta-section\">\n" + CleanFragment(d.CTA) + "\n</section>\n")
	}
	if d.Conclusion != "" {
		conclusion := dupConclusion.ReplaceAllString(CleanFragment(d.Conclusion), "")
		b.WriteString("<section class=\"conclusion\">\n<h2>Conclusion</h2>\n" + conclusion + "\n</section>\n")
	}

	b.WriteString("</article>\n</body>\n</html>")
	return b.String()
}

// StripHeadings drops any heading tags a generated section body smuggled in;
// section headings are rendered from the draft's subheadings only.
func StripHeadings(s string) string {
	return anyHeading.ReplaceAllString(s, "")
}

// CleanFragment normalizes one generated HTML fragment: code fences and
// excess whitespace go, plain text is promoted to paragraphs and lists.
func CleanFragment(content string) string {
	if content == "" {
		return ""
	}
	content = codeFence.ReplaceAllString(content, "")
	content = excessNewline.ReplaceAllString(content, "\n\n")
	content = tagGap.ReplaceAllString(content, "><")

	if strings.Contains(content, "<p>") || strings.HasPrefix(strings.TrimSpace(content), "<") {
		return content
	}

	var parts []string
	for _, para := range strings.Split(content, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		switch {
		case strings.HasPrefix(para, "•"), strings.HasPrefix(para, "-"), strings.HasPrefix(para, "*"):
			parts = append(parts, listHTML(para, "ul", bulletPrefix))
		case numberedLine.MatchString(para):
			parts = append(parts, listHTML(para, "ol", numberPrefix))
		default:
			parts = append(parts, "<p>"+para+"</p>")
		}
	}
	return strings.Join(parts, "\n")
}

func listHTML(para, tag string, prefix *regexp.Regexp) string {
	var b strings.Builder
	b.WriteString("<" + tag + ">\n")
	for _, line := range strings.Split(para, "\n") {
		item := prefix.ReplaceAllString(strings.TrimSpace(line), "")
		if item != "" {
			b.WriteString("<li>" + item + "</li>\n")
		}
	}
	b.WriteString("</" + tag + ">")
	return b.String()
}

const stylesheet = `<style>
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; line-height: 1.6; color: #333; max-width: 800px; margin: 0 auto; padding: 20px; }
h1 { color: #1a1a1a; font-size: 2.5em; margin-bottom: 20px; line-height: 1.2; font-weight: 700; }
h2 { color: #2c3e50; font-size: 1.8em; margin-top: 40px; margin-bottom: 20px; font-weight: 600; }
h3 { color: #34495e; font-size: 1.4em; margin-top: 30px; margin-bottom: 15px; font-weight: 600; }
p { margin-bottom: 15px; }
ul, ol { margin-bottom: 20px; padding-left: 30px; }
li { margin-bottom: 8px; }
figure { margin: 30px 0; text-align: center; }
figure img { max-width: 100%; height: auto; border-radius: 8px; box-shadow: 0 4px 6px rgba(0,0,0,0.1); }
figcaption { margin-top: 10px; font-style: italic; color: #666; font-size: 0.9em; }
.opening { font-size: 1.1em; color: #555; margin-bottom: 30px; font-style: italic; }
.cta-section { background-color: #f0f8ff; padding: 30px; border-radius: 8px; margin: 40px 0; border: 2px solid #3498db; }
.conclusion { border-top: 2px solid #e0e0e0; padding-top: 30px; margin-top: 40px; }
a { color: #3498db; text-decoration: none; }
a:hover { text-decoration: underline; }
</style>`
