// Package seo synthesizes the metadata envelope and the publish-ready HTML
// document for a finished article.
package seo

import (
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"sort"
	"strings"
	"time"

	"blogforge/internal/config"
	"blogforge/internal/domain/model"
)

const (
	maxSlugLen = 60
	maxDescLen = 160
	maxOGTitle = 60
)

// ProductKnowledge is the company context woven into metadata and links.
type ProductKnowledge struct {
	Company       string
	BaseURL       string
	Phone         string
	InternalLinks map[string]string
	OutboundLinks map[string]string
}

func FromConfig(cfg config.PublishConfig) ProductKnowledge {
	return ProductKnowledge{
		Company:       cfg.Company,
		BaseURL:       cfg.BaseURL,
		Phone:         cfg.Phone,
		InternalLinks: cfg.InternalLinks,
		OutboundLinks: cfg.OutboundLinks,
	}
}

// InternalLinkList returns anchor/url pairs in stable order.
func (pk ProductKnowledge) InternalLinkList() [][2]string {
	return sortedLinks(pk.InternalLinks)
}

func (pk ProductKnowledge) OutboundLinkList() [][2]string {
	return sortedLinks(pk.OutboundLinks)
}

func sortedLinks(m map[string]string) [][2]string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([][2]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, [2]string{k, m[k]})
	}
	return out
}

var (
	slugInvalid   = regexp.MustCompile(`[^\w\s-]`)
	slugSeparator = regexp.MustCompile(`[-\s]+`)
)

// Slugify builds a URL slug from the title, guaranteeing the main keyword
// appears and the result stays within length on a word boundary.
func Slugify(title, mainKeyword string) string {
	slug := strings.ToLower(title)
	slug = slugInvalid.ReplaceAllString(slug, "")
	slug = slugSeparator.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	kwSlug := strings.ReplaceAll(strings.ToLower(mainKeyword), " ", "-")
	if kwSlug != "" && !strings.Contains(slug, kwSlug) {
		slug = kwSlug + "-" + slug
	}
	if len(slug) > maxSlugLen {
		cut := slug[:maxSlugLen]
		if i := strings.LastIndex(cut, "-"); i > 0 {
			cut = cut[:i]
		}
		slug = cut
	}
	return strings.Trim(slug, "-")
}

// MetaDescription derives the description from the opening paragraph and
// guarantees the company suffix within the length limit.
func MetaDescription(opening, fallback, company string) string {
	text := strings.TrimSpace(stripMarkup(opening))
	var desc string
	if len(text) > 100 {
		desc = truncate(text, 150) + "..."
	} else {
		desc = fallback
	}
	if company != "" && !strings.Contains(desc, company) {
		desc = truncate(desc, 130) + " | " + company
	}
	return truncate(desc, maxDescLen)
}

// BuildMetadata assembles the full metadata envelope. title must already be
// resolved (H1, stored title, or a generated fallback).
func BuildMetadata(title, opening, mainKeyword string, subsidiary []string, pk ProductKnowledge) *model.ArticleMetadata {
	slug := Slugify(title, mainKeyword)

	keywords := append([]string{mainKeyword}, subsidiary...)
	if len(keywords) > 8 {
		keywords = keywords[:8]
	}

	ogTitle := title
	if len(ogTitle) > maxOGTitle {
		ogTitle = truncate(ogTitle, maxOGTitle) + "..."
	}

	desc := MetaDescription(opening, title, pk.Company)

	return &model.ArticleMetadata{
		Title:           title,
		Slug:            slug,
		MetaDescription: desc,
		MetaKeywords:    keywords,
		OGTitle:         ogTitle,
		OGDescription:   truncate(desc, maxDescLen),
		CanonicalURL:    strings.TrimSuffix(pk.BaseURL, "/") + "/blog/" + slug,
	}
}

var (
	bodyOpen   = regexp.MustCompile(`(?is)<body[^>]*>`)
	styleBlock = regexp.MustCompile(`(?is)<style>.*?</style>`)
	markupTag  = regexp.MustCompile(`<.*?>`)
)

// PublishHTML wraps the article body in a full document with SEO meta tags,
// Open Graph and Twitter cards, JSON-LD and a company footer.
func PublishHTML(doc string, md *model.ArticleMetadata, pk ProductKnowledge, publishedAt time.Time) string {
	body := extractBody(doc)
	body = styleBlock.ReplaceAllString(body, "")

	ld, _ := json.MarshalIndent(map[string]any{
		"@context":    "https://schema.org",
		"@type":       "BlogPosting",
		"headline":    md.Title,
		"description": md.MetaDescription,
		"author": map[string]any{
			"@type": "Organization",
			"name":  pk.Company,
			"url":   pk.BaseURL,
		},
		"publisher": map[string]any{
			"@type": "Organization",
			"name":  pk.Company,
		},
		"datePublished": publishedAt.UTC().Format(time.RFC3339),
	}, "", "  ")

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"UTF-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	b.WriteString("<meta http-equiv=\"X-UA-Compatible\" content=\"IE=edge\">\n")
	b.WriteString("<title>" + html.EscapeString(md.Title) + "</title>\n")
	meta(&b, "description", md.MetaDescription)
	meta(&b, "keywords", strings.Join(md.MetaKeywords, ", "))
	meta(&b, "author", pk.Company)
	meta(&b, "publisher", pk.Company)
	b.WriteString("<link rel=\"canonical\" href=\"" + html.EscapeString(md.CanonicalURL) + "\">\n")
	prop(&b, "og:title", md.OGTitle)
	prop(&b, "og:description", md.OGDescription)
	prop(&b, "og:type", "article")
	prop(&b, "og:url", md.CanonicalURL)
	prop(&b, "og:site_name", pk.Company)
	meta(&b, "twitter:card", "summary_large_image")
	meta(&b, "twitter:title", md.OGTitle)
	meta(&b, "twitter:description", md.OGDescription)
	b.WriteString("<script type=\"application/ld+json\">\n")
	b.Write(ld)
	b.WriteString("\n</script>\n")
	b.WriteString(publishStylesheet)
	b.WriteString("\n</head>\n<body>\n")
	b.WriteString(body)
	b.WriteString(footer(pk))
	b.WriteString("\n</body>\n</html>")
	return b.String()
}

func extractBody(doc string) string {
	loc := bodyOpen.FindStringIndex(doc)
	if loc == nil {
		return doc
	}
	rest := doc[loc[1]:]
	if i := strings.Index(rest, "</body>"); i >= 0 {
		return rest[:i]
	}
	return rest
}

func meta(b *strings.Builder, name, content string) {
	b.WriteString("<meta name=\"" + name + "\" content=\"" + html.EscapeString(content) + "\">\n")
}

func prop(b *strings.Builder, property, content string) {
	b.WriteString("<meta property=\"" + property + "\" content=\"" + html.EscapeString(content) + "\">\n")
}

func footer(pk ProductKnowledge) string {
	if pk.Company == "" {
		return ""
	}
	f := "\n<footer>\n<p>" + html.EscapeString(pk.Company)
	if pk.Phone != "" {
		f += " | " + html.EscapeString(pk.Phone)
	}
	f += "</p>\n</footer>"
	return f
}

func stripMarkup(s string) string {
	return markupTag.ReplaceAllString(s, "")
}

// truncate cuts on a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}

// LinkSections weaves internal links into alternating content sections, at
// most two per section, and one outbound link on the others. Sections
// already carrying links pass through.
func LinkSections(sections []string, pk ProductKnowledge) []string {
	internal := pk.InternalLinkList()
	outbound := pk.OutboundLinkList()
	out := make([]string, len(sections))
	ii, oi := 0, 0
	for i, s := range sections {
		if strings.Contains(s, "<a ") {
			out[i] = s
			continue
		}
		if i%2 == 0 && ii < len(internal) {
			out[i] = s + linkParagraph("Learn more", internal[ii])
			ii++
			if ii < len(internal) && i%4 == 0 {
				out[i] += linkParagraph("See also", internal[ii])
				ii++
			}
			continue
		}
		if oi < len(outbound) {
			out[i] = s + linkParagraph("Further reading", outbound[oi])
			oi++
			continue
		}
		out[i] = s
	}
	return out
}

func linkParagraph(label string, link [2]string) string {
	return fmt.Sprintf("\n<p>%s: <a href=\"%s\">%s</a></p>", label, html.EscapeString(link[1]), html.EscapeString(link[0]))
}

const publishStylesheet = `<style>
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, Cantarell, sans-serif; line-height: 1.6; color: #333; max-width: 800px; margin: 0 auto; padding: 20px; background-color: #fff; }
h1 { color: #1a1a1a; font-size: 2.5em; margin-bottom: 20px; line-height: 1.2; }
h2 { color: #2c3e50; font-size: 1.8em; margin-top: 30px; margin-bottom: 15px; }
h3 { color: #34495e; font-size: 1.4em; margin-top: 25px; margin-bottom: 10px; }
p { margin-bottom: 15px; text-align: justify; }
a { color: #3498db; text-decoration: none; }
a:hover { text-decoration: underline; }
figure { margin: 30px 0; text-align: center; }
figure img { max-width: 100%; height: auto; border-radius: 8px; box-shadow: 0 4px 6px rgba(0, 0, 0, 0.1); }
figcaption { margin-top: 10px; font-style: italic; color: #666; font-size: 0.9em; }
.cta-box { background-color: #f0f8ff; padding: 30px; border-radius: 8px; margin: 40px 0; border: 2px solid #3498db; }
.cta-box h3 { color: #2c3e50; margin-top: 0; }
hr { border: none; border-top: 1px solid #e0e0e0; margin: 40px 0; }
@media (max-width: 768px) { body { padding: 15px; } h1 { font-size: 2em; } h2 { font-size: 1.5em; } }
</style>`
