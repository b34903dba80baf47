// Package research implements the ResearchProvider port by scraping public
// search engines and industry sites. Providers are consulted in order; any
// of them may come back empty when the engine rate-limits or reshuffles its
// markup, which is why callers always hold a fallback chain.
package research

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"blogforge/internal/domain/model"
	"blogforge/internal/domain/ports/adapter"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

var (
	spaceRe   = regexp.MustCompile(`\s+`)
	specialRe = regexp.MustCompile(`[^\w\s.,!?\-:;()]`)
)

// cleanText normalizes scraped text: collapsed whitespace, punctuation kept,
// everything else stripped.
func cleanText(s string) string {
	s = spaceRe.ReplaceAllString(s, " ")
	s = specialRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// relevant reports whether text mentions any of the configured context
// terms. An empty term list accepts everything.
func relevant(text string, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	lower := strings.ToLower(text)
	for _, t := range terms {
		if strings.Contains(lower, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

var _ adapter.ResearchProvider = (*DuckDuckGo)(nil)

// DuckDuckGo scrapes the html.duckduckgo.com results page.
type DuckDuckGo struct {
	client       *http.Client
	userAgent    string
	contextTerms []string
	delay        time.Duration
	log          *zerolog.Logger
}

func NewDuckDuckGo(userAgent string, contextTerms []string, delay time.Duration, logger *zerolog.Logger) *DuckDuckGo {
	l := logger.With().Str("component", "research_ddg").Logger()
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &DuckDuckGo{
		client:       &http.Client{Timeout: 10 * time.Second},
		userAgent:    userAgent,
		contextTerms: contextTerms,
		delay:        delay,
		log:          &l,
	}
}

func (d *DuckDuckGo) Search(ctx context.Context, keyword string, limit int) ([]model.ResearchSnippet, error) {
	query := keyword
	if len(d.contextTerms) > 0 {
		query = keyword + " " + strings.Join(d.contextTerms[:minInt(2, len(d.contextTerms))], " ")
	}
	u := "https://html.duckduckgo.com/html/?q=" + url.QueryEscape(query)

	doc, err := fetchDocument(ctx, d.client, d.userAgent, u)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo fetch: %w", err)
	}

	var out []model.ResearchSnippet
	doc.Find("div.web-result").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if len(out) >= limit {
			return false
		}
		title := cleanText(s.Find("h2.result__title").Text())
		snippet := cleanText(s.Find("a.result__snippet").Text())
		href, _ := s.Find("a.result__a").Attr("href")
		if title == "" || snippet == "" {
			return true
		}
		if !relevant(title+" "+snippet, d.contextTerms) {
			return true
		}
		out = append(out, model.ResearchSnippet{
			Title:   title,
			URL:     href,
			Snippet: snippet,
			Source:  "DuckDuckGo",
		})
		return true
	})

	d.log.Debug().Str("keyword", keyword).Int("results", len(out)).Msg("duckduckgo search done")
	pause(ctx, d.delay)
	return out, nil
}

func fetchDocument(ctx context.Context, client *http.Client, userAgent, u string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

// pause is a best-effort politeness delay between requests.
func pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
