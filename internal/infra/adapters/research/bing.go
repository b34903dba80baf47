// File: internal/infra/adapters/research/bing.go
package research

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"blogforge/internal/domain/model"
	"blogforge/internal/domain/ports/adapter"
)

var _ adapter.ResearchProvider = (*Bing)(nil)

// Bing scrapes the standard Bing results page.
type Bing struct {
	client       *http.Client
	userAgent    string
	contextTerms []string
	delay        time.Duration
	log          *zerolog.Logger
}

func NewBing(userAgent string, contextTerms []string, delay time.Duration, logger *zerolog.Logger) *Bing {
	l := logger.With().Str("component", "research_bing").Logger()
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Bing{
		client:       &http.Client{Timeout: 10 * time.Second},
		userAgent:    userAgent,
		contextTerms: contextTerms,
		delay:        delay,
		log:          &l,
	}
}

func (b *Bing) Search(ctx context.Context, keyword string, limit int) ([]model.ResearchSnippet, error) {
	query := keyword
	if len(b.contextTerms) > 0 {
		query = keyword + " " + strings.Join(b.contextTerms[:minInt(2, len(b.contextTerms))], " ")
	}
	u := "https://www.bing.com/search?q=" + url.QueryEscape(query)

	doc, err := fetchDocument(ctx, b.client, b.userAgent, u)
	if err != nil {
		return nil, fmt.Errorf("bing fetch: %w", err)
	}

	var out []model.ResearchSnippet
	doc.Find("li.b_algo").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if len(out) >= limit {
			return false
		}
		title := cleanText(s.Find("h2").Text())
		snippet := cleanText(s.Find("div.b_caption").Text())
		href, _ := s.Find("h2 a").Attr("href")
		if title == "" || snippet == "" {
			return true
		}
		if !relevant(title+" "+snippet, b.contextTerms) {
			return true
		}
		out = append(out, model.ResearchSnippet{
			Title:   title,
			URL:     href,
			Snippet: snippet,
			Source:  "Bing",
		})
		return true
	})

	b.log.Debug().Str("keyword", keyword).Int("results", len(out)).Msg("bing search done")
	pause(ctx, b.delay)
	return out, nil
}
