// File: internal/infra/adapters/research/site_crawler.go
package research

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly"
	"github.com/rs/zerolog"

	"blogforge/internal/domain/model"
	"blogforge/internal/domain/ports/adapter"
)

var _ adapter.ResearchProvider = (*SiteCrawler)(nil)

// SiteCrawler pulls article snippets from configured industry sites. Each
// entry is a search URL template with a %s for the keyword.
type SiteCrawler struct {
	sites     []string
	userAgent string
	delay     time.Duration
	log       *zerolog.Logger
}

func NewSiteCrawler(sites []string, userAgent string, delay time.Duration, logger *zerolog.Logger) *SiteCrawler {
	l := logger.With().Str("component", "research_crawler").Logger()
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &SiteCrawler{sites: sites, userAgent: userAgent, delay: delay, log: &l}
}

func (c *SiteCrawler) Search(ctx context.Context, keyword string, limit int) ([]model.ResearchSnippet, error) {
	var out []model.ResearchSnippet

	for _, tmpl := range c.sites {
		if len(out) >= limit {
			break
		}
		target := strings.ReplaceAll(tmpl, "%s", url.QueryEscape(keyword))

		collector := colly.NewCollector(
			colly.UserAgent(c.userAgent),
			colly.MaxDepth(1),
		)
		_ = collector.Limit(&colly.LimitRule{DomainGlob: "*", Delay: c.delay})

		collector.OnHTML("article", func(e *colly.HTMLElement) {
			if len(out) >= limit {
				return
			}
			title := cleanText(e.ChildText("h2, h3, h4"))
			body := cleanText(e.ChildText("p"))
			if title == "" || len(body) < 50 {
				return
			}
			out = append(out, model.ResearchSnippet{
				Title:   title,
				URL:     e.Request.URL.String(),
				Snippet: truncateSnippet(body, 300),
				Source:  e.Request.URL.Host,
			})
		})

		if err := collector.Visit(target); err != nil {
			c.log.Warn().Err(err).Str("site", target).Msg("site crawl failed")
			continue
		}
		collector.Wait()
	}
	return out, nil
}

func truncateSnippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}
