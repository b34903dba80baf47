// File: internal/infra/adapters/images/bing.go
package images

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"blogforge/internal/domain/model"
	"blogforge/internal/domain/ports/adapter"
)

var _ adapter.ImageProvider = (*Bing)(nil)

// Bing parses the image result tiles; each carries its metadata as JSON in
// the m attribute.
type Bing struct {
	client    *http.Client
	userAgent string
	delay     time.Duration
	log       *zerolog.Logger
}

func NewBing(userAgent string, delay time.Duration, logger *zerolog.Logger) *Bing {
	l := logger.With().Str("component", "images_bing").Logger()
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Bing{
		client:    &http.Client{Timeout: 10 * time.Second},
		userAgent: userAgent,
		delay:     delay,
		log:       &l,
	}
}

func (b *Bing) Search(ctx context.Context, keyword string, limit int) ([]model.ImageCandidate, error) {
	u := fmt.Sprintf("https://www.bing.com/images/search?q=%s&form=HDRSC2", url.QueryEscape(keyword))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", b.userAgent)
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bing images fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("bing images http %d", resp.StatusCode)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	var out []model.ImageCandidate
	doc.Find("a.iusc").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if len(out) >= limit {
			return false
		}
		raw, ok := s.Attr("m")
		if !ok {
			return true
		}
		var meta struct {
			MURL string `json:"murl"`
			TURL string `json:"turl"`
			T    string `json:"t"`
			MW   int    `json:"mw"`
			MH   int    `json:"mh"`
		}
		if err := json.Unmarshal([]byte(raw), &meta); err != nil || meta.MURL == "" {
			return true
		}
		alt := meta.T
		if alt == "" {
			alt = fmt.Sprintf("%s image %d", keyword, i+1)
		}
		out = append(out, model.ImageCandidate{
			URL:       meta.MURL,
			Thumbnail: meta.TURL,
			Title:     meta.T,
			Alt:       alt,
			Width:     meta.MW,
			Height:    meta.MH,
			Source:    "Bing Images",
		})
		return true
	})

	b.log.Debug().Str("keyword", keyword).Int("results", len(out)).Msg("bing image search done")
	pause(ctx, b.delay)
	return out, nil
}
