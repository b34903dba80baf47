// Package images implements the ImageProvider port against public image
// search endpoints.
package images

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"blogforge/internal/domain/model"
	"blogforge/internal/domain/ports/adapter"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

var _ adapter.ImageProvider = (*DuckDuckGo)(nil)

// DuckDuckGo uses the two-step search flow: the HTML page yields a vqd
// token, then the i.js endpoint returns JSON results.
type DuckDuckGo struct {
	client    *http.Client
	userAgent string
	delay     time.Duration
	log       *zerolog.Logger
}

func NewDuckDuckGo(userAgent string, delay time.Duration, logger *zerolog.Logger) *DuckDuckGo {
	l := logger.With().Str("component", "images_ddg").Logger()
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &DuckDuckGo{
		client:    &http.Client{Timeout: 10 * time.Second},
		userAgent: userAgent,
		delay:     delay,
		log:       &l,
	}
}

var vqdRe = regexp.MustCompile(`vqd=["']?([\d-]+)`)

func (d *DuckDuckGo) Search(ctx context.Context, keyword string, limit int) ([]model.ImageCandidate, error) {
	token, err := d.fetchToken(ctx, keyword)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo token: %w", err)
	}

	api := fmt.Sprintf("https://duckduckgo.com/i.js?l=us-en&o=json&q=%s&vqd=%s&f=,,,&p=1",
		url.QueryEscape(keyword), token)
	body, err := d.get(ctx, api)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo images: %w", err)
	}

	var payload struct {
		Results []struct {
			Image     string `json:"image"`
			Thumbnail string `json:"thumbnail"`
			Title     string `json:"title"`
			Source    string `json:"source"`
			Width     int    `json:"width"`
			Height    int    `json:"height"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("duckduckgo images decode: %w", err)
	}

	var out []model.ImageCandidate
	for i, r := range payload.Results {
		if len(out) >= limit {
			break
		}
		if r.Image == "" {
			continue
		}
		alt := r.Title
		if alt == "" {
			alt = fmt.Sprintf("%s image %d", keyword, i+1)
		}
		source := r.Source
		if source == "" {
			source = "DuckDuckGo"
		}
		out = append(out, model.ImageCandidate{
			URL:       r.Image,
			Thumbnail: r.Thumbnail,
			Title:     r.Title,
			Alt:       alt,
			Width:     r.Width,
			Height:    r.Height,
			Source:    source,
		})
	}
	d.log.Debug().Str("keyword", keyword).Int("results", len(out)).Msg("duckduckgo image search done")
	pause(ctx, d.delay)
	return out, nil
}

func (d *DuckDuckGo) fetchToken(ctx context.Context, keyword string) (string, error) {
	u := fmt.Sprintf("https://duckduckgo.com/?q=%s&iax=images&ia=images", url.QueryEscape(keyword))
	body, err := d.get(ctx, u)
	if err != nil {
		return "", err
	}
	m := vqdRe.FindSubmatch(body)
	if m == nil {
		return "", fmt.Errorf("no vqd token in response")
	}
	return string(m[1]), nil
}

func (d *DuckDuckGo) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", d.userAgent)
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

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
