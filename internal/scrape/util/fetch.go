package util

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobcrawl-engine/internal/domain"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// FetchDocument GETs pageURL and parses it. Every failure comes back as *domain.FetchError.
func FetchDocument(ctx context.Context, hc *http.Client, source, pageURL string) (*goquery.Document, error) {
	fail := func(status int, err error) error {
		return &domain.FetchError{Source: source, URL: pageURL, StatusCode: status, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fail(0, err)
	}
	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9,en;q=0.8")

	res, err := hc.Do(req)
	if err != nil {
		return nil, fail(0, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 4096))
		return nil, fail(res.StatusCode, nil)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fail(0, fmt.Errorf("parse html: %w", err))
	}
	return doc, nil
}

// FirstMatch returns the selection for the first selector that matches anything.
func FirstMatch(root *goquery.Selection, selectors ...string) (*goquery.Selection, string) {
	for _, sel := range selectors {
		if s := root.Find(sel); s.Length() > 0 {
			return s, sel
		}
	}
	return nil, ""
}

// FirstText returns the cleaned text of the first selector yielding non-empty text.
func FirstText(root *goquery.Selection, selectors ...string) string {
	for _, sel := range selectors {
		if t := CleanText(root.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return ""
}
