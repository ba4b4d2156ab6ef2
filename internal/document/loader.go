package document

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// DefaultUserAgent is sent when no user agent is configured
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"

// Loader fetches raw HTML pages
type Loader struct {
	userAgent  string
	httpClient *http.Client
}

// NewLoader creates a new page loader.
// insecureSkipVerify disables TLS certificate verification for page fetches.
func NewLoader(userAgent string, insecureSkipVerify bool) *Loader {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if insecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Loader{
		userAgent:  userAgent,
		httpClient: &http.Client{Transport: transport},
	}
}

// NewLoaderWithClient creates a loader that uses the given HTTP client
func NewLoaderWithClient(userAgent string, httpClient *http.Client) *Loader {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Loader{userAgent: userAgent, httpClient: httpClient}
}

// Load fetches every URL in order and returns one raw HTML document per URL.
// The first failure aborts the load.
func (l *Loader) Load(ctx context.Context, urls ...string) ([]Document, error) {
	docs := make([]Document, 0, len(urls))
	for _, url := range urls {
		doc, err := l.fetch(ctx, url)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (l *Loader) fetch(ctx context.Context, url string) (Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Document{}, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", l.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return Document{}, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Document{}, fmt.Errorf("fetching %s: HTTP %d: %s", url, resp.StatusCode, resp.Status)
	}

	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return Document{}, fmt.Errorf("detecting charset: %w", err)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return Document{}, fmt.Errorf("reading response body: %w", err)
	}

	return Document{
		PageContent: string(body),
		Metadata:    buildMetadata(url, body),
	}, nil
}

// buildMetadata records the source URL plus title, description and language when the page declares them
func buildMetadata(url string, body []byte) map[string]string {
	metadata := map[string]string{MetaSource: url}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return metadata
	}

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		metadata[MetaTitle] = title
	}
	if description, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok && description != "" {
		metadata[MetaDescription] = description
	}
	if lang, ok := doc.Find("html").First().Attr("lang"); ok && lang != "" {
		metadata[MetaLanguage] = lang
	}

	return metadata
}
