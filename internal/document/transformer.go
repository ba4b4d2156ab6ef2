package document

import (
	"fmt"
	"maps"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// DefaultTags is the tag allow-list used when none is configured
var DefaultTags = []string{"span", "p", "li", "div", "a"}

// unwantedTags are removed with their content before extraction
const unwantedTags = "script, style"

// Transformer reduces HTML documents to the text of allow-listed tags
type Transformer struct{}

// NewTransformer creates a new HTML transformer
func NewTransformer() *Transformer {
	return &Transformer{}
}

// TransformDocuments returns one text document per input document, preserving metadata.
// An empty tag list falls back to DefaultTags.
func (t *Transformer) TransformDocuments(docs []Document, tags []string) ([]Document, error) {
	if len(tags) == 0 {
		tags = DefaultTags
	}

	allowed := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		allowed[strings.ToLower(tag)] = struct{}{}
	}

	result := make([]Document, 0, len(docs))
	for _, doc := range docs {
		content, err := extractText(doc.PageContent, allowed)
		if err != nil {
			return nil, fmt.Errorf("transforming %s: %w", doc.Source(), err)
		}

		result = append(result, Document{
			PageContent: content,
			Metadata:    maps.Clone(doc.Metadata),
		})
	}

	return result, nil
}

func extractText(content string, allowed map[string]struct{}) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	doc.Find(unwantedTags).Remove()

	var parts []string
	for _, root := range doc.Nodes {
		parts = collectTagged(root, allowed, parts)
	}

	return removeBlankLines(strings.Join(parts, " ")), nil
}

// collectTagged walks the tree in document order. An allow-listed element
// contributes all of its text and its subtree is not visited again.
func collectTagged(n *html.Node, allowed map[string]struct{}, parts []string) []string {
	if n.Type == html.ElementNode {
		if _, ok := allowed[n.Data]; ok {
			return navigableStrings(n, parts)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		parts = collectTagged(c, allowed, parts)
	}
	return parts
}

// navigableStrings appends the trimmed text nodes below n. Text directly inside
// a link is suffixed with the link target.
func navigableStrings(n *html.Node, parts []string) []string {
	href := ""
	if n.Data == "a" {
		href = attr(n, "href")
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			parts = navigableStrings(c, parts)
		case html.TextNode:
			text := strings.TrimSpace(c.Data)
			if text == "" {
				continue
			}
			if href != "" {
				text = fmt.Sprintf("%s (%s)", text, href)
			}
			parts = append(parts, text)
		}
	}
	return parts
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// removeBlankLines trims every line, drops empty ones and joins the rest with a space
func removeBlankLines(content string) string {
	lines := strings.Split(content, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, " ")
}
