// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/pdiddy/script-engine/internal/httputil"
)

// minArticleChars is the threshold below which a structural extraction
// is considered a miss and the whole body is used instead.
const minArticleChars = 200

// boilerplateTags are subtrees dropped during article extraction:
// navigation, chrome, scripts, and tabular data.
var boilerplateTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"nav":      true,
	"header":   true,
	"footer":   true,
	"aside":    true,
	"form":     true,
	"table":    true,
	"iframe":   true,
	"svg":      true,
	"button":   true,
}

// blockTags end a paragraph when their subtree closes.
var blockTags = map[string]bool{
	"p": true, "div": true, "li": true, "blockquote": true, "pre": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"br": true, "section": true, "article": true,
}

var multiBlank = regexp.MustCompile(`\n{3,}`)
var runSpaces = regexp.MustCompile(`[ \t]+`)

// fetchArticle downloads url and reduces the page to readable article
// text. It prefers an <article> or <main> subtree; when that yields too
// little it falls back to the whole <body>.
func (l *Loader) fetchArticle(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", l.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, l.client, req, 0)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}

	text := ExtractArticle(string(body))
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no extractable text")
	}
	return text, nil
}

// ExtractArticle strips boilerplate from an HTML document and returns
// the main readable text. On structural misses it degrades to the full
// body text; the empty string means nothing was extractable.
func ExtractArticle(page string) string {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return ""
	}

	if root := findFirst(doc, "article", "main"); root != nil {
		if text := collectText(root); len(text) >= minArticleChars {
			return text
		}
	}

	if body := findFirst(doc, "body"); body != nil {
		return collectText(body)
	}
	return collectText(doc)
}

// findFirst returns the first element matching any of names, in
// document order, preferring earlier names.
func findFirst(n *html.Node, names ...string) *html.Node {
	for _, name := range names {
		if found := findElement(n, name); found != nil {
			return found
		}
	}
	return nil
}

func findElement(n *html.Node, name string) *html.Node {
	if n.Type == html.ElementNode && n.Data == name {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, name); found != nil {
			return found
		}
	}
	return nil
}

// collectText walks a subtree gathering text content, dropping
// boilerplate subtrees and HTML comments, and inserting paragraph
// breaks at block boundaries.
func collectText(root *html.Node) string {
	var sb strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.CommentNode:
			return
		case html.ElementNode:
			if boilerplateTags[n.Data] {
				return
			}
		case html.TextNode:
			sb.WriteString(n.Data)
			return
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && blockTags[n.Data] {
			sb.WriteString("\n\n")
		}
	}
	walk(root)

	text := runSpaces.ReplaceAllString(sb.String(), " ")

	// Trim per-line whitespace before collapsing blank runs.
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	text = multiBlank.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
