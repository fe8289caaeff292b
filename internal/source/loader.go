// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source resolves a source reference — raw text, a local file
// path, or a URL — into a plain-text SourceDocument.
package source

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/pdiddy/script-engine/pkg/types"
)

// maxProbePathLen is a conservative filesystem path limit. Strings
// longer than this are never probed against the filesystem.
const maxProbePathLen = 260

// Loader resolves source references. The HTTP client is injected so
// tests can point it at a local server.
type Loader struct {
	cfg    types.LoaderConfig
	client *http.Client
}

// NewLoader builds a Loader from config.
func NewLoader(cfg types.LoaderConfig) *Loader {
	return &Loader{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Load resolves source into a SourceDocument. The decision order is a
// heuristic disambiguation between "this looks like a path" and "this
// is inline text":
//
//  1. an http(s):// prefix means URL — fetched and reduced to article
//     text, never probed against the filesystem;
//  2. a short single-line string that resolves to an existing file is
//     read with encoding fallbacks;
//  3. anything else is the content itself, trimmed.
//
// A multi-line string is always literal text even if a file of the
// same name exists.
func (l *Loader) Load(ctx context.Context, source string) (*types.SourceDocument, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		text, err := l.fetchArticle(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", source, err)
		}
		return &types.SourceDocument{Origin: types.OriginURL, Text: text}, nil
	}

	if len(source) <= maxProbePathLen && !strings.Contains(source, "\n") {
		if info, err := os.Stat(source); err == nil && !info.IsDir() {
			text, err := readTextFile(source)
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", source, err)
			}
			return &types.SourceDocument{Origin: types.OriginFilePath, Text: text}, nil
		}
	}

	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return nil, fmt.Errorf("source is empty")
	}
	return &types.SourceDocument{Origin: types.OriginRawText, Text: trimmed}, nil
}
