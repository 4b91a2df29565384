// Package files reads local files into Gemini content parts. Classification
// is by lowercase extension only, never by content sniffing.
package files

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"gemini2mcp/internal/gemini"
)

const (
	MIMETypePDF   = "application/pdf"
	MIMETypeImage = "image/jpeg"
)

// MIMETypeFor maps a path to the inline-data MIME type. Only .pdf is
// recognized; every other extension is reported as image/jpeg regardless of
// the true image format.
func MIMETypeFor(path string) string {
	if strings.ToLower(filepath.Ext(path)) == ".pdf" {
		return MIMETypePDF
	}
	return MIMETypeImage
}

// IsMarkdown reports whether the path carries a .md extension.
func IsMarkdown(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".md"
}

// LoadPart reads the whole file and converts it to a content part: markdown
// becomes a text part with the raw decoded content, everything else an
// inline-data part with base64-encoded bytes.
func LoadPart(path string) (gemini.Part, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return gemini.Part{}, err
	}
	if IsMarkdown(path) {
		return gemini.NewTextPart(string(data)), nil
	}
	return gemini.NewInlineDataPart(MIMETypeFor(path), base64.StdEncoding.EncodeToString(data)), nil
}

// LoadInlinePart reads the whole file as an inline-data part, ignoring the
// markdown classification. Used by single-file analysis, where every input is
// treated as pdf or image.
func LoadInlinePart(path string) (gemini.Part, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return gemini.Part{}, err
	}
	return gemini.NewInlineDataPart(MIMETypeFor(path), base64.StdEncoding.EncodeToString(data)), nil
}

// LoadParts reads every path concurrently and returns the parts in input
// order. The first read failure aborts the batch; completed reads are
// discarded and no partial result is returned.
func LoadParts(ctx context.Context, paths []string) ([]gemini.Part, error) {
	parts := make([]gemini.Part, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			part, err := LoadPart(path)
			if err != nil {
				return err
			}
			parts[i] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return parts, nil
}
