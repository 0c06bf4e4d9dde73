// Package extract turns an uploaded attachment into complaint text.
package extract

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	logx "github.com/Chative-core-poc-v1/intake/pkg/logger"
)

// MaxTextBytes caps how much of a text attachment is read.
const MaxTextBytes = 256 * 1024

var (
	spaceRun = regexp.MustCompile(`[ \t]+`)
	blankRun = regexp.MustCompile(`\n{3,}`)
)

// Extractor is the text-extraction collaborator. An empty result means
// nothing usable was found.
type Extractor interface {
	ExtractText(ctx context.Context, path string) string
}

// Backend extracts text from one family of file formats.
type Backend interface {
	Supports(ext string) bool
	Extract(ctx context.Context, path string) (string, error)
}

// Chain tries each backend that supports the extension until one returns text.
type Chain struct {
	backends []Backend
}

// New returns a Chain with the plain-text backend first, followed by any
// extra backends (OCR, PDF readers).
func New(extra ...Backend) *Chain {
	return &Chain{backends: append([]Backend{PlainText{}}, extra...)}
}

var _ Extractor = (*Chain)(nil)

func (c *Chain) ExtractText(ctx context.Context, path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	for _, b := range c.backends {
		if !b.Supports(ext) {
			continue
		}
		text, err := b.Extract(ctx, path)
		if err != nil {
			logx.Warn().Err(err).Str("ext", ext).Msg("Text extraction failed")
			continue
		}
		if text = Clean(text); text != "" {
			return text
		}
	}
	logx.Debug().Str("ext", ext).Msg("No text extracted")
	return ""
}

// PlainText reads text-like files directly.
type PlainText struct{}

func (PlainText) Supports(ext string) bool {
	switch ext {
	case ".txt", ".csv", ".md", ".log":
		return true
	}
	return false
}

func (PlainText) Extract(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	b, err := io.ReadAll(io.LimitReader(f, MaxTextBytes))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		b = []byte(strings.ToValidUTF8(string(b), ""))
	}
	return strings.TrimPrefix(string(b), "\ufeff"), nil
}

// Clean collapses runs of spaces and tabs and trims the result.
func Clean(t string) string {
	t = strings.ReplaceAll(t, "\r\n", "\n")
	t = strings.ReplaceAll(t, "\r", "\n")
	t = spaceRun.ReplaceAllString(t, " ")
	t = blankRun.ReplaceAllString(t, "\n\n")
	return strings.TrimSpace(t)
}
