package ingestion

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrUnsupportedType = errors.New("unsupported file type")

type extractFunc func(path string) (string, error)

// extractors is keyed by lower-case extension. It also decides which files
// the local walk and the Drive loader pick up.
var extractors = map[string]extractFunc{
	".txt":  readPlain,
	".md":   readPlain,
	".html": readHTML,
	".htm":  readHTML,
	".pdf":  extractPDF,
	".png":  ExtractTextWithOCR,
	".jpg":  ExtractTextWithOCR,
	".jpeg": ExtractTextWithOCR,
}

func supported(ext string) bool {
	_, ok := extractors[strings.ToLower(ext)]
	return ok
}

// ExtractText returns the text of a local file, using OCR for images and
// scanned PDFs.
func ExtractText(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	fn, ok := extractors[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	return fn(path)
}

func readPlain(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func readHTML(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return HTMLText(f)
}

// extractPDF prefers the text layer and falls back to OCR.
func extractPDF(path string) (string, error) {
	if text, err := ExtractTextFromPDF(path); err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}
	return ExtractTextWithOCR(path)
}
