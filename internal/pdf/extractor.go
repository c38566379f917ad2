// Package pdf extracts plain text from PDF files.
package pdf

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrExtraction indicates the file could not be read or parsed as a PDF.
var ErrExtraction = errors.New("pdf extraction failed")

// Extract returns the concatenated text of every page, pages joined by a
// newline, in page order. It is a one-shot read-only operation: no retries,
// no side effects.
func Extract(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %v", ErrExtraction, path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("%w: stat %s: %v", ErrExtraction, path, err)
	}

	reader, err := pdf.NewReader(file, info.Size())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			slog.Warn("failed to extract page text", "page", i, "error", err)
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	return b.String(), nil
}
