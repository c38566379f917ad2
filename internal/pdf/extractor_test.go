package pdf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTwoPagePDF assembles a minimal two-page PDF by hand, tracking byte
// offsets while writing so the xref table is correct by construction. Each
// page draws one text string with the built-in Helvetica font.
func writeTwoPagePDF(t *testing.T, path, first, second string) {
	t.Helper()

	content := func(text string) string {
		return fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	}
	streamObj := func(text string) string {
		body := content(text)
		return fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(body), body)
	}
	pageObj := func(contentsRef string) string {
		return "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] " +
			"/Resources << /Font << /F1 5 0 R >> >> /Contents " + contentsRef + " >>"
	}

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R 4 0 R] /Count 2 >>",
		pageObj("6 0 R"),
		pageObj("7 0 R"),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		streamObj(first),
		streamObj(second),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects)+1)
	for i, obj := range objects {
		offsets[i+1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(objects); i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(objects)+1, xrefOffset)

	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
}

func TestExtract_TwoPages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "two-pages.pdf")
	writeTwoPagePDF(t, path, "Alpha page one", "Bravo page two")

	got, err := Extract(path)
	require.NoError(t, err)

	assert.Equal(t, "Alpha page one\nBravo page two\n", got,
		"pages must come out in order, each followed by a newline")
}

func TestExtract_PageOrderFollowsDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ordered.pdf")
	writeTwoPagePDF(t, path, "Zulu comes first here", "Alpha comes second")

	got, err := Extract(path)
	require.NoError(t, err)

	zulu := strings.Index(got, "Zulu comes first here")
	alpha := strings.Index(got, "Alpha comes second")
	require.GreaterOrEqual(t, zulu, 0)
	require.GreaterOrEqual(t, alpha, 0)
	assert.Less(t, zulu, alpha, "extraction order is document order, not lexical order")
}

func TestExtract_MissingFile(t *testing.T) {
	_, err := Extract(filepath.Join(t.TempDir(), "does-not-exist.pdf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestExtract_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is plain text, not a pdf"), 0o600))

	_, err := Extract(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestExtract_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	_, err := Extract(path)
	assert.ErrorIs(t, err, ErrExtraction)
}
