package ocr

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	text string
	err  error
}

func (s stubClient) ExtractText(ctx context.Context, fileName string, file io.Reader) (string, error) {
	return s.text, s.err
}

func TestProcessRendersAllOutputs(t *testing.T) {
	outputDir := t.TempDir()
	processor := NewProcessor(stubClient{text: "First paragraph.\n\nSecond paragraph."}, outputDir)

	result, err := processor.Process(context.Background(), "scan.png", strings.NewReader("fake"))
	require.NoError(t, err)

	assert.Equal(t, "ocr_scan.pdf", result.PDFName)
	assert.Equal(t, "ocr_scan.txt", result.TXTName)
	assert.Equal(t, "ocr_scan.docx", result.DOCXName)
	assert.Positive(t, result.PDFSize)
	assert.Positive(t, result.TXTSize)
	assert.Positive(t, result.DOCXSize)

	data, err := os.ReadFile(filepath.Join(outputDir, result.TXTName))
	require.NoError(t, err)
	assert.Equal(t, "First paragraph.\n\nSecond paragraph.", string(data))
}

func TestProcessStripsDirectoryFromName(t *testing.T) {
	outputDir := t.TempDir()
	processor := NewProcessor(stubClient{text: "hello"}, outputDir)

	result, err := processor.Process(context.Background(), "nested/dir/report.v2.pdf", strings.NewReader("fake"))
	require.NoError(t, err)
	assert.Equal(t, "ocr_report.v2.pdf", result.PDFName)
	assert.Equal(t, "ocr_report.v2.txt", result.TXTName)
}

func TestProcessClientError(t *testing.T) {
	extractErr := errors.New("provider unavailable")
	processor := NewProcessor(stubClient{err: extractErr}, t.TempDir())

	_, err := processor.Process(context.Background(), "scan.png", strings.NewReader("fake"))
	assert.ErrorIs(t, err, extractErr)
}

func TestParagraphs(t *testing.T) {
	got := paragraphs("one\n\n  \n\ntwo\n\n")
	assert.Equal(t, []string{"one", "two"}, got)

	assert.Nil(t, paragraphs("   "))
}
