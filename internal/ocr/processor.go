package ocr

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Result describes the rendered outputs of one processed document.
type Result struct {
	PDFName  string
	TXTName  string
	DOCXName string
	PDFSize  int64
	TXTSize  int64
	DOCXSize int64
	Duration time.Duration
}

// Processor runs uploads through the OCR client and renders the PDF, TXT
// and DOCX outputs into the output directory.
type Processor struct {
	client    Client
	outputDir string
}

// NewProcessor constructs a Processor writing into outputDir.
func NewProcessor(client Client, outputDir string) *Processor {
	return &Processor{client: client, outputDir: outputDir}
}

// Process extracts text from the file and renders the three outputs,
// named ocr_<base>.{pdf,txt,docx} after the uploaded file name.
func (p *Processor) Process(ctx context.Context, fileName string, file io.Reader) (Result, error) {
	start := time.Now()

	text, err := p.client.ExtractText(ctx, fileName, file)
	if err != nil {
		return Result{}, err
	}

	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		return Result{}, err
	}

	base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	result := Result{
		PDFName:  fmt.Sprintf("ocr_%s.pdf", base),
		TXTName:  fmt.Sprintf("ocr_%s.txt", base),
		DOCXName: fmt.Sprintf("ocr_%s.docx", base),
	}

	if err := writePDF(filepath.Join(p.outputDir, result.PDFName), text); err != nil {
		return Result{}, fmt.Errorf("render pdf: %w", err)
	}
	if err := writeTXT(filepath.Join(p.outputDir, result.TXTName), text); err != nil {
		return Result{}, fmt.Errorf("render txt: %w", err)
	}
	if err := writeDOCX(filepath.Join(p.outputDir, result.DOCXName), text); err != nil {
		return Result{}, fmt.Errorf("render docx: %w", err)
	}

	if result.PDFSize, err = fileSize(filepath.Join(p.outputDir, result.PDFName)); err != nil {
		return Result{}, err
	}
	if result.TXTSize, err = fileSize(filepath.Join(p.outputDir, result.TXTName)); err != nil {
		return Result{}, err
	}
	if result.DOCXSize, err = fileSize(filepath.Join(p.outputDir, result.DOCXName)); err != nil {
		return Result{}, err
	}

	result.Duration = time.Since(start)
	return result, nil
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
