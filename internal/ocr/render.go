package ocr

import (
	"os"
	"strings"

	docx "github.com/fumiama/go-docx"
	"github.com/go-pdf/fpdf"
)

// paragraphs splits extracted text on blank lines, dropping empty chunks.
func paragraphs(text string) []string {
	var out []string
	for _, chunk := range strings.Split(text, "\n\n") {
		if trimmed := strings.TrimSpace(chunk); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// writePDF renders the text as an A4 PDF, one paragraph per block.
func writePDF(path, text string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 11)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, para := range paragraphs(text) {
		pdf.MultiCell(0, 5, tr(para), "", "L", false)
		pdf.Ln(4)
	}
	return pdf.OutputFileAndClose(path)
}

// writeTXT writes the raw extracted text.
func writeTXT(path, text string) error {
	return os.WriteFile(path, []byte(text), 0o644)
}

// writeDOCX renders the text as a Word document, one paragraph per block
// with a blank paragraph between them.
func writeDOCX(path, text string) error {
	doc := docx.New().WithDefaultTheme()
	for _, para := range paragraphs(text) {
		doc.AddParagraph().AddText(para)
		doc.AddParagraph()
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := doc.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
