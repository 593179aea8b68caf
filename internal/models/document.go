package models

import "time"

// OCR document processing states.
const (
	DocumentStatusPending = "pending"
	DocumentStatusDone    = "done"
	DocumentStatusError   = "error"
)

// OCRDocument records one processed upload and its rendered outputs.
type OCRDocument struct {
	ID               int        `db:"id" json:"id"`
	FileName         string     `db:"file_name" json:"file_name"`
	Status           string     `db:"status" json:"status"`
	PDFURL           string     `db:"pdf_url" json:"pdf_url"`
	TXTURL           string     `db:"txt_url" json:"txt_url"`
	DOCXURL          string     `db:"docx_url" json:"docx_url"`
	PDFSize          int64      `db:"pdf_size" json:"pdf_size"`
	TXTSize          int64      `db:"txt_size" json:"txt_size"`
	DOCXSize         int64      `db:"docx_size" json:"docx_size"`
	ProcessingTimeMS *int64    `db:"processing_time_ms" json:"processing_time_ms,omitempty"`
	UploadedAt       time.Time `db:"uploaded_at" json:"uploaded_at"`
}
