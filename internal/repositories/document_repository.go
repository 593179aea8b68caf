package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"docuchat-service/internal/models"
)

var ErrDocumentNotFound = errors.New("document not found")

// DocumentRepository abstracts OCR document persistence.
type DocumentRepository interface {
	UpsertDocument(ctx context.Context, doc models.OCRDocument) (models.OCRDocument, error)
	ListDocuments(ctx context.Context) ([]models.OCRDocument, error)
	GetByFileName(ctx context.Context, fileName string) (models.OCRDocument, error)
	DeleteByFileName(ctx context.Context, fileName string) error
}

// DocumentRepo is a sqlx implementation of DocumentRepository.
type DocumentRepo struct {
	db *sqlx.DB
}

// NewDocumentRepo constructs a DocumentRepo.
func NewDocumentRepo(db *sqlx.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

const documentColumns = `id, file_name, status, pdf_url, txt_url, docx_url, pdf_size, txt_size, docx_size, processing_time_ms, uploaded_at`

// UpsertDocument inserts the document or, when the file name was processed
// before, overwrites the previous run's outputs.
func (r *DocumentRepo) UpsertDocument(ctx context.Context, doc models.OCRDocument) (models.OCRDocument, error) {
	var stored models.OCRDocument
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO ocr_documents
            (file_name, status, pdf_url, txt_url, docx_url, pdf_size, txt_size, docx_size, processing_time_ms)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
         ON CONFLICT (file_name) DO UPDATE SET
            status = EXCLUDED.status,
            pdf_url = EXCLUDED.pdf_url,
            txt_url = EXCLUDED.txt_url,
            docx_url = EXCLUDED.docx_url,
            pdf_size = EXCLUDED.pdf_size,
            txt_size = EXCLUDED.txt_size,
            docx_size = EXCLUDED.docx_size,
            processing_time_ms = EXCLUDED.processing_time_ms,
            uploaded_at = NOW()
         RETURNING `+documentColumns,
		doc.FileName, doc.Status, doc.PDFURL, doc.TXTURL, doc.DOCXURL,
		doc.PDFSize, doc.TXTSize, doc.DOCXSize, doc.ProcessingTimeMS).StructScan(&stored)
	return stored, err
}

// ListDocuments returns all documents, newest upload first.
func (r *DocumentRepo) ListDocuments(ctx context.Context) ([]models.OCRDocument, error) {
	var docs []models.OCRDocument
	err := r.db.SelectContext(ctx, &docs, `SELECT `+documentColumns+` FROM ocr_documents ORDER BY uploaded_at DESC`)
	return docs, err
}

// GetByFileName fetches a document by its file name.
func (r *DocumentRepo) GetByFileName(ctx context.Context, fileName string) (models.OCRDocument, error) {
	var doc models.OCRDocument
	err := r.db.GetContext(ctx, &doc, `SELECT `+documentColumns+` FROM ocr_documents WHERE file_name=$1`, fileName)
	if errors.Is(err, sql.ErrNoRows) {
		return models.OCRDocument{}, ErrDocumentNotFound
	}
	return doc, err
}

// DeleteByFileName removes the document record.
func (r *DocumentRepo) DeleteByFileName(ctx context.Context, fileName string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ocr_documents WHERE file_name=$1`, fileName)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrDocumentNotFound
	}
	return nil
}
