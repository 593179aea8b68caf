package handlers

import (
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"docuchat-service/internal/models"
	"docuchat-service/internal/observability"
	"docuchat-service/internal/ocr"
	"docuchat-service/internal/repositories"
	"docuchat-service/internal/telemetry"
)

// OCRHandler manages document upload, history and deletion.
type OCRHandler struct {
	documents repositories.DocumentRepository
	processor *ocr.Processor
	audit     *telemetry.AuditEmitter
	mediaDir  string
	baseURL   string
}

// NewOCRHandler builds an OCRHandler. Outputs are served under
// baseURL/media/outputs.
func NewOCRHandler(documents repositories.DocumentRepository, processor *ocr.Processor, audit *telemetry.AuditEmitter, mediaDir, baseURL string) *OCRHandler {
	return &OCRHandler{
		documents: documents,
		processor: processor,
		audit:     audit,
		mediaDir:  mediaDir,
		baseURL:   baseURL,
	}
}

// Upload accepts a multipart document, runs it through OCR and records the
// rendered outputs. Re-uploading the same file name overwrites the
// previous run.
func (h *OCRHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}

	fileName := filepath.Base(fileHeader.Filename)
	uploadPath := filepath.Join(h.mediaDir, "uploads", fileName)
	if err := os.MkdirAll(filepath.Dir(uploadPath), 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
		return
	}
	if err := c.SaveUploadedFile(fileHeader, uploadPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
		return
	}

	file, err := os.Open(uploadPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return
	}
	defer file.Close()

	result, err := h.processor.Process(c.Request.Context(), fileName, file)
	if err != nil {
		log.Printf("ocr processing failed for %s: %v", fileName, err)
		observability.ObserveOCRProcessing(0, models.DocumentStatusError)
		errDoc := models.OCRDocument{FileName: fileName, Status: models.DocumentStatusError}
		// A failed re-run must not wipe the outputs of an earlier
		// successful run for the same file name.
		if prev, prevErr := h.documents.GetByFileName(c.Request.Context(), fileName); prevErr == nil {
			errDoc.PDFURL, errDoc.TXTURL, errDoc.DOCXURL = prev.PDFURL, prev.TXTURL, prev.DOCXURL
			errDoc.PDFSize, errDoc.TXTSize, errDoc.DOCXSize = prev.PDFSize, prev.TXTSize, prev.DOCXSize
			errDoc.ProcessingTimeMS = prev.ProcessingTimeMS
		}
		if _, upsertErr := h.documents.UpsertDocument(c.Request.Context(), errDoc); upsertErr != nil {
			log.Printf("failed to record ocr error for %s: %v", fileName, upsertErr)
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "ocr processing failed"})
		return
	}

	processingMS := result.Duration.Milliseconds()
	doc, err := h.documents.UpsertDocument(c.Request.Context(), models.OCRDocument{
		FileName:         fileName,
		Status:           models.DocumentStatusDone,
		PDFURL:           h.outputURL(result.PDFName),
		TXTURL:           h.outputURL(result.TXTName),
		DOCXURL:          h.outputURL(result.DOCXName),
		PDFSize:          result.PDFSize,
		TXTSize:          result.TXTSize,
		DOCXSize:         result.DOCXSize,
		ProcessingTimeMS: &processingMS,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record document"})
		return
	}

	observability.ObserveOCRProcessing(result.Duration, models.DocumentStatusDone)
	h.audit.Emit(c.Request.Context(), "ocr_completed", fileName, requestIDFromContext(c), auditUserID(c))

	c.JSON(http.StatusOK, gin.H{
		"pdf":       doc.PDFURL,
		"txt":       doc.TXTURL,
		"docx":      doc.DOCXURL,
		"pdf_size":  doc.PDFSize,
		"txt_size":  doc.TXTSize,
		"docx_size": doc.DOCXSize,
	})
}

// History returns all processed documents, newest first.
func (h *OCRHandler) History(c *gin.Context) {
	docs, err := h.documents.ListDocuments(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	if docs == nil {
		docs = []models.OCRDocument{}
	}
	c.JSON(http.StatusOK, docs)
}

// Delete removes a document's rendered outputs and its record.
func (h *OCRHandler) Delete(c *gin.Context) {
	fileName := filepath.Base(c.Param("file_name"))

	doc, err := h.documents.GetByFileName(c.Request.Context(), fileName)
	if err != nil {
		if errors.Is(err, repositories.ErrDocumentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load document"})
		return
	}

	for _, url := range []string{doc.PDFURL, doc.TXTURL, doc.DOCXURL} {
		if url == "" {
			continue
		}
		path := filepath.Join(h.mediaDir, "outputs", filepath.Base(url))
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("failed to remove output %s: %v", path, err)
		}
	}

	if err := h.documents.DeleteByFileName(c.Request.Context(), fileName); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete document"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *OCRHandler) outputURL(name string) string {
	return h.baseURL + "/media/outputs/" + name
}
