package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docuchat-service/internal/mocks"
	"docuchat-service/internal/models"
	"docuchat-service/internal/ocr"
	"docuchat-service/internal/repositories"
)

func setupOCRRouter(handler *OCRHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/ocr/upload", handler.Upload)
	r.GET("/ocr/history", handler.History)
	r.DELETE("/ocr/documents/:file_name", handler.Delete)
	return r
}

func multipartFile(t *testing.T, fieldName, fileName, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(fieldName, fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUploadNoFile(t *testing.T) {
	documents := new(mocks.DocumentRepositoryMock)
	handler := NewOCRHandler(documents, nil, nil, t.TempDir(), "http://localhost:8080")
	router := setupOCRRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/ocr/upload", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	documents.AssertExpectations(t)
}

func TestUploadSuccess(t *testing.T) {
	mediaDir := t.TempDir()
	client := new(mocks.OCRClientMock)
	documents := new(mocks.DocumentRepositoryMock)
	processor := ocr.NewProcessor(client, filepath.Join(mediaDir, "outputs"))
	handler := NewOCRHandler(documents, processor, nil, mediaDir, "http://localhost:8080")
	router := setupOCRRouter(handler)

	client.On("ExtractText", mock.Anything, "scan.png", mock.Anything).
		Return("First paragraph.\n\nSecond paragraph.", nil).Once()
	documents.On("UpsertDocument", mock.Anything, mock.MatchedBy(func(doc models.OCRDocument) bool {
		return doc.FileName == "scan.png" &&
			doc.Status == models.DocumentStatusDone &&
			doc.PDFSize > 0 && doc.TXTSize > 0 && doc.DOCXSize > 0 &&
			doc.ProcessingTimeMS != nil
	})).Return(models.OCRDocument{
		FileName: "scan.png",
		Status:   models.DocumentStatusDone,
		PDFURL:   "http://localhost:8080/media/outputs/ocr_scan.pdf",
		TXTURL:   "http://localhost:8080/media/outputs/ocr_scan.txt",
		DOCXURL:  "http://localhost:8080/media/outputs/ocr_scan.docx",
	}, nil).Once()

	body, contentType := multipartFile(t, "file", "scan.png", "fake image bytes")
	req := httptest.NewRequest(http.MethodPost, "/ocr/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "http://localhost:8080/media/outputs/ocr_scan.pdf", resp["pdf"])

	for _, name := range []string{"ocr_scan.pdf", "ocr_scan.txt", "ocr_scan.docx"} {
		_, err := os.Stat(filepath.Join(mediaDir, "outputs", name))
		assert.NoError(t, err, name)
	}
	client.AssertExpectations(t)
	documents.AssertExpectations(t)
}

func TestUploadProviderFailure(t *testing.T) {
	mediaDir := t.TempDir()
	client := new(mocks.OCRClientMock)
	documents := new(mocks.DocumentRepositoryMock)
	processor := ocr.NewProcessor(client, filepath.Join(mediaDir, "outputs"))
	handler := NewOCRHandler(documents, processor, nil, mediaDir, "http://localhost:8080")
	router := setupOCRRouter(handler)

	client.On("ExtractText", mock.Anything, "scan.png", mock.Anything).
		Return("", assert.AnError).Once()
	documents.On("GetByFileName", mock.Anything, "scan.png").
		Return(models.OCRDocument{}, repositories.ErrDocumentNotFound).Once()
	documents.On("UpsertDocument", mock.Anything, mock.MatchedBy(func(doc models.OCRDocument) bool {
		return doc.FileName == "scan.png" && doc.Status == models.DocumentStatusError
	})).Return(models.OCRDocument{FileName: "scan.png", Status: models.DocumentStatusError}, nil).Once()

	body, contentType := multipartFile(t, "file", "scan.png", "fake image bytes")
	req := httptest.NewRequest(http.MethodPost, "/ocr/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	client.AssertExpectations(t)
	documents.AssertExpectations(t)
}

func TestUploadProviderFailureKeepsPreviousOutputs(t *testing.T) {
	mediaDir := t.TempDir()
	client := new(mocks.OCRClientMock)
	documents := new(mocks.DocumentRepositoryMock)
	processor := ocr.NewProcessor(client, filepath.Join(mediaDir, "outputs"))
	handler := NewOCRHandler(documents, processor, nil, mediaDir, "http://localhost:8080")
	router := setupOCRRouter(handler)

	processingMS := int64(1200)
	client.On("ExtractText", mock.Anything, "scan.png", mock.Anything).
		Return("", assert.AnError).Once()
	documents.On("GetByFileName", mock.Anything, "scan.png").Return(models.OCRDocument{
		FileName:         "scan.png",
		Status:           models.DocumentStatusDone,
		PDFURL:           "http://localhost:8080/media/outputs/ocr_scan.pdf",
		TXTURL:           "http://localhost:8080/media/outputs/ocr_scan.txt",
		DOCXURL:          "http://localhost:8080/media/outputs/ocr_scan.docx",
		PDFSize:          100,
		TXTSize:          50,
		DOCXSize:         80,
		ProcessingTimeMS: &processingMS,
	}, nil).Once()
	documents.On("UpsertDocument", mock.Anything, mock.MatchedBy(func(doc models.OCRDocument) bool {
		return doc.Status == models.DocumentStatusError &&
			doc.PDFURL == "http://localhost:8080/media/outputs/ocr_scan.pdf" &&
			doc.PDFSize == 100 && doc.TXTSize == 50 && doc.DOCXSize == 80 &&
			doc.ProcessingTimeMS != nil && *doc.ProcessingTimeMS == 1200
	})).Return(models.OCRDocument{FileName: "scan.png", Status: models.DocumentStatusError}, nil).Once()

	body, contentType := multipartFile(t, "file", "scan.png", "fake image bytes")
	req := httptest.NewRequest(http.MethodPost, "/ocr/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	client.AssertExpectations(t)
	documents.AssertExpectations(t)
}

func TestHistory(t *testing.T) {
	documents := new(mocks.DocumentRepositoryMock)
	handler := NewOCRHandler(documents, nil, nil, t.TempDir(), "http://localhost:8080")
	router := setupOCRRouter(handler)

	documents.On("ListDocuments", mock.Anything).Return([]models.OCRDocument{
		{FileName: "b.png", Status: models.DocumentStatusDone},
		{FileName: "a.png", Status: models.DocumentStatusError},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/ocr/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var docs []models.OCRDocument
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&docs))
	require.Len(t, docs, 2)
	assert.Equal(t, "b.png", docs[0].FileName)
	documents.AssertExpectations(t)
}

func TestHistoryEmpty(t *testing.T) {
	documents := new(mocks.DocumentRepositoryMock)
	handler := NewOCRHandler(documents, nil, nil, t.TempDir(), "http://localhost:8080")
	router := setupOCRRouter(handler)

	documents.On("ListDocuments", mock.Anything).Return(nil, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/ocr/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
	documents.AssertExpectations(t)
}

func TestDeleteRemovesOutputsAndRecord(t *testing.T) {
	mediaDir := t.TempDir()
	outputsDir := filepath.Join(mediaDir, "outputs")
	require.NoError(t, os.MkdirAll(outputsDir, 0o755))
	for _, name := range []string{"ocr_scan.pdf", "ocr_scan.txt", "ocr_scan.docx"} {
		require.NoError(t, os.WriteFile(filepath.Join(outputsDir, name), []byte("x"), 0o644))
	}

	documents := new(mocks.DocumentRepositoryMock)
	handler := NewOCRHandler(documents, nil, nil, mediaDir, "http://localhost:8080")
	router := setupOCRRouter(handler)

	documents.On("GetByFileName", mock.Anything, "scan.png").Return(models.OCRDocument{
		FileName: "scan.png",
		Status:   models.DocumentStatusDone,
		PDFURL:   "http://localhost:8080/media/outputs/ocr_scan.pdf",
		TXTURL:   "http://localhost:8080/media/outputs/ocr_scan.txt",
		DOCXURL:  "http://localhost:8080/media/outputs/ocr_scan.docx",
	}, nil).Once()
	documents.On("DeleteByFileName", mock.Anything, "scan.png").Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/ocr/documents/scan.png", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	for _, name := range []string{"ocr_scan.pdf", "ocr_scan.txt", "ocr_scan.docx"} {
		_, err := os.Stat(filepath.Join(outputsDir, name))
		assert.True(t, os.IsNotExist(err), name)
	}
	documents.AssertExpectations(t)
}

func TestDeleteUnknownDocument(t *testing.T) {
	documents := new(mocks.DocumentRepositoryMock)
	handler := NewOCRHandler(documents, nil, nil, t.TempDir(), "http://localhost:8080")
	router := setupOCRRouter(handler)

	documents.On("GetByFileName", mock.Anything, "ghost.png").
		Return(models.OCRDocument{}, repositories.ErrDocumentNotFound).Once()

	req := httptest.NewRequest(http.MethodDelete, "/ocr/documents/ghost.png", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	documents.AssertNotCalled(t, "DeleteByFileName", mock.Anything, mock.Anything)
}
