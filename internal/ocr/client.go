package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Client extracts text from an uploaded document through an OCR provider.
type Client interface {
	ExtractText(ctx context.Context, fileName string, file io.Reader) (string, error)
}

// MistralClient talks to the Mistral files + OCR HTTP API. It is
// constructed explicitly and injected into the processor; there is no
// package-level instance.
type MistralClient struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
}

// NewMistralClient constructs a MistralClient. Empty baseURL and model
// fall back to the hosted API and its latest OCR model.
func NewMistralClient(apiKey, baseURL, model string) *MistralClient {
	if baseURL == "" {
		baseURL = "https://api.mistral.ai"
	}
	if model == "" {
		model = "mistral-ocr-latest"
	}
	return &MistralClient{
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
	}
}

// ExtractText uploads the file, requests OCR on its signed URL and joins
// the per-page markdown with blank lines.
func (c *MistralClient) ExtractText(ctx context.Context, fileName string, file io.Reader) (string, error) {
	fileID, err := c.uploadFile(ctx, fileName, file)
	if err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}

	signedURL, err := c.signedURL(ctx, fileID)
	if err != nil {
		return "", fmt.Errorf("signed url: %w", err)
	}

	pages, err := c.process(ctx, signedURL)
	if err != nil {
		return "", fmt.Errorf("ocr process: %w", err)
	}
	return strings.Join(pages, "\n\n"), nil
}

func (c *MistralClient) uploadFile(ctx context.Context, fileName string, file io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("purpose", "ocr"); err != nil {
		return "", err
	}
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/files", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("provider returned no file id")
	}
	return resp.ID, nil
}

func (c *MistralClient) signedURL(ctx context.Context, fileID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/files/"+fileID+"/url?expiry=1", nil)
	if err != nil {
		return "", err
	}

	var resp struct {
		URL string `json:"url"`
	}
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	if resp.URL == "" {
		return "", fmt.Errorf("provider returned no signed url")
	}
	return resp.URL, nil
}

func (c *MistralClient) process(ctx context.Context, documentURL string) ([]string, error) {
	payload, err := json.Marshal(map[string]any{
		"model": c.model,
		"document": map[string]any{
			"type":         "document_url",
			"document_url": documentURL,
		},
		"include_image_base64": false,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/ocr", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp struct {
		Pages []struct {
			Markdown string `json:"markdown"`
		} `json:"pages"`
	}
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}

	pages := make([]string, 0, len(resp.Pages))
	for _, page := range resp.Pages {
		pages = append(pages, page.Markdown)
	}
	return pages, nil
}

func (c *MistralClient) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("provider returned %d: %s", res.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return json.NewDecoder(res.Body).Decode(out)
}
