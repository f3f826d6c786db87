package docs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"
)

// ConvertClient calls the document-conversion service: one multipart upload
// in, a list of base64-encoded page images out. The service is keyed by a
// secret passed as a query parameter.
type ConvertClient struct {
	httpClient *http.Client
	baseURL    string
	secret     string
}

const defaultConvertBaseURL = "https://v2.convertapi.com"

func NewConvertClient(secret string) *ConvertClient {
	return &ConvertClient{
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		baseURL: defaultConvertBaseURL,
		secret:  secret,
	}
}

// NewConvertClientWithBaseURL is the test seam.
func NewConvertClientWithBaseURL(secret, baseURL string, hc *http.Client) *ConvertClient {
	c := NewConvertClient(secret)
	c.baseURL = baseURL
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

type convertResponse struct {
	Files []struct {
		FileName string `json:"FileName"`
		FileData string `json:"FileData"`
	} `json:"Files"`
}

// Convert uploads the document and returns one base64 PNG per page.
func (c *ConvertClient) Convert(ctx context.Context, filename, sourceFormat string, data []byte) ([]string, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("File", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload form: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write upload form: %v", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("failed to close upload form: %v", err)
	}

	endpoint := fmt.Sprintf("%s/convert/%s/to/png?Secret=%s", c.baseURL, sourceFormat, url.QueryEscape(c.secret))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to build conversion request: %v", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("conversion request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read conversion response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("conversion service returned status %d", resp.StatusCode)
	}

	var out convertResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode conversion response: %v", err)
	}

	pages := make([]string, 0, len(out.Files))
	for _, f := range out.Files {
		if f.FileData != "" {
			pages = append(pages, f.FileData)
		}
	}
	return pages, nil
}
