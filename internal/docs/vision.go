package docs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// VisionClient calls the image-annotation service with the TEXT_DETECTION
// feature, keyed by API key.
type VisionClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

const defaultVisionBaseURL = "https://vision.googleapis.com"

func NewVisionClient(apiKey string) *VisionClient {
	return &VisionClient{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		baseURL: defaultVisionBaseURL,
		apiKey:  apiKey,
	}
}

// NewVisionClientWithBaseURL is the test seam.
func NewVisionClientWithBaseURL(apiKey, baseURL string, hc *http.Client) *VisionClient {
	c := NewVisionClient(apiKey)
	c.baseURL = baseURL
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

type annotateImage struct {
	Content string `json:"content"`
}

type annotateFeature struct {
	Type string `json:"type"`
}

type annotateEntry struct {
	Image    annotateImage     `json:"image"`
	Features []annotateFeature `json:"features"`
}

type annotateRequest struct {
	Requests []annotateEntry `json:"requests"`
}

type annotateResponse struct {
	Responses []struct {
		FullTextAnnotation struct {
			Text string `json:"text"`
		} `json:"fullTextAnnotation"`
		TextAnnotations []struct {
			Description string `json:"description"`
		} `json:"textAnnotations"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	} `json:"responses"`
}

// DetectText OCRs one base64-encoded image and returns the extracted text,
// empty when the image simply contains none.
func (c *VisionClient) DetectText(ctx context.Context, imageB64 string) (string, error) {
	reqBody := annotateRequest{
		Requests: []annotateEntry{{
			Image:    annotateImage{Content: imageB64},
			Features: []annotateFeature{{Type: "TEXT_DETECTION"}},
		}},
	}

	encoded, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to encode annotation request: %v", err)
	}

	endpoint := fmt.Sprintf("%s/v1/images:annotate?key=%s", c.baseURL, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("failed to build annotation request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("annotation request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read annotation response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("vision service returned status %d", resp.StatusCode)
	}

	var out annotateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to decode annotation response: %v", err)
	}
	if len(out.Responses) == 0 {
		return "", nil
	}
	page := out.Responses[0]
	if page.Error != nil {
		return "", fmt.Errorf("vision service error: %s", page.Error.Message)
	}
	if page.FullTextAnnotation.Text != "" {
		return page.FullTextAnnotation.Text, nil
	}
	if len(page.TextAnnotations) > 0 {
		return page.TextAnnotations[0].Description, nil
	}
	return "", nil
}
