package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Client talks to the upstream API of record. Every domain entity (notes,
// quizzes, flashcards, users) lives there; this process only relays.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// APIError is a non-2xx answer from the upstream, with whatever JSON body it
// sent decoded for error translation.
type APIError struct {
	Status int
	Body   map[string]interface{}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.Status)
}

// New creates an upstream client. The base URL covers both the identity
// endpoints and the versioned domain endpoints.
func New(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// NewWithHTTPClient is the test seam.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	c := New(baseURL)
	c.httpClient = hc
	return c
}

// do performs one JSON round trip. token, body and out are all optional.
// The Authorization scheme is always Bearer; the upstream accepts it on every
// route.
func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	status, data, err := c.DoRaw(ctx, method, path, token, body)
	if err != nil {
		return err
	}

	if status < 200 || status >= 300 {
		apiErr := &APIError{Status: status, Body: map[string]interface{}{}}
		if len(data) > 0 {
			// Best effort: a non-JSON error body still yields a usable APIError.
			_ = json.Unmarshal(data, &apiErr.Body)
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode upstream response: %v", err)
	}
	return nil
}

// DoRaw performs a round trip and hands back the raw status and body, for
// routes that relay the upstream answer verbatim.
func (c *Client) DoRaw(ctx context.Context, method, path, token string, body interface{}) (int, []byte, error) {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		if len(b) > 0 {
			reader = bytes.NewReader(b)
		}
	default:
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build upstream request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[UPSTREAM] %s %s failed: %v", method, path, err)
		return 0, nil, fmt.Errorf("upstream request failed: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read upstream response: %v", err)
	}
	return resp.StatusCode, data, nil
}
