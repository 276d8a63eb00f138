package providers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
)

// maxResponseBytes caps how much of a vendor response is read. Vendors return
// small JSON documents; anything larger is misbehavior.
const maxResponseBytes = 4 << 20

// PostJSON sends a JSON POST and returns the status code and raw body. A
// non-2xx status is not an error at this layer; protocol adapters decide what
// each status means.
func PostJSON(ctx context.Context, client *http.Client, url, apiKey string, body interface{}) (int, []byte, error) {
	encoded, err := sonic.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	applyAuth(req, apiKey)

	return doRequest(client, req)
}

// GetJSON sends a GET and returns the status code and raw body.
func GetJSON(ctx context.Context, client *http.Client, url, apiKey string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	applyAuth(req, apiKey)

	return doRequest(client, req)
}

// DecodePayload parses a vendor JSON body into a generic object.
func DecodePayload(body []byte) (map[string]interface{}, error) {
	var payload map[string]interface{}
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode response body: %w", err)
	}
	return payload, nil
}

func applyAuth(req *http.Request, apiKey string) {
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
}

func doRequest(client *http.Client, req *http.Request) (int, []byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("call %s: %w", req.URL.Host, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response body: %w", err)
	}
	return resp.StatusCode, body, nil
}

// JoinURL appends a path segment to a base URL without doubling slashes.
func JoinURL(base string, segments ...string) string {
	url := strings.TrimSuffix(base, "/")
	for _, s := range segments {
		url += "/" + strings.Trim(s, "/")
	}
	return url
}
