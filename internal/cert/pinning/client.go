// Package pinning talks to a Pinata-compatible IPFS pinning service.
// Certificate documents are pinned as JSON and addressed by their
// content hash, with an HTTP gateway used for reads.
package pinning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Scheme is the URI scheme prefix for pinned content.
const Scheme = "ipfs://"

const (
	defaultBaseURL    = "https://api.pinata.cloud"
	defaultGatewayURL = "https://gateway.pinata.cloud"
)

// Client is a client for the pinning service. The zero value is not
// usable, construct it with NewClient.
type Client struct {
	BaseURL    string
	GatewayURL string
	HTTPClient *http.Client

	apiKey    string
	secretKey string
}

// NewClient creates a pinning client. Empty baseURL or gatewayURL fall
// back to the public Pinata endpoints.
func NewClient(baseURL, gatewayURL, apiKey, secretKey string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if gatewayURL == "" {
		gatewayURL = defaultGatewayURL
	}
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		GatewayURL: strings.TrimSuffix(gatewayURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		apiKey:     apiKey,
		secretKey:  secretKey,
	}
}

// Error is a failed pinning service response.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("pinning: service returned %d: %s", e.StatusCode, e.Message)
}

// pinRequest is the pinJSONToIPFS payload. Metadata names the pin in
// the Pinata dashboard, the content itself lives under pinataContent.
type pinRequest struct {
	Metadata   pinMetadata `json:"pinataMetadata"`
	Content    any         `json:"pinataContent"`
	PinataOpts pinOptions  `json:"pinataOptions"`
}

type pinMetadata struct {
	Name string `json:"name"`
}

type pinOptions struct {
	CidVersion int `json:"cidVersion"`
}

type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int    `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

// PinJSON pins the document and returns its URI in ipfs://<hash> form.
func (c *Client) PinJSON(ctx context.Context, name string, document any) (string, error) {
	payload, err := json.Marshal(pinRequest{
		Metadata: pinMetadata{Name: name},
		Content:  document,
	})
	if err != nil {
		return "", fmt.Errorf("pinning: encode document: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/pinning/pinJSONToIPFS", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("pinning: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuth(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("pinning: send request: %w", err)
	}

	var out pinResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return "", err
	}
	if out.IpfsHash == "" {
		return "", &Error{StatusCode: resp.StatusCode, Message: "response missing IpfsHash"}
	}

	return WithScheme(out.IpfsHash), nil
}

// Fetch retrieves pinned content through the gateway by bare hash or
// ipfs:// URI and returns the raw document bytes.
func (c *Client) Fetch(ctx context.Context, hash string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.GatewayURL+"/ipfs/"+StripScheme(hash), nil)
	if err != nil {
		return nil, fmt.Errorf("pinning: create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pinning: send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("pinning: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &Error{StatusCode: resp.StatusCode, Message: trimBody(body)}
	}

	return body, nil
}

func (c *Client) setAuth(req *http.Request) {
	req.Header.Set("pinata_api_key", c.apiKey)
	req.Header.Set("pinata_secret_api_key", c.secretKey)
}

func decodeJSON(resp *http.Response, target any, expectedStatus int) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("pinning: read response: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		return &Error{StatusCode: resp.StatusCode, Message: trimBody(body)}
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("pinning: decode response: %w", err)
	}
	return nil
}

func trimBody(body []byte) string {
	msg := strings.TrimSpace(string(body))
	if len(msg) > 256 {
		msg = msg[:256]
	}
	return msg
}

// WithScheme prefixes a bare hash with ipfs://. Already-prefixed input
// passes through unchanged.
func WithScheme(hash string) string {
	if strings.HasPrefix(hash, Scheme) {
		return hash
	}
	return Scheme + hash
}

// StripScheme removes a leading ipfs:// prefix. The ledger stores bare
// hashes, while clients are shown the URI form.
func StripScheme(uri string) string {
	return strings.TrimPrefix(uri, Scheme)
}
