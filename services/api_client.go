package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"tripmate/utils/errors"
)

// TokenSource supplies the bearer token for authenticated requests.
// An empty token means no Authorization header is sent.
type TokenSource interface {
	Token() string
}

// APIClient is the only component that talks to the remote service. Every
// call is a fresh request: nothing is retried, cached or deduplicated.
type APIClient struct {
	baseURL    string
	httpClient *http.Client

	mu     sync.RWMutex
	tokens TokenSource
}

// NewAPIClient returns a client for the remote service at baseURL. A nil
// httpClient uses a client without a timeout, leaving hangs to the transport.
func NewAPIClient(baseURL string, httpClient *http.Client) *APIClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// SetTokenSource wires the session that owns the bearer token.
func (c *APIClient) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	c.tokens = ts
	c.mu.Unlock()
}

func (c *APIClient) token() string {
	c.mu.RLock()
	ts := c.tokens
	c.mu.RUnlock()
	if ts == nil {
		return ""
	}
	return ts.Token()
}

type request struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	// public requests never carry the bearer token
	public bool
	// kind is assigned to every failure of this request
	kind errors.Kind
}

func (c *APIClient) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, request{method: http.MethodGet, path: path, kind: errors.KindRequest}, out)
}

func (c *APIClient) sendJSON(ctx context.Context, method, path string, in, out any) error {
	req := request{method: method, path: path, kind: errors.KindRequest}
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "ENCODE_ERROR", "Failed to encode request", http.StatusBadRequest)
		}
		req.body = bytes.NewReader(data)
		req.contentType = "application/json"
	}
	return c.do(ctx, req, out)
}

func (c *APIClient) do(ctx context.Context, r request, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		return errors.Wrap(err, "BAD_REQUEST", errors.GenericMessage, http.StatusBadRequest).WithKind(r.kind)
	}
	requestID := uuid.New().String()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if r.contentType != "" {
		httpReq.Header.Set("Content-Type", r.contentType)
	}
	if !r.public {
		if token := c.token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Printf("api %s %s failed after %v (request_id=%s): %v", r.method, r.path, time.Since(start), requestID, err)
		return errors.NewAPIError("NETWORK_ERROR", errors.GenericMessage, http.StatusBadGateway, err.Error()).WithKind(r.kind)
	}
	defer resp.Body.Close()
	log.Printf("api %s %s -> %d in %v (request_id=%s)", r.method, r.path, resp.StatusCode, time.Since(start), requestID)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewAPIError("READ_ERROR", errors.GenericMessage, resp.StatusCode, err.Error()).WithKind(r.kind)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data).WithKind(r.kind)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.NewAPIError("DECODE_ERROR", errors.GenericMessage, resp.StatusCode, err.Error()).WithKind(r.kind)
	}
	return nil
}

// decodeError turns a non-success response into an APIError. The remote's
// {"detail": "..."} message is used when present; anything else, including a
// structured validation detail, falls back to the generic message.
func decodeError(status int, data []byte) *errors.APIError {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	message := errors.GenericMessage
	if err := json.Unmarshal(data, &body); err == nil && len(body.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(body.Detail, &detail); err == nil && strings.TrimSpace(detail) != "" {
			message = detail
		}
	}
	return errors.NewAPIError(codeForStatus(status), message, status, strings.TrimSpace(string(data)))
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return errors.ErrInvalidInput.Code
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.ErrUnauthorized.Code
	case http.StatusNotFound:
		return errors.ErrNotFound.Code
	case http.StatusConflict:
		return errors.ErrConflict.Code
	}
	if status >= 500 {
		return "SERVER_ERROR"
	}
	return "REQUEST_FAILED"
}

func tripPath(tripID int, rest ...string) string {
	p := fmt.Sprintf("/trips/%d", tripID)
	for _, seg := range rest {
		p += "/" + url.PathEscape(seg)
	}
	return p
}
