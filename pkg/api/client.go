package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Client talks to the remote manga server. Every call returns a Result whose
// envelope classifies success or failure; transport errors are folded into a
// synthesized error envelope so callers never see a raw *url.Error.
type Client struct {
	baseURL string
	token   func() string
	http    *http.Client
	log     *log.Logger
}

func NewClient(baseURL string, token func() string, logger *log.Logger) *Client {
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     logger,
	}
}

// Authenticated reports whether the client will send a bearer token.
// Authenticated fetches carry the caller's progress data.
func (c *Client) Authenticated() bool {
	return c.token() != ""
}

func (c *Client) url(path string, params url.Values) string {
	u := fmt.Sprintf("%s/%s", c.baseURL, strings.TrimPrefix(path, "/"))
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// request performs one API call and decodes the enveloped response. The
// returned envelope always classifies the outcome; err is never propagated
// past this boundary.
func request[T any](ctx context.Context, c *Client, method, path string, params url.Values, body any) Result[T] {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return clientError[T](c, method, path, err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path, params), reader)
	if err != nil {
		return clientError[T](c, method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if t := c.token(); t != "" {
		req.Header.Set("Authorization", "Bearer "+t)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return clientError[T](c, method, path, err)
	}
	defer resp.Body.Close()

	// Error responses carry the same envelope shape, so decode either way.
	var result Result[T]
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return clientError[T](c, method, path, err)
	}

	if c.log != nil {
		c.log.Debug("api request",
			"method", method, "path", path,
			"code", result.Code, "elapsed", time.Since(start))
	}
	return result
}

// clientError synthesizes an error envelope for failures that never reached
// the server, mirroring what the server would have sent.
func clientError[T any](c *Client, method, path string, err error) Result[T] {
	if c.log != nil {
		c.log.Warn("api request failed", "method", method, "path", path, "error", err)
	}
	return Result[T]{Envelope: Envelope{
		Type:        "error",
		Code:        500,
		Description: err.Error(),
		Errors:      []string{err.Error()},
		RequestID:   "client-" + uuid.NewString(),
	}}
}
