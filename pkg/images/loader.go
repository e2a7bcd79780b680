package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// ErrAborted reports that a fetch was cancelled because a newer fetch
// superseded it.
var ErrAborted = errors.New("image fetch aborted")

// Fetched is one downloaded image.
type Fetched struct {
	Data        []byte
	ContentType string
	Duration    time.Duration
}

// Loader fetches page images one at a time. Triggering a fetch while another
// is in flight hard-aborts the previous one first; the reader points the
// loader at whatever page the user is on and stale downloads die early.
type Loader struct {
	mu     sync.Mutex
	client *http.Client
	cancel context.CancelFunc
	gen    int
}

func NewLoader() *Loader {
	return &Loader{client: &http.Client{Timeout: 60 * time.Second}}
}

// Fetch downloads the image at url. The previous in-flight fetch, if any, is
// aborted before this one starts.
func (l *Loader) Fetch(ctx context.Context, url string) (*Fetched, error) {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.gen++
	gen := l.gen
	l.mu.Unlock()

	// Only clear the registration if no newer fetch has replaced it.
	defer func() {
		cancel()
		l.mu.Lock()
		if l.gen == gen {
			l.cancel = nil
		}
		l.mu.Unlock()
	}()

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build image request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ErrAborted
		}
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status for image: %s", resp.Status)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ErrAborted
		}
		return nil, fmt.Errorf("failed to read image content: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	return &Fetched{
		Data:        content,
		ContentType: contentType,
		Duration:    time.Since(start),
	}, nil
}

// Abort cancels the in-flight fetch, if any.
func (l *Loader) Abort() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}
