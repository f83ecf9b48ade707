package source

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
)

// DefaultUserAgent is sent when HTTPRetriever.UserAgent is empty.
const DefaultUserAgent = "tyr"

// HTTPRetriever fetches sources over HTTP(S) with a GET request.
type HTTPRetriever struct {
	Client    *http.Client
	UserAgent string
	// MaxBytes caps the response body; zero means no limit.
	MaxBytes int64
}

// NewHTTPRetriever returns a retriever using client, or
// http.DefaultClient when client is nil.
func NewHTTPRetriever(client *http.Client) *HTTPRetriever {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPRetriever{Client: client, UserAgent: DefaultUserAgent}
}

// Retrieve downloads the body at url. Any non-2xx status is an error.
func (r *HTTPRetriever) Retrieve(ctx context.Context, url string) (*Content, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	ua := r.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body := io.Reader(resp.Body)
	if r.MaxBytes > 0 {
		body = io.LimitReader(resp.Body, r.MaxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	if r.MaxBytes > 0 && int64(len(data)) > r.MaxBytes {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", ErrTooLarge, url, r.MaxBytes)
	}

	mediaType := ""
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err == nil {
			mediaType = mt
		}
	}

	return &Content{
		Source:    url,
		Data:      data,
		MediaType: mediaType,
		Encoding:  resp.Header.Get("Content-Encoding"),
	}, nil
}
