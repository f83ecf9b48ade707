// Package source retrieves raw table content from local files and URLs.
package source

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedScheme is returned for identifiers whose scheme has no retriever
	ErrUnsupportedScheme = errors.New("unsupported source scheme")

	// ErrTooLarge is returned when content exceeds the configured size limit
	ErrTooLarge = errors.New("source exceeds size limit")

	// ErrNotFile is returned when a local path names a directory or device
	ErrNotFile = errors.New("source is not a regular file")
)

// Content is the raw bytes of a source plus what is known about them.
type Content struct {
	// Source is the identifier the content was retrieved from.
	Source string
	Data   []byte
	// MediaType is the MIME type, when known ("text/csv").
	MediaType string
	// Encoding is the transfer encoding reported by the origin ("gzip", "br").
	Encoding string
}

// Size returns the number of bytes retrieved.
func (c *Content) Size() int { return len(c.Data) }

// Retriever fetches the content named by an identifier.
type Retriever interface {
	Retrieve(ctx context.Context, id string) (*Content, error)
}

// RetrieverFunc adapts a function to the Retriever interface.
type RetrieverFunc func(ctx context.Context, id string) (*Content, error)

func (f RetrieverFunc) Retrieve(ctx context.Context, id string) (*Content, error) {
	return f(ctx, id)
}

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %s", e.URL, e.Status)
}
