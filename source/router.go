package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/afero"
)

// Router dispatches identifiers to a Retriever by URL scheme. Identifiers
// without a scheme are local paths and use the "file" retriever.
type Router struct {
	retrievers map[string]Retriever
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithFs serves local paths from fs.
func WithFs(fs afero.Fs) RouterOption {
	return func(r *Router) {
		r.retrievers["file"] = NewFileRetriever(fs)
	}
}

// WithHTTPClient fetches http and https URLs with client.
func WithHTTPClient(client *http.Client) RouterOption {
	return func(r *Router) {
		h := NewHTTPRetriever(client)
		r.retrievers["http"] = h
		r.retrievers["https"] = h
	}
}

// WithMaxBytes limits the size of every source served by the built-in
// file and HTTP retrievers.
func WithMaxBytes(n int64) RouterOption {
	return func(r *Router) {
		for _, ret := range r.retrievers {
			switch x := ret.(type) {
			case *FileRetriever:
				x.MaxBytes = n
			case *HTTPRetriever:
				x.MaxBytes = n
			}
		}
	}
}

// WithRetriever serves scheme with ret.
func WithRetriever(scheme string, ret Retriever) RouterOption {
	return func(r *Router) {
		r.retrievers[strings.ToLower(scheme)] = ret
	}
}

// NewRouter returns a router serving local files from the OS filesystem
// and http/https URLs with the default client. Options apply in order.
func NewRouter(opts ...RouterOption) *Router {
	r := &Router{retrievers: map[string]Retriever{}}
	WithFs(nil)(r)
	WithHTTPClient(nil)(r)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Scheme returns the lower-cased URL scheme of id, or "file" for plain paths.
func Scheme(id string) string {
	i := strings.Index(id, "://")
	if i <= 0 {
		return "file"
	}
	return strings.ToLower(id[:i])
}

// Retrieve routes id to the retriever registered for its scheme.
func (r *Router) Retrieve(ctx context.Context, id string) (*Content, error) {
	scheme := Scheme(id)
	ret, ok := r.retrievers[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %q in %s", ErrUnsupportedScheme, scheme, id)
	}
	return ret.Retrieve(ctx, id)
}
