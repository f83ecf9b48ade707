package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const peopleCSV = "name,age\nAlice,30\nBob,25\n"

func memFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, data := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(data), 0o644))
	}
	return fs
}

func TestFileRetriever(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/data/people.csv":    peopleCSV,
		"/data/people.csv.gz": "\x1f\x8b",
		"/data/blob":          "x",
	})
	r := NewFileRetriever(fs)

	tests := []struct {
		name      string
		id        string
		wantType  string
		wantBytes int
	}{
		{"plain path", "/data/people.csv", "text/csv", len(peopleCSV)},
		{"file url", "file:///data/people.csv", "text/csv", len(peopleCSV)},
		{"compressed suffix", "/data/people.csv.gz", "text/csv", 2},
		{"no extension", "/data/blob", "", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := r.Retrieve(context.Background(), tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.id, c.Source)
			assert.Equal(t, tt.wantType, c.MediaType)
			assert.Equal(t, tt.wantBytes, c.Size())
		})
	}
}

func TestFileRetriever_Errors(t *testing.T) {
	fs := memFs(t, map[string]string{"/data/people.csv": peopleCSV})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewFileRetriever(fs).Retrieve(context.Background(), "/data/missing.csv")
		assert.Error(t, err)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := NewFileRetriever(fs).Retrieve(context.Background(), "/data")
		assert.ErrorIs(t, err, ErrNotFile)
	})

	t.Run("too large", func(t *testing.T) {
		r := NewFileRetriever(fs)
		r.MaxBytes = 4
		_, err := r.Retrieve(context.Background(), "/data/people.csv")
		assert.ErrorIs(t, err, ErrTooLarge)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewFileRetriever(fs).Retrieve(ctx, "/data/people.csv")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestHTTPRetriever(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/people.csv":
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			_, _ = w.Write([]byte(peopleCSV))
		case "/people.csv.br":
			w.Header().Set("Content-Type", "text/csv")
			w.Header().Set("Content-Encoding", "br")
			_, _ = w.Write([]byte("compressed"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	r := NewHTTPRetriever(srv.Client())

	c, err := r.Retrieve(context.Background(), srv.URL+"/people.csv")
	require.NoError(t, err)
	assert.Equal(t, peopleCSV, string(c.Data))
	assert.Equal(t, "text/csv", c.MediaType)
	assert.Equal(t, "", c.Encoding)
	assert.Equal(t, DefaultUserAgent, gotUA)

	c, err = r.Retrieve(context.Background(), srv.URL+"/people.csv.br")
	require.NoError(t, err)
	assert.Equal(t, "br", c.Encoding)

	_, err = r.Retrieve(context.Background(), srv.URL+"/missing.csv")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)

	r.MaxBytes = 5
	_, err = r.Retrieve(context.Background(), srv.URL+"/people.csv")
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestHTTPRetriever_Cancelled(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewHTTPRetriever(srv.Client()).Retrieve(ctx, srv.URL+"/slow.csv")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRouter(t *testing.T) {
	fs := memFs(t, map[string]string{"data/people.csv": peopleCSV})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("from http"))
	}))
	defer srv.Close()

	var memCalls int
	router := NewRouter(
		WithFs(fs),
		WithHTTPClient(srv.Client()),
		WithRetriever("mem", RetrieverFunc(func(ctx context.Context, id string) (*Content, error) {
			memCalls++
			return &Content{Source: id, Data: []byte("mem")}, nil
		})),
	)

	c, err := router.Retrieve(context.Background(), "data/people.csv")
	require.NoError(t, err)
	assert.Equal(t, peopleCSV, string(c.Data))

	c, err = router.Retrieve(context.Background(), srv.URL+"/x.csv")
	require.NoError(t, err)
	assert.Equal(t, "from http", string(c.Data))

	c, err = router.Retrieve(context.Background(), "MEM://anything")
	require.NoError(t, err)
	assert.Equal(t, "mem", string(c.Data))
	assert.Equal(t, 1, memCalls)

	_, err = router.Retrieve(context.Background(), "s3://bucket/key.csv")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
	assert.True(t, strings.Contains(err.Error(), `"s3"`))
}

func TestRouter_MaxBytes(t *testing.T) {
	fs := memFs(t, map[string]string{"/p.csv": peopleCSV})
	router := NewRouter(WithFs(fs), WithMaxBytes(3))
	_, err := router.Retrieve(context.Background(), "/p.csv")
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestScheme(t *testing.T) {
	tests := map[string]string{
		"./data/x.csv":       "file",
		"/abs/x.csv":         "file",
		"file:///abs/x.csv":  "file",
		"https://host/x.csv": "https",
		"HTTP://host/x.csv":  "http",
		"://weird":           "file",
		`C:\Users\me\people.csv`: "file",
	}
	for id, want := range tests {
		assert.Equal(t, want, Scheme(id), id)
	}
}
