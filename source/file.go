package source

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// FileRetriever reads sources from a filesystem. Identifiers are paths,
// optionally prefixed with "file://".
type FileRetriever struct {
	Fs afero.Fs
	// MaxBytes caps the file size; zero means no limit.
	MaxBytes int64
}

// NewFileRetriever returns a retriever over fs, or over the OS filesystem
// when fs is nil.
func NewFileRetriever(fs afero.Fs) *FileRetriever {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FileRetriever{Fs: fs}
}

// Retrieve reads the whole file. The context is checked before and after
// the read.
func (r *FileRetriever) Retrieve(ctx context.Context, id string) (*Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := strings.TrimPrefix(id, "file://")
	info, err := r.Fs.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrNotFile, path)
	}
	if r.MaxBytes > 0 && info.Size() > r.MaxBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes (max %d)", ErrTooLarge, path, info.Size(), r.MaxBytes)
	}

	data, err := afero.ReadFile(r.Fs, path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Content{
		Source:    id,
		Data:      data,
		MediaType: mediaTypeByExtension(path),
	}, nil
}

// mediaTypeByExtension guesses a MIME type from the file name, ignoring a
// trailing compression suffix.
func mediaTypeByExtension(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gz", ".zst", ".lz4", ".br":
		ext = strings.ToLower(filepath.Ext(strings.TrimSuffix(path, filepath.Ext(path))))
	}
	switch ext {
	case ".csv":
		return "text/csv"
	case ".tsv":
		return "text/tab-separated-values"
	case ".parquet":
		return "application/vnd.apache.parquet"
	case "":
		return ""
	}
	if mt, _, err := mime.ParseMediaType(mime.TypeByExtension(ext)); err == nil {
		return mt
	}
	return ""
}
