package material

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Fetcher produces the raw bytes of a texture. The engine never dials the
// network itself; the host injects whatever transport it uses and bounds
// fetch time through the context.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// FileFetcher resolves texture URLs as paths relative to a base directory.
// Used by the render tool, where textures live next to the project file.
type FileFetcher struct {
	BaseDir string
}

// Fetch opens the texture file for url.
func (f FileFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := url
	if !filepath.IsAbs(path) {
		path = filepath.Join(f.BaseDir, path)
	}
	r, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture %s: %w", url, err)
	}
	return r, nil
}
