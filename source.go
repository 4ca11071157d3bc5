package emojimaker

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"net/http"

	"github.com/esimov/emojimaker/utils"
)

// Source opens the raw content of a layer.
type Source interface {
	Open(ctx context.Context, l Layer) (io.ReadCloser, error)
}

// GallerySource resolves local layers against a file system
// and downloads the remote ones.
type GallerySource struct {
	FS     fs.FS
	Client *http.Client
}

var errNoFS = errors.New("no file system to resolve the local layer")

// Open implements the Source interface.
func (s GallerySource) Open(ctx context.Context, l Layer) (io.ReadCloser, error) {
	if l.Remote() {
		data, err := utils.DownloadImage(ctx, s.Client, l.Path)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	if s.FS == nil {
		return nil, errNoFS
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.FS.Open(l.Path)
}
