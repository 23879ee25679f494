package attachments

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"tmfstock/internal/blob"
	"tmfstock/pkg/domain"
)

const blobScheme = "blob:"

// BlobCodec stores the image in a blob store under attachments/<uuid>/<name>
// and returns "blob:<key>" as the ref.
type BlobCodec struct {
	Store   blob.Store
	MaxSize int64
	// NewID overrides the key id generator.
	NewID func() string
}

// NewBlobCodec wraps store.
func NewBlobCodec(store blob.Store) *BlobCodec {
	return &BlobCodec{Store: store, MaxSize: DefaultMaxSize, NewID: uuid.NewString}
}

func (c *BlobCodec) Encode(ctx context.Context, name, contentType string, r io.Reader) (domain.Attachment, error) {
	data, ct, err := readImage(r, contentType, c.MaxSize)
	if err != nil {
		return domain.Attachment{}, err
	}
	newID := c.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	display := displayName(name)
	key := path.Join("attachments", newID(), keySafe(display))
	if _, err := c.Store.Put(ctx, key, bytes.NewReader(data), blob.PutOptions{
		ContentType: ct,
		Metadata:    map[string]string{"name": display},
	}); err != nil {
		return domain.Attachment{}, err
	}
	return domain.Attachment{Name: display, Ref: blobScheme + key}, nil
}

func (c *BlobCodec) Open(ctx context.Context, ref string) (string, io.ReadCloser, error) {
	key, ok := strings.CutPrefix(ref, blobScheme)
	if !ok || key == "" {
		return "", nil, ErrUnknownRef
	}
	info, rc, err := c.Store.Get(ctx, key)
	if err != nil {
		return "", nil, err
	}
	return info.ContentType, rc, nil
}

func (c *BlobCodec) Remove(ctx context.Context, ref string) error {
	key, ok := strings.CutPrefix(ref, blobScheme)
	if !ok {
		return ErrUnknownRef
	}
	return c.Store.Delete(ctx, key)
}

// keySafe maps a display name to a key segment of [A-Za-z0-9._-].
func keySafe(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	s := strings.Trim(b.String(), ".")
	if s == "" {
		return "file"
	}
	return s
}

// Mux routes Open and Remove by ref scheme so refs written by either codec
// stay readable after the encode mode changes. Encode uses Primary.
type Mux struct {
	Primary Codec
	DataURL DataURLCodec
	Blob    *BlobCodec
}

func (m Mux) Encode(ctx context.Context, name, contentType string, r io.Reader) (domain.Attachment, error) {
	if m.Primary == nil {
		return domain.Attachment{}, errors.New("attachments: no encoder configured")
	}
	return m.Primary.Encode(ctx, name, contentType, r)
}

func (m Mux) Open(ctx context.Context, ref string) (string, io.ReadCloser, error) {
	codec, err := m.route(ref)
	if err != nil {
		return "", nil, err
	}
	return codec.Open(ctx, ref)
}

func (m Mux) Remove(ctx context.Context, ref string) error {
	codec, err := m.route(ref)
	if err != nil {
		return err
	}
	return codec.Remove(ctx, ref)
}

func (m Mux) route(ref string) (Codec, error) {
	switch {
	case strings.HasPrefix(ref, "data:"):
		return m.DataURL, nil
	case strings.HasPrefix(ref, blobScheme) && m.Blob != nil:
		return m.Blob, nil
	}
	return nil, ErrUnknownRef
}
