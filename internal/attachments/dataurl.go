package attachments

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"tmfstock/pkg/domain"
)

// DataURLCodec inlines the image as a base64 data URL in the ref.
type DataURLCodec struct {
	MaxSize int64
}

func (c DataURLCodec) Encode(_ context.Context, name, contentType string, r io.Reader) (domain.Attachment, error) {
	data, ct, err := readImage(r, contentType, c.MaxSize)
	if err != nil {
		return domain.Attachment{}, err
	}
	ref := "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(data)
	return domain.Attachment{Name: displayName(name), Ref: ref}, nil
}

func (DataURLCodec) Open(_ context.Context, ref string) (string, io.ReadCloser, error) {
	rest, ok := strings.CutPrefix(ref, "data:")
	if !ok {
		return "", nil, ErrUnknownRef
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: malformed data url", ErrUnknownRef)
	}
	ct, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return ct, nopCloser([]byte(payload)), nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data url: %w", err)
	}
	return ct, nopCloser(data), nil
}

// Remove is a no-op: the bytes live in the ref itself.
func (DataURLCodec) Remove(context.Context, string) error { return nil }
