// Package attachments turns uploaded receipt images into the opaque
// {name, ref} handle recorded on ENTREE movements, and resolves handles back
// to their bytes.
package attachments

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"tmfstock/pkg/domain"
)

// Rejection messages shown to the operator.
const (
	MsgNotImage = "Le fichier doit être une image (JPG, PNG, etc.)."
	MsgTooLarge = "Le fichier dépasse la taille maximale autorisée."
)

var (
	ErrNotImage = domain.ValidationError{Field: "attachment", Message: MsgNotImage}
	ErrTooLarge = domain.ValidationError{Field: "attachment", Message: MsgTooLarge}

	// ErrUnknownRef is returned when a ref was not produced by the codec.
	ErrUnknownRef = errors.New("attachments: unrecognised reference")
)

// DefaultMaxSize bounds an upload.
const DefaultMaxSize int64 = 5 << 20

// Codec encodes uploads into attachment handles and resolves them.
type Codec interface {
	Encode(ctx context.Context, name, contentType string, r io.Reader) (domain.Attachment, error)
	// Open returns the content type and bytes behind ref.
	Open(ctx context.Context, ref string) (string, io.ReadCloser, error)
	// Remove releases the storage behind ref. Used to undo an encode whose
	// movement was rejected.
	Remove(ctx context.Context, ref string) error
}

// readImage reads at most max bytes and returns them with the effective
// content type. Declared types are trusted unless absent or generic, in which
// case the bytes are sniffed.
func readImage(r io.Reader, contentType string, max int64) ([]byte, string, error) {
	if max <= 0 {
		max = DefaultMaxSize
	}
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > max {
		return nil, "", ErrTooLarge
	}
	ct := mediaType(contentType)
	if ct == "" || ct == "application/octet-stream" {
		ct = mediaType(http.DetectContentType(data))
	}
	if !strings.HasPrefix(ct, "image/") {
		return nil, "", ErrNotImage
	}
	return data, ct, nil
}

func mediaType(ct string) string {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(ct))
	}
	return mt
}

// displayName keeps the last path element of the client file name.
func displayName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if name == "" || name == "." || name == ".." {
		return "piece-jointe"
	}
	return name
}

func nopCloser(b []byte) io.ReadCloser { return io.NopCloser(bytes.NewReader(b)) }
