package attachments

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"tmfstock/internal/blob"
	"tmfstock/pkg/domain"
)

// pngHeader is enough for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestDataURLCodec(t *testing.T) {
	ctx := context.Background()
	codec := DataURLCodec{}
	att, err := codec.Encode(ctx, `C:\scans\bon livraison.png`, "", bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if att.Name != "bon livraison.png" || !strings.HasPrefix(att.Ref, "data:image/png;base64,") {
		t.Fatalf("unexpected attachment %+v", att)
	}
	ct, rc, err := codec.Open(ctx, att.Ref)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	got, _ := io.ReadAll(rc)
	if ct != "image/png" || !bytes.Equal(got, pngHeader) {
		t.Fatalf("round trip mismatch %s %q", ct, got)
	}
	if err := codec.Remove(ctx, att.Ref); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, _, err := codec.Open(ctx, "blob:x"); !errors.Is(err, ErrUnknownRef) {
		t.Fatalf("expected ErrUnknownRef, got %v", err)
	}
	if _, _, err := codec.Open(ctx, "data:image/png;base64,@@@"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestRejectsNonImages(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name        string
		contentType string
		body        string
	}{
		{"declared pdf", "application/pdf", "%PDF-1.7"},
		{"sniffed text", "", "bonjour"},
		{"generic binary sniffed as text", "application/octet-stream", "plain words"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DataURLCodec{}.Encode(ctx, "f", tc.contentType, strings.NewReader(tc.body))
			var ve domain.ValidationError
			if !errors.Is(err, ErrNotImage) || !errors.As(err, &ve) || ve.Message != MsgNotImage {
				t.Fatalf("expected ErrNotImage, got %v", err)
			}
		})
	}
	if _, err := (DataURLCodec{}).Encode(ctx, "f.jpg", "image/jpeg; charset=binary", strings.NewReader("x")); err != nil {
		t.Fatalf("declared image types are trusted: %v", err)
	}
}

func TestSizeLimit(t *testing.T) {
	codec := DataURLCodec{MaxSize: 4}
	if _, err := codec.Encode(context.Background(), "f.png", "image/png", strings.NewReader("12345")); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if _, err := codec.Encode(context.Background(), "f.png", "image/png", strings.NewReader("1234")); err != nil {
		t.Fatalf("at limit should pass: %v", err)
	}
}

func TestBlobCodec(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemory()
	codec := NewBlobCodec(store)
	codec.NewID = func() string { return "0001" }

	att, err := codec.Encode(ctx, "Bon de livraison n°3.png", "image/png", bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if att.Name != "Bon de livraison n°3.png" || att.Ref != "blob:attachments/0001/Bon_de_livraison_n_3.png" {
		t.Fatalf("unexpected attachment %+v", att)
	}
	ct, rc, err := codec.Open(ctx, att.Ref)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	got, _ := io.ReadAll(rc)
	_ = rc.Close()
	if ct != "image/png" || !bytes.Equal(got, pngHeader) {
		t.Fatalf("unexpected blob %s %q", ct, got)
	}

	if _, err := codec.Encode(ctx, "Bon de livraison n°3.png", "image/png", bytes.NewReader(pngHeader)); !errors.Is(err, blob.ErrExists) {
		t.Fatalf("expected key collision, got %v", err)
	}
	if err := codec.Remove(ctx, att.Ref); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, _, err := codec.Open(ctx, att.Ref); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("expected not found after remove, got %v", err)
	}
	if err := codec.Remove(ctx, "data:x"); !errors.Is(err, ErrUnknownRef) {
		t.Fatalf("expected ErrUnknownRef, got %v", err)
	}
}

func TestMuxRoutesByScheme(t *testing.T) {
	ctx := context.Background()
	blobCodec := NewBlobCodec(blob.NewMemory())
	mux := Mux{Primary: blobCodec, Blob: blobCodec}

	stored, err := mux.Encode(ctx, "a.png", "image/png", bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	inline, _ := DataURLCodec{}.Encode(ctx, "b.png", "image/png", bytes.NewReader(pngHeader))
	for _, ref := range []string{stored.Ref, inline.Ref} {
		if _, rc, err := mux.Open(ctx, ref); err != nil {
			t.Fatalf("open %s: %v", ref[:10], err)
		} else {
			_ = rc.Close()
		}
	}
	if _, _, err := mux.Open(ctx, "https://example.com/x.png"); !errors.Is(err, ErrUnknownRef) {
		t.Fatalf("expected ErrUnknownRef, got %v", err)
	}
	if err := (Mux{}).Remove(ctx, "blob:attachments/x"); !errors.Is(err, ErrUnknownRef) {
		t.Fatalf("blob refs without a blob codec are unknown, got %v", err)
	}
	if _, err := (Mux{}).Encode(ctx, "a.png", "image/png", bytes.NewReader(pngHeader)); err == nil {
		t.Fatalf("expected error without primary codec")
	}
}

func TestKeySafeAndDisplayName(t *testing.T) {
	if got := keySafe("..."); got != "file" {
		t.Fatalf("unexpected %q", got)
	}
	if got := displayName("  "); got != "piece-jointe" {
		t.Fatalf("unexpected %q", got)
	}
	if got := displayName("dir/photo.jpg"); got != "photo.jpg" {
		t.Fatalf("unexpected %q", got)
	}
}
