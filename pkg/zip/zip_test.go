package zip

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
)

func TestArchiveAssets(t *testing.T) {
	out := ArchiveAssets([]Asset{
		{Filename: "artwork.png", MIME: "image/png", Data: []byte("png-bytes")},
		{Filename: "mockup_hoodie_front.png", MIME: "image/png", Data: []byte("more-bytes")},
	})
	if out == nil {
		t.Fatal("ArchiveAssets returned nil")
	}

	zr, err := zip.NewReader(bytes.NewReader(out), int64(len(out)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("entries = %d, want 2", len(zr.File))
	}
	rc, err := zr.File[0].Open()
	if err != nil {
		t.Fatalf("open entry: %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read entry: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Fatalf("entry data = %q", data)
	}
}
