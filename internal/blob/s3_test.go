package blob

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestPutStoresObjectAndReturnsURL(t *testing.T) {
	store, state := NewMockForTests()

	payload := []byte("fake png bytes")
	url, err := store.Put(context.Background(), "recipes/1/cover.png", bytes.NewReader(payload), "image/png")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	if url != "https://mock.s3.local/mock-bucket/recipes/1/cover.png" {
		t.Fatalf("unexpected object URL %q", url)
	}

	got, ok := state.Object("recipes/1/cover.png")
	if !ok {
		t.Fatalf("object not stored; state has %d objects", state.Len())
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("stored bytes differ: got %q", got)
	}
}

func TestPutWithoutContentType(t *testing.T) {
	store, state := NewMockForTests()

	if _, err := store.Put(context.Background(), "recipes/2/raw", strings.NewReader("data"), ""); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if state.Len() != 1 {
		t.Fatalf("expected 1 stored object, got %d", state.Len())
	}
}

func TestObjectURLDefaultsToVirtualHostedStyle(t *testing.T) {
	s := &S3Store{bucket: "margofoods-images", region: "eu-west-1"}

	got := s.objectURL("recipes/7/cover.jpg")
	want := "https://margofoods-images.s3.eu-west-1.amazonaws.com/recipes/7/cover.jpg"
	if got != want {
		t.Fatalf("objectURL = %q, want %q", got, want)
	}
}

func TestNewS3RequiresBucket(t *testing.T) {
	if _, err := NewS3(context.Background(), S3Config{}); err == nil {
		t.Fatal("expected error for missing bucket")
	}
}
