package blob

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoragePutGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	if err := s.Put(ctx, "doc-1/paper.pdf", []byte("hello"), "application/pdf"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	data, err := s.Get(ctx, "doc-1/paper.pdf")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("data = %q, want %q", data, "hello")
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestMemoryStorageGetMissing(t *testing.T) {
	s := NewMemoryStorage()
	_, err := s.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStorageCopiesData(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	src := []byte("original")
	if err := s.Put(ctx, "k", src, "text/plain"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	src[0] = 'X'

	data, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != "original" {
		t.Errorf("stored data mutated through caller slice: %q", data)
	}
}
