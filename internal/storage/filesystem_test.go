package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func newStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return store
}

func TestWriteAndExists(t *testing.T) {
	store := newStore(t)

	key, err := store.Write(context.Background(), "videos/abc.mp4", []byte("data"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if key != "videos/abc.mp4" {
		t.Fatalf("key = %q", key)
	}
	if !store.Exists(key) {
		t.Fatalf("Exists(%q) = false after write", key)
	}
	if store.Exists("videos/missing.mp4") {
		t.Fatalf("Exists reported a missing file")
	}
	// Directories are not files.
	if store.Exists("videos") {
		t.Fatalf("Exists reported a directory")
	}
}

func TestWriteFromStreams(t *testing.T) {
	store := newStore(t)

	key, err := store.WriteFrom(context.Background(), "uploads/a.wav", bytes.NewReader([]byte("wav-bytes")))
	if err != nil {
		t.Fatalf("WriteFrom: %v", err)
	}
	path, err := store.Path(key)
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "wav-bytes" {
		t.Fatalf("content = %q", data)
	}
}

func TestPathRejectsTraversal(t *testing.T) {
	store := newStore(t)

	for _, key := range []string{"", "   ", ".", "../outside", "a/../../outside"} {
		if _, err := store.Path(key); err == nil {
			t.Fatalf("Path(%q) accepted an escaping key", key)
		}
	}

	// Leading slashes and backslashes are normalized, not rejected.
	path, err := store.Path("/videos\\abc.mp4")
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	want := filepath.Join(store.BasePath(), "videos", "abc.mp4")
	if path != want {
		t.Fatalf("path = %q, want %q", path, want)
	}
}

func TestRemoveMissingIsNoError(t *testing.T) {
	store := newStore(t)
	if err := store.Remove("videos/nothing.mp4"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
}

func TestRemoveAllClearsTree(t *testing.T) {
	store := newStore(t)
	if _, err := store.Write(context.Background(), "temp/job1/slice.wav", []byte("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := store.RemoveAll("temp/job1"); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}
	if store.Exists("temp/job1/slice.wav") {
		t.Fatalf("tree survived RemoveAll")
	}
}

func TestEnsureDir(t *testing.T) {
	store := newStore(t)
	dir, err := store.EnsureDir("temp/job2")
	if err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("EnsureDir did not create %q: %v", dir, err)
	}
}
