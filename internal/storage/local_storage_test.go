package storage

import (
	"context"
	"os"
	"strings"
	"testing"

	"match-go/internal/config"
)

func newTestStorage(t *testing.T) *LocalStorageService {
	t.Helper()
	cfg := config.StorageConfig{LocalPath: t.TempDir()}
	svc, err := NewLocalStorageService(cfg, "/uploads")
	if err != nil {
		t.Fatalf("NewLocalStorageService failed: %v", err)
	}
	return svc.(*LocalStorageService)
}

func TestUploadFile(t *testing.T) {
	svc := newTestStorage(t)
	content := "fake png bytes"

	info, err := svc.UploadFile(context.Background(), strings.NewReader(content), int64(len(content)), "avatar.png", "image/png")
	if err != nil {
		t.Fatalf("UploadFile failed: %v", err)
	}

	if !strings.HasPrefix(info.URL, "/uploads/") {
		t.Errorf("URL = %q, want /uploads/ prefix", info.URL)
	}
	if !strings.HasSuffix(info.URL, ".png") {
		t.Errorf("URL = %q, want .png extension kept", info.URL)
	}
	if info.FileName != "avatar.png" {
		t.Errorf("FileName = %q, want avatar.png", info.FileName)
	}
	if info.Size != int64(len(content)) {
		t.Errorf("Size = %d, want %d", info.Size, len(content))
	}

	stored, err := os.ReadFile(info.Path)
	if err != nil {
		t.Fatalf("failed to read stored file: %v", err)
	}
	if string(stored) != content {
		t.Errorf("stored content = %q, want %q", stored, content)
	}
}

func TestUploadFileUniqueNames(t *testing.T) {
	svc := newTestStorage(t)
	ctx := context.Background()

	first, err := svc.UploadFile(ctx, strings.NewReader("a"), 1, "avatar.png", "image/png")
	if err != nil {
		t.Fatalf("first upload failed: %v", err)
	}
	second, err := svc.UploadFile(ctx, strings.NewReader("b"), 1, "avatar.png", "image/png")
	if err != nil {
		t.Fatalf("second upload failed: %v", err)
	}
	if first.Path == second.Path {
		t.Errorf("uploads with the same original name must not collide: %s", first.Path)
	}
}

func TestUploadFileSizeMismatch(t *testing.T) {
	svc := newTestStorage(t)

	_, err := svc.UploadFile(context.Background(), strings.NewReader("short"), 100, "avatar.png", "image/png")
	if err == nil {
		t.Fatal("expected an error on declared/actual size mismatch")
	}

	// The partial file must not be left behind.
	entries, readErr := os.ReadDir(svc.basePath)
	if readErr != nil {
		t.Fatalf("failed to list storage dir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Errorf("expected no files after failed upload, found %d", len(entries))
	}
}
