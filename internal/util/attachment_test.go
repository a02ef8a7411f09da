package util

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KentLee86/claude-oauth/sdk/chat"
)

func TestMediaTypeForExt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ext     string
		want    string
		wantImg bool
	}{
		{".png", "image/png", true},
		{".jpg", "image/jpeg", true},
		{".JPEG", "image/jpeg", true},
		{".gif", "image/gif", true},
		{".webp", "image/webp", true},
		{".txt", "", false},
		{".go", "", false},
	}
	for _, tt := range tests {
		got, ok := MediaTypeForExt(tt.ext)
		if got != tt.want || ok != tt.wantImg {
			t.Errorf("MediaTypeForExt(%q) = %q, %v; want %q, %v", tt.ext, got, ok, tt.want, tt.wantImg)
		}
	}
}

func TestLoadAttachmentText(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "notes.md")
	if err := os.WriteFile(path, []byte("hello notes"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	block, err := LoadAttachment(path)
	if err != nil {
		t.Fatalf("LoadAttachment() error = %v", err)
	}
	if block.Type != chat.BlockTypeText {
		t.Errorf("Type = %q, want text", block.Type)
	}
	if !strings.Contains(block.Text, `<file name="notes.md">`) || !strings.Contains(block.Text, "hello notes") {
		t.Errorf("Text = %q, want wrapped file content", block.Text)
	}
}

func TestLoadAttachmentImage(t *testing.T) {
	t.Parallel()

	payload := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	path := filepath.Join(t.TempDir(), "pixel.png")
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	block, err := LoadAttachment(path)
	if err != nil {
		t.Fatalf("LoadAttachment() error = %v", err)
	}
	if block.Type != chat.BlockTypeImage {
		t.Fatalf("Type = %q, want image", block.Type)
	}
	if block.Source == nil || block.Source.MediaType != "image/png" || block.Source.Type != "base64" {
		t.Errorf("Source = %+v", block.Source)
	}
	if want := base64.StdEncoding.EncodeToString(payload); block.Source.Data != want {
		t.Errorf("Data = %q, want %q", block.Source.Data, want)
	}
}

func TestLoadAttachmentMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := LoadAttachment(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("LoadAttachment() on missing file expected error, got nil")
	}
}
