// Package util contains helpers for turning local files into chat content
// blocks.
package util

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KentLee86/claude-oauth/sdk/chat"
)

// MaxImageSize is the largest image payload accepted by the API.
const MaxImageSize = 5 * 1024 * 1024 // 5MB

var imageMediaTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// MediaTypeForExt returns the MIME type for a supported image extension and
// whether the extension is a supported image type.
func MediaTypeForExt(ext string) (string, bool) {
	mediaType, ok := imageMediaTypes[strings.ToLower(ext)]
	return mediaType, ok
}

// LoadAttachment reads a local file into a content block: supported image
// types become base64 image blocks, everything else is wrapped as a tagged
// text block so the model can tell file content from the prompt.
func LoadAttachment(path string) (chat.ContentBlock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return chat.ContentBlock{}, fmt.Errorf("attachment: read %s failed: %w", path, err)
	}

	if mediaType, ok := MediaTypeForExt(filepath.Ext(path)); ok {
		if len(data) > MaxImageSize {
			return chat.ContentBlock{}, fmt.Errorf("attachment: %s exceeds %d byte image limit", path, MaxImageSize)
		}
		return chat.ImageBlock(mediaType, base64.StdEncoding.EncodeToString(data)), nil
	}

	return chat.TextBlock(fmt.Sprintf("<file name=%q>\n%s\n</file>", filepath.Base(path), data)), nil
}
