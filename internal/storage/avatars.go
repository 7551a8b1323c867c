package storage

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matchreel-dev/matchreel/internal/models"
)

// AvatarStore keeps profile images on the local filesystem under Root.
// Stored paths are relative (e.g. "profile_pics/user_3_1716123456.png") so
// the media root can move without rewriting rows.
type AvatarStore struct {
	Root string
}

func NewAvatarStore(root string) *AvatarStore {
	return &AvatarStore{Root: root}
}

// Save writes avatar bytes for a user and returns the relative path.
func (s *AvatarStore) Save(userID uint, ext string, data []byte) (string, error) {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		ext = "png"
	}

	relPath := filepath.Join("profile_pics", fmt.Sprintf("user_%d_%d.%s", userID, time.Now().UnixNano(), ext))
	fullPath := filepath.Join(s.Root, relPath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", err
	}

	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", err
	}

	return filepath.ToSlash(relPath), nil
}

// Delete removes a previously stored avatar. The shared default placeholder
// is never deleted, and paths escaping the media root are refused.
func (s *AvatarStore) Delete(relPath string) error {
	if relPath == "" || relPath == models.DefaultAvatarPath || strings.HasSuffix(relPath, "default.png") {
		return nil
	}

	clean := filepath.Clean(filepath.FromSlash(relPath))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return fmt.Errorf("refusing to delete path outside media root: %s", relPath)
	}

	err := os.Remove(filepath.Join(s.Root, clean))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// DecodeImageDataURL parses a base64 data-URL payload ("data:image/png;base64,...")
// and returns the raw bytes plus a file extension for the declared type.
// Bare base64 without the data: prefix is accepted and treated as PNG.
func DecodeImageDataURL(payload string) ([]byte, string, error) {
	ext := "png"
	encoded := payload

	if strings.HasPrefix(payload, "data:") {
		parts := strings.SplitN(payload, ",", 2)
		if len(parts) != 2 {
			return nil, "", fmt.Errorf("malformed data URL")
		}
		meta := parts[0]
		encoded = parts[1]

		switch {
		case strings.Contains(meta, "image/jpeg"), strings.Contains(meta, "image/jpg"):
			ext = "jpg"
		case strings.Contains(meta, "image/png"):
			ext = "png"
		case strings.Contains(meta, "image/gif"):
			ext = "gif"
		case strings.Contains(meta, "image/webp"):
			ext = "webp"
		default:
			return nil, "", fmt.Errorf("unsupported image type")
		}
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", fmt.Errorf("invalid base64 payload: %w", err)
	}

	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty image payload")
	}

	return data, ext, nil
}
