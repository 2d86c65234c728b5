package upload

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UploadResult represents a stored file
type UploadResult struct {
	URL      string `json:"url"`       // public URL to access the file
	Key      string `json:"key"`       // provider-specific identifier
	FileName string `json:"file_name"` // original filename
	Size     int64  `json:"size"`
	Format   string `json:"format"`
}

// UploadOptions represents upload configuration options
type UploadOptions struct {
	Folder       string
	AllowedTypes []string
	MaxSize      int64
}

// Provider stores files somewhere reachable by URL.
type Provider interface {
	Upload(ctx context.Context, file io.Reader, filename string, options *UploadOptions) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	GetURL(key string) string
	GetProviderName() string
}

// DefaultUploadOptions accepts photos and PDFs of identity documents up to 10MB.
func DefaultUploadOptions() *UploadOptions {
	return &UploadOptions{
		Folder:       "documents",
		AllowedTypes: []string{"image/jpeg", "image/jpg", "image/png", "image/webp", "application/pdf"},
		MaxSize:      10 * 1024 * 1024,
	}
}

// MergeOptions merges custom options with defaults
func MergeOptions(custom *UploadOptions) *UploadOptions {
	defaults := DefaultUploadOptions()
	if custom == nil {
		return defaults
	}

	if custom.Folder != "" {
		defaults.Folder = custom.Folder
	}
	if len(custom.AllowedTypes) > 0 {
		defaults.AllowedTypes = custom.AllowedTypes
	}
	if custom.MaxSize > 0 {
		defaults.MaxSize = custom.MaxSize
	}
	return defaults
}

// objectKey builds folder/name_unix_rand.ext so uploads never collide.
func objectKey(folder, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	if name == "" {
		name = "file"
	}

	key := fmt.Sprintf("%s_%d_%s%s", name, time.Now().Unix(), uuid.New().String()[:8], ext)
	if folder != "" {
		key = folder + "/" + key
	}
	return key
}

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".pdf":  "application/pdf",
}

// detectContentType detects the content type based on file extension
func detectContentType(filename string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}
