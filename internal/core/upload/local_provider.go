package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalProvider implements file upload to local filesystem
type LocalProvider struct {
	basePath   string // directory files are written to
	baseURL    string // public origin of the API
	publicPath string // route the directory is served on
}

// NewLocalProvider creates a new local file storage provider
func NewLocalProvider(basePath, baseURL string) (*LocalProvider, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &LocalProvider{
		basePath:   basePath,
		baseURL:    strings.TrimRight(baseURL, "/"),
		publicPath: "/uploads/",
	}, nil
}

func (p *LocalProvider) Upload(_ context.Context, file io.Reader, filename string, options *UploadOptions) (*UploadResult, error) {
	options = MergeOptions(options)
	key := objectKey(options.Folder, filename)

	filePath := filepath.Join(p.basePath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}

	out, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	// read one byte past the limit so oversize files are detected
	size, err := io.Copy(out, io.LimitReader(file, options.MaxSize+1))
	if err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	if size > options.MaxSize {
		os.Remove(filePath)
		return nil, fmt.Errorf("file size exceeds maximum allowed size: %d bytes", options.MaxSize)
	}

	return &UploadResult{
		URL:      p.GetURL(key),
		Key:      key,
		FileName: filename,
		Size:     size,
		Format:   strings.TrimPrefix(filepath.Ext(key), "."),
	}, nil
}

func (p *LocalProvider) Delete(_ context.Context, key string) error {
	filePath := filepath.Join(p.basePath, filepath.FromSlash(key))

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", key)
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (p *LocalProvider) GetURL(key string) string {
	return p.baseURL + p.publicPath + key
}

func (p *LocalProvider) GetProviderName() string {
	return "Local Storage"
}

// Root is the directory that should be served under /uploads.
func (p *LocalProvider) Root() string {
	return p.basePath
}
