package upload

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
)

// Service provides file upload functionality on top of a provider
type Service struct {
	provider Provider
}

// NewService creates a new upload service
func NewService(provider Provider) *Service {
	return &Service{provider: provider}
}

// UploadMultipart validates a form file and stores it.
func (s *Service) UploadMultipart(ctx context.Context, fileHeader *multipart.FileHeader, options *UploadOptions) (*UploadResult, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("upload provider not configured")
	}
	options = MergeOptions(options)

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = detectContentType(fileHeader.Filename)
	}
	if len(options.AllowedTypes) > 0 && !allowed(options.AllowedTypes, contentType) {
		return nil, fmt.Errorf("file type not allowed: %s", contentType)
	}

	if options.MaxSize > 0 && fileHeader.Size > options.MaxSize {
		return nil, fmt.Errorf("file size exceeds maximum allowed size: %d bytes", options.MaxSize)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	return s.provider.Upload(ctx, file, fileHeader.Filename, options)
}

func (s *Service) Delete(ctx context.Context, key string) error {
	if s.provider == nil {
		return fmt.Errorf("upload provider not configured")
	}
	return s.provider.Delete(ctx, key)
}

func (s *Service) GetProviderName() string {
	if s.provider == nil {
		return "none"
	}
	return s.provider.GetProviderName()
}

func allowed(types []string, contentType string) bool {
	contentType = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	for _, t := range types {
		if t == contentType {
			return true
		}
	}
	return false
}
