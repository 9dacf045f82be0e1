package storage

import (
	"fmt"
	"mime"
	"strings"
)

// MaxObjectSize matches the webhook body limit.
const MaxObjectSize int64 = 1 << 20

// AllowedContentTypes defines the MIME types accepted for archived payloads.
var AllowedContentTypes = map[string]bool{
	"application/json":                  true,
	"application/x-www-form-urlencoded": true,
	"text/plain":                        true,
}

// ValidateContentType checks if the content type is allowed. Parameters such
// as charset are ignored.
func (s *MinIOService) ValidateContentType(contentType string) error {
	return validateContentType(contentType)
}

// ValidateFileSize checks if the object size is within limits.
func (s *MinIOService) ValidateFileSize(sizeBytes int64) error {
	return validateSize(sizeBytes, s.maxFileSize)
}

func validateContentType(contentType string) error {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	if !AllowedContentTypes[mediaType] {
		return fmt.Errorf("content type %q is not allowed", contentType)
	}
	return nil
}

func validateSize(sizeBytes, max int64) error {
	if sizeBytes <= 0 {
		return fmt.Errorf("object is empty")
	}
	if sizeBytes > max {
		return fmt.Errorf("object size %d exceeds maximum of %d bytes", sizeBytes, max)
	}
	return nil
}
