package services

import (
	"fmt"
	"mime/multipart"

	"github.com/washbook/washbook-api/utils"
)

// Key prefixes for the different kinds of stored files
const (
	PrefixExpenseBills = "expense-bills"
	PrefixBranding     = "branding"
)

// AttachmentService handles validated upload, retrieval and deletion of
// stored files (expense bill attachments, shop logo and favicon).
type AttachmentService interface {
	// Upload validates and stores a file, returning the storage key
	Upload(fileHeader *multipart.FileHeader, keyPrefix string) (string, error)

	// URL generates a presigned URL for reading a stored file
	URL(key string) (string, error)

	// Delete removes a stored file
	Delete(key string) error
}

// S3AttachmentService implements AttachmentService on top of S3
type S3AttachmentService struct {
	s3Service S3Interface
}

var attachmentServiceInstance AttachmentService

// InitAttachmentService initializes the attachment service
func InitAttachmentService(s3Service S3Interface) AttachmentService {
	attachmentServiceInstance = &S3AttachmentService{s3Service: s3Service}
	return attachmentServiceInstance
}

// GetAttachmentService returns the initialized attachment service instance
func GetAttachmentService() AttachmentService {
	return attachmentServiceInstance
}

// SetAttachmentService sets the attachment service instance (primarily for testing)
func SetAttachmentService(service AttachmentService) {
	attachmentServiceInstance = service
}

// Upload validates the file and stores it under the given prefix
func (s *S3AttachmentService) Upload(fileHeader *multipart.FileHeader, keyPrefix string) (string, error) {
	if err := utils.ValidateAttachmentFile(fileHeader); err != nil {
		return "", err
	}

	key, err := s.s3Service.UploadFile(fileHeader, keyPrefix)
	if err != nil {
		return "", fmt.Errorf("failed to upload attachment: %w", err)
	}

	return key, nil
}

// URL generates a presigned URL for a stored file
func (s *S3AttachmentService) URL(key string) (string, error) {
	if key == "" {
		return "", nil
	}

	url, err := s.s3Service.GetPresignedURL(key)
	if err != nil {
		return "", fmt.Errorf("failed to generate attachment URL: %w", err)
	}

	return url, nil
}

// Delete removes a stored file
func (s *S3AttachmentService) Delete(key string) error {
	if key == "" {
		return nil
	}

	if err := s.s3Service.DeleteFile(key); err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}

	return nil
}
