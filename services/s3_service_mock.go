package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"sync"
)

// MockPublicBaseURL is the base URL MockS3Service builds object URLs from
const MockPublicBaseURL = "https://test-bucket.s3.us-east-1.amazonaws.com"

// MockS3Service is a mock implementation of S3Service for testing
type MockS3Service struct {
	uploadedFiles map[string][]byte // map of S3 key to file content
	deleted       []string
	uploads       int
	mu            sync.RWMutex

	// UploadErr and DeleteErr, when set, are returned by every call
	UploadErr error
	DeleteErr error
}

// NewMockS3Service creates a new mock S3 service
func NewMockS3Service() *MockS3Service {
	return &MockS3Service{
		uploadedFiles: make(map[string][]byte),
	}
}

// UploadFile simulates uploading a file to S3
func (m *MockS3Service) UploadFile(ctx context.Context, fileHeader *multipart.FileHeader, keyPrefix string) (string, error) {
	if m.UploadErr != nil {
		return "", m.UploadErr
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads++
	s3Key := fmt.Sprintf("%s/mock_%d_%s", keyPrefix, m.uploads, fileHeader.Filename)
	m.uploadedFiles[s3Key] = content

	return s3Key, nil
}

// PublicURL returns a deterministic URL under MockPublicBaseURL
func (m *MockS3Service) PublicURL(s3Key string) string {
	if s3Key == "" {
		return ""
	}
	return MockPublicBaseURL + "/" + s3Key
}

// DeleteFile simulates deleting a file from S3
func (m *MockS3Service) DeleteFile(ctx context.Context, s3Key string) error {
	if s3Key == "" {
		return nil
	}
	if m.DeleteErr != nil {
		return m.DeleteErr
	}

	m.mu.Lock()
	delete(m.uploadedFiles, s3Key)
	m.deleted = append(m.deleted, s3Key)
	m.mu.Unlock()

	return nil
}

// Put stores content under s3Key directly, as if it had been uploaded earlier
func (m *MockS3Service) Put(s3Key string, content []byte) {
	m.mu.Lock()
	m.uploadedFiles[s3Key] = content
	m.mu.Unlock()
}

// GetUploadedFiles returns all uploaded files (for testing assertions)
func (m *MockS3Service) GetUploadedFiles() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Return a copy to prevent race conditions
	files := make(map[string][]byte, len(m.uploadedFiles))
	for k, v := range m.uploadedFiles {
		files[k] = v
	}
	return files
}

// DeletedKeys returns the keys passed to DeleteFile, in call order
func (m *MockS3Service) DeletedKeys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.deleted...)
}

// FileExists checks if a file exists in mock storage
func (m *MockS3Service) FileExists(s3Key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.uploadedFiles[s3Key]
	return exists
}
