package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/kendall-kelly/technician-finder-api/utils"
	"go.uber.org/zap"
)

// GalleryKeyPrefix is the bucket folder gallery images are stored under
const GalleryKeyPrefix = "gallery"

// GalleryEntryKind tags an entry of an edited gallery
type GalleryEntryKind string

const (
	// GalleryExisting refers to an image already in storage by file id
	GalleryExisting GalleryEntryKind = "existing"
	// GalleryNew carries a file that still has to be uploaded
	GalleryNew GalleryEntryKind = "new"
)

// GalleryEntry is one slot of a gallery being edited. Existing entries carry
// FileID; new entries carry File. Field names the multipart part File came
// from when the entry arrives over HTTP.
type GalleryEntry struct {
	Kind   GalleryEntryKind      `json:"kind" binding:"required,oneof=existing new"`
	FileID string                `json:"fileId,omitempty"`
	Field  string                `json:"field,omitempty"`
	File   *multipart.FileHeader `json:"-"`
}

// ImageService handles gallery image upload, addressing and deletion
type ImageService interface {
	// UploadGalleryImage validates and uploads an image, returning its file id
	UploadGalleryImage(ctx context.Context, fileHeader *multipart.FileHeader) (string, error)

	// GetGalleryImageURL returns the stable URL of a stored image
	GetGalleryImageURL(fileID string) string

	// DeleteImage removes an image from storage
	DeleteImage(ctx context.Context, fileID string) error

	// ResolveGallery uploads the new entries and returns the ordered file ids
	ResolveGallery(ctx context.Context, entries []GalleryEntry) ([]string, error)
}

// S3ImageService implements ImageService using AWS S3 for storage
type S3ImageService struct {
	s3Service S3Interface
	logger    *zap.Logger
}

var imageServiceInstance ImageService

// InitImageService initializes the image service with S3 backend
func InitImageService(s3Service S3Interface, logger *zap.Logger) ImageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	imageServiceInstance = &S3ImageService{
		s3Service: s3Service,
		logger:    logger,
	}
	return imageServiceInstance
}

// GetImageService returns the initialized image service instance
func GetImageService() ImageService {
	return imageServiceInstance
}

// SetImageService sets the image service instance (primarily for testing)
func SetImageService(service ImageService) {
	imageServiceInstance = service
}

// UploadGalleryImage validates and uploads an image file to S3
func (s *S3ImageService) UploadGalleryImage(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	fileID, err := s.s3Service.UploadFile(ctx, fileHeader, GalleryKeyPrefix)
	if err != nil {
		return "", transport("failed to upload image", err)
	}

	return fileID, nil
}

// GetGalleryImageURL maps a file id to its public URL. The URL does not expire.
func (s *S3ImageService) GetGalleryImageURL(fileID string) string {
	return s.s3Service.PublicURL(fileID)
}

// DeleteImage deletes an image from S3
func (s *S3ImageService) DeleteImage(ctx context.Context, fileID string) error {
	if fileID == "" {
		return nil
	}

	if err := s.s3Service.DeleteFile(ctx, fileID); err != nil {
		return transport("failed to delete image", err)
	}

	return nil
}

// ResolveGallery turns tagged entries into file ids, keeping their order.
// If an upload fails, images uploaded earlier in the same call are removed
// again before the error is returned.
func (s *S3ImageService) ResolveGallery(ctx context.Context, entries []GalleryEntry) ([]string, error) {
	ids := make([]string, 0, len(entries))
	var uploaded []string

	for i, entry := range entries {
		switch entry.Kind {
		case GalleryExisting:
			if entry.FileID == "" {
				return nil, invalid(CodeInvalidGallery, fmt.Sprintf("gallery entry %d has no fileId", i))
			}
			ids = append(ids, entry.FileID)
		case GalleryNew:
			if entry.File == nil {
				return nil, invalid(CodeInvalidGallery, fmt.Sprintf("gallery entry %d has no file", i))
			}
			fileID, err := s.UploadGalleryImage(ctx, entry.File)
			if err != nil {
				s.discard(ctx, uploaded)
				return nil, err
			}
			uploaded = append(uploaded, fileID)
			ids = append(ids, fileID)
		default:
			return nil, invalid(CodeInvalidGallery, fmt.Sprintf("gallery entry %d has unknown kind %q", i, entry.Kind))
		}
	}

	return ids, nil
}

// DeleteImages removes every file id, logging failures instead of returning them
func DeleteImages(ctx context.Context, images ImageService, logger *zap.Logger, fileIDs []string) {
	if images == nil {
		return
	}
	for _, id := range fileIDs {
		if err := images.DeleteImage(ctx, id); err != nil {
			logger.Warn("failed to delete gallery image", zap.String("fileId", id), zap.Error(err))
		}
	}
}

func (s *S3ImageService) discard(ctx context.Context, fileIDs []string) {
	DeleteImages(ctx, s, s.logger, fileIDs)
}

// RemovedFiles returns the ids in before that are absent from after
func RemovedFiles(before, after []string) []string {
	keep := make(map[string]struct{}, len(after))
	for _, id := range after {
		keep[id] = struct{}{}
	}
	var removed []string
	for _, id := range before {
		if _, ok := keep[id]; !ok {
			removed = append(removed, id)
		}
	}
	return removed
}
