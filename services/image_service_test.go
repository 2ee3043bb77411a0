package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kendall-kelly/technician-finder-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestUploadGalleryImage(t *testing.T) {
	mockS3 := NewMockS3Service()
	images := InitImageService(mockS3, zaptest.NewLogger(t))
	ctx := context.Background()

	fileID, err := images.UploadGalleryImage(ctx, createFileHeader(t, "kitchen.jpg", []byte("jpeg bytes")))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(fileID, GalleryKeyPrefix+"/"))
	assert.Equal(t, []byte("jpeg bytes"), mockS3.GetUploadedFiles()[fileID])
	assert.Same(t, images, GetImageService())
}

func TestUploadGalleryImage_RejectsInvalidFile(t *testing.T) {
	mockS3 := NewMockS3Service()
	images := InitImageService(mockS3, nil)

	_, err := images.UploadGalleryImage(context.Background(), createFileHeader(t, "doc.pdf", []byte("%PDF")))
	var fileErr *utils.FileUploadError
	require.ErrorAs(t, err, &fileErr)
	assert.Equal(t, "INVALID_FILE_FORMAT", fileErr.Code)
	assert.Empty(t, mockS3.GetUploadedFiles())
}

func TestUploadGalleryImage_StorageFailure(t *testing.T) {
	mockS3 := NewMockS3Service()
	mockS3.UploadErr = errors.New("bucket unavailable")
	images := InitImageService(mockS3, nil)

	_, err := images.UploadGalleryImage(context.Background(), createFileHeader(t, "a.png", []byte("png")))
	assert.True(t, errors.Is(err, ErrTransport))
}

func TestGetGalleryImageURL_IsDeterministic(t *testing.T) {
	images := InitImageService(NewMockS3Service(), nil)

	first := images.GetGalleryImageURL("gallery/abc.png")
	assert.Equal(t, MockPublicBaseURL+"/gallery/abc.png", first)
	assert.Equal(t, first, images.GetGalleryImageURL("gallery/abc.png"))
	assert.Empty(t, images.GetGalleryImageURL(""))
}

func TestS3Service_PublicURL(t *testing.T) {
	s := &S3Service{publicBaseURL: "https://cdn.example.com"}
	assert.Equal(t, "https://cdn.example.com/gallery/x.webp", s.PublicURL("gallery/x.webp"))
	assert.Equal(t, "https://cdn.example.com/gallery/x.webp", s.PublicURL("/gallery/x.webp"))
	assert.Empty(t, s.PublicURL(""))
}

func TestResolveGallery_KeepsOrder(t *testing.T) {
	mockS3 := NewMockS3Service()
	images := InitImageService(mockS3, nil)

	ids, err := images.ResolveGallery(context.Background(), []GalleryEntry{
		{Kind: GalleryExisting, FileID: "gallery/old-1.png"},
		{Kind: GalleryNew, File: createFileHeader(t, "new.png", []byte("new"))},
		{Kind: GalleryExisting, FileID: "gallery/old-2.png"},
	})
	require.NoError(t, err)
	require.Len(t, ids, 3)
	assert.Equal(t, "gallery/old-1.png", ids[0])
	assert.True(t, mockS3.FileExists(ids[1]))
	assert.Equal(t, "gallery/old-2.png", ids[2])
}

func TestResolveGallery_InvalidEntries(t *testing.T) {
	images := InitImageService(NewMockS3Service(), nil)

	for name, entry := range map[string]GalleryEntry{
		"existing without id": {Kind: GalleryExisting},
		"new without file":    {Kind: GalleryNew},
		"unknown kind":        {Kind: "remote", FileID: "https://example.com/a.png"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := images.ResolveGallery(context.Background(), []GalleryEntry{entry})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
		})
	}
}

func TestResolveGallery_FailedUploadDiscardsEarlierUploads(t *testing.T) {
	mockS3 := NewMockS3Service()
	images := InitImageService(mockS3, nil)

	_, err := images.ResolveGallery(context.Background(), []GalleryEntry{
		{Kind: GalleryNew, File: createFileHeader(t, "ok.png", []byte("ok"))},
		{Kind: GalleryNew, File: createFileHeader(t, "bad.gif", []byte("gif"))},
	})
	require.Error(t, err)
	assert.Empty(t, mockS3.GetUploadedFiles())
	assert.Len(t, mockS3.DeletedKeys(), 1)
}

func TestRemovedFiles(t *testing.T) {
	assert.Equal(t, []string{"a", "c"}, RemovedFiles([]string{"a", "b", "c"}, []string{"b", "d"}))
	assert.Nil(t, RemovedFiles([]string{"a"}, []string{"a"}))
	assert.Nil(t, RemovedFiles(nil, []string{"a"}))
}
