package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// FileStorage defines the contract for the object-storage provider
// (Cloudinary implementation). Material files and preview images both go
// through it.
type FileStorage interface {
	// UploadFile uploads a file from reader and returns the secure URL.
	// folder is a logical folder in storage (e.g. "materials", "previews").
	UploadFile(ctx context.Context, r io.Reader, folder, fileName string) (string, error)
	// DeleteFile deletes a file from storage using its URL.
	DeleteFile(ctx context.Context, fileURL string) error
}

type cloudinaryStorage struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStorage creates a Cloudinary-backed implementation of
// FileStorage. It expects CLOUDINARY_URL or the individual
// CLOUDINARY_CLOUD_NAME / CLOUDINARY_API_KEY / CLOUDINARY_API_SECRET
// environment variables to be set.
func NewCloudinaryStorage() (FileStorage, error) {
	cld, err := cloudinary.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}

	cld.Config.URL.Secure = true

	if cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME"); cloudName != "" {
		cld.Config.Cloud.CloudName = cloudName
	}

	return &cloudinaryStorage{cld: cld}, nil
}

func (s *cloudinaryStorage) UploadFile(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	if s == nil || s.cld == nil {
		return "", fmt.Errorf("cloudinary storage is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	// Nanosecond prefix keeps keys collision-free across same-named uploads.
	publicID := fmt.Sprintf("%d-%s", time.Now().UnixNano(), fileName)

	params := uploader.UploadParams{
		Folder:         folder,
		PublicID:       publicID,
		UseFilename:    api.Bool(true),
		UniqueFilename: api.Bool(true),
		Overwrite:      api.Bool(false),
		// Documents (PDF, PPTX, DOCX) need resource type detection; plain
		// "image" uploads would reject them.
		ResourceType: "auto",
	}

	resp, err := s.cld.Upload.Upload(ctx, r, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload file to cloudinary: %w", err)
	}

	if resp.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload succeeded but secure URL is empty")
	}

	return resp.SecureURL, nil
}

func (s *cloudinaryStorage) DeleteFile(ctx context.Context, fileURL string) error {
	if s == nil || s.cld == nil {
		return fmt.Errorf("cloudinary storage is not initialized")
	}

	publicID, resourceType := s.parseURL(fileURL)
	if publicID == "" {
		return fmt.Errorf("could not extract public ID from URL: %s", fileURL)
	}

	params := uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
		Invalidate:   api.Bool(true),
	}

	resp, err := s.cld.Upload.Destroy(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to delete file from cloudinary: %w", err)
	}

	if resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("cloudinary destroy api returned result: %s", resp.Result)
	}

	return nil
}

// parseURL extracts the public ID and resource type from a Cloudinary URL.
// Example: https://res.cloudinary.com/demo/raw/upload/v123/materials/a.pdf
// -> "materials/a", "raw".
func (s *cloudinaryStorage) parseURL(fileURL string) (publicID, resourceType string) {
	u, err := url.Parse(fileURL)
	if err != nil {
		return "", ""
	}

	parts := strings.Split(u.Path, "/")
	uploadIndex := -1
	for i, p := range parts {
		if p == "upload" {
			uploadIndex = i
			break
		}
	}

	if uploadIndex == -1 || uploadIndex+1 >= len(parts) {
		return "", ""
	}

	resourceType = "image"
	if uploadIndex >= 1 {
		switch parts[uploadIndex-1] {
		case "raw", "video", "image":
			resourceType = parts[uploadIndex-1]
		}
	}

	relevantParts := parts[uploadIndex+1:]

	// Cloudinary versions are a "v" segment followed by digits.
	if len(relevantParts) > 0 && strings.HasPrefix(relevantParts[0], "v") {
		relevantParts = relevantParts[1:]
	}

	if len(relevantParts) == 0 {
		return "", ""
	}

	publicIDWithExt := strings.Join(relevantParts, "/")

	// Raw resources keep the extension in their public ID.
	if resourceType == "raw" {
		return publicIDWithExt, resourceType
	}

	ext := filepath.Ext(publicIDWithExt)
	return strings.TrimSuffix(publicIDWithExt, ext), resourceType
}
