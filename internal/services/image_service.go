package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type ImageService struct {
	cld *cloudinary.Cloudinary
}

func NewImageService() (*ImageService, error) {
	cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME")
	apiKey := os.Getenv("CLOUDINARY_API_KEY")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")

	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("missing Cloudinary configuration")
	}

	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	return &ImageService{cld: cld}, nil
}

// UploadCatalogImage uploads a medicine's product image, keyed by slug so
// re-uploads replace the previous image
func (s *ImageService) UploadCatalogImage(file multipart.File, filename, slug string) (string, error) {
	if err := validateExtension(filename); err != nil {
		return "", err
	}

	uploadParams := uploader.UploadParams{
		PublicID:       fmt.Sprintf("catalog/%s", slug),
		Folder:         "clubcare/catalog",
		Overwrite:      &[]bool{true}[0],
		ResourceType:   "image",
		Transformation: "c_pad,h_600,w_600/q_auto,f_auto",
	}

	result, err := s.cld.Upload.Upload(context.Background(), file, uploadParams)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	return result.SecureURL, nil
}

// UploadCoverImage uploads a blog cover image
func (s *ImageService) UploadCoverImage(file multipart.File, filename, slug string) (string, error) {
	if err := validateExtension(filename); err != nil {
		return "", err
	}

	uploadParams := uploader.UploadParams{
		PublicID:       fmt.Sprintf("covers/%s", slug),
		Folder:         "clubcare/covers",
		Overwrite:      &[]bool{true}[0],
		ResourceType:   "image",
		Transformation: "c_fill,h_630,w_1200/q_auto,f_auto",
	}

	result, err := s.cld.Upload.Upload(context.Background(), file, uploadParams)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	return result.SecureURL, nil
}

// DeleteImage removes an uploaded image by its public ID
func (s *ImageService) DeleteImage(publicID string) error {
	_, err := s.cld.Upload.Destroy(context.Background(), uploader.DestroyParams{
		PublicID: publicID,
	})
	return err
}

// ValidateImageFile checks the uploaded file against the size limit
func (s *ImageService) ValidateImageFile(file multipart.File, maxSize int64) error {
	file.Seek(0, 0)

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if int64(len(data)) > maxSize {
		return fmt.Errorf("file too large: %d bytes (max %d bytes)", len(data), maxSize)
	}

	file.Seek(0, 0)
	return nil
}

func validateExtension(filename string) error {
	allowedTypes := map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".gif":  true,
		".webp": true,
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedTypes[ext] {
		return fmt.Errorf("invalid file type: %s. Allowed types: jpg, jpeg, png, gif, webp", ext)
	}
	return nil
}
