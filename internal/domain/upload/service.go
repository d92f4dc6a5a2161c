// internal/domain/upload/service.go
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/charmaway/storefront/internal/config"
	"github.com/charmaway/storefront/internal/domain/product"
	"github.com/charmaway/storefront/internal/pkg/apperror"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var imageMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// Service handles file upload business logic
type Service struct {
	db      *gorm.DB
	config  *config.Config
	storage Storage
	log     *logrus.Logger
}

// NewService creates a new upload service
func NewService(db *gorm.DB, cfg *config.Config, storage Storage, log *logrus.Logger) *Service {
	return &Service{
		db:      db,
		config:  cfg,
		storage: storage,
		log:     log,
	}
}

// UploadResult is the stored asset plus the product image created for it
type UploadResult struct {
	Asset *ProductAsset         `json:"asset"`
	Image *product.ProductImage `json:"image"`
}

// UploadProductImage stores an image file and appends it to the product gallery
func (s *Service) UploadProductImage(ctx context.Context, productID uint, header *multipart.FileHeader, uploadedBy uint) (*UploadResult, error) {
	ext, err := s.validateFile(header)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&product.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	if count == 0 {
		return nil, apperror.NotFound("product")
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	mime, err := detectImage(file)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("products/%d/%s.%s", productID, uuid.NewString(), ext)
	url, err := s.storage.Put(ctx, key, mime, file)
	if err != nil {
		return nil, err
	}

	asset := &ProductAsset{
		ProductID:    &productID,
		Key:          key,
		URL:          url,
		OriginalName: filepath.Base(header.Filename),
		MimeType:     mime,
		Size:         header.Size,
		UploadedBy:   uploadedBy,
	}
	var image product.ProductImage

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&product.ProductImage{}).Where("product_id = ?", productID).Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to count images: %w", err)
		}

		if err := tx.Create(asset).Error; err != nil {
			return fmt.Errorf("failed to save file info: %w", err)
		}

		image = product.ProductImage{
			ProductID:     productID,
			URL:           url,
			IsMain:        existing == 0,
			OrderPosition: int(existing),
		}
		if err := tx.Create(&image).Error; err != nil {
			return fmt.Errorf("failed to add image: %w", err)
		}
		return nil
	})
	if err != nil {
		// Clean up the stored file if the database insert fails
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.log.WithError(delErr).WithField("key", key).Warn("Failed to remove orphaned upload")
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"product_id": productID,
		"key":        key,
		"size":       header.Size,
	}).Info("Product image uploaded")

	return &UploadResult{Asset: asset, Image: &image}, nil
}

// DeleteAsset removes an asset, its gallery image and the stored file
func (s *Service) DeleteAsset(ctx context.Context, id uint) error {
	var asset ProductAsset
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&asset).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("asset")
			}
			return fmt.Errorf("failed to find asset: %w", err)
		}

		if asset.ProductID != nil {
			if err := removeGalleryImage(tx, *asset.ProductID, asset.URL); err != nil {
				return err
			}
		}

		if err := tx.Delete(&asset).Error; err != nil {
			return fmt.Errorf("failed to delete asset: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, asset.Key); err != nil {
		s.log.WithError(err).WithField("key", asset.Key).Warn("Stored file could not be removed")
	}
	return nil
}

// removeGalleryImage deletes the image with url and promotes the next one when it was the main image
func removeGalleryImage(tx *gorm.DB, productID uint, url string) error {
	var images []product.ProductImage
	if err := tx.Where("product_id = ? AND url = ?", productID, url).Find(&images).Error; err != nil {
		return fmt.Errorf("failed to find image: %w", err)
	}
	if len(images) == 0 {
		return nil
	}

	wasMain := false
	for _, img := range images {
		wasMain = wasMain || img.IsMain
	}
	if err := tx.Where("product_id = ? AND url = ?", productID, url).Delete(&product.ProductImage{}).Error; err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	if !wasMain {
		return nil
	}

	var next product.ProductImage
	err := tx.Where("product_id = ?", productID).Order("order_position ASC, id ASC").First(&next).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to find next image: %w", err)
	}
	if err := tx.Model(&next).Update("is_main", true).Error; err != nil {
		return fmt.Errorf("failed to promote image: %w", err)
	}
	return nil
}

// validateFile checks size and extension against the upload settings
func (s *Service) validateFile(header *multipart.FileHeader) (string, error) {
	if header == nil {
		return "", apperror.Invalid("file", "is required")
	}
	if header.Size <= 0 {
		return "", apperror.Invalid("file", "is empty")
	}
	if limit := s.config.Upload.MaxSize; limit > 0 && header.Size > limit {
		return "", apperror.Invalid("file", fmt.Sprintf("must be at most %d bytes", limit))
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(header.Filename), "."))
	for _, allowed := range s.config.Upload.AllowedExtensions {
		if ext == strings.ToLower(allowed) {
			return ext, nil
		}
	}
	return "", apperror.Invalid("file", "extension ."+ext+" is not allowed")
}

// detectImage sniffs the content type and rewinds the file
func detectImage(file multipart.File) (string, error) {
	mime, err := mimetype.DetectReader(file)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind upload: %w", err)
	}

	contentType := strings.SplitN(mime.String(), ";", 2)[0]
	if !imageMimeTypes[contentType] {
		return "", apperror.Invalid("file", "must be an image")
	}
	return contentType, nil
}
