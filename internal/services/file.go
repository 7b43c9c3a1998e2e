package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"devtogether-backend/internal/config"

	"github.com/gabriel-vasile/mimetype"
)

// Дозволені типи зображень для логотипів організацій
var allowedImageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// FileService зберігає завантажені файли в локальному сховищі, що
// роздається через /uploads
type FileService struct {
	config *config.Config
}

func NewFileService(cfg *config.Config) *FileService {
	return &FileService{config: cfg}
}

// SaveLogo валідує та зберігає логотип організації під ключем userID.ext.
// Ліміт розміру та перевірка MIME виконуються до запису на диск
func (fs *FileService) SaveLogo(userID string, fileHeader *multipart.FileHeader) (string, error) {
	maxBytes := fs.config.MaxUploadSizeMB * 1024 * 1024
	if fileHeader.Size > maxBytes {
		return "", fmt.Errorf("file exceeds %dMB limit", fs.config.MaxUploadSizeMB)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	// Визначаємо реальний тип за вмістом, а не за розширенням
	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return "", fmt.Errorf("failed to detect file type: %w", err)
	}

	ext, ok := allowedImageExtensions[mtype.String()]
	if !ok {
		return "", fmt.Errorf("unsupported file type %s, expected an image", mtype.String())
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind uploaded file: %w", err)
	}

	dir := filepath.Join(fs.config.UploadDir, "logos")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	// Перезапис по тому ж ключу замінює попередній логотип
	destPath := filepath.Join(dir, userID+ext)
	dest, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, file); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	publicURL := strings.TrimSuffix(fs.config.PublicUploadsBase, "/") + "/logos/" + userID + ext
	return publicURL, nil
}
