package middleware

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/oserockets-max/soken-quiz/internal/config"
)

// file upload validator middleware for checking file type and size
func FileUploadValidator(cfg *config.Config) fiber.Handler {
	allowedExt := cfg.AllowedFileExt
	maxSizeMB := cfg.AllowedMaxFileSize
	extMap := make(map[string]struct{})
	for _, e := range allowedExt {
		extMap[strings.ToLower(e)] = struct{}{}
	}

	maxSize := int64(maxSizeMB) * 1024 * 1024

	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid multipart form",
			})
		}

		for _, files := range form.File {
			for _, file := range files {
				if err := validateFile(file, extMap, maxSize); err != nil {
					return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
						"error": err.Error(),
					})
				}
			}
		}

		return c.Next()
	}
}

// validateFile checks the file size and extension
func validateFile(file *multipart.FileHeader, extMap map[string]struct{}, maxSize int64) *fiber.Error {
	if file.Size > maxSize {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "file too large")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if _, ok := extMap[ext]; !ok {
		return fiber.NewError(fiber.StatusBadRequest, "invalid file type")
	}

	f, err := file.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "cannot open file")
	}
	defer f.Close()

	head := make([]byte, 512) // http.DetectContentType reads <=512 bytes
	n, _ := f.Read(head)
	head = head[:n]

	mimeType := http.DetectContentType(head)

	if !isValidMagic(ext, mimeType, head) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid file content")
	}

	return nil
}

// verify the magic number for pdf
func isValidMagic(ext, mimeType string, head []byte) bool {
	switch ext {
	case ".pdf":
		return strings.HasPrefix(mimeType, "application/pdf") &&
			bytes.HasPrefix(head, []byte("%PDF-"))
	default:
		return false
	}
}
