package utils

import (
	"errors"
	"mime/multipart"
)

const maxUploadBytes = 25 * 1024 * 1024

var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
	"image/webp": true,
	"image/gif":  true,
}

func ValidateImageHeader(h *multipart.FileHeader) error {
	if h.Size == 0 || h.Size > maxUploadBytes {
		return errors.New("file size not allowed")
	}
	if !allowedImageTypes[h.Header.Get("Content-Type")] {
		return errors.New("unsupported content type")
	}
	return nil
}

func IsAllowedImageType(ct string) bool {
	return allowedImageTypes[ct]
}
