package utils

import "errors"

var (
	ErrInvalidFile    = errors.New("invalid file")
	ErrUploadFailed   = errors.New("file upload failed")
	ErrMediaNotFound  = errors.New("media not found")
	ErrStorageFailure = errors.New("storage backend failure")
)
