package domain

import (
	"context"
	"errors"
)

// ErrUploadFailed signals that the blob uploader rejected or failed an
// image upload. The mutation that carried the image must not persist.
var ErrUploadFailed = errors.New("image upload failed")

// ImagePayload is a raw image attached to a create or update request.
type ImagePayload struct {
	Data        []byte
	ContentType string
}

// ImageUploader stores an image payload and returns a durable URL.
type ImageUploader interface {
	Upload(ctx context.Context, img *ImagePayload) (url string, err error)
}
