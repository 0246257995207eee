// Package usecase implements the business logic for the detection feature.
package usecase

import "errors"

var (
	// ErrEmptyImage is returned when no image data was supplied.
	ErrEmptyImage = errors.New("image data is empty")

	// ErrImageTooLarge is returned when the upload exceeds MaxImageSize.
	ErrImageTooLarge = errors.New("image size exceeds maximum")

	// ErrUnsupportedFormat is returned when the upload does not sniff to a supported raster format.
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrInferenceFailed wraps runtime failures of the external detection model.
	// It is recoverable per request and never fatal to the process.
	ErrInferenceFailed = errors.New("inference failed")
)
