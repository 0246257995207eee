// Package usecase implements the business logic for the scans feature.
package usecase

import "errors"

// ErrScanNotFound is returned when a scan does not exist or belongs to another user.
var ErrScanNotFound = errors.New("scan not found")
