// Package usecase implements the business logic for the taxonomy feature.
package usecase

import "errors"

var (
	// ErrLabelNotFound is returned when a label is not part of the supported taxonomy.
	ErrLabelNotFound = errors.New("label not found in taxonomy")

	// ErrEmptyTaxonomy is returned when the taxonomy table has no entries at startup.
	ErrEmptyTaxonomy = errors.New("taxonomy is empty; run the seed command first")
)
