package migration

import (
	"errors"
	"fmt"
)

// Resolution failure reason codes
const (
	ReasonProductNotFound     = "product-not-found"
	ReasonCategoryNotFound    = "category-not-found"
	ReasonBrandNotFound       = "brand-not-found"
	ReasonRibbonNotFound      = "ribbon-not-found"
	ReasonCustomFieldNotFound = "customization-not-found"
	ReasonInfoSectionNotFound = "info-section-not-found"
	ReasonFolderNotFound      = "media-folder-not-found"
)

// Common migration errors
var (
	// ErrNoPendingRecords is returned by Claim when no unclaimed pending row exists
	ErrNoPendingRecords = errors.New("migration: no pending records to claim")

	// ErrClaimContention is returned when claiming repeatedly loses lock races
	ErrClaimContention = errors.New("migration: could not claim a record after repeated lock contention")

	// ErrRunAborted indicates a whole-run precondition failure (missing token,
	// unreachable source account)
	ErrRunAborted = errors.New("migration: run aborted")
)

// ValidationError indicates a destination payload could not be constructed
// because a required field is missing or invalid with no derivable default.
// It is non-retriable and finalizes the record as failed.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on field %q: %s", e.Field, e.Reason)
	}
	return "validation failed: " + e.Reason
}

// NewValidationError creates a validation error for a specific field
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// ResolutionError indicates a cross-entity reference could not be mapped to a
// destination-side identity. Strict-mode callers finalize the dependent
// record as failed; lenient-mode callers drop the reference and continue.
type ResolutionError struct {
	RefType  RefType
	SourceID string
	Reason   string
}

// Error implements the error interface
func (e *ResolutionError) Error() string {
	return fmt.Sprintf("could not resolve %s reference %q: %s", e.RefType, e.SourceID, e.Reason)
}

// NewResolutionError creates a resolution error with a reason code
func NewResolutionError(refType RefType, sourceID, reason string) *ResolutionError {
	return &ResolutionError{RefType: refType, SourceID: sourceID, Reason: reason}
}

// AsValidationError unwraps err into a ValidationError if possible
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

// AsResolutionError unwraps err into a ResolutionError if possible
func AsResolutionError(err error) (*ResolutionError, bool) {
	var re *ResolutionError
	ok := errors.As(err, &re)
	return re, ok
}
