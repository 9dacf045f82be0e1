package intake

import (
	"errors"

	"lead_intake_backend/platform/apperr"
)

// Reason codes carried in the details of rejected intake attempts.
const (
	ReasonMissingField     = "missing_field"
	ReasonInvalidPhone     = "invalid_phone"
	ReasonInvalidEmail     = "invalid_email"
	ReasonInvalidPlatform  = "invalid_platform"
	ReasonInvalidCampaign  = "invalid_campaign"
	ReasonInvalidAssignee  = "invalid_assignee"
	ReasonInvalidStatus    = "invalid_status"
	ReasonInvalidQuality   = "invalid_quality"
	ReasonMalformedPayload = "malformed_payload"
	ReasonPayloadTooLarge  = "payload_too_large"
	ReasonDuplicatePhone   = "duplicate_phone"
	ReasonInvalidSignature = "invalid_signature"
	ReasonDependency       = "dependency_unavailable"
	ReasonInternal         = "internal_error"
)

// Details is attached to every intake error as apperr.Error.Details.
type Details struct {
	Reason string `json:"reason"`
	Field  string `json:"field,omitempty"`
}

func validationError(reason, field, message string) *apperr.Error {
	return apperr.Validation(message).WithDetails(Details{Reason: reason, Field: field})
}

func duplicateError() *apperr.Error {
	return apperr.Conflict("a lead with this phone number already exists").
		WithDetails(Details{Reason: ReasonDuplicatePhone, Field: FieldPhone})
}

func signatureError() *apperr.Error {
	return apperr.Unauthorized("unauthorized").WithDetails(Details{Reason: ReasonInvalidSignature})
}

func dependencyError(message string, err error) *apperr.Error {
	return apperr.Dependency(message, err).WithDetails(Details{Reason: ReasonDependency})
}

// Reason returns the reason code of an intake error. Errors that are not
// intake errors report ReasonInternal.
func Reason(err error) string {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		if d, ok := appErr.Details.(Details); ok && d.Reason != "" {
			return d.Reason
		}
		if appErr.Kind == apperr.KindDependency {
			return ReasonDependency
		}
	}
	return ReasonInternal
}

// IsDuplicate reports whether err rejected a lead because its phone exists.
func IsDuplicate(err error) bool {
	return apperr.Is(err, apperr.KindConflict)
}

// IsValidation reports whether err is a field rule rejection.
func IsValidation(err error) bool {
	return apperr.Is(err, apperr.KindValidation)
}

// IsUnauthenticated reports whether err is a signature rejection.
func IsUnauthenticated(err error) bool {
	return apperr.Is(err, apperr.KindUnauthorized)
}

// IsRetryable reports whether err came from an unavailable collaborator.
func IsRetryable(err error) bool {
	return apperr.Is(err, apperr.KindDependency)
}
