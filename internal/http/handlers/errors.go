package handlers

// Stable, machine-readable error codes carried in the "code" field of the
// error envelope. Clients branch on these, not on messages.
const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeBodyTooLarge     = "body_too_large"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeInternal         = "internal_error"

	ErrCodeQuotaExceeded = "quota_exceeded"
	ErrCodeRunInProgress = "run_in_progress"
	ErrCodeImportFailed  = "import_failed"
	ErrCodeListFailed    = "list_failed"
	ErrCodeInvalidFilter = "invalid_filter"
)
