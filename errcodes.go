package vastdb

import "github.com/vast-data/vastdb-go/errors"

// Error codes surfaced by this package. Match with errors.Is(err, code).
const (
	// ErrTooWideRow means a single row serializes above the configured
	// slice size limit. No amount of splitting can help; this signals a
	// schema or data problem, not a transient fault.
	ErrTooWideRow errors.Code = "TooWideRow"

	// ErrInvalidRange means a key range could not be computed, e.g. an
	// empty scan prefix. Programmer error.
	ErrInvalidRange errors.Code = "InvalidRange"

	// ErrInvalidArgument covers malformed caller input, such as
	// mismatched schemas handed to the merge helpers.
	ErrInvalidArgument errors.Code = "InvalidArgument"

	// ErrAccessDenied means the backend refused access to a bucket.
	ErrAccessDenied errors.Code = "AccessDenied"

	// ErrNotFound means a bucket does not exist (or failed its head
	// check for any reason other than a permission error).
	ErrNotFound errors.Code = "NotFound"

	// ErrTransactionFailure means a begin, commit or rollback call
	// failed. A failed commit implies an unknown consistency outcome on
	// the server; it is never retried automatically.
	ErrTransactionFailure errors.Code = "TransactionFailure"
)
