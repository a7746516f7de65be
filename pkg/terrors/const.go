package terrors

import "github.com/cockroachdb/errors"

var (
	// ErrQueryFailed indicates the external query tool returned a non-zero status.
	ErrQueryFailed = errors.New("query tool failed")
	// ErrUnknownQueryKind .
	ErrUnknownQueryKind = errors.New("unknown query kind")
	// ErrScopeRequired indicates the query kind needs a bridge/namespace/zone scope.
	ErrScopeRequired = errors.New("query scope required")

	// ErrStageFailed indicates a pipeline stage depended on an unavailable source.
	ErrStageFailed = errors.New("stage failed")

	// ErrBadRegisterValue indicates a register value isn't a hex literal.
	ErrBadRegisterValue = errors.New("bad register value")
	// ErrBadMACAddr .
	ErrBadMACAddr = errors.New("bad MAC addr")
)
