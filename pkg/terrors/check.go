package terrors

import "github.com/cockroachdb/errors"

// IsQueryFailedErr .
func IsQueryFailedErr(err error) bool {
	return errors.Is(err, ErrQueryFailed)
}

// IsStageFailedErr .
func IsStageFailedErr(err error) bool {
	return errors.Is(err, ErrStageFailed)
}

// IsBadMACAddrErr .
func IsBadMACAddrErr(err error) bool {
	return errors.Is(err, ErrBadMACAddr)
}
