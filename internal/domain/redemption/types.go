package redemption

import "errors"

var (
	ErrEmptyCode            = errors.New("redemption code cannot be empty")
	ErrInvalidLocation      = errors.New("location coordinates are out of range")
	ErrNotOfflineRedemption = errors.New("only offline redemptions can be marked synced")
)

type CodeType string

const (
	// CodeTypeStatic codes are reusable up to the voucher's redemption caps.
	CodeTypeStatic CodeType = "STATIC"
	// CodeTypeDynamic codes are single-use and time-boxed.
	CodeTypeDynamic CodeType = "DYNAMIC"
)

func (t CodeType) Valid() bool {
	return t == CodeTypeStatic || t == CodeTypeDynamic
}
