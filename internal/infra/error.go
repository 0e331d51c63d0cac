package infra

import (
	"errors"

	"redemption-engine/internal/pkg/errs"
)

type RepositoryErrorKind string

const (
	KindNotFound    RepositoryErrorKind = "not_found"
	KindConflict    RepositoryErrorKind = "conflict"
	KindUnavailable RepositoryErrorKind = "unavailable"
	KindInternal    RepositoryErrorKind = "internal"
)

type RepositoryError struct {
	Kind RepositoryErrorKind
	msg  string
	err  error // wrapped low-level error
}

func (e RepositoryError) Error() string {
	if e.err != nil {
		return string(e.Kind) + ": " + e.msg + ": " + e.err.Error()
	}
	return string(e.Kind) + ": " + e.msg
}

func (e RepositoryError) Unwrap() error {
	return e.err
}

func WrapRepoErr(msg string, err error, kinds ...RepositoryErrorKind) error {
	kind := KindInternal
	if len(kinds) > 0 {
		kind = kinds[0]
	}
	if err != nil {
		err = errs.Wrap(err, msg)
	}
	return RepositoryError{Kind: kind, msg: msg, err: err}
}

func IsKind(err error, kind RepositoryErrorKind) bool {
	var repoErr RepositoryError
	if !errors.As(err, &repoErr) {
		return false
	}
	return repoErr.Kind == kind
}
