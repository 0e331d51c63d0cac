package api

import (
	"errors"
	"net/http"

	"redemption-engine/internal/domain/redemption"
	"redemption-engine/internal/handler/httperr"
	"redemption-engine/internal/infra"
	"redemption-engine/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

type errorMapping struct {
	status  int
	code    string
	message string
}

// mappings is the public error taxonomy: every domain sentinel gets a
// stable machine-readable code so clients can branch without parsing
// messages.
var mappings = []struct {
	sentinel error
	errorMapping
}{
	{errs.ErrMalformedCredential, errorMapping{http.StatusBadRequest, "MALFORMED_CREDENTIAL", "Credential is malformed"}},
	{errs.ErrCredentialNotFound, errorMapping{http.StatusNotFound, "CREDENTIAL_NOT_FOUND", "Credential not found"}},
	{errs.ErrExpiredCredential, errorMapping{http.StatusGone, "EXPIRED_CREDENTIAL", "Credential has expired"}},
	{errs.ErrReplayedCredential, errorMapping{http.StatusConflict, "REPLAYED_CREDENTIAL", "Credential has already been used"}},
	{errs.ErrVoucherNotFound, errorMapping{http.StatusNotFound, "VOUCHER_NOT_FOUND", "Voucher not found"}},
	{errs.ErrVoucherNotRedeemable, errorMapping{http.StatusUnprocessableEntity, "VOUCHER_NOT_REDEEMABLE", "Voucher is not in a redeemable state"}},
	{errs.ErrVoucherExpired, errorMapping{http.StatusGone, "VOUCHER_EXPIRED", "Voucher has expired"}},
	{errs.ErrDuplicateRedemption, errorMapping{http.StatusConflict, "DUPLICATE_REDEMPTION", "Voucher already redeemed with this credential"}},
	{errs.ErrRedemptionCapExceeded, errorMapping{http.StatusConflict, "REDEMPTION_CAP_EXCEEDED", "Voucher redemption cap exceeded"}},
	{errs.ErrPerUserCapExceeded, errorMapping{http.StatusConflict, "PER_USER_CAP_EXCEEDED", "Per-user redemption cap exceeded"}},
	{errs.ErrFraudCaseNotFound, errorMapping{http.StatusNotFound, "FRAUD_CASE_NOT_FOUND", "Fraud case not found"}},
	{errs.ErrInvalidStateTransition, errorMapping{http.StatusConflict, "INVALID_STATE_TRANSITION", "Fraud case state transition is not allowed"}},
	{errs.ErrReplayStoreUnavailable, errorMapping{http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Service temporarily unavailable"}},
	{redemption.ErrInvalidLocation, errorMapping{http.StatusBadRequest, "INVALID_LOCATION", "Location coordinates are out of range"}},
	{redemption.ErrEmptyCode, errorMapping{http.StatusBadRequest, "MALFORMED_CREDENTIAL", "Credential is malformed"}},
}

var internalMapping = errorMapping{http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"}

func mappingFor(err error) errorMapping {
	for _, m := range mappings {
		if errors.Is(err, m.sentinel) {
			return m.errorMapping
		}
	}
	if infra.IsKind(err, infra.KindUnavailable) {
		return errorMapping{http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Service temporarily unavailable"}
	}
	return internalMapping
}

func respondError(c *gin.Context, err error) {
	m := mappingFor(err)
	httperr.AbortWithError(c, m.status, err, m.code, m.message, nil)
}

func respondBindError(c *gin.Context, err error) {
	httperr.AbortWithError(c, http.StatusBadRequest, err, "INVALID_REQUEST", "Invalid request format", nil)
}

// ErrCodeFor exposes the mapping for embedding codes in response
// bodies, e.g. per-record rejections in a sync batch.
func ErrCodeFor(err error) string {
	return mappingFor(err).code
}
