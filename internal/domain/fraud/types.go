package fraud

import "errors"

var (
	ErrInvalidRiskScore  = errors.New("risk score must be between 0 and 100")
	ErrInvalidCaseStatus = errors.New("unknown fraud case status")
	ErrNotTerminalStatus = errors.New("review must set a terminal status")
)

type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

type FlagType string

const (
	FlagCustomerVelocity FlagType = "CUSTOMER_VELOCITY"
	FlagProviderVelocity FlagType = "PROVIDER_VELOCITY"
	FlagImpossibleTravel FlagType = "IMPOSSIBLE_TRAVEL"
	FlagOutsideGeofence  FlagType = "OUTSIDE_GEOFENCE"
	FlagReplayAttempts   FlagType = "REPLAY_ATTEMPTS"
	FlagOddHours         FlagType = "ODD_HOURS"
	FlagKnownBadActor    FlagType = "KNOWN_BAD_ACTOR"
)

// Flag is a named signal raised during scoring. Immutable once attached
// to a case.
type Flag struct {
	Type     FlagType `json:"type"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

type Status string

const (
	StatusPending       Status = "PENDING"
	StatusReviewing     Status = "REVIEWING"
	StatusApproved      Status = "APPROVED"
	StatusRejected      Status = "REJECTED"
	StatusFalsePositive Status = "FALSE_POSITIVE"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusReviewing, StatusApproved, StatusRejected, StatusFalsePositive:
		return true
	}
	return false
}

// Terminal reports whether the status ends the review lifecycle.
func (s Status) Terminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusFalsePositive:
		return true
	}
	return false
}
