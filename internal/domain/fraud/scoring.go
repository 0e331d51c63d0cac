// Fraud scoring is deliberately policy-like rather than statistical:
// every point of risk score traces to a named flag, and each detector
// is a pure function over the attempt and its pre-fetched context so it
// can be tested and explained in isolation.
//
// Severities carry fixed weights (LOW 10, MEDIUM 30, HIGH 60); the
// aggregate score is additive and saturates at 100. Two MEDIUM flags
// therefore reach the same default escalation threshold as one HIGH.
package fraud

import (
	"fmt"
	"time"

	"redemption-engine/internal/pkg/geo"

	"github.com/google/uuid"
)

// Attempt is the redemption attempt under evaluation.
type Attempt struct {
	VoucherID  uuid.UUID
	CustomerID uuid.UUID
	ProviderID uuid.UUID
	Code       string
	At         time.Time
	Location   *geo.Point
	Offline    bool
}

// Context carries the historical signals the detectors read. The
// orchestration layer pre-fetches everything in one pass so detectors
// never touch the store themselves.
type Context struct {
	CustomerRedemptionsLastHour int
	CustomerRedemptionsLastDay  int
	ProviderRedemptionsLastHour int

	// Replay rejections recorded for this customer in the last 24h.
	ReplayRejectionsLastDay int

	// Distance and elapsed time from the customer's previous redemption,
	// when both attempts carried a location.
	DistanceFromLastKm *float64
	MinutesSinceLast   *float64

	// Provider geofence, when the provider has a registered location.
	ProviderLocation *geo.Point
	GeofenceRadiusKm *float64

	KnownBadCustomer bool
}

type Score struct {
	RiskScore int
	Flags     []Flag
}

// HasHighSeverity reports whether any flag is HIGH.
func (s Score) HasHighSeverity() bool {
	for _, f := range s.Flags {
		if f.Severity == SeverityHigh {
			return true
		}
	}
	return false
}

// ShouldEscalate decides whether a fraud case must be opened: the score
// reached the configured threshold, or any HIGH flag is present.
func (s Score) ShouldEscalate(threshold int) bool {
	return s.RiskScore >= threshold || s.HasHighSeverity()
}

func severityWeight(s Severity) int {
	switch s {
	case SeverityHigh:
		return 60
	case SeverityMedium:
		return 30
	default:
		return 10
	}
}

type detector func(Attempt, Context) []Flag

// Engine evaluates the fixed detector set against an attempt.
type Engine struct {
	detectors []detector
}

func NewEngine() *Engine {
	return &Engine{
		detectors: []detector{
			detectCustomerVelocity,
			detectProviderVelocity,
			detectImpossibleTravel,
			detectGeofence,
			detectReplayAttempts,
			detectOddHours,
			detectKnownBad,
		},
	}
}

// Evaluate runs every detector and aggregates the flag weights into a
// saturating 0-100 risk score.
func (e *Engine) Evaluate(attempt Attempt, ctx Context) Score {
	var flags []Flag
	for _, d := range e.detectors {
		flags = append(flags, d(attempt, ctx)...)
	}

	total := 0
	for _, f := range flags {
		total += severityWeight(f.Severity)
	}
	if total > 100 {
		total = 100
	}

	return Score{RiskScore: total, Flags: flags}
}

// Thresholds: 3+ redemptions by one customer in an hour is above any
// plausible shopping pattern; 6+ indicates automation.
func detectCustomerVelocity(_ Attempt, ctx Context) []Flag {
	var flags []Flag
	switch n := ctx.CustomerRedemptionsLastHour; {
	case n >= 6:
		flags = append(flags, Flag{
			Type:     FlagCustomerVelocity,
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("customer redeemed %d vouchers in the last hour", n),
		})
	case n >= 3:
		flags = append(flags, Flag{
			Type:     FlagCustomerVelocity,
			Severity: SeverityMedium,
			Message:  fmt.Sprintf("customer redeemed %d vouchers in the last hour", n),
		})
	}
	if n := ctx.CustomerRedemptionsLastDay; n >= 10 {
		flags = append(flags, Flag{
			Type:     FlagCustomerVelocity,
			Severity: SeverityMedium,
			Message:  fmt.Sprintf("customer redeemed %d vouchers in the last 24 hours", n),
		})
	}
	return flags
}

// A burst at a single provider suggests collusion or a leaked code.
func detectProviderVelocity(_ Attempt, ctx Context) []Flag {
	if n := ctx.ProviderRedemptionsLastHour; n >= 50 {
		return []Flag{{
			Type:     FlagProviderVelocity,
			Severity: SeverityMedium,
			Message:  fmt.Sprintf("provider processed %d redemptions in the last hour", n),
		}}
	}
	return nil
}

// Travel speed between consecutive located redemptions. Above ~900 km/h
// no commercial travel explains the movement.
func detectImpossibleTravel(_ Attempt, ctx Context) []Flag {
	if ctx.DistanceFromLastKm == nil || ctx.MinutesSinceLast == nil {
		return nil
	}
	minutes := *ctx.MinutesSinceLast
	if minutes <= 0 {
		minutes = 1
	}
	speedKmh := *ctx.DistanceFromLastKm / (minutes / 60)
	switch {
	case speedKmh > 900:
		return []Flag{{
			Type:     FlagImpossibleTravel,
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("implied travel speed %.0f km/h since previous redemption", speedKmh),
		}}
	case speedKmh > 300:
		return []Flag{{
			Type:     FlagImpossibleTravel,
			Severity: SeverityMedium,
			Message:  fmt.Sprintf("implied travel speed %.0f km/h since previous redemption", speedKmh),
		}}
	}
	return nil
}

// Redemption located outside the provider's registered geofence.
func detectGeofence(attempt Attempt, ctx Context) []Flag {
	if attempt.Location == nil || ctx.ProviderLocation == nil || ctx.GeofenceRadiusKm == nil {
		return nil
	}
	if geo.IsWithinRadius(attempt.Location, *ctx.ProviderLocation, *ctx.GeofenceRadiusKm) {
		return nil
	}
	dist := geo.DistanceKm(*attempt.Location, *ctx.ProviderLocation)
	return []Flag{{
		Type:     FlagOutsideGeofence,
		Severity: SeverityMedium,
		Message:  fmt.Sprintf("redemption %.1f km from provider, outside %.1f km geofence", dist, *ctx.GeofenceRadiusKm),
	}}
}

// Prior replay rejections mean someone is actively retrying consumed
// credentials for this customer.
func detectReplayAttempts(_ Attempt, ctx Context) []Flag {
	switch n := ctx.ReplayRejectionsLastDay; {
	case n >= 3:
		return []Flag{{
			Type:     FlagReplayAttempts,
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("%d replayed credentials rejected in the last 24 hours", n),
		}}
	case n >= 1:
		return []Flag{{
			Type:     FlagReplayAttempts,
			Severity: SeverityMedium,
			Message:  fmt.Sprintf("%d replayed credential rejected in the last 24 hours", n),
		}}
	}
	return nil
}

// Fraud automation clusters in the dead hours, 02:00-05:59 UTC.
func detectOddHours(attempt Attempt, _ Context) []Flag {
	h := attempt.At.UTC().Hour()
	if h >= 2 && h < 6 {
		return []Flag{{
			Type:     FlagOddHours,
			Severity: SeverityLow,
			Message:  fmt.Sprintf("redemption at %02d:00 UTC", h),
		}}
	}
	return nil
}

func detectKnownBad(_ Attempt, ctx Context) []Flag {
	if ctx.KnownBadCustomer {
		return []Flag{{
			Type:     FlagKnownBadActor,
			Severity: SeverityHigh,
			Message:  "customer matches a known-bad identifier",
		}}
	}
	return nil
}
