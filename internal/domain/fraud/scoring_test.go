//go:build unit

package fraud_test

import (
	"testing"
	"time"

	"redemption-engine/internal/domain/fraud"
	"redemption-engine/internal/pkg/geo"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }

func baseAttempt(at time.Time) fraud.Attempt {
	return fraud.Attempt{
		VoucherID:  uuid.New(),
		CustomerID: uuid.New(),
		ProviderID: uuid.New(),
		Code:       "ABCD2345",
		At:         at,
	}
}

// Midday UTC keeps the odd-hours detector quiet unless a test wants it.
var quietHour = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestEvaluate_CleanAttempt(t *testing.T) {
	engine := fraud.NewEngine()

	score := engine.Evaluate(baseAttempt(quietHour), fraud.Context{})

	assert.Zero(t, score.RiskScore)
	assert.Empty(t, score.Flags)
	assert.False(t, score.ShouldEscalate(60))
}

func TestEvaluate_CustomerVelocity(t *testing.T) {
	engine := fraud.NewEngine()

	tests := []struct {
		name         string
		lastHour     int
		lastDay      int
		wantScore    int
		wantSeverity fraud.Severity
	}{
		{"below threshold", 2, 2, 0, ""},
		{"hourly medium", 3, 3, 30, fraud.SeverityMedium},
		{"hourly high", 6, 6, 60, fraud.SeverityHigh},
		{"daily medium only", 1, 10, 30, fraud.SeverityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := engine.Evaluate(baseAttempt(quietHour), fraud.Context{
				CustomerRedemptionsLastHour: tt.lastHour,
				CustomerRedemptionsLastDay:  tt.lastDay,
			})
			assert.Equal(t, tt.wantScore, score.RiskScore)
			if tt.wantSeverity != "" {
				require.NotEmpty(t, score.Flags)
				assert.Equal(t, fraud.FlagCustomerVelocity, score.Flags[0].Type)
				assert.Equal(t, tt.wantSeverity, score.Flags[0].Severity)
			}
		})
	}
}

func TestEvaluate_ProviderVelocity(t *testing.T) {
	engine := fraud.NewEngine()

	score := engine.Evaluate(baseAttempt(quietHour), fraud.Context{ProviderRedemptionsLastHour: 50})
	require.Len(t, score.Flags, 1)
	assert.Equal(t, fraud.FlagProviderVelocity, score.Flags[0].Type)
	assert.Equal(t, fraud.SeverityMedium, score.Flags[0].Severity)

	score = engine.Evaluate(baseAttempt(quietHour), fraud.Context{ProviderRedemptionsLastHour: 49})
	assert.Empty(t, score.Flags)
}

func TestEvaluate_ImpossibleTravel(t *testing.T) {
	engine := fraud.NewEngine()

	tests := []struct {
		name     string
		distKm   float64
		minutes  float64
		wantType fraud.FlagType
		wantSev  fraud.Severity
	}{
		// 500km in 30min = 1000 km/h
		{"faster than flight", 500, 30, fraud.FlagImpossibleTravel, fraud.SeverityHigh},
		// 400km in 60min = 400 km/h
		{"train-impossible", 400, 60, fraud.FlagImpossibleTravel, fraud.SeverityMedium},
		// 100km in 60min = 100 km/h
		{"plausible drive", 100, 60, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := engine.Evaluate(baseAttempt(quietHour), fraud.Context{
				DistanceFromLastKm: floatPtr(tt.distKm),
				MinutesSinceLast:   floatPtr(tt.minutes),
			})
			if tt.wantType == "" {
				assert.Empty(t, score.Flags)
				return
			}
			require.Len(t, score.Flags, 1)
			assert.Equal(t, tt.wantType, score.Flags[0].Type)
			assert.Equal(t, tt.wantSev, score.Flags[0].Severity)
		})
	}

	t.Run("zero elapsed clamps to one minute", func(t *testing.T) {
		score := engine.Evaluate(baseAttempt(quietHour), fraud.Context{
			DistanceFromLastKm: floatPtr(100),
			MinutesSinceLast:   floatPtr(0),
		})
		require.Len(t, score.Flags, 1)
		assert.Equal(t, fraud.SeverityHigh, score.Flags[0].Severity)
	})

	t.Run("missing signals skip the detector", func(t *testing.T) {
		score := engine.Evaluate(baseAttempt(quietHour), fraud.Context{DistanceFromLastKm: floatPtr(5000)})
		assert.Empty(t, score.Flags)
	})
}

func TestEvaluate_Geofence(t *testing.T) {
	engine := fraud.NewEngine()
	provider := geo.Point{Lat: 35.6762, Lng: 139.6503}

	attempt := baseAttempt(quietHour)
	attempt.Location = &geo.Point{Lat: 34.6937, Lng: 135.5023} // ~400km away

	t.Run("outside geofence", func(t *testing.T) {
		score := engine.Evaluate(attempt, fraud.Context{
			ProviderLocation: &provider,
			GeofenceRadiusKm: floatPtr(5),
		})
		require.Len(t, score.Flags, 1)
		assert.Equal(t, fraud.FlagOutsideGeofence, score.Flags[0].Type)
		assert.Equal(t, fraud.SeverityMedium, score.Flags[0].Severity)
	})

	t.Run("inside geofence", func(t *testing.T) {
		near := baseAttempt(quietHour)
		near.Location = &geo.Point{Lat: 35.6800, Lng: 139.6550}
		score := engine.Evaluate(near, fraud.Context{
			ProviderLocation: &provider,
			GeofenceRadiusKm: floatPtr(5),
		})
		assert.Empty(t, score.Flags)
	})

	t.Run("no location skips the check", func(t *testing.T) {
		score := engine.Evaluate(baseAttempt(quietHour), fraud.Context{
			ProviderLocation: &provider,
			GeofenceRadiusKm: floatPtr(5),
		})
		assert.Empty(t, score.Flags)
	})
}

func TestEvaluate_ReplayAttempts(t *testing.T) {
	engine := fraud.NewEngine()

	score := engine.Evaluate(baseAttempt(quietHour), fraud.Context{ReplayRejectionsLastDay: 1})
	require.Len(t, score.Flags, 1)
	assert.Equal(t, fraud.SeverityMedium, score.Flags[0].Severity)

	score = engine.Evaluate(baseAttempt(quietHour), fraud.Context{ReplayRejectionsLastDay: 3})
	require.Len(t, score.Flags, 1)
	assert.Equal(t, fraud.SeverityHigh, score.Flags[0].Severity)
}

func TestEvaluate_OddHours(t *testing.T) {
	engine := fraud.NewEngine()

	tests := []struct {
		hour int
		want bool
	}{
		{1, false}, {2, true}, {4, true}, {5, true}, {6, false}, {14, false},
	}

	for _, tt := range tests {
		at := time.Date(2026, 3, 1, tt.hour, 30, 0, 0, time.UTC)
		score := engine.Evaluate(baseAttempt(at), fraud.Context{})
		if tt.want {
			require.Len(t, score.Flags, 1, "hour %d", tt.hour)
			assert.Equal(t, fraud.FlagOddHours, score.Flags[0].Type)
			assert.Equal(t, fraud.SeverityLow, score.Flags[0].Severity)
			assert.Equal(t, 10, score.RiskScore)
		} else {
			assert.Empty(t, score.Flags, "hour %d", tt.hour)
		}
	}
}

func TestEvaluate_KnownBadActor(t *testing.T) {
	engine := fraud.NewEngine()

	score := engine.Evaluate(baseAttempt(quietHour), fraud.Context{KnownBadCustomer: true})
	require.Len(t, score.Flags, 1)
	assert.Equal(t, fraud.FlagKnownBadActor, score.Flags[0].Type)
	assert.Equal(t, 60, score.RiskScore)
	assert.True(t, score.ShouldEscalate(60))
}

func TestEvaluate_ScoreSaturatesAt100(t *testing.T) {
	engine := fraud.NewEngine()

	// Known bad (60) + hourly velocity HIGH (60) + replay HIGH (60) stack
	// far above the cap.
	score := engine.Evaluate(baseAttempt(quietHour), fraud.Context{
		CustomerRedemptionsLastHour: 6,
		ReplayRejectionsLastDay:     3,
		KnownBadCustomer:            true,
	})

	assert.Equal(t, 100, score.RiskScore)
	assert.GreaterOrEqual(t, len(score.Flags), 3)
}

func TestShouldEscalate(t *testing.T) {
	t.Run("score at threshold", func(t *testing.T) {
		assert.True(t, fraud.Score{RiskScore: 60}.ShouldEscalate(60))
	})
	t.Run("score below threshold", func(t *testing.T) {
		assert.False(t, fraud.Score{RiskScore: 59}.ShouldEscalate(60))
	})
	t.Run("high flag overrides low score", func(t *testing.T) {
		s := fraud.Score{RiskScore: 10, Flags: []fraud.Flag{{Severity: fraud.SeverityHigh}}}
		assert.True(t, s.ShouldEscalate(60))
	})
}
