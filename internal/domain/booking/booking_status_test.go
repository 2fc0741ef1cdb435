package booking

import (
	"testing"

	"github.com/rentloop/service-booking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allStatuses = []BookingStatus{
	StatusRequested,
	StatusAccepted,
	StatusDeclined,
	StatusCanceled,
	StatusConfirmed,
	StatusCompleted,
	StatusDisputed,
}

// allowedTransitions mirrors the lifecycle independently of the production
// table so the exhaustive test below does not just compare the table with
// itself.
var allowedTransitions = map[BookingStatus]map[BookingStatus]bool{
	StatusRequested: {StatusAccepted: true, StatusDeclined: true, StatusCanceled: true},
	StatusAccepted:  {StatusConfirmed: true, StatusCanceled: true},
	StatusConfirmed: {StatusCompleted: true, StatusCanceled: true},
}

func TestValidateTransitionExhaustive(t *testing.T) {
	// Every one of the 49 (current, next) pairs must be decided explicitly.
	for _, current := range allStatuses {
		for _, next := range allStatuses {
			err := ValidateTransition(current, next)
			if allowedTransitions[current][next] {
				assert.NoError(t, err, "%s -> %s should be allowed", current, next)
			} else {
				require.Error(t, err, "%s -> %s should be rejected", current, next)
				var validationErr *domain.ValidationError
				assert.ErrorAs(t, err, &validationErr, "%s -> %s should fail validation", current, next)
			}
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	terminal := []BookingStatus{StatusDeclined, StatusCanceled, StatusCompleted, StatusDisputed}
	for _, s := range terminal {
		assert.True(t, s.IsTerminal(), "%s should be terminal", s)
	}

	open := []BookingStatus{StatusRequested, StatusAccepted, StatusConfirmed}
	for _, s := range open {
		assert.False(t, s.IsTerminal(), "%s should not be terminal", s)
	}
}

func TestParseBookingStatus(t *testing.T) {
	status, err := ParseBookingStatus("requested")
	require.NoError(t, err)
	assert.Equal(t, StatusRequested, status)

	_, err = ParseBookingStatus("shipped")
	assert.Error(t, err)

	_, err = ParseBookingStatus("")
	assert.Error(t, err)
}

func TestActiveStatusesExcludeTerminalNegatives(t *testing.T) {
	active := make(map[BookingStatus]bool)
	for _, s := range ActiveStatuses {
		active[s] = true
	}

	assert.False(t, active[StatusDeclined], "declined bookings must not count against inventory")
	assert.False(t, active[StatusCanceled], "canceled bookings must not count against inventory")
	assert.True(t, active[StatusRequested])
	assert.True(t, active[StatusAccepted])
	assert.True(t, active[StatusConfirmed])
	assert.True(t, active[StatusCompleted])
	assert.True(t, active[StatusDisputed])
}
