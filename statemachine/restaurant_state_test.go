package statemachine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateOf(t *testing.T) {
	assert.Equal(t, StateUnverified, StateOf(false, false))
	assert.Equal(t, StateUnverified, StateOf(false, true))
	assert.Equal(t, StateClosed, StateOf(true, false))
	assert.Equal(t, StateOpen, StateOf(true, true))
}

func TestNext(t *testing.T) {
	tests := []struct {
		name    string
		from    State
		event   Event
		want    State
		wantErr bool
	}{
		{"verify", StateUnverified, EventVerifyEmail, StateClosed, false},
		{"open", StateClosed, EventToggleAvailability, StateOpen, false},
		{"close", StateOpen, EventToggleAvailability, StateClosed, false},
		{"toggle unverified", StateUnverified, EventToggleAvailability, "", true},
		{"verify twice", StateClosed, EventVerifyEmail, "", true},
		{"verify open", StateOpen, EventVerifyEmail, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Next(tt.from, tt.event)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrTransitionNotAllowed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToggleTwiceRestoresState(t *testing.T) {
	for _, start := range []State{StateClosed, StateOpen} {
		mid, err := Next(start, EventToggleAvailability)
		require.NoError(t, err)
		end, err := Next(mid, EventToggleAvailability)
		require.NoError(t, err)
		assert.Equal(t, start, end)
	}
}

func TestValidEventsFrom(t *testing.T) {
	assert.Equal(t, []Event{EventVerifyEmail}, ValidEventsFrom(StateUnverified))
	assert.Equal(t, []Event{EventToggleAvailability}, ValidEventsFrom(StateOpen))
	assert.Len(t, GetAllTransitions(), 3)
}
