package statemachine

import (
	"errors"
	"fmt"
	"strings"
)

// State is the lifecycle position of a restaurant, derived from its verification and
// availability flags.
type State string

const (
	StateUnverified State = "UNVERIFIED"
	StateClosed     State = "CLOSED"
	StateOpen       State = "OPEN"
)

type Event string

const (
	EventVerifyEmail        Event = "VERIFY_EMAIL"
	EventToggleAvailability Event = "TOGGLE_AVAILABILITY"
)

var ErrTransitionNotAllowed = errors.New("transition not allowed")

// Transition defines a valid state change and the event that causes it
type Transition struct {
	From  State
	Event Event
	To    State
}

// validTransitions is the authoritative state machine definition
var validTransitions = []Transition{
	// Email verification consumes the one-time token; a verified restaurant starts closed
	{From: StateUnverified, Event: EventVerifyEmail, To: StateClosed},
	// Only verified restaurants may start or stop taking orders
	{From: StateClosed, Event: EventToggleAvailability, To: StateOpen},
	{From: StateOpen, Event: EventToggleAvailability, To: StateClosed},
}

type transitionKey struct {
	From  State
	Event Event
}

// Build a lookup map for O(1) validation
var transitionMap = func() map[transitionKey]State {
	m := make(map[transitionKey]State)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.Event}] = t.To
	}
	return m
}()

// StateOf derives the state from the stored flags
func StateOf(isEmailVerified, isAvailableForOrder bool) State {
	switch {
	case !isEmailVerified:
		return StateUnverified
	case isAvailableForOrder:
		return StateOpen
	default:
		return StateClosed
	}
}

// Next returns the state reached from `from` on event, or ErrTransitionNotAllowed
func Next(from State, event Event) (State, error) {
	if to, ok := transitionMap[transitionKey{from, event}]; ok {
		return to, nil
	}
	return "", fmt.Errorf("%w: %s on %s (valid events: %s)", ErrTransitionNotAllowed, event, from, describeValidFrom(from))
}

// ValidEventsFrom returns the events accepted in a given state
func ValidEventsFrom(s State) []Event {
	var events []Event
	for _, t := range validTransitions {
		if t.From == s {
			events = append(events, t.Event)
		}
	}
	return events
}

// IsAvailable reports whether the state accepts orders
func (s State) IsAvailable() bool { return s == StateOpen }

func describeValidFrom(s State) string {
	events := ValidEventsFrom(s)
	if len(events) == 0 {
		return "none"
	}
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = string(e)
	}
	return strings.Join(names, ", ")
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
