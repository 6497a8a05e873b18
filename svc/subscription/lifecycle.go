package subscription

import (
	"context"

	"github.com/dmitrymomot/fleetdesk/pkg/statemachine"
)

// Event drives a status transition.
type Event string

const (
	EventActivate Event = "activate"
	EventExpire   Event = "expire"
	EventResume   Event = "resume"
)

// lifecycle holds every status change a subscription may take here.
// past_due is only ever entered by an external billing system.
var lifecycle = statemachine.MustNew(
	statemachine.WithTransition(EventActivate, StatusActive,
		[]Status{StatusTrialing, StatusActive, StatusPastDue, StatusCanceled, StatusExpired}),
	statemachine.WithTransition(EventExpire, StatusExpired,
		[]Status{StatusTrialing, StatusActive, StatusPastDue}),
	statemachine.WithTransition(EventResume, StatusActive,
		[]Status{StatusCanceled, StatusExpired}),
)

// Transition returns the status event leads to from current.
func Transition(ctx context.Context, current Status, event Event) (Status, error) {
	return lifecycle.Fire(ctx, current, event)
}

// fire moves sub along event. Events with no transition from the current
// status leave it unchanged and report false.
func fire(ctx context.Context, sub *Subscription, event Event) bool {
	next, err := lifecycle.Fire(ctx, sub.Status, event)
	if err != nil {
		return false
	}
	sub.Status = next
	return true
}
