package subscription

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a client-facing failure with a fixed status and code.
// Two Errors match with errors.Is when their codes are equal, so a copy
// re-issued with another status still matches the original sentinel.
type Error struct {
	Status  int
	Key     string
	Message string
}

func (e *Error) Error() string   { return e.Message }
func (e *Error) StatusCode() int { return e.Status }
func (e *Error) Code() string    { return e.Key }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Key == e.Key
}

// WithStatus returns a copy of e answering with status.
func (e *Error) WithStatus(status int) *Error {
	c := *e
	c.Status = status
	return &c
}

var (
	ErrInvalidPlan        = &Error{Status: http.StatusBadRequest, Key: "INVALID_PLAN", Message: "Invalid plan"}
	ErrNoSubscription     = &Error{Status: http.StatusNotFound, Key: "NO_SUBSCRIPTION", Message: "No subscription found"}
	ErrSubscriptionExists = errors.New("subscription already exists")

	ErrInvalidCatalog     = errors.New("invalid plan catalog")
	ErrProvisionConflict  = errors.New("failed to provision subscription")
	ErrFailedToCountUsage = errors.New("failed to count drivers")
)

// InactiveError denies access for a subscription that is neither active nor trialing.
type InactiveError struct {
	Status Status
}

func (e *InactiveError) Error() string {
	return "Your subscription is not active. Please update your payment method."
}
func (e *InactiveError) StatusCode() int { return http.StatusForbidden }
func (e *InactiveError) Code() string    { return "SUBSCRIPTION_INACTIVE" }
func (e *InactiveError) Details() map[string]any {
	return map[string]any{"status": e.Status}
}

// ExpiredError denies access once the current period has ended.
type ExpiredError struct {
	Status Status
}

func (e *ExpiredError) Error() string {
	return "Your subscription has expired. Please renew to continue."
}
func (e *ExpiredError) StatusCode() int { return http.StatusForbidden }
func (e *ExpiredError) Code() string    { return "SUBSCRIPTION_EXPIRED" }
func (e *ExpiredError) Details() map[string]any {
	return map[string]any{"status": e.Status}
}

// DriverLimitError denies adding a driver at or above the plan cap.
type DriverLimitError struct {
	Current int64
	Max     int64
	Plan    PlanID
}

func (e *DriverLimitError) Error() string {
	return fmt.Sprintf("Driver limit reached. Your %s plan allows %d drivers. Upgrade to add more.", e.Plan, e.Max)
}
func (e *DriverLimitError) StatusCode() int { return http.StatusForbidden }
func (e *DriverLimitError) Code() string    { return "DRIVER_LIMIT_REACHED" }
func (e *DriverLimitError) Details() map[string]any {
	return map[string]any{"currentCount": e.Current, "maxDrivers": e.Max, "plan": e.Plan}
}

// FeatureError denies a route whose feature flag is off for the plan.
type FeatureError struct {
	Feature Feature
	Plan    PlanID
}

func (e *FeatureError) Error() string {
	return fmt.Sprintf("This feature requires a higher plan. Your current plan is %s.", e.Plan)
}
func (e *FeatureError) StatusCode() int { return http.StatusForbidden }
func (e *FeatureError) Code() string    { return "FEATURE_NOT_AVAILABLE" }
func (e *FeatureError) Details() map[string]any {
	return map[string]any{"feature": e.Feature, "plan": e.Plan}
}

// DowngradeBlockedError rejects a plan change that would leave the user
// with more drivers than the target plan allows.
type DowngradeBlockedError struct {
	PlanName string
	Current  int64
	Allowed  int64
}

// Remove is how many drivers must go before the change is allowed.
func (e *DowngradeBlockedError) Remove() int64 {
	return e.Current - e.Allowed
}

func (e *DowngradeBlockedError) Error() string {
	return fmt.Sprintf(
		"Cannot downgrade to %s plan. You have %d drivers but this plan only allows %d. Please remove %d driver(s) first.",
		e.PlanName, e.Current, e.Allowed, e.Remove(),
	)
}
func (e *DowngradeBlockedError) StatusCode() int { return http.StatusBadRequest }
func (e *DowngradeBlockedError) Code() string    { return "DOWNGRADE_BLOCKED" }
func (e *DowngradeBlockedError) Details() map[string]any {
	return map[string]any{
		"currentDrivers":  e.Current,
		"maxDrivers":      e.Allowed,
		"driversToRemove": e.Remove(),
	}
}
