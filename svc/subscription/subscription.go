package subscription

import (
	"math"
	"time"
)

// Status is the lifecycle state of a subscription.
type Status string

const (
	StatusTrialing Status = "trialing"
	StatusActive   Status = "active"
	StatusPastDue  Status = "past_due"
	StatusCanceled Status = "canceled"
	StatusExpired  Status = "expired"
)

// Subscription is the single entitlement record of a user. MaxDrivers and
// Features are a snapshot of the plan taken whenever the plan is assigned,
// so later catalog edits never change an existing subscription.
type Subscription struct {
	ID                 string     `json:"id" bson:"_id"`
	UserID             string     `json:"user" bson:"user"`
	Plan               PlanID     `json:"plan" bson:"plan"`
	Status             Status     `json:"status" bson:"status"`
	CurrentPeriodStart time.Time  `json:"currentPeriodStart" bson:"currentPeriodStart"`
	CurrentPeriodEnd   time.Time  `json:"currentPeriodEnd" bson:"currentPeriodEnd"`
	TrialEnd           *time.Time `json:"trialEnd,omitempty" bson:"trialEnd,omitempty"`
	CancelAtPeriodEnd  bool       `json:"cancelAtPeriodEnd" bson:"cancelAtPeriodEnd"`
	MaxDrivers         int64      `json:"maxDrivers" bson:"maxDrivers"`
	Features           Features   `json:"features" bson:"features"`

	// Billing provider references. Stored for a future integration, never read.
	BillingCustomerID     string `json:"-" bson:"billingCustomerId,omitempty"`
	BillingSubscriptionID string `json:"-" bson:"billingSubscriptionId,omitempty"`
	PaymentMethod         string `json:"-" bson:"paymentMethod,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// IsActive reports whether the status grants access. Trials count as active.
func (s *Subscription) IsActive() bool {
	return s.Status == StatusActive || s.Status == StatusTrialing
}

// IsExpiredAt reports whether the current period ended before now.
func (s *Subscription) IsExpiredAt(now time.Time) bool {
	return now.After(s.CurrentPeriodEnd)
}

// DaysRemainingAt returns whole days left in the current period, rounded up.
// It goes negative once the period has ended.
func (s *Subscription) DaysRemainingAt(now time.Time) int {
	days := s.CurrentPeriodEnd.Sub(now).Hours() / 24
	return int(math.Ceil(days))
}

// Unlimited reports whether the snapshot carries no driver cap.
func (s *Subscription) Unlimited() bool {
	return s.Features.UnlimitedDrivers
}

// Clone returns a deep copy.
func (s *Subscription) Clone() *Subscription {
	c := *s
	if s.TrialEnd != nil {
		t := *s.TrialEnd
		c.TrialEnd = &t
	}
	return &c
}

func (s *Subscription) applyPlan(p Plan) {
	s.Plan = p.ID
	s.MaxDrivers = p.Features.MaxDrivers
	s.Features = p.Features
}
