package subscription

// PlanID identifies a catalog plan.
type PlanID string

const (
	PlanStarter      PlanID = "starter"
	PlanProfessional PlanID = "professional"
	PlanEnterprise   PlanID = "enterprise"
)

// Feature names a boolean capability flag of a plan.
type Feature string

const (
	FeatureAdvancedAnalytics  Feature = "advancedAnalytics"
	FeatureAPIAccess          Feature = "apiAccess"
	FeatureCustomReports      Feature = "customReports"
	FeaturePrioritySupport    Feature = "prioritySupport"
	FeatureUnlimitedDrivers   Feature = "unlimitedDrivers"
	FeatureCustomIntegrations Feature = "customIntegrations"
	FeatureDedicatedSupport   Feature = "dedicatedSupport"
	FeatureSLAGuarantee       Feature = "slaGuarantee"
)

// Features is the entitlement set of a plan. Subscriptions keep their own copy.
type Features struct {
	MaxDrivers         int64 `json:"maxDrivers" bson:"maxDrivers" yaml:"maxDrivers"`
	AdvancedAnalytics  bool  `json:"advancedAnalytics" bson:"advancedAnalytics" yaml:"advancedAnalytics"`
	APIAccess          bool  `json:"apiAccess" bson:"apiAccess" yaml:"apiAccess"`
	CustomReports      bool  `json:"customReports" bson:"customReports" yaml:"customReports"`
	PrioritySupport    bool  `json:"prioritySupport" bson:"prioritySupport" yaml:"prioritySupport"`
	UnlimitedDrivers   bool  `json:"unlimitedDrivers" bson:"unlimitedDrivers" yaml:"unlimitedDrivers"`
	CustomIntegrations bool  `json:"customIntegrations" bson:"customIntegrations" yaml:"customIntegrations"`
	DedicatedSupport   bool  `json:"dedicatedSupport" bson:"dedicatedSupport" yaml:"dedicatedSupport"`
	SLAGuarantee       bool  `json:"slaGuarantee" bson:"slaGuarantee" yaml:"slaGuarantee"`
}

// Enabled reports whether the named flag is on. Unknown names are never enabled.
func (f Features) Enabled(name Feature) bool {
	switch name {
	case FeatureAdvancedAnalytics:
		return f.AdvancedAnalytics
	case FeatureAPIAccess:
		return f.APIAccess
	case FeatureCustomReports:
		return f.CustomReports
	case FeaturePrioritySupport:
		return f.PrioritySupport
	case FeatureUnlimitedDrivers:
		return f.UnlimitedDrivers
	case FeatureCustomIntegrations:
		return f.CustomIntegrations
	case FeatureDedicatedSupport:
		return f.DedicatedSupport
	case FeatureSLAGuarantee:
		return f.SLAGuarantee
	default:
		return false
	}
}

// Plan is a catalog entry. Price is in whole currency units per month.
type Plan struct {
	ID          PlanID   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Price       int64    `json:"price" yaml:"price"`
	TrialDays   int      `json:"trialDays" yaml:"trialDays"`
	Features    Features `json:"features" yaml:"features"`
}

// Unlimited reports whether the plan has no driver cap.
func (p Plan) Unlimited() bool {
	return p.Features.UnlimitedDrivers
}
