package model

import "time"

// CompanyStatus tracks a company through its formation lifecycle.
type CompanyStatus string

const (
	CompanyPending   CompanyStatus = "pending"
	CompanyActive    CompanyStatus = "active"
	CompanyDissolved CompanyStatus = "dissolved"
)

// String returns the string representation of the status.
func (s CompanyStatus) String() string {
	return string(s)
}

// IsValid checks whether the status is a known value.
func (s CompanyStatus) IsValid() bool {
	switch s {
	case CompanyPending, CompanyActive, CompanyDissolved:
		return true
	}
	return false
}

// Plan is a subscription tier.
type Plan string

const (
	PlanStarter      Plan = "starter"
	PlanProfessional Plan = "professional"
	PlanEnterprise   Plan = "enterprise"
)

// String returns the string representation of the plan.
func (p Plan) String() string {
	return string(p)
}

// IsValid checks whether the plan is a known value.
func (p Plan) IsValid() bool {
	switch p {
	case PlanStarter, PlanProfessional, PlanEnterprise:
		return true
	}
	return false
}

// SubscriptionStatus is the billing state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

// String returns the string representation of the status.
func (s SubscriptionStatus) String() string {
	return string(s)
}

// IsValid checks whether the status is a known value.
func (s SubscriptionStatus) IsValid() bool {
	switch s {
	case SubscriptionActive, SubscriptionCancelled, SubscriptionExpired:
		return true
	}
	return false
}

// Company is the UK company being formed or managed for a user.
// Number is the Companies House registration number, assigned once the
// incorporation completes.
type Company struct {
	ID             string        `json:"id"`
	UserID         string        `json:"user_id"`
	Name           string        `json:"name"`
	Number         string        `json:"number,omitempty"`
	Status         CompanyStatus `json:"status"`
	IncorporatedAt *time.Time    `json:"incorporated_at,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`

	// Populated by joined queries for the company status view.
	Subscription *Subscription `json:"subscription,omitempty"`
}

// Subscription is the service plan attached to a company.
type Subscription struct {
	ID          string             `json:"id"`
	CompanyID   string             `json:"company_id"`
	Plan        Plan               `json:"plan"`
	Price       int64              `json:"price"` // pence
	Status      SubscriptionStatus `json:"status"`
	StartedAt   time.Time          `json:"started_at"`
	RenewalDate time.Time          `json:"renewal_date"`
}
