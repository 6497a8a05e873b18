package driver

import (
	"strings"
	"time"

	"github.com/dmitrymomot/fleetdesk/pkg/validator"
)

// Status of a driver within the fleet.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusPending  Status = "pending"
)

var statuses = []Status{StatusActive, StatusInactive, StatusPending}

// LicenseClass is the commercial license class a driver holds.
type LicenseClass string

const (
	ClassA LicenseClass = "Class A"
	ClassB LicenseClass = "Class B"
	ClassC LicenseClass = "Class C"
	ClassD LicenseClass = "Class D"
)

var licenseClasses = []LicenseClass{ClassA, ClassB, ClassC, ClassD}

// Driver is a fleet member owned by exactly one user.
type Driver struct {
	ID            string       `json:"id" bson:"_id"`
	UserID        string       `json:"userId" bson:"userId"`
	Name          string       `json:"name" bson:"name"`
	Email         string       `json:"email" bson:"email"`
	Phone         string       `json:"phone" bson:"phone"`
	DateOfBirth   time.Time    `json:"dateOfBirth" bson:"dateOfBirth"`
	Address       string       `json:"address" bson:"address"`
	City          string       `json:"city" bson:"city"`
	State         string       `json:"state" bson:"state"`
	ZipCode       string       `json:"zipCode" bson:"zipCode"`
	LicenseNumber string       `json:"licenseNumber" bson:"licenseNumber"`
	LicenseExpiry time.Time    `json:"licenseExpiry" bson:"licenseExpiry"`
	LicenseClass  LicenseClass `json:"licenseClass" bson:"licenseClass"`
	Status        Status       `json:"status" bson:"status"`
	CreatedAt     time.Time    `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt" bson:"updatedAt"`
}

// Normalize trims text fields, lower-cases the email, upper-cases the
// license number and fills in the default class and status.
func (d *Driver) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.Phone = strings.TrimSpace(d.Phone)
	d.Address = strings.TrimSpace(d.Address)
	d.City = strings.TrimSpace(d.City)
	d.State = strings.TrimSpace(d.State)
	d.ZipCode = strings.TrimSpace(d.ZipCode)
	d.LicenseNumber = strings.ToUpper(strings.TrimSpace(d.LicenseNumber))
	if d.LicenseClass == "" {
		d.LicenseClass = ClassC
	}
	if d.Status == "" {
		d.Status = StatusActive
	}
}

// Merge copies the non-zero fields of changes onto d. Identity and
// timestamps are never taken from changes.
func (d *Driver) Merge(changes Driver) {
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setString(&d.Name, changes.Name)
	setString(&d.Email, changes.Email)
	setString(&d.Phone, changes.Phone)
	setString(&d.Address, changes.Address)
	setString(&d.City, changes.City)
	setString(&d.State, changes.State)
	setString(&d.ZipCode, changes.ZipCode)
	setString(&d.LicenseNumber, changes.LicenseNumber)
	if !changes.DateOfBirth.IsZero() {
		d.DateOfBirth = changes.DateOfBirth
	}
	if !changes.LicenseExpiry.IsZero() {
		d.LicenseExpiry = changes.LicenseExpiry
	}
	if changes.LicenseClass != "" {
		d.LicenseClass = changes.LicenseClass
	}
	if changes.Status != "" {
		d.Status = changes.Status
	}
}

// Validate checks a normalized driver. The date of birth must lie before now.
func (d *Driver) Validate(now time.Time) error {
	return validator.Apply(
		validator.Required("name", d.Name),
		validator.When(d.Name != "", validator.MinLen("name", d.Name, 2)),
		validator.MaxLen("name", d.Name, 100),
		validator.Required("email", d.Email),
		validator.When(d.Email != "", validator.ValidEmail("email", d.Email)),
		validator.Required("phone", d.Phone),
		validator.When(d.Phone != "", validator.ValidPhone("phone", d.Phone)),
		validator.RequiredTime("dateOfBirth", d.DateOfBirth),
		validator.Before("dateOfBirth", d.DateOfBirth, now),
		validator.Required("licenseNumber", d.LicenseNumber),
		validator.RequiredTime("licenseExpiry", d.LicenseExpiry),
		validator.OneOf("licenseClass", d.LicenseClass, licenseClasses),
		validator.OneOf("status", d.Status, statuses),
	)
}

// LicenseExpiredAt reports whether the license is no longer valid at now.
func (d *Driver) LicenseExpiredAt(now time.Time) bool {
	return now.After(d.LicenseExpiry)
}

// ParseStatus returns the status named s.
func ParseStatus(s string) (Status, bool) {
	for _, st := range statuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}
