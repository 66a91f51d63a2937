package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultTimezone is assigned to users provisioned without an explicit zone.
const DefaultTimezone = "Europe/Warsaw"

// User is an account that can own events, manage locations and participate in events.
// Users are created by provisioning and never mutated by the API.
type User struct {
	UserID    int64
	CompanyID *uuid.UUID // nil for users provisioned without a tenant
	Username  string
	FirstName string
	LastName  string
	Email     string

	PasswordHash string // bcrypt

	// Timezone is an IANA identifier used for every wall-clock conversion involving this user.
	Timezone string

	CreatedAt time.Time
}

// InCompany reports whether the user belongs to the given company.
func (u *User) InCompany(companyID uuid.UUID) bool {
	return u.CompanyID != nil && *u.CompanyID == companyID
}
