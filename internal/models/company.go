package models

import (
	"time"

	"github.com/google/uuid"
)

// Company represents a tenant. Users and, through their managers, locations belong to
// exactly one company.
type Company struct {
	CompanyID uuid.UUID
	CreatedAt time.Time
}
